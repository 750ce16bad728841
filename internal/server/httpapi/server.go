// Package httpapi exposes the session lifecycle over JSON/HTTP.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/sidereal-app/sidereal/internal/logging"
	"github.com/sidereal-app/sidereal/internal/server/services"
)

// SessionService is the slice of the user service the handlers need.
// *services.UserService satisfies it.
type SessionService interface {
	ExchangeAppleIdentity(ctx context.Context, appleID, email, displayName string) (*services.TokenBundle, error)
	Refresh(ctx context.Context, token string) (*services.TokenBundle, error)
	Validate(ctx context.Context, token string) (string, error)
	Logout(ctx context.Context, token string) error
	UpdateProfile(ctx context.Context, userID, birthDate, birthTime, birthPlace string) error
}

const shutdownTimeout = 5 * time.Second

type Server struct {
	addr    string
	logger  logging.Logger
	service SessionService
	router  *mux.Router
}

func NewServer(addr string, logger logging.Logger, service SessionService) *Server {
	s := &Server{
		addr:    addr,
		logger:  logger.With("component", "httpapi"),
		service: service,
	}
	s.router = s.newRouter()
	return s
}

func (s *Server) newRouter() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/auth/apple", s.handleAppleSignIn).Methods(http.MethodPost)
	r.HandleFunc("/api/v1/auth/refresh", s.handleRefresh).Methods(http.MethodPost)
	r.HandleFunc("/api/v1/auth/validate", s.handleValidate).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/auth/logout", s.handleLogout).Methods(http.MethodPost)
	r.HandleFunc("/api/v1/users/me/profile", s.handleProfileUpdate).Methods(http.MethodPut)
	return r
}

// Handler exposes the routing table; tests mount it on httptest servers.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.addr,
		Handler: s.router,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "listening", "addr", s.addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
