// Package services holds the server's business logic, between the HTTP
// handlers and the repositories.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sidereal-app/sidereal/internal/common"
	"github.com/sidereal-app/sidereal/internal/dbx"
	"github.com/sidereal-app/sidereal/internal/server/auth"
	"github.com/sidereal-app/sidereal/internal/server/config"
	"github.com/sidereal-app/sidereal/internal/server/models"
	"github.com/sidereal-app/sidereal/internal/server/repositories/repomanager"
)

// TokenBundle pairs a freshly minted bearer token with its user.
type TokenBundle struct {
	Token string
	User  *models.User
}

// UserService implements the account and session lifecycle. Bearer tokens
// are short-lived; the session row behind them lives for the refresh window
// and is rotated (old revoked, new minted) on every refresh.
type UserService struct {
	db                  *sql.DB
	repomanager         repomanager.RepositoryManager
	jwtSecret           []byte
	accessTokenValidity time.Duration
	refreshWindow       time.Duration
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{
		db:                  db,
		repomanager:         m,
		jwtSecret:           []byte(cfg.SecretKey),
		accessTokenValidity: cfg.AccessTokenValidity,
		refreshWindow:       cfg.RefreshWindow,
	}
}

// ExchangeAppleIdentity creates or finds the account behind an Apple
// identifier and opens a new session for it. Email and display name only
// stick on first sign-in.
func (s *UserService) ExchangeAppleIdentity(ctx context.Context, appleID, email, displayName string) (*TokenBundle, error) {
	if appleID == "" {
		return nil, common.ErrorUnauthorized
	}

	user, err := s.repomanager.Users(s.db).UpsertByAppleID(ctx, &models.User{
		AppleID:     appleID,
		Email:       nullString(email),
		DisplayName: nullString(displayName),
	})
	if err != nil {
		return nil, fmt.Errorf("error upserting user: %w", err)
	}

	token, err := s.openSession(ctx, s.db, user.ID)
	if err != nil {
		return nil, err
	}
	return &TokenBundle{Token: token, User: user}, nil
}

// Refresh exchanges a token whose signature still verifies for a fresh one.
// Expiry of the JWT itself is tolerated; the session row decides. The old
// session is revoked and a new one minted in the same transaction, so a
// replayed refresh with the old token fails.
func (s *UserService) Refresh(ctx context.Context, tokenString string) (*TokenBundle, error) {
	claims, err := auth.ParseToken(tokenString, s.jwtSecret)
	if err != nil && !errors.Is(err, common.ErrTokenExpired) {
		return nil, common.ErrorUnauthorized
	}

	session, err := s.repomanager.SessionTokens(s.db).Find(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrSessionRevoked
		}
		return nil, fmt.Errorf("error searching session: %w", err)
	}
	if session.Revoked() {
		return nil, common.ErrSessionRevoked
	}
	if session.ExpiresAt.Before(time.Now()) {
		return nil, common.ErrSessionExpired
	}

	user, err := s.repomanager.Users(s.db).GetByID(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("error loading user: %w", err)
	}

	var token string
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.SessionTokens(tx).Revoke(ctx, session.ID); err != nil {
			return fmt.Errorf("error revoking session: %w", err)
		}
		token, err = s.openSession(ctx, tx, user.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return &TokenBundle{Token: token, User: user}, nil
}

// Validate confirms a bearer token is currently usable: signature valid, JWT
// unexpired, session row live. It returns the user id on success.
func (s *UserService) Validate(ctx context.Context, tokenString string) (string, error) {
	claims, err := auth.ParseToken(tokenString, s.jwtSecret)
	if err != nil {
		return "", err
	}

	session, err := s.repomanager.SessionTokens(s.db).Find(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrSessionRevoked
		}
		return "", fmt.Errorf("error searching session: %w", err)
	}
	if session.Revoked() {
		return "", common.ErrSessionRevoked
	}
	if session.ExpiresAt.Before(time.Now()) {
		return "", common.ErrSessionExpired
	}
	return session.UserID, nil
}

// Logout revokes the session behind the token. It is best effort by
// contract: an already-dead session is not an error.
func (s *UserService) Logout(ctx context.Context, tokenString string) error {
	claims, err := auth.ParseToken(tokenString, s.jwtSecret)
	if err != nil && !errors.Is(err, common.ErrTokenExpired) {
		return common.ErrorUnauthorized
	}

	if err := s.repomanager.SessionTokens(s.db).Revoke(ctx, claims.ID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil
		}
		return fmt.Errorf("error revoking session: %w", err)
	}
	return nil
}

// UpdateProfile stores the birth profile mirrored from the device.
func (s *UserService) UpdateProfile(ctx context.Context, userID, birthDate, birthTime, birthPlace string) error {
	return s.repomanager.Users(s.db).UpdateProfile(ctx, userID, birthDate, birthTime, birthPlace)
}

// openSession mints a session row and its bearer token over the given DBTX.
func (s *UserService) openSession(ctx context.Context, db dbx.DBTX, userID string) (string, error) {
	sessionID := uuid.NewString()
	if err := s.repomanager.SessionTokens(db).Create(ctx, sessionID, userID, s.refreshWindow); err != nil {
		return "", fmt.Errorf("error creating session: %w", err)
	}
	token, err := auth.GenerateToken(userID, sessionID, s.jwtSecret, s.accessTokenValidity)
	if err != nil {
		return "", fmt.Errorf("error signing token: %w", err)
	}
	return token, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
