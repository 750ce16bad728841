package api

import (
	"context"
	"net/http"
)

// AuthenticatedUser is the backend's view of a signed-in user.
type AuthenticatedUser struct {
	ID          string `json:"id"`
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
}

// AuthResponse is returned by the sign-in and refresh endpoints.
type AuthResponse struct {
	JWTToken string            `json:"jwtToken"`
	User     AuthenticatedUser `json:"user"`
}

// AppleSignInRequest carries a third-party identity assertion to be exchanged
// for a session.
type AppleSignInRequest struct {
	IDToken        string `json:"idToken"`
	UserIdentifier string `json:"userIdentifier"`
	Email          string `json:"email,omitempty"`
	FirstName      string `json:"firstName,omitempty"`
	LastName       string `json:"lastName,omitempty"`
}

// ProfileSyncRequest mirrors the locally cached birth profile to the server.
type ProfileSyncRequest struct {
	BirthDate  string `json:"birthDate"`
	BirthTime  string `json:"birthTime,omitempty"`
	BirthPlace string `json:"birthPlace,omitempty"`
}

// HealthResponse is the connectivity probe's payload.
type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// Health performs the lightweight connectivity probe. It is independent of
// authentication and never affects session state.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var resp HealthResponse
	if err := c.do(ctx, http.MethodGet, "/health", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SignInWithApple exchanges an Apple identity assertion for a session.
func (c *Client) SignInWithApple(ctx context.Context, req AppleSignInRequest) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/apple", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RefreshSession exchanges the current (expiring) credential for a fresh one.
func (c *Client) RefreshSession(ctx context.Context) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/refresh", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ValidateSession asks the server whether the current credential is still
// accepted. A nil return means accepted; classification of the error is up
// to the caller.
func (c *Client) ValidateSession(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/api/v1/auth/validate", nil, nil)
}

// SyncProfile is the best-effort remote mirror of profile completion.
func (c *Client) SyncProfile(ctx context.Context, req ProfileSyncRequest) error {
	return c.do(ctx, http.MethodPut, "/api/v1/users/me/profile", req, nil)
}

// Logout notifies the server that the given credential was discarded. The
// credential is passed explicitly because local sign-out has already cleared
// the provider by the time this fires.
func (c *Client) Logout(ctx context.Context, token string) error {
	return c.doWithToken(ctx, http.MethodPost, "/api/v1/auth/logout", token, nil, nil)
}
