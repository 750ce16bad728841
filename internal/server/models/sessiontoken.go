package models

import (
	"database/sql"
	"time"
)

// SessionToken is the server-side row behind a bearer token. The token's jti
// claim points at ID; revoking the row kills every copy of the token.
type SessionToken struct {
	ID        string
	UserID    string
	IssuedAt  time.Time
	ExpiresAt time.Time
	RevokedAt sql.NullTime
}

// Revoked reports whether the session has been explicitly ended.
func (t *SessionToken) Revoked() bool {
	return t.RevokedAt.Valid
}
