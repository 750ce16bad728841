// Package sessiontokens provides a PostgreSQL-backed repository for the
// server-side session rows behind issued bearer tokens.
package sessiontokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sidereal-app/sidereal/internal/common"
	"github.com/sidereal-app/sidereal/internal/dbx"
	"github.com/sidereal-app/sidereal/internal/server/models"
)

// PostgresRepository implements session persistence over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a session row expiring at now+validity.
func (r *PostgresRepository) Create(ctx context.Context, id, userID string, validity time.Duration) error {
	query := `
		INSERT INTO session_tokens (id, user_id, issued_at, expires_at)
		VALUES ($1, $2, $3, $4)
	`
	now := time.Now()
	if _, err := r.db.ExecContext(ctx, query, id, userID, now, now.Add(validity)); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Find returns the session row for the given id, or common.ErrorNotFound.
func (r *PostgresRepository) Find(ctx context.Context, id string) (*models.SessionToken, error) {
	query := `
		SELECT id, user_id, issued_at, expires_at, revoked_at
		FROM session_tokens
		WHERE id = $1
	`
	token := &models.SessionToken{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&token.ID, &token.UserID, &token.IssuedAt, &token.ExpiresAt, &token.RevokedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return token, nil
}

func (r *PostgresRepository) Revoke(ctx context.Context, id string) error {
	query := `
		UPDATE session_tokens
		SET revoked_at = $2
		WHERE id = $1 AND revoked_at IS NULL
	`
	res, err := r.db.ExecContext(ctx, query, id, time.Now())
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
