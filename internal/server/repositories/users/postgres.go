package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sidereal-app/sidereal/internal/common"
	"github.com/sidereal-app/sidereal/internal/dbx"
	"github.com/sidereal-app/sidereal/internal/server/models"
)

// PostgresRepository implements user persistence over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) UpsertByAppleID(ctx context.Context, user *models.User) (*models.User, error) {
	query := `
		INSERT INTO users (apple_id, email, display_name)
		VALUES ($1, $2, $3)
		ON CONFLICT (apple_id) DO UPDATE SET apple_id = EXCLUDED.apple_id
		RETURNING id, apple_id, email, display_name, birth_date, birth_time, birth_place
	`
	got := &models.User{}
	err := r.db.QueryRowContext(ctx, query, user.AppleID, user.Email, user.DisplayName).Scan(
		&got.ID, &got.AppleID, &got.Email, &got.DisplayName,
		&got.BirthDate, &got.BirthTime, &got.BirthPlace,
	)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return got, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `
		SELECT id, apple_id, email, display_name, birth_date, birth_time, birth_place
		FROM users
		WHERE id = $1
	`
	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID, &user.AppleID, &user.Email, &user.DisplayName,
		&user.BirthDate, &user.BirthTime, &user.BirthPlace,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return user, nil
}

func (r *PostgresRepository) UpdateProfile(ctx context.Context, userID, birthDate, birthTime, birthPlace string) error {
	query := `
		UPDATE users
		SET birth_date = $2, birth_time = $3, birth_place = $4
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query, userID, birthDate, birthTime, birthPlace)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
