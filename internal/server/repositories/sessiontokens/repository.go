package sessiontokens

import (
	"context"
	"time"

	"github.com/sidereal-app/sidereal/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, id, userID string, validity time.Duration) error
	Find(ctx context.Context, id string) (*models.SessionToken, error)
	// Revoke marks the session ended. Revoking an unknown or already-revoked
	// session returns common.ErrorNotFound.
	Revoke(ctx context.Context, id string) error
}
