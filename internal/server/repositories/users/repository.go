package users

import (
	"context"

	"github.com/sidereal-app/sidereal/internal/server/models"
)

type Repository interface {
	// UpsertByAppleID creates the account on first sign-in and returns the
	// existing one afterwards. Email and display name are only written on
	// creation; Apple stops sending them after the first authorization.
	UpsertByAppleID(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	UpdateProfile(ctx context.Context, userID, birthDate, birthTime, birthPlace string) error
}
