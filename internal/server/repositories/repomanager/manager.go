package repomanager

import (
	"context"
	"database/sql"

	"github.com/sidereal-app/sidereal/internal/dbx"
	"github.com/sidereal-app/sidereal/internal/server/repositories/sessiontokens"
	"github.com/sidereal-app/sidereal/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	SessionTokens(db dbx.DBTX) sessiontokens.Repository
}
