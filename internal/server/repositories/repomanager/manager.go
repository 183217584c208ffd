package repomanager

import (
	"context"
	"database/sql"

	"github.com/nick102030/Jolvre-BE/internal/dbx"
	"github.com/nick102030/Jolvre-BE/internal/server/repositories/exhibits"
	"github.com/nick102030/Jolvre-BE/internal/server/repositories/groups"
	"github.com/nick102030/Jolvre-BE/internal/server/repositories/invites"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Exhibits(db dbx.DBTX) exhibits.Repository
	Groups(db dbx.DBTX) groups.Repository
	Invites(db dbx.DBTX) invites.Repository
}
