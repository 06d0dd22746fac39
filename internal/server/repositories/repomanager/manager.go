package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/novelnest/internal/dbx"
	"github.com/dmitrijs2005/novelnest/internal/server/repositories/likes"
	"github.com/dmitrijs2005/novelnest/internal/server/repositories/pieces"
	"github.com/dmitrijs2005/novelnest/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DBTX, so the same code
// runs against *sql.DB or inside a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Pieces(db dbx.DBTX) pieces.Repository
	Likes(db dbx.DBTX) likes.Repository
}
