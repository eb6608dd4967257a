package repomanager

import (
	"context"
	"database/sql"

	"filevault/internal/dbx"
	"filevault/internal/server/repositories/directory"
	"filevault/internal/server/repositories/files"
	"filevault/internal/server/repositories/sharerequests"
	"filevault/internal/server/repositories/shares"
)

// RepositoryManager vends repositories bound to a DBTX, so services can use
// the same repository code on a plain connection or inside a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Files(db dbx.DBTX) files.Repository
	Shares(db dbx.DBTX) shares.Repository
	ShareRequests(db dbx.DBTX) sharerequests.Repository
	Directory(db dbx.DBTX) directory.Repository
}
