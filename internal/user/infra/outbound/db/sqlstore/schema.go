package sqlstore

import (
	"context"
	"database/sql"

	"github.com/davicafu/hexaquery/internal/shared/infra/platform/db/sqlbuilder"
)

// ------------------ Inicialización de DB ------------------

// InitSchema crea la tabla users si no existe.
func InitSchema(ctx context.Context, db *sql.DB, dialect sqlbuilder.Dialect) error {
	ddl := `
        CREATE TABLE IF NOT EXISTS users (
            id TEXT PRIMARY KEY,
            login TEXT UNIQUE NOT NULL,
            email TEXT NOT NULL,
            age INTEGER NOT NULL DEFAULT 0,
            admin BOOLEAN NOT NULL DEFAULT false,
            created_at DATETIME NOT NULL,
            updated_at DATETIME NOT NULL,
            banned_at DATETIME
        )`
	if dialect == sqlbuilder.Postgres {
		ddl = `
        CREATE TABLE IF NOT EXISTS users (
            id TEXT PRIMARY KEY,
            login TEXT UNIQUE NOT NULL,
            email TEXT NOT NULL,
            age INTEGER NOT NULL DEFAULT 0,
            admin BOOLEAN NOT NULL DEFAULT false,
            created_at TIMESTAMPTZ NOT NULL,
            updated_at TIMESTAMPTZ NOT NULL,
            banned_at TIMESTAMPTZ
        )`
	}
	_, err := db.ExecContext(ctx, ddl)
	return err
}
