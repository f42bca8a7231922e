package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	_ "github.com/jackc/pgx/v5/stdlib" // driver "pgx"
	_ "modernc.org/sqlite"             // driver "sqlite", sin cgo

	"github.com/davicafu/hexaquery/internal/shared/infra/platform/db/sqlbuilder"
)

// Open abre la base de datos SQL del dialecto indicado y comprueba la conexión.
// dsn es la ruta del fichero (sqlite), la cadena de conexión (postgres) o
// host:puerto (clickhouse).
func Open(ctx context.Context, d sqlbuilder.Dialect, dsn string) (*sql.DB, error) {
	var (
		conn *sql.DB
		err  error
	)

	switch d {
	case sqlbuilder.Postgres:
		conn, err = sql.Open("pgx", dsn)
	case sqlbuilder.ClickHouse:
		conn = OpenClickHouse(dsn, "default")
	default:
		conn, err = sql.Open("sqlite", dsn)
		if err == nil {
			// una sola conexión: con ":memory:" cada conexión es una base distinta
			conn.SetMaxOpenConns(1)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", d, err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := conn.PingContext(pingCtx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping %s: %w", d, err)
	}
	return conn, nil
}

// OpenClickHouse usa la interfaz database/sql de clickhouse-go.
func OpenClickHouse(addr, database string) *sql.DB {
	return clickhouse.OpenDB(&clickhouse.Options{
		Addr: []string{addr},
		Auth: clickhouse.Auth{
			Database: database,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
	})
}
