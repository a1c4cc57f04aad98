package database

import (
	"context"
	"database/sql"
	"fmt"
)

// Open connects to the provider's database and verifies the connection.
func Open(ctx context.Context, provider, url string) (*DB, error) {
	dialect, err := DialectFor(provider)
	if err != nil {
		return nil, err
	}

	var conn *sql.DB
	switch dialect.Name() {
	case "postgresql":
		conn, err = openPostgres(ctx, url)
	case "mysql":
		conn, err = openMySQL(url)
	default:
		conn, err = openSQLite(url)
	}
	if err != nil {
		return nil, err
	}

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to connect to %s database: %w", dialect.Name(), err)
	}
	return &DB{DB: conn, dialect: dialect}, nil
}

// Wrap binds an already open connection to the provider's dialect.
func Wrap(conn *sql.DB, provider string) (*DB, error) {
	dialect, err := DialectFor(provider)
	if err != nil {
		return nil, err
	}
	return &DB{DB: conn, dialect: dialect}, nil
}

func DialectFor(provider string) (Dialect, error) {
	switch provider {
	case "postgresql", "postgres":
		return postgresDialect{}, nil
	case "mysql":
		return mysqlDialect{}, nil
	case "sqlite", "sqlite3":
		return sqliteDialect{}, nil
	}
	return nil, fmt.Errorf("unsupported database provider: %s", provider)
}
