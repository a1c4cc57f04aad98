package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/lib/pq"
)

type postgresDialect struct{}

func (postgresDialect) Name() string { return "postgresql" }

func (postgresDialect) Quote(ident string) string {
	return pq.QuoteIdentifier(ident)
}

func (postgresDialect) Placeholder() squirrel.PlaceholderFormat {
	return squirrel.Dollar
}

func (postgresDialect) Like(column, pattern string) squirrel.Sqlizer {
	return squirrel.ILike{column: pattern}
}

func openPostgres(ctx context.Context, url string) (*sql.DB, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	return stdlib.OpenDBFromPool(pool), nil
}
