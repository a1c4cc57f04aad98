package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"
)

// Dialect covers the SQL differences the datatable queries care about.
type Dialect interface {
	Name() string
	Quote(ident string) string
	Placeholder() squirrel.PlaceholderFormat
	// Like builds a case-insensitive substring match on an already quoted column.
	Like(column, pattern string) squirrel.Sqlizer
}

// DB is a connection pool bound to its dialect.
type DB struct {
	*sql.DB
	dialect Dialect
}

func (d *DB) Dialect() Dialect {
	return d.dialect
}

// Builder returns a squirrel statement builder using the dialect placeholders.
func (d *DB) Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(d.dialect.Placeholder())
}

// QueryRows runs a select and scans every row into a map keyed by column name.
func (d *DB) QueryRows(ctx context.Context, query squirrel.Sqlizer) ([]map[string]any, error) {
	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := d.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to get columns: %w", err)
	}

	results := make([]map[string]any, 0)
	for rows.Next() {
		values := make([]any, len(columns))
		valuePtrs := make([]any, len(columns))
		for i := range columns {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		row := make(map[string]any, len(columns))
		for i, col := range columns {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
			} else {
				row[col] = values[i]
			}
		}
		results = append(results, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return results, nil
}

// QueryInt runs a query returning a single integer, such as COUNT(*).
func (d *DB) QueryInt(ctx context.Context, query squirrel.Sqlizer) (int, error) {
	stmt, args, err := query.ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build query: %w", err)
	}
	var n int
	if err := d.QueryRowContext(ctx, stmt, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to execute query: %w", err)
	}
	return n, nil
}

func (d *DB) Exec(ctx context.Context, query squirrel.Sqlizer) (sql.Result, error) {
	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build statement: %w", err)
	}
	res, err := d.ExecContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute statement: %w", err)
	}
	return res, nil
}

// CountRows counts every row of a table.
func (d *DB) CountRows(ctx context.Context, table string) (int, error) {
	return d.QueryInt(ctx, d.Builder().Select("COUNT(*)").From(d.dialect.Quote(table)))
}

// Columns lists the column names of a table without reading any rows.
func (d *DB) Columns(ctx context.Context, table string) ([]string, error) {
	stmt, args, err := d.Builder().Select("*").From(d.dialect.Quote(table)).Where("1 = 0").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}
	rows, err := d.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to read columns of %s: %w", table, err)
	}
	defer rows.Close()
	return rows.Columns()
}
