package extractors

import (
	"context"
	"database/sql"
	"strconv"

	"erdgraph/internal/db"
	"erdgraph/internal/diagram"
	"erdgraph/internal/dialect"
	"erdgraph/internal/logger"
	"erdgraph/internal/metadata"
)

// optional collects a section that some servers or privileges do not expose.
// Failures are logged and leave the section empty.
func optional[T any](ctx context.Context, dbConn *sql.DB, what string, scan func(*sql.Rows) (T, error), query string, args ...any) []T {
	out, err := db.Collect(ctx, dbConn, scan, query, args...)
	if err != nil {
		logger.Error("query %s: %v", what, err)
		return []T{}
	}
	logger.Debug("%s: %d rows", what, len(out))
	return out
}

func nullString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}

func nullLength(n sql.NullInt64) *string {
	if !n.Valid {
		return nil
	}
	s := strconv.FormatInt(n.Int64, 10)
	return &s
}

func precision(p, s sql.NullInt64) *metadata.Precision {
	if !p.Valid && !s.Valid {
		return nil
	}
	out := &metadata.Precision{}
	if p.Valid {
		v := int(p.Int64)
		out.Precision = &v
	}
	if s.Valid {
		v := int(s.Int64)
		out.Scale = &v
	}
	return out
}

// encodeView encodes a view definition the way t stores it in a payload.
func encodeView(t diagram.DatabaseType, schema, name, definition string) string {
	encoded, err := dialect.For(t).EncodeView(definition)
	if err != nil {
		logger.Warn("encode view %s.%s: %v", schema, name, err)
		return ""
	}
	return encoded
}

// serverInfo fills the database name and version from a single row query.
func serverInfo(ctx context.Context, dbConn *sql.DB, m *metadata.DatabaseMetadata, query string) {
	var name, version sql.NullString
	if err := dbConn.QueryRowContext(ctx, query).Scan(&name, &version); err != nil {
		logger.Error("query server info: %v", err)
		return
	}
	m.DatabaseName = name.String
	m.Version = version.String
}
