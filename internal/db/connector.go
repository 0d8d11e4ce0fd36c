package db

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	_ "github.com/denisenkom/go-mssqldb"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"erdgraph/internal/metadata"
	"erdgraph/pkg/config"
)

type Extractor interface {

	// Extract takes a database connection and returns its introspection payload
	Extract(ctx context.Context, db *sql.DB) (metadata.DatabaseMetadata, error)
}

var (
	mu       sync.RWMutex
	dialects = map[string]Extractor{}
)

// Register makes an Extractor available under name.
func Register(name string, e Extractor) {
	mu.Lock()
	defer mu.Unlock()
	dialects[strings.ToLower(name)] = e
}

func lookup(name string) (Extractor, bool) {
	mu.RLock()
	defer mu.RUnlock()
	e, ok := dialects[name]
	return e, ok
}

// listRegistered returns the registered dialect keys (for diagnostics).
func listRegistered() []string {
	mu.RLock()
	defer mu.RUnlock()
	keys := make([]string, 0, len(dialects))
	for k := range dialects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ConnectAndExtract connects to the database and extracts its introspection
// payload. The connection is closed before returning.
func ConnectAndExtract(ctx context.Context, driver, dsn string, timeout time.Duration) (metadata.DatabaseMetadata, error) {
	driver = config.NormalizeDriver(driver)
	extractor, ok := lookup(driver)
	if !ok {
		return metadata.DatabaseMetadata{}, fmt.Errorf("dialect not registered: %q (available: %v)", driver, listRegistered())
	}
	dbConn, err := sql.Open(driver, dsn)
	if err != nil {
		return metadata.DatabaseMetadata{}, err
	}
	defer dbConn.Close()

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := dbConn.PingContext(ctx); err != nil {
		return metadata.DatabaseMetadata{}, err
	}
	return extractor.Extract(ctx, dbConn)
}

// RegisteredDialects is a helper that allows main to print registered dialects
func RegisteredDialects() []string {
	return listRegistered()
}

// NewMetadata returns a payload with every required section present and
// empty, ready for an extractor to fill.
func NewMetadata() metadata.DatabaseMetadata {
	return metadata.DatabaseMetadata{
		FKInfo:      []metadata.ForeignKeyInfo{},
		PKInfo:      []metadata.PrimaryKeyInfo{},
		Columns:     []metadata.ColumnInfo{},
		Indexes:     []metadata.IndexInfo{},
		Tables:      []metadata.TableInfo{},
		Views:       []metadata.ViewInfo{},
		CustomTypes: []metadata.CustomTypeInfo{},
	}
}

// Collect runs query and scans every row with scan.
func Collect[T any](ctx context.Context, dbConn *sql.DB, scan func(*sql.Rows) (T, error), query string, args ...any) ([]T, error) {
	rows, err := dbConn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]T, 0)
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
