package extractors

import (
	"erdgraph/internal/db"
	"erdgraph/internal/diagram"
)

// CockroachDB exposes pg_index without usable indkey arrays, so indexes and
// primary keys come from information_schema instead. Stored columns are not
// key columns and are left out.
const (
	crdbIndexes = `
        SELECT table_schema, table_name, index_name, column_name, 'prefix', non_unique = 'NO', seq_in_index
        FROM information_schema.statistics
        WHERE table_schema NOT IN ` + pgSystemSchemas + `
          AND storing = 'NO'
          AND implicit = 'NO'
        ORDER BY table_schema, table_name, index_name, seq_in_index`

	crdbPrimaryKeys = `
        SELECT k.table_schema, k.table_name, k.column_name, ''
        FROM information_schema.table_constraints t
        JOIN information_schema.key_column_usage k
          ON t.constraint_name = k.constraint_name
         AND t.table_schema = k.table_schema
         AND t.table_name = k.table_name
        WHERE t.constraint_type = 'PRIMARY KEY'
          AND k.table_schema NOT IN ` + pgSystemSchemas + `
        ORDER BY k.table_schema, k.table_name, k.ordinal_position`
)

func init() {
	crdb := pgExtractor{databaseType: diagram.CockroachDB, indexes: crdbIndexes, primaryKeys: crdbPrimaryKeys}
	db.Register("pgx", crdb)
	db.Register("cockroachdb", crdb)
}
