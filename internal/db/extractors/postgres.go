package extractors

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/lib/pq"

	"erdgraph/internal/db"
	"erdgraph/internal/diagram"
	"erdgraph/internal/metadata"
)

const pgSystemSchemas = `('pg_catalog', 'information_schema', 'pg_toast', 'crdb_internal', 'pg_extension')`

const (
	pgTables = `
        SELECT t.table_schema, t.table_name,
               obj_description((quote_ident(t.table_schema)||'.'||quote_ident(t.table_name))::regclass) AS table_comment,
               c.reltuples::bigint AS row_estimate
        FROM information_schema.tables t
        LEFT JOIN pg_namespace n ON n.nspname = t.table_schema
        LEFT JOIN pg_class c ON c.relnamespace = n.oid AND c.relname = t.table_name
        WHERE t.table_type = 'BASE TABLE'
          AND t.table_schema NOT IN ` + pgSystemSchemas + `
        ORDER BY t.table_schema, t.table_name`

	pgColumns = `
        SELECT c.table_schema, c.table_name, c.column_name,
               CASE WHEN c.data_type = 'ARRAY' THEN ltrim(c.udt_name, '_') || '[]'
                    WHEN c.data_type = 'USER-DEFINED' THEN c.udt_name
                    ELSE c.data_type END AS data_type,
               c.character_maximum_length, c.numeric_precision, c.numeric_scale,
               c.ordinal_position, c.is_nullable = 'YES', c.column_default, c.collation_name,
               col_description((quote_ident(c.table_schema)||'.'||quote_ident(c.table_name))::regclass, c.ordinal_position::int)
        FROM information_schema.columns c
        WHERE c.table_schema NOT IN ` + pgSystemSchemas + `
        ORDER BY c.table_schema, c.table_name, c.ordinal_position`

	pgIndexes = `
        SELECT ns.nspname, t.relname, i.relname, a.attname, am.amname, ix.indisunique, k.ord::int
        FROM pg_index ix
        JOIN pg_class t ON t.oid = ix.indrelid
        JOIN pg_class i ON i.oid = ix.indexrelid
        JOIN pg_namespace ns ON ns.oid = t.relnamespace
        JOIN pg_am am ON am.oid = i.relam
        CROSS JOIN LATERAL unnest(ix.indkey) WITH ORDINALITY AS k(attnum, ord)
        JOIN pg_attribute a ON a.attrelid = t.oid AND a.attnum = k.attnum
        WHERE ns.nspname NOT IN ` + pgSystemSchemas + `
        ORDER BY ns.nspname, t.relname, i.relname, k.ord`

	pgPrimaryKeys = `
        SELECT ns.nspname, c.relname, a.attname, pg_get_constraintdef(con.oid)
        FROM pg_constraint con
        JOIN pg_class c ON c.oid = con.conrelid
        JOIN pg_namespace ns ON ns.oid = c.relnamespace
        CROSS JOIN LATERAL unnest(con.conkey) AS k(attnum)
        JOIN pg_attribute a ON a.attrelid = c.oid AND a.attnum = k.attnum
        WHERE con.contype = 'p'
          AND ns.nspname NOT IN ` + pgSystemSchemas

	pgForeignKeys = `
        SELECT ns.nspname, cl.relname, a.attname, con.conname,
               rns.nspname, rcl.relname, ra.attname, pg_get_constraintdef(con.oid)
        FROM pg_constraint con
        JOIN pg_class cl ON cl.oid = con.conrelid
        JOIN pg_namespace ns ON ns.oid = cl.relnamespace
        JOIN pg_class rcl ON rcl.oid = con.confrelid
        JOIN pg_namespace rns ON rns.oid = rcl.relnamespace
        CROSS JOIN LATERAL unnest(con.conkey, con.confkey) AS k(attnum, refnum)
        JOIN pg_attribute a ON a.attrelid = con.conrelid AND a.attnum = k.attnum
        JOIN pg_attribute ra ON ra.attrelid = con.confrelid AND ra.attnum = k.refnum
        WHERE con.contype = 'f'
          AND ns.nspname NOT IN ` + pgSystemSchemas + `
        ORDER BY ns.nspname, cl.relname, con.conname`

	pgViews = `
        SELECT schemaname, viewname, definition
        FROM pg_views
        WHERE schemaname NOT IN ` + pgSystemSchemas + `
        UNION ALL
        SELECT schemaname, matviewname,
               'CREATE MATERIALIZED VIEW ' || matviewname || ' AS ' || definition
        FROM pg_matviews
        WHERE schemaname NOT IN ` + pgSystemSchemas

	pgEnums = `
        SELECT n.nspname, t.typname, array_agg(e.enumlabel ORDER BY e.enumsortorder)::text[]
        FROM pg_type t
        JOIN pg_enum e ON e.enumtypid = t.oid
        JOIN pg_namespace n ON n.oid = t.typnamespace
        WHERE n.nspname NOT IN ` + pgSystemSchemas + `
        GROUP BY n.nspname, t.typname
        ORDER BY n.nspname, t.typname`

	pgComposites = `
        SELECT n.nspname, t.typname, a.attname, format_type(a.atttypid, a.atttypmod)
        FROM pg_type t
        JOIN pg_namespace n ON n.oid = t.typnamespace
        JOIN pg_class c ON c.oid = t.typrelid AND c.relkind = 'c'
        JOIN pg_attribute a ON a.attrelid = c.oid AND a.attnum > 0 AND NOT a.attisdropped
        WHERE n.nspname NOT IN ` + pgSystemSchemas + `
        ORDER BY n.nspname, t.typname, a.attnum`
)

// pgExtractor implements Extractor using information_schema + pg_catalog
// queries. CockroachDB speaks the same catalog with a few gaps, so it reuses
// the extractor with its own index and primary key queries.
type pgExtractor struct {
	databaseType diagram.DatabaseType
	indexes      string
	primaryKeys  string
}

// This is the extractor for PostgreSQL
func (e pgExtractor) Extract(ctx context.Context, dbConn *sql.DB) (metadata.DatabaseMetadata, error) {
	m := db.NewMetadata()
	serverInfo(ctx, dbConn, &m, `SELECT current_database(), version()`)

	tables, err := db.Collect(ctx, dbConn, func(r *sql.Rows) (metadata.TableInfo, error) {
		var t metadata.TableInfo
		var comment sql.NullString
		var rows sql.NullInt64
		if err := r.Scan(&t.Schema, &t.Table, &comment, &rows); err != nil {
			return t, err
		}
		t.Comment = nullString(comment)
		if rows.Valid && rows.Int64 >= 0 {
			t.Rows = &rows.Int64
		}
		t.Type = "BASE TABLE"
		return t, nil
	}, pgTables)
	if err != nil {
		return m, fmt.Errorf("query tables: %w", err)
	}
	m.Tables = tables

	columns, err := db.Collect(ctx, dbConn, func(r *sql.Rows) (metadata.ColumnInfo, error) {
		var c metadata.ColumnInfo
		var length, prec, scale sql.NullInt64
		var def, collation, comment sql.NullString
		if err := r.Scan(&c.Schema, &c.Table, &c.Name, &c.Type, &length, &prec, &scale,
			&c.OrdinalPosition, &c.Nullable, &def, &collation, &comment); err != nil {
			return c, err
		}
		c.CharacterMaximumLength = nullLength(length)
		c.Precision = precision(prec, scale)
		c.Default = nullString(def)
		c.Collation = nullString(collation)
		c.Comment = nullString(comment)
		return c, nil
	}, pgColumns)
	if err != nil {
		return m, fmt.Errorf("query columns: %w", err)
	}
	m.Columns = columns

	m.Indexes = optional(ctx, dbConn, "indexes", func(r *sql.Rows) (metadata.IndexInfo, error) {
		var i metadata.IndexInfo
		err := r.Scan(&i.Schema, &i.Table, &i.Name, &i.Column, &i.IndexType, &i.Unique, &i.ColumnPosition)
		return i, err
	}, e.indexes)

	m.PKInfo = optional(ctx, dbConn, "primary keys", func(r *sql.Rows) (metadata.PrimaryKeyInfo, error) {
		var pk metadata.PrimaryKeyInfo
		var def sql.NullString
		err := r.Scan(&pk.Schema, &pk.Table, &pk.Column, &def)
		pk.PKDef = def.String
		return pk, err
	}, e.primaryKeys)

	m.FKInfo = optional(ctx, dbConn, "foreign keys", func(r *sql.Rows) (metadata.ForeignKeyInfo, error) {
		var fk metadata.ForeignKeyInfo
		var def sql.NullString
		err := r.Scan(&fk.Schema, &fk.Table, &fk.Column, &fk.ForeignKeyName,
			&fk.ReferenceSchema, &fk.ReferenceTable, &fk.ReferenceColumn, &def)
		fk.FKDef = def.String
		return fk, err
	}, pgForeignKeys)

	m.Views = optional(ctx, dbConn, "views", func(r *sql.Rows) (metadata.ViewInfo, error) {
		var v metadata.ViewInfo
		var def sql.NullString
		if err := r.Scan(&v.Schema, &v.ViewName, &def); err != nil {
			return v, err
		}
		v.ViewDefinition = encodeView(e.databaseType, v.Schema, v.ViewName, def.String)
		return v, nil
	}, pgViews)

	m.CustomTypes = append(m.CustomTypes, optional(ctx, dbConn, "enum types", func(r *sql.Rows) (metadata.CustomTypeInfo, error) {
		ct := metadata.CustomTypeInfo{Kind: string(diagram.Enum)}
		err := r.Scan(&ct.Schema, &ct.Type, pq.Array(&ct.Values))
		return ct, err
	}, pgEnums)...)

	type attribute struct {
		schema, typ string
		field       metadata.CustomTypeFieldInfo
	}
	attributes := optional(ctx, dbConn, "composite types", func(r *sql.Rows) (attribute, error) {
		var a attribute
		err := r.Scan(&a.schema, &a.typ, &a.field.Field, &a.field.Type)
		return a, err
	}, pgComposites)
	m.CustomTypes = append(m.CustomTypes, composites(attributes, func(a attribute) (string, string, metadata.CustomTypeFieldInfo) {
		return a.schema, a.typ, a.field
	})...)

	return m, nil
}

// composites folds one row per attribute into one composite type per
// schema and type name.
func composites[T any](rows []T, split func(T) (string, string, metadata.CustomTypeFieldInfo)) []metadata.CustomTypeInfo {
	byKey := make(map[string]*metadata.CustomTypeInfo)
	var keys []string
	for _, r := range rows {
		schema, typ, field := split(r)
		k := metadata.Key(schema, typ)
		ct, ok := byKey[k]
		if !ok {
			ct = &metadata.CustomTypeInfo{Schema: schema, Type: typ, Kind: string(diagram.Composite)}
			byKey[k] = ct
			keys = append(keys, k)
		}
		ct.Fields = append(ct.Fields, field)
	}
	sort.Strings(keys)
	out := make([]metadata.CustomTypeInfo, 0, len(keys))
	for _, k := range keys {
		out = append(out, *byKey[k])
	}
	return out
}

func init() {
	pg := pgExtractor{databaseType: diagram.PostgreSQL, indexes: pgIndexes, primaryKeys: pgPrimaryKeys}
	db.Register("postgres", pg)
	db.Register("postgresql", pg)
}
