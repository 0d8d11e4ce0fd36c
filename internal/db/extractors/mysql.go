package extractors

import (
	"context"
	"database/sql"
	"fmt"

	"erdgraph/internal/db"
	"erdgraph/internal/diagram"
	"erdgraph/internal/metadata"
)

const mySystemSchemas = `('mysql', 'information_schema', 'performance_schema', 'sys')`

// myExtractor implements Extractor for MySQL (information_schema).
type myExtractor struct{}

// This is the extractor for MySQL
func (myExtractor) Extract(ctx context.Context, dbConn *sql.DB) (metadata.DatabaseMetadata, error) {
	m := db.NewMetadata()
	serverInfo(ctx, dbConn, &m, `SELECT DATABASE(), VERSION()`)

	tables, err := db.Collect(ctx, dbConn, func(r *sql.Rows) (metadata.TableInfo, error) {
		var t metadata.TableInfo
		var rows sql.NullInt64
		var engine, collation, comment sql.NullString
		if err := r.Scan(&t.Schema, &t.Table, &rows, &engine, &collation, &comment); err != nil {
			return t, err
		}
		if rows.Valid {
			t.Rows = &rows.Int64
		}
		t.Type = "BASE TABLE"
		t.Engine = engine.String
		t.Collation = collation.String
		if comment.String != "" {
			t.Comment = &comment.String
		}
		return t, nil
	}, `
        SELECT table_schema, table_name, table_rows, engine, table_collation, table_comment
        FROM information_schema.tables
        WHERE table_type = 'BASE TABLE'
          AND table_schema NOT IN `+mySystemSchemas+`
        ORDER BY table_schema, table_name`)
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
		if comment.String != "" {
			c.Comment = &comment.String
		}
		return c, nil
	}, `
        SELECT table_schema, table_name, column_name, data_type,
               character_maximum_length, numeric_precision, numeric_scale,
               ordinal_position, is_nullable = 'YES', column_default, collation_name, column_comment
        FROM information_schema.columns
        WHERE table_schema NOT IN `+mySystemSchemas+`
        ORDER BY table_schema, table_name, ordinal_position`)
	if err != nil {
		return m, fmt.Errorf("query columns: %w", err)
	}
	m.Columns = columns

	m.Indexes = optional(ctx, dbConn, "indexes", func(r *sql.Rows) (metadata.IndexInfo, error) {
		var i metadata.IndexInfo
		var cardinality sql.NullInt64
		var nonUnique int
		var direction sql.NullString
		if err := r.Scan(&i.Schema, &i.Table, &i.Name, &i.Column, &i.IndexType, &nonUnique,
			&i.ColumnPosition, &cardinality, &direction); err != nil {
			return i, err
		}
		i.Unique = nonUnique == 0
		if cardinality.Valid {
			i.Cardinality = &cardinality.Int64
		}
		if direction.String == "D" {
			i.Direction = "desc"
		} else {
			i.Direction = "asc"
		}
		return i, nil
	}, `
        SELECT table_schema, table_name, index_name, column_name, index_type, non_unique,
               seq_in_index, cardinality, collation
        FROM information_schema.statistics
        WHERE table_schema NOT IN `+mySystemSchemas+`
          AND column_name IS NOT NULL
        ORDER BY table_schema, table_name, index_name, seq_in_index`)

	m.PKInfo = optional(ctx, dbConn, "primary keys", func(r *sql.Rows) (metadata.PrimaryKeyInfo, error) {
		var pk metadata.PrimaryKeyInfo
		err := r.Scan(&pk.Schema, &pk.Table, &pk.Column)
		return pk, err
	}, `
        SELECT table_schema, table_name, column_name
        FROM information_schema.key_column_usage
        WHERE constraint_name = 'PRIMARY'
          AND table_schema NOT IN `+mySystemSchemas+`
        ORDER BY table_schema, table_name, ordinal_position`)

	m.FKInfo = optional(ctx, dbConn, "foreign keys", func(r *sql.Rows) (metadata.ForeignKeyInfo, error) {
		var fk metadata.ForeignKeyInfo
		err := r.Scan(&fk.Schema, &fk.Table, &fk.Column, &fk.ForeignKeyName,
			&fk.ReferenceSchema, &fk.ReferenceTable, &fk.ReferenceColumn)
		return fk, err
	}, `
        SELECT table_schema, table_name, column_name, constraint_name,
               referenced_table_schema, referenced_table_name, referenced_column_name
        FROM information_schema.key_column_usage
        WHERE referenced_table_name IS NOT NULL
          AND table_schema NOT IN `+mySystemSchemas+`
        ORDER BY table_schema, table_name, constraint_name, ordinal_position`)

	m.Views = optional(ctx, dbConn, "views", func(r *sql.Rows) (metadata.ViewInfo, error) {
		var v metadata.ViewInfo
		var def sql.NullString
		if err := r.Scan(&v.Schema, &v.ViewName, &def); err != nil {
			return v, err
		}
		v.ViewDefinition = encodeView(diagram.MySQL, v.Schema, v.ViewName, def.String)
		return v, nil
	}, `
        SELECT table_schema, table_name, view_definition
        FROM information_schema.views
        WHERE table_schema NOT IN `+mySystemSchemas+`
        ORDER BY table_schema, table_name`)

	return m, nil
}

func init() {
	db.Register("mysql", myExtractor{})
	db.Register("mariadb", myExtractor{})
}
