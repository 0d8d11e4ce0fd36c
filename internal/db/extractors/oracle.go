//go:build oracle
// +build oracle

package extractors

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/godror/godror"

	"erdgraph/internal/db"
	"erdgraph/internal/diagram"
	"erdgraph/internal/metadata"
)

const oracleUsers = `(SELECT username FROM all_users WHERE oracle_maintained = 'N')`

// oracleExtractor implements Extractor for Oracle. Schemas are owners.
type oracleExtractor struct{}

// This is the extractor for Oracle
func (oracleExtractor) Extract(ctx context.Context, dbConn *sql.DB) (metadata.DatabaseMetadata, error) {
	m := db.NewMetadata()
	serverInfo(ctx, dbConn, &m, `SELECT sys_context('USERENV', 'DB_NAME'), banner FROM v$version WHERE ROWNUM = 1`)

	tables, err := db.Collect(ctx, dbConn, func(r *sql.Rows) (metadata.TableInfo, error) {
		var t metadata.TableInfo
		var comment sql.NullString
		var rows sql.NullInt64
		if err := r.Scan(&t.Schema, &t.Table, &comment, &rows); err != nil {
			return t, err
		}
		t.Comment = nullString(comment)
		if rows.Valid {
			t.Rows = &rows.Int64
		}
		t.Type = "TABLE"
		return t, nil
	}, `
        SELECT atab.owner, atab.table_name, acom.comments, atab.num_rows
        FROM all_tables atab
        LEFT JOIN all_tab_comments acom
          ON acom.owner = atab.owner
         AND acom.table_name = atab.table_name
        WHERE atab.owner IN `+oracleUsers+`
        ORDER BY atab.owner, atab.table_name`)
	if err != nil {
		return m, fmt.Errorf("query tables: %w", err)
	}
	m.Tables = tables

	columns, err := db.Collect(ctx, dbConn, func(r *sql.Rows) (metadata.ColumnInfo, error) {
		var c metadata.ColumnInfo
		var length, prec, scale sql.NullInt64
		var nullable string
		var def, comment sql.NullString
		if err := r.Scan(&c.Schema, &c.Table, &c.Name, &c.Type, &length, &prec, &scale,
			&c.OrdinalPosition, &nullable, &def, &comment); err != nil {
			return c, err
		}
		c.Nullable = nullable == "Y"
		c.CharacterMaximumLength = nullLength(length)
		c.Precision = precision(prec, scale)
		c.Default = nullString(def)
		c.Comment = nullString(comment)
		return c, nil
	}, `
        SELECT col.owner, col.table_name, col.column_name, col.data_type,
               col.char_length, col.data_precision, col.data_scale, col.column_id,
               col.nullable, col.data_default, ccom.comments
        FROM all_tab_columns col
        LEFT JOIN all_col_comments ccom
          ON ccom.owner = col.owner
         AND ccom.table_name = col.table_name
         AND ccom.column_name = col.column_name
        WHERE col.owner IN `+oracleUsers+`
        ORDER BY col.owner, col.table_name, col.column_id`)
	if err != nil {
		return m, fmt.Errorf("query columns: %w", err)
	}
	m.Columns = columns

	m.Indexes = optional(ctx, dbConn, "indexes", func(r *sql.Rows) (metadata.IndexInfo, error) {
		var i metadata.IndexInfo
		var uniqueness, descend string
		if err := r.Scan(&i.Schema, &i.Table, &i.Name, &i.Column, &i.IndexType, &uniqueness, &i.ColumnPosition, &descend); err != nil {
			return i, err
		}
		i.Unique = uniqueness == "UNIQUE"
		i.Direction = "asc"
		if descend == "DESC" {
			i.Direction = "desc"
		}
		return i, nil
	}, `
        SELECT ic.table_owner, ic.table_name, ic.index_name, ic.column_name,
               ai.index_type, ai.uniqueness, ic.column_position, ic.descend
        FROM all_ind_columns ic
        JOIN all_indexes ai ON ai.owner = ic.index_owner AND ai.index_name = ic.index_name
        WHERE ic.table_owner IN `+oracleUsers+`
        ORDER BY ic.table_owner, ic.table_name, ic.index_name, ic.column_position`)

	m.PKInfo = optional(ctx, dbConn, "primary keys", func(r *sql.Rows) (metadata.PrimaryKeyInfo, error) {
		var pk metadata.PrimaryKeyInfo
		err := r.Scan(&pk.Schema, &pk.Table, &pk.Column)
		return pk, err
	}, `
        SELECT acc.owner, acc.table_name, acc.column_name
        FROM all_cons_columns acc
        JOIN all_constraints ac ON acc.owner = ac.owner AND acc.constraint_name = ac.constraint_name
        WHERE ac.constraint_type = 'P'
          AND acc.owner IN `+oracleUsers+`
        ORDER BY acc.owner, acc.table_name, acc.position`)

	m.FKInfo = optional(ctx, dbConn, "foreign keys", func(r *sql.Rows) (metadata.ForeignKeyInfo, error) {
		var fk metadata.ForeignKeyInfo
		err := r.Scan(&fk.Schema, &fk.Table, &fk.Column, &fk.ForeignKeyName,
			&fk.ReferenceSchema, &fk.ReferenceTable, &fk.ReferenceColumn)
		return fk, err
	}, `
        SELECT a.owner, a.table_name, acc.column_name, a.constraint_name,
               rcc.owner, rcc.table_name, rcc.column_name
        FROM all_constraints a
        JOIN all_cons_columns acc
          ON a.owner = acc.owner
         AND a.constraint_name = acc.constraint_name
        JOIN all_cons_columns rcc
          ON a.r_owner = rcc.owner
         AND a.r_constraint_name = rcc.constraint_name
         AND nvl(acc.position, 0) = nvl(rcc.position, 0)
        WHERE a.constraint_type = 'R'
          AND a.owner IN `+oracleUsers+`
        ORDER BY a.owner, a.table_name, a.constraint_name, acc.position`)

	m.Views = optional(ctx, dbConn, "views", func(r *sql.Rows) (metadata.ViewInfo, error) {
		var v metadata.ViewInfo
		var def sql.NullString
		if err := r.Scan(&v.Schema, &v.ViewName, &def); err != nil {
			return v, err
		}
		v.ViewDefinition = encodeView(diagram.Oracle, v.Schema, v.ViewName, def.String)
		return v, nil
	}, `
        SELECT owner, view_name, text_vc
        FROM all_views
        WHERE owner IN `+oracleUsers+`
        UNION ALL
        SELECT owner, mview_name, 'CREATE MATERIALIZED VIEW ' || mview_name
        FROM all_mviews
        WHERE owner IN `+oracleUsers)

	return m, nil
}

func init() {
	db.Register("godror", oracleExtractor{})
	db.Register("oracle", oracleExtractor{})
}
