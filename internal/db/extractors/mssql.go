package extractors

import (
	"context"
	"database/sql"
	"fmt"

	"erdgraph/internal/db"
	"erdgraph/internal/diagram"
	"erdgraph/internal/metadata"
)

// mssqlExtractor implements Extractor for Microsoft SQL Server.
type mssqlExtractor struct{}

// This is the extractor for Microsoft SQL Server
func (mssqlExtractor) Extract(ctx context.Context, dbConn *sql.DB) (metadata.DatabaseMetadata, error) {
	m := db.NewMetadata()
	serverInfo(ctx, dbConn, &m, `SELECT DB_NAME(), @@VERSION`)

	// list tables with schema
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
		t.Type = "BASE TABLE"
		return t, nil
	}, `
        SELECT
          s.name AS schema_name,
          t.name AS table_name,
          CAST(sep.value AS nvarchar(4000)) AS comment,
          SUM(CASE WHEN p.index_id IN (0, 1) THEN p.rows ELSE 0 END) AS row_count
        FROM sys.schemas AS s
        JOIN sys.tables AS t
          ON s.schema_id = t.schema_id
        LEFT JOIN sys.extended_properties AS sep
          ON t.object_id = sep.major_id
         AND sep.minor_id = 0
         AND sep.name = 'MS_Description'
        LEFT JOIN sys.partitions AS p
          ON t.object_id = p.object_id
        GROUP BY s.name, t.name, CAST(sep.value AS nvarchar(4000))
        ORDER BY s.name, t.name`)
	if err != nil {
		return m, fmt.Errorf("query tables: %w", err)
	}
	m.Tables = tables

	columns, err := db.Collect(ctx, dbConn, func(r *sql.Rows) (metadata.ColumnInfo, error) {
		var c metadata.ColumnInfo
		var length, prec, scale sql.NullInt64
		var nullableInt int
		var def, collation sql.NullString
		if err := r.Scan(&c.Schema, &c.Table, &c.Name, &c.Type, &length, &prec, &scale,
			&c.OrdinalPosition, &nullableInt, &def, &collation); err != nil {
			return c, err
		}
		c.Nullable = nullableInt == 1
		// -1 marks (max) columns
		if length.Valid && length.Int64 == -1 {
			unbounded := "max"
			c.CharacterMaximumLength = &unbounded
		} else {
			c.CharacterMaximumLength = nullLength(length)
		}
		c.Precision = precision(prec, scale)
		c.Default = nullString(def)
		c.Collation = nullString(collation)
		return c, nil
	}, `
        SELECT TABLE_SCHEMA, TABLE_NAME, COLUMN_NAME, DATA_TYPE,
               CHARACTER_MAXIMUM_LENGTH, NUMERIC_PRECISION, NUMERIC_SCALE, ORDINAL_POSITION,
               CASE WHEN IS_NULLABLE = 'YES' THEN 1 ELSE 0 END, COLUMN_DEFAULT, COLLATION_NAME
        FROM INFORMATION_SCHEMA.COLUMNS
        ORDER BY TABLE_SCHEMA, TABLE_NAME, ORDINAL_POSITION`)
	if err != nil {
		return m, fmt.Errorf("query columns: %w", err)
	}
	m.Columns = columns

	m.Indexes = optional(ctx, dbConn, "indexes", func(r *sql.Rows) (metadata.IndexInfo, error) {
		var i metadata.IndexInfo
		var descending bool
		if err := r.Scan(&i.Schema, &i.Table, &i.Name, &i.Column, &i.IndexType, &i.Unique, &i.ColumnPosition, &descending); err != nil {
			return i, err
		}
		i.Direction = "asc"
		if descending {
			i.Direction = "desc"
		}
		return i, nil
	}, `
        SELECT s.name, t.name, i.name, c.name, i.type_desc, i.is_unique, ic.key_ordinal, ic.is_descending_key
        FROM sys.indexes i
        JOIN sys.tables t ON i.object_id = t.object_id
        JOIN sys.schemas s ON t.schema_id = s.schema_id
        JOIN sys.index_columns ic ON i.object_id = ic.object_id AND i.index_id = ic.index_id
        JOIN sys.columns c ON ic.object_id = c.object_id AND ic.column_id = c.column_id
        WHERE i.name IS NOT NULL
          AND ic.key_ordinal > 0
        ORDER BY s.name, t.name, i.name, ic.key_ordinal`)

	// primary keys
	m.PKInfo = optional(ctx, dbConn, "primary keys", func(r *sql.Rows) (metadata.PrimaryKeyInfo, error) {
		var pk metadata.PrimaryKeyInfo
		err := r.Scan(&pk.Schema, &pk.Table, &pk.Column)
		return pk, err
	}, `
        SELECT k.TABLE_SCHEMA, k.TABLE_NAME, k.COLUMN_NAME
        FROM INFORMATION_SCHEMA.TABLE_CONSTRAINTS t
        JOIN INFORMATION_SCHEMA.KEY_COLUMN_USAGE k ON t.CONSTRAINT_NAME = k.CONSTRAINT_NAME AND t.TABLE_SCHEMA = k.TABLE_SCHEMA
        WHERE t.CONSTRAINT_TYPE = 'PRIMARY KEY'
        ORDER BY k.TABLE_SCHEMA, k.TABLE_NAME, k.ORDINAL_POSITION`)

	// foreign keys, one row per column pair
	m.FKInfo = optional(ctx, dbConn, "foreign keys", func(r *sql.Rows) (metadata.ForeignKeyInfo, error) {
		var fk metadata.ForeignKeyInfo
		err := r.Scan(&fk.Schema, &fk.Table, &fk.Column, &fk.ForeignKeyName,
			&fk.ReferenceSchema, &fk.ReferenceTable, &fk.ReferenceColumn)
		return fk, err
	}, `
        SELECT
            OBJECT_SCHEMA_NAME(fkc.parent_object_id),
            OBJECT_NAME(fkc.parent_object_id),
            c.name,
            fk.name,
            OBJECT_SCHEMA_NAME(fkc.referenced_object_id),
            OBJECT_NAME(fkc.referenced_object_id),
            rc.name
        FROM sys.foreign_keys fk
        JOIN sys.foreign_key_columns fkc ON fk.object_id = fkc.constraint_object_id
        JOIN sys.columns c ON fkc.parent_object_id = c.object_id AND fkc.parent_column_id = c.column_id
        JOIN sys.columns rc ON fkc.referenced_object_id = rc.object_id AND fkc.referenced_column_id = rc.column_id
        ORDER BY fk.name, fkc.constraint_column_id`)

	// definitions are stored UTF-16LE, as the server returns nvarchar text
	m.Views = optional(ctx, dbConn, "views", func(r *sql.Rows) (metadata.ViewInfo, error) {
		var v metadata.ViewInfo
		var def sql.NullString
		if err := r.Scan(&v.Schema, &v.ViewName, &def); err != nil {
			return v, err
		}
		v.ViewDefinition = encodeView(diagram.SQLServer, v.Schema, v.ViewName, def.String)
		return v, nil
	}, `
        SELECT s.name, v.name, OBJECT_DEFINITION(v.object_id)
        FROM sys.views v
        JOIN sys.schemas s ON v.schema_id = s.schema_id
        ORDER BY s.name, v.name`)

	return m, nil
}

func init() {
	db.Register("sqlserver", mssqlExtractor{})
	db.Register("mssql", mssqlExtractor{})
}
