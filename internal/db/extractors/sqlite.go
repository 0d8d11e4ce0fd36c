package extractors

import (
	"context"
	"database/sql"
	"fmt"

	"erdgraph/internal/db"
	"erdgraph/internal/diagram"
	"erdgraph/internal/metadata"
)

// sqliteExtractor implements Extractor for SQLite. SQLite has no schemas;
// every record carries an empty schema.
type sqliteExtractor struct{}

// This is the extractor for SQLite
func (sqliteExtractor) Extract(ctx context.Context, dbConn *sql.DB) (metadata.DatabaseMetadata, error) {
	m := db.NewMetadata()
	serverInfo(ctx, dbConn, &m, `SELECT 'main', sqlite_version()`)

	tables, err := db.Collect(ctx, dbConn, func(r *sql.Rows) (metadata.TableInfo, error) {
		var t metadata.TableInfo
		err := r.Scan(&t.Table)
		t.Type = "table"
		return t, err
	}, `
        SELECT name
        FROM sqlite_master
        WHERE type = 'table'
          AND name NOT LIKE 'sqlite_%'
        ORDER BY name`)
	if err != nil {
		return m, fmt.Errorf("query tables: %w", err)
	}
	m.Tables = tables

	// pk is the 1-based position inside the primary key, 0 for other columns
	type column struct {
		info metadata.ColumnInfo
		pk   int
	}
	columns, err := db.Collect(ctx, dbConn, func(r *sql.Rows) (column, error) {
		var c column
		var notNull int
		var def sql.NullString
		if err := r.Scan(&c.info.Table, &c.info.OrdinalPosition, &c.info.Name, &c.info.Type, &notNull, &def, &c.pk); err != nil {
			return c, err
		}
		c.info.Nullable = notNull == 0
		c.info.Default = nullString(def)
		return c, nil
	}, `
        SELECT m.name, p.cid, p.name, p.type, p."notnull", p.dflt_value, p.pk
        FROM sqlite_master m
        JOIN pragma_table_info(m.name) p
        WHERE m.type IN ('table', 'view')
          AND m.name NOT LIKE 'sqlite_%'
        ORDER BY m.name, p.cid`)
	if err != nil {
		return m, fmt.Errorf("query columns: %w", err)
	}
	pkColumns := make(map[string]map[int]string)
	for _, c := range columns {
		if c.info.Type == "" {
			c.info.Type = "blob"
		}
		m.Columns = append(m.Columns, c.info)
		if c.pk > 0 {
			if pkColumns[c.info.Table] == nil {
				pkColumns[c.info.Table] = make(map[int]string)
			}
			pkColumns[c.info.Table][c.pk] = c.info.Name
		}
	}
	for _, t := range m.Tables {
		for pos := 1; pos <= len(pkColumns[t.Table]); pos++ {
			m.PKInfo = append(m.PKInfo, metadata.PrimaryKeyInfo{Table: t.Table, Column: pkColumns[t.Table][pos]})
		}
	}

	m.Indexes = optional(ctx, dbConn, "indexes", func(r *sql.Rows) (metadata.IndexInfo, error) {
		var i metadata.IndexInfo
		var column sql.NullString
		if err := r.Scan(&i.Table, &i.Name, &i.Unique, &i.ColumnPosition, &column, &i.IndexType); err != nil {
			return i, err
		}
		// expression indexes have no column name
		i.Column = column.String
		if i.Column == "" {
			i.Column = fmt.Sprintf("expr%d", i.ColumnPosition)
		}
		return i, nil
	}, `
        SELECT m.name, il.name, il."unique", ii.seqno + 1, ii.name, il.origin
        FROM sqlite_master m
        JOIN pragma_index_list(m.name) il
        JOIN pragma_index_info(il.name) ii
        WHERE m.type = 'table'
          AND m.name NOT LIKE 'sqlite_%'
        ORDER BY m.name, il.name, ii.seqno`)

	type reference struct {
		info metadata.ForeignKeyInfo
		id   int
	}
	references := optional(ctx, dbConn, "foreign keys", func(r *sql.Rows) (reference, error) {
		var ref reference
		var to sql.NullString
		if err := r.Scan(&ref.info.Table, &ref.id, &ref.info.ReferenceTable, &ref.info.Column, &to); err != nil {
			return ref, err
		}
		ref.info.ReferenceColumn = to.String
		return ref, nil
	}, `
        SELECT m.name, f.id, f."table", f."from", f."to"
        FROM sqlite_master m
        JOIN pragma_foreign_key_list(m.name) f
        WHERE m.type = 'table'
          AND m.name NOT LIKE 'sqlite_%'
        ORDER BY m.name, f.id, f.seq`)
	for _, ref := range references {
		fk := ref.info
		// SQLite keeps no constraint names
		fk.ForeignKeyName = fmt.Sprintf("fk_%s_%d", fk.Table, ref.id)
		if fk.ReferenceColumn == "" {
			// a reference without columns targets the primary key
			pk := pkColumns[fk.ReferenceTable]
			if len(pk) != 1 {
				continue
			}
			fk.ReferenceColumn = pk[1]
		}
		m.FKInfo = append(m.FKInfo, fk)
	}

	m.Views = optional(ctx, dbConn, "views", func(r *sql.Rows) (metadata.ViewInfo, error) {
		var v metadata.ViewInfo
		var def sql.NullString
		if err := r.Scan(&v.ViewName, &def); err != nil {
			return v, err
		}
		v.ViewDefinition = encodeView(diagram.SQLite, "", v.ViewName, def.String)
		return v, nil
	}, `
        SELECT name, sql
        FROM sqlite_master
        WHERE type = 'view'
        ORDER BY name`)

	return m, nil
}

func init() {
	db.Register("sqlite3", sqliteExtractor{})
	db.Register("sqlite", sqliteExtractor{})
}
