package builder

import (
	"sort"
	"strings"

	"erdgraph/internal/diagram"
	"erdgraph/internal/metadata"
)

var palette = []string{
	"#ff6363",
	"#ff6b8a",
	"#8a61f5",
	"#7175fa",
	"#42e0c0",
	"#4dee8a",
	"#c05dcf",
	"#b067e9",
	"#ffe374",
	"#ff9f74",
}

const viewColor = "#b0b0b0"

type object struct {
	schema  string
	name    string
	comment *string
	view    *metadata.ViewInfo
}

// Tables builds one table per table record and one per view record that is
// not also listed as a table. Tables come before views, each group sorted by
// name.
func (b *Builder) Tables(m metadata.DatabaseMetadata) []diagram.Table {
	columns := make(map[string][]metadata.ColumnInfo)
	for _, c := range m.Columns {
		k := metadata.Key(c.Schema, c.Table)
		columns[k] = append(columns[k], c)
	}
	indexRows := make(map[string][]metadata.IndexInfo)
	for _, idx := range m.Indexes {
		k := metadata.Key(idx.Schema, idx.Table)
		indexRows[k] = append(indexRows[k], idx)
	}
	pks := make(map[string]map[string]bool)
	for _, pk := range m.PKInfo {
		k := metadata.Key(pk.Schema, pk.Table)
		if pks[k] == nil {
			pks[k] = make(map[string]bool)
		}
		pks[k][pk.Column] = true
	}
	views := make(map[string]*metadata.ViewInfo, len(m.Views))
	for i := range m.Views {
		v := &m.Views[i]
		k := metadata.Key(v.Schema, v.ViewName)
		if _, ok := views[k]; !ok {
			views[k] = v
		}
	}

	var objects []object
	seen := make(map[string]bool)
	for _, t := range m.Tables {
		k := metadata.Key(t.Schema, t.Table)
		if seen[k] {
			continue
		}
		seen[k] = true
		objects = append(objects, object{schema: t.Schema, name: t.Table, comment: t.Comment, view: views[k]})
	}
	for _, v := range m.Views {
		k := metadata.Key(v.Schema, v.ViewName)
		if seen[k] {
			continue
		}
		seen[k] = true
		objects = append(objects, object{schema: v.Schema, name: v.ViewName, view: views[k]})
	}

	orphans := make([]string, 0)
	for k := range columns {
		if !seen[k] {
			orphans = append(orphans, k)
		}
	}
	sort.Strings(orphans)
	for _, k := range orphans {
		b.gap(GapColumn, "columns of %s have no table or view", k)
	}

	tables := make([]diagram.Table, 0, len(objects))
	for _, o := range objects {
		k := metadata.Key(o.schema, o.name)
		aggregated := metadata.AggregateIndexes(indexRows[k])
		fields := b.Fields(columns[k], pks[k], aggregated)
		t := diagram.Table{
			ID:        b.newID(),
			Name:      o.name,
			Schema:    o.schema,
			Fields:    fields,
			Indexes:   b.Indexes(k, aggregated, pks[k], fields),
			Comments:  o.comment,
			IsView:    o.view != nil,
			CreatedAt: b.createdAt,
		}
		if o.view != nil {
			t.IsMaterializedView = b.materialized(k, o.view.ViewDefinition)
		}
		tables = append(tables, t)
	}

	sort.SliceStable(tables, func(i, j int) bool {
		if tables[i].IsView != tables[j].IsView {
			return !tables[i].IsView
		}
		if tables[i].Name != tables[j].Name {
			return tables[i].Name < tables[j].Name
		}
		return tables[i].Schema < tables[j].Schema
	})

	for i := range tables {
		if tables[i].IsView {
			tables[i].Color = viewColor
		} else {
			tables[i].Color = palette[i%len(palette)]
		}
	}
	return tables
}

func (b *Builder) materialized(key, encoded string) bool {
	if encoded == "" {
		return false
	}
	definition, err := b.dialect.DecodeView(encoded)
	if err != nil {
		b.gap(GapView, "definition of %s: %v", key, err)
	}
	return strings.Contains(strings.ToLower(definition), "materialized")
}
