package metadata

import "strings"

// ObjectType tells tables and views apart in a selection.
type ObjectType string

const (
	TableObject ObjectType = "table"
	ViewObject  ObjectType = "view"
)

// TableSelector picks one table or view. An empty Schema matches records
// without a schema.
type TableSelector struct {
	Schema string     `json:"schema"`
	Table  string     `json:"table"`
	Type   ObjectType `json:"type"`
}

// Filter narrows m to the selected tables and views. Columns, keys and
// indexes follow their table. A foreign key is kept when either of its ends
// is kept, so edges at the border of the selection stay visible. A custom
// type is kept when its schema holds a kept object or a kept column uses it.
func Filter(m DatabaseMetadata, selected []TableSelector) DatabaseMetadata {
	wantTables := make(map[string]bool)
	wantViews := make(map[string]bool)
	for _, s := range selected {
		if s.Type == ViewObject {
			wantViews[Key(s.Schema, s.Table)] = true
		} else {
			wantTables[Key(s.Schema, s.Table)] = true
		}
	}

	out := DatabaseMetadata{
		DatabaseName: m.DatabaseName,
		Version:      m.Version,
		Tables:       []TableInfo{},
		Views:        []ViewInfo{},
		Columns:      []ColumnInfo{},
		PKInfo:       []PrimaryKeyInfo{},
		Indexes:      []IndexInfo{},
		FKInfo:       []ForeignKeyInfo{},
	}

	keptTables := make(map[string]bool)
	keptSchemas := make(map[string]bool)
	for _, t := range m.Tables {
		if k := Key(t.Schema, t.Table); wantTables[k] {
			out.Tables = append(out.Tables, t)
			keptTables[k] = true
			keptSchemas[t.Schema] = true
		}
	}
	keptViews := make(map[string]bool)
	for _, v := range m.Views {
		if k := Key(v.Schema, v.ViewName); wantViews[k] {
			out.Views = append(out.Views, v)
			keptViews[k] = true
			keptSchemas[v.Schema] = true
		}
	}

	for _, c := range m.Columns {
		if k := Key(c.Schema, c.Table); keptTables[k] || keptViews[k] {
			out.Columns = append(out.Columns, c)
		}
	}
	for _, pk := range m.PKInfo {
		if keptTables[Key(pk.Schema, pk.Table)] {
			out.PKInfo = append(out.PKInfo, pk)
		}
	}
	for _, idx := range m.Indexes {
		if keptTables[Key(idx.Schema, idx.Table)] {
			out.Indexes = append(out.Indexes, idx)
		}
	}
	for _, fk := range m.FKInfo {
		if keptTables[Key(fk.Schema, fk.Table)] || keptTables[Key(fk.ReferenceSchema, fk.ReferenceTable)] {
			out.FKInfo = append(out.FKInfo, fk)
		}
	}

	if m.CustomTypes != nil {
		out.CustomTypes = []CustomTypeInfo{}
		for _, ct := range m.CustomTypes {
			if keptSchemas[ct.Schema] || usedByColumn(out.Columns, ct.Type) {
				out.CustomTypes = append(out.CustomTypes, ct)
			}
		}
	}
	return out
}

// usedByColumn reports whether any column type mentions typeName. Substring
// matching also catches array encodings such as "mood[]" or "_mood".
func usedByColumn(columns []ColumnInfo, typeName string) bool {
	name := strings.ToLower(typeName)
	for _, c := range columns {
		if strings.Contains(strings.ToLower(c.Type), name) {
			return true
		}
	}
	return false
}
