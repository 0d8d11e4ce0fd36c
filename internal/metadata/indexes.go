package metadata

import "sort"

type IndexColumn struct {
	Name     string `json:"name"`
	Position int    `json:"position"`
}

// AggregatedIndexInfo is one logical index rebuilt from its per-column rows.
type AggregatedIndexInfo struct {
	Schema  string        `json:"schema"`
	Table   string        `json:"table"`
	Name    string        `json:"name"`
	Unique  bool          `json:"unique"`
	Columns []IndexColumn `json:"columns"`
}

// ColumnNames returns the index columns in index order.
func (a AggregatedIndexInfo) ColumnNames() []string {
	names := make([]string, len(a.Columns))
	for i, c := range a.Columns {
		names[i] = c.Name
	}
	return names
}

// AggregateIndexes groups index rows by schema, table and index name, keeping
// the order in which indexes first appear. Columns are sorted by their
// position inside the index.
func AggregateIndexes(rows []IndexInfo) []AggregatedIndexInfo {
	var out []AggregatedIndexInfo
	pos := make(map[string]int)
	for _, r := range rows {
		k := Key(r.Schema, r.Table) + "::" + r.Name
		i, ok := pos[k]
		if !ok {
			i = len(out)
			pos[k] = i
			out = append(out, AggregatedIndexInfo{
				Schema: r.Schema,
				Table:  r.Table,
				Name:   r.Name,
				Unique: r.Unique,
			})
		}
		out[i].Columns = append(out[i].Columns, IndexColumn{Name: r.Column, Position: r.ColumnPosition})
	}
	for i := range out {
		sort.SliceStable(out[i].Columns, func(a, b int) bool {
			return out[i].Columns[a].Position < out[i].Columns[b].Position
		})
	}
	return out
}
