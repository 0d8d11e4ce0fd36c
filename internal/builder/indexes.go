package builder

import (
	"erdgraph/internal/diagram"
	"erdgraph/internal/metadata"
)

// Indexes builds the indexes of one table. When an aggregated index covers
// exactly the primary key columns it becomes the table's primary key index
// and is not emitted a second time as a plain index. Without such an index
// the primary key lives on the fields only.
func (b *Builder) Indexes(table string, aggregated []metadata.AggregatedIndexInfo, pkColumns map[string]bool, fields []diagram.Field) []diagram.Index {
	byName := make(map[string]string, len(fields))
	for _, f := range fields {
		byName[f.Name] = f.ID
	}

	out := make([]diagram.Index, 0, len(aggregated))
	pk := -1
	if len(pkColumns) > 0 {
		pk = matchPrimaryKey(aggregated, pkColumns)
	}
	if pk >= 0 {
		idx := b.index(table, aggregated[pk], byName)
		idx.Unique = true
		idx.IsPrimaryKey = true
		if len(idx.FieldIDs) > 0 {
			out = append(out, idx)
		}
	}

	for i, agg := range aggregated {
		if i == pk {
			continue
		}
		idx := b.index(table, agg, byName)
		if len(idx.FieldIDs) == 0 {
			b.gap(GapIndexColumn, "index %s on %s has no resolvable columns", agg.Name, table)
			continue
		}
		out = append(out, idx)
	}
	return out
}

func (b *Builder) index(table string, agg metadata.AggregatedIndexInfo, fieldIDs map[string]string) diagram.Index {
	idx := diagram.Index{
		ID:        b.newID(),
		Name:      agg.Name,
		Unique:    agg.Unique,
		FieldIDs:  make([]string, 0, len(agg.Columns)),
		CreatedAt: b.createdAt,
	}
	for _, c := range agg.Columns {
		id, ok := fieldIDs[c.Name]
		if !ok {
			b.gap(GapIndexColumn, "index %s on %s references unknown column %s", agg.Name, table, c.Name)
			continue
		}
		idx.FieldIDs = append(idx.FieldIDs, id)
	}
	return idx
}

// matchPrimaryKey returns the position of the index whose column set equals
// the primary key column set, ignoring order, or -1.
func matchPrimaryKey(aggregated []metadata.AggregatedIndexInfo, pkColumns map[string]bool) int {
	for i, agg := range aggregated {
		cols := make(map[string]bool, len(agg.Columns))
		for _, c := range agg.Columns {
			cols[c.Name] = true
		}
		if len(cols) != len(pkColumns) {
			continue
		}
		match := true
		for name := range pkColumns {
			if !cols[name] {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}
