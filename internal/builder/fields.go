package builder

import (
	"sort"

	"erdgraph/internal/diagram"
	"erdgraph/internal/metadata"
)

// Fields builds the fields of one table. Columns are deduplicated by name,
// first occurrence winning, and ordered by ordinal position.
func (b *Builder) Fields(columns []metadata.ColumnInfo, pkColumns map[string]bool, indexes []metadata.AggregatedIndexInfo) []diagram.Field {
	seen := make(map[string]bool, len(columns))
	unique := make([]metadata.ColumnInfo, 0, len(columns))
	for _, c := range columns {
		if seen[c.Name] {
			continue
		}
		seen[c.Name] = true
		unique = append(unique, c)
	}
	sort.SliceStable(unique, func(i, j int) bool {
		return unique[i].OrdinalPosition < unique[j].OrdinalPosition
	})

	uniqueColumns := make(map[string]bool)
	for _, idx := range indexes {
		if idx.Unique && len(idx.Columns) == 1 {
			uniqueColumns[idx.Columns[0].Name] = true
		}
	}

	fields := make([]diagram.Field, 0, len(unique))
	for _, c := range unique {
		dt, isArray := b.dialect.ResolveType(c.Type)
		f := diagram.Field{
			ID:         b.newID(),
			Name:       c.Name,
			Type:       dt,
			PrimaryKey: pkColumns[c.Name],
			Unique:     uniqueColumns[c.Name],
			Nullable:   c.Nullable,
			IsArray:    isArray,
			Default:    c.Default,
			Collation:  c.Collation,
			Comments:   c.Comment,
			CreatedAt:  b.createdAt,
		}
		if c.CharacterMaximumLength != nil && *c.CharacterMaximumLength != "" && *c.CharacterMaximumLength != "null" {
			f.CharacterMaximumLength = c.CharacterMaximumLength
		}
		if c.Precision != nil {
			f.Precision = c.Precision.Precision
			f.Scale = c.Precision.Scale
		}
		fields = append(fields, f)
	}
	return fields
}
