package builder

import (
	"erdgraph/internal/diagram"
	"erdgraph/internal/metadata"
)

// Relationships builds one relationship per foreign key row. The source side
// is the referencing table, the target side the referenced one. Rows whose
// tables or columns are not part of the diagram are skipped.
func (b *Builder) Relationships(fks []metadata.ForeignKeyInfo, tables []diagram.Table) []diagram.Relationship {
	byKey := make(map[string]*diagram.Table, len(tables))
	for i := range tables {
		k := metadata.Key(tables[i].Schema, tables[i].Name)
		if _, ok := byKey[k]; !ok {
			byKey[k] = &tables[i]
		}
	}

	out := make([]diagram.Relationship, 0, len(fks))
	seen := make(map[string]bool, len(fks))
	for _, fk := range fks {
		source, ok := byKey[metadata.Key(fk.Schema, fk.Table)]
		if !ok {
			b.gap(GapForeignKey, "%s: table %s not found", fk.ForeignKeyName, metadata.Key(fk.Schema, fk.Table))
			continue
		}
		target, ok := byKey[metadata.Key(fk.ReferenceSchema, fk.ReferenceTable)]
		if !ok {
			b.gap(GapForeignKey, "%s: table %s not found", fk.ForeignKeyName, metadata.Key(fk.ReferenceSchema, fk.ReferenceTable))
			continue
		}
		sourceField, ok := source.FieldByName(fk.Column)
		if !ok {
			b.gap(GapForeignKey, "%s: column %s.%s not found", fk.ForeignKeyName, fk.Table, fk.Column)
			continue
		}
		targetField, ok := target.FieldByName(fk.ReferenceColumn)
		if !ok {
			b.gap(GapForeignKey, "%s: column %s.%s not found", fk.ForeignKeyName, fk.ReferenceTable, fk.ReferenceColumn)
			continue
		}

		dedup := fk.ForeignKeyName + "\x00" + source.ID + "\x00" + sourceField.ID + "\x00" + target.ID + "\x00" + targetField.ID
		if seen[dedup] {
			continue
		}
		seen[dedup] = true

		out = append(out, diagram.Relationship{
			ID:                b.newID(),
			Name:              fk.ForeignKeyName,
			SourceSchema:      fk.Schema,
			SourceTableID:     source.ID,
			SourceFieldID:     sourceField.ID,
			TargetSchema:      fk.ReferenceSchema,
			TargetTableID:     target.ID,
			TargetFieldID:     targetField.ID,
			SourceCardinality: cardinality(*source, sourceField),
			TargetCardinality: cardinality(*target, targetField),
			CreatedAt:         b.createdAt,
		})
	}
	return out
}

// cardinality is one when the field alone identifies a row: it is unique, or
// it is the whole primary key of its table.
func cardinality(t diagram.Table, f diagram.Field) diagram.Cardinality {
	if f.Unique {
		return diagram.One
	}
	if f.PrimaryKey && primaryKeySize(t) == 1 {
		return diagram.One
	}
	return diagram.Many
}

func primaryKeySize(t diagram.Table) int {
	n := 0
	for _, f := range t.Fields {
		if f.PrimaryKey {
			n++
		}
	}
	return n
}
