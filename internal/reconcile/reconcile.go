// Package reconcile aligns the identities of a freshly built diagram with
// those of a previous one.
//
// Entities are matched by structural keys made of schema qualified names.
// Matched entities take the id of their counterpart; everything else about
// them, and every unmatched entity, stays as it was in the target.
package reconcile

import (
	"strings"

	"erdgraph/internal/diagram"
	"erdgraph/internal/dialect"
)

func key(parts ...string) string { return strings.Join(parts, "::") }

type owned[T any] struct {
	table diagram.Table
	item  T
}

func fieldsOf(tables []diagram.Table) []owned[diagram.Field] {
	var out []owned[diagram.Field]
	for _, t := range tables {
		for _, f := range t.Fields {
			out = append(out, owned[diagram.Field]{table: t, item: f})
		}
	}
	return out
}

func indexesOf(tables []diagram.Table) []owned[diagram.Index] {
	var out []owned[diagram.Index]
	for _, t := range tables {
		for _, idx := range t.Indexes {
			out = append(out, owned[diagram.Index]{table: t, item: idx})
		}
	}
	return out
}

// keys computes structural keys for the entities of one diagram.
type keys struct {
	d      diagram.Diagram
	schema func(string) string
	def    string
}

func newKeys(d diagram.Diagram) keys {
	cfg := dialect.For(d.DatabaseType)
	return keys{d: d, schema: cfg.SchemaOrDefault, def: cfg.DefaultSchema}
}

func (k keys) table(t diagram.Table) (identity, bool) {
	return identity{key: key(k.schema(t.Schema), t.Name), id: t.ID}, true
}

func (k keys) field(f owned[diagram.Field]) (identity, bool) {
	return identity{
		key:   key(k.schema(f.table.Schema), f.table.Name, f.item.Name),
		scope: f.table.ID,
		id:    f.item.ID,
	}, true
}

func (k keys) index(idx owned[diagram.Index]) (identity, bool) {
	return identity{
		key:   key(k.schema(idx.table.Schema), idx.table.Name, idx.item.Name),
		scope: idx.table.ID,
		id:    idx.item.ID,
	}, true
}

func (k keys) relationship(r diagram.Relationship) (identity, bool) {
	return identity{key: key(k.def, r.Name), id: r.ID}, true
}

func (k keys) dependency(dep diagram.Dependency) (identity, bool) {
	ident := identity{id: dep.ID}
	table, ok := k.d.Table(dep.TableID)
	if !ok {
		return ident, false
	}
	dependent, ok := k.d.Table(dep.DependentTableID)
	if !ok {
		return ident, false
	}
	ident.key = key(k.schema(table.Schema), table.Name, k.schema(dependent.Schema), dependent.Name)
	return ident, true
}

func (k keys) customType(ct diagram.CustomType) (identity, bool) {
	return identity{key: key(k.schema(ct.Schema), ct.Name), id: ct.ID}, true
}

// Reconcile returns a copy of target in which every entity that structurally
// matches an entity of source carries the source id. References between
// entities are rewritten to follow. Neither input is modified.
func Reconcile(source, target diagram.Diagram) diagram.Diagram {
	sk, tk := newKeys(source), newKeys(target)

	tables := mapKind(source.Tables, target.Tables, sk.table, tk.table)
	fields := mapKind(fieldsOf(source.Tables), fieldsOf(target.Tables), sk.field, tk.field)
	indexes := mapKind(indexesOf(source.Tables), indexesOf(target.Tables), sk.index, tk.index)
	relationships := mapKind(source.Relationships, target.Relationships, sk.relationship, tk.relationship)
	dependencies := mapKind(source.Dependencies, target.Dependencies, sk.dependency, tk.dependency)
	customTypes := mapKind(source.CustomTypes, target.CustomTypes, sk.customType, tk.customType)

	out := target.Clone()
	for i := range out.Tables {
		t := &out.Tables[i]
		owner := t.ID
		t.ID = tables.resolve("", owner)
		for j := range t.Fields {
			t.Fields[j].ID = fields.resolve(owner, t.Fields[j].ID)
		}
		for j := range t.Indexes {
			idx := &t.Indexes[j]
			idx.ID = indexes.resolve(owner, idx.ID)
			for n, id := range idx.FieldIDs {
				idx.FieldIDs[n] = fields.resolve(owner, id)
			}
		}
	}
	for i := range out.Relationships {
		r := &out.Relationships[i]
		r.ID = relationships.resolve("", r.ID)
		r.SourceFieldID = fields.resolve(r.SourceTableID, r.SourceFieldID)
		r.TargetFieldID = fields.resolve(r.TargetTableID, r.TargetFieldID)
		r.SourceTableID = tables.resolve("", r.SourceTableID)
		r.TargetTableID = tables.resolve("", r.TargetTableID)
	}
	for i := range out.Dependencies {
		dep := &out.Dependencies[i]
		dep.ID = dependencies.resolve("", dep.ID)
		dep.TableID = tables.resolve("", dep.TableID)
		dep.DependentTableID = tables.resolve("", dep.DependentTableID)
	}
	for i := range out.CustomTypes {
		out.CustomTypes[i].ID = customTypes.resolve("", out.CustomTypes[i].ID)
	}
	return out
}
