package reconcile

// identity is what the mapping needs to know about one entity: its
// structural key, the scope its id is unique in and the id itself. Keys are
// global; scopes only matter on the target side.
type identity struct {
	key   string
	scope string
	id    string
}

func ref(scope, id string) string { return scope + "\x00" + id }

// idMapping maps target ids to source ids. Ids are scoped: fields and indexes
// are only unique inside their table, so they are looked up together with the
// id of the table that owns them in the target.
type idMapping map[string]string

// resolve returns the source id for a target id, or the target id itself when
// the entity had no structural match.
func (m idMapping) resolve(scope, id string) string {
	if mapped, ok := m[ref(scope, id)]; ok {
		return mapped
	}
	return id
}

// mapKind computes the mapping for one entity kind. sourceKey and targetKey
// report the structural key of an entity on either side, or false when it has
// none.
//
// Every source id is handed out at most once per scope, to the first target
// entity with the same key. A source id that an unmatched target entity
// already carries in the same scope is not handed out, so ids stay unique.
func mapKind[T any](source, target []T, sourceKey, targetKey func(T) (identity, bool)) idMapping {
	bySource := make(map[string]string, len(source))
	for _, e := range source {
		ident, ok := sourceKey(e)
		if !ok {
			continue
		}
		if _, dup := bySource[ident.key]; !dup {
			bySource[ident.key] = ident.id
		}
	}

	type candidate struct {
		ident  identity
		source string
	}
	var candidates []candidate
	claimed := make(map[string]bool)
	kept := make(map[string]bool)
	for _, e := range target {
		ident, ok := targetKey(e)
		if !ok {
			kept[ref(ident.scope, ident.id)] = true
			continue
		}
		sid, ok := bySource[ident.key]
		if !ok || claimed[ref(ident.scope, sid)] {
			kept[ref(ident.scope, ident.id)] = true
			continue
		}
		claimed[ref(ident.scope, sid)] = true
		candidates = append(candidates, candidate{ident: ident, source: sid})
	}

	m := make(idMapping, len(candidates))
	for _, c := range candidates {
		if c.source != c.ident.id && kept[ref(c.ident.scope, c.source)] {
			continue
		}
		m[ref(c.ident.scope, c.ident.id)] = c.source
	}
	return m
}
