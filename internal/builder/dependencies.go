package builder

import (
	"strings"

	"erdgraph/internal/diagram"
	"erdgraph/internal/expr"
	"erdgraph/internal/metadata"
)

// Dependencies links every view to the tables and views its definition reads
// from. Definitions are scanned with the expression tokenizer and only the
// names in FROM and JOIN clauses count, so a column that happens to share a
// table's name is not a use.
func (b *Builder) Dependencies(views []metadata.ViewInfo, tables []diagram.Table) []diagram.Dependency {
	out := make([]diagram.Dependency, 0)

	byKey := make(map[string]diagram.Table, len(tables))
	for _, t := range tables {
		byKey[metadata.Key(t.Schema, t.Name)] = t
	}

	for _, v := range views {
		view, ok := byKey[metadata.Key(v.Schema, v.ViewName)]
		if !ok || !view.IsView || v.ViewDefinition == "" {
			continue
		}
		definition, err := b.dialect.DecodeView(v.ViewDefinition)
		if err != nil {
			continue
		}

		seen := map[string]bool{view.ID: true}
		for _, ref := range tableRefs(expr.Tokenize(definition)) {
			used, ok := b.resolveTable(ref, v.Schema, tables)
			if !ok || seen[used.ID] {
				continue
			}
			seen[used.ID] = true
			out = append(out, diagram.Dependency{
				ID:               b.newID(),
				Schema:           used.Schema,
				TableID:          used.ID,
				DependentSchema:  view.Schema,
				DependentTableID: view.ID,
				CreatedAt:        b.createdAt,
			})
		}
	}
	return out
}

// clauseWords end a FROM list.
var clauseWords = map[string]bool{
	"SELECT":    true,
	"WHERE":     true,
	"GROUP":     true,
	"ORDER":     true,
	"HAVING":    true,
	"LIMIT":     true,
	"OFFSET":    true,
	"ON":        true,
	"USING":     true,
	"UNION":     true,
	"EXCEPT":    true,
	"WINDOW":    true,
	"RETURNING": true,
}

// tableRefs returns the names a query reads from: the first name after FROM
// or JOIN, and the first name after each comma of a FROM list. Aliases and
// subqueries are skipped.
func tableRefs(tokens []expr.Token) []string {
	var refs []string
	inFrom, expectTable := false, false
	for _, tok := range tokens {
		switch tok.Kind {
		case expr.Identifier:
			word := strings.ToUpper(tok.Text)
			switch {
			case word == "FROM" || word == "JOIN":
				inFrom, expectTable = true, true
			case clauseWords[word]:
				inFrom, expectTable = false, false
			case expectTable && (word == "ONLY" || word == "LATERAL"):
			case expectTable:
				refs = append(refs, tok.Text)
				expectTable = false
			}
		case expr.Comma:
			expectTable = inFrom
		case expr.LParen:
			// a subquery or a function; its own FROM is picked up inside
			inFrom, expectTable = false, false
		}
	}
	return refs
}

// resolveTable finds the table an identifier such as "orders",
// "sales.orders" or "db.sales.orders" refers to. Unqualified names prefer the
// view's own schema, then the dialect default schema, then any schema.
func (b *Builder) resolveTable(ident, viewSchema string, tables []diagram.Table) (diagram.Table, bool) {
	parts := strings.Split(ident, ".")
	name := parts[len(parts)-1]
	if len(parts) >= 2 {
		schema := parts[len(parts)-2]
		for _, t := range tables {
			if strings.EqualFold(t.Name, name) && strings.EqualFold(t.Schema, schema) {
				return t, true
			}
		}
		return diagram.Table{}, false
	}

	var fallback *diagram.Table
	for i, t := range tables {
		if !strings.EqualFold(t.Name, name) {
			continue
		}
		if t.Schema == viewSchema {
			return t, true
		}
		if fallback == nil || t.Schema == b.dialect.DefaultSchema {
			fallback = &tables[i]
		}
	}
	if fallback != nil {
		return *fallback, true
	}
	return diagram.Table{}, false
}
