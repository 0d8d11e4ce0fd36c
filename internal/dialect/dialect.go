// Package dialect holds the per-database lookup tables the builders and the
// reconciler need: default schema names, type synonyms and the encoding of
// introspected view definitions.
//
// A Config is a plain value. Builders receive it as a parameter and never
// consult package state, so callers can override any table per import.
package dialect

import (
	"maps"
	"strings"

	"erdgraph/internal/diagram"
)

// Encoding is the character encoding of a base64 view definition.
type Encoding int

const (
	UTF8 Encoding = iota
	UTF16LE
)

type Config struct {
	DatabaseType  diagram.DatabaseType
	DefaultSchema string
	Synonyms      map[string]diagram.DataType
	ViewEncoding  Encoding
}

// For returns the built-in configuration of t. Unknown types get the generic
// configuration tagged with t.
func For(t diagram.DatabaseType) Config {
	base, ok := builtin[t]
	if !ok {
		base = builtin[diagram.Generic]
	}
	cfg := base
	cfg.DatabaseType = t
	cfg.Synonyms = maps.Clone(base.Synonyms)
	return cfg
}

// WithDefaultSchema returns a copy of c using schema as default schema.
func (c Config) WithDefaultSchema(schema string) Config {
	c.Synonyms = maps.Clone(c.Synonyms)
	c.DefaultSchema = schema
	return c
}

// WithSynonyms returns a copy of c with extra synonyms. Keys are raw type
// names as introspected, values the preferred type name.
func (c Config) WithSynonyms(extra map[string]string) Config {
	synonyms := make(map[string]diagram.DataType, len(c.Synonyms)+len(extra))
	maps.Copy(synonyms, c.Synonyms)
	for raw, preferred := range extra {
		synonyms[normalizeTypeName(raw)] = typeOf(normalizeTypeName(preferred))
	}
	c.Synonyms = synonyms
	return c
}

// SchemaOrDefault returns schema, or the dialect default when schema is empty.
func (c Config) SchemaOrDefault(schema string) string {
	if schema == "" {
		return c.DefaultSchema
	}
	return schema
}

// ResolveType maps an introspected type name to its preferred type. Array
// encodings such as "text[]" resolve to their element type with isArray set.
func (c Config) ResolveType(raw string) (dt diagram.DataType, isArray bool) {
	name := normalizeTypeName(raw)
	for strings.HasSuffix(name, "[]") {
		name = strings.TrimSpace(strings.TrimSuffix(name, "[]"))
		isArray = true
	}
	if preferred, ok := c.Synonyms[name]; ok {
		return preferred, isArray
	}
	return typeOf(name), isArray
}

// NormalizeType maps driver names and common aliases to a DatabaseType.
func NormalizeType(s string) diagram.DatabaseType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "postgres", "postgresql", "pg":
		return diagram.PostgreSQL
	case "mysql":
		return diagram.MySQL
	case "mariadb":
		return diagram.MariaDB
	case "sqlite", "sqlite3":
		return diagram.SQLite
	case "sqlserver", "sql_server", "mssql":
		return diagram.SQLServer
	case "oracle", "godror":
		return diagram.Oracle
	case "cockroach", "cockroachdb", "pgx":
		return diagram.CockroachDB
	case "clickhouse":
		return diagram.ClickHouse
	default:
		return diagram.Generic
	}
}

func normalizeTypeName(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

func typeOf(name string) diagram.DataType {
	return diagram.DataType{ID: strings.ReplaceAll(name, " ", "_"), Name: name}
}
