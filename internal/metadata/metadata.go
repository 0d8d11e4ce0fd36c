// Package metadata models raw database introspection output. Records are
// denormalized rows, one per column, index column, key column and so on, each
// carrying the schema and table it belongs to.
package metadata

// Precision is the numeric precision and scale of a column.
type Precision struct {
	Precision *int `json:"precision"`
	Scale     *int `json:"scale"`
}

type ColumnInfo struct {
	Schema                 string     `json:"schema"`
	Table                  string     `json:"table" validate:"required"`
	Name                   string     `json:"name" validate:"required"`
	Type                   string     `json:"type" validate:"required"`
	CharacterMaximumLength *string    `json:"character_maximum_length,omitempty"`
	Precision              *Precision `json:"precision,omitempty"`
	OrdinalPosition        int        `json:"ordinal_position" validate:"gte=0"`
	Nullable               bool       `json:"nullable"`
	Default                *string    `json:"default,omitempty"`
	Collation              *string    `json:"collation,omitempty"`
	Comment                *string    `json:"comment,omitempty"`
}

// IndexInfo is one column of one index.
type IndexInfo struct {
	Schema         string `json:"schema"`
	Table          string `json:"table" validate:"required"`
	Name           string `json:"name" validate:"required"`
	Column         string `json:"column" validate:"required"`
	IndexType      string `json:"index_type,omitempty"`
	Cardinality    *int64 `json:"cardinality,omitempty"`
	Size           *int64 `json:"size,omitempty"`
	Unique         bool   `json:"unique"`
	ColumnPosition int    `json:"column_position" validate:"gte=0"`
	Direction      string `json:"direction,omitempty"`
}

// PrimaryKeyInfo is one column of a table's primary key.
type PrimaryKeyInfo struct {
	Schema string `json:"schema"`
	Table  string `json:"table" validate:"required"`
	Column string `json:"column" validate:"required"`
	PKDef  string `json:"pk_def,omitempty"`
}

// ForeignKeyInfo is one column pair of a foreign key constraint.
type ForeignKeyInfo struct {
	Schema          string `json:"schema"`
	Table           string `json:"table" validate:"required"`
	Column          string `json:"column" validate:"required"`
	ForeignKeyName  string `json:"foreign_key_name" validate:"required"`
	ReferenceSchema string `json:"reference_schema"`
	ReferenceTable  string `json:"reference_table" validate:"required"`
	ReferenceColumn string `json:"reference_column" validate:"required"`
	FKDef           string `json:"fk_def,omitempty"`
}

type TableInfo struct {
	Schema    string  `json:"schema"`
	Table     string  `json:"table" validate:"required"`
	Rows      *int64  `json:"rows,omitempty"`
	Type      string  `json:"type,omitempty"`
	Engine    string  `json:"engine,omitempty"`
	Collation string  `json:"collation,omitempty"`
	Comment   *string `json:"comment,omitempty"`
}

// ViewInfo describes a view. ViewDefinition is base64 encoded; see
// dialect.Config.DecodeView.
type ViewInfo struct {
	Schema         string `json:"schema"`
	ViewName       string `json:"view_name" validate:"required"`
	ViewDefinition string `json:"view_definition,omitempty"`
}

type CustomTypeFieldInfo struct {
	Field string `json:"field" validate:"required"`
	Type  string `json:"type" validate:"required"`
}

type CustomTypeInfo struct {
	Schema string                `json:"schema"`
	Type   string                `json:"type" validate:"required"`
	Kind   string                `json:"kind" validate:"required,oneof=enum composite"`
	Values []string              `json:"values,omitempty"`
	Fields []CustomTypeFieldInfo `json:"fields,omitempty" validate:"dive"`
}

// DatabaseMetadata is one complete introspection payload.
type DatabaseMetadata struct {
	FKInfo       []ForeignKeyInfo `json:"fk_info" validate:"required,dive"`
	PKInfo       []PrimaryKeyInfo `json:"pk_info" validate:"required,dive"`
	Columns      []ColumnInfo     `json:"columns" validate:"required,dive"`
	Indexes      []IndexInfo      `json:"indexes" validate:"required,dive"`
	Tables       []TableInfo      `json:"tables" validate:"required,dive"`
	Views        []ViewInfo       `json:"views" validate:"required,dive"`
	CustomTypes  []CustomTypeInfo `json:"custom_types,omitempty" validate:"dive"`
	DatabaseName string           `json:"database_name"`
	Version      string           `json:"version"`
}

// Key joins a schema and an object name into the lookup key used across
// the package and the builders.
func Key(schema, name string) string {
	return schema + "::" + name
}
