// Package diagram holds the canonical schema graph: tables owning their fields
// and indexes, plus relationships, view dependencies and custom types that
// refer to them by id.
package diagram

import "time"

// DatabaseType names a SQL dialect.
type DatabaseType string

const (
	Generic     DatabaseType = "generic"
	PostgreSQL  DatabaseType = "postgresql"
	MySQL       DatabaseType = "mysql"
	MariaDB     DatabaseType = "mariadb"
	SQLite      DatabaseType = "sqlite"
	SQLServer   DatabaseType = "sql_server"
	Oracle      DatabaseType = "oracle"
	CockroachDB DatabaseType = "cockroachdb"
	ClickHouse  DatabaseType = "clickhouse"
)

// Cardinality is one end of a relationship.
type Cardinality string

const (
	One  Cardinality = "one"
	Many Cardinality = "many"
)

// CustomTypeKind distinguishes enum from composite user types.
type CustomTypeKind string

const (
	Enum      CustomTypeKind = "enum"
	Composite CustomTypeKind = "composite"
)

// DataType is a resolved column type.
type DataType struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Field struct {
	ID                     string   `json:"id"`
	Name                   string   `json:"name"`
	Type                   DataType `json:"type"`
	PrimaryKey             bool     `json:"primaryKey"`
	Unique                 bool     `json:"unique"`
	Nullable               bool     `json:"nullable"`
	IsArray                bool     `json:"isArray,omitempty"`
	CharacterMaximumLength *string  `json:"characterMaximumLength,omitempty"`
	Precision              *int     `json:"precision,omitempty"`
	Scale                  *int     `json:"scale,omitempty"`
	Default                *string  `json:"default,omitempty"`
	Collation              *string  `json:"collation,omitempty"`
	Comments               *string  `json:"comments,omitempty"`
	CreatedAt              int64    `json:"createdAt"`
}

type Index struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Unique       bool     `json:"unique"`
	FieldIDs     []string `json:"fieldIds"`
	IsPrimaryKey bool     `json:"isPrimaryKey,omitempty"`
	CreatedAt    int64    `json:"createdAt"`
}

type Table struct {
	ID                 string  `json:"id"`
	Name               string  `json:"name"`
	Schema             string  `json:"schema,omitempty"`
	X                  float64 `json:"x"`
	Y                  float64 `json:"y"`
	Fields             []Field `json:"fields"`
	Indexes            []Index `json:"indexes"`
	Color              string  `json:"color"`
	IsView             bool    `json:"isView"`
	IsMaterializedView bool    `json:"isMaterializedView,omitempty"`
	Comments           *string `json:"comments,omitempty"`
	CreatedAt          int64   `json:"createdAt"`
}

// Field returns the field with the given id.
func (t Table) Field(id string) (Field, bool) {
	for _, f := range t.Fields {
		if f.ID == id {
			return f, true
		}
	}
	return Field{}, false
}

// FieldByName returns the first field called name.
func (t Table) FieldByName(name string) (Field, bool) {
	for _, f := range t.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

type Relationship struct {
	ID                string      `json:"id"`
	Name              string      `json:"name"`
	SourceSchema      string      `json:"sourceSchema,omitempty"`
	SourceTableID     string      `json:"sourceTableId"`
	SourceFieldID     string      `json:"sourceFieldId"`
	TargetSchema      string      `json:"targetSchema,omitempty"`
	TargetTableID     string      `json:"targetTableId"`
	TargetFieldID     string      `json:"targetFieldId"`
	SourceCardinality Cardinality `json:"sourceCardinality"`
	TargetCardinality Cardinality `json:"targetCardinality"`
	CreatedAt         int64       `json:"createdAt"`
}

// Dependency records that the view DependentTableID reads from TableID.
type Dependency struct {
	ID               string `json:"id"`
	Schema           string `json:"schema,omitempty"`
	TableID          string `json:"tableId"`
	DependentSchema  string `json:"dependentSchema,omitempty"`
	DependentTableID string `json:"dependentTableId"`
	CreatedAt        int64  `json:"createdAt"`
}

type CustomTypeField struct {
	Field string `json:"field"`
	Type  string `json:"type"`
}

type CustomType struct {
	ID     string            `json:"id"`
	Schema string            `json:"schema,omitempty"`
	Name   string            `json:"name"`
	Kind   CustomTypeKind    `json:"kind"`
	Values []string          `json:"values,omitempty"`
	Fields []CustomTypeField `json:"fields,omitempty"`
}

type Diagram struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	DatabaseType  DatabaseType   `json:"databaseType"`
	Tables        []Table        `json:"tables"`
	Relationships []Relationship `json:"relationships"`
	Dependencies  []Dependency   `json:"dependencies"`
	CustomTypes   []CustomType   `json:"customTypes"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

// Table returns the table with the given id.
func (d Diagram) Table(id string) (Table, bool) {
	for _, t := range d.Tables {
		if t.ID == id {
			return t, true
		}
	}
	return Table{}, false
}
