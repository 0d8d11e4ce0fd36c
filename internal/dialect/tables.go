package dialect

import "erdgraph/internal/diagram"

func synonyms(pairs ...string) map[string]diagram.DataType {
	m := make(map[string]diagram.DataType, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		m[pairs[i]] = typeOf(pairs[i+1])
	}
	return m
}

var postgresSynonyms = synonyms(
	"int", "integer",
	"int4", "integer",
	"int2", "smallint",
	"int8", "bigint",
	"serial4", "serial",
	"serial8", "bigserial",
	"bool", "boolean",
	"float4", "real",
	"float8", "double precision",
	"decimal", "numeric",
	"character varying", "varchar",
	"character", "char",
	"bpchar", "char",
	"timestamp without time zone", "timestamp",
	"timestamp with time zone", "timestamptz",
	"time without time zone", "time",
	"time with time zone", "timetz",
	"bit varying", "varbit",
)

var builtin = map[diagram.DatabaseType]Config{
	diagram.Generic: {
		Synonyms: synonyms(
			"int", "integer",
			"bool", "boolean",
			"character varying", "varchar",
		),
	},
	diagram.PostgreSQL: {
		DefaultSchema: "public",
		Synonyms:      postgresSynonyms,
	},
	diagram.CockroachDB: {
		DefaultSchema: "public",
		Synonyms: synonyms(
			"int", "int8",
			"integer", "int8",
			"int64", "int8",
			"bool", "boolean",
			"string", "varchar",
			"character varying", "varchar",
			"float", "float8",
			"double precision", "float8",
			"timestamp without time zone", "timestamp",
			"timestamp with time zone", "timestamptz",
		),
	},
	diagram.MySQL: {
		Synonyms: synonyms(
			"integer", "int",
			"bool", "boolean",
			"character varying", "varchar",
			"dec", "decimal",
			"fixed", "decimal",
			"numeric", "decimal",
			"double precision", "double",
			"real", "double",
		),
	},
	diagram.MariaDB: {
		Synonyms: synonyms(
			"integer", "int",
			"bool", "boolean",
			"character varying", "varchar",
			"dec", "decimal",
			"fixed", "decimal",
			"numeric", "decimal",
			"double precision", "double",
		),
	},
	diagram.SQLite: {
		Synonyms: synonyms(
			"int", "integer",
			"bool", "boolean",
			"character varying", "varchar",
			"double precision", "double",
		),
	},
	diagram.SQLServer: {
		DefaultSchema: "dbo",
		ViewEncoding:  UTF16LE,
		Synonyms: synonyms(
			"integer", "int",
			"character varying", "varchar",
			"character", "char",
			"national character varying", "nvarchar",
			"national character", "nchar",
			"double precision", "float",
			"dec", "decimal",
			"rowversion", "timestamp",
		),
	},
	diagram.Oracle: {
		Synonyms: synonyms(
			"int", "number",
			"integer", "number",
			"smallint", "number",
			"varchar", "varchar2",
			"character varying", "varchar2",
			"double precision", "float",
		),
	},
	diagram.ClickHouse: {
		DefaultSchema: "default",
		Synonyms: synonyms(
			"int", "int32",
			"integer", "int32",
			"bigint", "int64",
			"smallint", "int16",
			"tinyint", "int8",
			"boolean", "bool",
			"varchar", "string",
			"text", "string",
			"double", "float64",
			"float", "float32",
		),
	},
}
