package extractors

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"erdgraph/internal/builder"
	"erdgraph/internal/diagram"
	"erdgraph/internal/dialect"
	"erdgraph/internal/metadata"
)

const libraryDDL = `
CREATE TABLE authors (
    id INTEGER PRIMARY KEY,
    name TEXT NOT NULL,
    email VARCHAR(200) UNIQUE
);
CREATE TABLE books (
    id INTEGER PRIMARY KEY,
    author_id INTEGER NOT NULL REFERENCES authors,
    title TEXT NOT NULL DEFAULT 'untitled'
);
CREATE TABLE book_tags (
    book_id INTEGER NOT NULL,
    tag TEXT NOT NULL,
    PRIMARY KEY (book_id, tag),
    FOREIGN KEY (book_id) REFERENCES books (id)
);
CREATE INDEX books_title_idx ON books (title);
CREATE VIEW prolific AS SELECT authors.name FROM authors JOIN books ON books.author_id = authors.id;
`

func openLibrary(t *testing.T) *sql.DB {
	t.Helper()
	conn, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	// every connection to :memory: is a separate database
	conn.SetMaxOpenConns(1)
	t.Cleanup(func() { conn.Close() })

	_, err = conn.Exec(libraryDDL)
	require.NoError(t, err)
	return conn
}

func TestSQLiteExtract(t *testing.T) {
	conn := openLibrary(t)

	m, err := sqliteExtractor{}.Extract(context.Background(), conn)
	require.NoError(t, err)
	require.NoError(t, metadata.Validate(m))

	assert.Equal(t, "main", m.DatabaseName)
	assert.NotEmpty(t, m.Version)

	var tables []string
	for _, tb := range m.Tables {
		tables = append(tables, tb.Table)
	}
	assert.Equal(t, []string{"authors", "book_tags", "books"}, tables)

	assert.ElementsMatch(t, []metadata.PrimaryKeyInfo{
		{Table: "authors", Column: "id"},
		{Table: "book_tags", Column: "book_id"},
		{Table: "book_tags", Column: "tag"},
		{Table: "books", Column: "id"},
	}, m.PKInfo)

	var title metadata.ColumnInfo
	for _, c := range m.Columns {
		if c.Table == "books" && c.Name == "title" {
			title = c
		}
	}
	assert.False(t, title.Nullable)
	require.NotNil(t, title.Default)
	assert.Equal(t, "'untitled'", *title.Default)

	assert.ElementsMatch(t, []metadata.ForeignKeyInfo{
		{Table: "book_tags", Column: "book_id", ForeignKeyName: "fk_book_tags_0", ReferenceTable: "books", ReferenceColumn: "id"},
		{Table: "books", Column: "author_id", ForeignKeyName: "fk_books_0", ReferenceTable: "authors", ReferenceColumn: "id"},
	}, m.FKInfo)

	indexes := make(map[string][]string)
	for _, idx := range metadata.AggregateIndexes(m.Indexes) {
		indexes[idx.Name] = idx.ColumnNames()
	}
	assert.Equal(t, []string{"title"}, indexes["books_title_idx"])
	assert.Contains(t, indexes, "sqlite_autoindex_book_tags_1")

	require.Len(t, m.Views, 1)
	assert.Equal(t, "prolific", m.Views[0].ViewName)
	def, err := dialect.For(diagram.SQLite).DecodeView(m.Views[0].ViewDefinition)
	require.NoError(t, err)
	assert.Contains(t, def, "JOIN books")
}

func TestSQLiteExtractBuildsDiagram(t *testing.T) {
	conn := openLibrary(t)

	m, err := sqliteExtractor{}.Extract(context.Background(), conn)
	require.NoError(t, err)

	d, report := builder.Build(m, builder.Options{DatabaseType: diagram.SQLite})
	assert.Empty(t, report.Gaps)
	assert.Len(t, d.Tables, 4)
	assert.Len(t, d.Relationships, 2)
	require.Len(t, d.Dependencies, 2)

	tags := d.Tables[1]
	require.Equal(t, "book_tags", tags.Name)
	var pk []diagram.Index
	for _, idx := range tags.Indexes {
		if idx.IsPrimaryKey {
			pk = append(pk, idx)
		}
	}
	require.Len(t, pk, 1)
	assert.Equal(t, "sqlite_autoindex_book_tags_1", pk[0].Name)
	assert.Len(t, pk[0].FieldIDs, 2)
}
