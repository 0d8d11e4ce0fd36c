package metadata

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadShop(t *testing.T) DatabaseMetadata {
	t.Helper()
	data, err := os.ReadFile("./testdata/shop.json")
	require.NoError(t, err)
	m, err := Parse(data)
	require.NoError(t, err)
	return m
}

func TestParseValid(t *testing.T) {
	m := loadShop(t)

	assert.Equal(t, "shop", m.DatabaseName)
	assert.Len(t, m.Tables, 4)
	assert.Len(t, m.Views, 1)
	assert.Len(t, m.Columns, 11)
	assert.Len(t, m.Indexes, 5)
	assert.Len(t, m.PKInfo, 4)
	assert.Len(t, m.FKInfo, 3)
	assert.Len(t, m.CustomTypes, 3)

	total := m.Columns[5]
	require.NotNil(t, total.Precision)
	assert.Equal(t, 10, *total.Precision.Precision)
	assert.Equal(t, 2, *total.Precision.Scale)
	assert.Equal(t, "0", *total.Default)
}

func TestParseRejects(t *testing.T) {
	var tests = []struct {
		name    string
		payload string
		issue   string
	}{
		{
			name:    "malformed json",
			payload: `{"tables": [`,
		},
		{
			name:    "wrong field type",
			payload: `{"fk_info":[],"pk_info":[],"indexes":[],"tables":[],"views":[],"columns":[{"table":"t","name":"a","type":"int","nullable":"yes"}]}`,
		},
		{
			name:    "missing column name",
			payload: `{"fk_info":[],"pk_info":[],"indexes":[],"tables":[],"views":[],"columns":[{"table":"t","type":"int"}]}`,
			issue:   "columns[0].name: failed required",
		},
		{
			name:    "missing array",
			payload: `{"fk_info":[],"pk_info":[],"indexes":[],"tables":[],"columns":[]}`,
			issue:   "views: failed required",
		},
		{
			name:    "bad custom type kind",
			payload: `{"fk_info":[],"pk_info":[],"indexes":[],"tables":[],"views":[],"columns":[],"custom_types":[{"type":"t","kind":"range"}]}`,
			issue:   "custom_types[0].kind: failed oneof=enum composite",
		},
		{
			name:    "negative ordinal",
			payload: `{"fk_info":[],"pk_info":[],"indexes":[],"tables":[],"views":[],"columns":[{"table":"t","name":"a","type":"int","ordinal_position":-1}]}`,
			issue:   "columns[0].ordinal_position: failed gte=0",
		},
		{
			name:    "one bad foreign key among good rows",
			payload: `{"fk_info":[{"table":"a","column":"b","foreign_key_name":"fk","reference_table":"c","reference_column":"d"},{"table":"a","column":"b","foreign_key_name":"fk2","reference_table":"c"}],"pk_info":[],"indexes":[],"tables":[{"table":"a"}],"views":[],"columns":[]}`,
			issue:   "fk_info[1].reference_column: failed required",
		},
		{
			name:    "null payload",
			payload: `null`,
			issue:   "fk_info: failed required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Parse([]byte(tt.payload))
			require.Error(t, err)
			assert.Equal(t, DatabaseMetadata{}, m)

			var serr *StructuralError
			require.ErrorAs(t, err, &serr)
			if tt.issue != "" {
				assert.Contains(t, serr.Issues, tt.issue)
			}
		})
	}
}

func TestAggregateIndexes(t *testing.T) {
	rows := []IndexInfo{
		{Schema: "s", Table: "t", Name: "ix_ab", Column: "b", ColumnPosition: 2},
		{Schema: "s", Table: "t", Name: "ix_c", Column: "c", ColumnPosition: 1, Unique: true},
		{Schema: "s", Table: "t", Name: "ix_ab", Column: "a", ColumnPosition: 1},
		{Schema: "s", Table: "u", Name: "ix_ab", Column: "z", ColumnPosition: 1},
	}

	got := AggregateIndexes(rows)
	require.Len(t, got, 3)
	assert.Equal(t, "ix_ab", got[0].Name)
	assert.Equal(t, []string{"a", "b"}, got[0].ColumnNames())
	assert.Equal(t, "ix_c", got[1].Name)
	assert.True(t, got[1].Unique)
	assert.Equal(t, "u", got[2].Table)
	assert.Equal(t, []string{"z"}, got[2].ColumnNames())
}
