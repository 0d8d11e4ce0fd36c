package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func tableNames(m DatabaseMetadata) []string {
	var names []string
	for _, t := range m.Tables {
		names = append(names, Key(t.Schema, t.Table))
	}
	return names
}

func TestFilterKeepsOwnedRecords(t *testing.T) {
	m := loadShop(t)

	got := Filter(m, []TableSelector{
		{Schema: "public", Table: "orders", Type: TableObject},
		{Schema: "public", Table: "big_orders", Type: ViewObject},
	})

	assert.Equal(t, []string{"public::orders"}, tableNames(got))
	assert.Len(t, got.Views, 1)
	assert.Equal(t, "shop", got.DatabaseName)

	var cols []string
	for _, c := range got.Columns {
		cols = append(cols, c.Table+"."+c.Name)
	}
	assert.Equal(t, []string{"orders.id", "orders.customer_id", "orders.total", "big_orders.id"}, cols)

	assert.Len(t, got.PKInfo, 1)
	assert.Len(t, got.Indexes, 1)
	assert.Equal(t, "orders_pkey", got.Indexes[0].Name)
}

func TestFilterKeepsBoundaryForeignKeys(t *testing.T) {
	m := loadShop(t)

	got := Filter(m, []TableSelector{{Schema: "public", Table: "orders", Type: TableObject}})

	var fks []string
	for _, fk := range got.FKInfo {
		fks = append(fks, fk.ForeignKeyName)
	}
	// orders -> customers (outgoing) and order_items -> orders (incoming)
	assert.Equal(t, []string{"orders_customer_fk", "items_order_fk"}, fks)
}

func TestFilterCustomTypes(t *testing.T) {
	m := loadShop(t)

	got := Filter(m, []TableSelector{{Schema: "audit", Table: "events", Type: TableObject}})
	var types []string
	for _, ct := range got.CustomTypes {
		types = append(types, ct.Type)
	}
	// label is used by events.tags as label[]; mood lives in public which has no kept table
	assert.Equal(t, []string{"label"}, types)

	got = Filter(m, []TableSelector{{Schema: "public", Table: "customers", Type: TableObject}})
	types = nil
	for _, ct := range got.CustomTypes {
		types = append(types, ct.Type)
	}
	assert.Equal(t, []string{"mood"}, types)
}

func TestFilterViewSelectorDoesNotKeepTable(t *testing.T) {
	m := loadShop(t)

	got := Filter(m, []TableSelector{{Schema: "public", Table: "orders", Type: ViewObject}})
	assert.Empty(t, got.Tables)
	assert.Empty(t, got.Views)
	assert.Empty(t, got.Columns)
}

func TestFilterIdempotent(t *testing.T) {
	m := loadShop(t)

	selections := [][]TableSelector{
		nil,
		{{Schema: "public", Table: "orders", Type: TableObject}},
		{{Schema: "audit", Table: "events", Type: TableObject}, {Schema: "public", Table: "big_orders", Type: ViewObject}},
		{
			{Schema: "public", Table: "customers", Type: TableObject},
			{Schema: "public", Table: "orders", Type: TableObject},
			{Schema: "public", Table: "order_items", Type: TableObject},
		},
	}

	for _, sel := range selections {
		once := Filter(m, sel)
		twice := Filter(once, sel)
		assert.Equal(t, once, twice)
	}
}

func TestFilterDoesNotMutateInput(t *testing.T) {
	m := loadShop(t)
	before := len(m.Columns)

	Filter(m, []TableSelector{{Schema: "public", Table: "orders", Type: TableObject}})

	assert.Len(t, m.Columns, before)
	assert.Len(t, m.Tables, 4)
}
