package cueload

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matthewbaird/admingen/internal/model"
)

const cueModel = `
resources: [
	{
		name: "Customer"
		attributes: [
			{name: "Id"},
			{name: "CompanyName"},
			{name: "Notes", nullable: true, type: "ntext"},
		]
	},
	{
		name:  "Order"
		table: "Orders"
		attributes: [
			{name: "Id"},
			{name: "CustomerId"},
			{name: "BillToId", non_favorite: false},
			{name: "Freight", nullable: true, type: "DECIMAL"},
		]
		joins: ["Customer.CompanyName"]
	},
]
relationships: [
	{parent: "Customer", child: "Order", keys: [{child: "CustomerId", parent: "Id"}]},
	{
		parent:      "Customer"
		child:       "Order"
		parent_role: "BillToCustomer"
		child_role:  "BillToOrderList"
		keys: [{child: "BillToId", parent: "Id"}]
	},
]
`

const yamlModel = `
resources:
  - name: Customer
    attributes:
      - name: Id
      - name: CompanyName
  - name: Order
    table: Orders
    attributes:
      - name: Id
      - name: CustomerId
relationships:
  - parent: Customer
    child: Order
    keys:
      - child: CustomerId
        parent: Id
`

func write(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadFile_CUE(t *testing.T) {
	g, err := LoadFile(write(t, "model.cue", cueModel), model.DefaultPreferences())
	require.NoError(t, err)
	require.NoError(t, g.Validate())

	assert.Equal(t, []string{"Customer", "Order"}, g.Names())

	customer := g.Resource("Customer")
	assert.Equal(t, "Customer", customer.TableName)
	require.Len(t, customer.Attributes, 3)
	assert.True(t, customer.Attributes[0].NonFavorite)
	assert.False(t, customer.Attributes[0].Nullable)
	assert.Equal(t, model.TypeLongText, customer.Attributes[2].Type)
	assert.True(t, customer.Attributes[2].Nullable)

	order := g.Resource("Order")
	assert.Equal(t, "Orders", order.TableName)
	assert.Equal(t, []string{"Customer.CompanyName"}, order.JoinReferences)
	assert.True(t, order.Attribute("CustomerId").NonFavorite)
	// an explicit hint wins over the name heuristic
	assert.False(t, order.Attribute("BillToId").NonFavorite)
	assert.Equal(t, model.TypeDecimal, order.Attribute("Freight").Type)

	require.Len(t, order.Parents, 2)
	assert.Equal(t, "Customer", order.Parents[0].ParentRoleName)
	assert.Equal(t, "OrderList", order.Parents[0].ChildRoleName)
	assert.Equal(t, "BillToCustomer", order.Parents[1].ParentRoleName)
	assert.Equal(t, "BillToOrderList", order.Parents[1].ChildRoleName)
	assert.Equal(t, []string{"BillToId"}, order.Parents[1].ChildColumns())
	assert.Len(t, customer.Children, 2)
}

func TestLoadFile_YAMLAndJSON(t *testing.T) {
	fromYAML, err := LoadFile(write(t, "model.yaml", yamlModel), model.DefaultPreferences())
	require.NoError(t, err)

	json := `{"resources": [{"name": "Customer", "attributes": [{"name": "Id"}, {"name": "CompanyName"}]},
		{"name": "Order", "table": "Orders", "attributes": [{"name": "Id"}, {"name": "CustomerId"}]}],
		"relationships": [{"parent": "Customer", "child": "Order", "keys": [{"child": "CustomerId", "parent": "Id"}]}]}`
	fromJSON, err := LoadFile(write(t, "model.json", json), model.DefaultPreferences())
	require.NoError(t, err)

	for _, g := range []*model.Graph{fromYAML, fromJSON} {
		assert.Equal(t, []string{"Customer", "Order"}, g.Names())
		assert.Equal(t, "Orders", g.Resource("Order").TableName)
		require.Len(t, g.Relationships(), 1)
		assert.Equal(t, "OrderList", g.Relationships()[0].ChildRoleName)
	}
}

func TestLoad_Errors(t *testing.T) {
	prefs := model.DefaultPreferences()

	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.cue"), prefs)
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = Load("bad.cue", []byte(`resources: [`), prefs)
	assert.Error(t, err)

	_, err = Load("nameless.cue", []byte(`resources: [{attributes: []}]`), prefs)
	assert.Error(t, err)

	_, err = Load("unknown.cue", []byte(`resources: [{name: "A", columns: []}]`), prefs)
	assert.Error(t, err)

	_, err = Load("bad.yaml", []byte("resources: [\n"), prefs)
	assert.Error(t, err)
}

func TestLoad_Empty(t *testing.T) {
	g, err := Load("empty.cue", []byte(``), model.DefaultPreferences())
	require.NoError(t, err)
	assert.Equal(t, 0, g.Len())
}
