package legacy

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"ariga.io/atlas/sql/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matthewbaird/admingen/internal/model"
)

func column(name, raw string, null bool, typ schema.Type) *schema.Column {
	return &schema.Column{Name: name, Type: &schema.ColumnType{Type: typ, Raw: raw, Null: null}}
}

// hrTables: employees point at departments twice (works in, manages).
func hrTables() []*schema.Table {
	departments := schema.NewTable("departments").AddColumns(
		column("id", "integer", false, &schema.IntegerType{T: "integer"}),
		column("dept_name", "varchar(80)", false, &schema.StringType{T: "varchar", Size: 80}),
	)
	employees := schema.NewTable("employees").AddColumns(
		column("id", "integer", false, &schema.IntegerType{T: "integer"}),
		column("last_name", "varchar(80)", false, &schema.StringType{T: "varchar", Size: 80}),
		column("salary", "decimal(10,2)", true, &schema.DecimalType{T: "decimal", Precision: 10, Scale: 2}),
		column("hired", "datetime", true, &schema.TimeType{T: "datetime"}),
		column("notes", "ntext", true, &schema.StringType{T: "ntext"}),
		column("photo", "image", true, &schema.UnsupportedType{T: "image"}),
		column("dept_id", "integer", false, &schema.IntegerType{T: "integer"}),
		column("managed_dept_id", "integer", true, &schema.IntegerType{T: "integer"}),
	)
	deptID, _ := employees.Column("dept_id")
	managedID, _ := employees.Column("managed_dept_id")
	pk, _ := departments.Column("id")
	employees.ForeignKeys = []*schema.ForeignKey{
		{Symbol: "fk_dept", Table: employees, Columns: []*schema.Column{deptID}, RefTable: departments, RefColumns: []*schema.Column{pk}},
		{Symbol: "fk_managed", Table: employees, Columns: []*schema.Column{managedID}, RefTable: departments, RefColumns: []*schema.Column{pk}},
	}
	return []*schema.Table{departments, employees}
}

func TestResourceName(t *testing.T) {
	assert.Equal(t, "Employee", ResourceName("employees"))
	assert.Equal(t, "OrderDetail", ResourceName("order_details"))
	assert.Equal(t, "Category", ResourceName("Categories"))
}

func TestFromTables(t *testing.T) {
	g := FromTables(hrTables(), model.DefaultPreferences())
	require.NoError(t, g.Validate())

	assert.Equal(t, []string{"Department", "Employee"}, g.Names())
	emp := g.Resource("Employee")
	assert.Equal(t, "employees", emp.TableName)

	assert.True(t, emp.Attribute("id").NonFavorite)
	assert.True(t, emp.Attribute("dept_id").NonFavorite)
	assert.False(t, emp.Attribute("last_name").Nullable)
	assert.True(t, emp.Attribute("salary").Nullable)
	assert.Equal(t, model.TypeDecimal, emp.Attribute("salary").Type)
	assert.Equal(t, model.TypeDate, emp.Attribute("hired").Type)
	assert.Equal(t, model.TypeLongText, emp.Attribute("notes").Type)
	assert.Equal(t, model.TypeBinary, emp.Attribute("photo").Type)
	assert.Equal(t, model.TypeOther, emp.Attribute("last_name").Type)

	require.Len(t, emp.Parents, 2)
	first, second := emp.Parents[0], emp.Parents[1]
	assert.Equal(t, "Department", first.ParentRoleName)
	assert.Equal(t, "EmployeeList", first.ChildRoleName)
	assert.Equal(t, "Department1", second.ParentRoleName)
	assert.Equal(t, "EmployeeList1", second.ChildRoleName)
	assert.Equal(t, []model.KeyPair{{ChildColumn: "managed_dept_id", ParentColumn: "id"}}, second.KeyPairs)

	assert.Len(t, g.Resource("Department").Children, 2)
}

func TestFromTables_NameCollision(t *testing.T) {
	tables := []*schema.Table{
		schema.NewTable("order").AddColumns(column("id", "integer", false, nil)),
		schema.NewTable("orders").AddColumns(column("id", "integer", false, nil)),
	}
	g := FromTables(tables, model.DefaultPreferences())
	assert.Equal(t, []string{"Order", "Order1"}, g.Names())
	assert.Equal(t, "orders", g.Resource("Order1").TableName)
}

func TestTypeByName(t *testing.T) {
	assert.Equal(t, model.TypeDecimal, typeByName("NUMERIC(10, 2)"))
	assert.Equal(t, model.TypeDate, typeByName("timestamp with time zone"))
	assert.Equal(t, model.TypeLongText, typeByName("NTEXT"))
	assert.Equal(t, model.TypeBinary, typeByName("bytea"))
	assert.Equal(t, model.TypeOther, typeByName("text"))
	assert.Equal(t, model.TypeOther, typeByName(""))
}

func TestOpenParams(t *testing.T) {
	driver, dsn, err := openParams("sqlite:///tmp/app.db")
	require.NoError(t, err)
	assert.Equal(t, "sqlite", driver)
	assert.Equal(t, "file:/tmp/app.db?_pragma=foreign_keys(1)", dsn)

	driver, dsn, err = openParams("postgres://u:p@localhost:5432/shop?sslmode=disable")
	require.NoError(t, err)
	assert.Equal(t, "postgres", driver)
	assert.Equal(t, "postgres://u:p@localhost:5432/shop?sslmode=disable", dsn)

	driver, dsn, err = openParams("mysql://root:secret@db:3306/shop")
	require.NoError(t, err)
	assert.Equal(t, "mysql", driver)
	assert.Contains(t, dsn, "root:secret@tcp(db:3306)/shop")

	_, _, err = openParams("oracle://x")
	assert.ErrorIs(t, err, ErrUnsupportedURL)
	_, _, err = openParams("no-scheme")
	assert.ErrorIs(t, err, ErrUnsupportedURL)
}

func TestInspect_SQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shop.db")
	db, err := sql.Open("sqlite", "file:"+path)
	require.NoError(t, err)
	_, err = db.Exec(`
		CREATE TABLE customers (id INTEGER PRIMARY KEY, company_name TEXT NOT NULL);
		CREATE TABLE orders (
			id INTEGER PRIMARY KEY,
			customer_id INTEGER NOT NULL REFERENCES customers(id),
			freight DECIMAL(10,2),
			ship_name TEXT
		);`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	tables, err := Inspect(context.Background(), "sqlite://"+path)
	require.NoError(t, err)

	g := FromTables(tables, model.DefaultPreferences())
	require.NoError(t, g.Validate())
	order := g.Resource("Order")
	require.NotNil(t, order)
	assert.Equal(t, "orders", order.TableName)
	assert.Equal(t, model.TypeDecimal, order.Attribute("freight").Type)
	assert.Equal(t, model.TypeOther, order.Attribute("ship_name").Type)
	require.Len(t, order.Parents, 1)
	assert.Equal(t, "Customer", order.Parents[0].ParentResource)
	assert.Equal(t, "OrderList", order.Parents[0].ChildRoleName)
	assert.Equal(t, []string{"customer_id"}, order.Parents[0].ChildColumns())
}

func TestDecodeInspectJSON(t *testing.T) {
	out := `{"schemas":[{"name":"public","tables":[
		{"name":"customers","columns":[{"name":"id","type":"integer"},{"name":"name","type":"text"}]},
		{"name":"orders","columns":[{"name":"id","type":"integer"},{"name":"customer_id","type":"integer","null":true},{"name":"placed","type":"timestamp"}],
		 "foreign_keys":[{"name":"orders_customer","columns":["customer_id"],"references":{"table":"customers","columns":["id"]}}]}
	]}]}`
	tables, err := DecodeInspectJSON([]byte(out))
	require.NoError(t, err)
	require.Len(t, tables, 2)

	g := FromTables(tables, model.DefaultPreferences())
	require.NoError(t, g.Validate())
	order := g.Resource("Order")
	assert.True(t, order.Attribute("customer_id").Nullable)
	assert.Equal(t, model.TypeDate, order.Attribute("placed").Type)
	require.Len(t, order.Parents, 1)
	assert.Equal(t, "id", order.Parents[0].KeyPairs[0].ParentColumn)

	_, err = DecodeInspectJSON([]byte(`{`))
	assert.Error(t, err)
}
