// Package legacy derives a resource model straight from database tables,
// for projects that have no model file. Resource and role names are
// inferred from table and column names.
package legacy

import (
	"strconv"
	"strings"

	"ariga.io/atlas/sql/schema"
	"github.com/go-openapi/inflect"

	"github.com/matthewbaird/admingen/internal/model"
)

// ResourceName turns a table name into a resource name: singular and
// camel-cased, so "order_details" becomes "OrderDetail".
func ResourceName(table string) string {
	return inflect.Camelize(inflect.Singularize(table))
}

// FromTables builds a graph from inspected tables, in the given order.
// Foreign keys become relationships. The parent role is the parent resource
// name and the child role is "<Child>List"; when the same child/parent pair
// is linked more than once, later links get a numeric suffix
// ("Department1", "EmployeeList1").
func FromTables(tables []*schema.Table, prefs model.Preferences) *model.Graph {
	g := model.NewGraph()
	names := make(map[*schema.Table]string, len(tables))
	byTable := make(map[string]string, len(tables))
	taken := make(map[string]bool, len(tables))

	for _, t := range tables {
		name := uniqueName(ResourceName(t.Name), taken)
		names[t] = name
		byTable[t.Name] = name

		res := &model.Resource{Name: name, TableName: t.Name}
		for _, c := range t.Columns {
			res.Attributes = append(res.Attributes, &model.Attribute{
				Name:        c.Name,
				Nullable:    c.Type != nil && c.Type.Null,
				Type:        attributeType(c.Type),
				NonFavorite: prefs.IsNonFavorite(c.Name),
			})
		}
		g.Register(res)
	}

	pairs := make(map[[2]string]int)
	for _, t := range tables {
		child := names[t]
		for _, fk := range t.ForeignKeys {
			if fk.RefTable == nil {
				continue
			}
			parent, ok := byTable[fk.RefTable.Name]
			if !ok {
				continue
			}
			key := [2]string{child, parent}
			suffix := ""
			if n := pairs[key]; n > 0 {
				suffix = strconv.Itoa(n)
			}
			pairs[key]++

			rel := &model.Relationship{
				ParentResource: parent,
				ChildResource:  child,
				ParentRoleName: parent + suffix,
				ChildRoleName:  child + "List" + suffix,
			}
			for i, c := range fk.Columns {
				kp := model.KeyPair{ChildColumn: c.Name}
				if i < len(fk.RefColumns) {
					kp.ParentColumn = fk.RefColumns[i].Name
				}
				rel.KeyPairs = append(rel.KeyPairs, kp)
			}
			g.Relate(rel)
		}
	}
	return g
}

func uniqueName(name string, taken map[string]bool) string {
	candidate := name
	for i := 1; taken[candidate]; i++ {
		candidate = name + strconv.Itoa(i)
	}
	taken[candidate] = true
	return candidate
}

func attributeType(ct *schema.ColumnType) model.AttributeType {
	if ct == nil {
		return model.TypeOther
	}
	switch t := ct.Type.(type) {
	case *schema.DecimalType, *schema.FloatType:
		return model.TypeDecimal
	case *schema.TimeType:
		return model.TypeDate
	case *schema.BinaryType:
		return model.TypeBinary
	case *schema.StringType:
		if typ := typeByName(t.T); typ == model.TypeLongText {
			return typ
		}
		return typeByName(ct.Raw)
	case *schema.UnsupportedType:
		if typ := typeByName(t.T); typ != model.TypeOther {
			return typ
		}
	}
	return typeByName(ct.Raw)
}

// typeByName classifies a raw SQL type such as "NUMERIC(10, 2)". Plain TEXT
// is not long text: SQLite declares most strings that way.
func typeByName(raw string) model.AttributeType {
	base := strings.ToLower(strings.TrimSpace(raw))
	if i := strings.IndexAny(base, "( "); i >= 0 {
		base = base[:i]
	}
	switch base {
	case "decimal", "numeric", "money", "smallmoney", "real", "float", "double":
		return model.TypeDecimal
	case "date", "datetime", "datetime2", "timestamp", "timestamptz", "time":
		return model.TypeDate
	case "ntext", "clob", "longtext", "mediumtext":
		return model.TypeLongText
	case "image", "blob", "longblob", "mediumblob", "bytea", "binary", "varbinary":
		return model.TypeBinary
	}
	return model.TypeOther
}
