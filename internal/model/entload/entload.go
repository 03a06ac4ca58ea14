// Package entload builds a resource model from an ent schema package.
package entload

import (
	"fmt"

	"entgo.io/ent/entc"
	"entgo.io/ent/entc/gen"
	"entgo.io/ent/schema/field"

	"github.com/matthewbaird/admingen/internal/model"
)

// LoadDir loads the ent schema package in dir (for example ./ent/schema) and
// converts it.
func LoadDir(dir string, prefs model.Preferences) (*model.Graph, error) {
	g, err := entc.LoadGraph(dir, &gen.Config{})
	if err != nil {
		return nil, fmt.Errorf("entload: loading %s: %w", dir, err)
	}
	return FromGraph(g, prefs), nil
}

// FromGraph converts an ent graph. Each type becomes a resource named after
// the type and keyed by its table. Attributes are the ID, the fields and the
// foreign-key columns ent adds for edges. Every edge whose foreign key lives
// in a table becomes one relationship; many-to-many edges have no column on
// either side and are skipped.
func FromGraph(g *gen.Graph, prefs model.Preferences) *model.Graph {
	out := model.NewGraph()
	for _, t := range g.Nodes {
		out.Register(resource(t, prefs))
	}
	for _, t := range g.Nodes {
		for _, e := range t.Edges {
			if rel := relationship(t, e); rel != nil {
				out.Relate(rel)
			}
		}
	}
	return out
}

func resource(t *gen.Type, prefs model.Preferences) *model.Resource {
	res := &model.Resource{
		Name:      t.Name,
		TableName: t.Table(),
	}
	add := func(f *gen.Field) {
		name := f.StorageKey()
		if res.Attribute(name) != nil {
			return
		}
		res.Attributes = append(res.Attributes, &model.Attribute{
			Name:        name,
			Nullable:    f.Optional || f.Nillable,
			Type:        attributeType(f),
			NonFavorite: prefs.IsNonFavorite(name),
		})
	}
	if t.ID != nil {
		add(t.ID)
	}
	for _, f := range t.Fields {
		add(f)
	}
	for _, fk := range t.ForeignKeys {
		if !fk.UserDefined {
			add(fk.Field)
		}
	}
	return res
}

// relationship returns the relationship carried by edge e of type t, or nil
// when the foreign key is owned by the other side or there is none.
func relationship(t *gen.Type, e *gen.Edge) *model.Relationship {
	switch {
	case e.M2M():
		return nil
	case e.OwnFK():
		// t holds the column: M2O or inverse O2O
		childRole := t.Name + "List"
		if e.Ref != nil {
			childRole = e.Ref.Name
		}
		return &model.Relationship{
			ParentResource: e.Type.Name,
			ChildResource:  t.Name,
			ParentRoleName: e.Name,
			ChildRoleName:  childRole,
			KeyPairs:       keyPairs(e, e.Type),
		}
	case e.Ref == nil && (e.O2M() || e.O2O()):
		// assoc edge without an inverse: the column sits in the target table
		return &model.Relationship{
			ParentResource: t.Name,
			ChildResource:  e.Type.Name,
			ParentRoleName: t.Name,
			ChildRoleName:  e.Name,
			KeyPairs:       keyPairs(e, t),
		}
	}
	return nil
}

func keyPairs(e *gen.Edge, parent *gen.Type) []model.KeyPair {
	if len(e.Rel.Columns) == 0 {
		return nil
	}
	parentColumn := "id"
	if parent.ID != nil {
		parentColumn = parent.ID.StorageKey()
	}
	return []model.KeyPair{{ChildColumn: e.Rel.Column(), ParentColumn: parentColumn}}
}

func attributeType(f *gen.Field) model.AttributeType {
	if f.Type == nil {
		return model.TypeOther
	}
	switch f.Type.Type {
	case field.TypeFloat32, field.TypeFloat64:
		return model.TypeDecimal
	case field.TypeTime:
		return model.TypeDate
	case field.TypeJSON:
		return model.TypeLongText
	case field.TypeBytes:
		return model.TypeBinary
	}
	return model.TypeOther
}
