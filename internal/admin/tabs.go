package admin

import (
	"strings"

	"github.com/matthewbaird/admingen/internal/model"
)

// BuildTabs derives the related-resource tabs of res: one to-many tab per
// child relationship, then one to-one tab per parent relationship when the
// parents pass is enabled. Relationships between the same pair of resources
// are never merged; their role names tell them apart.
func (r *Run) BuildTabs(res *model.Resource) ([]TabView, error) {
	var tabs []TabView
	for _, rel := range res.Children {
		child, err := r.resource(rel.ChildResource)
		if err != nil {
			return nil, err
		}
		tab := TabView{
			Name:      rel.ChildRoleName,
			Resource:  child.TableName,
			Direction: ToMany,
			Fks:       rel.ChildColumns(),
		}
		if r.e.opts.ChildGrids {
			if tab.Attributes, err = r.BuildAttributes(child, res); err != nil {
				return nil, err
			}
		}
		tabs = append(tabs, tab)
		r.tabs++
	}

	if !r.e.opts.RelationshipsWithParents {
		return tabs, nil
	}
	for _, rel := range res.Parents {
		parent, err := r.resource(rel.ParentResource)
		if err != nil {
			return nil, err
		}
		tabs = append(tabs, TabView{
			Name:      rel.ParentRoleName,
			Resource:  parent.TableName,
			Direction: ToOne,
			Fks:       rel.ChildColumns(),
		})
	}
	return tabs, nil
}

// ResolveParentReference resolves a "<role>.<attribute>" reference against
// the parent relationships of child.
//
// A reference to the master resource of a child grid is redundant and yields
// (nil, false). An unknown role is recorded as a warning, once per role, and
// yields a join view carrying only the error marker.
func (r *Run) ResolveParentReference(child *model.Resource, ref string, master *model.Resource) (*JoinView, bool) {
	role, attr, _ := strings.Cut(ref, ".")
	if master != nil && role == master.Name {
		return nil, false
	}
	for _, rel := range child.Parents {
		if rel.ParentRoleName != role {
			continue
		}
		join := &JoinView{
			Resource: rel.ParentResource,
			Fks:      rel.ChildColumns(),
		}
		if parent := r.g.Resource(rel.ParentResource); parent != nil {
			join.Resource = parent.TableName
		}
		if attr != "" {
			join.Attributes = []AttributeView{{Name: attr}}
		}
		return join, true
	}
	r.warn.add(WarnUnresolvedRole, role, "unable to find role "+role+" in "+child.Name)
	return &JoinView{Error: "Unable to find role for: " + ref}, true
}
