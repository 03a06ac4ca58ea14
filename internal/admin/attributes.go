package admin

import (
	"strings"

	"github.com/matthewbaird/admingen/internal/model"
)

// BuildAttributes renders the attributes of res in four phases:
//
//  1. the favorite attribute (search, sort, starred label)
//  2. parent joins
//  3. the remaining attributes, declared order
//  4. the remaining non-favorite attributes, declared order
//
// Every attribute lands in at most one phase. Suppressed types produce no
// view but still count as processed. master is the resource showing res as
// a child grid, or nil.
func (r *Run) BuildAttributes(res, master *model.Resource) ([]AttributeView, error) {
	views, _, err := r.buildAttributes(res, master)
	return views, err
}

func (r *Run) buildAttributes(res, master *model.Resource) ([]AttributeView, string, error) {
	var views []AttributeView
	processed := make(map[string]bool, len(res.Attributes))

	userKey := r.favorite(res, processed, &views)

	if r.e.opts.ParentJoinsImplicit {
		if err := r.implicitJoins(res, processed, &views); err != nil {
			return nil, "", err
		}
	} else {
		if err := r.explicitJoins(res, master, processed, &views); err != nil {
			return nil, "", err
		}
	}

	for _, nonFavorite := range []bool{false, true} {
		for _, a := range res.Attributes {
			if processed[a.Name] || a.NonFavorite != nonFavorite {
				continue
			}
			processed[a.Name] = true
			if v, ok := r.render(a); ok {
				views = append(views, v)
			}
		}
	}
	return views, userKey, nil
}

// favorite renders phase 1 and returns the user key. A favorite of a
// suppressed type gives way to the first renderable attribute.
func (r *Run) favorite(res *model.Resource, processed map[string]bool, views *[]AttributeView) string {
	fav := r.e.opts.Preferences.Favorite(res)
	if fav == nil {
		return ""
	}
	processed[fav.Name] = true
	v, ok := r.render(fav)
	if !ok {
		for _, a := range res.Attributes {
			if v, ok = r.render(a); ok {
				fav = a
				break
			}
		}
	}
	if !ok {
		r.warn.add(WarnNoFavorite, res.Name, "no renderable favorite attribute for "+res.Name)
		return fav.Name
	}
	processed[fav.Name] = true
	v.Search = true
	v.Sort = true
	v.Label = favoriteLabel(fav.Name)
	*views = append(*views, v)
	return fav.Name
}

// implicitJoins flattens each parent foreign key into a plain attribute.
// Only the first key pair is used.
func (r *Run) implicitJoins(res *model.Resource, processed map[string]bool, views *[]AttributeView) error {
	for _, rel := range res.Parents {
		if len(rel.KeyPairs) == 0 {
			return &ColumnError{Resource: res.Name, Relationship: rel.ParentRoleName}
		}
		col := rel.KeyPairs[0].ChildColumn
		a := res.Attribute(col)
		if a == nil {
			return &ColumnError{Resource: res.Name, Column: col, Relationship: rel.ParentRoleName}
		}
		if processed[col] {
			continue
		}
		processed[col] = true
		if v, ok := r.render(a); ok {
			*views = append(*views, v)
		}
	}
	return nil
}

// explicitJoins renders one join view per parent role, listing every
// attribute referenced through it. References come from the model, or are
// derived from each parent's favorite attribute.
func (r *Run) explicitJoins(res, master *model.Resource, processed map[string]bool, views *[]AttributeView) error {
	refs := res.JoinReferences
	if len(refs) == 0 {
		refs = r.parentReferences(res)
	}
	var roles []string
	joins := make(map[string]*JoinView)
	skipped := make(map[string]bool)
	for _, ref := range refs {
		role, attr, _ := strings.Cut(ref, ".")
		if skipped[role] {
			continue
		}
		if join, seen := joins[role]; seen {
			if join.Error == "" && attr != "" && !hasAttribute(join.Attributes, attr) {
				join.Attributes = append(join.Attributes, AttributeView{Name: attr})
			}
			continue
		}
		join, ok := r.ResolveParentReference(res, ref, master)
		if !ok {
			skipped[role] = true
			continue
		}
		for _, fk := range join.Fks {
			if res.Attribute(fk) == nil {
				return &ColumnError{Resource: res.Name, Column: fk, Relationship: role}
			}
			processed[fk] = true
		}
		joins[role] = join
		roles = append(roles, role)
	}
	for _, role := range roles {
		*views = append(*views, AttributeView{Name: role, Join: joins[role]})
	}
	return nil
}

func hasAttribute(views []AttributeView, name string) bool {
	for _, v := range views {
		if v.Name == name {
			return true
		}
	}
	return false
}

func (r *Run) parentReferences(res *model.Resource) []string {
	refs := make([]string, 0, len(res.Parents))
	for _, rel := range res.Parents {
		ref := rel.ParentRoleName + "."
		if parent := r.g.Resource(rel.ParentResource); parent != nil {
			if fav := r.e.opts.Preferences.Favorite(parent); fav != nil {
				ref += fav.Name
			}
		}
		refs = append(refs, ref)
	}
	return refs
}

// render builds the view of one attribute; false means the type is
// suppressed.
func (r *Run) render(a *model.Attribute) (AttributeView, bool) {
	if r.e.suppressed[a.Type] {
		return AttributeView{}, false
	}
	v := AttributeView{Name: a.Name}
	if !a.Nullable {
		v.Required = true
	}
	if r.e.typed[a.Type] {
		v.Type = string(a.Type)
	}
	return v, true
}
