package model

import "strings"

const (
	DefaultFavoriteNames    = "name description"
	DefaultNonFavoriteNames = "id"
)

// Preferences drive the favorite-attribute heuristic and non-favorite
// marking. Both lists are matched case-insensitively.
type Preferences struct {
	FavoriteNames    []string
	NonFavoriteNames []string
}

// NewPreferences splits space-separated preference lists. Empty strings fall
// back to the defaults.
func NewPreferences(favoriteNames, nonFavoriteNames string) Preferences {
	if strings.TrimSpace(favoriteNames) == "" {
		favoriteNames = DefaultFavoriteNames
	}
	if strings.TrimSpace(nonFavoriteNames) == "" {
		nonFavoriteNames = DefaultNonFavoriteNames
	}
	return Preferences{
		FavoriteNames:    lowerFields(favoriteNames),
		NonFavoriteNames: lowerFields(nonFavoriteNames),
	}
}

// DefaultPreferences returns NewPreferences("", "").
func DefaultPreferences() Preferences {
	return NewPreferences("", "")
}

func lowerFields(s string) []string {
	fields := strings.Fields(s)
	for i, f := range fields {
		fields[i] = strings.ToLower(f)
	}
	return fields
}

// Favorite picks the attribute used as the resource's human-readable key:
// the first attribute containing the first matching preference, else the
// first declared attribute. Returns nil for a resource without attributes.
func (p Preferences) Favorite(r *Resource) *Attribute {
	if len(r.Attributes) == 0 {
		return nil
	}
	for _, pref := range p.FavoriteNames {
		for _, a := range r.Attributes {
			if strings.Contains(strings.ToLower(a.Name), pref) {
				return a
			}
		}
	}
	return r.Attributes[0]
}

// IsNonFavorite reports whether name ends with one of the non-favorite names.
func (p Preferences) IsNonFavorite(name string) bool {
	lower := strings.ToLower(name)
	for _, nf := range p.NonFavoriteNames {
		if strings.HasSuffix(lower, nf) {
			return true
		}
	}
	return false
}

// MarkNonFavorites sets the NonFavorite hint on every attribute whose name
// matches. Hints already set by the provider are kept.
func (p Preferences) MarkNonFavorites(g *Graph) {
	for _, r := range g.Resources() {
		for _, a := range r.Attributes {
			if !a.NonFavorite && p.IsNonFavorite(a.Name) {
				a.NonFavorite = true
			}
		}
	}
}
