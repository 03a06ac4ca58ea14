package admin

import "strings"

const (
	DefaultTablePrefix = "ab_"
	DefaultClassPrefix = "Ab"
	sqliteSequence     = "sqlite_sequence"
)

// Filter decides which resources get their own view in the document.
type Filter struct {
	notExposed  map[string]bool
	tablePrefix string
	classPrefix string
}

// NewFilter builds a filter from a space-separated not-exposed list. Empty
// prefixes disable the corresponding rule.
func NewFilter(notExposed, tablePrefix, classPrefix string) Filter {
	f := Filter{
		notExposed:  make(map[string]bool),
		tablePrefix: tablePrefix,
		classPrefix: classPrefix,
	}
	for _, name := range strings.Fields(notExposed) {
		f.notExposed[name] = true
	}
	return f
}

// Include reports whether the named resource is rendered. Rules are checked
// in order and the first match excludes.
func (f Filter) Include(name string) bool {
	switch {
	case f.notExposed[name]:
		return false
	case f.tablePrefix != "" && strings.HasPrefix(name, f.tablePrefix):
		return false
	case name == sqliteSequence:
		return false
	case name == "":
		return false
	case f.classPrefix != "" && strings.HasPrefix(name, f.classPrefix):
		return false
	}
	return true
}
