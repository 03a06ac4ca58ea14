package admin

import (
	"strings"
	"unicode"
)

// CapSpace turns a camel-case name into a caption: a leading space, then a
// space before every uppercase letter after the first character.
//
//	CapSpace("ShipName") == " Ship Name"
func CapSpace(name string) string {
	var b strings.Builder
	b.WriteByte(' ')
	for i, r := range []rune(name) {
		if i > 0 && unicode.IsUpper(r) {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func favoriteLabel(name string) string {
	return CapSpace(name) + "*"
}
