// Package admin synthesizes the admin UI document from a resource graph.
package admin

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingColumn is matched by ColumnError.
var ErrMissingColumn = errors.New("admin: foreign key column not found")

// ColumnError reports a relationship naming a column its child resource does
// not declare. It aborts synthesis: the model provider handed over an
// inconsistent graph.
type ColumnError struct {
	Resource     string
	Column       string
	Relationship string
}

// Error implements the error interface.
func (e *ColumnError) Error() string {
	var b strings.Builder
	if e.Column == "" {
		b.WriteString("admin: no key columns for ")
	} else {
		b.WriteString("admin: unable to find ")
		b.WriteString(e.Column)
		b.WriteString(" in ")
	}
	b.WriteString(e.Resource)
	if e.Relationship != "" {
		b.WriteString(" (relationship ")
		b.WriteString(e.Relationship)
		b.WriteString(")")
	}
	return b.String()
}

// Is reports whether the target is ErrMissingColumn.
func (e *ColumnError) Is(target error) bool {
	return target == ErrMissingColumn
}

// IsColumnError reports whether err is or wraps a ColumnError.
func IsColumnError(err error) bool {
	var ce *ColumnError
	return errors.As(err, &ce)
}

// WarningKind classifies recoverable conditions.
type WarningKind string

const (
	WarnUnresolvedRole  WarningKind = "unresolved_role"
	WarnNoRelationships WarningKind = "no_relationships"
	WarnNoFavorite      WarningKind = "no_renderable_favorite"
)

// Warning is a recoverable condition found during synthesis. The document
// is still produced.
type Warning struct {
	Kind    WarningKind
	Subject string
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s", w.Kind, w.Message)
}

// warnings collects warnings for one run, deduplicated by kind and subject.
type warnings struct {
	seen map[string]bool
	list []Warning
}

func (w *warnings) add(kind WarningKind, subject, message string) {
	key := string(kind) + "\x00" + subject
	if w.seen == nil {
		w.seen = make(map[string]bool)
	}
	if w.seen[key] {
		return
	}
	w.seen[key] = true
	w.list = append(w.list, Warning{Kind: kind, Subject: subject, Message: message})
}
