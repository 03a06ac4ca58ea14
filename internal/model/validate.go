package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidModel is matched by every ValidationError.
var ErrInvalidModel = errors.New("model: invalid resource graph")

// ValidationError lists every inconsistency found in a graph.
type ValidationError struct {
	Problems []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return "model: invalid resource graph: " + strings.Join(e.Problems, "; ")
}

// Is reports whether the target is ErrInvalidModel.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidModel
}

// Validate checks the invariants providers must uphold: unique attribute
// names, at least one attribute per resource, and relationships whose
// endpoints and child columns exist.
func (g *Graph) Validate() error {
	var problems []string
	for _, r := range g.Resources() {
		if len(r.Attributes) == 0 {
			problems = append(problems, fmt.Sprintf("resource %s has no attributes", r.Name))
		}
		seen := make(map[string]bool, len(r.Attributes))
		for _, a := range r.Attributes {
			if seen[a.Name] {
				problems = append(problems, fmt.Sprintf("resource %s declares attribute %s twice", r.Name, a.Name))
			}
			seen[a.Name] = true
		}
	}
	for _, rel := range g.relationships {
		child := g.resources[rel.ChildResource]
		if child == nil {
			problems = append(problems, fmt.Sprintf("relationship %s references unknown child %s", rel.ParentRoleName, rel.ChildResource))
			continue
		}
		if g.resources[rel.ParentResource] == nil {
			problems = append(problems, fmt.Sprintf("relationship %s references unknown parent %s", rel.ParentRoleName, rel.ParentResource))
		}
		if len(rel.KeyPairs) == 0 {
			problems = append(problems, fmt.Sprintf("relationship %s.%s has no key pairs", rel.ChildResource, rel.ParentRoleName))
		}
		for _, kp := range rel.KeyPairs {
			if child.Attribute(kp.ChildColumn) == nil {
				problems = append(problems, fmt.Sprintf("relationship %s.%s: column %s not found in %s",
					rel.ChildResource, rel.ParentRoleName, kp.ChildColumn, rel.ChildResource))
			}
		}
	}
	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}
