// Package model holds the resource graph the admin synthesizer reads.
//
// A Graph is populated once by a model provider (cueload, entload or the
// legacy database scanner) and is read-only afterwards. Resources keep the
// provider's declaration order, which drives the order of the generated
// admin document.
package model

// AttributeType is the semantic category of a column as far as the admin
// front end is concerned.
type AttributeType string

const (
	TypeOther    AttributeType = ""
	TypeDecimal  AttributeType = "DECIMAL"
	TypeDate     AttributeType = "DATE"
	TypeLongText AttributeType = "NTEXT"
	TypeBinary   AttributeType = "IMAGE"
)

// Attribute describes one column of a resource.
type Attribute struct {
	Name        string
	Nullable    bool
	Type        AttributeType
	NonFavorite bool // sorts last, e.g. surrogate ids
}

// KeyPair joins one child column to one parent column.
type KeyPair struct {
	ChildColumn  string
	ParentColumn string
}

// Relationship is a foreign key from ChildResource to ParentResource.
type Relationship struct {
	ParentResource string
	ChildResource  string
	// ParentRoleName names the parent as seen from the child, e.g. "Customer"
	// or "ShipToCustomer" when several relationships link the same pair.
	ParentRoleName string
	// ChildRoleName names the children as seen from the parent, e.g. "OrderList".
	ChildRoleName string
	KeyPairs      []KeyPair
}

// ChildColumns returns the child side of every key pair, in order.
func (r *Relationship) ChildColumns() []string {
	cols := make([]string, 0, len(r.KeyPairs))
	for _, kp := range r.KeyPairs {
		cols = append(cols, kp.ChildColumn)
	}
	return cols
}

// Resource is one administrable entity backed by a table or view.
type Resource struct {
	Name       string
	TableName  string
	Attributes []*Attribute
	Parents    []*Relationship // this resource is the child
	Children   []*Relationship // this resource is the parent
	// JoinReferences optionally lists "<role>.<attribute>" parent references
	// used when parent joins are rendered explicitly.
	JoinReferences []string
}

// Attribute returns the named attribute or nil.
func (r *Resource) Attribute(name string) *Attribute {
	for _, a := range r.Attributes {
		if a.Name == name {
			return a
		}
	}
	return nil
}

// Graph holds every resource of a model keyed by name, in declaration order.
type Graph struct {
	resources     map[string]*Resource
	order         []string
	relationships []*Relationship
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{
		resources: make(map[string]*Resource),
	}
}

// Register adds a resource. Registering a name twice replaces the resource
// but keeps its original position.
func (g *Graph) Register(r *Resource) {
	if r.TableName == "" {
		r.TableName = r.Name
	}
	if _, ok := g.resources[r.Name]; !ok {
		g.order = append(g.order, r.Name)
	}
	g.resources[r.Name] = r
}

// Relate records a relationship on both ends. Both resources must already be
// registered; Validate reports dangling relationships.
func (g *Graph) Relate(rel *Relationship) {
	g.relationships = append(g.relationships, rel)
	if child := g.resources[rel.ChildResource]; child != nil {
		child.Parents = append(child.Parents, rel)
	}
	if parent := g.resources[rel.ParentResource]; parent != nil {
		parent.Children = append(parent.Children, rel)
	}
}

// Resource returns the named resource, or nil if not found.
func (g *Graph) Resource(name string) *Resource {
	return g.resources[name]
}

// Names returns resource names in declaration order.
func (g *Graph) Names() []string {
	return g.order
}

// Resources returns resources in declaration order.
func (g *Graph) Resources() []*Resource {
	out := make([]*Resource, 0, len(g.order))
	for _, name := range g.order {
		out = append(out, g.resources[name])
	}
	return out
}

// Relationships returns every relationship in the order it was related.
func (g *Graph) Relationships() []*Relationship {
	return g.relationships
}

// Len returns the number of resources.
func (g *Graph) Len() int {
	return len(g.order)
}
