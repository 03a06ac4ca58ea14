package admin

import (
	"bytes"

	"gopkg.in/yaml.v3"
)

// Direction of a tab relative to the resource that shows it.
type Direction string

const (
	ToMany Direction = "to-many"
	ToOne  Direction = "to-one"
)

// Document is the synthesized admin.yaml. Field order is the key order of
// the encoded document.
type Document struct {
	APIRoot   string      `yaml:"api_root"`
	Resources ResourceMap `yaml:"resources"`
	Settings  Settings    `yaml:"settings"`
	About     About       `yaml:"about"`
	Info      Info        `yaml:"info"`
}

// ResourceView is the per-resource section of the document.
type ResourceView struct {
	Type       string          `yaml:"type"`
	UserKey    string          `yaml:"user_key"`
	Attributes []AttributeView `yaml:"attributes"`
	Tabs       []TabView       `yaml:"tab_groups,omitempty"`
}

// AttributeView is one rendered attribute. Join is set only for explicit
// parent joins.
type AttributeView struct {
	Name     string    `yaml:"name"`
	Label    string    `yaml:"label,omitempty"`
	Required bool      `yaml:"required,omitempty"`
	Search   bool      `yaml:"search,omitempty"`
	Sort     bool      `yaml:"sort,omitempty"`
	Type     string    `yaml:"type,omitempty"`
	Join     *JoinView `yaml:"join,omitempty"`
}

// JoinView describes an explicit join to a parent resource.
type JoinView struct {
	Resource   string          `yaml:"resource,omitempty"`
	Fks        []string        `yaml:"fks,omitempty"`
	Attributes []AttributeView `yaml:"attributes,omitempty"`
	// Error marks a reference whose role could not be resolved.
	Error string `yaml:"error_unable_to_find_role,omitempty"`
}

// TabView is one related-resource tab.
type TabView struct {
	Name       string          `yaml:"name"`
	Resource   string          `yaml:"resource"`
	Direction  Direction       `yaml:"direction"`
	Fks        []string        `yaml:"fks"`
	Attributes []AttributeView `yaml:"attributes,omitempty"`
}

type Settings struct {
	MaxListColumns int    `yaml:"max_list_columns"`
	HomeJS         string `yaml:"HomeJS"`
}

type About struct {
	Date          string `yaml:"date"`
	Version       string `yaml:"version"`
	RecentChanges string `yaml:"recent_changes,omitempty"`
}

type Info struct {
	NumberTables        int `yaml:"number_tables"`
	NumberRelationships int `yaml:"number_relationships"`
}

// ResourceMap keeps resource views in insertion order, keyed by table name.
type ResourceMap struct {
	keys  []string
	views map[string]*ResourceView
}

// Set adds or replaces a view. A replaced view keeps its position.
func (m *ResourceMap) Set(table string, v *ResourceView) {
	if m.views == nil {
		m.views = make(map[string]*ResourceView)
	}
	if _, ok := m.views[table]; !ok {
		m.keys = append(m.keys, table)
	}
	m.views[table] = v
}

// Get returns the view stored under table, or nil.
func (m *ResourceMap) Get(table string) *ResourceView {
	return m.views[table]
}

// Keys returns table names in insertion order.
func (m *ResourceMap) Keys() []string {
	return m.keys
}

// Len returns the number of views.
func (m *ResourceMap) Len() int {
	return len(m.keys)
}

// MarshalYAML encodes the views as a mapping in insertion order.
func (m ResourceMap) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, k := range m.keys {
		var value yaml.Node
		if err := value.Encode(m.views[k]); err != nil {
			return nil, err
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
			&value,
		)
	}
	return node, nil
}

// Marshal encodes the document as YAML with two-space indentation.
func (d *Document) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
