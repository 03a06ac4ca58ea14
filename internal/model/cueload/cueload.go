// Package cueload reads a resource model from a CUE, JSON or YAML file.
//
// The file is unified with the #Model definition in schema.cue, which also
// supplies defaults (table name, role names). A minimal model:
//
//	resources: [
//		{name: "Customer", attributes: [{name: "Id"}, {name: "CompanyName"}]},
//		{name: "Order", table: "Orders", attributes: [{name: "Id"}, {name: "CustomerId"}]},
//	]
//	relationships: [
//		{parent: "Customer", child: "Order", keys: [{child: "CustomerId", parent: "Id"}]},
//	]
package cueload

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/encoding/yaml"

	"github.com/matthewbaird/admingen/internal/model"
)

//go:embed schema.cue
var schemaSource []byte

type attributeFile struct {
	Name        string `json:"name"`
	Nullable    bool   `json:"nullable"`
	Type        string `json:"type"`
	NonFavorite *bool  `json:"non_favorite"`
}

type resourceFile struct {
	Name       string          `json:"name"`
	Table      string          `json:"table"`
	Attributes []attributeFile `json:"attributes"`
	Joins      []string        `json:"joins"`
}

type keyPairFile struct {
	Child  string `json:"child"`
	Parent string `json:"parent"`
}

type relationshipFile struct {
	Parent     string        `json:"parent"`
	Child      string        `json:"child"`
	ParentRole string        `json:"parent_role"`
	ChildRole  string        `json:"child_role"`
	Keys       []keyPairFile `json:"keys"`
}

type modelFile struct {
	Resources     []resourceFile     `json:"resources"`
	Relationships []relationshipFile `json:"relationships"`
}

// LoadFile reads the model at path. The format follows the extension:
// .yaml and .yml are YAML, anything else is compiled as CUE (which accepts
// JSON).
func LoadFile(path string, prefs model.Preferences) (*model.Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cueload: %w", err)
	}
	return Load(path, data, prefs)
}

// Load reads a model from data; filename selects the format and appears in
// error messages.
func Load(filename string, data []byte, prefs model.Preferences) (*model.Graph, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileBytes(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("cueload: compiling schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Model"))

	var val cue.Value
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		f, err := yaml.Extract(filename, data)
		if err != nil {
			return nil, fmt.Errorf("cueload: %s: %w", filename, err)
		}
		val = ctx.BuildFile(f)
	default:
		val = ctx.CompileBytes(data, cue.Filename(filename))
	}
	if err := val.Err(); err != nil {
		return nil, fmt.Errorf("cueload: %s: %s", filename, details(err))
	}

	unified := def.Unify(val)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, fmt.Errorf("cueload: %s: %s", filename, details(err))
	}

	var mf modelFile
	if err := unified.Decode(&mf); err != nil {
		return nil, fmt.Errorf("cueload: %s: decoding: %w", filename, err)
	}
	return mf.graph(prefs), nil
}

func details(err error) string {
	return strings.TrimSpace(cueerrors.Details(err, nil))
}

func (mf *modelFile) graph(prefs model.Preferences) *model.Graph {
	g := model.NewGraph()
	for _, rf := range mf.Resources {
		res := &model.Resource{
			Name:           rf.Name,
			TableName:      rf.Table,
			JoinReferences: rf.Joins,
		}
		for _, af := range rf.Attributes {
			nonFavorite := prefs.IsNonFavorite(af.Name)
			if af.NonFavorite != nil {
				nonFavorite = *af.NonFavorite
			}
			res.Attributes = append(res.Attributes, &model.Attribute{
				Name:        af.Name,
				Nullable:    af.Nullable,
				Type:        model.AttributeType(strings.ToUpper(af.Type)),
				NonFavorite: nonFavorite,
			})
		}
		g.Register(res)
	}
	for _, rel := range mf.Relationships {
		r := &model.Relationship{
			ParentResource: rel.Parent,
			ChildResource:  rel.Child,
			ParentRoleName: rel.ParentRole,
			ChildRoleName:  rel.ChildRole,
		}
		for _, k := range rel.Keys {
			r.KeyPairs = append(r.KeyPairs, model.KeyPair{ChildColumn: k.Child, ParentColumn: k.Parent})
		}
		g.Relate(r)
	}
	return g
}
