package admin

import (
	"errors"
	"fmt"
	"time"

	"github.com/matthewbaird/admingen/internal/model"
)

const (
	DefaultHost           = "localhost"
	DefaultPort           = "5656"
	DefaultMaxListColumns = 8
	DefaultRecentChanges  = "works with modified safrs-react-admin"

	dateLayout = "January 02, 2006 15:04:05"
)

// ErrUnknownResource is returned when a relationship names a resource the
// graph does not hold.
var ErrUnknownResource = errors.New("admin: relationship references unknown resource")

// Options configure an Engine. Use DefaultOptions and override fields.
type Options struct {
	Host string
	// Port may be empty, which omits the port segment of generated URLs.
	Port string

	NotExposed  string
	TablePrefix string
	ClassPrefix string

	Preferences    model.Preferences
	MaxListColumns int

	ParentJoinsImplicit      bool
	ChildGrids               bool
	RelationshipsWithParents bool

	// TypedTypes are copied into the attribute view; SuppressedTypes drop
	// the attribute entirely.
	TypedTypes      []model.AttributeType
	SuppressedTypes []model.AttributeType

	Version       string
	RecentChanges string
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		Host:                     DefaultHost,
		Port:                     DefaultPort,
		TablePrefix:              DefaultTablePrefix,
		ClassPrefix:              DefaultClassPrefix,
		Preferences:              model.DefaultPreferences(),
		MaxListColumns:           DefaultMaxListColumns,
		ParentJoinsImplicit:      true,
		ChildGrids:               false,
		RelationshipsWithParents: true,
		TypedTypes:               []model.AttributeType{model.TypeDecimal, model.TypeDate},
		SuppressedTypes:          []model.AttributeType{model.TypeLongText, model.TypeBinary},
		RecentChanges:            DefaultRecentChanges,
	}
}

// Option tweaks an Engine after construction.
type Option func(*Engine)

// WithClock replaces time.Now for the about.date field.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// Engine turns resource graphs into admin documents. It holds no per-run
// state and may be shared; each Synthesize call works on a fresh Run.
type Engine struct {
	opts       Options
	filter     Filter
	typed      map[model.AttributeType]bool
	suppressed map[model.AttributeType]bool
	now        func() time.Time
}

// New creates an engine.
func New(opts Options, extra ...Option) *Engine {
	e := &Engine{
		opts:       opts,
		filter:     NewFilter(opts.NotExposed, opts.TablePrefix, opts.ClassPrefix),
		typed:      make(map[model.AttributeType]bool),
		suppressed: make(map[model.AttributeType]bool),
		now:        time.Now,
	}
	for _, t := range opts.TypedTypes {
		e.typed[t] = true
	}
	for _, t := range opts.SuppressedTypes {
		e.suppressed[t] = true
	}
	for _, o := range extra {
		o(e)
	}
	return e
}

// Options returns the engine configuration.
func (e *Engine) Options() Options {
	return e.opts
}

// Filter returns the exclusion filter in use.
func (e *Engine) Filter() Filter {
	return e.filter
}

// Result is the outcome of one synthesis run.
type Result struct {
	Document *Document
	Warnings []Warning
}

// Synthesize builds the admin document for g.
func (e *Engine) Synthesize(g *model.Graph) (*Result, error) {
	return e.NewRun(g).Assemble()
}

// Run holds the mutable state of one synthesis: the deduplicated warnings
// and the running counters. A Run must not be shared between goroutines.
type Run struct {
	e      *Engine
	g      *model.Graph
	warn   warnings
	tables int
	tabs   int
}

// NewRun starts a run over g.
func (e *Engine) NewRun(g *model.Graph) *Run {
	return &Run{e: e, g: g}
}

// Warnings returns the warnings recorded so far.
func (r *Run) Warnings() []Warning {
	return r.warn.list
}

// Assemble renders every included resource in declaration order and adds
// the global sections.
func (r *Run) Assemble() (*Result, error) {
	doc := &Document{
		APIRoot: BaseURL(r.e.opts.Host, r.e.opts.Port) + "/api",
	}
	for _, res := range r.g.Resources() {
		if !r.e.filter.Include(res.Name) {
			continue
		}
		view, err := r.BuildResource(res)
		if err != nil {
			return nil, err
		}
		doc.Resources.Set(res.TableName, view)
		r.tables++
	}

	doc.Settings = Settings{
		MaxListColumns: r.e.opts.MaxListColumns,
		HomeJS:         BaseURL(r.e.opts.Host, r.e.opts.Port) + "/admin-app/home.js",
	}
	doc.About = About{
		Date:          r.e.now().Format(dateLayout),
		Version:       r.e.opts.Version,
		RecentChanges: r.e.opts.RecentChanges,
	}
	doc.Info = Info{
		NumberTables:        r.tables,
		NumberRelationships: r.tabs,
	}
	if r.tabs == 0 {
		r.warn.add(WarnNoRelationships, "",
			"no relationships detected - add them to your database or model")
	}
	return &Result{Document: doc, Warnings: r.warn.list}, nil
}

// BuildResource renders one resource view.
func (r *Run) BuildResource(res *model.Resource) (*ResourceView, error) {
	attrs, userKey, err := r.buildAttributes(res, nil)
	if err != nil {
		return nil, err
	}
	tabs, err := r.BuildTabs(res)
	if err != nil {
		return nil, err
	}
	return &ResourceView{
		Type:       res.Name,
		UserKey:    userKey,
		Attributes: attrs,
		Tabs:       tabs,
	}, nil
}

// BaseURL returns http://host[:port]. An empty host means localhost; an
// empty port omits the port segment.
func BaseURL(host, port string) string {
	if host == "" {
		host = DefaultHost
	}
	if port == "" {
		return "http://" + host
	}
	return "http://" + host + ":" + port
}

func (r *Run) resource(name string) (*model.Resource, error) {
	res := r.g.Resource(name)
	if res == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownResource, name)
	}
	return res, nil
}
