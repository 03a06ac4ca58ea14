package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/untillpro/goutils/logger"

	"github.com/matthewbaird/admingen/internal/admin"
	"github.com/matthewbaird/admingen/internal/config"
	"github.com/matthewbaird/admingen/internal/eventbus"
	"github.com/matthewbaird/admingen/internal/model"
	"github.com/matthewbaird/admingen/internal/model/cueload"
	"github.com/matthewbaird/admingen/internal/model/entload"
	"github.com/matthewbaird/admingen/internal/model/legacy"
	"github.com/matthewbaird/admingen/internal/project"
)

var errNoModel = errors.New("no model: set --model or --db-url")

// generator turns the configured model into admin documents.
type generator struct {
	cfg    config.Config
	engine *admin.Engine
	layout project.Layout
}

func newGenerator(cfg config.Config) *generator {
	return &generator{
		cfg:    cfg,
		engine: admin.New(cfg.AdminOptions(version)),
		layout: project.Layout{Dir: cfg.ProjectDir},
	}
}

// graph loads and validates the model. A directory model is an ent schema
// package; a file is read by its extension.
func (g *generator) graph(ctx context.Context) (*model.Graph, error) {
	prefs := g.cfg.Preferences()
	var (
		graph *model.Graph
		err   error
	)
	switch {
	case g.cfg.Model != "":
		info, statErr := os.Stat(g.cfg.Model)
		if statErr != nil {
			return nil, fmt.Errorf("model: %w", statErr)
		}
		if info.IsDir() {
			logger.Verbose("loading ent schema", g.cfg.Model)
			graph, err = entload.LoadDir(g.cfg.Model, prefs)
		} else {
			logger.Verbose("loading model", g.cfg.Model)
			graph, err = cueload.LoadFile(g.cfg.Model, prefs)
		}
	case g.cfg.DBURL != "":
		graph, err = g.inspect(ctx, prefs)
	default:
		return nil, errNoModel
	}
	if err != nil {
		return nil, err
	}
	return graph, graph.Validate()
}

func (g *generator) inspect(ctx context.Context, prefs model.Preferences) (*model.Graph, error) {
	inspect := legacy.Inspect
	if g.cfg.UseAtlasCLI {
		inspect = legacy.InspectWithCLI
	}
	logger.Verbose("inspecting database schema")
	tables, err := inspect(ctx, g.cfg.DBURL)
	if err != nil {
		return nil, err
	}
	return legacy.FromTables(tables, prefs), nil
}

// synthesize builds the document and logs its warnings.
func (g *generator) synthesize(ctx context.Context) (*admin.Result, error) {
	graph, err := g.graph(ctx)
	if err != nil {
		return nil, err
	}
	res, err := g.engine.Synthesize(graph)
	if err != nil {
		return nil, err
	}
	for _, w := range res.Warnings {
		logger.Warning(w)
	}
	return res, nil
}

// write synthesizes and persists into the project.
func (g *generator) write(ctx context.Context, mode project.Mode) (*admin.Result, *project.WriteReport, error) {
	res, err := g.synthesize(ctx)
	if err != nil {
		return nil, nil, err
	}
	report, err := project.NewWriter(g.layout).Write(res.Document, mode)
	if err != nil {
		return nil, nil, err
	}
	return res, report, nil
}

// regenerate is one watch cycle, reported as an event rather than an error.
func (g *generator) regenerate(ctx context.Context) eventbus.Regenerated {
	evt := eventbus.NewRegenerated(g.projectName(), g.layout.AdminCreatedYAML())
	res, report, err := g.write(ctx, project.ModeRebuild)
	if err != nil {
		evt.Error = err.Error()
		return evt
	}
	if report.AdminWritten {
		evt.Path = report.AdminPath
	}
	evt.Tables = report.NumberTables
	evt.Relationships = report.NumberRelated
	for _, w := range res.Warnings {
		evt.Warnings = append(evt.Warnings, w.String())
	}
	return evt
}

func (g *generator) projectName() string {
	abs, err := filepath.Abs(g.cfg.ProjectDir)
	if err != nil {
		return g.cfg.ProjectDir
	}
	return filepath.Base(abs)
}
