// Package project owns the on-disk layout of a generated admin app and the
// rules for writing into it.
package project

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/untillpro/goutils/logger"

	"github.com/matthewbaird/admingen/internal/admin"
)

// Layout resolves paths inside a project directory.
type Layout struct {
	Dir string
}

func (l Layout) UIDir() string            { return filepath.Join(l.Dir, "ui") }
func (l Layout) AdminDir() string         { return filepath.Join(l.Dir, "ui", "admin") }
func (l Layout) AdminYAML() string        { return filepath.Join(l.AdminDir(), "admin.yaml") }
func (l Layout) AdminCreatedYAML() string { return filepath.Join(l.AdminDir(), "admin-created.yaml") }
func (l Layout) HomeJS() string           { return filepath.Join(l.AdminDir(), "home.js") }
func (l Layout) SPADir() string           { return filepath.Join(l.Dir, "ui", "safrs-react-admin") }

// Mode selects how an existing admin.yaml is treated.
type Mode int

const (
	// ModeCreate always writes admin.yaml.
	ModeCreate Mode = iota
	// ModeRebuild keeps an existing admin.yaml, which operators edit by hand.
	ModeRebuild
)

func (m Mode) String() string {
	if m == ModeRebuild {
		return "rebuild"
	}
	return "create"
}

// WriteReport tells what Write did.
type WriteReport struct {
	AdminPath     string
	AdminWritten  bool
	CreatedPath   string
	NumberTables  int
	NumberRelated int
}

// Writer persists admin documents into a project.
type Writer struct {
	layout Layout
}

// NewWriter creates a writer for the project at layout.
func NewWriter(layout Layout) *Writer {
	return &Writer{layout: layout}
}

// Write saves doc. admin-created.yaml is always refreshed so a preserved
// admin.yaml can be compared against the latest generation.
func (w *Writer) Write(doc *admin.Document, mode Mode) (*WriteReport, error) {
	data, err := doc.Marshal()
	if err != nil {
		return nil, fmt.Errorf("project: encoding admin.yaml: %w", err)
	}
	if err := os.MkdirAll(w.layout.AdminDir(), 0o755); err != nil {
		return nil, fmt.Errorf("project: %w", err)
	}

	report := &WriteReport{
		AdminPath:     w.layout.AdminYAML(),
		CreatedPath:   w.layout.AdminCreatedYAML(),
		NumberTables:  doc.Info.NumberTables,
		NumberRelated: doc.Info.NumberRelationships,
	}

	preserve := false
	if mode == ModeRebuild {
		if _, err := os.Stat(report.AdminPath); err == nil {
			preserve = true
		}
	}
	if preserve {
		logger.Info("rebuild - preserve", report.AdminPath)
	} else {
		logger.Info("write", report.AdminPath)
		if err := writeFile(report.AdminPath, data); err != nil {
			return nil, err
		}
		report.AdminWritten = true
	}

	if err := writeFile(report.CreatedPath, data); err != nil {
		return nil, err
	}
	return report, nil
}

// writeFile replaces path through a temporary file in the same directory so
// readers such as the server never see a partial document.
func writeFile(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("project: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("project: writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("project: writing %s: %w", path, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("project: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("project: writing %s: %w", path, err)
	}
	return nil
}
