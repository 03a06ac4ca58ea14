package project

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/untillpro/goutils/logger"
)

//go:embed templates/home.js
var defaultHomeJS []byte

// ErrPrototypeMissing is returned when the prebuilt admin SPA is not where
// the configuration says.
var ErrPrototypeMissing = errors.New("project: prototype admin app not found, did you complete setup?")

// Seeder lays down the static admin app of a new project.
type Seeder struct {
	layout       Layout
	prototypeDir string
	homeJS       string
}

// NewSeeder creates a seeder. prototypeDir holds the built SPA; homeJS is an
// optional replacement for the default welcome screen.
func NewSeeder(layout Layout, prototypeDir, homeJS string) *Seeder {
	return &Seeder{layout: layout, prototypeDir: prototypeDir, homeJS: homeJS}
}

// CreateAdminApp copies the prototype SPA into ui/safrs-react-admin, creates
// ui/admin and writes home.js there. It fails when the SPA directory already
// exists.
func (s *Seeder) CreateAdminApp(ctx context.Context) error {
	info, err := os.Stat(s.prototypeDir)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%w (%s)", ErrPrototypeMissing, s.prototypeDir)
	}
	dst := s.layout.SPADir()
	if _, err := os.Stat(dst); err == nil {
		return fmt.Errorf("project: %s already exists", dst)
	}

	logger.Info("copy prototype admin project", s.prototypeDir, "->", dst)
	if err := copyTree(ctx, s.prototypeDir, dst); err != nil {
		return err
	}

	return s.writeHomeJS()
}

// EnsureHomeJS writes home.js when ui/admin has none, so the home.js URL in
// admin.yaml resolves even without a copied admin app.
func (s *Seeder) EnsureHomeJS() error {
	if _, err := os.Stat(s.layout.HomeJS()); err == nil {
		return nil
	}
	return s.writeHomeJS()
}

func (s *Seeder) writeHomeJS() error {
	if err := os.MkdirAll(s.layout.AdminDir(), 0o755); err != nil {
		return fmt.Errorf("project: %w", err)
	}
	home := defaultHomeJS
	if s.homeJS != "" {
		var err error
		if home, err = os.ReadFile(s.homeJS); err != nil {
			return fmt.Errorf("project: reading home.js: %w", err)
		}
	}
	logger.Verbose("write", s.layout.HomeJS())
	return writeFile(s.layout.HomeJS(), home)
}

func copyTree(ctx context.Context, src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		if !d.Type().IsRegular() {
			return nil
		}
		return copyFile(path, target)
	})
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
