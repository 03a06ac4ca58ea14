package main

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/untillpro/goutils/cobrau"
	"github.com/untillpro/goutils/logger"

	"github.com/matthewbaird/admingen/internal/registry"
	"github.com/matthewbaird/admingen/internal/server"

	_ "modernc.org/sqlite"
)

//go:embed version
var version string

func main() {
	if err := execRootCmd(os.Args, version); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

type serverParams struct {
	iface      string
	port       int
	hostname   string
	portExt    string
	projectDir string
	registry   string
}

func execRootCmd(args []string, ver string) error {
	rootCmd := cobrau.PrepareRootCmd(
		"admingen-server",
		"serve generated admin apps for many projects",
		args,
		ver,
		newServeCmd(),
	)
	return cobrau.ExecCommandAndCatchInterrupt(rootCmd)
}

func newServeCmd() *cobra.Command {
	p := serverParams{}
	cmd := &cobra.Command{
		Use:   "serve [project-dir...]",
		Short: "serve the admin app and every registered project",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, closeDB, err := openRegistry(ctx, p.registry)
			if err != nil {
				return err
			}
			defer closeDB()
			if err := register(ctx, store, args); err != nil {
				return err
			}
			return server.Run(ctx, server.Config{
				Interface: p.iface,
				Port:      p.port,
				Hostname:  p.hostname,
				PortExt:   p.portExt,
				UIDir:     p.projectDir,
				Store:     store,
			})
		},
	}
	cmd.Flags().StringVarP(&p.iface, "interface", "i", "localhost", "interface to listen on")
	cmd.Flags().IntVar(&p.port, "port", 5656, "port to listen on")
	cmd.Flags().StringVarP(&p.hostname, "hostname", "H", "localhost", "host name clients use to reach the server")
	cmd.Flags().StringVar(&p.portExt, "port-ext", "", "port clients use to reach the server (default --port)")
	cmd.Flags().StringVarP(&p.projectDir, "project", "p", envOr("SRA_UI_PATH", "."), "project whose ui/ holds the shared admin app")
	cmd.Flags().StringVar(&p.registry, "registry", "admingen.db", "sqlite file holding registered projects")
	return cmd
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func openRegistry(ctx context.Context, path string) (*registry.Store, func(), error) {
	db, err := sql.Open("sqlite", "file:"+path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, nil, fmt.Errorf("opening registry: %w", err)
	}
	db.SetMaxOpenConns(1)
	store := registry.NewStore(db)
	if err := store.CreateTable(ctx); err != nil {
		db.Close()
		return nil, nil, err
	}
	return store, func() { db.Close() }, nil
}

// register adds each project directory under its base name unless that
// name is already taken.
func register(ctx context.Context, store *registry.Store, dirs []string) error {
	for _, dir := range dirs {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return err
		}
		name := filepath.Base(abs)
		if _, err := store.ByName(ctx, name); err == nil {
			logger.Verbose("already registered:", name)
			continue
		}
		api, err := store.Add(ctx, name, abs, "")
		if err != nil {
			return err
		}
		logger.Info("registered", api.Name, "->", api.Path)
	}
	return nil
}
