package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matthewbaird/admingen/internal/eventbus"
	"github.com/matthewbaird/admingen/internal/registry"
	"github.com/matthewbaird/admingen/internal/server"
	"github.com/matthewbaird/admingen/internal/watch"

	_ "modernc.org/sqlite"
)

func newWatchCmd() *cobra.Command {
	params := params{}
	var (
		serve    bool
		listen   int
		debounce time.Duration
	)
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "rebuild admin-created.yaml whenever the model changes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := params.load(cmd)
			if err != nil {
				return err
			}
			if cfg.Model == "" {
				return errors.New("watch: needs --model")
			}
			g := newGenerator(cfg)

			bus := eventbus.New(0)
			bus.Subscribe("log", eventbus.NewLogConsumer())

			group, ctx := errgroup.WithContext(cmd.Context())
			if serve {
				hub := server.NewHub()
				bus.Subscribe("reload", hub)
				store, closeDB, err := memoryRegistry(ctx)
				if err != nil {
					return err
				}
				defer closeDB()
				group.Go(func() error {
					return server.Run(ctx, server.Config{
						Port:     listen,
						Hostname: cfg.Host,
						UIDir:    cfg.ProjectDir,
						Store:    store,
						Hub:      hub,
					})
				})
			}

			bus.Start(ctx)
			defer bus.Stop()
			bus.Publish(g.regenerate(ctx))

			w := watch.New([]string{cfg.Model}, g.regenerate, bus, watch.WithDebounce(debounce))
			group.Go(func() error { return w.Run(ctx) })
			return group.Wait()
		},
	}
	initGlobalFlags(cmd, &params)
	cmd.Flags().BoolVar(&serve, "serve", false, "serve the admin app and push reloads over /ws/reload")
	cmd.Flags().IntVar(&listen, "listen", 5657, "port for --serve")
	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, "quiet period before regenerating")
	return cmd
}

// memoryRegistry backs the registry API of a watch server, which only
// serves the project being watched.
func memoryRegistry(ctx context.Context) (*registry.Store, func(), error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, nil, fmt.Errorf("watch: %w", err)
	}
	db.SetMaxOpenConns(1)
	store := registry.NewStore(db)
	if err := store.CreateTable(ctx); err != nil {
		db.Close()
		return nil, nil, err
	}
	return store, func() { db.Close() }, nil
}
