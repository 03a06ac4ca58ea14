package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/untillpro/goutils/logger"

	"github.com/matthewbaird/admingen/internal/project"
)

func newCreateCmd() *cobra.Command {
	params := params{}
	cmd := &cobra.Command{
		Use:   "create",
		Short: "create the admin app of a project and write admin.yaml",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := params.load(cmd)
			if err != nil {
				return err
			}
			g := newGenerator(cfg)
			seeder := project.NewSeeder(g.layout, cfg.PrototypeDir, cfg.HomeJS)
			if cfg.PrototypeDir != "" {
				if _, err := os.Stat(g.layout.SPADir()); err == nil {
					logger.Info("admin app exists, not copying", g.layout.SPADir())
				} else if err := seeder.CreateAdminApp(cmd.Context()); err != nil {
					return err
				}
			}
			if err := seeder.EnsureHomeJS(); err != nil {
				return err
			}
			return writeAndReport(cmd, g, project.ModeCreate)
		},
	}
	initGlobalFlags(cmd, &params)
	return cmd
}

func newRebuildCmd() *cobra.Command {
	params := params{}
	cmd := &cobra.Command{
		Use:   "rebuild",
		Short: "regenerate admin-created.yaml, keeping an edited admin.yaml",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := params.load(cmd)
			if err != nil {
				return err
			}
			return writeAndReport(cmd, newGenerator(cfg), project.ModeRebuild)
		},
	}
	initGlobalFlags(cmd, &params)
	return cmd
}

func writeAndReport(cmd *cobra.Command, g *generator, mode project.Mode) error {
	_, report, err := g.write(cmd.Context(), mode)
	if err != nil {
		return err
	}
	logger.Info(mode.String()+":", report.NumberTables, "tables,", report.NumberRelated, "relationships")
	if !report.AdminWritten {
		logger.Info("compare", report.AdminPath, "with", report.CreatedPath, "to pick up model changes")
	}
	return nil
}
