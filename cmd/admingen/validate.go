package main

import (
	"github.com/spf13/cobra"
	"github.com/untillpro/goutils/logger"
)

func newValidateCmd() *cobra.Command {
	params := params{}
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "load and check the model and configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := params.load(cmd)
			if err != nil {
				return err
			}
			g := newGenerator(cfg)
			graph, err := g.graph(cmd.Context())
			if err != nil {
				return err
			}
			res, err := g.engine.Synthesize(graph)
			if err != nil {
				return err
			}
			for _, w := range res.Warnings {
				logger.Warning(w)
			}
			logger.Info("model ok:", graph.Len(), "resources,", len(graph.Relationships()), "relationships")
			return nil
		},
	}
	initGlobalFlags(cmd, &params)
	return cmd
}
