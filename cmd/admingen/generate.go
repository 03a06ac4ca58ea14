package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/untillpro/goutils/logger"
)

func newGenerateCmd() *cobra.Command {
	params := params{}
	var out string
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "print admin.yaml for the model without touching the project",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := params.load(cmd)
			if err != nil {
				return err
			}
			res, err := newGenerator(cfg).synthesize(cmd.Context())
			if err != nil {
				return err
			}
			data, err := res.Document.Marshal()
			if err != nil {
				return err
			}
			if out == "" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("generate: %w", err)
			}
			logger.Info("wrote", out)
			return nil
		},
	}
	initGlobalFlags(cmd, &params)
	cmd.Flags().StringVarP(&out, "out", "o", "", "write to this file instead of stdout")
	return cmd
}
