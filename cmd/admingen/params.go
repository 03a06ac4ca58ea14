package main

import (
	"github.com/spf13/cobra"

	"github.com/matthewbaird/admingen/internal/config"
)

// params are the flags shared by every command. Flags that are set win over
// the config file and the environment.
type params struct {
	configFile   string
	model        string
	dbURL        string
	atlasCLI     bool
	projectDir   string
	prototypeDir string
	host         string
	port         string
}

func initGlobalFlags(cmd *cobra.Command, p *params) {
	cmd.Flags().StringVarP(&p.configFile, "config", "c", "", "config file (default "+config.DefaultFile+" when present)")
	cmd.Flags().StringVarP(&p.model, "model", "m", "", "model file (.cue, .json, .yaml) or ent schema directory")
	cmd.Flags().StringVar(&p.dbURL, "db-url", "", "read the schema from a database: sqlite://, postgres:// or mysql://")
	cmd.Flags().BoolVar(&p.atlasCLI, "atlas-cli", false, "inspect --db-url with the atlas binary")
	cmd.Flags().StringVarP(&p.projectDir, "project", "p", "", "project directory")
	cmd.Flags().StringVar(&p.prototypeDir, "prototype", "", "prebuilt admin app copied by create")
	cmd.Flags().StringVar(&p.host, "host", "", "API host written into api_root")
	cmd.Flags().StringVar(&p.port, "port", "", "API port written into api_root")
}

func (p *params) load(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(p.configFile)
	if err != nil {
		return cfg, err
	}
	flags := cmd.Flags()
	set := func(name string, dst *string, v string) {
		if flags.Changed(name) {
			*dst = v
		}
	}
	set("model", &cfg.Model, p.model)
	set("db-url", &cfg.DBURL, p.dbURL)
	set("project", &cfg.ProjectDir, p.projectDir)
	set("prototype", &cfg.PrototypeDir, p.prototypeDir)
	set("host", &cfg.Host, p.host)
	set("port", &cfg.Port, p.port)
	if flags.Changed("atlas-cli") {
		cfg.UseAtlasCLI = p.atlasCLI
	}
	if !flags.Changed("verbose") && !flags.Changed("trace") {
		cfg.ApplyLogLevel()
	}
	return cfg, cfg.Validate()
}
