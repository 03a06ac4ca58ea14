package main

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/untillpro/goutils/cobrau"
)

//go:embed version
var version string

func main() {
	if err := execRootCmd(os.Args, version); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func execRootCmd(args []string, ver string) error {
	rootCmd := cobrau.PrepareRootCmd(
		"admingen",
		"generate admin app metadata (admin.yaml) from a resource model",
		args,
		ver,
		newGenerateCmd(),
		newCreateCmd(),
		newRebuildCmd(),
		newWatchCmd(),
		newValidateCmd(),
	)
	return cobrau.ExecCommandAndCatchInterrupt(rootCmd)
}
