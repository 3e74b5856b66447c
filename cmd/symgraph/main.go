package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgPath string
	debug   bool
)

func main() {
	root := &cobra.Command{
		Use:   "symgraph",
		Short: "Extract a deduplicated fact graph of declarations from source code",
		Long: `symgraph parses a repository and extracts a content-addressed graph of
declaration facts: containers, members, functions, typedefs, constants,
their definitions, cross-references, and source locations.

Facts are written as JSON artifacts and can be served to code-navigation
tooling over MCP.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", "symgraph.yaml", "path to the configuration file")
	root.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	root.AddCommand(newIndexCmd())
	root.AddCommand(newServeCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
