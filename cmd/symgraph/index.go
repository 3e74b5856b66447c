package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/symgraphhq/symgraph/internal/config"
	"github.com/symgraphhq/symgraph/internal/engine"
	"github.com/symgraphhq/symgraph/internal/frontends/tsfrontend"
	"github.com/symgraphhq/symgraph/internal/logger"
)

// setup loads the configuration, builds the logger, and wires an engine
// with every front end registered.
func setup() (*config.Config, *engine.Engine, *zap.Logger, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v, using defaults\n", err)
		cfg = config.Default()
	}
	if debug {
		cfg.Debug = true
	}

	log := logger.New(cfg.Debug)
	eng := engine.New(cfg, log)
	eng.RegisterFrontEnd(tsfrontend.New(log))

	return cfg, eng, log, nil
}

func newIndexCmd() *cobra.Command {
	var repoPath string

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Index a repository and write the fact graph artifacts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, eng, log, err := setup()
			if err != nil {
				return err
			}
			defer log.Sync() //nolint:errcheck

			if repoPath == "" {
				repoPath = cfg.Repo
			}
			absRepo, err := filepath.Abs(repoPath)
			if err != nil {
				return fmt.Errorf("failed to resolve repo path: %w", err)
			}

			meta, err := eng.GenerateIndex(cmd.Context(), absRepo)
			if err != nil {
				return fmt.Errorf("index generation failed: %w", err)
			}
			if err := eng.WriteArtifacts(absRepo); err != nil {
				return fmt.Errorf("failed to write artifacts: %w", err)
			}

			fmt.Fprintf(os.Stderr, "\nIndex complete:\n")
			fmt.Fprintf(os.Stderr, "  Repository:  %s\n", meta.RepoPath)
			fmt.Fprintf(os.Stderr, "  Facts:       %d\n", meta.FactCount)
			fmt.Fprintf(os.Stderr, "  Front ends:  %v\n", meta.FrontEnds)
			fmt.Fprintf(os.Stderr, "  Duration:    %s\n", meta.Duration)
			fmt.Fprintf(os.Stderr, "  Output:      %s\n", filepath.Join(absRepo, cfg.Output.Dir))
			return nil
		},
	}

	cmd.Flags().StringVarP(&repoPath, "repo", "r", "", "repository to index (defaults to the configured repo path)")
	return cmd
}
