package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/symgraphhq/symgraph/internal/engine"
	"github.com/symgraphhq/symgraph/internal/server"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the fact graph over MCP on stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, eng, log, err := setup()
			if err != nil {
				return err
			}
			defer log.Sync() //nolint:errcheck

			// Load an existing index if one is on disk, so queries work
			// without requiring a generate_index call first.
			if repoPath, err := filepath.Abs(cfg.Repo); err == nil {
				factsPath := filepath.Join(repoPath, cfg.Output.Dir, "facts.jsonl")
				if _, err := os.Stat(factsPath); err == nil {
					log.Info("loading existing index", zap.String("path", factsPath))
					if err := eng.Store().ReadJSONLFile(factsPath); err != nil {
						log.Warn("failed to load existing facts", zap.Error(err))
					} else {
						eng.Store().BuildGraph()
						eng.SetMeta(&engine.Meta{RepoPath: repoPath, FactCount: eng.Store().Count()})
						log.Info("loaded existing index", zap.Int("facts", eng.Store().Count()))
					}
				}
			}

			srv, err := server.New(eng, cfg, log)
			if err != nil {
				return fmt.Errorf("failed to create server: %w", err)
			}
			return srv.Run(cmd.Context())
		},
	}
}
