package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/aivis-cli/internal/audit"
	"github.com/sells-group/aivis-cli/internal/config"
	"github.com/sells-group/aivis-cli/internal/crawler"
	"github.com/sells-group/aivis-cli/internal/enhance"
	"github.com/sells-group/aivis-cli/internal/store"
	"github.com/sells-group/aivis-cli/pkg/anthropic"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "aivis",
	Short: "AI search visibility auditor",
	Long:  "Audits a website's visibility to AI search crawlers across eight weighted dimensions and generates remediation artifacts.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

// buildOrchestrator wires the pipeline from config. AI enhancement is only
// enabled when an API key is configured.
func buildOrchestrator() *audit.Orchestrator {
	var enhancer *enhance.Enhancer
	if cfg.Anthropic.Key != "" {
		client := anthropic.NewClient(cfg.Anthropic.Key)
		enhancer = enhance.New(enhance.NewAnthropicGenerator(client, cfg.Anthropic))
	} else {
		zap.L().Info("no anthropic key configured, running in basic mode")
	}

	return audit.New(
		crawler.New(cfg.Crawl),
		enhancer,
		store.NewMemory(),
		store.NewMemory(),
		cfg.Audit,
		cfg.Store.TTL(),
	)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
