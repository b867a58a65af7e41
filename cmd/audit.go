package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/aivis-cli/internal/model"
)

var auditOutDir string

var auditCmd = &cobra.Command{
	Use:   "audit <url>",
	Short: "Audit a site's AI search visibility",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		orch := buildOrchestrator()

		result, err := orch.RunURL(cmd.Context(), args[0], func(ev model.ProgressEvent) {
			switch ev.Type {
			case "info":
				fmt.Printf("site: %s (%s), %d pages\n", ev.BaseURL, ev.SiteType, ev.PagesFound)
			case "progress":
				if ev.Status == model.StatusComplete && ev.Score != nil {
					fmt.Printf("  %-10s %3d/100\n", ev.Dimension, *ev.Score)
				}
			}
		})
		if err != nil {
			return eris.Wrap(err, "audit")
		}

		fmt.Printf("\noverall: %d/100 (%s), mode %s\n", result.OverallScore, result.Grade, result.AIMode)
		for i, p := range result.Priorities {
			fmt.Printf("%d. %s\n", i+1, p)
		}

		if auditOutDir != "" {
			if err := writeFiles(auditOutDir, result.GeneratedFiles); err != nil {
				return err
			}
			fmt.Printf("\nwrote %d files to %s\n", len(result.GeneratedFiles), auditOutDir)
		}

		return nil
	},
}

func writeFiles(dir string, files map[string]string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return eris.Wrap(err, "create output dir")
	}
	for name, content := range files {
		path := filepath.Join(dir, filepath.Base(name))
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return eris.Wrap(err, "write "+name)
		}
		zap.L().Debug("wrote artifact", zap.String("path", path))
	}
	return nil
}

func init() {
	auditCmd.Flags().StringVarP(&auditOutDir, "out", "o", "", "directory to write generated artifacts")
	rootCmd.AddCommand(auditCmd)
}
