// Package cmd implements the bookster command line.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/opd-ai/bookster/config"
	"github.com/opd-ai/bookster/logger"
)

var (
	cfgFile string
	cfg     *config.Config
)

var RootCmd = &cobra.Command{
	Use:   "bookster",
	Short: "Draft books with an LLM and export them",
	Long: `bookster drafts chapter outlines and chapter text with Claude and
exports finished books as PDF, EPUB, DOCX, Markdown or HTML.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		logger.InitWriter(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
		return nil
	},
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default "+config.DefaultPath+")")
}
