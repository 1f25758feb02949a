package cmd

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/opd-ai/bookster/bookcompiler"
	"github.com/opd-ai/bookster/srv"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long:  "Run the chapter generation, export and prompt admin HTTP API until interrupted",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntP("port", "p", 0, "listen port (overrides server.port)")
	RootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if port, _ := cmd.Flags().GetInt("port"); port > 0 {
		cfg.Server.Port = port
	}

	prompts, closePrompts, err := newPromptStore(ctx, cfg.Prompts)
	if err != nil {
		return err
	}
	defer closePrompts()

	gen, err := newGenerator(cfg, prompts)
	if err != nil {
		return err
	}
	compiler := newCompiler(cfg.Export)
	if _, err := bookcompiler.NewChromePDF(cfg.Export.BrowserPath, 0).FindBrowser(); err != nil {
		slog.Warn("no headless browser found, pdf exports will fall back to printable html", "error", err)
	}

	server := srv.NewServer(cfg.Server, gen, compiler, prompts, cfg.Export.IndexTTL)
	return srv.Run(ctx, cfg.Server, server)
}
