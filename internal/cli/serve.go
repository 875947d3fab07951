package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dshills/msareview/internal/server"
)

var flagAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the web review form",
	Long:  "Serve a web page with one section field and one draft upload. Whole-document reviews stream progress over a websocket.",
	RunE: func(cmd *cobra.Command, args []string) error {
		overrides := buildOverrides()
		if flagAddr != "" {
			overrides["addr"] = flagAddr
		}
		cfg, ok := loadConfigWith(overrides)
		if !ok {
			return nil
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, ok := newApp(ctx, cfg)
		if !ok {
			return nil
		}
		defer a.Close()

		srv, err := server.New(a, server.Options{Logger: logger, MaxUploadBytes: cfg.Server.MaxUploadBytes})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}

		fmt.Fprintf(os.Stderr, "Serving on %s (playbook: %s, %d chunks)\n", cfg.Server.Addr, a.Playbook.Source, len(a.Chunks))
		if err := srv.ListenAndServe(ctx, cfg.Server.Addr); err != nil {
			logger.Error("server stopped", zap.Error(err))
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
		}
		return nil
	},
}

func init() {
	addProviderFlags(serveCmd)
	serveCmd.Flags().StringVar(&flagAddr, "addr", "", "Listen address (default :8501)")
}
