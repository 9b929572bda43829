package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/docsearch/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP search server",
	Long: `Starts the docsearch HTTP server with ingestion (/api/ingest, /api/upload),
simple and agentic search (/api/query, /api/search) and a websocket search
endpoint (/api/ws). Documents passed with --file or --dir are indexed first.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("port") {
			cfg.Server.Port, _ = cmd.Flags().GetInt("port")
		}
		if cmd.Flags().Changed("allow-all-origins") {
			cfg.Server.AllowAllOrigins, _ = cmd.Flags().GetBool("allow-all-origins")
		}

		svc, err := buildService(cfg)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := ingestFromFlags(ctx, cmd, cfg, svc); err != nil {
			return err
		}

		srv := server.New(server.Config{
			Port:        cfg.Server.Port,
			AllowAll:    cfg.Server.AllowAllOrigins,
			MaxUploadMB: cfg.Server.MaxUploadMB,
		}, svc, nil)
		return srv.Start(ctx)
	},
}

func init() {
	serveCmd.Flags().Int("port", 8000, "port to listen on (overrides server.port)")
	serveCmd.Flags().Bool("allow-all-origins", false, "allow all CORS origins (dev mode)")
	addIngestFlags(serveCmd)
	rootCmd.AddCommand(serveCmd)
}
