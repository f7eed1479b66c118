package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/spektr-org/skillscope/logger"
	"github.com/spektr-org/skillscope/presenter"
	"github.com/spektr-org/skillscope/server"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the report API server",
		Long: `Start an HTTP server that accepts assessment spreadsheet uploads and computes
report views over them.

  POST   /api/datasets                         upload (multipart field "file")
  GET    /api/datasets/{id}/options?domain=    filter values
  GET    /api/datasets/{id}/views/{view}       view as JSON
  GET    /api/datasets/{id}/views/{view}.csv   view as CSV
  DELETE /api/datasets/{id}                    forget an upload
  GET    /api/scales                           level scales

Views accept the domain, competency, collaborator, department and title
query parameters.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runServe(cmd)
		},
	}

	cmd.Flags().String("host", "", "Host to bind the server to (default localhost)")
	cmd.Flags().Int("port", 0, "Port to bind the server to (default 8080)")
	_ = a.v.BindPFlag("server.host", cmd.Flags().Lookup("host"))
	_ = a.v.BindPFlag("server.port", cmd.Flags().Lookup("port"))

	return cmd
}

// serverConfig maps the effective configuration onto the API server.
func (a *app) serverConfig() *server.ServerConfig {
	return &server.ServerConfig{
		Host:             a.cfg.Server.Host,
		Port:             a.cfg.Server.Port,
		MaxDatasets:      a.cfg.Server.MaxDatasets,
		MaxUploadBytes:   a.cfg.Server.MaxUploadBytes,
		Schema:           a.schema,
		LinguisticDomain: a.cfg.LinguisticDomain,
		EngineOptions:    a.cfg.EngineOptions(),
	}
}

func (a *app) runServe(cmd *cobra.Command) error {
	srv, err := server.NewServer(a.serverConfig())
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if a.cfg.Server.Port < 1024 {
		logger.G(ctx).WithField("port", a.cfg.Server.Port).Warn("using privileged port (< 1024) may require elevated permissions")
	}

	presenter.Success(fmt.Sprintf("API server starting on http://%s:%d", a.cfg.Server.Host, a.cfg.Server.Port))
	presenter.Info("Press Ctrl+C to stop the server")

	if err := srv.Start(ctx); err != nil {
		return err
	}

	presenter.Info("API server stopped")
	return nil
}
