package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/andreiashu/coord2country/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve lookups over HTTP",
	Long: `Serve lookups over HTTP until interrupted.

  GET /v1/country?lat=50.1&lon=10.2
  GET /v1/country?geohash=u0yjjd6
  GET /v1/country/qid?lat=50.1&lon=10.2
  GET /healthz
  GET /metrics`,
	Args: cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		loc, err := loadLocator()
		if err != nil {
			return err
		}
		if os.Getenv("GIN_MODE") == "" {
			gin.SetMode(gin.ReleaseMode)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return server.New(loc, appLog).Run(ctx, serveAddr)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "localhost:8080", "listen address")
	rootCmd.AddCommand(serveCmd)
}
