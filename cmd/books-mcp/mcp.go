package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/kitbuilder587/books-mcp/internal/config"
	"github.com/kitbuilder587/books-mcp/internal/mcpserver"
	"github.com/kitbuilder587/books-mcp/internal/metrics"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "run the MCP tool server (stdio by default)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		httpAddr, _ := cmd.Flags().GetString("http")
		if httpAddr == "" {
			httpAddr = cfg.MCP.HTTPAddr
		}

		// при stdio-транспорте stdout занят протоколом
		cfg.Log.ToStderr = httpAddr == ""

		logger, err := config.NewLogger(cfg.Log)
		if err != nil {
			return err
		}
		defer logger.Sync()

		m := metrics.New(prometheus.DefaultRegisterer)
		provider := newProvider(cfg, logger, m)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		srv := mcpserver.New(provider, logger, m)
		if httpAddr != "" {
			return srv.RunHTTP(ctx, httpAddr)
		}
		return srv.RunStdio(ctx)
	},
}

func init() {
	mcpCmd.Flags().String("http", "", "serve MCP over streamable HTTP on this address instead of stdio (overrides BOOKS_MCP_HTTP_ADDR)")
	rootCmd.AddCommand(mcpCmd)
}
