package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kitbuilder587/books-mcp/internal/books"
	"github.com/kitbuilder587/books-mcp/internal/books/openlibrary"
	"github.com/kitbuilder587/books-mcp/internal/config"
	"github.com/kitbuilder587/books-mcp/internal/metrics"
	"github.com/kitbuilder587/books-mcp/internal/version"
)

var rootCmd = &cobra.Command{
	Use:          "books-mcp",
	Short:        "OpenLibrary book search over HTTP and MCP",
	Long:         "books-mcp exposes OpenLibrary book and author search as a JSON HTTP API and as MCP tools for AI assistants.",
	Version:      version.Get(),
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "", "debug, info, warn or error (overrides LOG_LEVEL)")
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.Log.Level = lvl
	}
	return cfg, nil
}

func newProvider(cfg *config.Config, logger *zap.Logger, m *metrics.Metrics) books.Provider {
	return openlibrary.New(openlibrary.Config{
		BaseURL: cfg.OpenLibrary.BaseURL,
		Timeout: cfg.OpenLibrary.Timeout,
	}, logger, m)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
