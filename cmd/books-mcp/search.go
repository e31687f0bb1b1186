package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/kitbuilder587/books-mcp/internal/books"
	"github.com/kitbuilder587/books-mcp/internal/config"
	"github.com/kitbuilder587/books-mcp/internal/metrics"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "search once and print the formatted result",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		// stdout отдан результату
		cfg.Log.ToStderr = true

		logger, err := config.NewLogger(cfg.Log)
		if err != nil {
			return err
		}
		defer logger.Sync()

		provider := newProvider(cfg, logger, metrics.New(prometheus.DefaultRegisterer))
		query := strings.Join(args, " ")

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		authors, _ := cmd.Flags().GetBool("authors")
		if authors {
			result, err := provider.SearchAuthors(ctx, query)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), books.FormatAuthorResult(result))
			return nil
		}

		result, err := provider.SearchBooks(ctx, query)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), books.FormatSearchResult(result))
		return nil
	},
}

func init() {
	searchCmd.Flags().Bool("authors", false, "search authors instead of books")
	rootCmd.AddCommand(searchCmd)
}
