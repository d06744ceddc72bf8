package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eringen/multiblog"
	"github.com/eringen/multiblog/notion"
)

var pathsCmd = &cobra.Command{
	Use:   "paths",
	Short: "Print every static path of every tenant as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		if settings.Notion.Token == "" {
			return errors.New("notion token is required (notion.token or MULTIBLOG_NOTION_TOKEN)")
		}
		logger, err := newLogger(settings.Debug)
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		store, err := multiblog.NewStore(settings.Database.Driver, settings.Database.DSN)
		if err != nil {
			return err
		}
		defer store.Close()

		r := multiblog.NewResolver(store, notion.NewClient(settings.Notion.Token),
			multiblog.WithResolverLogger(logger),
			multiblog.WithFetchConcurrency(settings.FetchConcurrency),
		)
		paths, err := r.EnumerateStaticPaths(cmd.Context())
		if err != nil {
			return err
		}
		scheme, _ := cmd.Flags().GetString("scheme")
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(multiblog.PathURLs(paths, scheme, settings.RootDomain)); err != nil {
			return fmt.Errorf("write paths: %w", err)
		}
		return nil
	},
}

func init() {
	pathsCmd.Flags().String("scheme", "https", "URL scheme of the printed addresses")
	rootCmd.AddCommand(pathsCmd)
}
