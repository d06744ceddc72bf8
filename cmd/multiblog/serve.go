package main

import (
	"errors"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/eringen/multiblog"
	"github.com/eringen/multiblog/notion"
	"github.com/eringen/multiblog/rediscache"
	"github.com/eringen/multiblog/views"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve every tenant's blog",
	RunE: func(cmd *cobra.Command, args []string) error {
		if settings.Notion.Token == "" {
			return errors.New("notion token is required (notion.token or MULTIBLOG_NOTION_TOKEN)")
		}
		logger, err := newLogger(settings.Debug)
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		opts := []multiblog.Option{
			multiblog.WithLogger(logger),
			multiblog.WithContentSource(notion.NewClient(settings.Notion.Token)),
		}
		if settings.Redis.Addr != "" {
			shared, err := openSharedCache()
			if err != nil {
				return err
			}
			defer shared.Close()
			opts = append(opts, multiblog.WithSharedCache(shared))
			logger.Info("shared post cache enabled", zap.String("redis", settings.Redis.Addr))
		}

		app := multiblog.New(settings.siteConfig(),
			views.Funcs(views.Site{
				Name:    "multiblog",
				RootURL: "//" + settings.RootDomain + "/",
			}),
			opts...,
		)
		defer func() {
			if err := app.Close(); err != nil {
				logger.Warn("close", zap.Error(err))
			}
		}()
		return app.Start()
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default :3000)")
	serveCmd.Flags().String("root-domain", "", "domain whose subdomains are tenant slugs")
	serveCmd.Flags().String("warm-schedule", "", `cron spec for refetching every tenant, e.g. "@every 1m"`)
	serveCmd.Flags().String("redis", "", "Redis address of the shared post cache")
	rootCmd.AddCommand(serveCmd)
}

func openSharedCache() (*rediscache.Cache, error) {
	return rediscache.New(rediscache.Config{
		Address:  settings.Redis.Addr,
		Password: settings.Redis.Password,
		DB:       settings.Redis.DB,
	})
}
