package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/eringen/multiblog"
)

// version is set at build time via ldflags.
var version = "dev"

var cfgFile string

// settings is the decoded configuration, filled before every command runs.
var settings config

type config struct {
	Addr       string `mapstructure:"addr"`
	RootDomain string `mapstructure:"root_domain"`
	// Revalidate is the staleness window; a negative value disables caching.
	Revalidate time.Duration `mapstructure:"revalidate"`
	// FetchConcurrency caps concurrent tenant fetches during enumeration.
	FetchConcurrency int    `mapstructure:"fetch_concurrency"`
	APIRateLimit     int    `mapstructure:"api_rate_limit"`
	WarmSchedule     string `mapstructure:"warm_schedule"`
	Debug            bool   `mapstructure:"debug"`
	Database         struct {
		Driver string `mapstructure:"driver"`
		DSN    string `mapstructure:"dsn"`
	} `mapstructure:"database"`
	Notion struct {
		Token string `mapstructure:"token"`
	} `mapstructure:"notion"`
	Redis struct {
		Addr     string `mapstructure:"addr"`
		Password string `mapstructure:"password"`
		DB       int    `mapstructure:"db"`
	} `mapstructure:"redis"`
}

func (c config) siteConfig() multiblog.SiteConfig {
	return multiblog.SiteConfig{
		RootDomain:         c.RootDomain,
		Addr:               c.Addr,
		DatabaseDriver:     c.Database.Driver,
		DatabaseDSN:        c.Database.DSN,
		RevalidateInterval: c.Revalidate,
		FetchConcurrency:   c.FetchConcurrency,
		APIRateLimit:       c.APIRateLimit,
		WarmSchedule:       c.WarmSchedule,
	}
}

var rootCmd = &cobra.Command{
	Use:   "multiblog",
	Short: "multiblog - many Notion-backed blogs from one server",
	Long: `multiblog serves one blog per tenant. Each tenant answers to a subdomain
of the root domain and, optionally, to a custom domain; its posts live in a
Notion database.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initializeConfig(cmd)
	},
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./multiblog.yaml)")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().String("dsn", "", "tenant database DSN")
	rootCmd.PersistentFlags().String("driver", "", `tenant database driver ("sqlite" or "pgx")`)
}

func initializeConfig(cmd *cobra.Command) error {
	// A .env file in the working directory is optional.
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()

	v.SetDefault("addr", ":3000")
	v.SetDefault("root_domain", "localhost")
	v.SetDefault("revalidate", multiblog.DefaultRevalidate)
	v.SetDefault("fetch_concurrency", 8)
	v.SetDefault("api_rate_limit", 10)
	v.SetDefault("database.driver", multiblog.DriverSQLite)
	v.SetDefault("database.dsn", "data/tenants.db")
	v.SetDefault("notion.token", "")
	v.SetDefault("warm_schedule", "")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("debug", false)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("multiblog")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("MULTIBLOG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || cfgFile != "" {
			return fmt.Errorf("read config: %w", err)
		}
	}

	flags := cmd.Flags()
	for key, flag := range map[string]string{
		"debug":           "debug",
		"database.dsn":    "dsn",
		"database.driver": "driver",
		"addr":            "addr",
		"root_domain":     "root-domain",
		"warm_schedule":   "warm-schedule",
		"redis.addr":      "redis",
	} {
		if f := flags.Lookup(flag); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return err
			}
		}
	}

	if err := v.Unmarshal(&settings); err != nil {
		return fmt.Errorf("decode config: %w", err)
	}
	return nil
}

func newLogger(debug bool) (*zap.Logger, error) {
	if !debug {
		return zap.NewProduction()
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	cfg.Sampling = nil
	return cfg.Build(zap.AddStacktrace(zapcore.WarnLevel))
}
