package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/pagecraft/internal/config"
	"github.com/aretw0/pagecraft/internal/logging"
)

var (
	cfg    config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "pagecraft",
	Short: "pagecraft edits page schemas of a drag-and-drop page builder",
	Long: `pagecraft serves the editing core of a visual page builder: component
trees with typed props, undo/redo history and pluggable page storage.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		loaded, err := config.Load(path)
		if err != nil {
			return err
		}
		applyFlags(cmd, &loaded)
		if err := loaded.Validate(); err != nil {
			return err
		}
		level, _ := logging.ParseLevel(loaded.LogLevel)
		cfg = loaded
		logger = logging.New(level)
		slog.SetDefault(logger)
		return nil
	},
}

// applyFlags lets explicit flags override the config file.
func applyFlags(cmd *cobra.Command, c *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		c.LogLevel, _ = flags.GetString("log-level")
	}
	if flags.Changed("store") {
		c.Store.Backend, _ = flags.GetString("store")
	}
	if flags.Changed("store-path") {
		c.Store.Path, _ = flags.GetString("store-path")
	}
	if flags.Changed("redis-addr") {
		c.Store.RedisAddr, _ = flags.GetString("redis-addr")
	}
	if flags.Changed("prototypes") {
		c.Prototypes, _ = flags.GetStringSlice("prototypes")
	}
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Config file (default ./pagecraft.toml when present)")
	flags.String("log-level", "info", "Log level: debug, info, warn or error")
	flags.String("store", config.BackendFile, "Page store: memory, file, loam, redis or sqlite")
	flags.String("store-path", ".pagecraft/pages", "Directory of the file and loam stores, or the SQLite file")
	flags.String("redis-addr", "", "Redis address for the redis store")
	flags.StringSlice("prototypes", nil, "YAML prototype bundles to register")
}
