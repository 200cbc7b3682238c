package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/umlgen/internal/config"
	"github.com/abhisek/umlgen/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "umlgen",
	Short: "Generate and score UML modeling exercises with LLMs",
	Long: "umlgen generates UML class-diagram exercises for software engineering students " +
		"through a choice of LLM providers and optionally scores them against a fixed rubric.",
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "SQLite path or postgres:// URL (overrides DATABASE_URL)")
	rootCmd.PersistentFlags().String("config", "", "Path to umlgen.yaml (default ./umlgen.yaml or the user config dir)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(modelsCmd)
	rootCmd.AddCommand(requestsCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database DSN using --db flag (highest priority),
// then the configured database URL, then DATABASE_URL or the default XDG path.
func resolveDBPath(cmd *cobra.Command, configured string) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if configured != "" {
		return configured, store.EnsureDir(configured)
	}
	return store.DefaultDBPath()
}

// openStore loads configuration and opens the selected database.
func openStore(cmd *cobra.Command) (*store.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return openStoreFor(cmd, cfg)
}

func openStoreFor(cmd *cobra.Command, cfg config.Config) (*store.Store, error) {
	dsn, err := resolveDBPath(cmd, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return s, nil
}
