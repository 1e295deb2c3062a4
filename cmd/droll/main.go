// Package main is the droll command line: the dice service server plus
// commands that validate, roll and store dice chains
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Dizabanik/droll/cmd/droll/client"
)

var (
	cfgFile  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "droll",
	Short: "Dice chain engine",
	Long: `droll rolls dice chains: ordered steps whose later rolls can depend on
earlier ones, resolved against a character's stats.`,
	SilenceUsage: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		return initConfig()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default $HOME/.droll.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level for CLI commands")

	rootCmd.AddCommand(serverCmd)
	rootCmd.AddCommand(rollCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(importWeaponCmd)
	rootCmd.AddCommand(itemCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(client.ClientCmd)
}

// initConfig reads ~/.droll.yaml (or --config) and DROLL_* environment
// variables into viper. A missing default config file is not an error.
func initConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.SetConfigName(".droll")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("droll")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); cfgFile != "" || !notFound {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLevel(logLevel),
	})))
	if used := viper.ConfigFileUsed(); used != "" {
		slog.Debug("Loaded config", "file", filepath.Clean(used))
	}
	return nil
}

func parseLevel(level string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}
	return l
}
