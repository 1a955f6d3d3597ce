// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the qm-fetch CLI, which caches
// Quark Matter conference exports from Indico.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/qm-fetch/internal/logging"
	"github.com/pdiddy/qm-fetch/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds credentials loaded from .secrets/ at startup.
var loadedSecrets secrets.Secrets

var rootCmd = &cobra.Command{
	Use:   "qm-fetch",
	Short: "Cache Quark Matter conference metadata from Indico",
	Long: `qm-fetch downloads the Indico event export of each Quark Matter
conference listed in a conference list and stores it as
data/QM<year>_data.json with a small provenance record attached.
Conferences that already have a file are skipped.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := logging.Init(viper.GetString("log_level"), viper.GetString("log_format")); err != nil {
			return err
		}
		if f := viper.ConfigFileUsed(); f != "" {
			zap.L().Info("using config file", zap.String("path", f))
		}

		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			zap.L().Info("loaded secrets", zap.Strings("keys", s.Keys()))
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./qm-fetch.yaml or ~/.config/qm-fetch/qm-fetch.yaml)")
	pf.String("data-dir", "data", "directory holding QM<year>_data.json files")
	pf.String("log-level", "warn", "log level: debug, info, warn, error")
	pf.String("log-format", "console", "log format: console or json")

	viper.BindPFlag("data_dir", pf.Lookup("data-dir"))
	viper.BindPFlag("log_level", pf.Lookup("log-level"))
	viper.BindPFlag("log_format", pf.Lookup("log-format"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("qm-fetch")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "qm-fetch"))
		}
	}

	viper.SetEnvPrefix("QM_FETCH")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintln(os.Stderr, "warning: reading config:", err)
		}
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
