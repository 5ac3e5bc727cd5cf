/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/platformkit/knobstore/pkg/config"
	"github.com/platformkit/knobstore/pkg/varstore"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "knobctl",
	Short: "knobstore - firmware-style configuration variables",
	Long: `knobstore is a variable store for firmware-style configuration
knobs, persisted as CRC-checked variable lists.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		dataDir, _ := cmd.Flags().GetString("data-dir")
		backend, _ := cmd.Flags().GetString("backend")
		configPath, _ := cmd.Flags().GetString("config")
		fsyncMS, _ := cmd.Flags().GetInt("fsync-interval-ms")

		// A config file supplies defaults; explicit flags win.
		if configPath != "" && config.ConfigExists(configPath) {
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("data-dir") && cfg.DataDir != "" {
				dataDir = cfg.DataDir
			}
			if !cmd.Flags().Changed("backend") {
				backend = cfg.Backend
			}
			if !cmd.Flags().Changed("fsync-interval-ms") {
				fsyncMS = cfg.FsyncIntervalMS
			}
		}

		if err := os.MkdirAll(dataDir, 0755); err != nil {
			return fmt.Errorf("failed to create data dir: %w", err)
		}
		store, err := openStore(backend, dataDir, time.Duration(fsyncMS)*time.Millisecond)
		if err != nil {
			return err
		}
		// Store in command context
		cmd.SetContext(context.WithValue(cmd.Context(), "store", store))
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if store, ok := cmd.Context().Value("store").(varstore.Store); ok {
			return store.Close()
		}
		return nil
	},
}

// openStore opens the configured store backend.
func openStore(backend, dataDir string, fsyncInterval time.Duration) (varstore.Store, error) {
	switch backend {
	case "file":
		store, err := varstore.NewFileStore(varstore.FileStoreConfig{
			DataDir:       dataDir,
			FsyncInterval: fsyncInterval,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create store: %w", err)
		}
		recovery, err := store.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open store: %w", err)
		}
		if recovery.BytesTruncated > 0 {
			fmt.Printf("Recovered from corruption: %d bytes truncated\n", recovery.BytesTruncated)
		}
		return store, nil
	case "pebble":
		store, err := varstore.NewPebbleStore(varstore.PebbleStoreConfig{Path: dataDir})
		if err != nil {
			return nil, fmt.Errorf("failed to open store: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown backend %q (want file or pebble)", backend)
	}
}

// storeFromContext fetches the store the root command opened.
func storeFromContext(cmd *cobra.Command) (varstore.Store, bool) {
	store, ok := cmd.Context().Value("store").(varstore.Store)
	return store, ok
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	// Global data directory flag
	rootCmd.PersistentFlags().StringP("data-dir", "d", "./data", "Data directory for the store")
	rootCmd.PersistentFlags().String("backend", "file", "Store backend (file or pebble)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file supplying defaults")
	rootCmd.PersistentFlags().Int("fsync-interval-ms", 0, "File backend fsync interval (0 = every write)")
}
