/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/platformkit/knobstore/pkg/config"
	"github.com/platformkit/knobstore/pkg/varstore"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize knobstore for local development",
	Long: `Initialize knobstore by creating a configuration file with a
generated API key, and optionally seed the store from a snapshot.

Examples:
  knobctl init --data-dir=./data
  knobctl init --data-dir=./data --seed factory-defaults.vl`,
	Run: func(cmd *cobra.Command, args []string) {
		dataDir, _ := cmd.Flags().GetString("data-dir")
		configPath, _ := cmd.Flags().GetString("config")
		seed, _ := cmd.Flags().GetString("seed")
		force, _ := cmd.Flags().GetBool("force")

		if configPath == "" {
			configPath = config.GetDefaultConfigPath()
		}

		if config.ConfigExists(configPath) && !force {
			cmd.Printf("Already initialized. Use --force to overwrite %s\n", configPath)
			return
		}

		cmd.Printf("Initializing knobstore...\n")
		cmd.Printf("Data directory: %s\n", dataDir)

		cfg, err := config.BootstrapConfig(configPath, dataDir)
		if err != nil {
			cmd.Printf("Error bootstrapping config: %v\n", err)
			os.Exit(1)
		}

		if seed != "" {
			if err := seedStoreFromSnapshot(cmd, seed); err != nil {
				cmd.Printf("Error seeding store: %v\n", err)
				os.Exit(1)
			}
			cmd.Printf("Seeded store from %s\n", seed)
		}

		cmd.Printf("Configuration created at %s\n", configPath)
		cmd.Printf("API key: %s\n", cfg.Security.APIKey)
		cmd.Printf("\nYou can now start the server with:\n")
		cmd.Printf("  knobctl serve --api-key=%s --data-dir=%s\n", cfg.Security.APIKey, dataDir)
	},
}

// seedStoreFromSnapshot applies a snapshot file to the store the root
// command opened.
func seedStoreFromSnapshot(cmd *cobra.Command, path string) error {
	buf, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read snapshot: %w", err)
	}
	store, ok := storeFromContext(cmd)
	if !ok {
		return fmt.Errorf("store not found in context")
	}
	return varstore.Apply(store, buf)
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().String("seed", "", "Snapshot file to seed the store from")
	initCmd.Flags().Bool("force", false, "Overwrite an existing configuration")
}
