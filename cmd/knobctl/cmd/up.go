/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/platformkit/knobstore/pkg/api"
	"github.com/platformkit/knobstore/pkg/config"
	"github.com/platformkit/knobstore/pkg/knob"
)

// upCmd represents the up command
var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Bootstrap and start the knobstore server",
	Long: `Bootstrap knobstore by creating configuration and an API key if they
don't exist, then start the REST API server. This is the recommended
way to get knobstore running.

Examples:
  knobctl up
  knobctl up --data-dir ./mydata --port 9000
  knobctl up --config ./custom-config.yaml`,
	Run: func(cmd *cobra.Command, args []string) {
		dataDir, _ := cmd.Flags().GetString("data-dir")
		port, _ := cmd.Flags().GetInt("port")
		bind, _ := cmd.Flags().GetString("bind")
		configPath, _ := cmd.Flags().GetString("config")
		printKeys, _ := cmd.Flags().GetBool("print-keys")

		// Use default config path if not specified
		if configPath == "" {
			configPath = config.GetDefaultConfigPath()
		}

		var cfg *config.Config
		var err error

		// Check if config exists
		if config.ConfigExists(configPath) {
			// Load existing config
			cfg, err = config.LoadConfig(configPath)
			if err != nil {
				cmd.Printf("Error loading existing config: %v\n", err)
				os.Exit(1)
			}
			cmd.Printf("Loaded existing configuration from %s\n", configPath)
		} else {
			// Bootstrap new config
			cmd.Printf("First run detected. Bootstrapping knobstore...\n")

			cfg, err = config.BootstrapConfig(configPath, dataDir)
			if err != nil {
				cmd.Printf("Error bootstrapping config: %v\n", err)
				os.Exit(1)
			}

			cmd.Printf("Configuration created at %s\n", configPath)

			if printKeys {
				cmd.Printf("\nGenerated API key: %s\n", cfg.Security.APIKey)
				cmd.Printf("Store this key securely! It is also saved in %s\n", configPath)
			}
		}

		// Override config with command line flags if provided
		if dataDir != "" {
			cfg.DataDir = dataDir
		}
		if port != 8080 { // Only override if explicitly set
			cfg.Port = port
		}
		if bind != "127.0.0.1" { // Only override if explicitly set
			cfg.Bind = bind
		}

		// Get store from context (created by root command)
		store, ok := storeFromContext(cmd)
		if !ok {
			cmd.Printf("Error: store not found in context\n")
			os.Exit(1)
		}

		var resolver *knob.Resolver
		if cfg.Knobfile != "" {
			table, err := knob.LoadTable(cfg.Knobfile)
			if err != nil {
				cmd.Printf("Error loading knobfile: %v\n", err)
				os.Exit(1)
			}
			resolver = knob.NewResolver(table, store)
		}

		// Start the server
		cmd.Printf("Starting knobstore server on %s:%d\n", cfg.Bind, cfg.Port)
		cmd.Printf("Data directory: %s\n", cfg.DataDir)

		serverConfig := api.ServerConfig{
			Port:    cfg.Port,
			Bind:    cfg.Bind,
			APIKey:  cfg.Security.APIKey,
			DataDir: cfg.DataDir,
		}
		if err := api.StartServer(store, resolver, serverConfig); err != nil {
			cmd.Printf("Error starting server: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(upCmd)

	upCmd.Flags().IntP("port", "p", 8080, "Port to listen on")
	upCmd.Flags().String("bind", "127.0.0.1", "Address to bind server to")
	upCmd.Flags().Bool("print-keys", false, "Print the generated API key to console")
}
