/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/platformkit/knobstore/pkg/api"
	"github.com/platformkit/knobstore/pkg/knob"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start the knobstore REST API server.

The server exposes variable CRUD, snapshot export/import and knob
resolution over HTTP, protected by an API key.

Examples:
  knobctl serve --api-key=mysecretkey --port=8080
  knobctl serve --api-key=mysecretkey --knobfile=knobs.yaml`,
	Run: func(cmd *cobra.Command, args []string) {
		port, _ := cmd.Flags().GetInt("port")
		bind, _ := cmd.Flags().GetString("bind")
		apiKey, _ := cmd.Flags().GetString("api-key")
		dataDir, _ := cmd.Flags().GetString("data-dir")
		knobfile, _ := cmd.Flags().GetString("knobfile")

		if apiKey == "" {
			cmd.Println("Error: --api-key is required")
			return
		}

		// Get store from context
		store, ok := storeFromContext(cmd)
		if !ok {
			cmd.Println("Error: store not found in context")
			return
		}

		var resolver *knob.Resolver
		if knobfile != "" {
			table, err := knob.LoadTable(knobfile)
			if err != nil {
				cmd.Printf("Error loading knobfile: %v\n", err)
				return
			}
			resolver = knob.NewResolver(table, store)
		}

		// Start API server
		config := api.ServerConfig{
			Port:    port,
			Bind:    bind,
			APIKey:  apiKey,
			DataDir: dataDir,
		}

		if err := api.StartServer(store, resolver, config); err != nil {
			cmd.Printf("Error starting server: %v\n", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on")
	serveCmd.Flags().String("bind", "127.0.0.1", "Address to bind server to")
	serveCmd.Flags().String("api-key", "", "API key for authentication (required)")
	serveCmd.Flags().String("knobfile", "", "Path to a YAML knobfile for the /knobs endpoints")
	_ = serveCmd.MarkFlagRequired("api-key")
}
