package cmd

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List variables",
	Long: `List all variables in the store, optionally filtered by namespace.

Example:
  knobctl list
  knobctl list --namespace d9a7c912-33f0-4b8e-9c01-5566778899aa`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		raw, _ := cmd.Flags().GetString("namespace")

		var filter *uuid.UUID
		if raw != "" {
			namespace, err := uuid.Parse(raw)
			if err != nil {
				fmt.Printf("Error: invalid namespace GUID: %v\n", err)
				return
			}
			filter = &namespace
		}

		// Get store from context
		store, ok := storeFromContext(cmd)
		if !ok {
			fmt.Printf("Error: store not found in context\n")
			return
		}

		keys, err := store.List()
		if err != nil {
			fmt.Printf("Error listing variables: %v\n", err)
			return
		}

		count := 0
		for _, key := range keys {
			if filter != nil && key.Namespace != *filter {
				continue
			}
			record, err := store.Get(key.Namespace, key.Name)
			if err != nil {
				continue
			}
			fmt.Printf("%s/%s  attrs=0x%08x  %d bytes\n",
				key.Namespace, key.Name, record.Attributes, len(record.Data))
			count++
		}
		fmt.Printf("%d variable(s)\n", count)
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().StringP("namespace", "n", "", "Namespace GUID filter")
}
