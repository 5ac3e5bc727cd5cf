package cmd

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// deleteCmd represents the delete command
var deleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a variable",
	Long: `Delete a variable from the store.

Example:
  knobctl delete --namespace d9a7c912-33f0-4b8e-9c01-5566778899aa BootTimeout`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		raw, _ := cmd.Flags().GetString("namespace")

		namespace, err := uuid.Parse(raw)
		if err != nil {
			fmt.Printf("Error: invalid namespace GUID: %v\n", err)
			return
		}

		// Get store from context
		store, ok := storeFromContext(cmd)
		if !ok {
			fmt.Printf("Error: store not found in context\n")
			return
		}

		if err := store.Delete(namespace, args[0]); err != nil {
			fmt.Printf("Error deleting variable: %v\n", err)
			return
		}

		fmt.Printf("Successfully deleted '%s'\n", args[0])
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
	deleteCmd.Flags().StringP("namespace", "n", "", "Namespace GUID (required)")
	_ = deleteCmd.MarkFlagRequired("namespace")
}
