package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/platformkit/knobstore/pkg/varstore"
)

// importCmd represents the import command
var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a snapshot into the store",
	Long: `Apply a binary variable list to the store. The whole list is
validated before the first write; a corrupt list changes nothing.

Example:
  knobctl import backup.vl`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		buf, err := os.ReadFile(args[0])
		if err != nil {
			fmt.Printf("Error reading snapshot: %v\n", err)
			return
		}

		// Get store from context
		store, ok := storeFromContext(cmd)
		if !ok {
			fmt.Printf("Error: store not found in context\n")
			return
		}

		if err := varstore.Apply(store, buf); err != nil {
			fmt.Printf("Error importing snapshot: %v\n", err)
			return
		}

		fmt.Printf("Imported snapshot from %s\n", args[0])
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}
