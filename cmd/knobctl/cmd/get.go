package cmd

import (
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// getCmd represents the get command
var getCmd = &cobra.Command{
	Use:   "get <name>",
	Short: "Get a variable's value",
	Long: `Get a variable's value from the store. The value is printed as hex
unless --string is given.

Example:
  knobctl get --namespace d9a7c912-33f0-4b8e-9c01-5566778899aa BootTimeout`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		raw, _ := cmd.Flags().GetString("namespace")
		asString, _ := cmd.Flags().GetBool("string")

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

		record, err := store.Get(namespace, args[0])
		if err != nil {
			fmt.Printf("Error getting variable: %v\n", err)
			return
		}

		if asString {
			fmt.Printf("%s\n", string(record.Data))
		} else {
			fmt.Printf("%s\n", hex.EncodeToString(record.Data))
		}
	},
}

func init() {
	rootCmd.AddCommand(getCmd)
	getCmd.Flags().StringP("namespace", "n", "", "Namespace GUID (required)")
	getCmd.Flags().Bool("string", false, "Print the value as a raw string")
	_ = getCmd.MarkFlagRequired("namespace")
}
