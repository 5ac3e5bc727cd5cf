package cmd

import (
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// setCmd represents the set command
var setCmd = &cobra.Command{
	Use:   "set <name> <value>",
	Short: "Set a variable",
	Long: `Set a variable in the store. The value is hex-encoded bytes unless
--string is given.

Example:
  knobctl set --namespace d9a7c912-33f0-4b8e-9c01-5566778899aa BootTimeout 3c000000`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		raw, _ := cmd.Flags().GetString("namespace")
		attributes, _ := cmd.Flags().GetUint32("attributes")
		asString, _ := cmd.Flags().GetBool("string")

		namespace, err := uuid.Parse(raw)
		if err != nil {
			fmt.Printf("Error: invalid namespace GUID: %v\n", err)
			return
		}

		var data []byte
		if asString {
			data = []byte(args[1])
		} else {
			data, err = hex.DecodeString(args[1])
			if err != nil {
				fmt.Printf("Error: value is not hex (use --string for raw strings): %v\n", err)
				return
			}
		}

		// Get store from context
		store, ok := storeFromContext(cmd)
		if !ok {
			fmt.Printf("Error: store not found in context\n")
			return
		}

		if err := store.Set(namespace, args[0], attributes, data); err != nil {
			fmt.Printf("Error setting variable: %v\n", err)
			return
		}

		fmt.Printf("Successfully set '%s' (%d bytes)\n", args[0], len(data))
	},
}

func init() {
	rootCmd.AddCommand(setCmd)
	setCmd.Flags().StringP("namespace", "n", "", "Namespace GUID (required)")
	setCmd.Flags().Uint32("attributes", 0, "Variable attributes")
	setCmd.Flags().Bool("string", false, "Treat the value as a raw string")
	_ = setCmd.MarkFlagRequired("namespace")
}
