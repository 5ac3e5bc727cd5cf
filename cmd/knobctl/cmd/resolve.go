package cmd

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/platformkit/knobstore/pkg/knob"
)

// resolveCmd represents the resolve command
var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Resolve every knob in a knobfile",
	Long: `Load a knobfile, resolve every knob against the store and print the
resolved values with their sources. A knob whose stored value is
missing, malformed or rejected by validation resolves to its default.

Example:
  knobctl resolve --knobfile knobs.yaml`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		knobfile, _ := cmd.Flags().GetString("knobfile")

		table, err := knob.LoadTable(knobfile)
		if err != nil {
			fmt.Printf("Error loading knobfile: %v\n", err)
			return
		}

		// Get store from context
		store, ok := storeFromContext(cmd)
		if !ok {
			fmt.Printf("Error: store not found in context\n")
			return
		}

		resolver := knob.NewResolver(table, store)
		if err := resolver.ResolveAll(); err != nil {
			fmt.Printf("Error resolving knobs: %v\n", err)
			return
		}

		for id := knob.ID(0); int(id) < table.Len(); id++ {
			descriptor, _ := table.Descriptor(id)
			value, _ := resolver.Bytes(id)
			source, _ := resolver.Source(id)
			fmt.Printf("%-32s %-16s %s\n", descriptor.Name, source, hex.EncodeToString(value))
		}
	},
}

func init() {
	rootCmd.AddCommand(resolveCmd)
	resolveCmd.Flags().String("knobfile", "", "Path to the YAML knobfile (required)")
	_ = resolveCmd.MarkFlagRequired("knobfile")
}
