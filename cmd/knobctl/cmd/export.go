package cmd

import (
	"fmt"
	"os"

	"github.com/segmentio/ksuid"
	"github.com/spf13/cobra"

	"github.com/platformkit/knobstore/pkg/varstore"
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a snapshot of every variable",
	Long: `Export every live variable as a binary variable list. The snapshot
can be imported into another store or loaded read-only with inspect.

Example:
  knobctl export --output backup.vl`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		output, _ := cmd.Flags().GetString("output")

		// Get store from context
		store, ok := storeFromContext(cmd)
		if !ok {
			fmt.Printf("Error: store not found in context\n")
			return
		}

		buf, err := varstore.Snapshot(store)
		if err != nil {
			fmt.Printf("Error exporting snapshot: %v\n", err)
			return
		}

		if output == "" || output == "-" {
			_, _ = os.Stdout.Write(buf)
			return
		}
		if err := os.WriteFile(output, buf, 0644); err != nil {
			fmt.Printf("Error writing snapshot: %v\n", err)
			return
		}
		fmt.Printf("Exported %d bytes to %s\n", len(buf), output)
		fmt.Printf("Snapshot ID: %s\n", ksuid.New().String())
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringP("output", "o", "", "Output file (default: stdout)")
}
