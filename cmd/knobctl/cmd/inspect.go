package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/platformkit/knobstore/pkg/varlist"
)

// inspectCmd represents the inspect command
var inspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Inspect a variable-list file",
	Long: `Walk a variable-list file record by record, printing each record's
offset, namespace, name, attributes and size. Decoding stops at the
first corrupt record.

Example:
  knobctl inspect backup.vl`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		buf, err := os.ReadFile(args[0])
		if err != nil {
			fmt.Printf("Error reading file: %v\n", err)
			return
		}

		codec := varlist.NewCodec()
		offset := 0
		count := 0
		for offset < len(buf) {
			record, consumed, err := codec.DecodeRecord(buf[offset:])
			if err != nil {
				if errors.Is(err, varlist.ErrBufferTooSmall) {
					fmt.Printf("offset %d: truncated record (%d trailing bytes)\n", offset, len(buf)-offset)
				} else {
					fmt.Printf("offset %d: %v\n", offset, err)
				}
				return
			}
			fmt.Printf("offset %-8d %s/%s  attrs=0x%08x  %d bytes\n",
				offset, record.Namespace, record.Name, record.Attributes, len(record.Data))
			offset += consumed
			count++
		}
		fmt.Printf("%d record(s), %d bytes\n", count, len(buf))
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}
