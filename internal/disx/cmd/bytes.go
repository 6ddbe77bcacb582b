package cmd

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"disx/internal/sweep"
)

var bytesCmd = &cobra.Command{
	Use:   "bytes <hex>...",
	Short: "Decode literal hex bytes from the command line",
	Long: `Bytes feeds literal hex input straight into the decoder and prints one
row per instruction. Whitespace between bytes is optional.`,
	Example: `
disx bytes 48 83 c0 01
disx bytes "b8 44 33 22 11" c3
  `,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		buf, err := parseHexArgs(args)
		if err != nil {
			return err
		}
		for _, l := range sweep.Scan(buf) {
			fmt.Println(l.String())
		}
		return nil
	},
}

// parseHexArgs joins the arguments and strips whitespace so byte groups
// can be pasted in any shape.
func parseHexArgs(args []string) ([]byte, error) {
	joined := strings.Join(args, "")
	joined = strings.Map(func(r rune) rune {
		if r == ' ' || r == '\t' {
			return -1
		}
		return r
	}, joined)
	buf, err := hex.DecodeString(joined)
	if err != nil {
		return nil, fmt.Errorf("bad hex input: %w", err)
	}
	if len(buf) == 0 {
		return nil, fmt.Errorf("no bytes to decode")
	}
	return buf, nil
}
