package cmd

import (
	"fmt"
	"log/slog"
	pathpkg "path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/arch/x86/x86asm"

	"disx/internal/elfx"
	"disx/internal/sweep"
	"disx/internal/ui/colorize"
)

var dumpCmd = &cobra.Command{
	Use:   "dump <file>",
	Short: "Print a linear-sweep listing of the text section",
	Long: `Dump disassembles the text section of an x86-64 ELF binary from top to
bottom and prints one listing row per instruction. Bytes the decoder does
not understand come out as one-byte db placeholders.`,
	Example: `
# Plain listing
disx dump /path/to/binary

# Cross-check instruction lengths against the x86asm reference decoder
disx dump --check /path/to/binary
  `,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		check, _ := cmd.Flags().GetBool("check")
		path, err := pathpkg.Abs(args[0])
		if err != nil {
			return fmt.Errorf("resolve path: %w", err)
		}
		return runListing(path, check)
	},
}

func init() {
	dumpCmd.Flags().Bool("check", false, "Cross-check decoded lengths against golang.org/x/arch")
}

// runListing sweeps the text section and prints it. With check set, every
// decoded instruction is re-decoded with the x86asm reference and length
// disagreements are tallied.
func runListing(path string, check bool) error {
	img, err := elfx.Open(path)
	if err != nil {
		return err
	}
	defer img.Close()

	text, ok := img.TextBytes()
	if !ok {
		return fmt.Errorf("no text section in %s", path)
	}

	lines := sweep.Scan(text)
	var placeholders, mismatches int
	for _, l := range lines {
		if l.Err != nil {
			placeholders++
		} else if check {
			ref, refErr := x86asm.Decode(text[l.Offset:], 64)
			if refErr == nil && ref.Len != l.Len {
				mismatches++
				slog.Warn("length disagreement with reference decoder",
					"offset", fmt.Sprintf("%#x", l.Offset),
					"got", l.Len, "want", ref.Len, "text", l.Text)
			}
		}
		fmt.Println(colorize.ColorizeInstructionLine(l.String()))
	}

	slog.Info("sweep finished",
		"file", path,
		"instructions", len(lines)-placeholders,
		"placeholders", placeholders)
	if check {
		slog.Info("reference check finished", "mismatches", mismatches)
		if mismatches > 0 {
			return fmt.Errorf("%d length disagreements with the reference decoder", mismatches)
		}
	}
	return nil
}
