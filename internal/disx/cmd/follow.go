package cmd

import (
	"fmt"
	"log/slog"

	"github.com/nxadm/tail"
	"github.com/spf13/cobra"

	"disx/internal/sweep"
)

var followCmd = &cobra.Command{
	Use:   "follow <file>",
	Short: "Follow a growing hex-dump file and stream decoded instructions",
	Long: `Follow tails a text file where each appended line is a run of hex bytes
(a JIT dump, a trace capture) and prints the decoded instructions as the
lines arrive. Lines that fail to parse as hex are skipped with a warning.`,
	Example: `
disx follow /tmp/jit-dump.txt
  `,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := tail.TailFile(args[0], tail.Config{
			Follow: true,
			ReOpen: true,
			Logger: tail.DiscardingLogger,
		})
		if err != nil {
			return fmt.Errorf("tail %s: %w", args[0], err)
		}
		defer t.Cleanup()

		for line := range t.Lines {
			if line.Err != nil {
				return fmt.Errorf("tail %s: %w", args[0], line.Err)
			}
			if line.Text == "" {
				continue
			}
			buf, err := parseHexArgs([]string{line.Text})
			if err != nil {
				slog.Warn("skipping unparseable line", "err", err)
				continue
			}
			for _, l := range sweep.Scan(buf) {
				fmt.Println(l.String())
			}
		}
		return nil
	},
}
