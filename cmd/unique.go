package cmd

import (
	"fmt"

	"github.com/icco/lumaviz/internal/layout"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var octaveOffset int

var uniqueCmd = &cobra.Command{
	Use:   "unique <in.ltn> <out.ltn>",
	Short: "Rewrite a layout so every key sends its own note and channel",
	Long: `Rewrite a layout file so that no two keys send the same (note, channel) pair,
which lets the visualizer light exactly the key that was pressed.

Keys are visited board by board. A key whose pair is already in use moves to
the next channel, and down by --octave-offset notes, until its pair is free.
Only Key_N and Chan_N values change; everything else in the file is kept.

Example:
  lumaviz unique --octave-offset 31 31edo.ltn 31edo-unique.ltn
`,
	Args: cobra.ExactArgs(2),
	RunE: runUnique,
}

func init() {
	uniqueCmd.Flags().IntVar(&octaveOffset, "octave-offset", 0, "Notes to shift down for every channel a key moves up")
	rootCmd.AddCommand(uniqueCmd)
}

func runUnique(cmd *cobra.Command, args []string) error {
	log, err := newLogger()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	doc, err := layout.LoadDocument(args[0])
	if err != nil {
		return err
	}

	before := layout.Duplicates(doc.Layout)
	l, err := layout.Uniquify(doc.Layout, octaveOffset)
	if err != nil {
		return err
	}
	doc.Set(l)

	if err := doc.Save(args[1]); err != nil {
		return err
	}
	log.Info("layout rewritten",
		zap.String("in", args[0]),
		zap.String("out", args[1]),
		zap.Int("duplicates", before))
	fmt.Fprintf(cmd.OutOrStdout(), "Moved %d duplicate key(s); wrote %s\n", before, args[1])
	return nil
}
