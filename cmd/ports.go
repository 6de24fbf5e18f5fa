package cmd

import (
	"fmt"
	"io"

	"github.com/icco/lumaviz/internal/midi"
	"github.com/spf13/cobra"
)

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List MIDI input and output ports",
	Long: `List the MIDI ports the system offers, in the order the visualizer shows them.

Names printed here can be passed to --in and --out.`,
	Args: cobra.NoArgs,
	RunE: runPorts,
}

func init() {
	rootCmd.AddCommand(portsCmd)
}

func runPorts(cmd *cobra.Command, args []string) error {
	log, err := newLogger()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	m := midi.NewMachine(midi.WithLogger(log))
	if err := m.Initialize(); err != nil {
		return err
	}
	defer m.Uninitialize()

	r, ok := m.State().(*midi.Ready)
	if !ok {
		return fmt.Errorf("MIDI in unexpected state %s", m.State())
	}
	printPorts(cmd.OutOrStdout(), r.InputPorts(), r.OutputPorts())
	return nil
}

func printPorts(w io.Writer, ins []midi.InPort, outs []midi.OutPort) {
	fmt.Fprintln(w, "Inputs:")
	if len(ins) == 0 {
		fmt.Fprintln(w, "  (none)")
	}
	for _, p := range ins {
		fmt.Fprintf(w, "  %d: %s\n", p.Number(), p.Name)
	}

	fmt.Fprintln(w, "Outputs:")
	if len(outs) == 0 {
		fmt.Fprintln(w, "  (none)")
	}
	for _, p := range outs {
		fmt.Fprintf(w, "  %d: %s\n", p.Number(), p.Name)
	}
}
