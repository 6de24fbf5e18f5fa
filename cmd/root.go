package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/icco/lumaviz/internal/audio"
	"github.com/icco/lumaviz/internal/layout"
	"github.com/icco/lumaviz/internal/logging"
	"github.com/icco/lumaviz/internal/midi"
	"github.com/icco/lumaviz/internal/record"
	"github.com/icco/lumaviz/internal/tracker"
	"github.com/icco/lumaviz/internal/tui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	logFile    string
	debug      bool
	monitor    bool
	volume     float64
	recordPath string
	brightness float64
	fps        int
	inputName  string
	outputName string
)

var rootCmd = &cobra.Command{
	Use:   "lumaviz <layout-file>",
	Short: "Show what is played on a Lumatone, passing its MIDI through",
	Long: `lumaviz draws the five boards of a Lumatone in the terminal, coloured from a
.ltn layout file, and lights up keys as they are played.

While connected, every MIDI message from the chosen input port is forwarded
unchanged to the chosen output port.

Example:
  lumaviz --in "Lumatone" --out "FluidSynth" 31edo.ltn
`,
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runVisualizer,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Write JSON logs to this file")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Log at debug level")

	rootCmd.Flags().BoolVar(&monitor, "monitor", false, "Play held notes through the built-in synth")
	rootCmd.Flags().Float64Var(&volume, "volume", audio.DefaultVolume, "Volume of the monitor synth, 0 to 1")
	rootCmd.Flags().StringVar(&recordPath, "record", "", "Write everything played to this MIDI file on exit")
	rootCmd.Flags().Float64Var(&brightness, "brightness", 0.6, "Brightness of unpressed keys, 0 to 1")
	rootCmd.Flags().IntVar(&fps, "fps", 30, "Frames per second")
	rootCmd.Flags().StringVar(&inputName, "in", "", "Preselect the MIDI input port with this name")
	rootCmd.Flags().StringVar(&outputName, "out", "", "Preselect the MIDI output port with this name")
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger() (*zap.Logger, error) {
	return logging.New(logFile, debug)
}

func runVisualizer(cmd *cobra.Command, args []string) error {
	if brightness <= 0 || brightness > 1 {
		return fmt.Errorf("--brightness must be in (0, 1], got %g", brightness)
	}
	if volume < 0 || volume > 1 {
		return fmt.Errorf("--volume must be in [0, 1], got %g", volume)
	}
	if fps <= 0 {
		return fmt.Errorf("--fps must be positive, got %d", fps)
	}

	lay, err := layout.Load(args[0])
	if err != nil {
		return err
	}

	log, err := newLogger()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()
	log.Info("layout loaded", zap.String("path", args[0]))

	var sinks []tracker.Sink
	if monitor {
		mon, err := audio.NewMonitor()
		if err != nil {
			return fmt.Errorf("starting monitor synth: %w", err)
		}
		defer func() { _ = mon.Close() }()
		mon.SetVolume(volume)
		sinks = append(sinks, mon)
	}

	var rec *record.Recorder
	if recordPath != "" {
		rec = record.New()
	}

	machine := midi.NewMachine(midi.WithLogger(log))
	defer machine.Uninitialize()

	m := tui.New(tui.Config{
		Layout:     lay,
		LayoutPath: args[0],
		Machine:    machine,
		Tracker:    tracker.New(sinks...),
		Recorder:   rec,
		Log:        log,
		Brightness: brightness,
		FPS:        fps,
		InputName:  inputName,
		OutputName: outputName,
	})
	p := tea.NewProgram(m, tea.WithAltScreen())

	// Handle graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(c)
	go func() {
		if _, ok := <-c; ok {
			p.Send(tea.Quit())
		}
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running visualizer: %w", err)
	}

	if rec != nil {
		if err := rec.WriteFile(recordPath); err != nil {
			return err
		}
		log.Info("recording written", zap.String("path", recordPath), zap.Int("events", rec.Len()))
		fmt.Printf("Recorded %d events to %s\n", rec.Len(), recordPath)
	}
	return nil
}
