// Package midi owns the MIDI connection: port discovery, the
// Uninitialized -> Ready -> Connected lifecycle, and the passthrough
// listener that copies every incoming message to the output port while
// handing decoded events to the foreground.
//
// A Machine is not safe for concurrent use. It is driven from the UI loop;
// the only other goroutine involved is the driver's input callback, which
// owns the listener state exclusively while Connected.
package midi

import (
	"errors"
	"fmt"

	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
	"go.uber.org/zap"
)

var (
	// ErrSubsystemInit wraps failures to open the MIDI driver.
	ErrSubsystemInit = errors.New("initializing MIDI")
	// ErrConnect wraps failures to open the selected ports.
	ErrConnect = errors.New("connecting MIDI ports")
	// ErrNoPortsSelected is returned by Connect unless both ports are selected.
	ErrNoPortsSelected = errors.New("select an input and an output port first")
	// ErrWrongState is returned for a transition the current state does not offer.
	ErrWrongState = errors.New("not possible in the current MIDI state")
)

// State is one of *Uninitialized, *Ready or *Connected.
type State interface {
	String() string
	isState()
}

// Uninitialized has no driver open. Err is the last initialization failure,
// if any.
type Uninitialized struct {
	Err error
}

func (*Uninitialized) isState() {}

func (*Uninitialized) String() string { return "uninitialized" }

// Ready has the driver open and is choosing ports.
type Ready struct {
	driver drivers.Driver
	log    *zap.Logger
	input  *InPort
	output *OutPort

	// LastErr is the most recent Connect failure, kept for display.
	LastErr error
}

func (*Ready) isState() {}

func (*Ready) String() string { return "ready" }

// InputPorts lists the driver's input ports.
func (r *Ready) InputPorts() []InPort {
	if r.driver == nil {
		return nil
	}
	return ListInputPorts(r.driver, r.log)
}

// OutputPorts lists the driver's output ports.
func (r *Ready) OutputPorts() []OutPort {
	if r.driver == nil {
		return nil
	}
	return ListOutputPorts(r.driver, r.log)
}

// Input returns the selected input port.
func (r *Ready) Input() (InPort, bool) {
	if r.input == nil {
		return InPort{}, false
	}
	return *r.input, true
}

// Output returns the selected output port.
func (r *Ready) Output() (OutPort, bool) {
	if r.output == nil {
		return OutPort{}, false
	}
	return *r.output, true
}

// consume hands the driver to the next state; r is unusable afterwards.
func (r *Ready) consume() drivers.Driver {
	drv := r.driver
	r.driver, r.input, r.output = nil, nil, nil
	return drv
}

// Connected is passing input through to output.
type Connected struct {
	driver drivers.Driver
	log    *zap.Logger

	input  InPort
	output OutPort

	stopListening func()
	listener      *listener
	events        *Receiver
}

func (*Connected) isState() {}

func (*Connected) String() string { return "connected" }

// Input returns the connected input port.
func (c *Connected) Input() InPort { return c.input }

// Output returns the connected output port.
func (c *Connected) Output() OutPort { return c.output }

// TryTake returns the oldest undelivered event without blocking.
func (c *Connected) TryTake() (LiveEvent, bool) {
	if c.events == nil {
		return LiveEvent{}, false
	}
	return c.events.TryTake()
}

// close stops the listener and closes both ports, input first, then hands
// the driver back. c is unusable afterwards.
func (c *Connected) close() drivers.Driver {
	if c.stopListening != nil {
		c.stopListening()
	}
	c.listener.stop()
	if err := c.input.port.Close(); err != nil {
		c.log.Warn("closing MIDI input", zap.String("port", c.input.Name), zap.Error(err))
	}
	if err := c.output.port.Close(); err != nil {
		c.log.Warn("closing MIDI output", zap.String("port", c.output.Name), zap.Error(err))
	}

	drv := c.driver
	*c = Connected{log: c.log}
	return drv
}

// Opener opens the MIDI driver.
type Opener func() (drivers.Driver, error)

func openRtmidi() (drivers.Driver, error) {
	drv, err := rtmididrv.New()
	if err != nil {
		return nil, err
	}
	return drv, nil
}

// Option configures a Machine.
type Option func(*Machine)

// WithLogger sets the logger. The default discards everything.
func WithLogger(log *zap.Logger) Option {
	return func(m *Machine) {
		m.log = log
	}
}

// WithOpener replaces the rtmidi driver.
func WithOpener(open Opener) Option {
	return func(m *Machine) {
		m.open = open
	}
}

// Machine holds the current connection state. Transitions replace the state
// value; a replaced value has given up its resources and must not be used.
type Machine struct {
	state State
	open  Opener
	log   *zap.Logger
}

// NewMachine returns a Machine in the Uninitialized state.
func NewMachine(opts ...Option) *Machine {
	m := &Machine{
		state: &Uninitialized{},
		open:  openRtmidi,
		log:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// State returns the current state.
func (m *Machine) State() State {
	return m.state
}

// Connected reports whether the machine is passing MIDI through.
func (m *Machine) Connected() bool {
	_, ok := m.state.(*Connected)
	return ok
}

// Initialize opens the driver. On failure the machine stays Uninitialized
// and remembers the error.
func (m *Machine) Initialize() error {
	if _, ok := m.state.(*Uninitialized); !ok {
		return ErrWrongState
	}
	drv, err := m.open()
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrSubsystemInit, err)
		m.log.Error("MIDI initialization failed", zap.Error(err))
		m.state = &Uninitialized{Err: err}
		return err
	}
	m.log.Info("MIDI initialized", zap.String("driver", drv.String()))
	m.state = &Ready{driver: drv, log: m.log}
	return nil
}

// SelectInput chooses the input port for the next Connect.
func (m *Machine) SelectInput(p InPort) error {
	r, ok := m.state.(*Ready)
	if !ok {
		return ErrWrongState
	}
	r.input = &p
	return nil
}

// SelectOutput chooses the output port for the next Connect.
func (m *Machine) SelectOutput(p OutPort) error {
	r, ok := m.state.(*Ready)
	if !ok {
		return ErrWrongState
	}
	r.output = &p
	return nil
}

// Connect opens the selected ports and starts passthrough. On failure
// anything opened is closed again and the machine stays Ready.
func (m *Machine) Connect() error {
	r, ok := m.state.(*Ready)
	if !ok {
		return ErrWrongState
	}
	if r.input == nil || r.output == nil {
		return ErrNoPortsSelected
	}
	in, out := *r.input, *r.output

	fail := func(err error) error {
		r.LastErr = err
		m.log.Error("MIDI connect failed", zap.Error(err))
		return err
	}

	if err := out.port.Open(); err != nil {
		return fail(fmt.Errorf("%w: opening output %q: %w", ErrConnect, out.Name, err))
	}

	events, received := NewBridge()
	l := newListener(out.port, events, m.log)

	if err := in.port.Open(); err != nil {
		closeQuietly(out.port)
		return fail(fmt.Errorf("%w: opening input %q: %w", ErrConnect, in.Name, err))
	}
	stop, err := in.port.Listen(l.handle, l.config())
	if err != nil {
		closeQuietly(in.port)
		closeQuietly(out.port)
		return fail(fmt.Errorf("%w: listening on %q: %w", ErrConnect, in.Name, err))
	}

	m.log.Info("MIDI connected", zap.String("input", in.Name), zap.String("output", out.Name))
	m.state = &Connected{
		driver:        r.consume(),
		log:           m.log,
		input:         in,
		output:        out,
		stopListening: stop,
		listener:      l,
		events:        received,
	}
	return nil
}

// Disconnect stops passthrough and closes both ports. The machine returns
// to Ready with nothing selected.
func (m *Machine) Disconnect() error {
	c, ok := m.state.(*Connected)
	if !ok {
		return ErrWrongState
	}
	m.log.Info("MIDI disconnected", zap.String("input", c.input.Name), zap.String("output", c.output.Name))
	m.state = &Ready{driver: c.close(), log: m.log}
	return nil
}

// Uninitialize closes any connection and the driver.
func (m *Machine) Uninitialize() {
	var drv drivers.Driver
	switch s := m.state.(type) {
	case *Ready:
		drv = s.consume()
	case *Connected:
		drv = s.close()
	default:
		return
	}
	if err := drv.Close(); err != nil {
		m.log.Warn("closing MIDI driver", zap.Error(err))
	}
	m.log.Info("MIDI uninitialized")
	m.state = &Uninitialized{}
}

// TryTake returns the next live event while Connected.
func (m *Machine) TryTake() (LiveEvent, bool) {
	if c, ok := m.state.(*Connected); ok {
		return c.TryTake()
	}
	return LiveEvent{}, false
}

func closeQuietly(p drivers.Port) {
	_ = p.Close()
}
