package midi

import (
	"errors"
	"sync"

	"gitlab.com/gomidi/midi/v2/drivers"
)

// fakePort records open state for both port directions.
type fakePort struct {
	mu      sync.Mutex
	num     int
	name    string
	open    bool
	openErr error
}

func (p *fakePort) Open() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.openErr != nil {
		return p.openErr
	}
	p.open = true
	return nil
}

func (p *fakePort) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.open = false
	return nil
}

func (p *fakePort) IsOpen() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.open
}

func (p *fakePort) Number() int             { return p.num }
func (p *fakePort) String() string          { return p.name }
func (p *fakePort) Underlying() interface{} { return nil }

type fakeIn struct {
	fakePort
	listenErr error
	callback  func([]byte, int32)
	listening bool
}

func (p *fakeIn) Listen(onMsg func([]byte, int32), _ drivers.ListenConfig) (func(), error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.listenErr != nil {
		return nil, p.listenErr
	}
	p.callback = onMsg
	p.listening = true
	return func() {
		p.mu.Lock()
		p.listening = false
		p.mu.Unlock()
	}, nil
}

// deliver calls the registered callback as the driver thread would.
func (p *fakeIn) deliver(msg []byte) {
	p.mu.Lock()
	cb := p.callback
	p.mu.Unlock()
	if cb != nil {
		cb(msg, 0)
	}
}

type fakeOut struct {
	fakePort
	sendErr error
	sent    [][]byte
}

func (p *fakeOut) Send(data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.sendErr != nil {
		return p.sendErr
	}
	p.sent = append(p.sent, append([]byte(nil), data...))
	return nil
}

func (p *fakeOut) messages() [][]byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([][]byte(nil), p.sent...)
}

type fakeDriver struct {
	ins     []*fakeIn
	outs    []*fakeOut
	insErr  error
	outsErr error
	closed  bool
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{
		ins: []*fakeIn{
			{fakePort: fakePort{num: 0, name: "Lumatone"}},
			{fakePort: fakePort{num: 1, name: ""}},
		},
		outs: []*fakeOut{
			{fakePort: fakePort{num: 0, name: "Synth"}},
		},
	}
}

func (d *fakeDriver) Ins() ([]drivers.In, error) {
	if d.insErr != nil {
		return nil, d.insErr
	}
	ins := make([]drivers.In, len(d.ins))
	for i, in := range d.ins {
		ins[i] = in
	}
	return ins, nil
}

func (d *fakeDriver) Outs() ([]drivers.Out, error) {
	if d.outsErr != nil {
		return nil, d.outsErr
	}
	outs := make([]drivers.Out, len(d.outs))
	for i, out := range d.outs {
		outs[i] = out
	}
	return outs, nil
}

func (d *fakeDriver) String() string { return "fake" }

func (d *fakeDriver) Close() error {
	d.closed = true
	return nil
}

func (d *fakeDriver) openPorts() int {
	n := 0
	for _, in := range d.ins {
		if in.IsOpen() {
			n++
		}
	}
	for _, out := range d.outs {
		if out.IsOpen() {
			n++
		}
	}
	return n
}

var errFake = errors.New("fake failure")

// readyMachine returns a Machine over drv that has been initialized and has
// the first input and output selected.
func readyMachine(drv *fakeDriver) (*Machine, error) {
	m := NewMachine(WithOpener(func() (drivers.Driver, error) { return drv, nil }))
	if err := m.Initialize(); err != nil {
		return nil, err
	}
	r := m.State().(*Ready)
	if err := m.SelectInput(r.InputPorts()[0]); err != nil {
		return nil, err
	}
	if err := m.SelectOutput(r.OutputPorts()[0]); err != nil {
		return nil, err
	}
	return m, nil
}
