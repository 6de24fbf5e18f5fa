package midi

import (
	"fmt"
	"sync"

	"gitlab.com/gomidi/midi/v2/drivers"
	"go.uber.org/zap"
)

// listener is the passthrough callback state. It is created at connect
// time and afterwards touched only from the driver's callback thread and
// from stop; the foreground never sees it.
type listener struct {
	out    drivers.Out
	events *Sender
	log    *zap.Logger

	// mu is held for the whole of handle so stop can wait out a callback
	// that is already running.
	mu      sync.Mutex
	stopped bool
}

func newListener(out drivers.Out, events *Sender, log *zap.Logger) *listener {
	return &listener{out: out, events: events, log: log}
}

// handle forwards raw to the output unchanged and queues its decoded form
// for the foreground. Failures are logged and dropped.
func (l *listener) handle(raw []byte, _ int32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.stopped {
		return
	}

	if err := l.out.Send(raw); err != nil {
		l.log.Debug("passthrough send failed", zap.Error(err))
	}

	ev, err := Decode(raw)
	if err != nil {
		l.log.Warn("dropping MIDI message", zap.String("bytes", fmt.Sprintf("% X", raw)), zap.Error(err))
		return
	}
	l.events.Push(ev)
}

func (l *listener) onErr(err error) {
	l.log.Warn("MIDI input error", zap.Error(err))
}

// stop returns once no callback is running; later callbacks do nothing.
func (l *listener) stop() {
	l.mu.Lock()
	l.stopped = true
	l.mu.Unlock()
}

func (l *listener) config() drivers.ListenConfig {
	return drivers.ListenConfig{
		TimeCode:    true,
		ActiveSense: true,
		SysEx:       true,
		OnErr:       l.onErr,
	}
}
