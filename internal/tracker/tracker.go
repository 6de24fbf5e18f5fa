// Package tracker keeps the set of notes currently held on the controller.
// It lives on the foreground only and is fed from the MIDI event bridge.
package tracker

import (
	"sort"

	"github.com/icco/lumaviz/internal/midi"
)

// Note identifies a sounding note by zero-based channel and key number.
type Note struct {
	Channel uint8
	Key     uint8
}

// Source is anything events can be drained from without blocking.
type Source interface {
	TryTake() (midi.LiveEvent, bool)
}

// Sink is told about every change to the pressed set.
type Sink interface {
	NoteOn(channel, key, velocity uint8)
	NoteOff(channel, key uint8)
	AllNotesOff()
}

// Tracker is the pressed-key set. The zero value is not usable; call New.
type Tracker struct {
	pressed map[Note]struct{}
	sinks   []Sink
}

// New returns an empty Tracker that reports changes to sinks.
func New(sinks ...Sink) *Tracker {
	return &Tracker{
		pressed: make(map[Note]struct{}),
		sinks:   sinks,
	}
}

// Apply updates the set from one event. Events other than note starts and
// ends are ignored.
func (t *Tracker) Apply(ev midi.LiveEvent) {
	n := Note{Channel: ev.Channel, Key: ev.Key}
	switch ev.Kind {
	case midi.KindNoteOn:
		t.pressed[n] = struct{}{}
		for _, s := range t.sinks {
			s.NoteOn(n.Channel, n.Key, ev.Velocity)
		}
	case midi.KindNoteOff:
		delete(t.pressed, n)
		for _, s := range t.sinks {
			s.NoteOff(n.Channel, n.Key)
		}
	}
}

// Drain applies every queued event from src and passes each one to each,
// which may be nil. It returns the number of events taken.
func (t *Tracker) Drain(src Source, each func(midi.LiveEvent)) int {
	n := 0
	for {
		ev, ok := src.TryTake()
		if !ok {
			return n
		}
		n++
		t.Apply(ev)
		if each != nil {
			each(ev)
		}
	}
}

// Observe must be called once per frame with the connection status. While
// disconnected the set is kept empty.
func (t *Tracker) Observe(connected bool) {
	if connected {
		return
	}
	t.Clear()
}

// Clear empties the set.
func (t *Tracker) Clear() {
	if len(t.pressed) == 0 {
		return
	}
	clear(t.pressed)
	for _, s := range t.sinks {
		s.AllNotesOff()
	}
}

// IsPressed reports whether n is held.
func (t *Tracker) IsPressed(n Note) bool {
	_, ok := t.pressed[n]
	return ok
}

// Len is the number of held notes.
func (t *Tracker) Len() int {
	return len(t.pressed)
}

// Pressed returns the held notes ordered by channel, then key.
func (t *Tracker) Pressed() []Note {
	notes := make([]Note, 0, len(t.pressed))
	for n := range t.pressed {
		notes = append(notes, n)
	}
	sort.Slice(notes, func(i, j int) bool {
		if notes[i].Channel != notes[j].Channel {
			return notes[i].Channel < notes[j].Channel
		}
		return notes[i].Key < notes[j].Key
	})
	return notes
}
