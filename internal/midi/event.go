package midi

import (
	"errors"
	"fmt"

	"gitlab.com/gomidi/midi/v2"
)

var (
	// ErrEmptyMessage is returned by Decode for a zero-length message.
	ErrEmptyMessage = errors.New("empty MIDI message")
	// ErrMalformedMessage is returned by Decode for bytes that are not a
	// single complete MIDI message.
	ErrMalformedMessage = errors.New("malformed MIDI message")
)

// Kind classifies a LiveEvent.
type Kind uint8

const (
	// KindOther is any valid message that is not a note start or end.
	KindOther Kind = iota
	KindNoteOn
	KindNoteOff
)

func (k Kind) String() string {
	switch k {
	case KindNoteOn:
		return "NoteOn"
	case KindNoteOff:
		return "NoteOff"
	default:
		return "Other"
	}
}

// LiveEvent is one decoded incoming message. It owns its bytes.
type LiveEvent struct {
	Kind     Kind
	Channel  uint8
	Key      uint8
	Velocity uint8
	Msg      midi.Message
}

func (e LiveEvent) String() string {
	switch e.Kind {
	case KindNoteOn:
		return fmt.Sprintf("NoteOn ch=%d key=%d vel=%d", e.Channel, e.Key, e.Velocity)
	case KindNoteOff:
		return fmt.Sprintf("NoteOff ch=%d key=%d vel=%d", e.Channel, e.Key, e.Velocity)
	default:
		return e.Msg.String()
	}
}

// Decode validates raw as one complete MIDI message and classifies it.
// A Note On with velocity 0 is reported as KindNoteOff. raw is copied, so
// the caller may reuse its buffer.
func Decode(raw []byte) (LiveEvent, error) {
	if len(raw) == 0 {
		return LiveEvent{}, ErrEmptyMessage
	}
	if err := validate(raw); err != nil {
		return LiveEvent{}, err
	}

	ev := LiveEvent{Msg: append(midi.Message(nil), raw...)}
	var ch, key, vel uint8
	switch {
	case ev.Msg.GetNoteStart(&ch, &key, &vel):
		ev.Kind, ev.Channel, ev.Key, ev.Velocity = KindNoteOn, ch, key, vel
	case ev.Msg.GetNoteEnd(&ch, &key):
		ev.Kind, ev.Channel, ev.Key = KindNoteOff, ch, key
		if ev.Msg.GetNoteOff(&ch, &key, &vel) {
			ev.Velocity = vel
		}
	}
	return ev, nil
}

func validate(raw []byte) error {
	status := raw[0]
	if status < 0x80 {
		return fmt.Errorf("%w: no status byte (% X)", ErrMalformedMessage, raw)
	}

	if status == 0xF0 {
		if len(raw) < 2 || raw[len(raw)-1] != 0xF7 {
			return fmt.Errorf("%w: unterminated sysex", ErrMalformedMessage)
		}
		return dataBytes(raw[1 : len(raw)-1])
	}

	want := messageLength(status)
	if want == 0 {
		return fmt.Errorf("%w: undefined status %#x", ErrMalformedMessage, status)
	}
	if len(raw) != want {
		return fmt.Errorf("%w: status %#x wants %d bytes, got %d", ErrMalformedMessage, status, want, len(raw))
	}
	return dataBytes(raw[1:])
}

func dataBytes(b []byte) error {
	for _, d := range b {
		if d >= 0x80 {
			return fmt.Errorf("%w: unexpected status byte %#x in data", ErrMalformedMessage, d)
		}
	}
	return nil
}

// messageLength returns the full length of a non-sysex message with the
// given status byte, or 0 if the status is undefined.
func messageLength(status byte) int {
	switch status & 0xF0 {
	case 0x80, 0x90, 0xA0, 0xB0, 0xE0:
		return 3
	case 0xC0, 0xD0:
		return 2
	}
	switch status {
	case 0xF1, 0xF3:
		return 2
	case 0xF2:
		return 3
	case 0xF4, 0xF5, 0xF7:
		return 0
	}
	return 1
}
