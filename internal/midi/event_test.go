package midi

import (
	"bytes"
	"errors"
	"sync"
	"testing"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name string
		raw  []byte
		want LiveEvent
	}{
		{"note on", []byte{0x93, 60, 100}, LiveEvent{Kind: KindNoteOn, Channel: 3, Key: 60, Velocity: 100}},
		{"note off", []byte{0x80, 61, 40}, LiveEvent{Kind: KindNoteOff, Channel: 0, Key: 61, Velocity: 40}},
		{"note on zero velocity", []byte{0x9F, 127, 0}, LiveEvent{Kind: KindNoteOff, Channel: 15, Key: 127}},
		{"control change", []byte{0xB0, 64, 127}, LiveEvent{Kind: KindOther}},
		{"program change", []byte{0xC2, 5}, LiveEvent{Kind: KindOther}},
		{"clock", []byte{0xF8}, LiveEvent{Kind: KindOther}},
		{"sysex", []byte{0xF0, 0x00, 0x21, 0x50, 0xF7}, LiveEvent{Kind: KindOther}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.raw)
			if err != nil {
				t.Fatalf("Decode(% X) error: %v", tt.raw, err)
			}
			if got.Kind != tt.want.Kind || got.Channel != tt.want.Channel || got.Key != tt.want.Key || got.Velocity != tt.want.Velocity {
				t.Errorf("Decode(% X) = %+v, want %+v", tt.raw, got, tt.want)
			}
			if !bytes.Equal(got.Msg, tt.raw) {
				t.Errorf("Decode(% X).Msg = % X", tt.raw, got.Msg)
			}
		})
	}
}

func TestDecodeRejects(t *testing.T) {
	tests := []struct {
		name string
		raw  []byte
		want error
	}{
		{"empty", nil, ErrEmptyMessage},
		{"running status", []byte{60, 100}, ErrMalformedMessage},
		{"truncated note", []byte{0x90, 60}, ErrMalformedMessage},
		{"too long", []byte{0xC0, 1, 2}, ErrMalformedMessage},
		{"status in data", []byte{0x90, 0x90, 1}, ErrMalformedMessage},
		{"unterminated sysex", []byte{0xF0, 1, 2}, ErrMalformedMessage},
		{"undefined status", []byte{0xF4}, ErrMalformedMessage},
		{"lone end of sysex", []byte{0xF7}, ErrMalformedMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode(tt.raw); !errors.Is(err, tt.want) {
				t.Errorf("Decode(% X) error = %v, want %v", tt.raw, err, tt.want)
			}
		})
	}
}

func TestDecodeCopies(t *testing.T) {
	raw := []byte{0x90, 60, 100}
	ev, err := Decode(raw)
	if err != nil {
		t.Fatal(err)
	}
	raw[1] = 0
	if ev.Key != 60 || ev.Msg[1] != 60 {
		t.Errorf("event changed with caller's buffer: %+v", ev)
	}
}

func TestBridgeOrder(t *testing.T) {
	tx, rx := NewBridge()
	if _, ok := rx.TryTake(); ok {
		t.Fatal("new bridge is not empty")
	}

	for i := 0; i < 10; i++ {
		tx.Push(LiveEvent{Key: uint8(i)})
	}
	for i := 0; i < 10; i++ {
		ev, ok := rx.TryTake()
		if !ok {
			t.Fatalf("TryTake %d: empty", i)
		}
		if ev.Key != uint8(i) {
			t.Errorf("TryTake %d: key %d", i, ev.Key)
		}
	}
	if _, ok := rx.TryTake(); ok {
		t.Error("bridge not empty after draining")
	}
}

func TestBridgeConcurrent(t *testing.T) {
	const n = 10000
	tx, rx := NewBridge()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			tx.Push(LiveEvent{Velocity: uint8(i % 128), Key: uint8(i / 128)})
		}
	}()

	got := 0
	for got < n {
		ev, ok := rx.TryTake()
		if !ok {
			continue
		}
		if int(ev.Key)*128+int(ev.Velocity) != got {
			t.Fatalf("event %d out of order: %+v", got, ev)
		}
		got++
	}
	wg.Wait()

	if _, ok := rx.TryTake(); ok {
		t.Error("extra event after all were taken")
	}
}
