package record

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/icco/lumaviz/internal/midi"
	"gitlab.com/gomidi/midi/v2/smf"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time {
	return c.t
}

func decode(t *testing.T, raw ...byte) midi.LiveEvent {
	t.Helper()
	ev, err := midi.Decode(raw)
	if err != nil {
		t.Fatal(err)
	}
	return ev
}

func TestTicks(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want uint32
	}{
		{0, 0},
		{500 * time.Millisecond, 960},
		{time.Second, 1920},
		{250 * time.Millisecond, 480},
	}
	for _, tt := range tests {
		if got := ticks(tt.d); got != tt.want {
			t.Errorf("ticks(%v) = %d, want %d", tt.d, got, tt.want)
		}
	}
}

func TestRecorderWrites(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	r := newWithClock(clock.now)

	r.Add(decode(t, 0x90, 60, 100))
	clock.t = clock.t.Add(500 * time.Millisecond)
	r.Add(decode(t, 0xF8))
	r.Add(decode(t, 0x80, 60, 0))
	clock.t = clock.t.Add(250 * time.Millisecond)
	r.Add(decode(t, 0x91, 64, 90))

	if r.Len() != 3 {
		t.Fatalf("Len = %d, want 3", r.Len())
	}

	var buf bytes.Buffer
	if _, err := r.WriteTo(&buf); err != nil {
		t.Fatal(err)
	}
	rd, err := smf.ReadFrom(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("reading back: %v", err)
	}
	if len(rd.Tracks) != 2 {
		t.Fatalf("got %d tracks", len(rd.Tracks))
	}
	if tc := rd.TempoChanges(); len(tc) == 0 || tc[0].BPM != bpm {
		t.Errorf("tempo changes = %v", tc)
	}

	type note struct {
		tick uint32
		ch   uint8
		key  uint8
	}
	var starts []note
	var tick uint32
	for _, ev := range rd.Tracks[1] {
		tick += ev.Delta
		var ch, key, vel uint8
		if ev.Message.GetNoteOn(&ch, &key, &vel) && vel > 0 {
			starts = append(starts, note{tick, ch, key})
		}
	}
	want := []note{{0, 0, 60}, {1440, 1, 64}}
	if len(starts) != len(want) {
		t.Fatalf("note starts = %v, want %v", starts, want)
	}
	for i := range want {
		if starts[i] != want[i] {
			t.Errorf("start %d = %v, want %v", i, starts[i], want[i])
		}
	}
}

func TestWriteFile(t *testing.T) {
	r := New()
	r.Add(decode(t, 0x90, 48, 1))
	path := filepath.Join(t.TempDir(), "take.mid")
	if err := r.WriteFile(path); err != nil {
		t.Fatal(err)
	}
	if _, err := smf.ReadFile(path); err != nil {
		t.Errorf("ReadFile: %v", err)
	}
}
