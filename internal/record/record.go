// Package record captures live MIDI events and writes them out as a
// Standard MIDI File.
package record

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/icco/lumaviz/internal/midi"
	"gitlab.com/gomidi/midi/v2/smf"
)

const (
	ticksPerQuarterNote = 960
	bpm                 = 120
)

type stamped struct {
	at  time.Duration
	msg []byte
}

// Recorder collects channel messages with their arrival time. It is used
// from the foreground only.
type Recorder struct {
	now    func() time.Time
	start  time.Time
	events []stamped
}

// New returns a Recorder whose clock starts now.
func New() *Recorder {
	return newWithClock(time.Now)
}

func newWithClock(now func() time.Time) *Recorder {
	return &Recorder{now: now, start: now()}
}

// Add appends ev. System messages have no place in a track and are skipped.
func (r *Recorder) Add(ev midi.LiveEvent) {
	if len(ev.Msg) == 0 || ev.Msg[0] >= 0xF0 {
		return
	}
	r.events = append(r.events, stamped{
		at:  r.now().Sub(r.start),
		msg: append([]byte(nil), ev.Msg...),
	})
}

// Len is the number of recorded messages.
func (r *Recorder) Len() int {
	return len(r.events)
}

// ticks converts an offset from the start of the recording to MIDI ticks.
func ticks(d time.Duration) uint32 {
	perSecond := float64(ticksPerQuarterNote) * bpm / 60
	return uint32(d.Seconds()*perSecond + 0.5)
}

func (r *Recorder) encode() (*smf.SMF, error) {
	sm := smf.New()
	sm.TimeFormat = smf.MetricTicks(ticksPerQuarterNote)

	var tempo smf.Track
	tempo.Add(0, smf.MetaMeter(4, 4))
	tempo.Add(0, smf.MetaTempo(bpm))
	tempo.Close(0)
	if err := sm.Add(tempo); err != nil {
		return nil, fmt.Errorf("adding tempo track: %w", err)
	}

	var track smf.Track
	var last uint32
	for _, ev := range r.events {
		pos := ticks(ev.at)
		if pos < last {
			pos = last
		}
		track.Add(pos-last, ev.msg)
		last = pos
	}
	track.Close(0)
	if err := sm.Add(track); err != nil {
		return nil, fmt.Errorf("adding performance track: %w", err)
	}
	return sm, nil
}

// WriteTo encodes the recording as a type 1 SMF.
func (r *Recorder) WriteTo(w io.Writer) (int64, error) {
	sm, err := r.encode()
	if err != nil {
		return 0, err
	}
	return sm.WriteTo(w)
}

// WriteFile writes the recording to path.
func (r *Recorder) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if _, err := r.WriteTo(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing MIDI file: %w", err)
	}
	return f.Close()
}
