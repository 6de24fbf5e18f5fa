// Package audio is a small software synth used to monitor what is played
// on the controller without an external sound source.
package audio

import (
	"math"
	"sync"

	"github.com/ebitengine/oto/v3"
)

const (
	sampleRate   = 44100
	channelCount = 2
	bytesPerSamp = 2

	maxVoices = 48

	attackStep   = 1.0 / (0.005 * sampleRate)
	releaseDecay = 0.9997
	silence      = 0.001
)

// DefaultVolume is the master gain a new Monitor starts with.
const DefaultVolume = 0.25

// wave is an oscillator shape.
type wave int

const (
	sine wave = iota
	triangle
	sawtooth
	square
)

type voice struct {
	channel uint8
	key     uint8
	gain    float64
	step    float64
	phase   float64
	env     float64
	held    bool
	active  bool
}

// mixer holds voice state and renders it. It is separate from Monitor so it
// can run without an audio device.
type mixer struct {
	mu     sync.Mutex
	voices [maxVoices]voice
	next   int
	volume float64
	waves  [16]wave
}

func newMixer() *mixer {
	m := &mixer{volume: DefaultVolume}
	// Boards send on consecutive channels; give neighbours distinct timbres.
	for ch := range m.waves {
		m.waves[ch] = wave(ch % 4)
	}
	return m
}

func (m *mixer) noteOn(channel, key, velocity uint8) {
	m.mu.Lock()
	defer m.mu.Unlock()

	v := m.free()
	*v = voice{
		channel: channel,
		key:     key,
		gain:    float64(velocity) / 127,
		step:    keyFrequency(key) / sampleRate,
		held:    true,
		active:  true,
	}
}

// free returns an idle voice, or steals the next one round robin.
func (m *mixer) free() *voice {
	for i := range m.voices {
		if !m.voices[i].active {
			return &m.voices[i]
		}
	}
	v := &m.voices[m.next]
	m.next = (m.next + 1) % maxVoices
	return v
}

func (m *mixer) noteOff(channel, key uint8) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.voices {
		v := &m.voices[i]
		if v.active && v.held && v.channel == channel && v.key == key {
			v.held = false
		}
	}
}

func (m *mixer) allOff() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.voices {
		m.voices[i].held = false
	}
}

// setVolume sets the master gain, clamped to [0, 1].
func (m *mixer) setVolume(vol float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.volume = math.Max(0, math.Min(1, vol))
}

func (m *mixer) sounding() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, v := range m.voices {
		if v.active {
			n++
		}
	}
	return n
}

// Read fills buf with interleaved signed 16-bit little-endian stereo frames.
func (m *mixer) Read(buf []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	frames := len(buf) / (channelCount * bytesPerSamp)
	for f := 0; f < frames; f++ {
		var sum float64
		for i := range m.voices {
			v := &m.voices[i]
			if !v.active {
				continue
			}
			sum += oscillate(m.waves[v.channel%16], v.phase) * v.gain * v.env * 0.2

			v.phase += v.step
			if v.phase >= 1 {
				v.phase--
			}
			switch {
			case !v.held:
				v.env *= releaseDecay
				if v.env < silence {
					v.active = false
				}
			case v.env < 1:
				v.env = math.Min(1, v.env+attackStep)
			}
		}

		s := int16(math.Max(-1, math.Min(1, sum*m.volume)) * math.MaxInt16)
		off := f * channelCount * bytesPerSamp
		for c := 0; c < channelCount; c++ {
			buf[off+c*bytesPerSamp] = byte(s)
			buf[off+c*bytesPerSamp+1] = byte(s >> 8)
		}
	}
	return frames * channelCount * bytesPerSamp, nil
}

func oscillate(w wave, phase float64) float64 {
	switch w {
	case triangle:
		if phase < 0.5 {
			return 4*phase - 1
		}
		return 3 - 4*phase
	case sawtooth:
		return 2*phase - 1
	case square:
		if phase < 0.5 {
			return 0.8
		}
		return -0.8
	default:
		return math.Sin(2 * math.Pi * phase)
	}
}

// keyFrequency is the equal-tempered frequency of a MIDI key, A4 = 440 Hz.
func keyFrequency(key uint8) float64 {
	return 440 * math.Pow(2, (float64(key)-69)/12)
}

// Monitor plays held notes through the default audio device.
type Monitor struct {
	mix    *mixer
	player *oto.Player
}

// NewMonitor opens the audio device and starts playback.
func NewMonitor() (*Monitor, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: channelCount,
		Format:       oto.FormatSignedInt16LE,
	})
	if err != nil {
		return nil, err
	}
	<-ready

	mon := &Monitor{mix: newMixer()}
	mon.player = ctx.NewPlayer(mon.mix)
	mon.player.Play()
	return mon, nil
}

// NoteOn starts a voice for key on channel.
func (m *Monitor) NoteOn(channel, key, velocity uint8) {
	m.mix.noteOn(channel, key, velocity)
}

// NoteOff releases the voices playing key on channel.
func (m *Monitor) NoteOff(channel, key uint8) {
	m.mix.noteOff(channel, key)
}

// AllNotesOff releases every voice.
func (m *Monitor) AllNotesOff() {
	m.mix.allOff()
}

// SetVolume sets the master gain, clamped to [0, 1].
func (m *Monitor) SetVolume(vol float64) {
	m.mix.setVolume(vol)
}

// Close stops playback. The player itself is released by oto.
func (m *Monitor) Close() error {
	m.mix.allOff()
	m.player.Pause()
	return nil
}
