// Package layout reads Lumatone layout (.ltn) files.
//
// A layout file is INI with one section per board, [Board0] through [Board4].
// Each section carries Key_N, Chan_N and Col_N for every key N on the board.
package layout

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/icco/lumaviz/internal/geom"
	"gopkg.in/ini.v1"
)

const (
	// Boards is the number of boards in a layout.
	Boards = geom.Boards
	// KeysPerBoard is the number of keys on every board.
	KeysPerBoard = geom.KeysPerBoard

	maxNote    = 127
	maxChannel = 15
)

// ErrBadColor is wrapped by ParseError when a Col_N value cannot be read.
var ErrBadColor = errors.New("bad color")

// Key is one physical key's configuration. Chan is zero-based.
type Key struct {
	Note  uint8
	Chan  uint8
	Color [3]uint8
}

// Board holds the keys of one board in row-major order.
type Board struct {
	Keys [KeysPerBoard]Key
}

// Layout is the whole instrument. Board order matches physical position.
type Layout struct {
	Boards [Boards]Board
}

// ParseError describes why a layout file was rejected.
type ParseError struct {
	Section string
	Field   string
	Err     error
}

func (e *ParseError) Error() string {
	switch {
	case e.Section == "":
		return fmt.Sprintf("parsing layout file: %v", e.Err)
	case e.Field == "":
		return fmt.Sprintf("section %q: %v", e.Section, e.Err)
	default:
		return fmt.Sprintf("section %q, %s: %v", e.Section, e.Field, e.Err)
	}
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// SectionName returns the INI section holding board.
func SectionName(board int) string {
	return fmt.Sprintf("Board%d", board)
}

// Load reads and parses the layout file at path.
func Load(path string) (*Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading layout file: %w", err)
	}
	return Parse(data)
}

// Parse parses layout file contents.
func Parse(data []byte) (*Layout, error) {
	f, err := loadINI(data)
	if err != nil {
		return nil, err
	}
	return fromFile(f)
}

func loadINI(source interface{}) (*ini.File, error) {
	f, err := ini.LoadSources(ini.LoadOptions{
		// Values never carry comments; keep # and ; literal.
		IgnoreInlineComment:     true,
		SkipUnrecognizableLines: true,
	}, source)
	if err != nil {
		return nil, &ParseError{Err: err}
	}
	return f, nil
}

func fromFile(f *ini.File) (*Layout, error) {
	var l Layout
	for b := 0; b < Boards; b++ {
		name := SectionName(b)
		sec, err := f.GetSection(name)
		if err != nil {
			return nil, &ParseError{Section: name, Err: errors.New("missing section")}
		}
		board, err := parseBoard(sec)
		if err != nil {
			return nil, err
		}
		l.Boards[b] = board
	}
	return &l, nil
}

func parseBoard(sec *ini.Section) (Board, error) {
	var board Board
	for i := 0; i < KeysPerBoard; i++ {
		key, err := parseKey(sec, i)
		if err != nil {
			return Board{}, err
		}
		board.Keys[i] = key
	}
	return board, nil
}

func parseKey(sec *ini.Section, i int) (Key, error) {
	fail := func(field string, err error) (Key, error) {
		return Key{}, &ParseError{Section: sec.Name(), Field: field, Err: err}
	}

	noteField := fmt.Sprintf("Key_%d", i)
	note, err := intField(sec, noteField, 0, maxNote)
	if err != nil {
		return fail(noteField, err)
	}

	// Channels are 1-16 on disk.
	chanField := fmt.Sprintf("Chan_%d", i)
	ch, err := intField(sec, chanField, 1, maxChannel+1)
	if err != nil {
		return fail(chanField, err)
	}

	colField := fmt.Sprintf("Col_%d", i)
	if !sec.HasKey(colField) {
		return fail(colField, errors.New("missing note color"))
	}
	color, err := ParseColor(sec.Key(colField).String())
	if err != nil {
		return fail(colField, err)
	}

	return Key{Note: uint8(note), Chan: uint8(ch - 1), Color: color}, nil //nolint:gosec // ranges checked above
}

func intField(sec *ini.Section, field string, lo, hi int) (int, error) {
	if !sec.HasKey(field) {
		return 0, errors.New("missing value")
	}
	v, err := strconv.Atoi(strings.TrimSpace(sec.Key(field).String()))
	if err != nil {
		return 0, err
	}
	if v < lo || v > hi {
		return 0, fmt.Errorf("%d out of range [%d, %d]", v, lo, hi)
	}
	return v, nil
}

// ParseColor reads an RRGGBB hex color. An AARRGGBB value has its alpha
// byte dropped.
func ParseColor(s string) ([3]uint8, error) {
	s = strings.TrimSpace(s)
	if len(s) == 8 {
		s = s[2:]
	}
	if len(s) != 6 {
		return [3]uint8{}, fmt.Errorf("%w: %q", ErrBadColor, s)
	}
	var c [3]uint8
	for i := range c {
		v, err := strconv.ParseUint(s[2*i:2*i+2], 16, 8)
		if err != nil {
			return [3]uint8{}, fmt.Errorf("%w: %q", ErrBadColor, s)
		}
		c[i] = uint8(v)
	}
	return c, nil
}

// FormatColor is the inverse of ParseColor, without alpha.
func FormatColor(c [3]uint8) string {
	return fmt.Sprintf("%02x%02x%02x", c[0], c[1], c[2])
}
