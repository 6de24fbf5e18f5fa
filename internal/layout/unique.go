package layout

import (
	"errors"
	"fmt"
)

// ErrNoFreeChannel is returned by Uniquify when a key cannot be moved to an
// unused (note, channel) pair.
var ErrNoFreeChannel = errors.New("no free channel")

// NoteID is a (channel, note) pair as seen on the wire.
type NoteID struct {
	Chan uint8
	Note uint8
}

// ID returns the key's wire identity.
func (k Key) ID() NoteID {
	return NoteID{Chan: k.Chan, Note: k.Note}
}

// Uniquify returns a copy of l in which every key sends a distinct
// (note, channel) pair. Keys are visited board by board in key order; a key
// whose pair was already taken moves up one channel, and down octaveOffset
// notes, until its pair is free.
func Uniquify(l Layout, octaveOffset int) (Layout, error) {
	seen := make(map[NoteID]struct{}, Boards*KeysPerBoard)
	for b := range l.Boards {
		for i := range l.Boards[b].Keys {
			k := &l.Boards[b].Keys[i]
			note, ch := int(k.Note), int(k.Chan)
			for {
				if _, taken := seen[NoteID{Chan: uint8(ch), Note: uint8(note)}]; !taken { //nolint:gosec // bounds checked below
					break
				}
				ch++
				note -= octaveOffset
				if ch > maxChannel || note < 0 || note > maxNote {
					return Layout{}, fmt.Errorf("board %d key %d: %w", b, i, ErrNoFreeChannel)
				}
			}
			k.Note, k.Chan = uint8(note), uint8(ch) //nolint:gosec // bounds checked above
			seen[k.ID()] = struct{}{}
		}
	}
	return l, nil
}

// Duplicates reports how many keys share their (note, channel) pair with an
// earlier key.
func Duplicates(l Layout) int {
	seen := make(map[NoteID]struct{}, Boards*KeysPerBoard)
	n := 0
	for _, board := range l.Boards {
		for _, k := range board.Keys {
			if _, ok := seen[k.ID()]; ok {
				n++
				continue
			}
			seen[k.ID()] = struct{}{}
		}
	}
	return n
}
