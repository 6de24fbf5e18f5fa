package layout

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"

	"gopkg.in/ini.v1"
)

// Document is a parsed layout file that can be edited and written back
// without losing sections and keys this package does not understand.
type Document struct {
	file   *ini.File
	Layout Layout
}

// LoadDocument reads the layout file at path for editing.
func LoadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading layout file: %w", err)
	}
	return ParseDocument(data)
}

// ParseDocument parses layout file contents for editing.
func ParseDocument(data []byte) (*Document, error) {
	f, err := loadINI(data)
	if err != nil {
		return nil, err
	}
	l, err := fromFile(f)
	if err != nil {
		return nil, err
	}
	return &Document{file: f, Layout: *l}, nil
}

// Set replaces the document's layout. Only Key_N, Chan_N and Col_N values
// whose content changed are rewritten.
func (d *Document) Set(l Layout) {
	for b := 0; b < Boards; b++ {
		sec := d.file.Section(SectionName(b))
		for i := 0; i < KeysPerBoard; i++ {
			old, cur := d.Layout.Boards[b].Keys[i], l.Boards[b].Keys[i]
			if old.Note != cur.Note {
				sec.Key(fmt.Sprintf("Key_%d", i)).SetValue(strconv.Itoa(int(cur.Note)))
			}
			if old.Chan != cur.Chan {
				sec.Key(fmt.Sprintf("Chan_%d", i)).SetValue(strconv.Itoa(int(cur.Chan) + 1))
			}
			if old.Color != cur.Color {
				sec.Key(fmt.Sprintf("Col_%d", i)).SetValue(FormatColor(cur.Color))
			}
		}
	}
	d.Layout = l
}

// WriteTo writes the document in the compact key=value form the Lumatone
// editor produces.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	var buf bytes.Buffer
	if _, err := d.file.WriteTo(&buf); err != nil {
		return 0, err
	}
	n, err := w.Write(compact(buf.Bytes()))
	return int64(n), err
}

// compact strips the padding ini puts around "=" when it aligns keys.
// ini only offers that as a package-wide switch, so it is undone here.
func compact(data []byte) []byte {
	lines := bytes.SplitAfter(data, []byte("\n"))
	out := make([]byte, 0, len(data))
	for _, line := range lines {
		trimmed := bytes.TrimSpace(line)
		i := bytes.IndexByte(line, '=')
		if i < 0 || len(trimmed) == 0 || trimmed[0] == '[' || trimmed[0] == ';' || trimmed[0] == '#' {
			out = append(out, line...)
			continue
		}
		out = append(out, bytes.TrimRight(line[:i], " \t")...)
		out = append(out, '=')
		out = append(out, bytes.TrimLeft(line[i+1:], " \t")...)
	}
	return out
}

// Save writes the document to path.
func (d *Document) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := d.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}
