// Package replay serves recorded installation snapshots over the upstream
// websocket protocol, for local development without the ceiling hardware.
package replay

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrEmpty is returned for a recording with no snapshots.
var ErrEmpty = errors.New("replay: recording has no snapshots")

// maxLine bounds one recorded snapshot.
const maxLine = 1 << 20

// Source is an in-memory recording, one JSON object per snapshot.
type Source struct {
	frames [][]byte
}

// NewSource builds a source from already-encoded snapshots.
func NewSource(frames ...[]byte) (*Source, error) {
	if len(frames) == 0 {
		return nil, ErrEmpty
	}
	return &Source{frames: frames}, nil
}

// Parse reads a JSON-lines recording. Blank lines and lines starting with
// '#' are skipped; any other line must be a JSON object.
func Parse(r io.Reader) (*Source, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLine)

	var frames [][]byte
	line := 0
	for scanner.Scan() {
		line++
		b := bytes.TrimSpace(scanner.Bytes())
		if len(b) == 0 || b[0] == '#' {
			continue
		}
		if b[0] != '{' || !json.Valid(b) {
			return nil, fmt.Errorf("replay: line %d: not a JSON object", line)
		}
		frames = append(frames, bytes.Clone(b))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("replay: read: %w", err)
	}
	return NewSource(frames...)
}

// LoadFile reads a JSON-lines recording from disk.
func LoadFile(path string) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("replay: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Len returns the number of snapshots.
func (s *Source) Len() int { return len(s.frames) }

// Frame returns snapshot i.
func (s *Source) Frame(i int) []byte { return s.frames[i] }
