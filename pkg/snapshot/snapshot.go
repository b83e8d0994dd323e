// Package snapshot defines the state messages streamed by the installation
// controller and decodes them at the connection boundary.
//
// Every top-level key is optional. A snapshot is a sparse patch: a key that
// is absent means "no update for this aspect". Presence is tracked
// explicitly with Opt so consumers never have to guess between "absent" and
// "zero".
package snapshot

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformed is wrapped by every decode failure.
var ErrMalformed = errors.New("snapshot: malformed message")

// Opt is an optional wire field.
type Opt[T any] struct {
	Value T
	Set   bool // key was present
	Null  bool // key was present with a null value
}

// Some returns a present, non-null field.
func Some[T any](v T) Opt[T] {
	return Opt[T]{Value: v, Set: true}
}

// Get returns the value and whether it is present and non-null.
func (o Opt[T]) Get() (T, bool) {
	return o.Value, o.Set && !o.Null
}

// Or returns the value when present and non-null, def otherwise.
func (o Opt[T]) Or(def T) T {
	if v, ok := o.Get(); ok {
		return v
	}
	return def
}

// UnmarshalJSON is only invoked for keys present in the payload.
func (o *Opt[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		var zero T
		o.Value, o.Null = zero, true
		return nil
	}
	o.Null = false
	return json.Unmarshal(data, &o.Value)
}

// MarshalJSON writes null for absent or null fields. Use omitzero on the
// containing struct field to drop absent keys.
func (o Opt[T]) MarshalJSON() ([]byte, error) {
	if v, ok := o.Get(); ok {
		return json.Marshal(v)
	}
	return []byte("null"), nil
}

// IsZero reports an absent field, for omitzero.
func (o Opt[T]) IsZero() bool {
	return !o.Set
}

// State is one snapshot from the upstream source.
type State struct {
	Light          Opt[Light]           `json:"light,omitzero"`
	Panels         Opt[[]int]           `json:"panels,omitzero"`
	People         Opt[[]PersonReading] `json:"people,omitzero"`
	Mode           Opt[string]          `json:"mode,omitzero"`
	Status         Opt[string]          `json:"status,omitzero"`
	RealtimeTrends Opt[RealtimeTrends]  `json:"realtime_trends,omitzero"`
	DailyReport    Opt[DailyReport]     `json:"daily_report,omitzero"`
	ReportVersion  Opt[int64]           `json:"report_version,omitzero"`
}

// Light is the movable light source.
type Light struct {
	X             float64      `json:"x"`
	Y             float64      `json:"y"`
	Z             float64      `json:"z"`
	Brightness    Opt[float64] `json:"brightness,omitzero"`     // 0..1
	FalloffRadius Opt[float64] `json:"falloff_radius,omitzero"` // cm
}

// PersonReading is one tracked person. ID is stable across snapshots.
type PersonReading struct {
	ID int     `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
	Z  float64 `json:"z"`
}

// Decode parses one raw payload. Unknown keys are ignored and no defaults
// are applied; a failed decode returns an error wrapping ErrMalformed and
// no partial state.
func Decode(data []byte) (*State, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrMalformed)
	}
	if trimmed[0] != '{' {
		return nil, fmt.Errorf("%w: payload is not a JSON object", ErrMalformed)
	}

	var s State
	if err := json.Unmarshal(trimmed, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return &s, nil
}

// Encode marshals a snapshot back to its wire form. Absent fields are omitted.
func Encode(s *State) ([]byte, error) {
	return json.Marshal(s)
}
