// Package input models the logical keys the vehicle controller reads each
// frame and the sources that answer "is this key held".
package input

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Key is a logical control, independent of the physical keyboard layout.
type Key string

const (
	Forward      Key = "forward"
	Backward     Key = "backward"
	Left         Key = "left"
	Right        Key = "right"
	Brake        Key = "brake"
	ToggleLights Key = "toggle-lights"
	Reset        Key = "reset"
)

// Keys lists every logical key in a stable order.
var Keys = []Key{Forward, Backward, Left, Right, Brake, ToggleLights, Reset}

// ParseKey validates a logical key name.
func ParseKey(s string) (Key, error) {
	for _, k := range Keys {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown key %q", s)
}

// UnmarshalJSON rejects key names outside the logical key set.
func (k *Key) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseKey(s)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Source answers whether a logical key is currently held.
type Source interface {
	IsPressed(k Key) bool
}

// Snapshot is a frozen view of held keys. The zero value holds nothing.
type Snapshot map[Key]bool

func (s Snapshot) IsPressed(k Key) bool { return s[k] }

// Held returns a snapshot with the given keys held.
func Held(keys ...Key) Snapshot {
	s := make(Snapshot, len(keys))
	for _, k := range keys {
		s[k] = true
	}
	return s
}

// Capture freezes the current state of src for every logical key.
func Capture(src Source) Snapshot {
	s := make(Snapshot, len(Keys))
	for _, k := range Keys {
		if src.IsPressed(k) {
			s[k] = true
		}
	}
	return s
}

// Pressed returns the held keys in the order of Keys.
func (s Snapshot) Pressed() []Key {
	var out []Key
	for _, k := range Keys {
		if s[k] {
			out = append(out, k)
		}
	}
	return out
}

// Keymap maps physical key names (for example "KeyW") to logical keys.
type Keymap map[string]Key

// DefaultKeymap binds WASD, the arrow keys, Space, L and R.
func DefaultKeymap() Keymap {
	return Keymap{
		"KeyW":       Forward,
		"ArrowUp":    Forward,
		"KeyS":       Backward,
		"ArrowDown":  Backward,
		"KeyA":       Left,
		"ArrowLeft":  Left,
		"KeyD":       Right,
		"ArrowRight": Right,
		"Space":      Brake,
		"KeyL":       ToggleLights,
		"KeyR":       Reset,
	}
}

// Physical returns the physical key names bound to k, sorted.
func (m Keymap) Physical(k Key) []string {
	var out []string
	for name, logical := range m {
		if logical == k {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// PhysicalState reports whether a physical key is held.
type PhysicalState interface {
	IsPhysicalPressed(name string) bool
}

// Mapped adapts a physical key state to a logical Source through a keymap.
type Mapped struct {
	Keymap Keymap
	State  PhysicalState
}

func (m Mapped) IsPressed(k Key) bool {
	for name, logical := range m.Keymap {
		if logical == k && m.State.IsPhysicalPressed(name) {
			return true
		}
	}
	return false
}
