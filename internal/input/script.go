package input

import "fmt"

// Span holds a set of keys for an inclusive range of frames.
type Span struct {
	FromFrame int   `json:"from_frame"`
	ToFrame   int   `json:"to_frame"` // inclusive
	Keys      []Key `json:"keys"`
}

// Script replays held keys frame by frame for headless runs.
// Overlapping spans combine their keys.
type Script struct {
	Spans []Span
	frame int
}

// NewScript validates spans and returns a script positioned at frame 0.
func NewScript(spans []Span) (*Script, error) {
	for i, s := range spans {
		if s.FromFrame < 0 || s.ToFrame < s.FromFrame {
			return nil, fmt.Errorf("span %d: invalid frame range [%d, %d]", i, s.FromFrame, s.ToFrame)
		}
	}
	return &Script{Spans: spans}, nil
}

// At returns the keys held at the given frame.
func (s *Script) At(frame int) Snapshot {
	snap := Snapshot{}
	for _, span := range s.Spans {
		if frame < span.FromFrame || frame > span.ToFrame {
			continue
		}
		for _, k := range span.Keys {
			snap[k] = true
		}
	}
	return snap
}

// Next returns the snapshot for the current frame and advances the script.
func (s *Script) Next() Snapshot {
	snap := s.At(s.frame)
	s.frame++
	return snap
}

// Frame returns the index of the next frame Next will return.
func (s *Script) Frame() int { return s.frame }
