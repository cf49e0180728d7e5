// Package control defines the bidirectional control-channel message
// types (spec.md §6) and an abstract Transport boundary. Framing,
// serialization, and the concrete wire protocol are explicitly out of
// scope (spec.md Non-goals); this package only fixes the semantic
// message shapes a transport implementation carries.
package control

import "github.com/matiaszanolli/auralis/internal/models"

// Play starts streaming a track (client -> core).
type Play struct {
	TrackID   string
	Preset    string
	Intensity float64
}

// Pause suspends chunk emission for the current session.
type Pause struct{}

// Resume resumes chunk emission after a Pause.
type Resume struct{}

// Seek moves the session to a new playback position.
type Seek struct {
	PositionMs int64
}

// SetPreset changes the active preset; takes effect at the next chunk
// boundary (spec.md §4.10).
type SetPreset struct {
	Preset string
}

// SetIntensity changes the active intensity in [0, 1]; takes effect at
// the next chunk boundary.
type SetIntensity struct {
	Intensity float64
}

// Stop tears down the session.
type Stop struct{}

// RateTrack records user feedback for a track (spec.md §4.6).
type RateTrack struct {
	TrackID string
	Rating  int // 1..5
	Comment string
}

// StreamStart announces session parameters (core -> client).
type StreamStart struct {
	SampleRate int
	Channels   int
	TotalMs    int64
	ChunkMs    int64
}

// ChunkMessage carries one emitted chunk's payload and diagnostics
// (core -> client). Named ChunkMessage to avoid colliding with
// models.Chunk, the internal representation this wraps.
type ChunkMessage struct {
	Index    int
	Bytes    []byte
	Decision models.DynamicsDecisionKind
	LUFS     float64
	Crest    float64
	Stalled  bool
}

// StreamEnd announces the session reached the end of the track.
type StreamEnd struct{}

// ErrorMessage reports a non-fatal, client-visible error
// (core -> client).
type ErrorMessage struct {
	Kind    string
	Message string
}

// Progress reports playback position (core -> client).
type Progress struct {
	MsEmitted int64
}

// Transport is the semantic boundary between the session state machine
// and a concrete wire protocol (HTTP/WebSocket/etc, explicitly out of
// scope here). Implementations own framing and serialization.
type Transport interface {
	Send(msg any) error
	Recv() (any, error)
}
