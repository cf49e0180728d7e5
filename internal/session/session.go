// Package session implements the Stream Controller (C10, spec.md
// §4.10): the per-track session state machine, bridging client control
// messages to the Chunked Processor and bounding output via a
// back-pressured channel.
package session

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/matiaszanolli/auralis/internal/classifier"
	"github.com/matiaszanolli/auralis/internal/chunked"
	"github.com/matiaszanolli/auralis/internal/config"
	"github.com/matiaszanolli/auralis/internal/decoder"
	"github.com/matiaszanolli/auralis/internal/dsp"
	"github.com/matiaszanolli/auralis/internal/logging"
	"github.com/matiaszanolli/auralis/internal/models"
	"github.com/matiaszanolli/auralis/internal/preferences"
	"github.com/matiaszanolli/auralis/internal/resolver"
)

var log = logging.For("session")

// State is a Stream Controller state (spec.md §4.10).
type State string

const (
	Idle      State = "idle"
	Preparing State = "preparing"
	Streaming State = "streaming"
	Paused    State = "paused"
	Seeking   State = "seeking"
	Ended     State = "ended"
	Cancelled State = "cancelled"
)

// Session owns one track's playback state machine. DSP inside a
// session is single-producer (spec.md §5): only one background
// goroutine ever runs chunked.Processor.Stream at a time.
type Session struct {
	Cfg      config.Config
	Resolver *resolver.Resolver
	Decoder  decoder.Decoder
	Prefs    *preferences.PersonalPreferences

	mu               sync.Mutex
	state            State
	trackID          string
	path             string
	preset           string
	intensity        float64
	classification   models.Classification
	totalDurationSec float64
	positionSec      float64
	nextIndex        int

	dspProc *dsp.Processor
	out     chan models.Chunk

	groupCancel context.CancelFunc
	group       *errgroup.Group
}

// New builds an idle Session. out is sized by the caller to bound
// back-pressure (spec.md §5: "writing a chunk to the client channel
// back-pressures the producer").
func New(cfg config.Config, res *resolver.Resolver, dec decoder.Decoder, prefs *preferences.PersonalPreferences, outBuffer int) *Session {
	return &Session{
		Cfg:      cfg,
		Resolver: res,
		Decoder:  dec,
		Prefs:    prefs,
		state:    Idle,
		out:      make(chan models.Chunk, outBuffer),
	}
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Output returns the channel chunks are emitted on.
func (s *Session) Output() <-chan models.Chunk { return s.out }

// Play resolves the track's fingerprint, classifies it once, and
// starts streaming (spec.md §4.10: `play` in `Idle` or any terminal
// state -> `Preparing` -> `Streaming`).
func (s *Session) Play(ctx context.Context, trackID, path, preset string, intensity float64) error {
	s.mu.Lock()
	if s.state != Idle && s.state != Ended && s.state != Cancelled {
		s.mu.Unlock()
		return fmt.Errorf("session: play invalid from state %s", s.state)
	}
	s.state = Preparing
	s.trackID, s.path, s.preset, s.intensity = trackID, path, preset, intensity
	s.mu.Unlock()

	fp := s.Resolver.Resolve(ctx, trackID, path)
	classification := classifier.Classify(fp, s.Cfg.ClassificationThreshold)

	dur, err := s.Decoder.Duration(ctx, path)
	if err != nil {
		s.mu.Lock()
		s.state = Idle
		s.mu.Unlock()
		return fmt.Errorf("session: duration probe failed: %w", err)
	}

	s.mu.Lock()
	s.classification = classification
	s.totalDurationSec = dur
	s.positionSec = 0
	s.nextIndex = 0
	s.dspProc = dsp.NewProcessor(s.Cfg.CanonicalSampleRate, s.Cfg)
	s.state = Streaming
	s.mu.Unlock()

	s.startProducer(0, 0)
	return nil
}

// startProducer launches (or relaunches) the single background
// producer goroutine from the given position/index, supervised by an
// errgroup so its termination is observable (spec.md §5: "a single
// controller task per session").
func (s *Session) startProducer(startSec float64, startIndex int) {
	ctx, cancel := context.WithCancel(context.Background())
	group, gctx := errgroup.WithContext(ctx)

	s.groupCancel = cancel
	s.group = group

	chunkProc := chunked.NewProcessor(s.Decoder, s.dspProc, s.Cfg)
	trackID, path := s.trackID, s.path
	classification := s.classification
	totalDur := s.totalDurationSec
	prefs := s.Prefs
	out := s.out

	group.Go(func() error {
		err := chunkProc.Stream(gctx, trackID, path, totalDur, models.Fingerprint{}, classification, prefs, startSec, startIndex, out)
		if err != nil && gctx.Err() == nil {
			log.Error().Err(err).Str("track_id", trackID).Msg("chunk streaming failed")
		}
		return err
	})
}

// Seek cancels in-flight chunk production, resets DSP state, and
// resumes at the chunk containing positionMs (spec.md §4.10). Seeking
// past the track end transitions directly to Ended with no further
// chunks emitted (spec.md §8 boundary behavior).
func (s *Session) Seek(positionMs int64) error {
	s.mu.Lock()
	if s.state != Streaming && s.state != Paused {
		s.mu.Unlock()
		return fmt.Errorf("session: seek invalid from state %s", s.state)
	}
	s.state = Seeking
	if s.groupCancel != nil {
		s.groupCancel()
	}
	positionSec := float64(positionMs) / 1000.0

	if positionSec >= s.totalDurationSec {
		s.state = Ended
		s.mu.Unlock()
		return nil
	}

	s.positionSec = positionSec
	s.nextIndex = chunked.ChunkCountFor(positionSec, s.Cfg.ChunkDurationSec)
	s.dspProc.Reset()
	s.state = Streaming
	startSec, startIndex := s.positionSec, s.nextIndex
	s.mu.Unlock()

	s.startProducer(startSec, startIndex)
	return nil
}

// SetPreset updates the active preset. Per spec.md §4.10 this takes
// effect at the next chunk boundary; this implementation lets the
// in-flight chunk complete and restarts production from the current
// position with the new preset applied to subsequent chunks.
func (s *Session) SetPreset(preset string) error {
	s.mu.Lock()
	if s.state != Streaming {
		s.mu.Unlock()
		return fmt.Errorf("session: set_preset invalid from state %s", s.state)
	}
	s.preset = preset
	s.classification.Params.Preset = preset
	if s.groupCancel != nil {
		s.groupCancel()
	}
	startSec, startIndex := s.positionSec, s.nextIndex
	s.mu.Unlock()

	s.startProducer(startSec, startIndex)
	return nil
}

// SetIntensity updates the active intensity in [0,1], same boundary
// semantics as SetPreset.
func (s *Session) SetIntensity(intensity float64) error {
	s.mu.Lock()
	if s.state != Streaming {
		s.mu.Unlock()
		return fmt.Errorf("session: set_intensity invalid from state %s", s.state)
	}
	s.intensity = intensity
	s.classification.Params.Intensity = intensity
	if s.groupCancel != nil {
		s.groupCancel()
	}
	startSec, startIndex := s.positionSec, s.nextIndex
	s.mu.Unlock()

	s.startProducer(startSec, startIndex)
	return nil
}

// Pause suspends chunk emission. The producer goroutine itself keeps
// running but further sends to Output() are the caller's
// responsibility to stop draining; for the core's purposes Pause only
// changes the reported state (spec.md §4.10 treats transport-level
// pause as a client-side concern).
func (s *Session) Pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Streaming {
		return fmt.Errorf("session: pause invalid from state %s", s.state)
	}
	s.state = Paused
	return nil
}

// Resume reverses Pause.
func (s *Session) Resume() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Paused {
		return fmt.Errorf("session: resume invalid from state %s", s.state)
	}
	s.state = Streaming
	return nil
}

// Cancel tears down the session deterministically (spec.md §4.10).
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.groupCancel != nil {
		s.groupCancel()
	}
	if s.group != nil {
		_ = s.group.Wait()
	}
	s.state = Cancelled
}
