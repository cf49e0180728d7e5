// Package preferences implements the Personal Preferences Layer (C6,
// spec.md §4.6): per-recording-type parameter offsets applied on top of
// the classifier's output, plus an offline feedback-intake log.
package preferences

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/matiaszanolli/auralis/internal/logging"
	"github.com/matiaszanolli/auralis/internal/models"
)

var log = logging.For("preferences")

// Offsets are the per-type adjustments a user's preferences layer adds
// on top of the classifier's AdaptiveParameters.
type Offsets struct {
	BassDB            float64 `json:"bass_db"`
	MidDB             float64 `json:"mid_db"`
	TrebleDB          float64 `json:"treble_db"`
	StereoWidthTarget float64 `json:"stereo_width_target"`
	IntensityBias     float64 `json:"intensity_bias"`
}

// PersonalPreferences is a sparse, process-wide map of per-RecordingType
// offsets, initialized from disk on startup (spec.md §4.6).
type PersonalPreferences struct {
	Version int                                    `json:"version"`
	ByType  map[models.RecordingType]Offsets `json:"by_type"`

	mu   sync.RWMutex
	path string
}

// Load reads preferences from path, or returns an empty (version 0)
// PersonalPreferences if the file doesn't exist yet.
func Load(path string) (*PersonalPreferences, error) {
	p := &PersonalPreferences{ByType: map[models.RecordingType]Offsets{}, path: path}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return p, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, p); err != nil {
		return nil, err
	}
	p.path = path
	if p.ByType == nil {
		p.ByType = map[models.RecordingType]Offsets{}
	}
	return p, nil
}

// Apply adds the per-type offset (if any) to params, returning a new
// AdaptiveParameters (spec.md §4.6: `apply(params, detected_type) ->
// params'`). Unknown types with no recorded offset pass through
// unchanged.
func (p *PersonalPreferences) Apply(params models.AdaptiveParameters, detected models.RecordingType) models.AdaptiveParameters {
	p.mu.RLock()
	off, ok := p.ByType[detected]
	p.mu.RUnlock()
	if !ok {
		return params
	}

	out := params
	out.BassDB += off.BassDB
	out.MidDB += off.MidDB
	out.TrebleDB += off.TrebleDB
	out.StereoWidthTarget = clamp01(out.StereoWidthTarget + off.StereoWidthTarget)
	out.Intensity = clamp01(out.Intensity + off.IntensityBias)
	return out
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Snapshot returns a deep-enough copy of the current preferences for
// read-only inspection (e.g. `auralis prefs show`) without holding the
// lock across formatting or I/O.
func (p *PersonalPreferences) Snapshot() PersonalPreferences {
	p.mu.RLock()
	defer p.mu.RUnlock()
	cp := map[models.RecordingType]Offsets{}
	for k, v := range p.ByType {
		cp[k] = v
	}
	return PersonalPreferences{Version: p.Version, ByType: cp}
}

// RegressionSuite validates a candidate PersonalPreferences before it is
// committed. It returns an error describing the first failure, or nil
// if the candidate passes.
type RegressionSuite func(candidate *PersonalPreferences) error

// Update implements the explicit preferences-update operation from
// spec.md §4.6: (a) load current preferences, (b) write a candidate new
// version, (c) run the regression suite against it, (d) commit only on
// pass. On failure the on-disk preferences and in-memory state are left
// untouched.
func (p *PersonalPreferences) Update(mutate func(*PersonalPreferences), suite RegressionSuite) error {
	p.mu.Lock()
	candidate := &PersonalPreferences{
		Version: p.Version + 1,
		ByType:  map[models.RecordingType]Offsets{},
		path:    p.path,
	}
	for k, v := range p.ByType {
		candidate.ByType[k] = v
	}
	p.mu.Unlock()

	mutate(candidate)

	if suite != nil {
		if err := suite(candidate); err != nil {
			log.Warn().Err(err).Int("candidate_version", candidate.Version).
				Msg("preferences regression suite failed, discarding candidate")
			return err
		}
	}

	if err := candidate.save(); err != nil {
		return err
	}

	p.mu.Lock()
	p.Version = candidate.Version
	p.ByType = candidate.ByType
	p.mu.Unlock()
	log.Info().Int("version", candidate.Version).Msg("preferences committed")
	return nil
}

// save writes the candidate to a staging file and renames it over the
// live path, so a crash mid-write never corrupts the committed file.
func (p *PersonalPreferences) save() error {
	if p.path == "" {
		return nil
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	staging := p.path + ".staging"
	if err := os.MkdirAll(filepath.Dir(p.path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(staging, data, 0o644); err != nil {
		return err
	}
	return os.Rename(staging, p.path)
}
