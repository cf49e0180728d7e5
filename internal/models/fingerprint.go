// Package models holds the shared domain types passed between Auralis
// components: the 25-D fingerprint, adaptive mastering parameters,
// recording-type classification, and chunk/session metadata.
package models

import "time"

// SchemaVersion is the current fingerprint schema. Resolvers must
// re-extract whenever a stored fingerprint's version differs from this.
const SchemaVersion uint16 = 1

// SidecarMagic is the 4-byte magic prefix of a fingerprint sidecar file.
var SidecarMagic = [4]byte{'A', 'F', 'P', '1'}

// Fingerprint is the 25-dimensional audio feature vector described in
// spec.md §3, in fixed field order. The order here is load-bearing: it
// is the order serialized to the sidecar file and to store columns.
type Fingerprint struct {
	// Frequency bands (7), fractional energy, sums to ~1.
	SubBass   float64
	Bass      float64
	LowMid    float64
	Mid       float64
	UpperMid  float64
	Presence  float64
	Air       float64

	// Dynamics (3).
	LUFS         float64 // integrated loudness, dB
	CrestFactor  float64 // dB
	BassMidRatio float64 // dB

	// Temporal (4).
	TempoBPM         float64
	RhythmStability  float64 // 0..1
	TransientDensity float64 // 0..1-ish
	SilenceRatio     float64 // 0..1

	// Spectral (3).
	SpectralCentroidHz float64
	SpectralRolloffHz  float64
	SpectralFlatness   float64 // 0..1

	// Harmonic (3).
	HarmonicRatio  float64 // 0..1
	PitchStability float64 // 0..1
	ChromaEnergy   float64 // 0..1

	// Variation (3).
	DynamicRangeVariation float64
	LoudnessVariation     float64
	PeakConsistency       float64

	// Stereo (2).
	StereoWidth       float64 // 0..1, 0 = mono
	PhaseCorrelation  float64 // -1..+1

	// Persistence metadata, not part of the 25 scored dimensions.
	TrackID       string
	SchemaVersion uint16
	CreatedAt     time.Time
}

// FreqBands returns the 7 frequency-band fractions in fixed order.
func (f Fingerprint) FreqBands() [7]float64 {
	return [7]float64{f.SubBass, f.Bass, f.LowMid, f.Mid, f.UpperMid, f.Presence, f.Air}
}

// Neutral returns a zero-valued fingerprint tagged for the given track,
// used when extraction fails or times out and callers must proceed
// without fingerprint-guided parameters. SchemaVersion 0 marks it as
// neutral rather than a real extraction (see IsNeutral).
func Neutral(trackID string) Fingerprint {
	return Fingerprint{
		TrackID: trackID,
	}
}

// IsNeutral reports whether fp carries no real signal (zero schema
// version means it was never actually extracted).
func (f Fingerprint) IsNeutral() bool {
	return f.SchemaVersion == 0
}
