package store

import (
	"testing"
	"time"

	"github.com/matiaszanolli/auralis/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleFingerprint() models.Fingerprint {
	return models.Fingerprint{
		SubBass: 0.1, Bass: 0.2, LowMid: 0.15, Mid: 0.25, UpperMid: 0.1, Presence: 0.1, Air: 0.1,
		LUFS: -14.2, CrestFactor: 8.5, BassMidRatio: 3.1,
		TempoBPM: 120, RhythmStability: 0.7, TransientDensity: 0.3, SilenceRatio: 0.02,
		SpectralCentroidHz: 1800, SpectralRolloffHz: 9000, SpectralFlatness: 0.3,
		HarmonicRatio: 0.6, PitchStability: 0.5, ChromaEnergy: 0.4,
		DynamicRangeVariation: 0.2, LoudnessVariation: 0.1, PeakConsistency: 0.9,
		StereoWidth: 0.4, PhaseCorrelation: 0.8,
		TrackID:       "trk-1",
		SchemaVersion: models.SchemaVersion,
		CreatedAt:     time.Now().UTC(),
	}
}

func TestSidecarRoundTrip(t *testing.T) {
	fp := sampleFingerprint()
	data := EncodeSidecar(fp)
	require.Len(t, data, SidecarSize)

	decoded, err := DecodeSidecar(data)
	require.NoError(t, err)

	assert.InDelta(t, fp.SubBass, decoded.SubBass, 1e-5)
	assert.InDelta(t, fp.Air, decoded.Air, 1e-5)
	assert.InDelta(t, fp.LUFS, decoded.LUFS, 1e-4)
	assert.InDelta(t, fp.StereoWidth, decoded.StereoWidth, 1e-5)
	assert.InDelta(t, fp.PhaseCorrelation, decoded.PhaseCorrelation, 1e-5)
	assert.Equal(t, fp.SchemaVersion, decoded.SchemaVersion)
}

func TestDecodeSidecar_BadMagic(t *testing.T) {
	data := make([]byte, SidecarSize)
	_, err := DecodeSidecar(data)
	assert.Error(t, err)
}

func TestDecodeSidecar_Truncated(t *testing.T) {
	_, err := DecodeSidecar(make([]byte, 10))
	assert.Error(t, err)
}
