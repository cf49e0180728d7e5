package dynamics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/matiaszanolli/auralis/internal/models"
)

// loudCompressedSamples builds a near-full-scale square-ish wave (low
// crest factor, high loudness) that should land in CompressedLoud.
func loudCompressedSamples(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		if i%2 == 0 {
			out[i] = 0.95
		} else {
			out[i] = -0.95
		}
	}
	return out
}

// quietDynamicSamples builds a low-amplitude sine (low loudness, normal
// crest) that should land in QuietModerate.
func quietDynamicSamples(n int, sampleRate int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 0.05 * math.Sin(2*math.Pi*440*float64(i)/float64(sampleRate))
	}
	return out
}

func TestDecide_LoudLowCrest_IsCompressedLoud(t *testing.T) {
	d := Decide("trk-1", 0, loudCompressedSamples(44100), 44100)
	assert.Equal(t, models.CompressedLoud, d.Kind)
	assert.GreaterOrEqual(t, d.ExpansionFactor, 0.1)
	assert.LessOrEqual(t, d.ExpansionFactor, 0.5)
	assert.Equal(t, -0.5, d.MakeupDB)
}

func TestDecide_Quiet_IsQuietModerate(t *testing.T) {
	d := Decide("trk-2", 0, quietDynamicSamples(44100, 44100), 44100)
	assert.Equal(t, models.QuietModerate, d.Kind)
}

func TestDecide_MatchesModelsClassifyDynamics(t *testing.T) {
	samples := loudCompressedSamples(44100)
	d := Decide("trk-3", 0, samples, 44100)
	want := models.ClassifyDynamics(d.LUFS, d.CrestDB)
	assert.Equal(t, want, d)
}
