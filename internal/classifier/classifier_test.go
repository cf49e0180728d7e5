package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/matiaszanolli/auralis/internal/models"
)

func studioFingerprint() models.Fingerprint {
	return models.Fingerprint{
		SpectralCentroidHz: 700,
		BassMidRatio:       0.5,
		StereoWidth:        0.40,
		CrestFactor:        6.2,
	}
}

func bootlegFingerprint() models.Fingerprint {
	return models.Fingerprint{
		SpectralCentroidHz: 450,
		BassMidRatio:       14.5,
		StereoWidth:        0.20,
		CrestFactor:        5.5,
	}
}

func ambiguousFingerprint() models.Fingerprint {
	return models.Fingerprint{
		SpectralCentroidHz: 3000,
		BassMidRatio:       -20,
		StereoWidth:        0.9,
		CrestFactor:        1,
	}
}

func TestClassify_Deterministic(t *testing.T) {
	fp := studioFingerprint()
	a := Classify(fp, 0.65)
	b := Classify(fp, 0.65)
	assert.Equal(t, a, b)
}

func TestClassify_StudioMatch(t *testing.T) {
	c := Classify(studioFingerprint(), 0.65)
	assert.Equal(t, models.Studio, c.Type)
	assert.GreaterOrEqual(t, c.Confidence, 0.65)
	assert.Equal(t, models.PhilosophyEnhance, c.Params.Philosophy)
}

func TestClassify_BootlegMatch(t *testing.T) {
	c := Classify(bootlegFingerprint(), 0.65)
	assert.Equal(t, models.Bootleg, c.Type)
	assert.Equal(t, models.PhilosophyCorrect, c.Params.Philosophy)
}

func TestClassify_BelowThreshold_YieldsUnknown(t *testing.T) {
	c := Classify(ambiguousFingerprint(), 0.65)
	assert.Equal(t, models.Unknown, c.Type)
	assert.Equal(t, models.NeutralParameters(), c.Params)
	assert.Less(t, c.Confidence, 0.65)
}

func TestClassify_ThresholdBoundary_ExactlyAtThresholdIsNotUnknown(t *testing.T) {
	fp := studioFingerprint()
	c := Classify(fp, score(fp, profiles()[0]))
	assert.NotEqual(t, models.Unknown, c.Type)
}

func TestClassify_FineTune_TracksDeviationFromCenter(t *testing.T) {
	centered := Classify(studioFingerprint(), 0.65)

	offCenter := studioFingerprint()
	offCenter.SpectralCentroidHz = 780
	off := Classify(offCenter, 0.65)

	assert.NotEqual(t, centered.Params.TargetCentroidHz, off.Params.TargetCentroidHz)
}

func TestClassify_ConfidenceMatchesBestScore(t *testing.T) {
	fp := studioFingerprint()
	c := Classify(fp, 0.0)
	assert.InDelta(t, c.Confidence, c.Params.Confidence, 1e-9)
}

func TestClassify_Neutral_YieldsZeroConfidence(t *testing.T) {
	c := Classify(models.Neutral("x"), 0.65)
	assert.Equal(t, models.Unknown, c.Type)
	assert.Equal(t, 0.0, c.Confidence)
	assert.Equal(t, models.NeutralParameters(), c.Params)
}
