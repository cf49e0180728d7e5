package classifier

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/matiaszanolli/auralis/internal/models"
)

// Classify scores fp against every reference profile and returns the
// best match as a Classification (spec.md §4.5). It is a pure function:
// Classify(fp) == Classify(fp) for any fp, since it only reads fp's
// fields and the fixed profile table.
//
// threshold is config.ClassificationThreshold (0.65): a best score below
// it yields Unknown with NeutralParameters rather than a low-confidence
// guess.
func Classify(fp models.Fingerprint, threshold float64) models.Classification {
	if fp.IsNeutral() {
		return models.Classification{
			Type:       models.Unknown,
			Confidence: 0,
			Params:     models.NeutralParameters(),
		}
	}

	best := profile{}
	bestScore := -1.0

	for _, p := range profiles() {
		s := score(fp, p)
		if s > bestScore {
			bestScore = s
			best = p
		}
	}

	if bestScore < threshold {
		return models.Classification{
			Type:       models.Unknown,
			Confidence: bestScore,
			Params:     models.NeutralParameters(),
		}
	}

	params := fineTune(fp, best)
	params.Confidence = bestScore
	return models.Classification{
		Type:       best.name,
		Confidence: bestScore,
		Params:     params,
	}
}

// score computes a profile's weighted match against fp's dimensions. A
// fingerprint dead-center in a dimension's window scores 1.0 on it; the
// score decays with a Gaussian-like falloff (rather than a hard cutoff)
// so that a near-miss on one dimension doesn't zero the whole profile.
// The per-dimension scores are combined with their fixed weights via a
// weighted mean (gonum/stat.Mean).
func score(fp models.Fingerprint, p profile) float64 {
	dims := []dimensionRange{p.centroidHz, p.bassMidDB, p.stereo, p.crestDB}
	vals := []float64{fp.SpectralCentroidHz, fp.BassMidRatio, fp.StereoWidth, fp.CrestFactor}

	scores := make([]float64, len(dims))
	weights := make([]float64, len(dims))
	for i, d := range dims {
		scores[i] = windowMatch(vals[i], d)
		weights[i] = d.weight
	}
	return stat.Mean(scores, weights)
}

// windowMatch returns 1.0 when v falls inside [lo, hi], decaying
// smoothly outside it proportional to how many half-widths away v is.
func windowMatch(v float64, d dimensionRange) float64 {
	if v >= d.lo && v <= d.hi {
		return 1.0
	}
	dist := 0.0
	if v < d.lo {
		dist = d.lo - v
	} else {
		dist = v - d.hi
	}
	z := dist / d.halfWidth()
	return math.Exp(-0.5 * z * z)
}

// fineTune starts from the profile's base AdaptiveParameters and nudges
// the EQ/stereo/dynamics targets toward fp's actual measured deviation
// from the profile's reference center, so two fingerprints matching the
// same profile at different distances from its center don't receive
// identical parameters (spec.md §4.5: "fine-tune params from the
// fingerprint deltas").
func fineTune(fp models.Fingerprint, p profile) models.AdaptiveParameters {
	params := p.base

	centroidDeltaHz := fp.SpectralCentroidHz - p.centroidHz.center()
	params.TargetCentroidHz = p.base.TargetCentroidHz - 0.25*centroidDeltaHz

	bassMidDelta := fp.BassMidRatio - p.bassMidDB.center()
	params.BassDB = p.base.BassDB - 0.2*bassMidDelta
	params.MidDB = p.base.MidDB + 0.1*bassMidDelta

	stereoDelta := fp.StereoWidth - p.stereo.center()
	params.StereoWidthTarget = clamp(p.base.StereoWidthTarget-0.3*stereoDelta, 0, 1)

	crestDelta := fp.CrestFactor - p.crestDB.center()
	params.CrestTargetMin = p.base.CrestTargetMin - 0.3*crestDelta
	params.CrestTargetMax = p.base.CrestTargetMax - 0.3*crestDelta
	if params.CrestTargetMin < 1 {
		params.CrestTargetMin = 1
	}
	if params.CrestTargetMax < params.CrestTargetMin+1 {
		params.CrestTargetMax = params.CrestTargetMin + 1
	}

	params.Philosophy = p.philosophy
	params.Preset = string(p.name)
	params.Intensity = 0.5

	return params
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
