package dsp

import (
	"github.com/matiaszanolli/auralis/internal/config"
	"github.com/matiaszanolli/auralis/internal/models"
)

// Processor applies the C8 DSP pipeline to successive chunks of one
// session, keeping filter and envelope state alive across chunks and
// resetting it on seek (spec.md §4.8: "Filter state... persists across
// chunks within a session. On seek, state is reset").
type Processor struct {
	SampleRate int
	Ceiling    float64 // dBFS, e.g. config.DefaultCeilingDB

	eq       eqStage
	dynamics dynamicsStage
}

// NewProcessor builds a Processor bound to sampleRate, with the ceiling
// taken from cfg.DefaultCeilingDB.
func NewProcessor(sampleRate int, cfg config.Config) *Processor {
	p := &Processor{SampleRate: sampleRate, Ceiling: cfg.DefaultCeilingDB}
	p.Reset()
	return p
}

// Reset clears all persistent filter/envelope state. Callers invoke
// this on seek; the next chunk begins with silence-primed filters
// (spec.md §4.8).
func (p *Processor) Reset() {
	p.eq.reset()
	p.dynamics.reset()
}

// Process applies the full pipeline to one chunk's interleaved stereo
// samples in place, driven by params (already confidence-blended with
// baseline by the caller) and decision (the C7 dynamics policy
// outcome). Output length is always identical to input length (spec.md
// §4.8 contract).
func (p *Processor) Process(samples []float32, params models.AdaptiveParameters, decision models.DynamicsDecision) {
	if decision.Kind != models.DynamicLoud {
		p.applyEQ(samples, params)
	}

	switch decision.Kind {
	case models.CompressedLoud:
		applyExpansion(samples, decision.ExpansionFactor, decision.MakeupDB)
	case models.QuietModerate:
		ratio, knee := philosophyCompressionAmount(string(params.Philosophy))
		threshold := params.CrestTargetMax - 3.0
		p.dynamics.applyCompressor(samples, -threshold, ratio, knee)
		if params.Philosophy == models.PhilosophyCorrect {
			applySoftClip(samples, 1.5)
		}
	case models.DynamicLoud:
		// pass-through: no dynamics processing.
	}

	p.dynamics.applyLimiter(samples, p.Ceiling)

	if decision.Kind != models.DynamicLoud {
		applyStereoWidth(samples, params.StereoWidthTarget)
	}

	if decision.Kind == models.QuietModerate {
		applyLoudnessNormalization(samples, params.RMSAdjustDB)
	}
}

func (p *Processor) applyEQ(samples []float32, params models.AdaptiveParameters) {
	coeffs := eqCoeffs(params.BassDB, params.MidDB, params.TrebleDB, params.TargetCentroidHz, p.SampleRate)

	left := make([]float64, 0, len(samples)/2)
	right := make([]float64, 0, len(samples)/2)
	for i := 0; i+1 < len(samples); i += 2 {
		left = append(left, float64(samples[i]))
		right = append(right, float64(samples[i+1]))
	}

	processChannel(&p.eq.left, coeffs, left)
	processChannel(&p.eq.right, coeffs, right)

	for i := range left {
		samples[i*2] = float32(left[i])
		samples[i*2+1] = float32(right[i])
	}
}

// BlendConfidence scales an effect strength by classification
// confidence, capped at cfg.ConfidenceCap so the baseline/preferences
// dominate when the classifier is unsure (spec.md §4.8: "confidence cap
// 0.7 so user/baseline preferences dominate when certainty is low").
func BlendConfidence(target, baseline, confidence, cap float64) float64 {
	c := confidence
	if c > cap {
		c = cap
	}
	return baseline + c*(target-baseline)
}

// BlendParameters applies BlendConfidence to BassDB, MidDB, TrebleDB and
// RMSAdjustDB against NeutralParameters, and to StereoWidthTarget against
// a fixed 0.4, producing the actual parameters the Processor should
// apply for this chunk. All other fields are passed through unchanged.
func BlendParameters(params models.AdaptiveParameters, confidence, cap float64) models.AdaptiveParameters {
	baseline := models.NeutralParameters()
	out := params
	out.BassDB = BlendConfidence(params.BassDB, baseline.BassDB, confidence, cap)
	out.MidDB = BlendConfidence(params.MidDB, baseline.MidDB, confidence, cap)
	out.TrebleDB = BlendConfidence(params.TrebleDB, baseline.TrebleDB, confidence, cap)
	out.StereoWidthTarget = BlendConfidence(params.StereoWidthTarget, 0.4, confidence, cap)
	out.RMSAdjustDB = BlendConfidence(params.RMSAdjustDB, baseline.RMSAdjustDB, confidence, cap)
	return out
}
