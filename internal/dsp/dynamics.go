package dsp

import "math"

// dynamicsStage holds the persistent envelope-follower and limiter
// lookahead state for the dynamics section (spec.md §4.8 step 2):
// upward expander, soft-knee compressor, soft-clip, brick-wall limiter.
type dynamicsStage struct {
	compEnvelope float64
	limiterGain  float64 // smoothed gain reduction, 1.0 == unity
	lookahead    []float64
}

func (d *dynamicsStage) reset() {
	d.compEnvelope = 0
	d.limiterGain = 1.0
	d.lookahead = nil
}

const (
	attackCoeff  = 0.3  // envelope attack smoothing per sample
	releaseCoeff = 0.02 // envelope release smoothing per sample
)

// applyExpansion implements the CompressedLoud action from spec.md
// §4.7/§4.8: upward expansion by factor plus a fixed makeup gain, in
// place on interleaved stereo samples.
func applyExpansion(samples []float32, factor, makeupDB float64) {
	makeup := dbToLinear(makeupDB)
	for i, s := range samples {
		v := float64(s)
		expanded := v * (1 + factor)
		samples[i] = float32(clampF(expanded*makeup, -1, 1))
	}
}

// philosophyCompressionAmount maps the processing philosophy to a
// compressor ratio and knee width (spec.md §4.8: "correct most
// aggressive, punch moderate, enhance subtle").
func philosophyCompressionAmount(philosophy string) (ratio, kneeDB float64) {
	switch philosophy {
	case "correct":
		return 4.0, 6.0
	case "punch":
		return 2.5, 4.0
	default: // enhance, neutral
		return 1.8, 3.0
	}
}

// applyCompressor is a soft-knee feed-forward compressor with a
// persistent envelope follower. thresholdDB is in dBFS; Process passes
// crestTargetMax minus 3 dB, negated.
func (d *dynamicsStage) applyCompressor(samples []float32, thresholdDB, ratio, kneeDB float64) {
	for i, s := range samples {
		v := float64(s)
		level := math.Abs(v)
		levelDB := linearToDB(level)

		coeff := releaseCoeff
		if levelDB > d.compEnvelope {
			coeff = attackCoeff
		}
		d.compEnvelope += coeff * (levelDB - d.compEnvelope)

		gainDB := 0.0
		over := d.compEnvelope - thresholdDB
		switch {
		case over <= -kneeDB/2:
			gainDB = 0
		case over >= kneeDB/2:
			gainDB = (thresholdDB - d.compEnvelope) * (1 - 1/ratio)
		default:
			knee := over + kneeDB/2
			gainDB = -knee * knee / (2 * kneeDB) * (1 - 1/ratio)
		}

		samples[i] = float32(clampF(v*dbToLinear(gainDB), -1, 1))
	}
}

// applySoftClip is a tanh-based soft clipper, applied ahead of the
// limiter under QuietModerate when the parameters' philosophy is
// "correct" (spec.md §4.8).
func applySoftClip(samples []float32, driveDB float64) {
	drive := dbToLinear(driveDB)
	for i, s := range samples {
		v := float64(s) * drive
		samples[i] = float32(math.Tanh(v))
	}
}

// applyLimiter is a brick-wall peak limiter with a smoothed gain
// reduction (persistent across chunks) driven by the current sample,
// with no lookahead. While the gain settles, each output sample is
// hard-clamped to at most 0.1 dB above ceilingDB (spec.md §4.8 contract).
func (d *dynamicsStage) applyLimiter(samples []float32, ceilingDB float64) {
	ceiling := dbToLinear(ceilingDB)
	for i, s := range samples {
		v := float64(s)
		level := math.Abs(v)

		targetGain := 1.0
		if level*d.limiterGain > ceiling && level > 0 {
			targetGain = ceiling / level
		}

		coeff := releaseCoeff
		if targetGain < d.limiterGain {
			coeff = attackCoeff * 2
		}
		d.limiterGain += coeff * (targetGain - d.limiterGain)
		if d.limiterGain > 1.0 {
			d.limiterGain = 1.0
		}

		out := v * d.limiterGain
		maxOut := ceiling * dbToLinear(0.1)
		samples[i] = float32(clampF(out, -maxOut, maxOut))
	}
}

func dbToLinear(db float64) float64 { return math.Pow(10, db/20) }

func linearToDB(v float64) float64 {
	if v <= 1e-9 {
		return -180
	}
	return 20 * math.Log10(v)
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
