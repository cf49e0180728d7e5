package fingerprint

import "math"

// biquadCoeffs holds one biquad stage's coefficients (a0 == 1).
// kWeightingStages returns the BS.1770 two-stage K-weighting filter
// (stage 1: high-shelf pre-filter, stage 2: RLB high-pass) for the two
// canonical sample rates this spec supports.
type biquadCoeffs struct {
	b0, b1, b2 float64
	a1, a2     float64
}

func kWeightingStages(sampleRate int) (shelf, highpass biquadCoeffs) {
	switch sampleRate {
	case 48000:
		return biquadCoeffs{1.53512485958697, -2.69169618940638, 1.19839281085285, -1.69065929318241, 0.73248077421585},
			biquadCoeffs{1.0, -2.0, 1.0, -1.99004745483398, 0.99007225036621}
	default: // 44100 and any other supported canonical rate
		return biquadCoeffs{1.53089123827742, -2.65093832358910, 1.16907998013039, -1.66365511325602, 0.71259542807323},
			biquadCoeffs{1.0, -2.0, 1.0, -1.98916967362980, 0.98919903578704}
	}
}

func applyBiquad(c biquadCoeffs, x []float64) []float64 {
	y := make([]float64, len(x))
	var x1, x2, y1, y2 float64
	for i, xn := range x {
		yn := c.b0*xn + c.b1*x1 + c.b2*x2 - c.a1*y1 - c.a2*y2
		y[i] = yn
		x2, x1 = x1, xn
		y2, y1 = y1, yn
	}
	return y
}

func kWeight(mono []float64, sampleRate int) []float64 {
	shelf, highpass := kWeightingStages(sampleRate)
	return applyBiquad(highpass, applyBiquad(shelf, mono))
}

const (
	gateBlockSec    = 0.4
	gateOverlapFrac = 0.75
	absoluteGateLU  = -70.0
	relativeGateLU  = -10.0
)

// integratedLUFS computes ITU-R BS.1770-style integrated loudness with
// absolute and relative gating (spec.md §4.2).
func integratedLUFS(mono []float64, sampleRate int) float64 {
	weighted := kWeight(mono, sampleRate)

	blockLen := int(gateBlockSec * float64(sampleRate))
	if blockLen <= 0 || len(weighted) < blockLen {
		return meanSquareToLUFS(meanSquare(weighted))
	}
	step := int(float64(blockLen) * (1 - gateOverlapFrac))
	if step <= 0 {
		step = blockLen
	}

	var blockMS []float64
	for start := 0; start+blockLen <= len(weighted); start += step {
		blockMS = append(blockMS, meanSquare(weighted[start:start+blockLen]))
	}
	if len(blockMS) == 0 {
		return meanSquareToLUFS(meanSquare(weighted))
	}

	// absolute gate
	var absGated []float64
	for _, ms := range blockMS {
		if meanSquareToLUFS(ms) >= absoluteGateLU {
			absGated = append(absGated, ms)
		}
	}
	if len(absGated) == 0 {
		return absoluteGateLU
	}

	ungatedMean := meanOf(absGated)
	ungatedLoudness := meanSquareToLUFS(ungatedMean)
	relThreshold := ungatedLoudness + relativeGateLU

	var relGated []float64
	for _, ms := range absGated {
		if meanSquareToLUFS(ms) >= relThreshold {
			relGated = append(relGated, ms)
		}
	}
	if len(relGated) == 0 {
		relGated = absGated
	}

	return meanSquareToLUFS(meanOf(relGated))
}

func meanSquare(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	var sum float64
	for _, v := range x {
		sum += v * v
	}
	return sum / float64(len(x))
}

func meanOf(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	var sum float64
	for _, v := range x {
		sum += v
	}
	return sum / float64(len(x))
}

func meanSquareToLUFS(ms float64) float64 {
	if ms <= 0 {
		return -120.0
	}
	return -0.691 + 10*math.Log10(ms)
}

// crestFactorDB computes 20*log10(peak/rms) over the whole input
// (spec.md §4.2). Returns 0 for silent input rather than +Inf.
func crestFactorDB(mono []float64) float64 {
	var peak float64
	for _, v := range mono {
		a := math.Abs(v)
		if a > peak {
			peak = a
		}
	}
	rms := math.Sqrt(meanSquare(mono))
	if rms <= 1e-12 || peak <= 1e-12 {
		return 0
	}
	return 20 * math.Log10(peak/rms)
}
