package fingerprint

import "math"

// onsetEnvelope derives a spectral-flux onset strength curve from the
// magnitude spectrogram: positive-only frame-to-frame energy increase,
// summed across bins (spec.md §4.2 "onset-envelope autocorrelation").
func onsetEnvelope(spectrogram [][]float64) []float64 {
	if len(spectrogram) < 2 {
		return nil
	}
	env := make([]float64, len(spectrogram)-1)
	for i := 1; i < len(spectrogram); i++ {
		var flux float64
		prev, cur := spectrogram[i-1], spectrogram[i]
		for j := range cur {
			if j >= len(prev) {
				break
			}
			d := cur[j] - prev[j]
			if d > 0 {
				flux += d
			}
		}
		env[i-1] = flux
	}
	return env
}

// tempoAndStability estimates BPM and rhythm stability from the onset
// envelope via autocorrelation over a plausible tempo range (spec.md §4.2).
func tempoAndStability(env []float64, frameDuration float64) (bpm, stability float64) {
	const minBPM, maxBPM = 50.0, 220.0
	if len(env) < 8 || frameDuration <= 0 {
		return 120.0, 0
	}

	minLag := int(60.0 / maxBPM / frameDuration)
	maxLag := int(60.0 / minBPM / frameDuration)
	if minLag < 1 {
		minLag = 1
	}
	if maxLag >= len(env) {
		maxLag = len(env) - 1
	}
	if maxLag <= minLag {
		return 120.0, 0
	}

	corr := make([]float64, maxLag-minLag+1)
	var total float64
	bestIdx := 0
	bestVal := -1.0
	for lag := minLag; lag <= maxLag; lag++ {
		var sum float64
		for i := 0; i+lag < len(env); i++ {
			sum += env[i] * env[i+lag]
		}
		idx := lag - minLag
		corr[idx] = sum
		total += sum
		if sum > bestVal {
			bestVal = sum
			bestIdx = idx
		}
	}

	bestLag := bestIdx + minLag
	bpm = 60.0 / (float64(bestLag) * frameDuration)
	bpm = clampF(bpm, minBPM, maxBPM)

	if total <= 0 {
		return bpm, 0
	}
	// Sharpness of the dominant peak relative to the mean correlation:
	// a single sharp peak -> stability near 1, a flat correlogram -> near 0.
	meanCorr := total / float64(len(corr))
	if meanCorr <= 0 {
		return bpm, 0
	}
	stability = clampF((bestVal/meanCorr-1)/float64(len(corr)), 0, 1)
	return bpm, stability
}

// transientDensity approximates onset count per second / 10, clamped to
// a roughly [0,1] range (spec.md §4.2).
func transientDensity(env []float64, frameDuration, totalDuration float64) float64 {
	if len(env) == 0 || totalDuration <= 0 {
		return 0
	}
	mean := meanOf(env)
	var variance float64
	for _, v := range env {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(len(env))
	stddev := math.Sqrt(variance)
	threshold := mean + stddev

	count := 0
	for _, v := range env {
		if v > threshold {
			count++
		}
	}
	perSecond := float64(count) / totalDuration
	return clampF(perSecond/10.0, 0, 1)
}

// silenceRatio is the fraction of 50ms frames whose RMS falls below
// -60 dBFS (spec.md §4.2).
func silenceRatio(mono []float64, sampleRate int) float64 {
	frameLen := int(0.05 * float64(sampleRate))
	if frameLen <= 0 || len(mono) < frameLen {
		return 0
	}
	const thresholdDB = -60.0
	total, silent := 0, 0
	for start := 0; start+frameLen <= len(mono); start += frameLen {
		rms := math.Sqrt(meanSquare(mono[start : start+frameLen]))
		db := amplitudeToDB(rms)
		total++
		if db < thresholdDB {
			silent++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(silent) / float64(total)
}

func amplitudeToDB(a float64) float64 {
	if a <= 1e-12 {
		return -120.0
	}
	return 20 * math.Log10(a)
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
