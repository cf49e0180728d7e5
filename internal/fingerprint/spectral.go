package fingerprint

import (
	"math"
	"sort"
)

// frameCentroid is the spectral "center of mass" in Hz.
func frameCentroid(frame []float64, sampleRate int) float64 {
	var weighted, sum float64
	freqPerBin := float64(sampleRate) / float64(windowSize)
	for i, mag := range frame {
		freq := float64(i) * freqPerBin
		weighted += freq * mag
		sum += mag
	}
	if sum == 0 {
		return 0
	}
	return weighted / sum
}

// frameRolloff is the frequency below which pct of spectral energy lies.
func frameRolloff(frame []float64, sampleRate int, pct float64) float64 {
	var total float64
	for _, mag := range frame {
		total += mag * mag
	}
	if total == 0 {
		return 0
	}
	threshold := total * pct
	freqPerBin := float64(sampleRate) / float64(windowSize)
	var cum float64
	for i, mag := range frame {
		cum += mag * mag
		if cum >= threshold {
			return float64(i) * freqPerBin
		}
	}
	return float64(len(frame)) * freqPerBin
}

// frameFlatness is the ratio of geometric to arithmetic mean of the
// spectrum, 0 (tonal) to 1 (noise-like).
func frameFlatness(frame []float64) float64 {
	var logSum, sum float64
	n := 0
	for _, mag := range frame {
		if mag <= 1e-12 {
			continue
		}
		logSum += math.Log(mag)
		sum += mag
		n++
	}
	if n == 0 || sum == 0 {
		return 0
	}
	geoMean := math.Exp(logSum / float64(n))
	arithMean := sum / float64(n)
	if arithMean == 0 {
		return 0
	}
	return clampF(geoMean/arithMean, 0, 1)
}

// medianSpectralFeatures computes per-frame centroid/rolloff/flatness
// then takes the median across frames (spec.md §4.2).
func medianSpectralFeatures(spectrogram [][]float64, sampleRate int) (centroid, rolloff, flatness float64) {
	if len(spectrogram) == 0 {
		return 0, 0, 0
	}
	centroids := make([]float64, len(spectrogram))
	rolloffs := make([]float64, len(spectrogram))
	flatnesses := make([]float64, len(spectrogram))
	for i, frame := range spectrogram {
		centroids[i] = frameCentroid(frame, sampleRate)
		rolloffs[i] = frameRolloff(frame, sampleRate, 0.85)
		flatnesses[i] = frameFlatness(frame)
	}
	nyquist := float64(sampleRate) / 2
	centroid = clampF(median(centroids), 1, nyquist)
	rolloff = clampF(median(rolloffs), 0, nyquist)
	flatness = clampF(median(flatnesses), 0, 1)
	return
}

func median(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	cp := append([]float64(nil), xs...)
	sort.Float64s(cp)
	n := len(cp)
	if n%2 == 1 {
		return cp[n/2]
	}
	return (cp[n/2-1] + cp[n/2]) / 2
}

// harmonicPitchFeatures estimates harmonic ratio and pitch stability
// from frame-to-frame autocorrelation-based periodicity strength
// (spec.md §4.2: "harmonic-percussive separation or pitch-tracking
// estimate; exact algorithm is free"). A pure tone yields near-1 on
// both; noise yields near-0.
func harmonicPitchFeatures(mono []float64, sampleRate int) (harmonicRatio, pitchStability float64) {
	const frameLenSec = 0.05
	frameLen := int(frameLenSec * float64(sampleRate))
	if frameLen <= 0 || len(mono) < frameLen*2 {
		return 0, 0
	}
	minLagHz, maxLagHz := 80.0, 1000.0 // plausible pitch range
	minLag := int(float64(sampleRate) / maxLagHz)
	maxLag := int(float64(sampleRate) / minLagHz)
	if minLag < 1 {
		minLag = 1
	}
	if maxLag >= frameLen {
		maxLag = frameLen - 1
	}

	var periodicities []float64
	var detectedFreqs []float64
	for start := 0; start+frameLen <= len(mono); start += frameLen {
		frame := mono[start : start+frameLen]
		energy := meanSquare(frame)
		if energy <= 1e-10 {
			continue
		}
		bestLag, bestCorr := 0, -1.0
		for lag := minLag; lag <= maxLag && lag < len(frame); lag++ {
			var sum float64
			for i := 0; i+lag < len(frame); i++ {
				sum += frame[i] * frame[i+lag]
			}
			if sum > bestCorr {
				bestCorr = sum
				bestLag = lag
			}
		}
		norm := meanSquare(frame) * float64(len(frame))
		if norm <= 0 || bestLag == 0 {
			continue
		}
		periodicity := clampF(bestCorr/norm, 0, 1)
		periodicities = append(periodicities, periodicity)
		detectedFreqs = append(detectedFreqs, float64(sampleRate)/float64(bestLag))
	}

	if len(periodicities) == 0 {
		return 0, 0
	}
	harmonicRatio = clampF(meanOf(periodicities), 0, 1)

	// Pitch stability: inverse of coefficient of variation of detected
	// pitch frequency across frames.
	meanFreq := meanOf(detectedFreqs)
	if meanFreq <= 0 {
		return harmonicRatio, 0
	}
	var variance float64
	for _, f := range detectedFreqs {
		variance += (f - meanFreq) * (f - meanFreq)
	}
	variance /= float64(len(detectedFreqs))
	cv := math.Sqrt(variance) / meanFreq
	pitchStability = clampF(1-cv, 0, 1)
	return
}

// chromaEnergy accumulates a 12-bin chroma over all frames (spec.md
// §4.2), mapping FFT bins to pitch classes on a log-frequency scale
// relative to A440, and returns the dominant pitch class's share of it.
func chromaEnergy(spectrogram [][]float64, sampleRate int) float64 {
	if len(spectrogram) == 0 {
		return 0
	}
	freqPerBin := float64(sampleRate) / float64(windowSize)
	var chroma [12]float64
	var total float64
	for _, frame := range spectrogram {
		for i, mag := range frame {
			freq := float64(i) * freqPerBin
			if freq < 20 {
				continue
			}
			pitchClass := pitchClassOf(freq)
			chroma[pitchClass] += mag
			total += mag
		}
	}
	if total == 0 {
		return 0
	}
	// Normalize to fractions summing to 1, then report the dominant
	// pitch class's share as the chroma energy concentration: a single
	// strong pitch class yields a value near 1, a flat chroma (noise or
	// a dense chord cluster) yields a value near 1/12.
	var maxFrac float64
	for _, v := range chroma {
		frac := v / total
		if frac > maxFrac {
			maxFrac = frac
		}
	}
	return clampF(maxFrac, 0, 1)
}

func pitchClassOf(freqHz float64) int {
	// 12-TET pitch class relative to A4 = 440 Hz.
	n := 12 * math.Log2(freqHz/440.0)
	pc := int(math.Round(n)) % 12
	if pc < 0 {
		pc += 12
	}
	return pc
}
