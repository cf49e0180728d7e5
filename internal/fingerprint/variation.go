package fingerprint

import "math"

const variationWindowSec = 5.0

// variationMetrics computes the standard deviation, across 5s windows,
// of crest factor (DR proxy), LUFS, and peak level, each normalized to
// a roughly [0,1] range (spec.md §4.2).
func variationMetrics(mono []float64, sampleRate int) (drVariation, loudnessVariation, peakConsistency float64) {
	windowLen := int(variationWindowSec * float64(sampleRate))
	if windowLen <= 0 || len(mono) < windowLen*2 {
		return 0, 0, 1
	}

	var drs, lufsList, peaks []float64
	for start := 0; start+windowLen <= len(mono); start += windowLen {
		w := mono[start : start+windowLen]
		drs = append(drs, crestFactorDB(w))
		lufsList = append(lufsList, integratedLUFS(w, sampleRate))
		peaks = append(peaks, peakAmplitude(w))
	}

	drVariation = clampF(stddev(drs)/20.0, 0, 1)       // crest factors span ~0-20dB typically
	loudnessVariation = clampF(stddev(lufsList)/20.0, 0, 1) // LUFS spans tens of dB
	peakConsistency = clampF(1-stddev(peaks), 0, 1)    // amplitude in [0,1], low variance -> consistent
	return
}

func peakAmplitude(x []float64) float64 {
	var peak float64
	for _, v := range x {
		a := math.Abs(v)
		if a > peak {
			peak = a
		}
	}
	return peak
}

func stddev(x []float64) float64 {
	if len(x) < 2 {
		return 0
	}
	mean := meanOf(x)
	var sumSq float64
	for _, v := range x {
		sumSq += (v - mean) * (v - mean)
	}
	return math.Sqrt(sumSq / float64(len(x)))
}

// stereoMetrics computes stereo width (1 - |corr(L,R)|, 0 if mono) and
// phase correlation (corr(L,R)) from the separate left and right
// channels (spec.md §4.2).
func stereoMetrics(left, right []float64) (width, phaseCorr float64) {
	if len(left) == 0 || len(right) == 0 || len(left) != len(right) {
		return 0, 1
	}
	phaseCorr = pearsonCorrelation(left, right)
	width = clampF(1-math.Abs(phaseCorr), 0, 1)
	return
}

func pearsonCorrelation(a, b []float64) float64 {
	n := len(a)
	if n == 0 {
		return 1
	}
	meanA, meanB := meanOf(a), meanOf(b)
	var num, denA, denB float64
	for i := 0; i < n; i++ {
		da, db := a[i]-meanA, b[i]-meanB
		num += da * db
		denA += da * da
		denB += db * db
	}
	if denA <= 1e-12 || denB <= 1e-12 {
		return 1 // constant/silent channels are perfectly correlated (mono-like)
	}
	corr := num / math.Sqrt(denA*denB)
	return clampF(corr, -1, 1)
}
