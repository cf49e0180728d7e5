package dsp

// applyLoudnessNormalization applies rmsAdjustDB, the parameter set's
// signed dB offset, as a fixed gain to the whole chunk (spec.md §4.8
// step 4). The offset is not derived from the chunk's measured loudness.
func applyLoudnessNormalization(samples []float32, rmsAdjustDB float64) {
	if rmsAdjustDB == 0 {
		return
	}
	gain := dbToLinear(rmsAdjustDB)
	for i, s := range samples {
		samples[i] = float32(clampF(float64(s)*gain, -1, 1))
	}
}
