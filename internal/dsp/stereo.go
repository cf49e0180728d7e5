package dsp

// applyStereoWidth is a mid/side processor: decode to mid/side, scale
// the side channel toward widthTarget (blended by confidence), re-encode
// to L/R (spec.md §4.8 step 3). Scaling only the side channel preserves
// mono compatibility: summing L+R always reduces to 2*mid, independent
// of the width scale, so correlated content never develops comb nulls
// beyond what was already present in the source.
func applyStereoWidth(samples []float32, widthTarget float64) {
	// widthTarget in [0,1]; 0.5 is roughly "unchanged" for typical
	// program material, <0.5 narrows, >0.5 widens.
	sideScale := widthTarget * 2
	for i := 0; i+1 < len(samples); i += 2 {
		l, r := float64(samples[i]), float64(samples[i+1])
		mid := (l + r) / 2
		side := (l - r) / 2
		side *= sideScale
		samples[i] = float32(clampF(mid+side, -1, 1))
		samples[i+1] = float32(clampF(mid-side, -1, 1))
	}
}
