package dsp

// eqStage is the psychoacoustic EQ: low-shelf, mid-peaking, and
// high-shelf biquads in series, with independent state per channel so
// stereo imaging survives filtering (spec.md §4.8 step 1).
type eqStage struct {
	left, right [3]biquadState // [low-shelf, mid-peak, high-shelf]
}

func (e *eqStage) reset() {
	for i := range e.left {
		e.left[i].reset()
		e.right[i].reset()
	}
}

// eqCoeffs computes the three EQ bands' coefficients for the given
// bass/mid/treble gains and target spectral centroid, which only
// shifts the mid-peak's center frequency (a brighten/darken tilt).
func eqCoeffs(bassDB, midDB, trebleDB, targetCentroidHz float64, sampleRate int) [3]biquadCoeffs {
	midFreq := targetCentroidHz
	if midFreq <= 0 {
		midFreq = 1000
	}
	return [3]biquadCoeffs{
		rbjLowShelf(120, bassDB, 0.707, sampleRate),
		rbjPeaking(midFreq, midDB, 0.9, sampleRate),
		rbjHighShelf(8000, trebleDB, 0.707, sampleRate),
	}
}

// processChannel applies the three-band EQ in series to one channel, given
// its persistent biquad state.
func processChannel(state *[3]biquadState, coeffs [3]biquadCoeffs, samples []float64) {
	for i, x := range samples {
		y := x
		for b := range coeffs {
			y = state[b].process(coeffs[b], y)
		}
		samples[i] = y
	}
}
