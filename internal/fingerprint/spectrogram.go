package fingerprint

import (
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
)

const (
	windowSize  = 2048 // samples, power of 2 (spec.md §4.2)
	overlapFrac = 0.75
)

func hopSize() int {
	return int(float64(windowSize) * (1 - overlapFrac))
}

// hannWindow returns a Hann window of length n, grounded in the
// teacher's spectrogram.go window-generation loop.
func hannWindow(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		theta := 2 * math.Pi * float64(i) / float64(n-1)
		w[i] = 0.5 - 0.5*math.Cos(theta)
	}
	return w
}

// stft computes the magnitude spectrogram of mono samples using a
// Hann-windowed, 75%-overlapped FFT via gonum's real FFT, replacing the
// teacher's hand-rolled complex FFT with the ecosystem implementation.
func stft(mono []float64, sampleRate int) [][]float64 {
	window := hannWindow(windowSize)
	hop := hopSize()
	fft := fourier.NewFFT(windowSize)

	var frames [][]float64
	for start := 0; start+windowSize <= len(mono); start += hop {
		frame := make([]float64, windowSize)
		for i := 0; i < windowSize; i++ {
			frame[i] = mono[start+i] * window[i]
		}
		coeffs := fft.Coefficients(nil, frame)
		mags := make([]float64, windowSize/2+1)
		for i := range mags {
			mags[i] = cabs(coeffs[i])
		}
		frames = append(frames, mags)
	}
	return frames
}

func cabs(c complex128) float64 {
	return math.Hypot(real(c), imag(c))
}

// freqBandEdgesHz are the 7 frequency band edges from spec.md §4.2.
var freqBandEdgesHz = [8]float64{0, 60, 250, 500, 2000, 4000, 8000, 20000}

// bandEnergies accumulates spectrogram energy into the 7 fixed bands
// and normalizes so the 7 values sum to 1 (±0.01), per spec.md §4.2.
func bandEnergies(spectrogram [][]float64, sampleRate int) [7]float64 {
	var bands [7]float64
	if len(spectrogram) == 0 {
		bands[0] = 1 // degenerate but still sums to 1
		return bands
	}

	freqPerBin := float64(sampleRate) / float64(windowSize)
	nyquist := float64(sampleRate) / 2
	edges := freqBandEdgesHz
	edges[7] = math.Min(edges[7], nyquist)

	for _, frame := range spectrogram {
		for i, mag := range frame {
			freq := float64(i) * freqPerBin
			if freq > nyquist {
				break
			}
			energy := mag * mag
			for b := 0; b < 7; b++ {
				if freq >= edges[b] && freq < edges[b+1] {
					bands[b] += energy
					break
				}
			}
		}
	}

	var total float64
	for _, v := range bands {
		total += v
	}
	if total <= 0 {
		bands[0] = 1
		return bands
	}
	for b := range bands {
		bands[b] /= total
	}
	return bands
}
