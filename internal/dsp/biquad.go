// Package dsp implements the DSP Stage Pipeline (C8, spec.md §4.8):
// psychoacoustic EQ, dynamics (expansion/compression/limiting), stereo
// width, and loudness normalization, applied in that fixed order with
// filter/envelope state persisting across chunks within a session.
//
// The biquad math here is stdlib-only (math package): no library in the
// example pack ships a runnable RBJ-cookbook biquad implementation, so
// this one stage is hand-rolled rather than imported (see DESIGN.md).
package dsp

import "math"

// biquadCoeffs are Direct Form I biquad coefficients, normalized so a0 == 1.
type biquadCoeffs struct {
	b0, b1, b2 float64
	a1, a2     float64
}

// biquadState holds the two-sample history a biquad needs, kept
// per-channel so stereo processing doesn't cross-contaminate L/R.
type biquadState struct {
	x1, x2, y1, y2 float64
}

func (s *biquadState) process(c biquadCoeffs, x float64) float64 {
	y := c.b0*x + c.b1*s.x1 + c.b2*s.x2 - c.a1*s.y1 - c.a2*s.y2
	s.x2, s.x1 = s.x1, x
	s.y2, s.y1 = s.y1, y
	return y
}

func (s *biquadState) reset() { *s = biquadState{} }

// rbjLowShelf implements the RBJ Audio EQ Cookbook low-shelf formula.
func rbjLowShelf(freqHz, gainDB, q float64, sampleRate int) biquadCoeffs {
	A := math.Pow(10, gainDB/40)
	w0 := 2 * math.Pi * freqHz / float64(sampleRate)
	cosw0, sinw0 := math.Cos(w0), math.Sin(w0)
	alpha := sinw0 / 2 * math.Sqrt((A+1/A)*(1/q-1)+2)
	sqrtA := math.Sqrt(A)

	b0 := A * ((A + 1) - (A-1)*cosw0 + 2*sqrtA*alpha)
	b1 := 2 * A * ((A - 1) - (A+1)*cosw0)
	b2 := A * ((A + 1) - (A-1)*cosw0 - 2*sqrtA*alpha)
	a0 := (A + 1) + (A-1)*cosw0 + 2*sqrtA*alpha
	a1 := -2 * ((A - 1) + (A+1)*cosw0)
	a2 := (A + 1) + (A-1)*cosw0 - 2*sqrtA*alpha

	return normalize(b0, b1, b2, a0, a1, a2)
}

// rbjHighShelf implements the RBJ Audio EQ Cookbook high-shelf formula.
func rbjHighShelf(freqHz, gainDB, q float64, sampleRate int) biquadCoeffs {
	A := math.Pow(10, gainDB/40)
	w0 := 2 * math.Pi * freqHz / float64(sampleRate)
	cosw0, sinw0 := math.Cos(w0), math.Sin(w0)
	alpha := sinw0 / 2 * math.Sqrt((A+1/A)*(1/q-1)+2)
	sqrtA := math.Sqrt(A)

	b0 := A * ((A + 1) + (A-1)*cosw0 + 2*sqrtA*alpha)
	b1 := -2 * A * ((A - 1) + (A+1)*cosw0)
	b2 := A * ((A + 1) + (A-1)*cosw0 - 2*sqrtA*alpha)
	a0 := (A + 1) - (A-1)*cosw0 + 2*sqrtA*alpha
	a1 := 2 * ((A - 1) - (A+1)*cosw0)
	a2 := (A + 1) - (A-1)*cosw0 - 2*sqrtA*alpha

	return normalize(b0, b1, b2, a0, a1, a2)
}

// rbjPeaking implements the RBJ Audio EQ Cookbook peaking-EQ formula.
func rbjPeaking(freqHz, gainDB, q float64, sampleRate int) biquadCoeffs {
	A := math.Pow(10, gainDB/40)
	w0 := 2 * math.Pi * freqHz / float64(sampleRate)
	cosw0, sinw0 := math.Cos(w0), math.Sin(w0)
	alpha := sinw0 / (2 * q)

	b0 := 1 + alpha*A
	b1 := -2 * cosw0
	b2 := 1 - alpha*A
	a0 := 1 + alpha/A
	a1 := -2 * cosw0
	a2 := 1 - alpha/A

	return normalize(b0, b1, b2, a0, a1, a2)
}

func normalize(b0, b1, b2, a0, a1, a2 float64) biquadCoeffs {
	return biquadCoeffs{b0: b0 / a0, b1: b1 / a0, b2: b2 / a0, a1: a1 / a0, a2: a2 / a0}
}
