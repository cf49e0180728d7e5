package fingerprint

// IntegratedLUFS exposes the package's BS.1770-style loudness
// measurement for callers outside extraction proper (the dynamics
// policy stage, C7, needs the same measurement per-chunk rather than
// once per track).
func IntegratedLUFS(mono []float64, sampleRate int) float64 {
	return integratedLUFS(mono, sampleRate)
}

// CrestFactorDB exposes the package's crest factor measurement for the
// dynamics policy stage (C7).
func CrestFactorDB(mono []float64) float64 {
	return crestFactorDB(mono)
}
