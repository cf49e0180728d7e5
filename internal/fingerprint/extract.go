// Package fingerprint implements the 25-D audio fingerprint extractor
// (C2 in spec.md §4.2): frequency bands, dynamics, temporal, spectral,
// harmonic, variation, and stereo groups computed from a decoded
// stereo buffer.
package fingerprint

import (
	"math"
	"time"

	"github.com/matiaszanolli/auralis/internal/errs"
	"github.com/matiaszanolli/auralis/internal/models"
)

// Extract computes the full 25-D fingerprint for trackID from buf.
// Input shorter than config's minimum duration fails with
// InsufficientDuration (spec.md §4.2); callers fall back to neutral
// classification per spec.md §4.4.
func Extract(trackID string, buf models.StereoBuffer, minDurationSec float64) (models.Fingerprint, error) {
	if buf.SampleRate <= 0 || buf.Channels <= 0 || len(buf.Samples) == 0 {
		return models.Fingerprint{}, errs.New(errs.KindInsufficientDuration, "empty or invalid buffer")
	}

	duration := float64(buf.NumFrames()) / float64(buf.SampleRate)
	if duration < minDurationSec {
		return models.Fingerprint{}, errs.New(errs.KindInsufficientDuration,
			"input shorter than minimum fingerprint duration")
	}

	left, right := deinterleave(buf)
	mono := mixToMono(left, right)

	spectrogram := stft(mono, buf.SampleRate)
	bands := bandEnergies(spectrogram, buf.SampleRate)

	lufs := integratedLUFS(mono, buf.SampleRate)
	crest := crestFactorDB(mono)
	bassMidRatioDB := bandRatioDB(bands[0]+bands[1], bands[2]+bands[3])

	frameDuration := float64(hopSize()) / float64(buf.SampleRate)
	env := onsetEnvelope(spectrogram)
	bpm, rhythmStability := tempoAndStability(env, frameDuration)
	transients := transientDensity(env, frameDuration, duration)
	silence := silenceRatio(mono, buf.SampleRate)

	centroid, rolloff, flatness := medianSpectralFeatures(spectrogram, buf.SampleRate)
	harmonicRatio, pitchStability := harmonicPitchFeatures(mono, buf.SampleRate)
	chroma := chromaEnergy(spectrogram, buf.SampleRate)

	drVar, loudVar, peakConsistency := variationMetrics(mono, buf.SampleRate)
	stereoWidth, phaseCorr := stereoMetrics(left, right)

	fp := models.Fingerprint{
		SubBass: bands[0], Bass: bands[1], LowMid: bands[2], Mid: bands[3],
		UpperMid: bands[4], Presence: bands[5], Air: bands[6],

		LUFS: lufs, CrestFactor: crest, BassMidRatio: bassMidRatioDB,

		TempoBPM: bpm, RhythmStability: rhythmStability,
		TransientDensity: transients, SilenceRatio: silence,

		SpectralCentroidHz: centroid, SpectralRolloffHz: rolloff, SpectralFlatness: flatness,

		HarmonicRatio: harmonicRatio, PitchStability: pitchStability, ChromaEnergy: chroma,

		DynamicRangeVariation: drVar, LoudnessVariation: loudVar, PeakConsistency: peakConsistency,

		StereoWidth: stereoWidth, PhaseCorrelation: phaseCorr,

		TrackID:       trackID,
		SchemaVersion: models.SchemaVersion,
		CreatedAt:     time.Now().UTC(),
	}
	return fp, nil
}

func bandRatioDB(numerator, denominator float64) float64 {
	const floor = 1e-6
	if numerator < floor {
		numerator = floor
	}
	if denominator < floor {
		denominator = floor
	}
	return 20 * math.Log10(numerator/denominator)
}

func deinterleave(buf models.StereoBuffer) (left, right []float64) {
	n := buf.NumFrames()
	left = make([]float64, n)
	right = make([]float64, n)
	ch := buf.Channels
	for i := 0; i < n; i++ {
		left[i] = float64(buf.Samples[i*ch])
		if ch > 1 {
			right[i] = float64(buf.Samples[i*ch+1])
		} else {
			right[i] = left[i]
		}
	}
	return
}

func mixToMono(left, right []float64) []float64 {
	mono := make([]float64, len(left))
	for i := range left {
		mono[i] = (left[i] + right[i]) / 2
	}
	return mono
}
