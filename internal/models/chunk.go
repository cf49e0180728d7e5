package models

// DynamicsDecisionKind is the 2-D LWRP decision for a chunk (spec.md §4.7).
type DynamicsDecisionKind string

const (
	CompressedLoud DynamicsDecisionKind = "compressed_loud"
	DynamicLoud    DynamicsDecisionKind = "dynamic_loud"
	QuietModerate  DynamicsDecisionKind = "quiet_moderate"
)

// LWRP threshold constants (spec.md §4.7). Exactly on the LUFS boundary
// (lufs == LoudLUFSThreshold) resolves to the loud branches, and exactly
// on the crest boundary (crestDB == CompressedCrestDB) resolves to
// DynamicLoud rather than CompressedLoud, per the boundary-behavior test
// in spec.md §8 ("L = -12.0 LUFS, C = 13.0 dB -> DynamicLoud").
const (
	LoudLUFSThreshold    = -12.0
	CompressedCrestDB    = 13.0
)

// DynamicsDecision is the chunk-level LWRP outcome plus the measurements
// that produced it, kept for per-chunk observability (spec.md §4.7).
type DynamicsDecision struct {
	Kind            DynamicsDecisionKind
	LUFS            float64
	CrestDB         float64
	ExpansionFactor float64 // only meaningful for CompressedLoud
	MakeupDB        float64 // only meaningful for CompressedLoud
}

// ClassifyDynamics applies the 2-D LWRP decision table to a chunk's measured
// loudness and crest factor.
func ClassifyDynamics(lufs, crestDB float64) DynamicsDecision {
	switch {
	case lufs >= LoudLUFSThreshold && crestDB < CompressedCrestDB:
		factor := (CompressedCrestDB - crestDB) / 10.0
		factor = clamp(factor, 0.1, 0.5)
		return DynamicsDecision{
			Kind:            CompressedLoud,
			LUFS:            lufs,
			CrestDB:         crestDB,
			ExpansionFactor: factor,
			MakeupDB:        -0.5,
		}
	case lufs >= LoudLUFSThreshold && crestDB >= CompressedCrestDB:
		return DynamicsDecision{Kind: DynamicLoud, LUFS: lufs, CrestDB: crestDB}
	default:
		return DynamicsDecision{Kind: QuietModerate, LUFS: lufs, CrestDB: crestDB}
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// StereoBuffer is interleaved stereo float32 PCM at a canonical sample
// rate, the output of the Decoder Frontend (C1) and the input/output of
// the DSP pipeline (C8).
type StereoBuffer struct {
	SampleRate int
	Channels   int // always 2 after decode (mono is promoted to dual mono)
	Samples    []float32 // interleaved L,R,L,R,...
}

// NumFrames returns the number of stereo sample frames in the buffer.
func (b StereoBuffer) NumFrames() int {
	if b.Channels == 0 {
		return 0
	}
	return len(b.Samples) / b.Channels
}

// Chunk is a fixed-duration slice of processed output emitted to the
// client (spec.md §3, §6).
type Chunk struct {
	Index         int
	StartSample   int64
	NSamples      int
	Channels      int
	SampleRate    int
	Payload       []float32 // interleaved stereo f32
	FadeInSamples int
	FadeOutSamples int
	Decision      DynamicsDecision
	Stalled       bool // producer fell behind real-time; a stall marker carries no payload
	Err           error
}
