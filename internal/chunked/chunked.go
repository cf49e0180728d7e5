// Package chunked implements the Chunked Processor (C9, spec.md §4.9):
// slices a track into fixed-duration chunks, applies the dynamics
// policy and DSP pipeline to each, crossfades across chunk boundaries,
// and emits chunks in strict order.
package chunked

import (
	"context"
	"math"
	"time"

	"github.com/matiaszanolli/auralis/internal/config"
	"github.com/matiaszanolli/auralis/internal/decoder"
	"github.com/matiaszanolli/auralis/internal/dsp"
	"github.com/matiaszanolli/auralis/internal/dynamics"
	"github.com/matiaszanolli/auralis/internal/logging"
	"github.com/matiaszanolli/auralis/internal/models"
	"github.com/matiaszanolli/auralis/internal/preferences"
)

var log = logging.For("chunked")

// Processor streams one track's chunks for one session. It is not safe
// for concurrent use: DSP inside a session is single-producer (spec.md
// §5), so one Processor serves at most one active Stream call at a time.
type Processor struct {
	Decoder decoder.Decoder
	DSP     *dsp.Processor
	Cfg     config.Config

	prevTail []float32
}

// NewProcessor builds a chunk Processor bound to dec/dsp for one session.
func NewProcessor(dec decoder.Decoder, dspProc *dsp.Processor, cfg config.Config) *Processor {
	return &Processor{Decoder: dec, DSP: dspProc, Cfg: cfg}
}

// Stream decodes path in T_chunk slices starting at startSec, applies
// C7/C8, crossfades across chunk boundaries, and sends each resulting
// Chunk to out in order, starting numbering at startIndex (spec.md
// §4.9, §5: "Chunks for a single session are emitted strictly in
// increasing index"). It returns when the track ends or ctx is
// cancelled; a chunk whose decode fails is emitted as silence with its
// Err set, and streaming continues with the next chunk.
func (p *Processor) Stream(ctx context.Context, trackID, path string, totalDurationSec float64, fp models.Fingerprint, classification models.Classification, prefs *preferences.PersonalPreferences, startSec float64, startIndex int, out chan<- models.Chunk) error {
	chunkDur := p.Cfg.ChunkDurationSec
	overlap := p.Cfg.CrossfadeOverlapSec
	p.prevTail = nil

	params := classification.Params
	if prefs != nil {
		params = prefs.Apply(params, classification.Type)
	}
	params = dsp.BlendParameters(params, classification.Confidence, p.Cfg.ConfidenceCap)

	index := startIndex
	pos := startSec
	for pos < totalDurationSec {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		chunkStart := time.Now()

		remaining := totalDurationSec - pos
		decodeDur := chunkDur + overlap
		if decodeDur > remaining {
			decodeDur = remaining
		}

		buf, err := p.Decoder.DecodeRange(ctx, path, pos, decodeDur)
		chunk := models.Chunk{
			Index:       index,
			StartSample: int64(pos * float64(p.Cfg.CanonicalSampleRate)),
			SampleRate:  p.Cfg.CanonicalSampleRate,
			Channels:    2,
		}
		if err != nil {
			log.Error().Err(err).Str("track_id", trackID).Int("chunk", index).Msg("decode failed, emitting silence")
			chunk.NSamples = int(chunkDur * float64(p.Cfg.CanonicalSampleRate))
			chunk.Payload = make([]float32, chunk.NSamples*2)
			chunk.Err = err
			if !sendOrStall(ctx, out, chunk, chunkStart, chunkDur) {
				return ctx.Err()
			}
			index++
			pos += chunkDur
			continue
		}

		mono := toMono(buf.Samples)
		decision := dynamics.Decide(trackID, index, mono, buf.SampleRate)

		p.DSP.Process(buf.Samples, params, decision)

		body := p.extractBodyWithCrossfade(buf.Samples, chunkDur, overlap, buf.SampleRate)

		chunk.NSamples = len(body) / 2
		chunk.Payload = body
		chunk.Decision = decision
		chunk.FadeInSamples = int(overlap * float64(buf.SampleRate))
		chunk.FadeOutSamples = chunk.FadeInSamples

		if !sendOrStall(ctx, out, chunk, chunkStart, chunkDur) {
			return ctx.Err()
		}

		index++
		pos += chunkDur
	}

	return nil
}

// extractBodyWithCrossfade crossfades the chunk's leading overlap
// region against the previous chunk's tail (if any), then retains the
// trailing overlap as the new tail for the next call, returning only
// the non-overlapping body for emission (spec.md §4.9 step 5).
func (p *Processor) extractBodyWithCrossfade(samples []float32, chunkDurSec, overlapSec float64, sampleRate int) []float32 {
	overlapFrames := int(overlapSec * float64(sampleRate))
	overlapSamples := overlapFrames * 2

	if p.prevTail != nil && overlapSamples > 0 && overlapSamples <= len(samples) {
		head := samples[:overlapSamples]
		equalPowerCrossfade(p.prevTail, head)
	}

	bodyFrames := int(chunkDurSec * float64(sampleRate))
	bodyEnd := bodyFrames * 2
	if bodyEnd > len(samples) {
		bodyEnd = len(samples)
	}

	if bodyEnd+overlapSamples <= len(samples) {
		tail := make([]float32, overlapSamples)
		copy(tail, samples[bodyEnd:bodyEnd+overlapSamples])
		p.prevTail = tail
	} else {
		p.prevTail = nil
	}

	body := make([]float32, bodyEnd)
	copy(body, samples[:bodyEnd])
	return body
}

// sendOrStall sends chunk to out, but if the producer has fallen behind
// real-time (this chunk's own production took longer than its audio
// duration), it first emits a Stall signal rather than silently
// skipping ahead (spec.md §4.9: "if the producer falls behind, it MUST
// emit a Stall signal rather than skipping").
func sendOrStall(ctx context.Context, out chan<- models.Chunk, chunk models.Chunk, chunkStart time.Time, chunkDurSec float64) bool {
	elapsed := time.Since(chunkStart)
	if elapsed > time.Duration(chunkDurSec*float64(time.Second)) {
		stall := models.Chunk{Index: chunk.Index, Stalled: true, SampleRate: chunk.SampleRate, Channels: chunk.Channels}
		select {
		case out <- stall:
		case <-ctx.Done():
			return false
		}
	}
	select {
	case out <- chunk:
		return true
	case <-ctx.Done():
		return false
	}
}

func toMono(interleaved []float32) []float64 {
	n := len(interleaved) / 2
	mono := make([]float64, n)
	for i := 0; i < n; i++ {
		mono[i] = (float64(interleaved[i*2]) + float64(interleaved[i*2+1])) / 2
	}
	return mono
}

// ChunkCountFor returns the number of chunks a track of totalDurationSec
// produces at the given chunk duration (spec.md §8 invariant 4: chunk
// lengths are deterministic except the last).
func ChunkCountFor(totalDurationSec, chunkDurSec float64) int {
	if chunkDurSec <= 0 {
		return 0
	}
	return int(math.Ceil(totalDurationSec / chunkDurSec))
}
