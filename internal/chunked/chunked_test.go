package chunked

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matiaszanolli/auralis/internal/config"
	"github.com/matiaszanolli/auralis/internal/dsp"
	"github.com/matiaszanolli/auralis/internal/models"
)

type fakeDecoder struct {
	sampleRate int
}

func (f *fakeDecoder) Duration(ctx context.Context, path string) (float64, error) {
	return 25, nil
}

func (f *fakeDecoder) DecodeRange(ctx context.Context, path string, startSec, durSec float64) (models.StereoBuffer, error) {
	n := int(durSec * float64(f.sampleRate))
	samples := make([]float32, n*2)
	for i := 0; i < n; i++ {
		samples[i*2] = 0.2
		samples[i*2+1] = 0.2
	}
	return models.StereoBuffer{SampleRate: f.sampleRate, Channels: 2, Samples: samples}, nil
}

func TestStream_EmitsChunksInOrder(t *testing.T) {
	cfg := config.Default()
	cfg.CanonicalSampleRate = 44100
	dec := &fakeDecoder{sampleRate: 44100}
	dspProc := dsp.NewProcessor(44100, cfg)
	p := NewProcessor(dec, dspProc, cfg)

	classification := models.Classification{
		Type:       models.Studio,
		Confidence: 0.9,
		Params:     models.NeutralParameters(),
	}

	out := make(chan models.Chunk, 16)
	err := p.Stream(context.Background(), "trk-1", "fake.flac", 25, models.Fingerprint{}, classification, nil, 0, 0, out)
	require.NoError(t, err)
	close(out)

	var chunks []models.Chunk
	for c := range out {
		chunks = append(chunks, c)
	}

	require.NotEmpty(t, chunks)
	for i, c := range chunks {
		assert.Equal(t, i, c.Index)
	}
}

func TestChunkCountFor(t *testing.T) {
	assert.Equal(t, 3, ChunkCountFor(25, 10))
	assert.Equal(t, 1, ChunkCountFor(5, 10))
	assert.Equal(t, 0, ChunkCountFor(10, 0))
}

func TestEqualPowerCrossfade_IdenticalInputsFollowEqualPowerGains(t *testing.T) {
	prev := []float32{0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5}
	cur := []float32{0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5}
	blended := equalPowerCrossfade(prev, cur)
	frames := len(blended) / 2
	for i, v := range blended {
		// cos/sin gains: energy-preserving for uncorrelated signals, so
		// identical inputs rise above 0.5 inside the ramp.
		x := float64(i/2) / float64(frames-1)
		want := 0.5 * (math.Cos(x*math.Pi/2) + math.Sin(x*math.Pi/2))
		assert.InDelta(t, want, v, 1e-6)
	}
}
