package resolver

import (
	"context"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matiaszanolli/auralis/internal/models"
	"github.com/matiaszanolli/auralis/internal/store"
)

type fakeDecoder struct {
	calls   int32
	delay   time.Duration
	dur     float64
	samples func() models.StereoBuffer
}

func (f *fakeDecoder) Duration(ctx context.Context, path string) (float64, error) {
	return f.dur, nil
}

func (f *fakeDecoder) DecodeRange(ctx context.Context, path string, startSec, durSec float64) (models.StereoBuffer, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return models.StereoBuffer{}, ctx.Err()
		}
	}
	return f.samples(), nil
}

func testBuffer(seconds float64, sampleRate int) models.StereoBuffer {
	n := int(seconds * float64(sampleRate))
	samples := make([]float32, n*2)
	for i := 0; i < n; i++ {
		samples[i*2] = float32(0.3)
		samples[i*2+1] = float32(0.3)
	}
	return models.StereoBuffer{SampleRate: sampleRate, Channels: 2, Samples: samples}
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open("file:" + filepath.Join(t.TempDir(), "resolver.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestResolver_SidecarMiss_ExtractsAndPersists(t *testing.T) {
	st := newTestStore(t)
	dec := &fakeDecoder{dur: 15, samples: func() models.StereoBuffer { return testBuffer(15, 44100) }}
	r := New(st, dec, 5*time.Second, 120, 10)

	fp := r.Resolve(context.Background(), "trk-1", "does-not-exist.flac")
	assert.False(t, fp.IsNeutral())
	assert.Equal(t, "trk-1", fp.TrackID)

	stored, ok, err := st.Get("trk-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, fp.LUFS, stored.LUFS)
}

func TestResolver_StoreHit_SkipsExtraction(t *testing.T) {
	st := newTestStore(t)
	dec := &fakeDecoder{dur: 15, samples: func() models.StereoBuffer { return testBuffer(15, 44100) }}
	r := New(st, dec, 5*time.Second, 120, 10)

	first := r.Resolve(context.Background(), "trk-2", "whatever.flac")
	require.False(t, first.IsNeutral())

	second := r.Resolve(context.Background(), "trk-2", "whatever.flac")
	// The store keeps created_at as Unix seconds, so the stored copy
	// carries the extraction time truncated to the second.
	assert.True(t, first.CreatedAt.Truncate(time.Second).Equal(second.CreatedAt))
	second.CreatedAt = first.CreatedAt
	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), atomic.LoadInt32(&dec.calls))
}

func TestResolver_DeadlineExceeded_ReturnsNeutral(t *testing.T) {
	st := newTestStore(t)
	dec := &fakeDecoder{dur: 15, delay: 200 * time.Millisecond, samples: func() models.StereoBuffer { return testBuffer(15, 44100) }}
	r := New(st, dec, 10*time.Millisecond, 120, 10)

	fp := r.Resolve(context.Background(), "trk-3", "slow.flac")
	assert.True(t, fp.IsNeutral())
	assert.Equal(t, models.PhilosophyNeutral, models.NeutralParameters().Philosophy)
}

func TestResolver_SingleFlight_CoalescesConcurrentCallers(t *testing.T) {
	st := newTestStore(t)
	dec := &fakeDecoder{dur: 15, delay: 50 * time.Millisecond, samples: func() models.StereoBuffer { return testBuffer(15, 44100) }}
	r := New(st, dec, 2*time.Second, 120, 10)

	const n = 8
	results := make(chan models.Fingerprint, n)
	for i := 0; i < n; i++ {
		go func() {
			results <- r.Resolve(context.Background(), "trk-coalesce", "shared.flac")
		}()
	}
	for i := 0; i < n; i++ {
		fp := <-results
		assert.False(t, fp.IsNeutral())
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&dec.calls))
}
