package session

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matiaszanolli/auralis/internal/config"
	"github.com/matiaszanolli/auralis/internal/models"
	"github.com/matiaszanolli/auralis/internal/preferences"
	"github.com/matiaszanolli/auralis/internal/resolver"
	"github.com/matiaszanolli/auralis/internal/store"
)

type fakeDecoder struct {
	sampleRate int
	dur        float64
}

func (f *fakeDecoder) Duration(ctx context.Context, path string) (float64, error) {
	return f.dur, nil
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

func newTestSession(t *testing.T) *Session {
	t.Helper()
	cfg := config.Default()
	st, err := store.Open("file:" + filepath.Join(t.TempDir(), "sess.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	dec := &fakeDecoder{sampleRate: 44100, dur: 30}
	res := resolver.New(st, dec, 5*time.Second, 120, 10)
	prefs, err := preferences.Load(filepath.Join(t.TempDir(), "prefs.json"))
	require.NoError(t, err)

	return New(cfg, res, dec, prefs, 8)
}

func TestSession_Play_TransitionsToStreamingAndEmitsChunks(t *testing.T) {
	s := newTestSession(t)
	require.Equal(t, Idle, s.State())

	err := s.Play(context.Background(), "trk-1", "fake.flac", "default", 0.5)
	require.NoError(t, err)
	assert.Equal(t, Streaming, s.State())

	select {
	case c := <-s.Output():
		assert.Equal(t, 0, c.Index)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for first chunk")
	}

	s.Cancel()
	assert.Equal(t, Cancelled, s.State())
}

func TestSession_Play_InvalidFromStreaming(t *testing.T) {
	s := newTestSession(t)
	require.NoError(t, s.Play(context.Background(), "trk-1", "fake.flac", "default", 0.5))

	err := s.Play(context.Background(), "trk-2", "fake2.flac", "default", 0.5)
	assert.Error(t, err)
	s.Cancel()
}

func TestSession_Seek_PastEnd_TransitionsToEnded(t *testing.T) {
	s := newTestSession(t)
	require.NoError(t, s.Play(context.Background(), "trk-1", "fake.flac", "default", 0.5))

	err := s.Seek(60_000) // 60s, track is 30s
	require.NoError(t, err)
	assert.Equal(t, Ended, s.State())
}

func TestSession_Seek_MidTrack_ResetsAndResumesStreaming(t *testing.T) {
	s := newTestSession(t)
	require.NoError(t, s.Play(context.Background(), "trk-1", "fake.flac", "default", 0.5))

	err := s.Seek(15_000)
	require.NoError(t, err)
	assert.Equal(t, Streaming, s.State())

	s.Cancel()
}

func TestSession_PauseResume(t *testing.T) {
	s := newTestSession(t)
	require.NoError(t, s.Play(context.Background(), "trk-1", "fake.flac", "default", 0.5))

	require.NoError(t, s.Pause())
	assert.Equal(t, Paused, s.State())

	require.NoError(t, s.Resume())
	assert.Equal(t, Streaming, s.State())

	s.Cancel()
}
