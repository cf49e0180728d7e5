package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_PutGetIdempotent(t *testing.T) {
	dir := t.TempDir()
	s, err := Open("file:" + filepath.Join(dir, "test.db"))
	require.NoError(t, err)
	defer s.Close()

	fp := sampleFingerprint()

	require.NoError(t, s.Put(fp))
	require.NoError(t, s.Put(fp)) // idempotent on (track_id, schema_version)

	got, ok, err := s.Get(fp.TrackID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.InDelta(t, fp.LUFS, got.LUFS, 1e-6)
	assert.InDelta(t, fp.StereoWidth, got.StereoWidth, 1e-6)

	exists, err := s.Exists(fp.TrackID)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestStore_GetMiss(t *testing.T) {
	dir := t.TempDir()
	s, err := Open("file:" + filepath.Join(dir, "test.db"))
	require.NoError(t, err)
	defer s.Close()

	_, ok, err := s.Get("does-not-exist")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_Delete(t *testing.T) {
	dir := t.TempDir()
	s, err := Open("file:" + filepath.Join(dir, "test.db"))
	require.NoError(t, err)
	defer s.Close()

	fp := sampleFingerprint()
	require.NoError(t, s.Put(fp))
	require.NoError(t, s.Delete(fp.TrackID))

	_, ok, err := s.Get(fp.TrackID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_StoreThenSidecarRoundTripMatches(t *testing.T) {
	dir := t.TempDir()
	s, err := Open("file:" + filepath.Join(dir, "test.db"))
	require.NoError(t, err)
	defer s.Close()

	fp := sampleFingerprint()
	require.NoError(t, s.Put(fp))

	audioPath := filepath.Join(dir, "track.wav")
	require.NoError(t, WriteSidecar(audioPath, fp))

	fromStore, ok, err := s.Get(fp.TrackID)
	require.NoError(t, err)
	require.True(t, ok)

	fromSidecar, ok, err := ReadSidecar(audioPath)
	require.NoError(t, err)
	require.True(t, ok)

	assert.InDelta(t, fromStore.LUFS, fromSidecar.LUFS, 1e-4)
	assert.InDelta(t, fromStore.StereoWidth, fromSidecar.StereoWidth, 1e-4)
	assert.InDelta(t, fromStore.Air, fromSidecar.Air, 1e-4)
}
