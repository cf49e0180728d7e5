package preferences

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matiaszanolli/auralis/internal/models"
)

func TestLoad_MissingFile_ReturnsEmpty(t *testing.T) {
	p, err := Load(filepath.Join(t.TempDir(), "prefs.json"))
	require.NoError(t, err)
	assert.Equal(t, 0, p.Version)
	assert.Empty(t, p.ByType)
}

func TestApply_NoOffset_PassesThrough(t *testing.T) {
	p, err := Load(filepath.Join(t.TempDir(), "prefs.json"))
	require.NoError(t, err)

	params := models.NeutralParameters()
	out := p.Apply(params, models.Studio)
	assert.Equal(t, params, out)
}

func TestApply_WithOffset_AddsDeltas(t *testing.T) {
	p, err := Load(filepath.Join(t.TempDir(), "prefs.json"))
	require.NoError(t, err)
	p.ByType[models.Unknown] = Offsets{BassDB: 0.3}

	params := models.NeutralParameters()
	out := p.Apply(params, models.Unknown)
	assert.InDelta(t, 0.3, out.BassDB, 1e-9)
}

func TestUpdate_CommitsOnlyOnRegressionPass(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")
	p, err := Load(path)
	require.NoError(t, err)

	err = p.Update(func(c *PersonalPreferences) {
		c.ByType[models.Studio] = Offsets{BassDB: 1.0}
	}, func(c *PersonalPreferences) error {
		return errors.New("regression failed: bass offset too large")
	})
	assert.Error(t, err)
	assert.Equal(t, 0, p.Version)
	assert.Empty(t, p.ByType)

	err = p.Update(func(c *PersonalPreferences) {
		c.ByType[models.Studio] = Offsets{BassDB: 0.5}
	}, func(c *PersonalPreferences) error {
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, p.Version)
	assert.Equal(t, Offsets{BassDB: 0.5}, p.ByType[models.Studio])

	reloaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1, reloaded.Version)
	assert.Equal(t, Offsets{BassDB: 0.5}, reloaded.ByType[models.Studio])
}

func TestSnapshot_ReflectsCommittedState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")
	p, err := Load(path)
	require.NoError(t, err)

	require.NoError(t, p.Update(func(c *PersonalPreferences) {
		c.ByType[models.Studio] = Offsets{BassDB: 0.5}
	}, nil))

	snap := p.Snapshot()
	assert.Equal(t, 1, snap.Version)
	assert.Equal(t, Offsets{BassDB: 0.5}, snap.ByType[models.Studio])

	snap.ByType[models.Studio] = Offsets{BassDB: 99}
	assert.Equal(t, Offsets{BassDB: 0.5}, p.ByType[models.Studio])
}

func TestFeedbackLog_RecordAndQuery(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feedback.jsonl")
	log := NewFeedbackLog(path)

	fp := models.Fingerprint{TrackID: "trk-1"}
	params := models.NeutralParameters()

	require.NoError(t, log.RecordFeedback("trk-1", 5, "great", fp, params))
	require.NoError(t, log.RecordFeedback("trk-2", 1, "too loud", fp, params))
	require.NoError(t, log.RecordFeedback("trk-1", 4, "", fp, params))

	ratings, err := log.RatingsForTrack("trk-1")
	require.NoError(t, err)
	assert.Equal(t, []int{5, 4}, ratings)

	ratings, err = log.RatingsForTrack("trk-3")
	require.NoError(t, err)
	assert.Empty(t, ratings)
}
