package preferences

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/tidwall/gjson"

	"github.com/matiaszanolli/auralis/internal/models"
)

// FeedbackRecord is one line of the feedback log: a rating event plus
// the fingerprint and parameters that were in effect, so offline
// analysis can correlate ratings with the mastering decisions that
// produced them (spec.md §4.6).
type FeedbackRecord struct {
	TrackID     string                    `json:"track_id"`
	Rating      int                       `json:"rating"`
	Comment     string                    `json:"comment,omitempty"`
	Fingerprint models.Fingerprint        `json:"fingerprint"`
	Params      models.AdaptiveParameters `json:"params"`
	RecordedAt  time.Time                 `json:"recorded_at"`
}

// FeedbackLog appends feedback records to a JSON-lines file. No
// adjustment is inferred automatically at runtime; the log is raw
// material for offline analysis (spec.md §4.6).
type FeedbackLog struct {
	path string
	mu   sync.Mutex
}

// NewFeedbackLog returns a JSON-lines feedback log for path. Nothing is
// opened here; the file and its directory are created on the first
// RecordFeedback.
func NewFeedbackLog(path string) *FeedbackLog {
	return &FeedbackLog{path: path}
}

// RecordFeedback appends a feedback record (spec.md §4.6:
// `record_feedback(track_id, rating, comment)`).
func (f *FeedbackLog) RecordFeedback(trackID string, rating int, comment string, fp models.Fingerprint, params models.AdaptiveParameters) error {
	rec := FeedbackRecord{
		TrackID:     trackID,
		Rating:      rating,
		Comment:     comment,
		Fingerprint: fp,
		Params:      params,
		RecordedAt:  time.Now().UTC(),
	}

	line, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return err
	}
	fh, err := os.OpenFile(f.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer fh.Close()

	_, err = fh.Write(append(line, '\n'))
	return err
}

// RatingsForTrack scans the feedback log and returns every rating
// recorded for trackID, using gjson for a cheap field-only read instead
// of unmarshaling the full record (including its embedded fingerprint)
// per line.
func (f *FeedbackLog) RatingsForTrack(trackID string) ([]int, error) {
	fh, err := os.Open(f.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	var ratings []int
	scanner := bufio.NewScanner(fh)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if gjson.GetBytes(line, "track_id").String() != trackID {
			continue
		}
		ratings = append(ratings, int(gjson.GetBytes(line, "rating").Int()))
	}
	return ratings, scanner.Err()
}
