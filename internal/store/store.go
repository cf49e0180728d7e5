// Package store implements the Fingerprint Store (C3, spec.md §4.3):
// a durable track_id -> fingerprint mapping backed by sqlite3 (already
// a teacher dependency), plus the sidecar file reader.
package store

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/matiaszanolli/auralis/internal/errs"
	"github.com/matiaszanolli/auralis/internal/models"
)

// Store is the durable fingerprint key-value mapping. Multiple readers
// may call Get concurrently with a single in-flight Put (spec.md §4.3,
// §5): writes are serialized with writeMu while reads go straight to
// the driver, which sqlite3 itself serializes per-connection.
type Store struct {
	db      *sql.DB
	writeMu sync.Mutex
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS fingerprints (
	track_id       TEXT NOT NULL,
	schema_version INTEGER NOT NULL,
	sub_bass REAL, bass REAL, low_mid REAL, mid REAL, upper_mid REAL, presence REAL, air REAL,
	lufs REAL, crest_factor REAL, bass_mid_ratio REAL,
	tempo_bpm REAL, rhythm_stability REAL, transient_density REAL, silence_ratio REAL,
	spectral_centroid_hz REAL, spectral_rolloff_hz REAL, spectral_flatness REAL,
	harmonic_ratio REAL, pitch_stability REAL, chroma_energy REAL,
	dr_variation REAL, loudness_variation REAL, peak_consistency REAL,
	stereo_width REAL, phase_correlation REAL,
	created_at INTEGER NOT NULL,
	PRIMARY KEY (track_id, schema_version)
);
`

// Open opens (creating if necessary) the sqlite-backed fingerprint
// store at dsn, e.g. "file:auralis.db?_journal_mode=WAL".
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, errs.Wrap(errs.KindStore, fmt.Errorf("open: %w", err))
	}
	if _, err := db.Exec(schemaDDL); err != nil {
		return nil, errs.Wrap(errs.KindStore, fmt.Errorf("migrate: %w", err))
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Get returns the fingerprint for trackID at the current schema
// version, or (zero, false, nil) on a clean miss.
func (s *Store) Get(trackID string) (models.Fingerprint, bool, error) {
	row := s.db.QueryRow(`
		SELECT sub_bass, bass, low_mid, mid, upper_mid, presence, air,
		       lufs, crest_factor, bass_mid_ratio,
		       tempo_bpm, rhythm_stability, transient_density, silence_ratio,
		       spectral_centroid_hz, spectral_rolloff_hz, spectral_flatness,
		       harmonic_ratio, pitch_stability, chroma_energy,
		       dr_variation, loudness_variation, peak_consistency,
		       stereo_width, phase_correlation, schema_version, created_at
		FROM fingerprints WHERE track_id = ? AND schema_version = ?`,
		trackID, models.SchemaVersion)

	var fp models.Fingerprint
	var createdAtUnix int64
	err := row.Scan(
		&fp.SubBass, &fp.Bass, &fp.LowMid, &fp.Mid, &fp.UpperMid, &fp.Presence, &fp.Air,
		&fp.LUFS, &fp.CrestFactor, &fp.BassMidRatio,
		&fp.TempoBPM, &fp.RhythmStability, &fp.TransientDensity, &fp.SilenceRatio,
		&fp.SpectralCentroidHz, &fp.SpectralRolloffHz, &fp.SpectralFlatness,
		&fp.HarmonicRatio, &fp.PitchStability, &fp.ChromaEnergy,
		&fp.DynamicRangeVariation, &fp.LoudnessVariation, &fp.PeakConsistency,
		&fp.StereoWidth, &fp.PhaseCorrelation, &fp.SchemaVersion, &createdAtUnix,
	)
	if err == sql.ErrNoRows {
		return models.Fingerprint{}, false, nil
	}
	if err != nil {
		return models.Fingerprint{}, false, errs.Wrap(errs.KindStore, fmt.Errorf("get %s: %w", trackID, err))
	}
	fp.TrackID = trackID
	fp.CreatedAt = time.Unix(createdAtUnix, 0).UTC()
	return fp, true, nil
}

// Exists reports whether a fingerprint at the current schema version
// exists for trackID, without fetching its payload.
func (s *Store) Exists(trackID string) (bool, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(1) FROM fingerprints WHERE track_id = ? AND schema_version = ?`,
		trackID, models.SchemaVersion).Scan(&n)
	if err != nil {
		return false, errs.Wrap(errs.KindStore, err)
	}
	return n > 0, nil
}

// Put idempotently persists fp, keyed by (track_id, schema_version).
// Writes are short and serialized (spec.md §5).
func (s *Store) Put(fp models.Fingerprint) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	bands := fp.FreqBands()
	_, err := s.db.Exec(`
		INSERT INTO fingerprints (
			track_id, schema_version,
			sub_bass, bass, low_mid, mid, upper_mid, presence, air,
			lufs, crest_factor, bass_mid_ratio,
			tempo_bpm, rhythm_stability, transient_density, silence_ratio,
			spectral_centroid_hz, spectral_rolloff_hz, spectral_flatness,
			harmonic_ratio, pitch_stability, chroma_energy,
			dr_variation, loudness_variation, peak_consistency,
			stereo_width, phase_correlation, created_at
		) VALUES (?,?, ?,?,?,?,?,?,?, ?,?,?, ?,?,?,?, ?,?,?, ?,?,?, ?,?,?, ?,?, ?)
		ON CONFLICT(track_id, schema_version) DO UPDATE SET
			sub_bass=excluded.sub_bass, bass=excluded.bass, low_mid=excluded.low_mid, mid=excluded.mid,
			upper_mid=excluded.upper_mid, presence=excluded.presence, air=excluded.air,
			lufs=excluded.lufs, crest_factor=excluded.crest_factor, bass_mid_ratio=excluded.bass_mid_ratio,
			tempo_bpm=excluded.tempo_bpm, rhythm_stability=excluded.rhythm_stability,
			transient_density=excluded.transient_density, silence_ratio=excluded.silence_ratio,
			spectral_centroid_hz=excluded.spectral_centroid_hz, spectral_rolloff_hz=excluded.spectral_rolloff_hz,
			spectral_flatness=excluded.spectral_flatness,
			harmonic_ratio=excluded.harmonic_ratio, pitch_stability=excluded.pitch_stability,
			chroma_energy=excluded.chroma_energy,
			dr_variation=excluded.dr_variation, loudness_variation=excluded.loudness_variation,
			peak_consistency=excluded.peak_consistency,
			stereo_width=excluded.stereo_width, phase_correlation=excluded.phase_correlation,
			created_at=excluded.created_at`,
		fp.TrackID, fp.SchemaVersion,
		bands[0], bands[1], bands[2], bands[3], bands[4], bands[5], bands[6],
		fp.LUFS, fp.CrestFactor, fp.BassMidRatio,
		fp.TempoBPM, fp.RhythmStability, fp.TransientDensity, fp.SilenceRatio,
		fp.SpectralCentroidHz, fp.SpectralRolloffHz, fp.SpectralFlatness,
		fp.HarmonicRatio, fp.PitchStability, fp.ChromaEnergy,
		fp.DynamicRangeVariation, fp.LoudnessVariation, fp.PeakConsistency,
		fp.StereoWidth, fp.PhaseCorrelation, fp.CreatedAt.Unix(),
	)
	if err != nil {
		return errs.Wrap(errs.KindStore, fmt.Errorf("put %s: %w", fp.TrackID, err))
	}
	return nil
}

// Delete removes all schema versions of trackID's fingerprint.
func (s *Store) Delete(trackID string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if _, err := s.db.Exec(`DELETE FROM fingerprints WHERE track_id = ?`, trackID); err != nil {
		return errs.Wrap(errs.KindStore, err)
	}
	return nil
}
