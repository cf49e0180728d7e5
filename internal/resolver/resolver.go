// Package resolver implements the Fingerprint Resolver (C4, spec.md
// §4.4): a three-tier cache (store -> sidecar -> on-demand extraction)
// with single-flight coalescing and a bounded deadline, grounded in the
// teacher's chunked-extraction pipeline (shazam.FingerprintAudioChunked)
// generalized with golang.org/x/sync/singleflight for the coalescing
// requirement spec.md §4.4.5 calls out explicitly.
package resolver

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/matiaszanolli/auralis/internal/decoder"
	"github.com/matiaszanolli/auralis/internal/fingerprint"
	"github.com/matiaszanolli/auralis/internal/logging"
	"github.com/matiaszanolli/auralis/internal/models"
	"github.com/matiaszanolli/auralis/internal/store"
)

var log = logging.For("resolver")

// Resolver resolves a track_id to a fingerprint, trying the durable
// store, then the sidecar file, then on-demand extraction, in that
// order (spec.md §4.4).
type Resolver struct {
	Store              *store.Store
	Decoder            decoder.Decoder
	Deadline           time.Duration // default 60s
	ExtractionWindowSec float64      // fallback first-N-seconds, 120s
	MinDurationSec     float64

	group singleflight.Group
}

// New builds a Resolver with the given collaborators, extraction
// deadline, extraction window and minimum duration (spec.md §4.4.4).
func New(st *store.Store, dec decoder.Decoder, deadline time.Duration, extractionWindowSec, minDurationSec float64) *Resolver {
	return &Resolver{
		Store:               st,
		Decoder:             dec,
		Deadline:            deadline,
		ExtractionWindowSec: extractionWindowSec,
		MinDurationSec:      minDurationSec,
	}
}

// Resolve implements the three-tier lookup with single-flight
// coalescing and bounded deadline (spec.md §4.4). It never returns an
// error to the caller: a failed or timed-out extraction degrades to a
// neutral fingerprint (spec.md §4.4, §7).
func (r *Resolver) Resolve(ctx context.Context, trackID, path string) models.Fingerprint {
	if fp, ok, err := r.Store.Get(trackID); err == nil && ok {
		return fp
	}

	if fp, ok, err := store.ReadSidecar(path); err == nil && ok && fp.SchemaVersion == models.SchemaVersion {
		fp.TrackID = trackID // the sidecar layout carries no track id
		if err := r.Store.Put(fp); err != nil {
			log.Warn().Err(err).Str("track_id", trackID).Msg("failed to persist sidecar fingerprint")
		}
		return fp
	}

	return r.resolveViaExtraction(ctx, trackID, path)
}

// resolveViaExtraction coalesces concurrent callers for the same
// track_id onto a single extraction (spec.md §4.4.5): only one
// extraction runs, and a caller whose own deadline expires still
// returns independently while the extraction continues for others (and
// in the background for the timed-out caller, per spec.md §4.4.4).
func (r *Resolver) resolveViaExtraction(ctx context.Context, trackID, path string) models.Fingerprint {
	resultCh := r.group.DoChan(trackID, func() (interface{}, error) {
		return r.extract(trackID, path), nil
	})

	deadline := r.Deadline
	if deadline <= 0 {
		deadline = 60 * time.Second
	}
	timer := time.NewTimer(deadline)
	defer timer.Stop()

	select {
	case res := <-resultCh:
		fp, _ := res.Val.(models.Fingerprint)
		return fp
	case <-timer.C:
		log.Warn().Str("track_id", trackID).Dur("deadline", deadline).
			Msg("fingerprint resolution deadline exceeded, falling back to neutral")
		return models.Neutral(trackID)
	case <-ctx.Done():
		return models.Neutral(trackID)
	}
}

// extract runs the actual decode+fingerprint pipeline. It always
// returns a usable fingerprint (real or neutral) and never propagates
// an error to its caller, matching the "cache miss followed by
// extraction error yields Neutral" rule in spec.md §4.4/§7.
func (r *Resolver) extract(trackID, path string) models.Fingerprint {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	dur, err := r.Decoder.Duration(ctx, path)
	if err != nil {
		log.Error().Err(err).Str("track_id", trackID).Msg("duration probe failed")
		return models.Neutral(trackID)
	}

	window := r.ExtractionWindowSec
	if window <= 0 || dur < window {
		window = dur
	}

	buf, err := r.Decoder.DecodeRange(ctx, path, 0, window)
	if err != nil {
		log.Error().Err(err).Str("track_id", trackID).Msg("decode failed during fingerprint extraction")
		return models.Neutral(trackID)
	}

	fp, err := fingerprint.Extract(trackID, buf, r.MinDurationSec)
	if err != nil {
		log.Warn().Err(err).Str("track_id", trackID).Msg("extraction failed, falling back to neutral")
		return models.Neutral(trackID)
	}

	if err := r.Store.Put(fp); err != nil {
		log.Error().Err(err).Str("track_id", trackID).Msg("failed to persist extracted fingerprint")
	}
	return fp
}
