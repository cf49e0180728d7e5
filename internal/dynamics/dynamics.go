// Package dynamics implements the Dynamics Policy stage (C7, spec.md
// §4.7): measure a chunk's LUFS and crest factor and apply the 2-D LWRP
// decision table. The decision table itself is models.ClassifyDynamics;
// this package wires it to per-chunk measurement and per-chunk logging.
package dynamics

import (
	"github.com/matiaszanolli/auralis/internal/fingerprint"
	"github.com/matiaszanolli/auralis/internal/logging"
	"github.com/matiaszanolli/auralis/internal/models"
)

var log = logging.For("dynamics")

// Decide measures chunkMono's loudness and crest factor and applies the
// LWRP decision table. The decision is logged per chunk for
// observability (spec.md §4.7: "may differ across chunks of the same
// track").
func Decide(trackID string, chunkIndex int, chunkMono []float64, sampleRate int) models.DynamicsDecision {
	lufs := fingerprint.IntegratedLUFS(chunkMono, sampleRate)
	crest := fingerprint.CrestFactorDB(chunkMono)

	decision := models.ClassifyDynamics(lufs, crest)

	log.Debug().
		Str("track_id", trackID).
		Int("chunk", chunkIndex).
		Str("decision", string(decision.Kind)).
		Float64("lufs", lufs).
		Float64("crest_db", crest).
		Msg("dynamics decision")

	return decision
}
