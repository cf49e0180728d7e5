package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/google/uuid"

	"github.com/matiaszanolli/auralis/internal/config"
	"github.com/matiaszanolli/auralis/internal/decoder"
	"github.com/matiaszanolli/auralis/internal/fingerprint"
	"github.com/matiaszanolli/auralis/internal/store"
)

// fingerprintCmd extracts a 25-D fingerprint for path, persists it to
// the durable store and a sidecar file, and prints it.
func fingerprintCmd(cfg config.Config, path string) {
	st, err := store.Open(dataFilePath("fingerprints.db"))
	if err != nil {
		color.Red("fatal: failed to open fingerprint store: %v", err)
		os.Exit(1)
	}
	defer st.Close()

	dec := decoder.NewFfmpegDecoder(cfg.CanonicalSampleRate)
	ctx := context.Background()

	dur, err := dec.Duration(ctx, path)
	if err != nil {
		color.Red("error: could not probe duration: %v", err)
		os.Exit(1)
	}

	window := cfg.ExtractionSampleSecs
	if dur < window {
		window = dur
	}
	buf, err := dec.DecodeRange(ctx, path, 0, window)
	if err != nil {
		color.Red("error: decode failed: %v", err)
		os.Exit(1)
	}

	trackID := uuid.NewString()
	fp, err := fingerprint.Extract(trackID, buf, cfg.MinFingerprintDurationSec)
	if err != nil {
		color.Red("error: extraction failed: %v", err)
		os.Exit(1)
	}

	if err := st.Put(fp); err != nil {
		color.Yellow("warning: failed to persist to store: %v", err)
	}
	if err := store.WriteSidecar(path, fp); err != nil {
		color.Yellow("warning: failed to write sidecar: %v", err)
	}

	color.Green("fingerprinted %s", filepath.Base(path))
	fmt.Printf("  track_id:         %s\n", fp.TrackID)
	fmt.Printf("  lufs:             %.2f\n", fp.LUFS)
	fmt.Printf("  crest_factor_db:  %.2f\n", fp.CrestFactor)
	fmt.Printf("  spectral_centroid_hz: %.1f\n", fp.SpectralCentroidHz)
	fmt.Printf("  tempo_bpm:        %.1f\n", fp.TempoBPM)
	fmt.Printf("  stereo_width:     %.3f\n", fp.StereoWidth)
}
