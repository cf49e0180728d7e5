package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"

	"github.com/matiaszanolli/auralis/internal/config"
	"github.com/matiaszanolli/auralis/internal/decoder"
	"github.com/matiaszanolli/auralis/internal/preferences"
	"github.com/matiaszanolli/auralis/internal/resolver"
	"github.com/matiaszanolli/auralis/internal/session"
	"github.com/matiaszanolli/auralis/internal/store"
)

// runPlayCmd drives a Session end-to-end on the CLI, printing each
// emitted chunk's dynamics decision as a stand-in for a real transport
// (spec.md explicitly leaves transport framing out of scope).
func runPlayCmd(cfg config.Config, path, preset string, intensity float64, maxChunks int) {
	st, err := store.Open(dataFilePath("fingerprints.db"))
	if err != nil {
		color.Red("fatal: failed to open fingerprint store: %v", err)
		os.Exit(1)
	}
	defer st.Close()

	dec := decoder.NewFfmpegDecoder(cfg.CanonicalSampleRate)
	res := resolver.New(st, dec, cfg.ResolveDeadline, cfg.ExtractionSampleSecs, cfg.MinFingerprintDurationSec)

	prefs, err := preferences.Load(dataFilePath("preferences.json"))
	if err != nil {
		color.Red("fatal: failed to load preferences: %v", err)
		os.Exit(1)
	}

	sess := session.New(cfg, res, dec, prefs, 32)

	ctx := context.Background()
	if err := sess.Play(ctx, path, path, preset, intensity); err != nil {
		color.Red("error: play failed: %v", err)
		os.Exit(1)
	}

	// The session does not close Output() when the track ends, so stop
	// after the track's last chunk index (same stepping as chunked.Stream).
	totalChunks := 0
	if dur, err := dec.Duration(ctx, path); err == nil && cfg.ChunkDurationSec > 0 {
		for t := 0.0; t < dur; t += cfg.ChunkDurationSec {
			totalChunks++
		}
	}

	count := 0
	for chunk := range sess.Output() {
		if chunk.Stalled {
			color.Yellow("chunk %d: STALLED", chunk.Index)
			continue
		}
		fmt.Printf("chunk %d: decision=%s lufs=%.2f crest=%.2f samples=%d\n",
			chunk.Index, chunk.Decision.Kind, chunk.Decision.LUFS, chunk.Decision.CrestDB, chunk.NSamples)

		count++
		if maxChunks > 0 && count >= maxChunks {
			sess.Cancel()
			break
		}
		if sess.State() == session.Ended || sess.State() == session.Cancelled {
			break
		}
		if totalChunks > 0 && chunk.Index+1 >= totalChunks {
			break
		}
	}

	time.Sleep(10 * time.Millisecond) // let the producer goroutine observe cancellation
	color.Green("done: %d chunks emitted", count)
}
