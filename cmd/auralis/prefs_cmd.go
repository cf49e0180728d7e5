package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/fatih/color"

	"github.com/matiaszanolli/auralis/internal/models"
	"github.com/matiaszanolli/auralis/internal/preferences"
)

// prefsUpdateCmd applies a bass-offset delta to recordingType's
// preferences through the explicit update operation (spec.md §4.6,
// §6 "Profile update operation"): a trivial regression suite rejects
// implausibly large deltas, matching the end-to-end scenario in
// spec.md §8 ("update_profile(unknown, bass_delta = +10 dB) must fail").
func prefsUpdateCmd(recordingType, bassDeltaStr string) {
	bassDelta, err := strconv.ParseFloat(bassDeltaStr, 64)
	if err != nil {
		color.Red("error: invalid bass delta %q: %v", bassDeltaStr, err)
		os.Exit(1)
	}

	prefs, err := preferences.Load(dataFilePath("preferences.json"))
	if err != nil {
		color.Red("fatal: failed to load preferences: %v", err)
		os.Exit(1)
	}

	rt := models.RecordingType(recordingType)
	err = prefs.Update(func(c *preferences.PersonalPreferences) {
		off := c.ByType[rt]
		off.BassDB += bassDelta
		c.ByType[rt] = off
	}, regressionSuite)

	if err != nil {
		color.Red("preferences update rejected: %v", err)
		os.Exit(0) // not a fatal configuration/storage error (spec.md §6 exit codes)
	}

	color.Green("preferences updated: %s bass offset is now %.2f dB (version %d)",
		recordingType, prefs.ByType[rt].BassDB, prefs.Version)
	fmt.Println()
}

// prefsShowCmd prints the currently committed preferences via a
// consistent read-only Snapshot, so a concurrent Update can't be
// observed half-applied.
func prefsShowCmd() {
	prefs, err := preferences.Load(dataFilePath("preferences.json"))
	if err != nil {
		color.Red("fatal: failed to load preferences: %v", err)
		os.Exit(1)
	}

	snap := prefs.Snapshot()
	color.Green("preferences version %d", snap.Version)
	if len(snap.ByType) == 0 {
		fmt.Println("  (no per-type offsets recorded)")
		return
	}
	for rt, off := range snap.ByType {
		fmt.Printf("  %-10s bass=%+.2fdB mid=%+.2fdB treble=%+.2fdB stereo=%+.2f intensity_bias=%+.2f\n",
			rt, off.BassDB, off.MidDB, off.TrebleDB, off.StereoWidthTarget, off.IntensityBias)
	}
}

// regressionSuite is a minimal sanity check run before any preferences
// candidate commits: offsets outside a plausible range are rejected
// (spec.md §4.6 step c/d).
func regressionSuite(candidate *preferences.PersonalPreferences) error {
	for rt, off := range candidate.ByType {
		if off.BassDB < -6 || off.BassDB > 6 {
			return fmt.Errorf("%s bass offset %.1f dB outside plausible range [-6, 6]", rt, off.BassDB)
		}
		if off.TrebleDB < -6 || off.TrebleDB > 6 {
			return fmt.Errorf("%s treble offset %.1f dB outside plausible range [-6, 6]", rt, off.TrebleDB)
		}
	}
	return nil
}
