// Package classifier implements the Recording-Type Classifier (C5,
// spec.md §4.5): score a fingerprint across reference profiles and emit
// (type, confidence, AdaptiveParameters).
package classifier

import "github.com/matiaszanolli/auralis/internal/models"

// dimensionRange is a reference window [lo, hi] for one scoring
// dimension, plus its weight in the combined profile score.
type dimensionRange struct {
	lo, hi, weight float64
}

func (d dimensionRange) center() float64 { return (d.lo + d.hi) / 2 }
func (d dimensionRange) halfWidth() float64 {
	w := (d.hi - d.lo) / 2
	if w <= 0 {
		return 1
	}
	return w
}

// profile is a recording-type reference: per-dimension windows plus the
// base adaptive parameters that dimension fine-tuning starts from
// (spec.md §4.5 table).
type profile struct {
	name       models.RecordingType
	centroidHz dimensionRange
	bassMidDB  dimensionRange
	stereo     dimensionRange
	crestDB    dimensionRange
	philosophy models.Philosophy
	base       models.AdaptiveParameters
}

// profiles returns the four reference profiles from spec.md §4.5's
// table, in the fixed evaluation order (ties resolve to the first
// listed, i.e. Studio before Bootleg before Metal before HD).
func profiles() []profile {
	return []profile{
		{
			name:       models.Studio,
			centroidHz: dimensionRange{600, 800, 1.0},
			bassMidDB:  dimensionRange{-2, 3, 0.8},
			stereo:     dimensionRange{0.30, 0.50, 0.6},
			crestDB:    dimensionRange{6.0, 6.5, 0.6},
			philosophy: models.PhilosophyEnhance,
			base: models.AdaptiveParameters{
				BassDB: 0, MidDB: 0, TrebleDB: 0.5,
				SpectralStrategy: models.Maintain, TargetCentroidHz: 700,
				StereoStrategy: models.MaintainStereo, StereoWidthTarget: 0.40,
				CrestTargetMin: 6.0, CrestTargetMax: 9.0, DRExpansionDB: 0,
				RMSAdjustDB: 0, PeakHeadroomDB: 1.0,
				Philosophy: models.PhilosophyEnhance,
			},
		},
		{
			name:       models.Bootleg,
			centroidHz: dimensionRange{370, 570, 1.0},
			bassMidDB:  dimensionRange{12, 17, 1.0},
			stereo:     dimensionRange{0.15, 0.25, 0.5},
			crestDB:    dimensionRange{4.5, 6.8, 0.5},
			philosophy: models.PhilosophyCorrect,
			base: models.AdaptiveParameters{
				BassDB: -3, MidDB: 1, TrebleDB: 3,
				SpectralStrategy: models.Brighten, TargetCentroidHz: 1500,
				StereoStrategy: models.Expand, StereoWidthTarget: 0.35,
				CrestTargetMin: 7.0, CrestTargetMax: 11.0, DRExpansionDB: 3,
				RMSAdjustDB: -1, PeakHeadroomDB: 1.0,
				Philosophy: models.PhilosophyCorrect,
			},
		},
		{
			name:       models.Metal,
			centroidHz: dimensionRange{1200, 1400, 1.0},
			bassMidDB:  dimensionRange{8, 11, 0.7},
			stereo:     dimensionRange{0.35, 0.45, 0.5},
			crestDB:    dimensionRange{3.0, 4.5, 0.8},
			philosophy: models.PhilosophyPunch,
			base: models.AdaptiveParameters{
				BassDB: 1, MidDB: -1, TrebleDB: 0.5,
				SpectralStrategy: models.Maintain, TargetCentroidHz: 1300,
				StereoStrategy: models.MaintainStereo, StereoWidthTarget: 0.40,
				CrestTargetMin: 5.0, CrestTargetMax: 8.0, DRExpansionDB: 1.5,
				RMSAdjustDB: 0, PeakHeadroomDB: 0.6,
				Philosophy: models.PhilosophyPunch,
			},
		},
		{
			name:       models.HDBrightTransparent,
			centroidHz: dimensionRange{7500, 8000, 1.0},
			bassMidDB:  dimensionRange{-2, 3, 0.6},
			stereo:     dimensionRange{0.08, 0.16, 0.6},
			crestDB:    dimensionRange{10, 20, 0.6},
			philosophy: models.PhilosophyEnhance,
			base: models.AdaptiveParameters{
				BassDB: 0, MidDB: 0, TrebleDB: -1,
				SpectralStrategy: models.Darken, TargetCentroidHz: 6000,
				StereoStrategy: models.Narrow, StereoWidthTarget: 0.12,
				CrestTargetMin: 10, CrestTargetMax: 16, DRExpansionDB: 0,
				RMSAdjustDB: 0, PeakHeadroomDB: 1.5,
				Philosophy: models.PhilosophyEnhance,
			},
		},
	}
}
