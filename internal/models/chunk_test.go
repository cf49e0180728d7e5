package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyDynamics_ExactBoundary_IsDynamicLoud(t *testing.T) {
	d := ClassifyDynamics(-12.0, 13.0)
	assert.Equal(t, DynamicLoud, d.Kind)
}

func TestClassifyDynamics_JustBelowLUFSThreshold_IsQuietModerate(t *testing.T) {
	d := ClassifyDynamics(-12.01, 13.0)
	assert.Equal(t, QuietModerate, d.Kind)
}

func TestClassifyDynamics_LoudAndCompressed_IsCompressedLoud(t *testing.T) {
	d := ClassifyDynamics(-9.0, 8.5)
	assert.Equal(t, CompressedLoud, d.Kind)
	assert.InDelta(t, 0.45, d.ExpansionFactor, 1e-9)
	assert.Equal(t, -0.5, d.MakeupDB)
}

func TestClassifyDynamics_LoudAndDynamic_IsDynamicLoud(t *testing.T) {
	d := ClassifyDynamics(-11.0, 15.0)
	assert.Equal(t, DynamicLoud, d.Kind)
}
