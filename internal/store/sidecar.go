package store

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/matiaszanolli/auralis/internal/errs"
	"github.com/matiaszanolli/auralis/internal/models"
)

// SidecarSize is the exact byte length of a fingerprint sidecar file:
// 4-byte magic + u16 version + u16 reserved + 25 little-endian f32
// (spec.md §6): 4 + 2 + 2 + 25*4 = 58.
const SidecarSize = 4 + 2 + 2 + 25*4

// sidecarPath returns the sidecar path adjacent to the audio file,
// following the teacher's convention of deriving sibling file paths
// from the original extension (wav.ConvertToWAV / ReformatWAV).
func sidecarPath(audioPath string) string {
	ext := filepath.Ext(audioPath)
	return strings.TrimSuffix(audioPath, ext) + ".afp"
}

// ReadSidecar looks for a fingerprint sidecar file adjacent to path and
// decodes it (spec.md §4.3, §6). Returns (zero, false, nil) when no
// sidecar exists.
func ReadSidecar(audioPath string) (models.Fingerprint, bool, error) {
	sp := sidecarPath(audioPath)
	data, err := os.ReadFile(sp)
	if os.IsNotExist(err) {
		return models.Fingerprint{}, false, nil
	}
	if err != nil {
		return models.Fingerprint{}, false, errs.Wrap(errs.KindStore, fmt.Errorf("read sidecar %s: %w", sp, err))
	}

	fp, err := DecodeSidecar(data)
	if err != nil {
		return models.Fingerprint{}, false, err
	}
	return fp, true, nil
}

// DecodeSidecar parses the fixed 58-byte sidecar layout.
func DecodeSidecar(data []byte) (models.Fingerprint, error) {
	if len(data) < SidecarSize {
		return models.Fingerprint{}, errs.New(errs.KindStore, "sidecar file truncated")
	}
	if !bytes.Equal(data[0:4], models.SidecarMagic[:]) {
		return models.Fingerprint{}, errs.New(errs.KindStore, "bad sidecar magic")
	}
	version := binary.LittleEndian.Uint16(data[4:6])
	// bytes [6:8] are reserved.

	var floats [25]float64
	for i := 0; i < 25; i++ {
		off := 8 + i*4
		bits := binary.LittleEndian.Uint32(data[off : off+4])
		floats[i] = float64(math.Float32frombits(bits))
	}

	fp := models.Fingerprint{
		SubBass: floats[0], Bass: floats[1], LowMid: floats[2], Mid: floats[3],
		UpperMid: floats[4], Presence: floats[5], Air: floats[6],
		LUFS: floats[7], CrestFactor: floats[8], BassMidRatio: floats[9],
		TempoBPM: floats[10], RhythmStability: floats[11], TransientDensity: floats[12], SilenceRatio: floats[13],
		SpectralCentroidHz: floats[14], SpectralRolloffHz: floats[15], SpectralFlatness: floats[16],
		HarmonicRatio: floats[17], PitchStability: floats[18], ChromaEnergy: floats[19],
		DynamicRangeVariation: floats[20], LoudnessVariation: floats[21], PeakConsistency: floats[22],
		StereoWidth: floats[23], PhaseCorrelation: floats[24],
		SchemaVersion: version,
	}
	return fp, nil
}

// EncodeSidecar serializes fp to the fixed 58-byte layout (spec.md §6).
func EncodeSidecar(fp models.Fingerprint) []byte {
	buf := make([]byte, SidecarSize)
	copy(buf[0:4], models.SidecarMagic[:])
	binary.LittleEndian.PutUint16(buf[4:6], fp.SchemaVersion)
	// buf[6:8] reserved, left zero.

	values := fp.FreqBands()
	allValues := append([]float64{}, values[:]...)
	allValues = append(allValues,
		fp.LUFS, fp.CrestFactor, fp.BassMidRatio,
		fp.TempoBPM, fp.RhythmStability, fp.TransientDensity, fp.SilenceRatio,
		fp.SpectralCentroidHz, fp.SpectralRolloffHz, fp.SpectralFlatness,
		fp.HarmonicRatio, fp.PitchStability, fp.ChromaEnergy,
		fp.DynamicRangeVariation, fp.LoudnessVariation, fp.PeakConsistency,
		fp.StereoWidth, fp.PhaseCorrelation,
	)
	for i, v := range allValues {
		off := 8 + i*4
		binary.LittleEndian.PutUint32(buf[off:off+4], math.Float32bits(float32(v)))
	}
	return buf
}

// WriteSidecar writes fp's sidecar file adjacent to audioPath.
func WriteSidecar(audioPath string, fp models.Fingerprint) error {
	sp := sidecarPath(audioPath)
	data := EncodeSidecar(fp)
	if err := os.WriteFile(sp, data, 0o644); err != nil {
		return errs.Wrap(errs.KindStore, fmt.Errorf("write sidecar %s: %w", sp, err))
	}
	return nil
}
