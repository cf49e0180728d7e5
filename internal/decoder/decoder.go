// Package decoder implements the Decoder Frontend (C1, spec.md §4.1):
// turning a file path + sample range into interleaved stereo float
// samples at a canonical internal rate. Grounded in the teacher's
// ffmpeg-subprocess pattern (server/wav/convert.go), generalized from
// "always write an intermediate WAV file" to "stream raw PCM over a
// pipe" for the hot playback path.
package decoder

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/matiaszanolli/auralis/internal/errs"
	"github.com/matiaszanolli/auralis/internal/models"
)

// Decoder turns a file path + time range into a canonical-rate stereo
// buffer (spec.md §4.1).
type Decoder interface {
	DecodeRange(ctx context.Context, path string, startSec, durSec float64) (models.StereoBuffer, error)
	Duration(ctx context.Context, path string) (float64, error)
}

// FfmpegDecoder shells out to ffmpeg/ffprobe exactly as the teacher's
// wav package does, but pipes raw float32 PCM instead of writing a
// temporary WAV file.
type FfmpegDecoder struct {
	SampleRate int // canonical rate, 44100 or 48000
	FfmpegPath string
	FfprobePath string
}

// NewFfmpegDecoder returns a decoder targeting the given canonical
// sample rate, defaulting binary paths to the ones on $PATH.
func NewFfmpegDecoder(sampleRate int) *FfmpegDecoder {
	return &FfmpegDecoder{SampleRate: sampleRate, FfmpegPath: "ffmpeg", FfprobePath: "ffprobe"}
}

// DecodeRange decodes [startSec, startSec+durSec) of path into a
// dual-stereo buffer at the canonical sample rate. The sample count is
// round(durSec*sr), independent of the source codec's frame boundaries
// (spec.md §4.1).
func (d *FfmpegDecoder) DecodeRange(ctx context.Context, path string, startSec, durSec float64) (models.StereoBuffer, error) {
	if _, err := os.Stat(path); err != nil {
		return models.StereoBuffer{}, errs.Decode(errs.ReasonIO, fmt.Errorf("stat %s: %w", path, err))
	}

	args := []string{
		"-v", "error",
		"-ss", fmt.Sprintf("%.6f", startSec),
		"-t", fmt.Sprintf("%.6f", durSec),
		"-i", path,
		"-f", "f32le",
		"-ar", strconv.Itoa(d.SampleRate),
		"-ac", "2",
		"pipe:1",
	}

	cmd := exec.CommandContext(ctx, d.FfmpegPath, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		reason := classifyFfmpegError(stderr.String())
		return models.StereoBuffer{}, errs.Decode(reason, fmt.Errorf("ffmpeg decode failed: %w (%s)", err, stderr.String()))
	}

	wantFrames := int(math.Round(durSec * float64(d.SampleRate)))
	samples := bytesToFloat32(stdout.Bytes())

	// Pad or trim to the deterministic frame count (spec.md §4.1).
	wantSamples := wantFrames * 2
	if len(samples) < wantSamples {
		padded := make([]float32, wantSamples)
		copy(padded, samples)
		samples = padded
	} else if len(samples) > wantSamples {
		samples = samples[:wantSamples]
	}

	return models.StereoBuffer{SampleRate: d.SampleRate, Channels: 2, Samples: samples}, nil
}

// Duration returns the media duration in seconds via ffprobe, grounded
// in the teacher's wav.GetAudioDuration.
func (d *FfmpegDecoder) Duration(ctx context.Context, path string) (float64, error) {
	cmd := exec.CommandContext(ctx, d.FfprobePath,
		"-v", "quiet",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	out, err := cmd.Output()
	if err != nil {
		return 0, errs.Decode(errs.ReasonIO, fmt.Errorf("ffprobe duration query failed: %w", err))
	}
	dur, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		return 0, errs.Decode(errs.ReasonCorrupt, fmt.Errorf("unparsable ffprobe output: %w", err))
	}
	return dur, nil
}

func classifyFfmpegError(stderr string) errs.DecodeReason {
	lower := strings.ToLower(stderr)
	switch {
	case strings.Contains(lower, "no such file"), strings.Contains(lower, "permission denied"):
		return errs.ReasonIO
	case strings.Contains(lower, "invalid data"), strings.Contains(lower, "could not find codec"):
		return errs.ReasonCorrupt
	case strings.Contains(lower, "unsupported") || strings.Contains(lower, "not recognized"):
		return errs.ReasonUnsupported
	default:
		return errs.ReasonCorrupt
	}
}

func bytesToFloat32(b []byte) []float32 {
	n := len(b) / 4
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		bits := binary.LittleEndian.Uint32(b[i*4:])
		out[i] = math.Float32frombits(bits)
	}
	return out
}
