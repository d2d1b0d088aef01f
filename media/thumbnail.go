package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
)

// assumedDuration is the degraded-mode duration used for timestamp math
// when extraction failed and the real duration is unknown.
const assumedDuration = 60.0

// ThumbnailOptions controls still-frame extraction.
type ThumbnailOptions struct {
	Count   int
	Width   int
	Format  string
	Quality int
	// Timestamps overrides the computed evenly spaced points when set.
	Timestamps []float64
}

// DefaultThumbnailOptions returns the standard thumbnail policy.
func DefaultThumbnailOptions() ThumbnailOptions {
	return ThumbnailOptions{Count: 3, Width: 320, Format: "jpg", Quality: 2}
}

// ThumbnailTimestamps returns count evenly spaced points strictly between
// 0 and duration, so boundary black frames are never captured. For
// count=3 and duration=120 that is {30, 60, 90}.
func ThumbnailTimestamps(duration float64, count int) []float64 {
	if duration <= 0 {
		duration = assumedDuration
	}
	if count <= 0 {
		count = 1
	}
	out := make([]float64, count)
	for i := 1; i <= count; i++ {
		out[i-1] = duration * float64(i) / float64(count+1)
	}
	return out
}

// ThumbnailGenerator extracts still frames from a video.
type ThumbnailGenerator struct {
	tools  *Toolset
	runner Runner
}

// NewThumbnailGenerator returns a ThumbnailGenerator.
func NewThumbnailGenerator(tools *Toolset, runner Runner) *ThumbnailGenerator {
	return &ThumbnailGenerator{tools: tools, runner: runner}
}

// Generate extracts opts.Count frames of the input into outputDir, named
// thumb_1.<fmt>, thumb_2.<fmt>, ... in timestamp order so the first can
// always be treated as the primary thumbnail. A failed timestamp does not
// abort the others; the call fails only when every extraction failed.
func (g *ThumbnailGenerator) Generate(ctx context.Context, inputPath, outputDir string, duration float64, opts ThumbnailOptions) ([]string, error) {
	if err := g.tools.Check(); err != nil {
		return nil, err
	}
	if opts.Count <= 0 {
		opts.Count = 3
	}
	if opts.Width <= 0 {
		opts.Width = 320
	}
	if opts.Format == "" {
		opts.Format = "jpg"
	}
	if opts.Quality <= 0 || opts.Quality > 31 {
		opts.Quality = 2
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create thumbnail dir: %w", err)
	}

	timestamps := opts.Timestamps
	if len(timestamps) == 0 {
		timestamps = ThumbnailTimestamps(duration, opts.Count)
	}

	var paths []string
	for i, ts := range timestamps {
		outputPath := filepath.Join(outputDir, fmt.Sprintf("thumb_%d.%s", i+1, opts.Format))
		args := []string{
			"-y",
			"-ss", fmt.Sprintf("%.2f", ts),
			"-i", inputPath,
			"-vframes", "1",
			"-vf", fmt.Sprintf("scale=%d:-1", opts.Width),
			"-q:v", fmt.Sprintf("%d", opts.Quality),
			outputPath,
		}
		if _, err := g.runner.Run(ctx, g.tools.FFmpeg, args...); err != nil {
			log.Warnf("Thumbnail at %.2fs failed: %v", ts, err)
			continue
		}
		paths = append(paths, outputPath)
	}

	if len(paths) == 0 {
		return nil, &ThumbnailError{Attempts: len(timestamps)}
	}
	return paths, nil
}
