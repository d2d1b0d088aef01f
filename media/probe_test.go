package media_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/skillstream/mediacore/media"
)

// stubRunner returns canned output per invoked binary.
type stubRunner struct {
	output []byte
	err    error
	calls  int
}

func (s *stubRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	s.calls++
	return s.output, s.err
}

func (s *stubRunner) RunStream(ctx context.Context, onLine func(string), name string, args ...string) error {
	s.calls++
	return s.err
}

// sh exists on any host the tests run on, so the cached tool check
// passes without ffmpeg installed.
func testTools() *media.Toolset {
	return &media.Toolset{FFmpeg: "sh", FFprobe: "sh"}
}

const probeJSON = `{
	"streams": [
		{"codec_type": "audio", "codec_name": "aac"},
		{"codec_type": "video", "codec_name": "h264", "width": 1280, "height": 720, "r_frame_rate": "30000/1001", "avg_frame_rate": "30000/1001"}
	],
	"format": {"format_name": "mov,mp4,m4a,3gp,3g2,mj2", "duration": "60.000000", "bit_rate": "1500000", "size": "11250000"}
}`

func TestProbe(t *testing.T) {
	runner := &stubRunner{output: []byte(probeJSON)}
	prober := media.NewProber(testTools(), runner)

	info, err := prober.Probe(context.Background(), "in.mp4")
	assert.NoError(t, err)
	assert.Equal(t, 60.0, info.Duration)
	assert.Equal(t, 1280, info.Width)
	assert.Equal(t, 720, info.Height)
	assert.Equal(t, "h264", info.Codec)
	assert.Equal(t, int64(1500000), info.Bitrate)
	assert.Equal(t, int64(11250000), info.Size)
	assert.InDelta(t, 29.97, info.FPS, 0.01)
}

// Probing the same unmodified file twice must be deterministic.
func TestProbeIdempotent(t *testing.T) {
	runner := &stubRunner{output: []byte(probeJSON)}
	prober := media.NewProber(testTools(), runner)

	first, err := prober.Probe(context.Background(), "in.mp4")
	assert.NoError(t, err)
	second, err := prober.Probe(context.Background(), "in.mp4")
	assert.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 2, runner.calls)
}

func TestProbeNoVideoStream(t *testing.T) {
	audioOnly := `{
		"streams": [{"codec_type": "audio", "codec_name": "mp3"}],
		"format": {"format_name": "mp3", "duration": "10.0"}
	}`
	prober := media.NewProber(testTools(), &stubRunner{output: []byte(audioOnly)})

	_, err := prober.Probe(context.Background(), "in.mp3")
	assert.ErrorIs(t, err, media.ErrNoVideoStream)
}

func TestProbeFailure(t *testing.T) {
	runner := &stubRunner{err: errors.New("exit status 1: moov atom not found")}
	prober := media.NewProber(testTools(), runner)

	_, err := prober.Probe(context.Background(), "broken.mp4")
	assert.Error(t, err)

	var probeErr *media.ProbeError
	assert.ErrorAs(t, err, &probeErr)
	assert.Contains(t, probeErr.Detail, "moov atom not found")
}

func TestProbeFrameRateFallbacks(t *testing.T) {
	tests := []struct {
		name string
		json string
		fps  float64
	}{
		{
			name: "zero denominator falls back to avg_frame_rate",
			json: `{"streams": [{"codec_type": "video", "r_frame_rate": "30/0", "avg_frame_rate": "25/1"}], "format": {}}`,
			fps:  25,
		},
		{
			name: "both unusable yields default",
			json: `{"streams": [{"codec_type": "video", "r_frame_rate": "0/0", "avg_frame_rate": "0/0"}], "format": {}}`,
			fps:  30,
		},
		{
			name: "absent frame rates yield default",
			json: `{"streams": [{"codec_type": "video"}], "format": {}}`,
			fps:  30,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prober := media.NewProber(testTools(), &stubRunner{output: []byte(tt.json)})
			info, err := prober.Probe(context.Background(), "in.mp4")
			assert.NoError(t, err)
			assert.Equal(t, tt.fps, info.FPS)
		})
	}
}
