package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

// Profile is the fixed encoding policy for one quality rendition.
type Profile struct {
	Name         string
	Width        int
	Height       int
	VideoBitrate string
	MaxRate      string
	BufSize      string
	AudioBitrate string
	CRF          int
	Preset       string
}

// Profiles is the fixed quality ladder. Bitrate strings use the
// <number>k convention (e.g. "2500k" = 2,500,000 bits/sec).
var Profiles = map[string]Profile{
	"360p":  {Name: "360p", Width: 640, Height: 360, VideoBitrate: "800k", MaxRate: "1200k", BufSize: "1600k", AudioBitrate: "96k", CRF: 23, Preset: "fast"},
	"480p":  {Name: "480p", Width: 854, Height: 480, VideoBitrate: "1400k", MaxRate: "2100k", BufSize: "2800k", AudioBitrate: "128k", CRF: 23, Preset: "fast"},
	"720p":  {Name: "720p", Width: 1280, Height: 720, VideoBitrate: "2500k", MaxRate: "3750k", BufSize: "5000k", AudioBitrate: "128k", CRF: 23, Preset: "fast"},
	"1080p": {Name: "1080p", Width: 1920, Height: 1080, VideoBitrate: "5000k", MaxRate: "7500k", BufSize: "10000k", AudioBitrate: "192k", CRF: 23, Preset: "fast"},
}

// ProfileFor resolves a quality name to its profile.
func ProfileFor(quality string) (Profile, error) {
	p, ok := Profiles[quality]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %q", ErrUnsupportedQuality, quality)
	}
	return p, nil
}

// Resolution returns the profile's resolution string, e.g. "1280x720".
func (p Profile) Resolution() string {
	return fmt.Sprintf("%dx%d", p.Width, p.Height)
}

// BitrateBits returns the target video bitrate in bits per second.
func (p Profile) BitrateBits() int64 {
	return ParseBitrate(p.VideoBitrate)
}

// ParseBitrate parses a "<number>k" bitrate string into bits per second.
// Malformed strings parse to 0.
func ParseBitrate(s string) int64 {
	s = strings.TrimSpace(strings.ToLower(s))
	if strings.HasSuffix(s, "k") {
		n, err := strconv.ParseInt(strings.TrimSuffix(s, "k"), 10, 64)
		if err != nil {
			return 0
		}
		return n * 1000
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// FormatBitrate composes bits per second into the "<number>k" convention.
func FormatBitrate(bits int64) string {
	return strconv.FormatInt(bits/1000, 10) + "k"
}

// Progress is one periodic progress report from the encoder.
type Progress struct {
	Frame   int64
	FPS     float64
	Bitrate string
	OutTime time.Duration
	Speed   float64
}

// Transcoder converts an input file into one output rendition by invoking
// the external encoder.
type Transcoder struct {
	tools  *Toolset
	runner Runner
}

// NewTranscoder returns a Transcoder using the given toolset and runner.
func NewTranscoder(tools *Toolset, runner Runner) *Transcoder {
	return &Transcoder{tools: tools, runner: runner}
}

// Transcode encodes inputPath into outputPath at the given profile.
// The output is written to a temporary path and renamed only on success,
// so a partial file is never visible at outputPath. onProgress, if
// non-nil, receives periodic progress reports; a panicking callback does
// not abort the encode.
func (t *Transcoder) Transcode(ctx context.Context, inputPath, outputPath string, profile Profile, onProgress func(Progress)) error {
	if err := t.tools.Check(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	// ffmpeg derives the muxer from the filename, so the temp path keeps
	// the real extension.
	tmpPath := filepath.Join(filepath.Dir(outputPath), ".part_"+filepath.Base(outputPath))

	args := []string{
		"-y",
		"-i", inputPath,
		"-vf", fmt.Sprintf("scale=-2:%d", profile.Height),
		"-c:v", "libx264",
		"-preset", profile.Preset,
		"-crf", strconv.Itoa(profile.CRF),
		"-b:v", profile.VideoBitrate,
		"-maxrate", profile.MaxRate,
		"-bufsize", profile.BufSize,
		"-c:a", "aac",
		"-b:a", profile.AudioBitrate,
		"-ar", "44100",
		"-ac", "2",
		// Put the moov atom up front so playback can start before the
		// whole file is downloaded.
		"-movflags", "+faststart",
		"-progress", "pipe:1",
		"-loglevel", "error",
		tmpPath,
	}

	parser := newProgressParser(onProgress)
	err := t.runner.RunStream(ctx, parser.line, t.tools.FFmpeg, args...)
	if err != nil {
		os.Remove(tmpPath)
		return &TranscodeError{Quality: profile.Name, Detail: err.Error()}
	}
	if err := os.Rename(tmpPath, outputPath); err != nil {
		os.Remove(tmpPath)
		return &TranscodeError{Quality: profile.Name, Detail: "finalize output: " + err.Error()}
	}
	return nil
}

// progressParser accumulates the key=value blocks ffmpeg writes with
// -progress pipe:1 and emits one Progress per block.
type progressParser struct {
	onProgress func(Progress)
	current    Progress
}

func newProgressParser(onProgress func(Progress)) *progressParser {
	return &progressParser{onProgress: onProgress}
}

func (p *progressParser) line(s string) {
	key, value, ok := strings.Cut(strings.TrimSpace(s), "=")
	if !ok {
		return
	}
	switch key {
	case "frame":
		p.current.Frame, _ = strconv.ParseInt(value, 10, 64)
	case "fps":
		p.current.FPS, _ = strconv.ParseFloat(value, 64)
	case "bitrate":
		p.current.Bitrate = value
	case "out_time_us":
		if us, err := strconv.ParseInt(value, 10, 64); err == nil {
			p.current.OutTime = time.Duration(us) * time.Microsecond
		}
	case "speed":
		p.current.Speed, _ = strconv.ParseFloat(strings.TrimSuffix(value, "x"), 64)
	case "progress":
		p.emit()
	}
}

func (p *progressParser) emit() {
	if p.onProgress == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			log.Warn("Progress callback panicked: ", r)
		}
	}()
	p.onProgress(p.current)
}
