package media

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
)

// defaultFPS is reported when neither frame-rate field of the probed
// stream is usable.
const defaultFPS = 30.0

// MediaInfo is the container/stream metadata reported by the prober.
type MediaInfo struct {
	Duration float64
	Width    int
	Height   int
	Bitrate  int64
	Codec    string
	Format   string
	Size     int64
	FPS      float64
}

type ffprobeOutput struct {
	Streams []struct {
		CodecType    string `json:"codec_type"`
		CodecName    string `json:"codec_name"`
		Width        int    `json:"width,omitempty"`
		Height       int    `json:"height,omitempty"`
		RFrameRate   string `json:"r_frame_rate,omitempty"`
		AvgFrameRate string `json:"avg_frame_rate,omitempty"`
	} `json:"streams"`
	Format struct {
		FormatName string `json:"format_name"`
		Duration   string `json:"duration"`
		BitRate    string `json:"bit_rate"`
		Size       string `json:"size"`
	} `json:"format"`
}

// Prober inspects media files with ffprobe. Only container and stream
// headers are read; the payload is never decoded.
type Prober struct {
	tools  *Toolset
	runner Runner
}

// NewProber returns a Prober using the given toolset and runner.
func NewProber(tools *Toolset, runner Runner) *Prober {
	return &Prober{tools: tools, runner: runner}
}

// Probe extracts duration, dimensions, codec, bitrate, container format
// and frame rate from the file at path. Probing the same unmodified file
// twice yields identical results.
func (p *Prober) Probe(ctx context.Context, path string) (MediaInfo, error) {
	info := MediaInfo{}

	if err := p.tools.Check(); err != nil {
		return info, err
	}

	args := []string{
		"-v", "error",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	}
	output, err := p.runner.Run(ctx, p.tools.FFprobe, args...)
	if err != nil {
		return info, &ProbeError{Path: path, Detail: err.Error()}
	}

	var probeData ffprobeOutput
	if err := json.Unmarshal(output, &probeData); err != nil {
		return info, &ProbeError{Path: path, Detail: "unparseable probe output: " + err.Error()}
	}

	if probeData.Format.Duration != "" {
		if duration, err := strconv.ParseFloat(probeData.Format.Duration, 64); err == nil {
			info.Duration = duration
		}
	}
	if probeData.Format.BitRate != "" {
		if bitrate, err := strconv.ParseInt(probeData.Format.BitRate, 10, 64); err == nil {
			info.Bitrate = bitrate
		}
	}
	if probeData.Format.Size != "" {
		if size, err := strconv.ParseInt(probeData.Format.Size, 10, 64); err == nil {
			info.Size = size
		}
	}
	info.Format = probeData.Format.FormatName

	for _, stream := range probeData.Streams {
		if stream.CodecType != "video" {
			continue
		}
		info.Width = stream.Width
		info.Height = stream.Height
		info.Codec = stream.CodecName
		info.FPS = parseFrameRate(stream.RFrameRate, stream.AvgFrameRate)
		return info, nil
	}

	return info, ErrNoVideoStream
}

// parseFrameRate computes fps from the rational r_frame_rate string,
// falling back to avg_frame_rate and then a conservative default when a
// denominator is zero or absent.
func parseFrameRate(rFrameRate, avgFrameRate string) float64 {
	if fps, ok := parseRational(rFrameRate); ok {
		return fps
	}
	if fps, ok := parseRational(avgFrameRate); ok {
		return fps
	}
	return defaultFPS
}

func parseRational(s string) (float64, bool) {
	parts := strings.Split(s, "/")
	if len(parts) != 2 {
		return 0, false
	}
	num, err1 := strconv.ParseFloat(parts[0], 64)
	den, err2 := strconv.ParseFloat(parts[1], 64)
	if err1 != nil || err2 != nil || den == 0 || num <= 0 {
		return 0, false
	}
	return num / den, true
}
