package media

import (
	"errors"
	"fmt"
)

// ErrNoVideoStream is returned when a probed file has no video stream.
var ErrNoVideoStream = errors.New("no video stream found")

// ErrToolUnavailable is returned when ffmpeg/ffprobe is not installed on
// the host. This is an environment precondition, not a per-upload error.
var ErrToolUnavailable = errors.New("encoder tools not available")

// ErrUnsupportedQuality is returned for a quality name with no configured
// profile. Checked before any process is spawned.
var ErrUnsupportedQuality = errors.New("unsupported quality")

// ProbeError wraps a failed probe invocation. Detail carries the raw tool
// diagnostics for server-side logs and must not be returned to clients.
type ProbeError struct {
	Path   string
	Detail string
}

func (e *ProbeError) Error() string {
	return fmt.Sprintf("probing %s failed: %s", e.Path, e.Detail)
}

// TranscodeError wraps a non-zero exit of the external encoder.
type TranscodeError struct {
	Quality string
	Detail  string
}

func (e *TranscodeError) Error() string {
	return fmt.Sprintf("transcoding to %s failed: %s", e.Quality, e.Detail)
}

// ThumbnailError is returned when every requested still-frame extraction
// failed.
type ThumbnailError struct {
	Attempts int
}

func (e *ThumbnailError) Error() string {
	return fmt.Sprintf("all %d thumbnail extractions failed", e.Attempts)
}
