package media

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync"
)

// Runner spawns external encoder/prober processes. Timeouts are enforced
// through the caller's context; CommandContext kills the child process
// when the context expires.
type Runner interface {
	// Run executes the command and returns its stdout. On a non-zero exit
	// the returned error includes the stderr tail.
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
	// RunStream executes the command, invoking onLine for every line the
	// process writes to stdout while it runs.
	RunStream(ctx context.Context, onLine func(string), name string, args ...string) error
}

// CommandRunner is the os/exec backed Runner.
type CommandRunner struct{}

// NewCommandRunner returns a CommandRunner.
func NewCommandRunner() *CommandRunner {
	return &CommandRunner{}
}

func (r *CommandRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s: %w: %s", name, err, stderrTail(stderr.String()))
	}
	return stdout.Bytes(), nil
}

func (r *CommandRunner) RunStream(ctx context.Context, onLine func(string), name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("%s: stdout pipe: %w", name, err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}

	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		if onLine != nil {
			onLine(scanner.Text())
		}
	}

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, stderrTail(stderr.String()))
	}
	return nil
}

// stderrTail keeps the last few lines of tool output, which is where
// ffmpeg/ffprobe put the actual failure reason.
func stderrTail(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > 5 {
		lines = lines[len(lines)-5:]
	}
	return strings.Join(lines, " | ")
}

// Toolset locates the encoder and prober binaries. Availability is checked
// once and cached; a missing binary is an operational alarm, not a
// per-upload failure.
type Toolset struct {
	FFmpeg  string
	FFprobe string

	once sync.Once
	err  error
}

// Check verifies both binaries can be found on the host.
func (t *Toolset) Check() error {
	t.once.Do(func() {
		for _, bin := range []string{t.FFmpeg, t.FFprobe} {
			if _, err := exec.LookPath(bin); err != nil {
				t.err = fmt.Errorf("%w: %s", ErrToolUnavailable, bin)
				return
			}
		}
	})
	return t.err
}
