// Package transcode converts downloaded videos to audio by running ffmpeg.
package transcode

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/alanbriolat/youtube-mp3"
	"github.com/alanbriolat/youtube-mp3/generic"
	"github.com/alanbriolat/youtube-mp3/util"
)

var (
	ErrConversionFailed = errors.New("conversion failed")
	ErrNoFreeFilename   = errors.New("no free filename")
)

// How many numbered variants of an audio filename to try before giving up.
const maxNumberedFilenames = 100

// Runner runs an external command to completion, returning what it wrote to stderr.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stderr []byte, err error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = nil
	cmd.Stdout = io.Discard
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stderr.Bytes(), err
}

// ExecRunner runs commands with os/exec.
var ExecRunner Runner = execRunner{}

type FFmpeg struct {
	config youtube_mp3.Config
	runner Runner
	// Output paths handed out to conversions that haven't failed, so two videos with the same title in one run get
	// separate audio files.
	claimed generic.Set[string]
}

func New(config youtube_mp3.Config) *FFmpeg {
	return &FFmpeg{config: config, runner: ExecRunner, claimed: generic.NewSet[string]()}
}

func (t *FFmpeg) WithRunner(runner Runner) *FFmpeg {
	t.runner = runner
	return t
}

// Args builds the ffmpeg command line converting input to output.
func (t *FFmpeg) Args(input string, output string) []string {
	overwrite := "-n"
	if t.config.Overwrite {
		overwrite = "-y"
	}
	return []string{
		"-i", input,
		"-loglevel", "error",
		overwrite,
		output,
	}
}

// Convert transcodes the video at the given path (if there is one) into the music directory, named after title. If an
// earlier conversion by this FFmpeg already produced that name, "name (2).ext" and so on are used instead. A missing
// video gives a missing result without running anything; a failed ffmpeg run gives a missing result and an error
// wrapping ErrConversionFailed.
func (t *FFmpeg) Convert(ctx context.Context, video generic.Option[string], title string) (generic.Option[string], error) {
	input, ok := video.Get()
	if !ok {
		return generic.None[string](), nil
	}
	logger := youtube_mp3.Logger(ctx).Sugar().Named("transcode")

	output, err := t.claimOutput(title)
	if err != nil {
		return generic.None[string](), fmt.Errorf("%w: %v", ErrConversionFailed, err)
	}
	if err := os.MkdirAll(filepath.Dir(output), 0755); err != nil {
		t.claimed.Remove(output)
		return generic.None[string](), fmt.Errorf("%w: %v", ErrConversionFailed, err)
	}

	logger.Infof("Converting %s", input)
	stderr, err := t.runner.Run(ctx, t.config.FFmpegPath, t.Args(input, output)...)
	if err != nil {
		t.claimed.Remove(output)
		return generic.None[string](), conversionError(t.config.FFmpegPath, err, stderr)
	}
	logger.Debugw("Converted", "input", input, "output", output)
	return generic.Some(output), nil
}

func (t *FFmpeg) claimOutput(title string) (string, error) {
	output, err := t.config.AudioPath(title)
	if err != nil {
		return "", err
	}
	dir, name := filepath.Split(output)
	for n := 1; n <= maxNumberedFilenames; n++ {
		candidate := filepath.Join(dir, util.Numbered(name, n))
		if t.claimed.Add(candidate) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrNoFreeFilename, output)
}

func conversionError(name string, err error, stderr []byte) error {
	message := strings.TrimSpace(string(stderr))
	var exitErr *exec.ExitError
	switch {
	case errors.As(err, &exitErr) && message != "":
		return fmt.Errorf("%w: %s exited with status %d: %s", ErrConversionFailed, name, exitErr.ExitCode(), message)
	case errors.As(err, &exitErr):
		return fmt.Errorf("%w: %s exited with status %d", ErrConversionFailed, name, exitErr.ExitCode())
	default:
		return fmt.Errorf("%w: %v", ErrConversionFailed, err)
	}
}
