package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"

	"github.com/alanbriolat/youtube-mp3"
)

type captured struct {
	cfg   youtube_mp3.Config
	url   string
	calls int
}

func runApp(t *testing.T, stdin string, args ...string) (*captured, zap.AtomicLevel, string, error) {
	c := &captured{}
	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	app := newApp(level, func(_ *cli.Context, cfg youtube_mp3.Config, url string) error {
		c.cfg = cfg
		c.url = url
		c.calls++
		return nil
	})
	var out bytes.Buffer
	app.Reader = strings.NewReader(stdin)
	app.Writer = &out
	app.ErrWriter = &out
	ctx := youtube_mp3.WithLogger(context.Background(), zaptest.NewLogger(t))
	err := app.RunContext(ctx, append([]string{"youtube-mp3"}, args...))
	return c, level, out.String(), err
}

func TestURLFromArgs(t *testing.T) {
	c, level, out, err := runApp(t, "", "https://www.youtube.com/watch?v=a")
	require.NoError(t, err)
	assert.Equal(t, "https://www.youtube.com/watch?v=a", c.url)
	assert.Equal(t, 1, c.calls)
	assert.Equal(t, zapcore.InfoLevel, level.Level())
	assert.NotContains(t, out, ">>")
}

func TestURLFromPrompt(t *testing.T) {
	c, _, out, err := runApp(t, "https://www.youtube.com/playlist?list=PL1\n")
	require.NoError(t, err)
	assert.Equal(t, "https://www.youtube.com/playlist?list=PL1", c.url)
	assert.Equal(t, "Please input youtube video URL or playlist URL\n\n>> ", out)
}

func TestURLFromPromptWithoutNewline(t *testing.T) {
	c, _, _, err := runApp(t, "https://www.youtube.com/watch?v=a")
	require.NoError(t, err)
	assert.Equal(t, "https://www.youtube.com/watch?v=a", c.url)
}

func TestPromptReadError(t *testing.T) {
	boom := errors.New("read failed")
	_, err := prompt(context.Background(), iotest.ErrReader(boom), io.Discard)
	assert.ErrorIs(t, err, boom)
}

func TestPromptCancelled(t *testing.T) {
	// Nothing is ever written, so the read blocks until the pipe is closed
	r, w := io.Pipe()
	defer w.Close()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	_, err := prompt(ctx, r, &out)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, "Please input youtube video URL or playlist URL\n\n>> ", out.String())
}

func TestEmptyURL(t *testing.T) {
	c, _, _, err := runApp(t, "\n")
	assert.ErrorIs(t, err, youtube_mp3.ErrEmptyURL)
	assert.Equal(t, 0, c.calls)
}

func TestDefaultConfig(t *testing.T) {
	c, _, _, err := runApp(t, "", "x")
	require.NoError(t, err)
	expected, err := youtube_mp3.DefaultConfig.Resolve()
	require.NoError(t, err)
	assert.Equal(t, expected, c.cfg)
}

func TestFlagsOverrideConfig(t *testing.T) {
	assert := assert.New(t)
	dir := t.TempDir()
	c, level, _, err := runApp(t, "",
		"--video-dir", filepath.Join(dir, "v"),
		"--music-dir", filepath.Join(dir, "m"),
		"--format", ".flac",
		"--ffmpeg", "/usr/local/bin/ffmpeg",
		"--overwrite",
		"--refresh-delay", "0s",
		"--verbose",
		"https://www.youtube.com/watch?v=a",
	)
	require.NoError(t, err)
	assert.Equal(filepath.Join(dir, "v"), c.cfg.VideoDir)
	assert.Equal(filepath.Join(dir, "m"), c.cfg.MusicDir)
	assert.Equal("flac", c.cfg.AudioFormat)
	assert.Equal("/usr/local/bin/ffmpeg", c.cfg.FFmpegPath)
	assert.True(c.cfg.Overwrite)
	assert.Equal(time.Duration(0), c.cfg.RefreshDelay)
	assert.Equal(zapcore.DebugLevel, level.Level())
}

func TestInvalidFlag(t *testing.T) {
	c, _, _, err := runApp(t, "", "--format", "exe", "x")
	assert.ErrorIs(t, err, youtube_mp3.ErrInvalidConfig)
	assert.Equal(t, 0, c.calls)
}
