package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/alanbriolat/youtube-mp3"
	"github.com/alanbriolat/youtube-mp3/async"
	"github.com/alanbriolat/youtube-mp3/internal/pipeline"
	"github.com/alanbriolat/youtube-mp3/progress"
	"github.com/alanbriolat/youtube-mp3/provider/youtube"
	"github.com/alanbriolat/youtube-mp3/transcode"
)

func main() {
	config := zap.NewDevelopmentConfig()
	config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	config.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	logger, err := config.Build()
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logger.Sync()
	zap.RedirectStdLog(logger)
	zap.ReplaceGlobals(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = youtube_mp3.WithLogger(ctx, logger.With(zap.String("run_id", uuid.NewString())))

	app := newApp(config.Level, run)
	result := async.Run(func() error { return app.RunContext(ctx, os.Args) })

	select {
	case err = <-result:
		if err != nil {
			logger.Fatal(err.Error())
		}
	case <-ctx.Done():
		stop()
		// Blocking steps all take ctx, so the app winds down promptly
		err = <-result
		if err != nil {
			logger.Fatal(err.Error())
		}
	}
}

type runFunc func(c *cli.Context, cfg youtube_mp3.Config, url string) error

func newApp(level zap.AtomicLevel, action runFunc) *cli.App {
	return &cli.App{
		Name:      "youtube-mp3",
		Usage:     "download a YouTube video or playlist and convert it to audio",
		ArgsUsage: "[URL]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "load settings from YAML `FILE`",
			},
			&cli.StringFlag{
				Name:  "video-dir",
				Value: youtube_mp3.DefaultConfig.VideoDir,
				Usage: "save downloaded videos to `DIR`",
			},
			&cli.StringFlag{
				Name:  "music-dir",
				Value: youtube_mp3.DefaultConfig.MusicDir,
				Usage: "save converted audio to `DIR`",
			},
			&cli.StringFlag{
				Name:  "format",
				Value: youtube_mp3.DefaultConfig.AudioFormat,
				Usage: "audio `FORMAT` (file extension) to convert to",
			},
			&cli.StringFlag{
				Name:  "ffmpeg",
				Value: youtube_mp3.DefaultConfig.FFmpegPath,
				Usage: "ffmpeg executable `PATH`",
			},
			&cli.BoolFlag{
				Name:  "overwrite",
				Usage: "overwrite existing audio files",
			},
			&cli.DurationFlag{
				Name:  "refresh-delay",
				Value: youtube_mp3.DefaultConfig.RefreshDelay,
				Usage: "pause after each progress update",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "enable debug logging",
			},
		},
		Before: func(c *cli.Context) error {
			if c.Bool("verbose") {
				level.SetLevel(zapcore.DebugLevel)
			}
			return nil
		},
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			url := c.Args().First()
			if url == "" {
				if url, err = prompt(c.Context, c.App.Reader, c.App.Writer); err != nil {
					return err
				}
			}
			if url, err = youtube_mp3.NormalizeURL(url); err != nil {
				return err
			}
			return action(c, cfg, url)
		},
		HideHelpCommand: true,
	}
}

// loadConfig layers CLI flags over the config file and environment, then validates the result.
func loadConfig(c *cli.Context) (youtube_mp3.Config, error) {
	logger := youtube_mp3.Logger(c.Context).Sugar()

	cfg, err := youtube_mp3.LoadConfig(c.String("config"))
	if err != nil {
		return cfg, err
	}
	if c.IsSet("video-dir") {
		cfg.VideoDir = c.String("video-dir")
	}
	if c.IsSet("music-dir") {
		cfg.MusicDir = c.String("music-dir")
	}
	if c.IsSet("format") {
		cfg.AudioFormat = strings.TrimPrefix(c.String("format"), ".")
	}
	if c.IsSet("ffmpeg") {
		cfg.FFmpegPath = c.String("ffmpeg")
	}
	if c.IsSet("overwrite") {
		cfg.Overwrite = c.Bool("overwrite")
	}
	if c.IsSet("refresh-delay") {
		cfg.RefreshDelay = c.Duration("refresh-delay")
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	if cfg, err = cfg.Resolve(); err != nil {
		return cfg, err
	}

	if changes, err := cfg.Changes(); err != nil {
		logger.Errorf("failed to diff config against defaults: %v", err)
	} else {
		for _, change := range changes {
			logger.Debugf("config %v: %#v -> %#v", strings.Join(change.Path, "."), change.From, change.To)
		}
	}
	return cfg, nil
}

// prompt asks for a URL and reads one line of input, giving up if ctx is cancelled first.
func prompt(ctx context.Context, r io.Reader, w io.Writer) (string, error) {
	_, _ = fmt.Fprint(w, "Please input youtube video URL or playlist URL\n\n>> ")
	result := async.RunResult(func() (string, error) {
		return bufio.NewReader(r).ReadString('\n')
	})
	select {
	case line := <-result:
		// A last line without a newline is still a URL
		if line.IsErr() && !errors.Is(line.Error, io.EOF) {
			return "", fmt.Errorf("failed to read URL: %w", line.Error)
		}
		return line.Value, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func run(c *cli.Context, cfg youtube_mp3.Config, url string) error {
	reporter := progress.NewReporter(c.App.Writer, cfg.RefreshDelay)
	fetcher := youtube.New(nil, cfg.VideoDir, reporter.Track)
	transcoder := transcode.New(cfg)
	_, err := pipeline.New(fetcher, transcoder, c.App.Writer, cfg.AudioFormat).Run(c.Context, url)
	return err
}
