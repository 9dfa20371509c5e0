package youtube_mp3

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/r3labs/diff/v3"
	"gopkg.in/yaml.v3"

	"github.com/alanbriolat/youtube-mp3/generic"
	"github.com/alanbriolat/youtube-mp3/util"
)

var (
	ErrInvalidConfig = errors.New("invalid config")
)

// EnvPrefix is the prefix of environment variables that override the config, e.g. YTMP3_MUSIC_DIR.
const EnvPrefix = "YTMP3"

// Audio formats ffmpeg can pick an encoder for from the output extension alone.
var audioExtensions = generic.NewSet("aac", "flac", "m4a", "mp3", "ogg", "opus", "wav")

type Config struct {
	VideoDir string `yaml:"video_dir" envconfig:"VIDEO_DIR"`
	MusicDir string `yaml:"music_dir" envconfig:"MUSIC_DIR"`
	// Audio file extension, which also selects the output format.
	AudioFormat string `yaml:"audio_format" envconfig:"AUDIO_FORMAT"`
	// Template for audio file names, with .Title (already made filename-safe) and .Ext available.
	AudioFileTemplate string `yaml:"audio_file_template" envconfig:"AUDIO_FILE_TEMPLATE"`
	FFmpegPath        string `yaml:"ffmpeg_path" envconfig:"FFMPEG_PATH"`
	// Overwrite existing audio files rather than failing the conversion.
	Overwrite bool `yaml:"overwrite" envconfig:"OVERWRITE"`
	// Pause after each progress update, to limit terminal redraws.
	RefreshDelay time.Duration `yaml:"refresh_delay" envconfig:"REFRESH_DELAY"`
}

var DefaultConfig = Config{
	VideoDir:          "videos",
	MusicDir:          "music",
	AudioFormat:       "mp3",
	AudioFileTemplate: "{{.Title}}.{{.Ext}}",
	FFmpegPath:        "ffmpeg",
	Overwrite:         false,
	RefreshDelay:      10 * time.Millisecond,
}

// LoadConfig starts from DefaultConfig, applies the YAML file at path (if path is not empty) and then any YTMP3_*
// environment variables.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file: %w", err)
		}
	}
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to process environment: %w", err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.VideoDir) == "" {
		return fmt.Errorf("%w: video dir must not be empty", ErrInvalidConfig)
	}
	if strings.TrimSpace(c.MusicDir) == "" {
		return fmt.Errorf("%w: music dir must not be empty", ErrInvalidConfig)
	}
	if !audioExtensions.Contains(c.AudioFormat) {
		return fmt.Errorf("%w: unsupported audio format %q (expected one of %s)",
			ErrInvalidConfig, c.AudioFormat, strings.Join(generic.SortedStrings(audioExtensions), ", "))
	}
	if c.FFmpegPath == "" {
		return fmt.Errorf("%w: ffmpeg path must not be empty", ErrInvalidConfig)
	}
	if c.RefreshDelay < 0 {
		return fmt.Errorf("%w: refresh delay must not be negative", ErrInvalidConfig)
	}
	if _, err := c.AudioPath("title"); err != nil {
		return fmt.Errorf("%w: bad audio file template: %v", ErrInvalidConfig, err)
	}
	return nil
}

// Resolve makes the video and music directories absolute, relative to the working directory.
func (c Config) Resolve() (Config, error) {
	var err error
	if c.VideoDir, err = filepath.Abs(c.VideoDir); err != nil {
		return c, err
	}
	if c.MusicDir, err = filepath.Abs(c.MusicDir); err != nil {
		return c, err
	}
	return c, nil
}

// AudioPath gives the output path for the audio converted from a video with this title.
func (c Config) AudioPath(title string) (string, error) {
	tmpl, err := c.audioFileTemplate()
	if err != nil {
		return "", err
	}
	args := audioFileTemplateArgs{
		Title: util.SafeFilenameOr(title, "untitled"),
		Ext:   c.AudioFormat,
	}
	builder := strings.Builder{}
	if err := tmpl.Execute(&builder, &args); err != nil {
		return "", err
	}
	filename := builder.String()
	if filename == "" || strings.ContainsRune(filename, os.PathSeparator) {
		return "", fmt.Errorf("audio file template gave invalid filename %q", filename)
	}
	return filepath.Join(c.MusicDir, filename), nil
}

// Changes lists the differences from DefaultConfig, for logging.
func (c Config) Changes() (diff.Changelog, error) {
	return diff.Diff(DefaultConfig, c)
}

func (c Config) audioFileTemplate() (*template.Template, error) {
	return template.New("audio_file").Option("missingkey=error").Parse(c.AudioFileTemplate)
}

type audioFileTemplateArgs struct {
	Title string
	Ext   string
}
