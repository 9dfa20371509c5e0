package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/alanbriolat/youtube-mp3/util"
)

var (
	ErrNoFilename     = errors.New("no target filename")
	ErrNoFreeFilename = errors.New("no free filename")
)

// How many numbered variants of a filename to try before giving up.
const maxNumberedFilenames = 100

// StreamInfo describes the stream being saved, as passed to Callbacks.
type StreamInfo struct {
	// Filename the stream is saved as within the target directory.
	Filename string
	// Display title.
	Title string
	// Total expected bytes, or <= 0 if unknown.
	Size int64
}

// Callbacks are invoked synchronously while a stream is saved. Any may be nil. Exactly one of OnComplete and OnAbort
// is called for each save that gets as far as opening its temp file.
type Callbacks struct {
	// OnProgress is called after each chunk is written, with the chunk, the bytes written so far and the bytes still
	// expected (0 when the size is unknown).
	OnProgress func(info StreamInfo, chunk []byte, downloaded int64, remaining int64)
	// OnComplete is called once the file is in its final location.
	OnComplete func(info StreamInfo, path string)
	// OnAbort is called when the save fails.
	OnAbort func(info StreamInfo, err error)
}

type downloadConfig struct {
	baseTargetDir string
	callbacks     Callbacks
}

type DownloadConfigOption func(*downloadConfig)

func WithTargetDir(dir string) DownloadConfigOption {
	return func(c *downloadConfig) {
		c.baseTargetDir = dir
	}
}

func WithCallbacks(callbacks Callbacks) DownloadConfigOption {
	return func(c *downloadConfig) {
		c.callbacks = callbacks
	}
}

type DownloadState struct {
	config     downloadConfig
	tempDir    string
	info       StreamInfo
	downloaded int64
}

func newDownloadState(config downloadConfig, info StreamInfo) (*DownloadState, error) {
	// Create target directory
	if err := os.MkdirAll(config.baseTargetDir, 0755); err != nil {
		return nil, err
	}
	// Create temporary directory, on the same filesystem so the finished file can be linked into place
	tempDir, err := os.MkdirTemp(config.baseTargetDir, ".youtube-mp3-*")
	if err != nil {
		return nil, err
	}
	state := &DownloadState{
		config:  config,
		tempDir: tempDir,
		info:    info,
	}
	return state, nil
}

func (s *DownloadState) close() {
	// Clean up temporary directory
	if err := os.RemoveAll(s.tempDir); err != nil {
		zap.S().Named("download").Warnf("Failed to clean up download state: %v", err)
	}
}

// Write discards the data but counts it towards progress, so the DownloadState can sit at the end of an
// io.MultiWriter after the real destination.
func (s *DownloadState) Write(p []byte) (n int, err error) {
	n = len(p)
	s.downloaded += int64(n)
	if s.config.callbacks.OnProgress != nil {
		remaining := s.info.Size - s.downloaded
		if remaining < 0 {
			remaining = 0
		}
		s.config.callbacks.OnProgress(s.info, p, s.downloaded, remaining)
	}
	return n, nil
}

func (s *DownloadState) save(ctx context.Context, stream io.Reader) (string, error) {
	tempFile, err := os.CreateTemp(s.tempDir, "partial-*")
	if err != nil {
		return "", fmt.Errorf("failed to open temp file: %w", err)
	}
	targetPath, err := s.saveTo(ctx, tempFile, stream)
	if err != nil {
		if s.config.callbacks.OnAbort != nil {
			s.config.callbacks.OnAbort(s.info, err)
		}
		return "", err
	}
	if s.config.callbacks.OnComplete != nil {
		s.config.callbacks.OnComplete(s.info, targetPath)
	}
	return targetPath, nil
}

func (s *DownloadState) saveTo(ctx context.Context, tempFile *os.File, stream io.Reader) (string, error) {
	_, err := io.Copy(io.MultiWriter(tempFile, s), &readerContext{ctx: ctx, r: stream})
	if closeErr := tempFile.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return "", fmt.Errorf("failed to save stream: %w", err)
	}

	// Never replace an existing file
	for n := 1; n <= maxNumberedFilenames; n++ {
		targetPath := filepath.Join(s.config.baseTargetDir, util.Numbered(s.info.Filename, n))
		err := moveNoReplace(tempFile.Name(), targetPath)
		if err == nil {
			return targetPath, nil
		} else if !errors.Is(err, fs.ErrExist) {
			return "", fmt.Errorf("failed to move download into place: %w", err)
		}
	}
	return "", fmt.Errorf("failed to move download into place: %w: %s", ErrNoFreeFilename, s.info.Filename)
}

// moveNoReplace moves src to dst, failing with fs.ErrExist if dst already exists.
func moveNoReplace(src string, dst string) error {
	err := os.Link(src, dst)
	if err == nil || errors.Is(err, fs.ErrExist) {
		return err
	}
	// Hard links aren't supported everywhere, fall back to check-then-rename
	if _, statErr := os.Lstat(dst); statErr == nil {
		return &fs.PathError{Op: "rename", Path: dst, Err: fs.ErrExist}
	}
	return os.Rename(src, dst)
}

// Save copies stream into info.Filename within the target directory (default "."), returning the final path. The
// file only appears at that path once fully written. If info.Filename is taken, "name (2).ext", "name (3).ext" and
// so on are tried instead.
func Save(ctx context.Context, info StreamInfo, stream io.Reader, opts ...DownloadConfigOption) (string, error) {
	if info.Filename == "" || info.Filename == "." || info.Filename == ".." || filepath.Base(info.Filename) != info.Filename {
		return "", fmt.Errorf("%w: %q", ErrNoFilename, info.Filename)
	}
	config := downloadConfig{
		baseTargetDir: ".",
	}
	for _, opt := range opts {
		opt(&config)
	}
	state, err := newDownloadState(config, info)
	if err != nil {
		return "", err
	}
	defer state.close()
	return state.save(ctx, stream)
}

// A context-aware io.Reader wrapper.
type readerContext struct {
	ctx context.Context
	r   io.Reader
}

func (r *readerContext) Read(p []byte) (n int, err error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}
