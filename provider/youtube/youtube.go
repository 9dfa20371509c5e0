package youtube

import (
	"context"
	"fmt"
	"io"

	"github.com/kkdai/youtube/v2"
	"go.uber.org/zap"

	"github.com/alanbriolat/youtube-mp3"
	"github.com/alanbriolat/youtube-mp3/download"
	"github.com/alanbriolat/youtube-mp3/util"
)

// Client is the subset of *youtube.Client the Fetcher uses.
type Client interface {
	GetVideoContext(ctx context.Context, url string) (*youtube.Video, error)
	GetPlaylistContext(ctx context.Context, url string) (*youtube.Playlist, error)
	VideoFromPlaylistEntryContext(ctx context.Context, entry *youtube.PlaylistEntry) (*youtube.Video, error)
	GetStreamContext(ctx context.Context, video *youtube.Video, format *youtube.Format) (io.ReadCloser, int64, error)
}

// TrackFunc supplies fresh download callbacks for each video.
type TrackFunc func() download.Callbacks

// Fetcher downloads videos and playlists into a directory.
type Fetcher struct {
	client   Client
	videoDir string
	track    TrackFunc
}

// New creates a Fetcher. If client is nil, a default *youtube.Client is used; if track is nil, downloads are silent.
func New(client Client, videoDir string, track TrackFunc) *Fetcher {
	if client == nil {
		client = &youtube.Client{}
	}
	if track == nil {
		track = func() download.Callbacks { return download.Callbacks{} }
	}
	return &Fetcher{
		client:   client,
		videoDir: videoDir,
		track:    track,
	}
}

// FetchVideo downloads a single video. Failure is reported in the returned Fetched.
func (f *Fetcher) FetchVideo(ctx context.Context, url string) youtube_mp3.Fetched {
	logger := youtube_mp3.Logger(ctx).Sugar().Named("fetch")
	logger.Infof("Downloading %s", url)

	video, err := f.client.GetVideoContext(ctx, url)
	if err != nil {
		err = fmt.Errorf("failed to get video info: %w", err)
		logger.Warnw("Video failed", "url", url, "error", err)
		return youtube_mp3.FetchErr(url, "", err)
	}
	return f.fetch(ctx, logger, url, video)
}

// FetchPlaylist downloads every video of a playlist in order. An error is only returned if the playlist itself could
// not be fetched; a failing video is logged and recorded, and the rest are still attempted.
func (f *Fetcher) FetchPlaylist(ctx context.Context, url string) ([]youtube_mp3.Fetched, error) {
	logger := youtube_mp3.Logger(ctx).Sugar().Named("fetch")
	logger.Infof("Downloading %s", url)

	playlist, err := f.client.GetPlaylistContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to get playlist: %w", err)
	}
	logger.Infof("Playlist %q has %d videos", playlist.Title, len(playlist.Videos))

	results := make([]youtube_mp3.Fetched, 0, len(playlist.Videos))
	for i, entry := range playlist.Videos {
		if entry == nil || entry.ID == "" {
			results = append(results, youtube_mp3.FetchErr(url, "", fmt.Errorf("entry %d: %w", i+1, ErrMissingEntry)))
			continue
		}
		source := watchURL(entry.ID)
		if err := ctx.Err(); err != nil {
			results = append(results, youtube_mp3.FetchErr(source, entry.Title, err))
			continue
		}
		entryLogger := logger.With("index", i+1, "video_id", entry.ID)
		video, err := f.client.VideoFromPlaylistEntryContext(ctx, entry)
		if err != nil {
			err = fmt.Errorf("failed to get video info: %w", err)
			entryLogger.Warnw("Video failed", "error", err)
			results = append(results, youtube_mp3.FetchErr(source, entry.Title, err))
			continue
		}
		results = append(results, f.fetch(ctx, entryLogger, source, video))
	}
	return results, nil
}

func (f *Fetcher) fetch(ctx context.Context, logger *zap.SugaredLogger, source string, video *youtube.Video) youtube_mp3.Fetched {
	path, err := f.download(ctx, video)
	if err != nil {
		logger.Warnw("Video failed", "title", video.Title, "error", err)
		return youtube_mp3.FetchErr(source, video.Title, err)
	}
	logger.Debugw("Video downloaded", "title", video.Title, "path", path)
	return youtube_mp3.FetchOk(source, youtube_mp3.Video{Path: path, Title: video.Title, ID: video.ID})
}

func (f *Fetcher) download(ctx context.Context, video *youtube.Video) (string, error) {
	format, err := SelectStream(video, videoMimeType)
	if err != nil {
		return "", err
	}
	stream, size, err := f.client.GetStreamContext(ctx, video, format)
	if err != nil {
		return "", fmt.Errorf("failed to get stream: %w", err)
	}
	defer stream.Close()

	if size <= 0 {
		size = format.ContentLength
	}
	info := download.StreamInfo{
		Filename: DefaultFilename(video),
		Title:    video.Title,
		Size:     size,
	}
	path, err := download.Save(ctx, info, stream,
		download.WithTargetDir(f.videoDir),
		download.WithCallbacks(f.track()),
	)
	if err != nil {
		return "", fmt.Errorf("download failed: %w", err)
	}
	return path, nil
}

// DefaultFilename is the file name a video is saved as, "<title>.<id>.mp4" with the title made filename-safe. The ID
// keeps videos that share a title apart. If the title has nothing usable, it's just "<id>.mp4".
func DefaultFilename(video *youtube.Video) string {
	id := util.SafeFilenameOr(video.ID, "untitled")
	if title, err := util.SafeFilename(video.Title); err == nil {
		return fmt.Sprintf("%s.%s.%s", title, id, videoExt)
	}
	return fmt.Sprintf("%s.%s", id, videoExt)
}

func watchURL(videoID string) string {
	return fmt.Sprintf("https://www.youtube.com/watch?v=%s", videoID)
}
