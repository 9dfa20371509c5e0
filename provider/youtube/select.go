package youtube

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kkdai/youtube/v2"
)

var (
	ErrMissingEntry     = errors.New("missing playlist entry")
	ErrNoMatchingStream = errors.New("no matching stream")
)

// Container the downloaded video is saved in.
const (
	videoMimeType = "video/mp4"
	videoExt      = "mp4"
)

// IsProgressive reports whether the format carries both audio and video, so needs no muxing after download.
func IsProgressive(format *youtube.Format) bool {
	return format.AudioChannels > 0 && (format.Width > 0 || format.QualityLabel != "")
}

func hasMimeType(format *youtube.Format, mimeType string) bool {
	return strings.TrimSpace(strings.SplitN(format.MimeType, ";", 2)[0]) == mimeType
}

// SelectStream picks the first progressive stream of the given container type, in the order the client lists them.
func SelectStream(video *youtube.Video, mimeType string) (*youtube.Format, error) {
	for i := range video.Formats {
		format := &video.Formats[i]
		if hasMimeType(format, mimeType) && IsProgressive(format) {
			return format, nil
		}
	}
	return nil, fmt.Errorf("%w: no progressive %s among %d formats", ErrNoMatchingStream, mimeType, len(video.Formats))
}
