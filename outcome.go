package youtube_mp3

import (
	"fmt"

	"github.com/alanbriolat/youtube-mp3/generic"
)

// A Video is a successfully downloaded video file.
type Video struct {
	Path  string
	Title string
	// YouTube video ID.
	ID string
}

// Fetched is the outcome of trying to download one video.
type Fetched struct {
	// URL the video was fetched from.
	Source string
	// Best known title, which may be empty if the video metadata could not be fetched.
	Title string
	Video generic.Result[Video]
}

func FetchOk(source string, video Video) Fetched {
	return Fetched{Source: source, Title: video.Title, Video: generic.Ok(video)}
}

func FetchErr(source string, title string, err error) Fetched {
	return Fetched{Source: source, Title: title, Video: generic.Err[Video](err)}
}

// Name is the title if known, otherwise the source URL.
func (f Fetched) Name() string {
	if f.Title != "" {
		return f.Title
	}
	return f.Source
}

// Downloaded collects successfully downloaded videos as a map of file path to title. Each video is saved to its own
// file, so there is one entry per success.
func Downloaded(fetched []Fetched) map[string]string {
	videos := make(map[string]string, len(fetched))
	for _, f := range fetched {
		if f.Video.IsOk() {
			videos[f.Video.Value.Path] = f.Video.Value.Title
		}
	}
	return videos
}

type Status int

const (
	StatusConverted Status = iota
	StatusConversionFailed
	StatusDownloadFailed
)

func (s Status) String() string {
	switch s {
	case StatusConverted:
		return "converted"
	case StatusConversionFailed:
		return "conversion failed"
	case StatusDownloadFailed:
		return "download failed"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Result is the final outcome for one video, after download and conversion.
type Result struct {
	Source string
	Title  string
	Video  generic.Option[string]
	Audio  generic.Option[string]
	// What went wrong, if anything.
	Err error
}

func (r Result) Status() Status {
	switch {
	case r.Video.IsNone():
		return StatusDownloadFailed
	case r.Audio.IsNone():
		return StatusConversionFailed
	default:
		return StatusConverted
	}
}

// Name is the title if known, otherwise the source URL.
func (r Result) Name() string {
	if r.Title != "" {
		return r.Title
	}
	return r.Source
}
