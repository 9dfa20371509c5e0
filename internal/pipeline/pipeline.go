// Package pipeline ties fetching, conversion and reporting together for one URL.
package pipeline

import (
	"context"
	"io"

	"github.com/hashicorp/go-multierror"

	"github.com/alanbriolat/youtube-mp3"
	"github.com/alanbriolat/youtube-mp3/generic"
	"github.com/alanbriolat/youtube-mp3/report"
)

type Fetcher interface {
	FetchVideo(ctx context.Context, url string) youtube_mp3.Fetched
	FetchPlaylist(ctx context.Context, url string) ([]youtube_mp3.Fetched, error)
}

type Converter interface {
	Convert(ctx context.Context, video generic.Option[string], title string) (generic.Option[string], error)
}

type Pipeline struct {
	fetcher     Fetcher
	converter   Converter
	out         io.Writer
	audioFormat string
}

// New creates a Pipeline printing results to out.
func New(fetcher Fetcher, converter Converter, out io.Writer, audioFormat string) *Pipeline {
	return &Pipeline{
		fetcher:     fetcher,
		converter:   converter,
		out:         out,
		audioFormat: audioFormat,
	}
}

// Run downloads and converts everything the URL refers to. Every video is attempted regardless of earlier failures;
// the returned error combines all per-video failures, or is the error fetching the playlist itself.
func (p *Pipeline) Run(ctx context.Context, url string) ([]youtube_mp3.Result, error) {
	logger := youtube_mp3.Logger(ctx).Sugar().Named("pipeline")

	var fetched []youtube_mp3.Fetched
	if youtube_mp3.IsPlaylist(url) {
		logger.Debugf("%s is a playlist", url)
		var err error
		if fetched, err = p.fetcher.FetchPlaylist(ctx, url); err != nil {
			return nil, err
		}
	} else {
		fetched = []youtube_mp3.Fetched{p.fetcher.FetchVideo(ctx, url)}
	}
	downloaded := youtube_mp3.Downloaded(fetched)
	logger.Debugw("Downloaded videos", "count", len(downloaded), "attempted", len(fetched), "videos", downloaded)

	var result error
	results := make([]youtube_mp3.Result, 0, len(fetched))
	for _, f := range fetched {
		r := p.convert(ctx, f)
		if r.Err != nil {
			logger.Warnw("Video failed", "name", r.Name(), "status", r.Status().String(), "error", r.Err)
			result = multierror.Append(result, multierror.Prefix(r.Err, r.Name()+":"))
		}
		report.PrintResult(p.out, p.audioFormat, r)
		results = append(results, r)
	}
	report.PrintSummary(p.out, results)
	return results, result
}

func (p *Pipeline) convert(ctx context.Context, f youtube_mp3.Fetched) youtube_mp3.Result {
	r := youtube_mp3.Result{
		Source: f.Source,
		Title:  f.Title,
		Video:  generic.None[string](),
		Audio:  generic.None[string](),
	}
	if f.Video.IsErr() {
		r.Err = f.Video.Error
		return r
	}
	r.Video = generic.Some(f.Video.Value.Path)
	r.Audio, r.Err = p.converter.Convert(ctx, r.Video, f.Video.Value.Title)
	return r
}
