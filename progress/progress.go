// Package progress renders download progress on a terminal.
package progress

import (
	"fmt"
	"io"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/alanbriolat/youtube-mp3/download"
)

// Indicator is the part of *progressbar.ProgressBar the Reporter drives.
type Indicator interface {
	Set64(num int64) error
	Finish() error
}

// IndicatorFactory creates an Indicator for a stream of total bytes (<= 0 if unknown).
type IndicatorFactory func(out io.Writer, total int64, description string) Indicator

// NewBar is the default IndicatorFactory, a byte-counting progressbar.
func NewBar(out io.Writer, total int64, description string) Indicator {
	if total <= 0 {
		total = -1
	}
	return progressbar.NewOptions64(total,
		progressbar.OptionSetWriter(out),
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(30),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowCount(),
		progressbar.OptionOnCompletion(func() {
			_, _ = fmt.Fprint(out, "\n")
		}),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetRenderBlankState(true),
	)
}

type Reporter struct {
	out          io.Writer
	refreshDelay time.Duration
	newIndicator IndicatorFactory
	sleep        func(time.Duration)
}

// NewReporter creates a Reporter writing to out, pausing for refreshDelay after every update.
func NewReporter(out io.Writer, refreshDelay time.Duration) *Reporter {
	return &Reporter{
		out:          out,
		refreshDelay: refreshDelay,
		newIndicator: NewBar,
		sleep:        time.Sleep,
	}
}

func (r *Reporter) WithIndicatorFactory(f IndicatorFactory) *Reporter {
	r.newIndicator = f
	return r
}

// Track returns callbacks for a single download. Each call gets its own indicator, created on the first chunk and
// finished when the download completes. An aborted download leaves its indicator where it stopped.
func (r *Reporter) Track() download.Callbacks {
	var indicator Indicator
	return download.Callbacks{
		OnProgress: func(info download.StreamInfo, _ []byte, downloaded int64, _ int64) {
			if indicator == nil {
				_, _ = fmt.Fprintln(r.out, info.Filename)
				indicator = r.newIndicator(r.out, info.Size, info.Title)
			}
			_ = indicator.Set64(downloaded)
			if r.refreshDelay > 0 {
				r.sleep(r.refreshDelay)
			}
		},
		OnComplete: func(_ download.StreamInfo, _ string) {
			if indicator != nil {
				_ = indicator.Finish()
				indicator = nil
			}
		},
		OnAbort: func(_ download.StreamInfo, _ error) {
			if indicator != nil {
				// Move off the partial bar so following output starts on its own line
				_, _ = fmt.Fprint(r.out, "\n")
				indicator = nil
			}
		},
	}
}
