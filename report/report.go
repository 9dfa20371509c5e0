// Package report prints the human-readable outcome of each video and of the whole run.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/alanbriolat/youtube-mp3"
)

const (
	header = "================== Result =================="
	footer = "============================================"
)

// PrintResult writes a bordered block describing one video's outcome. audioFormat names the audio format in the
// conversion failure line.
func PrintResult(w io.Writer, audioFormat string, r youtube_mp3.Result) {
	lines := []string{"", header}
	switch r.Status() {
	case youtube_mp3.StatusConverted:
		lines = append(lines,
			fmt.Sprintf("video_path=%s", r.Video.Unwrap()),
			fmt.Sprintf("music_path=%s", r.Audio.Unwrap()),
		)
	case youtube_mp3.StatusConversionFailed:
		lines = append(lines,
			fmt.Sprintf("video_path=%s", r.Video.Unwrap()),
			withError(fmt.Sprintf("music %s conversion failed", audioFormat), r.Err),
		)
	default:
		lines = append(lines,
			fmt.Sprintf("source=%s", r.Source),
			withError("Download Failed", r.Err),
		)
	}
	lines = append(lines, footer)
	_, _ = fmt.Fprintln(w, strings.Join(lines, "\n"))
}

// PrintSummary writes one line counting results by status.
func PrintSummary(w io.Writer, results []youtube_mp3.Result) {
	counts := make(map[youtube_mp3.Status]int)
	for _, r := range results {
		counts[r.Status()]++
	}
	noun := "videos"
	if len(results) == 1 {
		noun = "video"
	}
	_, _ = fmt.Fprintf(w, "\n%d %s: %d %s, %d %s, %d %s\n",
		len(results), noun,
		counts[youtube_mp3.StatusConverted], youtube_mp3.StatusConverted,
		counts[youtube_mp3.StatusConversionFailed], youtube_mp3.StatusConversionFailed,
		counts[youtube_mp3.StatusDownloadFailed], youtube_mp3.StatusDownloadFailed,
	)
}

func withError(s string, err error) string {
	if err == nil {
		return s
	}
	return fmt.Sprintf("%s: %v", s, err)
}
