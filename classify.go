package youtube_mp3

import (
	"errors"
	"regexp"
	"strings"
)

var playlistPattern = regexp.MustCompile(`^(https|http)://www\.youtube\.com/playlist\?list=`)

// IsPlaylist reports whether s looks like a YouTube playlist URL. Anything else, including strings that aren't
// URLs at all, is treated as a single video.
func IsPlaylist(s string) bool {
	return playlistPattern.MatchString(s)
}

var (
	ErrEmptyURL = errors.New("no URL given")
)

// NormalizeURL trims the surrounding whitespace a pasted or typed URL tends to carry, rejecting empty input.
func NormalizeURL(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ErrEmptyURL
	}
	return s, nil
}
