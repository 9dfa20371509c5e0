package util

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	ErrNoFilename = errors.New("cannot derive valid filename")
)

// Longest title part of a filename, in bytes, leaving room under the usual 255 for an ID, a counter and an extension.
const maxFilenameBytes = 200

var reservedChars = "/\\:*?\"<>|"

// SafeFilename turns a display title into something usable as a single path element: reserved and control
// characters are dropped, whitespace runs collapse to one space and the result is trimmed and truncated.
func SafeFilename(title string) (string, error) {
	builder := strings.Builder{}
	lastSpace := false
	for _, r := range title {
		switch {
		case r == utf8.RuneError, unicode.IsControl(r), strings.ContainsRune(reservedChars, r):
			continue
		case unicode.IsSpace(r):
			if !lastSpace {
				builder.WriteRune(' ')
			}
			lastSpace = true
			continue
		}
		lastSpace = false
		builder.WriteRune(r)
	}
	filename := strings.TrimSpace(builder.String())
	filename = truncateBytes(filename, maxFilenameBytes)
	// Don't allow "filenames" that are just ".", "..", etc.
	if strings.ReplaceAll(filename, ".", "") == "" {
		return "", ErrNoFilename
	}
	return filename, nil
}

// SafeFilenameOr is SafeFilename, using fallback when the title has nothing usable in it.
func SafeFilenameOr(title string, fallback string) string {
	if filename, err := SafeFilename(title); err == nil {
		return filename
	}
	if filename, err := SafeFilename(fallback); err == nil {
		return filename
	}
	return "untitled"
}

func truncateBytes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	// Back off to a rune boundary
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return strings.TrimSpace(s[:n])
}

// Numbered gives the nth variant of a filename: the filename itself for n <= 1, otherwise "name (n).ext".
func Numbered(filename string, n int) string {
	if n <= 1 {
		return filename
	}
	ext := filepath.Ext(filename)
	return fmt.Sprintf("%s (%d)%s", strings.TrimSuffix(filename, ext), n, ext)
}
