package util

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSafeFilename(t *testing.T) {
	cases := []struct {
		title    string
		expected string
	}{
		{"a", "a"},
		{"Artist - Song (Official Video)", "Artist - Song (Official Video)"},
		{"AC/DC: Back in Black", "ACDC Back in Black"},
		{"  lots   of\tspace  ", "lots of space"},
		{"what?*<>|\"", "what"},
		{"日本語のタイトル", "日本語のタイトル"},
		{"v1.2", "v1.2"},
	}
	for _, c := range cases {
		t.Run(c.title, func(t *testing.T) {
			filename, err := SafeFilename(c.title)
			assert.NoError(t, err)
			assert.Equal(t, c.expected, filename)
		})
	}
}

func TestSafeFilenameInvalid(t *testing.T) {
	for _, title := range []string{"", "   ", ".", "..", "///", "\x00\x01"} {
		_, err := SafeFilename(title)
		assert.ErrorIs(t, err, ErrNoFilename, "title %q", title)
	}
}

func TestSafeFilenameTruncates(t *testing.T) {
	assert := assert.New(t)
	filename, err := SafeFilename(strings.Repeat("é", 200))
	assert.NoError(err)
	assert.LessOrEqual(len(filename), maxFilenameBytes)
	assert.True(strings.HasPrefix(strings.Repeat("é", 200), filename))
}

func TestSafeFilenameOr(t *testing.T) {
	assert := assert.New(t)
	assert.Equal("title", SafeFilenameOr("title", "id"))
	assert.Equal("id", SafeFilenameOr("..", "id"))
	assert.Equal("untitled", SafeFilenameOr("", ""))
}

func TestNumbered(t *testing.T) {
	assert := assert.New(t)
	assert.Equal("Intro.abc.mp4", Numbered("Intro.abc.mp4", 1))
	assert.Equal("Intro.abc (2).mp4", Numbered("Intro.abc.mp4", 2))
	assert.Equal("Intro (3).mp3", Numbered("Intro.mp3", 3))
	assert.Equal("noext (2)", Numbered("noext", 2))
}
