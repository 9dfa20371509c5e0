package youtube

import (
	"testing"

	"github.com/kkdai/youtube/v2"
	"github.com/stretchr/testify/assert"
)

var (
	formatAudioOnly = youtube.Format{ItagNo: 140, MimeType: `audio/mp4; codecs="mp4a.40.2"`, AudioChannels: 2}
	formatVideoOnly = youtube.Format{ItagNo: 137, MimeType: `video/mp4; codecs="avc1.640028"`, Width: 1920, Height: 1080, QualityLabel: "1080p"}
	formatWebm      = youtube.Format{ItagNo: 43, MimeType: `video/webm; codecs="vp8.0, vorbis"`, Width: 640, Height: 360, QualityLabel: "360p", AudioChannels: 2}
	format360p      = youtube.Format{ItagNo: 18, MimeType: `video/mp4; codecs="avc1.42001E, mp4a.40.2"`, Width: 640, Height: 360, QualityLabel: "360p", AudioChannels: 2, ContentLength: 1000}
	format720p      = youtube.Format{ItagNo: 22, MimeType: `video/mp4; codecs="avc1.64001F, mp4a.40.2"`, Width: 1280, Height: 720, QualityLabel: "720p", AudioChannels: 2}
)

func TestIsProgressive(t *testing.T) {
	assert := assert.New(t)
	assert.True(IsProgressive(&format360p))
	assert.True(IsProgressive(&formatWebm))
	assert.False(IsProgressive(&formatAudioOnly))
	assert.False(IsProgressive(&formatVideoOnly))
}

func TestSelectStreamFirstMatch(t *testing.T) {
	assert := assert.New(t)
	video := &youtube.Video{Formats: youtube.FormatList{formatVideoOnly, formatWebm, formatAudioOnly, format720p, format360p}}
	format, err := SelectStream(video, videoMimeType)
	assert.NoError(err)
	assert.Equal(22, format.ItagNo)
	// Points into the video's own format list, as the client expects
	assert.Same(&video.Formats[3], format)
}

func TestSelectStreamNoMatch(t *testing.T) {
	video := &youtube.Video{Formats: youtube.FormatList{formatVideoOnly, formatWebm, formatAudioOnly}}
	_, err := SelectStream(video, videoMimeType)
	assert.ErrorIs(t, err, ErrNoMatchingStream)

	_, err = SelectStream(&youtube.Video{}, videoMimeType)
	assert.ErrorIs(t, err, ErrNoMatchingStream)
}
