package parser

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseResourceLineValid(t *testing.T) {
	cases := []struct {
		order       int
		description string
		filename    string
	}{
		{1, "a", "a.mp4"},
		{42, "still_shot", "screenshot.png"},
		{-3, "neg", "x.gif"},
		{7, "模型", "1.模型与动画演示.mp4"},
	}

	for _, tc := range cases {
		line := fmt.Sprintf("%d.%s.%s", tc.order, tc.description, tc.filename)
		t.Run(line, func(t *testing.T) {
			r, err := ParseResourceLine(line, "")
			require.NoError(t, err)
			assert.Equal(t, tc.order, r.Order)
			assert.Equal(t, tc.description, r.Description)
			assert.Equal(t, tc.filename, r.Filename)
			assert.Equal(t, DefaultResourceDir+"/"+tc.filename, r.Filepath)
		})
	}
}

func TestParseResourceLineEmbeddedDots(t *testing.T) {
	r, err := ParseResourceLine("1.demo.part.one.mp4", "")
	require.NoError(t, err)
	assert.Equal(t, "part.one.mp4", r.Filename)
	assert.Equal(t, MediaVideo, r.Type)
	assert.Equal(t, ".mp4", r.Extension)
}

func TestParseResourceLineRejects(t *testing.T) {
	_, err := ParseResourceLine("nodots", "")
	assert.ErrorIs(t, err, ErrTooFewFields)

	_, err = ParseResourceLine("1.onlytwo", "")
	assert.ErrorIs(t, err, ErrTooFewFields)

	_, err = ParseResourceLine("uno.a.a.mp4", "")
	assert.ErrorIs(t, err, ErrInvalidOrder)

	_, err = ParseResourceLine(".a.a.mp4", "")
	assert.ErrorIs(t, err, ErrInvalidOrder)

	// niente prefissi numerici parziali: "3abc" non vale 3
	_, err = ParseResourceLine("3abc.a.a.mp4", "")
	assert.ErrorIs(t, err, ErrInvalidOrder)
}

func TestClassifyExtensionCaseInsensitive(t *testing.T) {
	cases := map[string]MediaType{
		"clip.MP4":    MediaVideo,
		"clip.mp4":    MediaVideo,
		"clip.WebM":   MediaVideo,
		"clip.ogg":    MediaVideo,
		"clip.MOV":    MediaVideo,
		"anim.GIF":    MediaGIF,
		"pic.png":     MediaImage,
		"pic.JPG":     MediaImage,
		"pic.jpeg":    MediaImage,
		"pic.webp":    MediaImage,
		"doc.pdf":     MediaUnknown,
		"noextension": MediaUnknown,
	}

	for name, want := range cases {
		got, _ := ClassifyExtension(name)
		assert.Equal(t, want, got, name)
	}

	_, ext := ClassifyExtension("Clip.MP4")
	assert.Equal(t, ".mp4", ext)
}

func TestParseSection(t *testing.T) {
	assert.Equal(t, SectionResources, ParseSection("  Resources "))
	assert.Equal(t, SectionUIText, ParseSection("UI_TEXT"))
	assert.Equal(t, SectionUnknown, ParseSection("gallery"))
	assert.Equal(t, SectionUnknown, ParseSection(""))
}

func TestUITextForLanguage(t *testing.T) {
	m := UITextMap{
		"loading": {CN: "加载中...", EN: "Loading..."},
	}
	assert.Equal(t, map[string]string{"loading": "加载中..."}, m.ForLanguage("cn"))
	assert.Equal(t, map[string]string{"loading": "Loading..."}, m.ForLanguage("en"))
}
