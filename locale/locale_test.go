package locale

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"media-gallery/parser"
)

func TestParseLanguage(t *testing.T) {
	for _, in := range []string{"cn", "CN", " zh-Hans ", "chinese"} {
		lang, err := Parse(in)
		require.NoError(t, err, in)
		assert.Equal(t, CN, lang)
	}

	lang, err := Parse("en")
	require.NoError(t, err)
	assert.Equal(t, EN, lang)

	_, err = Parse("fr")
	assert.ErrorIs(t, err, ErrUnknownLanguage)
}

func TestToggleAndBadge(t *testing.T) {
	assert.Equal(t, EN, CN.Toggle())
	assert.Equal(t, CN, EN.Toggle())
	assert.Equal(t, "CN", CN.Badge())
	assert.Equal(t, "EN", EN.Badge())
}

func TestPick(t *testing.T) {
	text := parser.LocalizedText{CN: "视频", EN: "Video"}
	assert.Equal(t, "视频", CN.Pick(text))
	assert.Equal(t, "Video", EN.Pick(text))
}

func TestCatalogDefaults(t *testing.T) {
	c, err := NewCatalog(nil)
	require.NoError(t, err)

	assert.Equal(t, "视频", c.Text(CN, "video"))
	assert.Equal(t, "Video", c.Text(EN, "video"))
	assert.Equal(t, "暂无资源", c.Text(CN, "no_resources"))
	assert.Equal(t, "No resources available", c.Text(EN, "no_resources"))
}

func TestCatalogMissingKeyFallsBackToKey(t *testing.T) {
	c, err := NewCatalog(nil)
	require.NoError(t, err)

	assert.Equal(t, "unknown", c.Text(EN, "unknown"))
	assert.Equal(t, "not_a_key", c.Text(CN, "not_a_key"))
}

func TestCatalogOverridesFromManifest(t *testing.T) {
	c, err := NewCatalog(parser.UITextMap{
		"loading":     {CN: "请稍候", EN: "Please wait"},
		"custom_note": {CN: "说明", EN: "Note"},
	})
	require.NoError(t, err)

	assert.Equal(t, "请稍候", c.Text(CN, "loading"))
	assert.Equal(t, "Please wait", c.Text(EN, "loading"))
	assert.Equal(t, "Note", c.Text(EN, "custom_note"))
	// le chiavi non sovrascritte restano quelle predefinite
	assert.Equal(t, "Image", c.Text(EN, "image"))
}

func TestCatalogTexts(t *testing.T) {
	c := MustCatalog(nil)
	texts := c.Texts(EN, "close", "play_video")
	assert.Equal(t, map[string]string{"close": "Close", "play_video": "Play Video"}, texts)
}

func TestCatalogOverridesAreLiteral(t *testing.T) {
	c, err := NewCatalog(parser.UITextMap{
		"loading":       {CN: "加载 {{.}}", EN: "Loading {{.}}"},
		"website_title": {CN: "作品 {{", EN: "Works {{"},
	})
	require.NoError(t, err)

	assert.Equal(t, "加载 {{.}}", c.Text(CN, "loading"))
	assert.Equal(t, "Loading {{.}}", c.Text(EN, "loading"))
	assert.Equal(t, "作品 {{", c.Text(CN, "website_title"))
	assert.Equal(t, "Works {{", c.Text(EN, "website_title"))
	assert.Equal(t, "Video", c.Text(EN, "video"))
}
