package presenter

import (
	"context"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"media-gallery/locale"
	"media-gallery/parser"
)

func parse(t *testing.T, text string) *parser.WebsiteContent {
	t.Helper()
	ctx := log.WithContext(context.Background(), log.New(io.Discard))
	return parser.NewManifestParser().ParseString(ctx, text)
}

func TestPresentFallsBackToRawKeys(t *testing.T) {
	content := parse(t, "#resources\n1.a.1.a.mp4\n2.b.2.b.png\n")
	view := ForContent(content).Present(content, locale.EN)

	require.Len(t, view.Cards, 2)
	assert.Equal(t, "a", view.Cards[0].DisplayDescription)
	assert.Equal(t, "b", view.Cards[1].DisplayDescription)
	assert.False(t, view.Empty)
}

func TestPresentLocalizesDescriptions(t *testing.T) {
	content := parse(t, `#resources
1.demo.demo.mp4
#descriptions
demo=模型与动画演示|Model & Animation Demo
`)
	p := ForContent(content)

	assert.Equal(t, "模型与动画演示", p.Present(content, locale.CN).Cards[0].DisplayDescription)
	assert.Equal(t, "Model & Animation Demo", p.Present(content, locale.EN).Cards[0].DisplayDescription)
}

func TestPresentSortIsStable(t *testing.T) {
	content := parse(t, "#resources\n2.second.x.png\n1.first_a.a.png\n1.first_b.b.png\n0.zero.z.gif\n")
	view := New(nil).Present(content, locale.CN)

	var got []string
	for _, c := range view.Cards {
		got = append(got, c.DisplayDescription)
	}
	assert.Equal(t, []string{"zero", "first_a", "first_b", "second"}, got)

	// l'aggregato non viene riordinato
	assert.Equal(t, 2, content.Resources[0].Order)
}

func TestPresentTypeLabels(t *testing.T) {
	content := parse(t, "#resources\n1.v.v.MP4\n2.g.g.gif\n3.i.i.jpeg\n4.u.u.pdf\n")
	view := New(nil).Present(content, locale.EN)

	require.Len(t, view.Cards, 4)
	assert.Equal(t, "Video", view.Cards[0].TypeLabel)
	assert.Equal(t, "GIF Animation", view.Cards[1].TypeLabel)
	assert.Equal(t, "Image", view.Cards[2].TypeLabel)
	assert.Equal(t, "unknown", view.Cards[3].TypeLabel)

	cn := New(nil).Present(content, locale.CN)
	assert.Equal(t, "视频", cn.Cards[0].TypeLabel)
}

func TestPresentActions(t *testing.T) {
	content := parse(t, `#resources
1.v.clip.mp4
2.g.anim.gif
3.i.still.png
4.u.file.bin
#descriptions
v=视频|Clip
`)
	view := New(nil).Present(content, locale.EN)

	assert.Equal(t, Action{Kind: ActionVideoModal, Source: "资源/clip.mp4", Title: "Clip"}, view.Cards[0].Action)
	assert.Equal(t, Action{Kind: ActionOverlay, Source: "资源/anim.gif", Title: "g"}, view.Cards[1].Action)
	assert.Equal(t, ActionOverlay, view.Cards[2].Action.Kind)
	assert.Equal(t, Action{Kind: ActionNone}, view.Cards[3].Action)

	assert.Equal(t, "video", view.Cards[0].Icon)
	assert.Equal(t, "film", view.Cards[1].Icon)
	assert.Equal(t, "image", view.Cards[2].Icon)
}

func TestPresentOrderLabel(t *testing.T) {
	content := parse(t, "#resources\n3.a.a.png\n12.b.b.png\n")
	view := New(nil).Present(content, locale.CN)

	assert.Equal(t, "#03", view.Cards[0].OrderLabel)
	assert.Equal(t, "#12", view.Cards[1].OrderLabel)
}

func TestPresentEmptyState(t *testing.T) {
	content := parse(t, "#titles\nk=v\n")

	cn := New(nil).Present(content, locale.CN)
	assert.True(t, cn.Empty)
	assert.Empty(t, cn.Cards)
	assert.Equal(t, "暂无资源", cn.EmptyMessage)

	en := New(nil).Present(nil, locale.EN)
	assert.True(t, en.Empty)
	assert.Equal(t, "No resources available", en.EmptyMessage)
}

func TestPresentEmptyMessageFromUIText(t *testing.T) {
	content := parse(t, "#ui_text\nno_resources=空空如也|Nothing here\n")
	view := ForContent(content).Present(content, locale.EN)

	assert.True(t, view.Empty)
	assert.Equal(t, "Nothing here", view.EmptyMessage)
	assert.Equal(t, "Nothing here", view.Chrome["no_resources"])
}

func TestPresentChromeAndTitles(t *testing.T) {
	content := parse(t, "#resources\n1.a.a.png\n#titles\nwebsite=My Gallery\n")
	view := New(nil).Present(content, locale.EN)

	assert.Equal(t, "EN", view.Badge)
	assert.Equal(t, "Loading...", view.Chrome["loading"])
	assert.Equal(t, "Switch to Chinese", view.Chrome["toggle_language"])
	assert.Equal(t, "My Gallery", view.Titles["website"])
}

func TestFindCard(t *testing.T) {
	content := parse(t, "#resources\n5.a.a.png\n5.b.b.png\n")
	view := New(nil).Present(content, locale.CN)

	card, ok := view.FindCard(5)
	require.True(t, ok)
	assert.Equal(t, "a", card.DisplayDescription)

	_, ok = view.FindCard(9)
	assert.False(t, ok)
}

func TestPresentChromeKeepsTemplateLikeUIText(t *testing.T) {
	content := parse(t, "#resources\n1.a.a.mp4\n#ui_text\nloading=加载 {{.}}|Loading {{.}}\nwebsite_title=作品 {{ |Works {{\n")
	view := ForContent(content).Present(content, locale.EN)

	assert.Equal(t, "Loading {{.}}", view.Chrome["loading"])
	assert.Equal(t, "Works {{", view.Chrome["website_title"])
}
