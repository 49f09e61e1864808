package session

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"media-gallery/loader"
	"media-gallery/locale"
	"media-gallery/modal"
	"media-gallery/parser"
	"media-gallery/preload"
	"media-gallery/prefs"
)

const manifest = `#resources
2.clip.clip.mp4
1.anim.anim.gif

#descriptions
clip=视频|Clip
anim=动画|Animation

#ui_text
no_resources=暂无|Nothing here
`

type stubSource struct {
	text string
	err  error
}

func (s *stubSource) Fetch(context.Context) (string, error) { return s.text, s.err }
func (s *stubSource) String() string                        { return "stub" }

func testContext() context.Context {
	return log.WithContext(context.Background(), log.New(io.Discard))
}

func TestStartWithoutPreferenceStaysOnLanguageSelect(t *testing.T) {
	s := New(Options{Source: &stubSource{text: manifest}, RememberLanguage: true})
	require.NoError(t, s.Start(testContext()))

	assert.Equal(t, ScreenLanguageSelect, s.Screen())
	_, chosen := s.Language()
	assert.False(t, chosen)
}

func TestStartAutoAdvancesWithSavedLanguage(t *testing.T) {
	store := prefs.NewMemoryStore()
	require.NoError(t, store.SetLanguage(testContext(), locale.EN))

	s := New(Options{Source: &stubSource{text: manifest}, Store: store, RememberLanguage: true})
	require.NoError(t, s.Start(testContext()))

	assert.Equal(t, ScreenGallery, s.Screen())
	lang, chosen := s.Language()
	assert.True(t, chosen)
	assert.Equal(t, locale.EN, lang)
}

func TestStartIgnoresSavedLanguageWhenNotRemembering(t *testing.T) {
	store := prefs.NewMemoryStore()
	require.NoError(t, store.SetLanguage(testContext(), locale.EN))

	s := New(Options{Source: &stubSource{text: manifest}, Store: store})
	require.NoError(t, s.Start(testContext()))
	assert.Equal(t, ScreenLanguageSelect, s.Screen())
}

func TestSelectLanguagePersistsAndLoads(t *testing.T) {
	store := prefs.NewMemoryStore()
	s := New(Options{Source: &stubSource{text: manifest}, Store: store})

	require.NoError(t, s.SelectLanguage(testContext(), locale.EN))

	saved, ok, err := store.Language(testContext())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, locale.EN, saved)

	view := s.View()
	require.Len(t, view.Cards, 2)
	assert.Equal(t, 1, view.Cards[0].Order)
	assert.Equal(t, "Animation", view.Cards[0].DisplayDescription)
	assert.Equal(t, "Clip", view.Cards[1].DisplayDescription)
}

func TestToggleLanguageDoesNotRefetch(t *testing.T) {
	src := &stubSource{text: manifest}
	store := prefs.NewMemoryStore()
	s := New(Options{Source: src, Store: store})
	require.NoError(t, s.SelectLanguage(testContext(), locale.CN))

	src.err = errors.New("non dovrebbe essere richiamato")

	lang, err := s.ToggleLanguage(testContext())
	require.NoError(t, err)
	assert.Equal(t, locale.EN, lang)
	assert.Equal(t, ScreenGallery, s.Screen())
	assert.Equal(t, "Clip", s.View().Cards[1].DisplayDescription)

	saved, _, err := store.Language(testContext())
	require.NoError(t, err)
	assert.Equal(t, locale.EN, saved)
}

func TestLoadFailureYieldsEmptyView(t *testing.T) {
	s := New(Options{Source: &stubSource{err: loader.ErrNoContent}})

	err := s.SelectLanguage(testContext(), locale.EN)
	assert.ErrorIs(t, err, loader.ErrNoContent)
	assert.Equal(t, ScreenEmpty, s.Screen())

	view := s.View()
	assert.True(t, view.Empty)
	assert.Equal(t, "No resources available", view.EmptyMessage)
}

func TestLoadReplacesContentAndUsesUIText(t *testing.T) {
	src := &stubSource{text: manifest}
	s := New(Options{Source: src})
	require.NoError(t, s.SelectLanguage(testContext(), locale.EN))

	src.text = "#ui_text\nno_resources=暂无|Nothing here\n"
	require.NoError(t, s.Load(testContext()))

	assert.Equal(t, ScreenEmpty, s.Screen())
	assert.Equal(t, "Nothing here", s.View().EmptyMessage)
	assert.Empty(t, s.Content().Resources)
}

func TestViewInDoesNotChangeLanguage(t *testing.T) {
	s := New(Options{Source: &stubSource{text: manifest}})
	require.NoError(t, s.SelectLanguage(testContext(), locale.CN))

	view := s.ViewIn(locale.EN)
	assert.Equal(t, locale.EN, view.Language)
	lang, _ := s.Language()
	assert.Equal(t, locale.CN, lang)
}

func TestActivateCard(t *testing.T) {
	stage := modal.NewStage(modal.WithAutoplayDelay(time.Hour))
	s := New(Options{Source: &stubSource{text: manifest}, Stage: stage})
	require.NoError(t, s.SelectLanguage(testContext(), locale.EN))

	_, err := s.ActivateCard(2)
	require.NoError(t, err)
	state := stage.Snapshot()
	assert.True(t, state.Video.Open)
	assert.Equal(t, parser.DefaultResourceDir+"/clip.mp4", state.Video.Source)
	assert.Equal(t, "Clip", state.Video.Title)

	id, err := s.ActivateCard(1)
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Len(t, stage.Snapshot().Overlays, 1)

	_, err = s.ActivateCard(99)
	assert.ErrorIs(t, err, ErrCardNotFound)
}

func TestLoadResetsStage(t *testing.T) {
	stage := modal.NewStage(modal.WithAutoplayDelay(time.Hour))
	s := New(Options{Source: &stubSource{text: manifest}, Stage: stage})
	require.NoError(t, s.SelectLanguage(testContext(), locale.EN))
	_, err := s.ActivateCard(1)
	require.NoError(t, err)

	require.NoError(t, s.Load(testContext()))
	assert.Empty(t, stage.Snapshot().Overlays)
}

func TestLoadRunsPreload(t *testing.T) {
	p, err := preload.NewPreloader(preload.ProberFunc(func(context.Context, parser.Resource) (int64, error) {
		return 5, nil
	}), preload.WithCacheTTL(0))
	require.NoError(t, err)

	s := New(Options{Source: &stubSource{text: manifest}, Preloader: p})
	assert.Nil(t, s.Report())

	require.NoError(t, s.SelectLanguage(testContext(), locale.CN))
	report := s.Report()
	require.NotNil(t, report)
	assert.Equal(t, 2, report.Succeeded)
}

func TestSubscribeReceivesEvents(t *testing.T) {
	s := New(Options{Source: &stubSource{text: manifest}})
	events, cancel := s.Subscribe()
	defer cancel()

	require.NoError(t, s.SelectLanguage(testContext(), locale.EN))

	var types []EventType
	var screens []Screen
	for len(events) > 0 {
		e := <-events
		types = append(types, e.Type)
		if e.Type == EventScreen {
			screens = append(screens, e.Screen)
		}
	}
	assert.Contains(t, types, EventLanguage)
	assert.Contains(t, types, EventContent)
	assert.Equal(t, []Screen{ScreenLoading, ScreenGallery}, screens)
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	s := New(Options{})
	events, cancel := s.Subscribe()
	cancel()
	cancel()

	_, ok := <-events
	assert.False(t, ok)
}
