package modal

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"media-gallery/presenter"
)

type recorder struct {
	mu     sync.Mutex
	events []StageEvent
}

func (r *recorder) record(e StageEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) types() []EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []EventType
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

func TestVideoModalAutoplaysAfterDelay(t *testing.T) {
	s := NewStage(WithAutoplayDelay(10 * time.Millisecond))
	rec := &recorder{}
	s.OnEvent(rec.record)

	id, err := s.Activate(presenter.Action{Kind: presenter.ActionVideoModal, Source: "资源/a.mp4", Title: "Demo"})
	require.NoError(t, err)
	assert.Empty(t, id)

	state := s.Snapshot()
	assert.True(t, state.Video.Open)
	assert.Equal(t, "资源/a.mp4", state.Video.Source)
	assert.Equal(t, "Demo", state.Video.Title)

	require.Eventually(t, func() bool { return s.Snapshot().Video.Playing }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []EventType{EventVideoOpened, EventVideoPlaying}, rec.types())
}

func TestCloseVideoBeforeAutoplay(t *testing.T) {
	s := NewStage(WithAutoplayDelay(50 * time.Millisecond))
	s.PlayVideo("a.mp4", "A")
	s.CloseVideo()

	time.Sleep(80 * time.Millisecond)
	state := s.Snapshot()
	assert.False(t, state.Video.Open)
	assert.False(t, state.Video.Playing)
	assert.Zero(t, state.Video.Position)
}

func TestEscapeClosesVideo(t *testing.T) {
	s := NewStage()
	s.PlayVideo("a.mp4", "A")
	s.PressKey("Enter")
	assert.True(t, s.Snapshot().Video.Open)

	s.PressKey(EscapeKey)
	assert.False(t, s.Snapshot().Video.Open)
}

func TestOverlayDismissUnregistersListener(t *testing.T) {
	for _, via := range []DismissVia{DismissClose, DismissBackdrop} {
		t.Run(string(via), func(t *testing.T) {
			s := NewStage()
			base := s.Keys().Len()

			id, err := s.Activate(presenter.Action{Kind: presenter.ActionOverlay, Source: "资源/a.gif", Title: "GIF"})
			require.NoError(t, err)
			require.NotEmpty(t, id)
			assert.Equal(t, base+1, s.Keys().Len())
			assert.Len(t, s.Snapshot().Overlays, 1)

			require.NoError(t, s.Dismiss(id, via))
			assert.Equal(t, base, s.Keys().Len())
			assert.Empty(t, s.Snapshot().Overlays)

			assert.ErrorIs(t, s.Dismiss(id, via), ErrOverlayNotFound)
		})
	}
}

func TestEscapeClosesEveryOverlay(t *testing.T) {
	s := NewStage()
	rec := &recorder{}
	s.OnEvent(rec.record)
	base := s.Keys().Len()

	s.OpenOverlay("a.gif", "A")
	s.OpenOverlay("b.png", "B")
	assert.Equal(t, base+2, s.Keys().Len())

	s.PressKey(EscapeKey)

	assert.Empty(t, s.Snapshot().Overlays)
	assert.Equal(t, base, s.Keys().Len())
	assert.Equal(t, []EventType{EventOverlayOpened, EventOverlayOpened, EventOverlayClosed, EventOverlayClosed}, rec.types())
}

func TestActivateNone(t *testing.T) {
	s := NewStage()
	id, err := s.Activate(presenter.Action{Kind: presenter.ActionNone})
	require.NoError(t, err)
	assert.Empty(t, id)
	assert.False(t, s.Snapshot().Video.Open)

	_, err = s.Activate(presenter.Action{Kind: "explode"})
	assert.Error(t, err)
}

func TestReset(t *testing.T) {
	s := NewStage()
	base := s.Keys().Len()
	s.PlayVideo("a.mp4", "A")
	s.OpenOverlay("b.gif", "B")

	s.Reset()

	state := s.Snapshot()
	assert.False(t, state.Video.Open)
	assert.Empty(t, state.Overlays)
	assert.Equal(t, base, s.Keys().Len())
}

func TestParseDismissVia(t *testing.T) {
	v, err := ParseDismissVia("backdrop")
	require.NoError(t, err)
	assert.Equal(t, DismissBackdrop, v)

	_, err = ParseDismissVia("swipe")
	assert.Error(t, err)
}

func TestKeyBusRemoveTwice(t *testing.T) {
	kb := NewKeyBus()
	id := kb.Add(func(string) {})
	kb.Remove(id)
	kb.Remove(id)
	assert.Zero(t, kb.Len())
}
