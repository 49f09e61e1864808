package modal

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/xid"

	"media-gallery/presenter"
)

// AutoplayDelay è l'attesa prima di avviare il video nella modale
const AutoplayDelay = 300 * time.Millisecond

// EscapeKey è il tasto che chiude modale e anteprime
const EscapeKey = "Escape"

var ErrOverlayNotFound = errors.New("anteprima non trovata")

// DismissVia indica come è stata chiusa un'anteprima
type DismissVia string

const (
	DismissClose    DismissVia = "close"
	DismissBackdrop DismissVia = "backdrop"
	DismissEscape   DismissVia = "escape"
)

// ParseDismissVia valida il motivo di chiusura
func ParseDismissVia(s string) (DismissVia, error) {
	switch v := DismissVia(s); v {
	case DismissClose, DismissBackdrop, DismissEscape:
		return v, nil
	default:
		return "", fmt.Errorf("motivo di chiusura non valido: %q", s)
	}
}

// VideoModal è lo stato della modale video condivisa
type VideoModal struct {
	Open     bool          `json:"open"`
	Source   string        `json:"source,omitempty"`
	Title    string        `json:"title,omitempty"`
	Playing  bool          `json:"playing"`
	Position time.Duration `json:"position"`
}

// Overlay è un'anteprima temporanea legata a una sola risorsa
type Overlay struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Title  string `json:"title"`

	listenerID string
}

// EventType tipo di evento della scena
type EventType string

const (
	EventVideoOpened   EventType = "video_opened"
	EventVideoPlaying  EventType = "video_playing"
	EventVideoClosed   EventType = "video_closed"
	EventOverlayOpened EventType = "overlay_opened"
	EventOverlayClosed EventType = "overlay_closed"
)

// StageEvent rappresenta un cambiamento della scena
type StageEvent struct {
	Type      EventType  `json:"type"`
	OverlayID string     `json:"overlay_id,omitempty"`
	Source    string     `json:"source,omitempty"`
	Title     string     `json:"title,omitempty"`
	Via       DismissVia `json:"via,omitempty"`
	Timestamp time.Time  `json:"timestamp"`
}

// State è una fotografia della scena
type State struct {
	Video    VideoModal `json:"video"`
	Overlays []Overlay  `json:"overlays"`
}

// Stage possiede la modale video e le anteprime aperte
type Stage struct {
	mu            sync.Mutex
	keys          *KeyBus
	video         VideoModal
	overlays      map[string]*Overlay
	order         []string
	autoplayDelay time.Duration
	autoplay      *time.Timer
	onEvent       []func(StageEvent)
}

// StageOption configura la scena
type StageOption func(*Stage)

// WithAutoplayDelay cambia il ritardo di avvio (test)
func WithAutoplayDelay(d time.Duration) StageOption {
	return func(s *Stage) { s.autoplayDelay = d }
}

// WithKeyBus usa un registro tasti esterno
func WithKeyBus(kb *KeyBus) StageOption {
	return func(s *Stage) { s.keys = kb }
}

// NewStage crea la scena e registra il listener Escape della modale video
func NewStage(opts ...StageOption) *Stage {
	s := &Stage{
		keys:          NewKeyBus(),
		overlays:      make(map[string]*Overlay),
		autoplayDelay: AutoplayDelay,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.keys.Add(func(key string) {
		if key != EscapeKey {
			return
		}
		s.mu.Lock()
		open := s.video.Open
		s.mu.Unlock()
		if open {
			s.CloseVideo()
		}
	})

	return s
}

// OnEvent registra una callback per gli eventi della scena
func (s *Stage) OnEvent(fn func(StageEvent)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onEvent = append(s.onEvent, fn)
}

// Keys restituisce il registro tasti
func (s *Stage) Keys() *KeyBus {
	return s.keys
}

// Activate esegue l'azione di una scheda.
// Restituisce l'id dell'anteprima creata, vuoto per la modale video.
func (s *Stage) Activate(action presenter.Action) (string, error) {
	switch action.Kind {
	case presenter.ActionVideoModal:
		s.PlayVideo(action.Source, action.Title)
		return "", nil
	case presenter.ActionOverlay:
		return s.OpenOverlay(action.Source, action.Title), nil
	case presenter.ActionNone:
		return "", nil
	default:
		return "", fmt.Errorf("azione non supportata: %q", action.Kind)
	}
}

// PlayVideo apre la modale condivisa e avvia il video dopo AutoplayDelay
func (s *Stage) PlayVideo(source, title string) {
	s.mu.Lock()
	if s.autoplay != nil {
		s.autoplay.Stop()
	}
	s.video = VideoModal{Open: true, Source: source, Title: title}
	s.autoplay = time.AfterFunc(s.autoplayDelay, func() {
		s.mu.Lock()
		if !s.video.Open || s.video.Source != source {
			s.mu.Unlock()
			return
		}
		s.video.Playing = true
		s.mu.Unlock()
		s.emit(StageEvent{Type: EventVideoPlaying, Source: source, Title: title})
	})
	s.mu.Unlock()

	s.emit(StageEvent{Type: EventVideoOpened, Source: source, Title: title})
}

// CloseVideo chiude la modale, ferma il video e riporta la posizione a zero
func (s *Stage) CloseVideo() {
	s.mu.Lock()
	if !s.video.Open {
		s.mu.Unlock()
		return
	}
	if s.autoplay != nil {
		s.autoplay.Stop()
		s.autoplay = nil
	}
	source := s.video.Source
	s.video = VideoModal{}
	s.mu.Unlock()

	s.emit(StageEvent{Type: EventVideoClosed, Source: source})
}

// OpenOverlay crea una nuova anteprima con il proprio listener Escape
func (s *Stage) OpenOverlay(source, title string) string {
	overlay := &Overlay{
		ID:     xid.New().String(),
		Source: source,
		Title:  title,
	}
	id := overlay.ID
	overlay.listenerID = s.keys.Add(func(key string) {
		if key == EscapeKey {
			_ = s.Dismiss(id, DismissEscape)
		}
	})

	s.mu.Lock()
	s.overlays[id] = overlay
	s.order = append(s.order, id)
	s.mu.Unlock()

	s.emit(StageEvent{Type: EventOverlayOpened, OverlayID: id, Source: source, Title: title})
	return id
}

// Dismiss chiude un'anteprima e rimuove il suo listener di tastiera
func (s *Stage) Dismiss(id string, via DismissVia) error {
	s.mu.Lock()
	overlay, ok := s.overlays[id]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrOverlayNotFound, id)
	}
	delete(s.overlays, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.mu.Unlock()

	s.keys.Remove(overlay.listenerID)
	s.emit(StageEvent{Type: EventOverlayClosed, OverlayID: id, Source: overlay.Source, Via: via})
	return nil
}

// PressKey inoltra un tasto a tutti i listener
func (s *Stage) PressKey(key string) {
	s.keys.Dispatch(key)
}

// Snapshot restituisce lo stato corrente
func (s *Stage) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := State{Video: s.video, Overlays: make([]Overlay, 0, len(s.order))}
	for _, id := range s.order {
		state.Overlays = append(state.Overlays, *s.overlays[id])
	}
	return state
}

// Reset chiude tutto (cambio di contenuto)
func (s *Stage) Reset() {
	s.CloseVideo()

	s.mu.Lock()
	ids := append([]string(nil), s.order...)
	s.mu.Unlock()

	for _, id := range ids {
		_ = s.Dismiss(id, DismissClose)
	}
}

func (s *Stage) emit(event StageEvent) {
	event.Timestamp = time.Now()

	s.mu.Lock()
	handlers := append([]func(StageEvent){}, s.onEvent...)
	s.mu.Unlock()

	for _, fn := range handlers {
		fn(event)
	}
}
