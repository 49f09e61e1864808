// Package session tiene lo stato della galleria mostrata ai display:
// contenuto corrente, lingua attiva, schermata e scena modale.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"media-gallery/loader"
	"media-gallery/locale"
	"media-gallery/modal"
	"media-gallery/parser"
	"media-gallery/preload"
	"media-gallery/prefs"
	"media-gallery/presenter"
)

// Screen è la schermata mostrata
type Screen string

const (
	ScreenLanguageSelect Screen = "language_select"
	ScreenLoading        Screen = "loading"
	ScreenGallery        Screen = "gallery"
	ScreenEmpty          Screen = "empty"
)

// ErrCardNotFound indica un ordine senza scheda corrispondente
var ErrCardNotFound = errors.New("scheda non trovata")

// EventType tipo di evento della sessione
type EventType string

const (
	EventScreen   EventType = "screen_changed"
	EventLanguage EventType = "language_changed"
	EventContent  EventType = "content_loaded"
	EventStage    EventType = "stage"
)

// Event è inviato agli iscritti ad ogni cambiamento
type Event struct {
	Type      EventType         `json:"type"`
	Screen    Screen            `json:"screen,omitempty"`
	Language  locale.Language   `json:"language,omitempty"`
	Resources int               `json:"resources,omitempty"`
	Stage     *modal.StageEvent `json:"stage,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

// Options raccoglie i collaboratori della sessione
type Options struct {
	Source    loader.Source
	Parser    *parser.ManifestParser
	Store     prefs.Store
	Preloader *preload.Preloader // nil: nessun precaricamento
	Stage     *modal.Stage

	// RememberLanguage salta la scelta della lingua se ne esiste una salvata
	RememberLanguage bool

	// Language è la lingua iniziale prima di qualsiasi scelta
	Language locale.Language
}

// Session è l'unico proprietario dello stato mostrato
type Session struct {
	source    loader.Source
	parser    *parser.ManifestParser
	store     prefs.Store
	preloader *preload.Preloader
	stage     *modal.Stage
	remember  bool

	mu        sync.RWMutex
	content   *parser.WebsiteContent
	presenter *presenter.Presenter
	lang      locale.Language
	chosen    bool
	screen    Screen
	report    *preload.Report
	loadedAt  time.Time

	loadMu sync.Mutex

	subMu  sync.Mutex
	subs   map[int]chan Event
	nextID int
}

// New crea una sessione sulla schermata di scelta lingua
func New(opts Options) *Session {
	if opts.Parser == nil {
		opts.Parser = parser.NewManifestParser()
	}
	if opts.Store == nil {
		opts.Store = prefs.NewMemoryStore()
	}
	if opts.Stage == nil {
		opts.Stage = modal.NewStage()
	}
	if opts.Language == "" {
		opts.Language = locale.Default
	}

	s := &Session{
		source:    opts.Source,
		parser:    opts.Parser,
		store:     opts.Store,
		preloader: opts.Preloader,
		stage:     opts.Stage,
		remember:  opts.RememberLanguage,
		content:   parser.NewWebsiteContent(),
		presenter: presenter.New(nil),
		lang:      opts.Language,
		screen:    ScreenLanguageSelect,
		subs:      make(map[int]chan Event),
	}

	s.stage.OnEvent(func(e modal.StageEvent) {
		s.publish(Event{Type: EventStage, Stage: &e})
	})
	return s
}

// Start applica la lingua salvata, se richiesto, e carica il contenuto
func (s *Session) Start(ctx context.Context) error {
	logger := log.FromContext(ctx).WithPrefix("session")
	if !s.remember {
		return nil
	}

	lang, ok, err := s.store.Language(ctx)
	if err != nil {
		logger.Warn("preferenza di lingua illeggibile", "err", err)
		return nil
	}
	if !ok {
		return nil
	}

	logger.Info("lingua salvata trovata", "lang", lang)
	s.setLanguage(lang)
	return s.Load(ctx)
}

// SelectLanguage salva la scelta e carica il contenuto
func (s *Session) SelectLanguage(ctx context.Context, lang locale.Language) error {
	if err := s.store.SetLanguage(ctx, lang); err != nil {
		return fmt.Errorf("errore salvataggio lingua: %w", err)
	}
	s.setLanguage(lang)
	return s.Load(ctx)
}

// ToggleLanguage passa all'altra lingua senza ricaricare il manifest
func (s *Session) ToggleLanguage(ctx context.Context) (locale.Language, error) {
	s.mu.RLock()
	next := s.lang.Toggle()
	s.mu.RUnlock()

	if err := s.store.SetLanguage(ctx, next); err != nil {
		return "", fmt.Errorf("errore salvataggio lingua: %w", err)
	}
	s.setLanguage(next)
	return next, nil
}

func (s *Session) setLanguage(lang locale.Language) {
	s.mu.Lock()
	s.lang = lang
	s.chosen = true
	s.mu.Unlock()

	s.publish(Event{Type: EventLanguage, Language: lang})
}

// Load scarica e analizza il manifest, poi sostituisce il contenuto in blocco.
// In caso di errore il contenuto diventa vuoto e l'errore viene restituito.
func (s *Session) Load(ctx context.Context) error {
	logger := log.FromContext(ctx).WithPrefix("session")

	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	s.setScreen(ScreenLoading)

	var report *preload.Report
	content, err := s.fetch(ctx)
	if err != nil {
		logger.Warn("contenuto non disponibile", "source", s.sourceName(), "err", err)
		content = parser.NewWebsiteContent()
	} else if s.preloader != nil {
		report = s.preloader.Run(ctx, content.Resources)
	}

	s.stage.Reset()

	s.mu.Lock()
	s.content = content
	s.presenter = presenter.ForContent(content)
	s.report = report
	s.loadedAt = time.Now()
	s.mu.Unlock()

	screen := ScreenGallery
	if content.IsEmpty() {
		screen = ScreenEmpty
	}
	s.publish(Event{Type: EventContent, Resources: len(content.Resources)})
	s.setScreen(screen)

	logger.Info("contenuto caricato", "resources", len(content.Resources), "diagnostics", len(content.Diagnostics))
	return err
}

func (s *Session) fetch(ctx context.Context) (*parser.WebsiteContent, error) {
	if s.source == nil {
		return nil, loader.ErrNoContent
	}
	text, err := s.source.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	return s.parser.ParseString(ctx, text), nil
}

func (s *Session) sourceName() string {
	if s.source == nil {
		return ""
	}
	return s.source.String()
}

func (s *Session) setScreen(screen Screen) {
	s.mu.Lock()
	s.screen = screen
	s.mu.Unlock()

	s.publish(Event{Type: EventScreen, Screen: screen})
}

// View presenta il contenuto corrente nella lingua attiva
func (s *Session) View() *presenter.View {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.presenter.Present(s.content, s.lang)
}

// ViewIn presenta il contenuto in una lingua diversa senza cambiarla
func (s *Session) ViewIn(lang locale.Language) *presenter.View {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.presenter.Present(s.content, lang)
}

// ActivateCard attiva la prima scheda con quell'ordine
func (s *Session) ActivateCard(order int) (string, error) {
	card, ok := s.View().FindCard(order)
	if !ok {
		return "", fmt.Errorf("%w: %d", ErrCardNotFound, order)
	}
	return s.stage.Activate(card.Action)
}

// Content restituisce l'aggregato corrente (da non modificare)
func (s *Session) Content() *parser.WebsiteContent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.content
}

// Language restituisce la lingua attiva e se è stata scelta
func (s *Session) Language() (locale.Language, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lang, s.chosen
}

func (s *Session) Screen() Screen {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.screen
}

// Report restituisce l'ultimo precaricamento (nil se disabilitato)
func (s *Session) Report() *preload.Report {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.report
}

func (s *Session) LoadedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadedAt
}

func (s *Session) Stage() *modal.Stage {
	return s.stage
}

func (s *Session) Catalog() *locale.Catalog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.presenter.Catalog()
}

// Subscribe restituisce un canale di eventi e la funzione per chiuderlo.
// Gli eventi vengono scartati se l'iscritto è troppo lento.
func (s *Session) Subscribe() (<-chan Event, func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	id := s.nextID
	s.nextID++
	ch := make(chan Event, 32)
	s.subs[id] = ch

	return ch, func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		if c, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(c)
		}
	}
}

func (s *Session) publish(e Event) {
	e.Timestamp = time.Now()

	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- e:
		default:
		}
	}
}
