package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce è l'attesa prima di ricaricare dopo una modifica
const DefaultDebounce = 500 * time.Millisecond

// FileWatcher monitora i file manifest e ricarica la galleria
type FileWatcher struct {
	watcher      *fsnotify.Watcher
	files        map[string]bool
	onChange     func(context.Context, WatchEvent)
	debounceTime time.Duration
	eventChan    chan WatchEvent
	stopChan     chan struct{}
	doneChan     chan struct{}

	mu        sync.Mutex
	isRunning bool
	timers    map[string]*time.Timer
}

// WatchEvent rappresenta un evento del watcher
type WatchEvent struct {
	Type      string    `json:"type"` // "created", "modified", "deleted", "renamed", "reloaded", "reload_error"
	Path      string    `json:"path"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// WatcherConfig configurazione per il watcher
type WatcherConfig struct {
	Files        []string                          // Manifest da monitorare
	DebounceTime time.Duration                     // Tempo di debounce (default: 500ms)
	OnChange     func(context.Context, WatchEvent) // Chiamata dopo il debounce per created/modified
}

// NewFileWatcher crea un nuovo file watcher.
// Viene osservata la cartella di ogni manifest, così le sostituzioni
// atomiche degli editor non fanno perdere il file.
func NewFileWatcher(config WatcherConfig) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("errore creazione watcher: %w", err)
	}

	if config.DebounceTime == 0 {
		config.DebounceTime = DefaultDebounce
	}

	fw := &FileWatcher{
		watcher:      watcher,
		files:        make(map[string]bool),
		onChange:     config.OnChange,
		debounceTime: config.DebounceTime,
		eventChan:    make(chan WatchEvent, 100),
		stopChan:     make(chan struct{}),
		doneChan:     make(chan struct{}),
		timers:       make(map[string]*time.Timer),
	}

	dirs := make(map[string]bool)
	for _, file := range config.Files {
		abs, err := filepath.Abs(file)
		if err != nil {
			watcher.Close()
			return nil, fmt.Errorf("percorso non valido %s: %w", file, err)
		}
		fw.files[abs] = true

		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			watcher.Close()
			return nil, fmt.Errorf("errore aggiunta path %s: %w", dir, err)
		}
		dirs[dir] = true
	}

	return fw, nil
}

// Start avvia il file watcher
func (fw *FileWatcher) Start(ctx context.Context) error {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	if fw.isRunning {
		return fmt.Errorf("watcher già in esecuzione")
	}
	fw.isRunning = true

	logger := log.FromContext(ctx).WithPrefix("watcher")
	for file := range fw.files {
		logger.Info("monitoraggio manifest", "path", file)
	}

	go fw.loop(ctx, logger)
	return nil
}

func (fw *FileWatcher) loop(ctx context.Context, logger *log.Logger) {
	defer close(fw.doneChan)
	for {
		select {
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			fw.handle(ctx, logger, event)

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			logger.Error("errore watcher", "err", err)

		case <-fw.stopChan:
			logger.Info("watcher fermato")
			return

		case <-ctx.Done():
			return
		}
	}
}

func (fw *FileWatcher) handle(ctx context.Context, logger *log.Logger, event fsnotify.Event) {
	abs, err := filepath.Abs(event.Name)
	if err != nil || !fw.files[abs] {
		return
	}

	var eventType string
	switch {
	case event.Has(fsnotify.Create):
		eventType = "created"
	case event.Has(fsnotify.Write):
		eventType = "modified"
	case event.Has(fsnotify.Remove):
		eventType = "deleted"
	case event.Has(fsnotify.Rename):
		eventType = "renamed"
	default:
		return
	}

	logger.Debug("manifest cambiato", "type", eventType, "file", filepath.Base(abs))
	fw.emit(WatchEvent{Type: eventType, Path: abs, Timestamp: time.Now()})

	if eventType != "modified" && eventType != "created" {
		return
	}

	fw.mu.Lock()
	defer fw.mu.Unlock()
	if timer, exists := fw.timers[abs]; exists {
		timer.Stop()
	}
	fw.timers[abs] = time.AfterFunc(fw.debounceTime, func() {
		fw.mu.Lock()
		delete(fw.timers, abs)
		fw.mu.Unlock()

		if fw.onChange != nil {
			fw.onChange(ctx, WatchEvent{Type: eventType, Path: abs, Timestamp: time.Now()})
		}
	})
}

// Notify invia un evento agli ascoltatori (es. esito del ricaricamento)
func (fw *FileWatcher) Notify(event WatchEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	fw.emit(event)
}

func (fw *FileWatcher) emit(event WatchEvent) {
	select {
	case fw.eventChan <- event:
	default:
	}
}

// Stop ferma il file watcher
func (fw *FileWatcher) Stop() error {
	fw.mu.Lock()
	if !fw.isRunning {
		fw.mu.Unlock()
		return fmt.Errorf("watcher non in esecuzione")
	}
	fw.isRunning = false
	for path, timer := range fw.timers {
		timer.Stop()
		delete(fw.timers, path)
	}
	fw.mu.Unlock()

	close(fw.stopChan)
	<-fw.doneChan

	if err := fw.watcher.Close(); err != nil {
		return fmt.Errorf("errore chiusura watcher: %w", err)
	}
	return nil
}

// Events restituisce il canale degli eventi
func (fw *FileWatcher) Events() <-chan WatchEvent {
	return fw.eventChan
}

// IsRunning verifica se il watcher è attivo
func (fw *FileWatcher) IsRunning() bool {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	return fw.isRunning
}
