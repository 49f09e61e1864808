// Package loader recupera il testo del manifest da disco o via HTTP.
package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/charmbracelet/log"
)

// ErrNoContent indica che il manifest non è disponibile (vista vuota)
var ErrNoContent = errors.New("nessun contenuto disponibile")

// StatusError è una risposta HTTP non 2xx
type StatusError struct {
	URL    string
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("risposta %d da %s", e.Status, e.URL)
}

// Source fornisce il testo grezzo del manifest
type Source interface {
	Fetch(ctx context.Context) (string, error)
	String() string
}

// FileSource legge il manifest da un file locale
type FileSource struct {
	Path string
}

// NewFileSource crea una sorgente su file
func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

// Fetch legge il file intero
func (fs *FileSource) Fetch(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := os.ReadFile(fs.Path)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrNoContent, err)
	}
	return string(data), nil
}

func (fs *FileSource) String() string { return fs.Path }

// HTTPSource scarica il manifest con una GET
type HTTPSource struct {
	URL        string
	Client     *http.Client
	MaxRetries uint64
}

// NewHTTPSource crea una sorgente HTTP con timeout e tentativi di default
func NewHTTPSource(url string, maxRetries uint64) *HTTPSource {
	return &HTTPSource{
		URL:        url,
		Client:     &http.Client{Timeout: 15 * time.Second},
		MaxRetries: maxRetries,
	}
}

// Fetch scarica il manifest; i 4xx non vengono ritentati
func (hs *HTTPSource) Fetch(ctx context.Context) (string, error) {
	logger := log.FromContext(ctx).WithPrefix("loader")

	var body string
	operation := func() error {
		text, err := hs.fetchOnce(ctx)
		if err != nil {
			var statusErr *StatusError
			if errors.As(err, &statusErr) && statusErr.Status < 500 {
				return backoff.Permanent(err)
			}
			logger.Warn("download manifest fallito", "url", hs.URL, "err", err)
			return err
		}
		body = text
		return nil
	}

	b := backoff.WithContext(backoff.WithMaxRetries(newBackoff(), hs.MaxRetries), ctx)
	if err := backoff.Retry(operation, b); err != nil {
		return "", fmt.Errorf("%w: %w", ErrNoContent, err)
	}
	return body, nil
}

func (hs *HTTPSource) fetchOnce(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, hs.URL, nil)
	if err != nil {
		return "", backoff.Permanent(fmt.Errorf("richiesta non valida: %w", err))
	}

	client := hs.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &StatusError{URL: hs.URL, Status: resp.StatusCode}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("errore lettura risposta: %w", err)
	}
	return string(data), nil
}

func (hs *HTTPSource) String() string { return hs.URL }

func newBackoff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 200 * time.Millisecond
	b.MaxInterval = 2 * time.Second
	b.MaxElapsedTime = 10 * time.Second
	return b
}

// NewSource sceglie la sorgente in base alla forma della posizione
func NewSource(location string, maxRetries uint64) Source {
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		return NewHTTPSource(location, maxRetries)
	}
	return NewFileSource(strings.TrimPrefix(location, "file://"))
}
