package preload

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"media-gallery/parser"
)

// Prober verifica che una risorsa sia raggiungibile.
// Restituisce la dimensione in byte quando nota (0 altrimenti).
type Prober interface {
	Probe(ctx context.Context, res parser.Resource) (int64, error)
}

// ProberFunc adatta una funzione a Prober
type ProberFunc func(ctx context.Context, res parser.Resource) (int64, error)

func (f ProberFunc) Probe(ctx context.Context, res parser.Resource) (int64, error) {
	return f(ctx, res)
}

// FileProber legge l'intestazione del file e ne riconosce il tipo
type FileProber struct {
	Root string
}

// NewFileProber crea un prober relativo alla cartella del sito
func NewFileProber(root string) *FileProber {
	return &FileProber{Root: root}
}

func (fp *FileProber) Probe(ctx context.Context, res parser.Resource) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	path := filepath.Join(fp.Root, filepath.FromSlash(res.Filepath))
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return 0, err
	}
	if info.IsDir() {
		return 0, fmt.Errorf("%s è una cartella", res.Filepath)
	}

	mtype, err := mimetype.DetectReader(f)
	if err != nil {
		return 0, fmt.Errorf("errore lettura %s: %w", res.Filepath, err)
	}
	if !MatchesType(res.Type, mtype.String()) {
		return info.Size(), fmt.Errorf("%s: contenuto %s non compatibile con %s", res.Filepath, mtype.String(), res.Type)
	}
	return info.Size(), nil
}

// MatchesType confronta il MIME rilevato con il tipo dichiarato dall'estensione
func MatchesType(t parser.MediaType, mime string) bool {
	switch t {
	case parser.MediaVideo:
		return strings.HasPrefix(mime, "video/")
	case parser.MediaGIF:
		return mime == "image/gif"
	case parser.MediaImage:
		return strings.HasPrefix(mime, "image/")
	case parser.MediaUnknown:
		return true
	default:
		panic(fmt.Sprintf("tipo media non gestito: %q", t))
	}
}

// HTTPProber esegue una HEAD sulla risorsa pubblicata
type HTTPProber struct {
	BaseURL string
	Client  *http.Client
}

// NewHTTPProber crea un prober per le risorse servite da baseURL
func NewHTTPProber(baseURL string, client *http.Client) *HTTPProber {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPProber{BaseURL: strings.TrimRight(baseURL, "/"), Client: client}
}

func (hp *HTTPProber) Probe(ctx context.Context, res parser.Resource) (int64, error) {
	target := hp.BaseURL + "/" + escapePath(res.Filepath)
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, target, nil)
	if err != nil {
		return 0, err
	}
	resp, err := hp.Client.Do(req)
	if err != nil {
		return 0, err
	}
	resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, fmt.Errorf("HEAD %s: stato %d", target, resp.StatusCode)
	}
	if resp.ContentLength > 0 {
		return resp.ContentLength, nil
	}
	return 0, nil
}

func escapePath(p string) string {
	parts := strings.Split(p, "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}
