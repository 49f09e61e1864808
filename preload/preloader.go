// Package preload verifica in parallelo le risorse del manifest prima di
// mostrare la galleria. Non aspetta mai oltre il timeout.
package preload

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dgraph-io/ristretto/v2"
	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"media-gallery/parser"
)

// DefaultTimeout è il limite di attesa del precaricamento
const DefaultTimeout = 5 * time.Second

// Result è l'esito di una singola risorsa
type Result struct {
	Order    int    `json:"order"`
	Filepath string `json:"filepath"`
	Done     bool   `json:"done"`
	OK       bool   `json:"ok"`
	Bytes    int64  `json:"bytes"`
	Error    string `json:"error,omitempty"`
	Cached   bool   `json:"cached"`
}

// Report riassume un precaricamento
type Report struct {
	Total     int           `json:"total"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	Pending   int           `json:"pending"`
	TimedOut  bool          `json:"timed_out"`
	Elapsed   time.Duration `json:"elapsed"`
	Results   []Result      `json:"results"`
}

// TotalBytes somma le dimensioni note delle risorse verificate
func (r *Report) TotalBytes() int64 {
	var total int64
	for _, res := range r.Results {
		if res.OK {
			total += res.Bytes
		}
	}
	return total
}

func (r *Report) String() string {
	status := "completato"
	if r.TimedOut {
		status = "timeout"
	}
	return fmt.Sprintf("%s: %d/%d ok, %d falliti, %d in sospeso, %s in %s",
		status, r.Succeeded, r.Total, r.Failed, r.Pending,
		humanize.Bytes(uint64(r.TotalBytes())), r.Elapsed.Round(time.Millisecond))
}

type cachedOutcome struct {
	bytes int64
	err   string
}

// Preloader lancia una verifica per risorsa e attende tutte o il timeout
type Preloader struct {
	prober  Prober
	timeout time.Duration
	cache   *ristretto.Cache[string, cachedOutcome]
	ttl     time.Duration
	limit   int
}

// Option configura il Preloader
type Option func(*Preloader)

// WithTimeout cambia il limite di attesa
func WithTimeout(d time.Duration) Option {
	return func(p *Preloader) { p.timeout = d }
}

// WithCacheTTL abilita la cache degli esiti (0 la disabilita)
func WithCacheTTL(ttl time.Duration) Option {
	return func(p *Preloader) { p.ttl = ttl }
}

// WithConcurrency limita le verifiche contemporanee (0 = tutte insieme)
func WithConcurrency(n int) Option {
	return func(p *Preloader) { p.limit = n }
}

// NewPreloader crea un Preloader
func NewPreloader(prober Prober, opts ...Option) (*Preloader, error) {
	p := &Preloader{
		prober:  prober,
		timeout: DefaultTimeout,
		ttl:     time.Minute,
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.ttl > 0 {
		c, err := ristretto.NewCache(&ristretto.Config[string, cachedOutcome]{
			NumCounters: 1e4,
			MaxCost:     1 << 10,
			BufferItems: 64,
		})
		if err != nil {
			return nil, fmt.Errorf("errore creazione cache: %w", err)
		}
		p.cache = c
	}
	return p, nil
}

// Close rilascia la cache
func (p *Preloader) Close() {
	if p.cache != nil {
		p.cache.Close()
	}
}

// Run verifica tutte le risorse. Ritorna quando tutte hanno risposto
// (successo o errore) oppure allo scadere del timeout; le verifiche
// ancora in corso vengono abbandonate, non interrotte.
func (p *Preloader) Run(ctx context.Context, resources []parser.Resource) *Report {
	logger := log.FromContext(ctx).WithPrefix("preload")
	start := time.Now()

	results := make([]Result, len(resources))
	for i, res := range resources {
		results[i] = Result{Order: res.Order, Filepath: res.Filepath}
	}
	if len(resources) == 0 {
		return &Report{Results: results, Elapsed: time.Since(start)}
	}

	var mu sync.Mutex
	probeCtx := context.WithoutCancel(ctx)
	g := new(errgroup.Group)
	if p.limit > 0 {
		g.SetLimit(p.limit)
	}

	// con un limite g.Go blocca: il lancio sta fuori dal percorso del timeout
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i, res := range resources {
			g.Go(func() error {
				outcome, cached := p.probe(probeCtx, res)
				mu.Lock()
				defer mu.Unlock()
				results[i].Done = true
				results[i].Cached = cached
				results[i].Bytes = outcome.bytes
				results[i].Error = outcome.err
				results[i].OK = outcome.err == ""
				return nil
			})
		}
		_ = g.Wait()
	}()

	timer := time.NewTimer(p.timeout)
	defer timer.Stop()

	timedOut := false
	select {
	case <-done:
	case <-timer.C:
		timedOut = true
	case <-ctx.Done():
		timedOut = true
	}

	mu.Lock()
	report := &Report{
		Total:    len(resources),
		TimedOut: timedOut,
		Results:  append([]Result(nil), results...),
	}
	mu.Unlock()

	for _, r := range report.Results {
		switch {
		case !r.Done:
			report.Pending++
		case r.OK:
			report.Succeeded++
		default:
			report.Failed++
			logger.Warn("risorsa non disponibile", "file", r.Filepath, "err", r.Error)
		}
	}
	report.Elapsed = time.Since(start)

	if timedOut {
		logger.Warn("precaricamento scaduto", "pending", report.Pending, "timeout", p.timeout)
	} else {
		logger.Debug("precaricamento completato", "report", report.String())
	}
	return report
}

func (p *Preloader) probe(ctx context.Context, res parser.Resource) (cachedOutcome, bool) {
	key := string(res.Type) + ":" + res.Filepath
	if p.cache != nil {
		if v, ok := p.cache.Get(key); ok {
			return v, true
		}
	}

	bytes, err := p.prober.Probe(ctx, res)
	outcome := cachedOutcome{bytes: bytes}
	if err != nil {
		outcome.err = err.Error()
	}

	// solo i successi: un file aggiunto dopo un errore va riverificato
	if p.cache != nil && err == nil {
		p.cache.SetWithTTL(key, outcome, 1, p.ttl)
		p.cache.Wait()
	}
	return outcome, false
}
