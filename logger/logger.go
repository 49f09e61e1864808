// Package logger costruisce il logger charmbracelet condiviso dai comandi.
package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
)

// Options configura il logger
type Options struct {
	Level  string
	File   string
	Output io.Writer // default os.Stderr
}

// New crea il logger. Il chiamante chiude il file restituito (può essere nil).
func New(opts Options) (*log.Logger, io.Closer, error) {
	level := log.InfoLevel
	if opts.Level != "" {
		parsed, err := log.ParseLevel(opts.Level)
		if err != nil {
			return nil, nil, fmt.Errorf("livello di log non valido: %w", err)
		}
		level = parsed
	}

	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	var closer io.Closer
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
			return nil, nil, fmt.Errorf("errore creazione cartella log: %w", err)
		}
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("errore apertura file di log: %w", err)
		}
		out = io.MultiWriter(out, f)
		closer = f
	}

	logger := log.NewWithOptions(out, log.Options{
		Level:           level,
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
		Prefix:          "gallery",
	})
	return logger, closer, nil
}

// Into mette il logger nel contesto e lo rende quello di default
func Into(ctx context.Context, logger *log.Logger) context.Context {
	log.SetDefault(logger)
	return log.WithContext(ctx, logger)
}
