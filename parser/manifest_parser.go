package parser

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"

	"media-gallery/formats"
)

// ManifestParser gestisce il parsing del manifest testuale della galleria
type ManifestParser struct {
	resourceDir string
	dialect     formats.Dialect
}

// Option configura il parser
type Option func(*ManifestParser)

// WithResourceDir imposta il prefisso dei percorsi delle risorse
func WithResourceDir(dir string) Option {
	return func(mp *ManifestParser) {
		if dir != "" {
			mp.resourceDir = dir
		}
	}
}

// WithDialect imposta il dialetto (nil = default)
func WithDialect(d formats.Dialect) Option {
	return func(mp *ManifestParser) {
		if d != nil {
			mp.dialect = d
		}
	}
}

// NewManifestParser crea un nuovo parser
func NewManifestParser(opts ...Option) *ManifestParser {
	mp := &ManifestParser{
		resourceDir: DefaultResourceDir,
		dialect:     formats.Default(),
	}
	for _, opt := range opts {
		opt(mp)
	}
	return mp
}

// ResourceDir restituisce il prefisso usato per i percorsi
func (mp *ManifestParser) ResourceDir() string {
	return mp.resourceDir
}

// ParseFile legge e parsa un manifest su disco
func (mp *ManifestParser) ParseFile(ctx context.Context, path string) (*WebsiteContent, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("errore apertura manifest: %w", err)
	}
	defer file.Close()

	return mp.Parse(ctx, file)
}

// ParseString parsa il manifest già in memoria
func (mp *ManifestParser) ParseString(ctx context.Context, text string) *WebsiteContent {
	return mp.parseText(ctx, text)
}

// Parse legge tutto il reader e costruisce un nuovo aggregato.
// Solo gli errori di lettura vengono restituiti: le righe malformate
// vengono scartate e il parse continua.
func (mp *ManifestParser) Parse(ctx context.Context, r io.Reader) (*WebsiteContent, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("errore lettura manifest: %w", err)
	}
	return mp.parseText(ctx, string(data)), nil
}

func (mp *ManifestParser) parseText(ctx context.Context, text string) *WebsiteContent {
	logger := log.FromContext(ctx).WithPrefix("parser")
	content := NewWebsiteContent()

	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	lines := strings.Split(text, "\n")

	currentSection := ""
	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		// Intestazione di sezione
		if strings.HasPrefix(line, "#") {
			currentSection = strings.ToLower(strings.TrimSpace(line[1:]))
			logger.Debug("sezione trovata", "section", currentSection, "line", i+1)
			continue
		}

		if !mp.dialect.Supports(currentSection) {
			continue
		}

		switch ParseSection(currentSection) {
		case SectionResources:
			resource, err := ParseResourceLine(line, mp.resourceDir)
			if err != nil {
				logger.Warn("riga risorsa scartata", "line", i+1, "text", line, "err", err)
				content.Diagnostics = append(content.Diagnostics, Diagnostic{
					Line:   i + 1,
					Text:   line,
					Reason: err.Error(),
				})
				continue
			}
			content.Resources = append(content.Resources, *resource)

		case SectionTitles:
			// righe senza '=' scartate in silenzio
			if key, value, ok := splitKeyValue(line); ok {
				content.Titles[key] = value
			}

		case SectionDescriptions:
			if key, text, ok := splitLocalized(line); ok {
				content.Descriptions[key] = text
			}

		case SectionUIText:
			if key, text, ok := splitLocalized(line); ok {
				content.UIText[key] = text
			}
		}
	}

	logger.Debug("parse completato",
		"resources", len(content.Resources),
		"titles", len(content.Titles),
		"descriptions", len(content.Descriptions),
		"ui_text", len(content.UIText),
		"dropped", len(content.Diagnostics))

	return content
}

// splitKeyValue divide "chiave=valore" sul primo '='
func splitKeyValue(line string) (string, string, bool) {
	key, value, found := strings.Cut(line, "=")
	if !found {
		return "", "", false
	}
	key = strings.TrimSpace(key)
	value = strings.TrimSpace(value)
	if key == "" || value == "" {
		return "", "", false
	}
	return key, value, true
}

// splitLocalized divide "chiave=cinese|inglese" sul primo '=' e poi sul primo '|'.
// Le due parti devono esistere prima del trim: "k= |en" vale {cn:"", en:"en"}.
func splitLocalized(line string) (string, LocalizedText, bool) {
	key, rest, found := strings.Cut(line, "=")
	if !found {
		return "", LocalizedText{}, false
	}
	cn, en, found := strings.Cut(rest, "|")
	if !found || cn == "" || en == "" {
		return "", LocalizedText{}, false
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return "", LocalizedText{}, false
	}
	return key, LocalizedText{CN: strings.TrimSpace(cn), EN: strings.TrimSpace(en)}, true
}
