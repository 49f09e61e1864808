// Package compiler genera una versione statica della galleria:
// una pagina HTML per lingua più il contenuto analizzato in JSON.
package compiler

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/goccy/go-json"

	"media-gallery/locale"
	"media-gallery/parser"
	"media-gallery/presenter"
)

// ContentFile è il nome del file JSON con l'aggregato
const ContentFile = "content.json"

// Compiler produce i file statici a partire da un manifest
type Compiler struct {
	parser    *parser.ManifestParser
	templates *template.Template
	outputDir string
}

// CompileOptions opzioni per la compilazione
type CompileOptions struct {
	Languages  []locale.Language // Lingue da generare (default: cn, en)
	OutputDir  string            // Cartella di destinazione (default: quella del compiler)
	MediaBase  string            // Prefisso per i percorsi delle risorse
	StrictMode bool              // Righe scartate = errore
	SkipJSON   bool              // Non scrivere content.json
}

// CompileResult risultato della compilazione
type CompileResult struct {
	Success      bool                `json:"success"`
	OutputFiles  []string            `json:"output_files"`
	Warnings     []parser.Diagnostic `json:"warnings,omitempty"`
	Resources    int                 `json:"resources"`
	ErrorMessage string              `json:"error,omitempty"`
}

// NewCompiler crea un nuovo compiler
func NewCompiler(p *parser.ManifestParser, outputDir string) (*Compiler, error) {
	if p == nil {
		p = parser.NewManifestParser()
	}
	tmpl, err := Templates()
	if err != nil {
		return nil, err
	}
	if outputDir == "" {
		outputDir = "dist"
	}
	return &Compiler{parser: p, templates: tmpl, outputDir: outputDir}, nil
}

// PageName restituisce il nome del file HTML per una lingua
func PageName(lang locale.Language) string {
	return fmt.Sprintf("index.%s.html", lang)
}

// Compile analizza il manifest e scrive le pagine
func (c *Compiler) Compile(ctx context.Context, manifestPath string, options *CompileOptions) (*CompileResult, error) {
	logger := log.FromContext(ctx).WithPrefix("compiler")
	result := &CompileResult{}

	if options == nil {
		options = &CompileOptions{}
	}
	languages := options.Languages
	if len(languages) == 0 {
		languages = []locale.Language{locale.CN, locale.EN}
	}
	outputDir := options.OutputDir
	if outputDir == "" {
		outputDir = c.outputDir
	}

	content, err := c.parser.ParseFile(ctx, manifestPath)
	if err != nil {
		result.ErrorMessage = err.Error()
		return result, fmt.Errorf("compilazione fallita: %w", err)
	}
	result.Warnings = content.Diagnostics
	result.Resources = len(content.Resources)

	if options.StrictMode && len(content.Diagnostics) > 0 {
		result.ErrorMessage = fmt.Sprintf("%d righe scartate in modalità strict", len(content.Diagnostics))
		return result, fmt.Errorf("compilazione fallita: %s", result.ErrorMessage)
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		result.ErrorMessage = err.Error()
		return result, fmt.Errorf("impossibile creare la cartella di output: %w", err)
	}

	pres := presenter.ForContent(content)
	for _, lang := range languages {
		var buf bytes.Buffer
		err := RenderGallery(&buf, c.templates, PageData{
			View:      pres.Present(content, lang),
			Other:     lang.Toggle(),
			OtherHref: PageName(lang.Toggle()),
			MediaBase: options.MediaBase,
		})
		if err != nil {
			result.ErrorMessage = err.Error()
			return result, fmt.Errorf("errore rendering %s: %w", lang, err)
		}

		out := filepath.Join(outputDir, PageName(lang))
		if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
			result.ErrorMessage = err.Error()
			return result, fmt.Errorf("errore scrittura %s: %w", out, err)
		}
		result.OutputFiles = append(result.OutputFiles, out)
		logger.Debug("pagina generata", "lang", lang, "file", out)
	}

	if !options.SkipJSON {
		data, err := json.MarshalIndent(content, "", "  ")
		if err != nil {
			result.ErrorMessage = err.Error()
			return result, fmt.Errorf("errore serializzazione contenuto: %w", err)
		}
		out := filepath.Join(outputDir, ContentFile)
		if err := os.WriteFile(out, data, 0o644); err != nil {
			result.ErrorMessage = err.Error()
			return result, fmt.Errorf("errore scrittura %s: %w", out, err)
		}
		result.OutputFiles = append(result.OutputFiles, out)
	}

	result.Success = true
	logger.Info("galleria compilata", "files", len(result.OutputFiles), "resources", result.Resources, "warnings", len(result.Warnings))
	return result, nil
}
