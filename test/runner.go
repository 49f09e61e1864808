package test

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"media-gallery/compiler"
	"media-gallery/formats"
	"media-gallery/locale"
	"media-gallery/parser"
	"media-gallery/presenter"
)

// TestRunner controlla in blocco i manifest di una cartella
type TestRunner struct {
	baseDir  string
	compiler *compiler.Compiler
	out      io.Writer

	// Strict conta come fallito un manifest con righe scartate
	Strict bool
}

// ParsedOutput è il report scritto accanto a ogni manifest
type ParsedOutput struct {
	Filename    string                  `json:"filename"`
	Dialect     string                  `json:"dialect"`
	ParsedAt    string                  `json:"parsed_at"`
	Success     bool                    `json:"success"`
	Error       string                  `json:"error,omitempty"`
	Content     *parser.WebsiteContent  `json:"content,omitempty"`
	Cards       map[string][]CardOutput `json:"cards,omitempty"`
	Diagnostics []parser.Diagnostic     `json:"diagnostics,omitempty"`
}

// CardOutput riassunto di una scheda per lingua
type CardOutput struct {
	Order       string `json:"order"`
	Description string `json:"description"`
	Type        string `json:"type"`
	Filepath    string `json:"filepath"`
}

// CompiledOutput rappresenta l'output della compilazione
type CompiledOutput struct {
	Filename    string   `json:"filename"`
	CompiledAt  string   `json:"compiled_at"`
	Success     bool     `json:"success"`
	Error       string   `json:"error,omitempty"`
	OutputFiles []string `json:"output_files,omitempty"`
}

// TestSummary riassunto dei test
type TestSummary struct {
	Dialect        string `json:"dialect"`
	TotalFiles     int    `json:"total_files"`
	ParseSuccess   int    `json:"parse_success"`
	ParseFailed    int    `json:"parse_failed"`
	Resources      int    `json:"resources"`
	Diagnostics    int    `json:"diagnostics"`
	CompileSuccess int    `json:"compile_success"`
	CompileFailed  int    `json:"compile_failed"`
	Duration       string `json:"duration"`
}

// NewTestRunner crea un nuovo test runner. comp può essere nil (solo parsing).
func NewTestRunner(baseDir string, comp *compiler.Compiler, out io.Writer) *TestRunner {
	if out == nil {
		out = io.Discard
	}
	return &TestRunner{
		baseDir:  baseDir,
		compiler: comp,
		out:      out,
	}
}

// GetAvailableFormats restituisce le sottocartelle che corrispondono a un dialetto registrato
func (tr *TestRunner) GetAvailableFormats() ([]string, error) {
	entries, err := os.ReadDir(tr.baseDir)
	if err != nil {
		return nil, fmt.Errorf("impossibile leggere cartella test: %w", err)
	}

	var dialects []string
	for _, entry := range entries {
		if entry.IsDir() && !strings.HasPrefix(entry.Name(), ".") && formats.IsFormatRegistered(entry.Name()) {
			dialects = append(dialects, entry.Name())
		}
	}
	return dialects, nil
}

// RunTests controlla la sottocartella di un dialetto
func (tr *TestRunner) RunTests(ctx context.Context, dialect string) (*TestSummary, error) {
	return tr.Run(ctx, filepath.Join(tr.baseDir, dialect), dialect)
}

// Run controlla tutti i manifest *.txt di dir con il dialetto indicato
func (tr *TestRunner) Run(ctx context.Context, dir, dialect string) (*TestSummary, error) {
	startTime := time.Now()

	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, fmt.Errorf("cartella %s non trovata", dir)
	}

	d := formats.Default()
	if dialect != "" {
		d = formats.GetRegisteredFormat(dialect)
		if d == nil {
			return nil, fmt.Errorf("dialetto '%s' non registrato", dialect)
		}
	}
	mp := parser.NewManifestParser(parser.WithDialect(d))

	files, err := findManifests(dir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("nessun manifest .txt trovato in %s", dir)
	}

	summary := &TestSummary{
		Dialect:    d.Name(),
		TotalFiles: len(files),
	}

	fmt.Fprintf(tr.out, "\n📁 Trovati %d manifest in %s (dialetto %s)\n", len(files), dir, d.Name())
	fmt.Fprintln(tr.out, strings.Repeat("─", 50))

	for _, file := range files {
		fmt.Fprintf(tr.out, "\n📄 %s\n", filepath.Base(file))

		result := tr.parseFile(ctx, mp, file)
		if result.Success {
			summary.ParseSuccess++
			fmt.Fprintf(tr.out, "   ✅ Parsing OK - %d risorse\n", len(result.Content.Resources))
		} else {
			summary.ParseFailed++
			fmt.Fprintf(tr.out, "   ❌ Parsing FAILED: %s\n", result.Error)
		}
		if result.Content != nil {
			summary.Resources += len(result.Content.Resources)
		}
		summary.Diagnostics += len(result.Diagnostics)
		for _, diag := range result.Diagnostics {
			fmt.Fprintf(tr.out, "   ⚠️  riga %d: %s (%s)\n", diag.Line, diag.Text, diag.Reason)
		}

		jsonPath := outputPath(file, ".parsed.json")
		if err := saveJSON(jsonPath, result); err != nil {
			fmt.Fprintf(tr.out, "   ⚠️  Errore salvataggio JSON: %v\n", err)
		} else {
			fmt.Fprintf(tr.out, "   💾 %s\n", filepath.Base(jsonPath))
		}

		if tr.compiler == nil || !result.Success {
			continue
		}

		compiled := tr.compileFile(ctx, file)
		if compiled.Success {
			summary.CompileSuccess++
			fmt.Fprintf(tr.out, "   ✅ Compilazione OK → %d file\n", len(compiled.OutputFiles))
		} else {
			summary.CompileFailed++
			fmt.Fprintf(tr.out, "   ❌ Compilazione FAILED: %s\n", compiled.Error)
		}
		if err := saveJSON(outputPath(file, ".compiled.json"), compiled); err != nil {
			fmt.Fprintf(tr.out, "   ⚠️  Errore salvataggio log: %v\n", err)
		}
	}

	summary.Duration = time.Since(startTime).String()

	fmt.Fprintln(tr.out)
	fmt.Fprintln(tr.out, strings.Repeat("═", 50))
	fmt.Fprintf(tr.out, "📊 RIASSUNTO - %s\n", strings.ToUpper(summary.Dialect))
	fmt.Fprintln(tr.out, strings.Repeat("═", 50))
	fmt.Fprintf(tr.out, "   Manifest:         %d\n", summary.TotalFiles)
	fmt.Fprintf(tr.out, "   Parsing OK:       %d/%d\n", summary.ParseSuccess, summary.TotalFiles)
	fmt.Fprintf(tr.out, "   Risorse:          %d\n", summary.Resources)
	fmt.Fprintf(tr.out, "   Righe scartate:   %d\n", summary.Diagnostics)
	fmt.Fprintf(tr.out, "   Durata:           %s\n", summary.Duration)
	fmt.Fprintln(tr.out, strings.Repeat("═", 50))

	return summary, nil
}

// findManifests trova i file .txt (i report generati sono .json)
func findManifests(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, entry os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !entry.IsDir() && strings.HasSuffix(strings.ToLower(entry.Name()), ".txt") {
			files = append(files, path)
		}
		return nil
	})
	sort.Strings(files)
	return files, err
}

func (tr *TestRunner) parseFile(ctx context.Context, mp *parser.ManifestParser, filePath string) *ParsedOutput {
	result := &ParsedOutput{
		Filename: filepath.Base(filePath),
		ParsedAt: time.Now().Format(time.RFC3339),
	}

	content, err := mp.ParseFile(ctx, filePath)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	result.Content = content
	result.Diagnostics = content.Diagnostics
	result.Success = !tr.Strict || len(content.Diagnostics) == 0
	if !result.Success {
		result.Error = fmt.Sprintf("%d righe scartate", len(content.Diagnostics))
	}

	pres := presenter.ForContent(content)
	result.Cards = make(map[string][]CardOutput, 2)
	for _, lang := range []locale.Language{locale.CN, locale.EN} {
		cards := []CardOutput{}
		for _, card := range pres.Present(content, lang).Cards {
			cards = append(cards, CardOutput{
				Order:       card.OrderLabel,
				Description: card.DisplayDescription,
				Type:        card.TypeLabel,
				Filepath:    card.Filepath,
			})
		}
		result.Cards[lang.String()] = cards
	}
	return result
}

func (tr *TestRunner) compileFile(ctx context.Context, filePath string) *CompiledOutput {
	result := &CompiledOutput{
		Filename:   filepath.Base(filePath),
		CompiledAt: time.Now().Format(time.RFC3339),
	}

	baseName := strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath))
	compiled, err := tr.compiler.Compile(ctx, filePath, &compiler.CompileOptions{
		OutputDir: filepath.Join(filepath.Dir(filePath), baseName+"_compiled"),
	})
	if err != nil {
		result.Error = err.Error()
		return result
	}

	result.Success = compiled.Success
	result.OutputFiles = compiled.OutputFiles
	return result
}

func outputPath(inputPath, suffix string) string {
	baseName := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	return filepath.Join(filepath.Dir(inputPath), baseName+suffix)
}

func saveJSON(path string, data interface{}) error {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, jsonData, 0644)
}
