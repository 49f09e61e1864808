package test

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"media-gallery/compiler"
)

func testContext() context.Context {
	return log.WithContext(context.Background(), log.New(io.Discard))
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestRunWritesReports(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.txt"), "#resources\n1.x.x.mp4\n2.y.y.png\n")
	writeFile(t, filepath.Join(dir, "b.txt"), "#resources\nbroken\n3.z.z.gif\n")
	writeFile(t, filepath.Join(dir, "notes.md"), "ignored")

	var out bytes.Buffer
	summary, err := NewTestRunner(dir, nil, &out).Run(testContext(), dir, "")
	require.NoError(t, err)

	assert.Equal(t, "extended", summary.Dialect)
	assert.Equal(t, 2, summary.TotalFiles)
	assert.Equal(t, 2, summary.ParseSuccess)
	assert.Equal(t, 3, summary.Resources)
	assert.Equal(t, 1, summary.Diagnostics)
	assert.Contains(t, out.String(), "a.txt")

	raw, err := os.ReadFile(filepath.Join(dir, "b.parsed.json"))
	require.NoError(t, err)
	var report ParsedOutput
	require.NoError(t, json.Unmarshal(raw, &report))
	assert.True(t, report.Success)
	require.Len(t, report.Diagnostics, 1)
	assert.Equal(t, 2, report.Diagnostics[0].Line)
	require.Len(t, report.Cards["en"], 1)
	assert.Equal(t, "#03", report.Cards["en"][0].Order)
}

func TestRunStrict(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b.txt"), "#resources\nbroken\n")

	tr := NewTestRunner(dir, nil, nil)
	tr.Strict = true
	summary, err := tr.Run(testContext(), dir, "")
	require.NoError(t, err)
	assert.Equal(t, 1, summary.ParseFailed)
}

func TestRunTestsPerDialect(t *testing.T) {
	base := t.TempDir()
	writeFile(t, filepath.Join(base, "classic", "site.txt"), "#resources\n1.a.a.mp4\n#ui_text\nloading=载|L\n")
	require.NoError(t, os.MkdirAll(filepath.Join(base, "unrelated"), 0o755))

	comp, err := compiler.NewCompiler(nil, "")
	require.NoError(t, err)
	tr := NewTestRunner(base, comp, nil)

	dialects, err := tr.GetAvailableFormats()
	require.NoError(t, err)
	assert.Equal(t, []string{"classic"}, dialects)

	summary, err := tr.RunTests(testContext(), "classic")
	require.NoError(t, err)
	assert.Equal(t, "classic", summary.Dialect)
	assert.Equal(t, 1, summary.CompileSuccess)
	assert.FileExists(t, filepath.Join(base, "classic", "site_compiled", "index.en.html"))
	assert.FileExists(t, filepath.Join(base, "classic", "site.compiled.json"))

	raw, err := os.ReadFile(filepath.Join(base, "classic", "site.parsed.json"))
	require.NoError(t, err)
	var report ParsedOutput
	require.NoError(t, json.Unmarshal(raw, &report))
	assert.Empty(t, report.Content.UIText)
}

func TestRunErrors(t *testing.T) {
	tr := NewTestRunner(t.TempDir(), nil, nil)

	_, err := tr.Run(testContext(), filepath.Join(t.TempDir(), "missing"), "")
	assert.Error(t, err)

	_, err = tr.Run(testContext(), t.TempDir(), "")
	assert.Error(t, err)

	_, err = tr.Run(testContext(), t.TempDir(), "yaml")
	assert.Error(t, err)
}
