package compiler

import (
	"embed"
	"fmt"
	"html/template"
	"io"

	"media-gallery/locale"
	"media-gallery/presenter"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	GalleryTemplate  = "gallery.html"
	LanguageTemplate = "language.html"
)

// PageData sono i dati passati ai template HTML
type PageData struct {
	View      *presenter.View
	Other     locale.Language
	OtherHref string
	MediaBase string
	Live      bool // true quando la pagina è servita dall'API (websocket e azioni)
}

// LanguageChoice è un pulsante della schermata di scelta lingua
type LanguageChoice struct {
	Language locale.Language
	Label    string
	Prompt   string
	Href     string
}

// LanguagePageData dati della schermata di scelta lingua
type LanguagePageData struct {
	Title   string
	Choices []LanguageChoice
	Live    bool
}

var funcs = template.FuncMap{
	"media": func(base, path string) string {
		if base == "" {
			return path
		}
		return base + "/" + path
	},
}

// Templates restituisce i template della galleria già analizzati
func Templates() (*template.Template, error) {
	tmpl, err := template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("errore caricamento template: %w", err)
	}
	return tmpl, nil
}

// MustTemplates come Templates ma va in panic
func MustTemplates() *template.Template {
	return template.Must(Templates())
}

// LanguageChoices prepara i pulsanti cn/en con i testi di ciascuna lingua
func LanguageChoices(catalog *locale.Catalog, href func(locale.Language) string) []LanguageChoice {
	choices := make([]LanguageChoice, 0, 2)
	for _, lang := range []locale.Language{locale.CN, locale.EN} {
		choices = append(choices, LanguageChoice{
			Language: lang,
			Label:    catalog.Text(lang, "language"),
			Prompt:   catalog.Text(lang, "choose_language"),
			Href:     href(lang),
		})
	}
	return choices
}

// RenderGallery scrive la pagina della galleria
func RenderGallery(w io.Writer, tmpl *template.Template, data PageData) error {
	return tmpl.ExecuteTemplate(w, GalleryTemplate, data)
}

// RenderLanguageSelect scrive la schermata di scelta lingua
func RenderLanguageSelect(w io.Writer, tmpl *template.Template, data LanguagePageData) error {
	return tmpl.ExecuteTemplate(w, LanguageTemplate, data)
}
