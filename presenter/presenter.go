package presenter

import (
	"sort"

	"media-gallery/locale"
	"media-gallery/parser"
)

// chromeKeys sono i testi dell'interfaccia risolti per ogni vista
var chromeKeys = []string{
	"loading",
	"no_resources",
	"toggle_language",
	"language",
	"close",
	"play_video",
	"preview",
	"website_title",
	"copyright",
	"choose_language",
}

// View è l'output completo per una lingua
type View struct {
	Language     locale.Language   `json:"language"`
	Badge        string            `json:"badge"`
	Cards        []Card            `json:"cards"`
	Empty        bool              `json:"empty"`
	EmptyMessage string            `json:"empty_message,omitempty"`
	Chrome       map[string]string `json:"chrome"`
	Titles       parser.TitleMap   `json:"titles"`
}

// Presenter localizza e ordina le risorse
type Presenter struct {
	catalog *locale.Catalog
}

// New crea un presenter con il catalogo dato (nil = solo testi predefiniti)
func New(catalog *locale.Catalog) *Presenter {
	if catalog == nil {
		catalog = locale.MustCatalog(nil)
	}
	return &Presenter{catalog: catalog}
}

// ForContent crea un presenter il cui catalogo include i testi ui_text del manifest
func ForContent(content *parser.WebsiteContent) *Presenter {
	if content == nil {
		return New(nil)
	}
	return New(locale.MustCatalog(content.UIText))
}

// Catalog restituisce il catalogo usato
func (p *Presenter) Catalog() *locale.Catalog {
	return p.catalog
}

// SortResources restituisce una copia ordinata per Order (stabile)
func SortResources(resources []parser.Resource) []parser.Resource {
	sorted := make([]parser.Resource, len(resources))
	copy(sorted, resources)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Order < sorted[j].Order
	})
	return sorted
}

// DisplayDescription risolve la descrizione nella lingua attiva, o la chiave grezza
func DisplayDescription(content *parser.WebsiteContent, key string, lang locale.Language) string {
	if content != nil {
		if text, ok := content.Descriptions[key]; ok {
			return lang.Pick(text)
		}
	}
	return key
}

// Present produce le schede ordinate per la lingua attiva.
// Senza risorse la vista è nello stato "vuoto" con il messaggio localizzato.
func (p *Presenter) Present(content *parser.WebsiteContent, lang locale.Language) *View {
	view := &View{
		Language: lang,
		Badge:    lang.Badge(),
		Cards:    []Card{},
		Chrome:   p.catalog.Texts(lang, chromeKeys...),
		Titles:   parser.TitleMap{},
	}
	if content != nil && content.Titles != nil {
		view.Titles = content.Titles
	}

	if content.IsEmpty() {
		view.Empty = true
		view.EmptyMessage = p.catalog.Text(lang, "no_resources")
		return view
	}

	for _, resource := range SortResources(content.Resources) {
		view.Cards = append(view.Cards, p.card(content, resource, lang))
	}
	return view
}

func (p *Presenter) card(content *parser.WebsiteContent, resource parser.Resource, lang locale.Language) Card {
	description := DisplayDescription(content, resource.Description, lang)
	return Card{
		Order:              resource.Order,
		OrderLabel:         orderLabel(resource.Order),
		DisplayDescription: description,
		Filename:           resource.Filename,
		Filepath:           resource.Filepath,
		Type:               resource.Type,
		TypeLabel:          p.catalog.Text(lang, typeLabelKey(resource.Type)),
		Icon:               iconFor(resource.Type),
		Action:             actionFor(resource.Type, resource.Filepath, description),
	}
}

// FindCard restituisce la prima scheda con quell'ordine
func (v *View) FindCard(order int) (Card, bool) {
	for _, c := range v.Cards {
		if c.Order == order {
			return c, true
		}
	}
	return Card{}, false
}
