package locale

import (
	"embed"
	"fmt"

	"github.com/goccy/go-yaml"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"

	"media-gallery/parser"
)

//go:embed messages/*.yaml
var messagesFS embed.FS

// Catalog risolve i testi dell'interfaccia per entrambe le lingue.
// I testi predefiniti vengono sovrascritti dalla sezione ui_text del manifest.
// Gli override restano testo letterale: non passano dai template di go-i18n.
type Catalog struct {
	bundle     *i18n.Bundle
	localizers map[Language]*i18n.Localizer
	overrides  map[Language]map[string]string
}

// NewCatalog crea il catalogo con i testi predefiniti più gli override del manifest
func NewCatalog(overrides parser.UITextMap) (*Catalog, error) {
	bundle := i18n.NewBundle(language.SimplifiedChinese)
	bundle.RegisterUnmarshalFunc("yaml", func(data []byte, v interface{}) error {
		return yaml.Unmarshal(data, v)
	})

	files, err := messagesFS.ReadDir("messages")
	if err != nil {
		return nil, fmt.Errorf("impossibile leggere i messaggi: %w", err)
	}
	for _, file := range files {
		if _, err := bundle.LoadMessageFileFS(messagesFS, "messages/"+file.Name()); err != nil {
			return nil, fmt.Errorf("impossibile caricare %s: %w", file.Name(), err)
		}
	}

	return &Catalog{
		bundle: bundle,
		localizers: map[Language]*i18n.Localizer{
			CN: i18n.NewLocalizer(bundle, CN.Tag().String()),
			EN: i18n.NewLocalizer(bundle, EN.Tag().String()),
		},
		overrides: map[Language]map[string]string{
			CN: overrides.ForLanguage(CN.String()),
			EN: overrides.ForLanguage(EN.String()),
		},
	}, nil
}

// MustCatalog è come NewCatalog ma ricade sui soli testi predefiniti in caso di errore
func MustCatalog(overrides parser.UITextMap) *Catalog {
	c, err := NewCatalog(overrides)
	if err == nil {
		return c
	}
	c, err = NewCatalog(nil)
	if err != nil {
		panic("messaggi predefiniti non validi: " + err.Error())
	}
	return c
}

// Text restituisce il testo per la chiave, oppure la chiave stessa se manca
func (c *Catalog) Text(lang Language, key string) string {
	if _, ok := c.localizers[lang]; !ok {
		lang = Default
	}
	if text, ok := c.overrides[lang][key]; ok {
		return text
	}
	msg, err := c.localizers[lang].Localize(&i18n.LocalizeConfig{MessageID: key})
	if err != nil && msg == "" {
		return key
	}
	return msg
}

// Texts risolve un insieme di chiavi in una sola volta
func (c *Catalog) Texts(lang Language, keys ...string) map[string]string {
	out := make(map[string]string, len(keys))
	for _, key := range keys {
		out[key] = c.Text(lang, key)
	}
	return out
}
