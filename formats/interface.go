package formats

// Dialect definisce una variante della grammatica del manifest.
// Le varianti differiscono solo nelle sezioni riconosciute.
type Dialect interface {
	// Name restituisce il nome del dialetto
	Name() string

	// Supports indica se la sezione (già normalizzata) è gestita
	Supports(section string) bool
}

// sectionDialect è un dialetto definito dall'elenco delle sezioni gestite
type sectionDialect struct {
	name     string
	sections map[string]bool
}

func newSectionDialect(name string, sections ...string) *sectionDialect {
	d := &sectionDialect{name: name, sections: make(map[string]bool, len(sections))}
	for _, s := range sections {
		d.sections[s] = true
	}
	return d
}

func (d *sectionDialect) Name() string { return d.name }

func (d *sectionDialect) Supports(section string) bool { return d.sections[section] }

const (
	// Classic è la prima versione del manifest, senza testi UI
	Classic = "classic"

	// Extended aggiunge la sezione ui_text
	Extended = "extended"
)

// NewClassic crea il dialetto senza ui_text
func NewClassic() Dialect {
	return newSectionDialect(Classic, "resources", "titles", "descriptions")
}

// NewExtended crea il dialetto completo
func NewExtended() Dialect {
	return newSectionDialect(Extended, "resources", "titles", "descriptions", "ui_text")
}

// Default restituisce il dialetto più completo
func Default() Dialect {
	return NewExtended()
}
