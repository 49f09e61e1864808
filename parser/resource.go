package parser

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// DefaultResourceDir è la cartella dove stanno i file media del manifest
const DefaultResourceDir = "资源"

// Section rappresenta un'intestazione "#nome" del manifest
type Section string

const (
	SectionResources    Section = "resources"
	SectionTitles       Section = "titles"
	SectionDescriptions Section = "descriptions"
	SectionUIText       Section = "ui_text"
	SectionUnknown      Section = "unknown"
)

// ParseSection normalizza il testo dopo '#' e lo mappa su una sezione nota
func ParseSection(raw string) Section {
	switch s := Section(strings.ToLower(strings.TrimSpace(raw))); s {
	case SectionResources, SectionTitles, SectionDescriptions, SectionUIText:
		return s
	default:
		return SectionUnknown
	}
}

// MediaType è il tipo di media dedotto dall'estensione
type MediaType string

const (
	MediaVideo   MediaType = "video"
	MediaGIF     MediaType = "gif"
	MediaImage   MediaType = "image"
	MediaUnknown MediaType = "unknown"
)

var extensionTypes = map[string]MediaType{
	".mp4":  MediaVideo,
	".webm": MediaVideo,
	".ogg":  MediaVideo,
	".mov":  MediaVideo,
	".gif":  MediaGIF,
	".png":  MediaImage,
	".jpg":  MediaImage,
	".jpeg": MediaImage,
	".webp": MediaImage,
}

// Resource rappresenta una voce della galleria
type Resource struct {
	Order       int       `json:"order"`
	Description string    `json:"description"` // chiave, non testo visualizzato
	Filename    string    `json:"filename"`
	Filepath    string    `json:"filepath"`
	Type        MediaType `json:"type"`
	Extension   string    `json:"extension"`
}

// LocalizedText contiene la coppia cinese/inglese di una voce
type LocalizedText struct {
	CN string `json:"cn"`
	EN string `json:"en"`
}

// TitleMap chiave -> titolo (indipendente dalla lingua)
type TitleMap map[string]string

// DescriptionMap chiave -> descrizione bilingue
type DescriptionMap map[string]LocalizedText

// UITextMap chiave -> testo dell'interfaccia bilingue
type UITextMap map[string]LocalizedText

// ForLanguage restituisce la mappa piatta per una sola lingua ("cn" o "en")
func (m UITextMap) ForLanguage(lang string) map[string]string {
	flat := make(map[string]string, len(m))
	for key, text := range m {
		if lang == "en" {
			flat[key] = text.EN
		} else {
			flat[key] = text.CN
		}
	}
	return flat
}

// Diagnostic descrive una riga risorsa scartata
type Diagnostic struct {
	Line   int    `json:"line"`
	Text   string `json:"text"`
	Reason string `json:"reason"`
}

// WebsiteContent è l'aggregato prodotto da un parse completo.
// Non viene mai modificato dopo la costruzione: un nuovo parse lo sostituisce.
type WebsiteContent struct {
	Resources    []Resource     `json:"resources"`
	Titles       TitleMap       `json:"titles"`
	Descriptions DescriptionMap `json:"descriptions"`
	UIText       UITextMap      `json:"ui_text"`
	Diagnostics  []Diagnostic   `json:"diagnostics,omitempty"`
}

// NewWebsiteContent crea un aggregato vuoto
func NewWebsiteContent() *WebsiteContent {
	return &WebsiteContent{
		Resources:    []Resource{},
		Titles:       make(TitleMap),
		Descriptions: make(DescriptionMap),
		UIText:       make(UITextMap),
	}
}

// IsEmpty indica se non ci sono risorse da mostrare
func (wc *WebsiteContent) IsEmpty() bool {
	return wc == nil || len(wc.Resources) == 0
}

var (
	ErrTooFewFields = errors.New("riga risorsa con meno di 3 campi")
	ErrInvalidOrder = errors.New("ordine non numerico")
)

// ParseResourceLine parsa "<ordine>.<chiave>.<file.con.punti>".
// Il nome file viene ricomposto dai campi 2..n perché può contenere punti.
func ParseResourceLine(line, resourceDir string) (*Resource, error) {
	parts := strings.Split(line, ".")
	if len(parts) < 3 {
		return nil, fmt.Errorf("%w: %q", ErrTooFewFields, line)
	}

	// intero completo: un prefisso numerico come "3abc" è rifiutato
	order, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidOrder, parts[0])
	}

	filename := strings.Join(parts[2:], ".")
	mediaType, ext := ClassifyExtension(filename)

	if resourceDir == "" {
		resourceDir = DefaultResourceDir
	}

	return &Resource{
		Order:       order,
		Description: parts[1],
		Filename:    filename,
		Filepath:    strings.TrimRight(resourceDir, "/") + "/" + filename,
		Type:        mediaType,
		Extension:   ext,
	}, nil
}

// ClassifyExtension deduce il tipo dall'ultima estensione (case-insensitive)
func ClassifyExtension(filename string) (MediaType, string) {
	idx := strings.LastIndex(filename, ".")
	if idx == -1 {
		return MediaUnknown, ""
	}
	ext := strings.ToLower(filename[idx:])
	if t, ok := extensionTypes[ext]; ok {
		return t, ext
	}
	return MediaUnknown, ext
}
