// Package presenter trasforma l'aggregato del manifest in schede pronte da mostrare.
package presenter

import (
	"fmt"

	"media-gallery/parser"
)

// ActionKind indica cosa succede quando si attiva una scheda
type ActionKind string

const (
	// ActionVideoModal apre la modale video condivisa
	ActionVideoModal ActionKind = "video_modal"

	// ActionOverlay apre un'anteprima temporanea a schermo intero
	ActionOverlay ActionKind = "overlay"

	// ActionNone scheda senza interazione
	ActionNone ActionKind = "none"
)

// Action è ciò che la scheda passa al collaboratore di riproduzione
type Action struct {
	Kind   ActionKind `json:"kind"`
	Source string     `json:"source,omitempty"`
	Title  string     `json:"title,omitempty"`
}

// Card è il descrittore di una scheda della griglia
type Card struct {
	Order              int              `json:"order"`
	OrderLabel         string           `json:"order_label"`
	DisplayDescription string           `json:"display_description"`
	Filename           string           `json:"filename"`
	Filepath           string           `json:"filepath"`
	Type               parser.MediaType `json:"type"`
	TypeLabel          string           `json:"type_label"`
	Icon               string           `json:"icon"`
	Action             Action           `json:"action"`
}

// orderLabel formatta l'ordine come "#01"
func orderLabel(order int) string {
	return fmt.Sprintf("#%02d", order)
}

// typeLabelKey restituisce la chiave del catalogo per il tipo di media
func typeLabelKey(t parser.MediaType) string {
	switch t {
	case parser.MediaVideo:
		return "video"
	case parser.MediaGIF:
		return "gif"
	case parser.MediaImage:
		return "image"
	case parser.MediaUnknown:
		return string(parser.MediaUnknown)
	default:
		panic(fmt.Sprintf("tipo di media non gestito: %q", t))
	}
}

// iconFor restituisce il nome dell'icona (Font Awesome) per il tipo
func iconFor(t parser.MediaType) string {
	switch t {
	case parser.MediaVideo:
		return "video"
	case parser.MediaGIF:
		return "film"
	case parser.MediaImage, parser.MediaUnknown:
		return "image"
	default:
		panic(fmt.Sprintf("tipo di media non gestito: %q", t))
	}
}

// actionFor decide il comportamento della scheda
func actionFor(t parser.MediaType, source, title string) Action {
	switch t {
	case parser.MediaVideo:
		return Action{Kind: ActionVideoModal, Source: source, Title: title}
	case parser.MediaGIF, parser.MediaImage:
		return Action{Kind: ActionOverlay, Source: source, Title: title}
	case parser.MediaUnknown:
		return Action{Kind: ActionNone}
	default:
		panic(fmt.Sprintf("tipo di media non gestito: %q", t))
	}
}
