// Package locale gestisce le due lingue della galleria e i testi dell'interfaccia.
package locale

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/language"

	"media-gallery/parser"
)

// Language è la lingua attiva ("cn" o "en")
type Language string

const (
	CN Language = "cn"
	EN Language = "en"

	// Default è la lingua usata quando nessuna è stata scelta
	Default = CN

	// PreferenceKey è la chiave fissa con cui viene salvata la lingua
	PreferenceKey = "websiteLanguage"
)

var ErrUnknownLanguage = errors.New("lingua non supportata")

// Parse accetta "cn"/"en" e qualche alias comune
func Parse(s string) (Language, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cn", "zh", "zh-cn", "zh-hans", "chinese":
		return CN, nil
	case "en", "en-us", "en-gb", "english":
		return EN, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownLanguage, s)
	}
}

// Toggle restituisce l'altra lingua
func (l Language) Toggle() Language {
	if l == EN {
		return CN
	}
	return EN
}

// Tag restituisce il tag BCP 47 usato dal catalogo
func (l Language) Tag() language.Tag {
	if l == EN {
		return language.English
	}
	return language.SimplifiedChinese
}

// Badge è l'etichetta breve del selettore ("CN"/"EN")
func (l Language) Badge() string {
	return strings.ToUpper(string(l))
}

// Pick sceglie il campo della coppia corrispondente alla lingua
func (l Language) Pick(text parser.LocalizedText) string {
	if l == EN {
		return text.EN
	}
	return text.CN
}

func (l Language) String() string { return string(l) }
