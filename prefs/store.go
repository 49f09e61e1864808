// Package prefs conserva la lingua scelta dal visitatore.
package prefs

import (
	"context"

	"media-gallery/locale"
)

// Store è la memoria persistente della preferenza di lingua.
// La chiave è sempre locale.PreferenceKey.
type Store interface {
	// Language restituisce la lingua salvata; false se non c'è ancora
	Language(ctx context.Context) (locale.Language, bool, error)
	SetLanguage(ctx context.Context, lang locale.Language) error
	Close() error
}
