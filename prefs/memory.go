package prefs

import (
	"context"
	"sync"

	"media-gallery/locale"
)

// MemoryStore tiene la preferenza solo in memoria
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (m *MemoryStore) Language(ctx context.Context) (locale.Language, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.values[locale.PreferenceKey]
	if !ok {
		return "", false, nil
	}
	lang, err := locale.Parse(v)
	if err != nil {
		return "", false, err
	}
	return lang, true, nil
}

func (m *MemoryStore) SetLanguage(ctx context.Context, lang locale.Language) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[locale.PreferenceKey] = lang.String()
	return nil
}

func (m *MemoryStore) Close() error { return nil }
