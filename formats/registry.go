package formats

import (
	"sort"
	"strings"
	"sync"
)

// registry mantiene i dialetti registrati
var (
	registry     = make(map[string]func() Dialect)
	registryLock sync.RWMutex
)

// RegisterFormat registra un nuovo dialetto
func RegisterFormat(name string, factory func() Dialect) {
	registryLock.Lock()
	defer registryLock.Unlock()
	registry[strings.ToLower(name)] = factory
}

// GetRegisteredFormat restituisce il dialetto registrato con quel nome, nil se assente
func GetRegisteredFormat(name string) Dialect {
	registryLock.RLock()
	defer registryLock.RUnlock()

	factory, exists := registry[strings.ToLower(strings.TrimSpace(name))]
	if !exists {
		return nil
	}
	return factory()
}

// GetAvailableFormats restituisce i nomi registrati in ordine alfabetico
func GetAvailableFormats() []string {
	registryLock.RLock()
	defer registryLock.RUnlock()

	formats := make([]string, 0, len(registry))
	for name := range registry {
		formats = append(formats, name)
	}
	sort.Strings(formats)
	return formats
}

// IsFormatRegistered verifica se un dialetto è registrato
func IsFormatRegistered(name string) bool {
	registryLock.RLock()
	defer registryLock.RUnlock()

	_, exists := registry[strings.ToLower(strings.TrimSpace(name))]
	return exists
}
