// Package modal modella la modale video condivisa e le anteprime temporanee.
//
// Il DOM vero e proprio è del client: qui c'è solo lo stato, che viene
// inviato ai display collegati.
package modal

import (
	"sync"

	"github.com/rs/xid"
)

// KeyHandler riceve i tasti premuti
type KeyHandler func(key string)

// KeyBus è il registro dei listener di tastiera
type KeyBus struct {
	mu        sync.Mutex
	listeners map[string]KeyHandler
	order     []string
}

// NewKeyBus crea un registro vuoto
func NewKeyBus() *KeyBus {
	return &KeyBus{listeners: make(map[string]KeyHandler)}
}

// Add registra un listener e restituisce l'id per rimuoverlo
func (kb *KeyBus) Add(handler KeyHandler) string {
	kb.mu.Lock()
	defer kb.mu.Unlock()

	id := xid.New().String()
	kb.listeners[id] = handler
	kb.order = append(kb.order, id)
	return id
}

// Remove rimuove un listener; rimuovere due volte non è un errore
func (kb *KeyBus) Remove(id string) {
	kb.mu.Lock()
	defer kb.mu.Unlock()

	if _, ok := kb.listeners[id]; !ok {
		return
	}
	delete(kb.listeners, id)
	for i, v := range kb.order {
		if v == id {
			kb.order = append(kb.order[:i], kb.order[i+1:]...)
			break
		}
	}
}

// Dispatch invia il tasto a tutti i listener in ordine di registrazione.
// I listener possono rimuoversi durante la chiamata.
func (kb *KeyBus) Dispatch(key string) {
	kb.mu.Lock()
	handlers := make([]KeyHandler, 0, len(kb.order))
	for _, id := range kb.order {
		handlers = append(handlers, kb.listeners[id])
	}
	kb.mu.Unlock()

	for _, h := range handlers {
		h(key)
	}
}

// Len restituisce il numero di listener registrati
func (kb *KeyBus) Len() int {
	kb.mu.Lock()
	defer kb.mu.Unlock()
	return len(kb.listeners)
}
