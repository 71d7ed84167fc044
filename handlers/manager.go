package handlers

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"sniper-dashboard/logging"
	"sniper-dashboard/models"
)

// HandlerManager holds the named state handlers. Publish delivers each
// event to every handler in registration order.
type HandlerManager struct {
	handlers map[string]StateHandler
	order    []string
	mu       sync.RWMutex
	log      *logrus.Entry
}

// NewHandlerManager membuat instance HandlerManager baru
func NewHandlerManager() *HandlerManager {
	return &HandlerManager{
		handlers: make(map[string]StateHandler),
		log:      logging.WithComponent("handlers"),
	}
}

// RegisterHandler adds h under name. Registering an existing name replaces
// the handler and keeps its position.
func (hm *HandlerManager) RegisterHandler(name string, handler StateHandler) {
	hm.mu.Lock()
	defer hm.mu.Unlock()

	if _, exists := hm.handlers[name]; !exists {
		hm.order = append(hm.order, name)
	}
	hm.handlers[name] = handler
	hm.log.WithFields(logrus.Fields{"name": name, "handler": handler.Name()}).Info("📦 Registered handler")
}

// UnregisterHandler menghapus handler dengan nama tertentu
func (hm *HandlerManager) UnregisterHandler(name string) {
	hm.mu.Lock()
	defer hm.mu.Unlock()

	if _, exists := hm.handlers[name]; !exists {
		return
	}
	delete(hm.handlers, name)
	for i, n := range hm.order {
		if n == name {
			hm.order = append(hm.order[:i], hm.order[i+1:]...)
			break
		}
	}
}

// GetHandler mendapatkan handler berdasarkan nama
func (hm *HandlerManager) GetHandler(name string) (StateHandler, bool) {
	hm.mu.RLock()
	defer hm.mu.RUnlock()

	handler, exists := hm.handlers[name]
	return handler, exists
}

// HandleEvent delivers ev to a single named handler.
func (hm *HandlerManager) HandleEvent(handlerName string, ev models.StateEvent) error {
	handler, exists := hm.GetHandler(handlerName)
	if !exists {
		return fmt.Errorf("handler '%s' not found", handlerName)
	}
	return handler.Handle(ev)
}

// Publish delivers ev to every registered handler. Handler errors are
// logged and do not stop delivery to the rest.
func (hm *HandlerManager) Publish(ev models.StateEvent) {
	hm.mu.RLock()
	targets := make([]StateHandler, 0, len(hm.order))
	for _, name := range hm.order {
		targets = append(targets, hm.handlers[name])
	}
	hm.mu.RUnlock()

	for _, h := range targets {
		if err := h.Handle(ev); err != nil {
			hm.log.WithError(err).WithFields(logrus.Fields{
				"handler": h.Name(),
				"event":   ev.Type,
			}).Warn("⚠️  State handler failed")
		}
	}
}

// ListHandlers mengembalikan daftar nama handler yang terdaftar
func (hm *HandlerManager) ListHandlers() []string {
	hm.mu.RLock()
	defer hm.mu.RUnlock()

	names := make([]string, len(hm.order))
	copy(names, hm.order)
	return names
}
