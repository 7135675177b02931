package handlers

import (
	"distributed-lru-cache/internal/realtime"
	"distributed-lru-cache/internal/store"
)

// API bundles the dependencies the HTTP handlers need: the store being
// served, the event hub, and the bcrypt hash of the shared API key
// accepted at the token endpoint.
type API struct {
	Store      store.Store
	Hub        *realtime.Hub
	APIKeyHash []byte
}

func (a *API) broadcast(eventType, key string) {
	if a.Hub != nil {
		a.Hub.Broadcast(realtime.Event{Type: eventType, Key: key})
	}
}
