// Package identity resolves "who is acting" for audit attribution. The core
// does not authenticate; it only attributes mutations to a resolved actor
// and lets the HTTP layer restrict administrative operations by role.
package identity

import (
	"field-service-compliance/internal/models"
	"field-service-compliance/internal/store"
)

// Provider resolves an opaque actor id to a directory entry.
type Provider interface {
	Resolve(actorID string) (models.User, bool)
}

// Directory resolves actors against the store's user collection.
type Directory struct {
	store *store.Store
}

func NewDirectory(st *store.Store) *Directory {
	return &Directory{store: st}
}

func (d *Directory) Resolve(actorID string) (models.User, bool) {
	return d.store.UserByID(actorID)
}
