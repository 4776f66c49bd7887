package repository

import (
	"context"
	"fmt"
)

// KeyValueStore is the durable key-value surface a client process persists
// its session into. Implementations must make Put all-or-nothing.
type KeyValueStore interface {
	// Get returns domain.ErrKeyNotFound when the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, entries map[string][]byte) error
	// Delete ignores keys that do not exist.
	Delete(ctx context.Context, keys ...string) error
	Close() error
}

// SessionKeys names the entries a session occupies inside a namespace.
type SessionKeys struct {
	Token string
	User  string
}

// DefaultNamespace matches the storage name used by the web console.
const DefaultNamespace = "auth-storage"

// NewSessionKeys derives the session keys for namespace.
func NewSessionKeys(namespace string) SessionKeys {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return SessionKeys{
		Token: fmt.Sprintf("%s:token", namespace),
		User:  fmt.Sprintf("%s:user", namespace),
	}
}

// All lists every key in the namespace.
func (k SessionKeys) All() []string {
	return []string{k.Token, k.User}
}
