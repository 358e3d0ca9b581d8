// Package intake is the client side of claim submission: a local draft that
// shadows the form, photo compression, and the submission client.
package intake

import (
	"log/slog"

	"github.com/JaimeStill/warranty/internal/warranty"
)

// Store is a local key/value store for draft field values.
type Store interface {
	// Get returns the stored value and whether the key exists.
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Remove(key string) error
}

// Draft persists form fields so input survives restarts and failed submissions.
// Store failures are logged and never returned; each key is handled on its own.
type Draft struct {
	store  Store
	keys   []string
	logger *slog.Logger
}

// NewDraft creates a Draft over store for the given keys. A nil keys slice
// selects every claim field.
func NewDraft(store Store, keys []string, logger *slog.Logger) *Draft {
	if keys == nil {
		keys = warranty.Fields
	}
	return &Draft{
		store:  store,
		keys:   keys,
		logger: logger.With("system", "draft"),
	}
}

// Keys returns the persisted field names.
func (d *Draft) Keys() []string {
	return d.keys
}

// Save writes the current value of every persisted field present in fields.
func (d *Draft) Save(fields map[string]string) {
	for _, key := range d.keys {
		value, ok := fields[key]
		if !ok {
			continue
		}
		if err := d.store.Set(key, value); err != nil {
			d.logger.Warn("draft save failed", "key", key, "error", err)
		}
	}
}

// Load fills fields with every stored non-empty value.
func (d *Draft) Load(fields map[string]string) {
	for _, key := range d.keys {
		value, ok, err := d.store.Get(key)
		if err != nil {
			d.logger.Warn("draft load failed", "key", key, "error", err)
			continue
		}
		if ok && value != "" {
			fields[key] = value
		}
	}
}

// Clear removes every persisted key.
func (d *Draft) Clear() {
	for _, key := range d.keys {
		if err := d.store.Remove(key); err != nil {
			d.logger.Warn("draft clear failed", "key", key, "error", err)
		}
	}
}
