// Package slot provides the durability medium for the database image: a
// single named slot in a string-valued key-value store.
//
// A Slot backend only knows how to get and set whole string values. The
// Adapter binds one backend to one key and speaks in database images,
// encoding them with the codec package on the way in.
package slot

import (
	"context"
	"fmt"

	"github.com/roach88/cptrack/internal/codec"
)

// DefaultKey names the slot holding the progress database image.
const DefaultKey = "antigravity_cp_db"

// Slot is a host key-value store with whole-value reads and writes.
//
// Get reports ok=false for a key that was never written. Set always replaces
// the full value; there are no partial or append writes.
type Slot interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
}

// Adapter reads and writes the encoded database image in one named slot.
type Adapter struct {
	slot Slot
	key  string
}

// NewAdapter binds a backend to a key. An empty key falls back to DefaultKey.
func NewAdapter(s Slot, key string) *Adapter {
	if key == "" {
		key = DefaultKey
	}
	return &Adapter{slot: s, key: key}
}

// Key returns the slot key.
func (a *Adapter) Key() string {
	return a.key
}

// Load returns the previously saved encoded image.
// ok is false on first run, when nothing has been saved yet.
func (a *Adapter) Load(ctx context.Context) (encoded string, ok bool, err error) {
	encoded, ok, err = a.slot.Get(ctx, a.key)
	if err != nil {
		return "", false, fmt.Errorf("load slot %q: %w", a.key, err)
	}
	return encoded, ok, nil
}

// Save encodes the image and overwrites the slot. It returns only after the
// backend has accepted the write.
func (a *Adapter) Save(ctx context.Context, image []byte) error {
	if err := a.slot.Set(ctx, a.key, codec.Encode(image)); err != nil {
		return fmt.Errorf("save slot %q: %w", a.key, err)
	}
	return nil
}
