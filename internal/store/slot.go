package store

import (
	"context"
	"errors"
)

// ErrSlotEmpty is returned by a Slot when nothing is stored under the key.
var ErrSlotEmpty = errors.New("slot is empty")

// Slot is a persistent string-valued key-value cell, the server-side
// counterpart of the browser's localStorage.
type Slot interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}
