package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Katyxel/add-basket/internal/domain"
	"go.uber.org/zap"
)

// DefaultKey is the slot key the single-page storefront always used.
const DefaultKey = "products"

// SessionKey scopes the cart key to one browser session.
func SessionKey(sessionID string) string {
	if sessionID == "" {
		return DefaultKey
	}
	return sessionID + ":" + DefaultKey
}

// CartStore owns the durable list of line items kept in a single slot key.
// Every write replaces the whole list; concurrent writers race, last one wins.
type CartStore struct {
	slot   Slot
	key    string
	logger *zap.Logger
}

func NewCartStore(slot Slot, key string, logger *zap.Logger) *CartStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CartStore{
		slot:   slot,
		key:    key,
		logger: logger,
	}
}

func (s *CartStore) Key() string {
	return s.key
}

// GetAll returns the stored list in insertion order. An empty slot and an
// unparsable value both yield an empty list.
func (s *CartStore) GetAll(ctx context.Context) ([]domain.CartLineItem, error) {
	raw, err := s.slot.Get(ctx, s.key)
	if errors.Is(err, ErrSlotEmpty) {
		return []domain.CartLineItem{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cart: %w", err)
	}

	var items []domain.CartLineItem
	if errUnmarshal := json.Unmarshal([]byte(raw), &items); errUnmarshal != nil {
		s.logger.Warn("discarding malformed cart",
			zap.String("key", s.key),
			zap.Error(errUnmarshal))
		return []domain.CartLineItem{}, nil
	}
	if items == nil {
		items = []domain.CartLineItem{}
	}
	return items, nil
}

func (s *CartStore) ReplaceAll(ctx context.Context, items []domain.CartLineItem) error {
	if items == nil {
		items = []domain.CartLineItem{}
	}

	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("marshal cart failed: %w", err)
	}
	if err := s.slot.Set(ctx, s.key, string(data)); err != nil {
		return fmt.Errorf("failed to write cart: %w", err)
	}
	return nil
}

func (s *CartStore) Append(ctx context.Context, item domain.CartLineItem) error {
	items, err := s.GetAll(ctx)
	if err != nil {
		return err
	}
	return s.ReplaceAll(ctx, append(items, item))
}

// RemoveByID drops every record carrying id and keeps the rest in order.
func (s *CartStore) RemoveByID(ctx context.Context, id string) error {
	items, err := s.GetAll(ctx)
	if err != nil {
		return err
	}

	kept := items[:0]
	for _, item := range items {
		if item.ID != id {
			kept = append(kept, item)
		}
	}
	return s.ReplaceAll(ctx, kept)
}
