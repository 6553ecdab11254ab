package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/Katyxel/add-basket/internal/basket"
	"github.com/Katyxel/add-basket/internal/domain"
	"github.com/Katyxel/add-basket/internal/notify"
	"github.com/Katyxel/add-basket/internal/store"
	"github.com/Katyxel/add-basket/internal/summary"
	"github.com/Katyxel/add-basket/pkg/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("github.com/Katyxel/add-basket/internal/service")

// DuplicatePolicy decides what adding an already-carted product does.
type DuplicatePolicy string

const (
	// DuplicateSeparate renders another independent row.
	DuplicateSeparate DuplicatePolicy = "separate"
	// DuplicateMerge increments the first row holding the product.
	DuplicateMerge DuplicatePolicy = "merge"
)

func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch DuplicatePolicy(s) {
	case "", DuplicateSeparate:
		return DuplicateSeparate, nil
	case DuplicateMerge:
		return DuplicateMerge, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDuplicatePolicy, s)
}

// Renderer is the cart list as displayed to the user.
type Renderer interface {
	AppendRow(row *basket.LineItem)
	RemoveRow(rowID string) bool
	Rows() []*basket.LineItem
	SetCount(n int)
	SetTotal(total string)
	State() basket.State
}

type Notifier interface {
	Notify(ctx context.Context, n notify.Notification) error
}

var (
	itemAdded = notify.Notification{
		Variant:  notify.VariantSuccess,
		Title:    "Adding item:",
		Subtitle: "Item was added to the cart",
	}
	itemRemoved = notify.Notification{
		Variant:  notify.VariantSuccess,
		Title:    "Removing item:",
		Subtitle: "Item was removed from the cart",
	}
)

// CartService keeps the rendered rows, the summary and the persisted list in
// step. Rows own the live quantities and every change is written through to
// the store before the summary is recomputed from it.
type CartService struct {
	mu       sync.Mutex
	store    *store.CartStore
	view     Renderer
	notifier Notifier
	logger   *zap.Logger
	policy   DuplicatePolicy
}

func NewCartService(s *store.CartStore, view Renderer, notifier Notifier, l *zap.Logger, policy DuplicatePolicy) *CartService {
	if l == nil {
		l = zap.NewNop()
	}
	if policy == "" {
		policy = DuplicateSeparate
	}
	return &CartService{
		store:    s,
		view:     view,
		notifier: notifier,
		logger:   l,
		policy:   policy,
	}
}

// Load rehydrates the rows from the store, restoring each persisted quantity.
// Quantities outside [1,10] are clamped and the normalized list written back.
func (s *CartService) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.store.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("load cart: %w", err)
	}

	for _, row := range s.view.Rows() {
		s.view.RemoveRow(row.RowID())
	}

	normalized := false
	for _, item := range items {
		row := basket.NewLineItem(item)
		row.Restore(item.Quantity)
		if row.Quantity() != item.Quantity {
			normalized = true
		}
		s.view.AppendRow(row)
	}

	if normalized {
		logger.WithTrace(ctx, s.logger).Info("normalized persisted quantities",
			zap.String("key", s.store.Key()))
		if err := s.persist(ctx); err != nil {
			return err
		}
	}

	_, err = s.refresh(ctx)
	return err
}

// AddToCart adds a product carried straight from the catalog grid.
func (s *CartService) AddToCart(ctx context.Context, p domain.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := s.checkpoint()
	if s.policy == DuplicateMerge {
		if row := s.findByProduct(p.ID); row != nil {
			if err := row.Increment(); err != nil {
				return err
			}
			return s.commit(ctx, cp, &itemAdded)
		}
	}

	s.view.AppendRow(basket.NewLineItem(domain.NewLineItem(p)))
	return s.commit(ctx, cp, &itemAdded)
}

func (s *CartService) Increment(ctx context.Context, rowID string) error {
	return s.adjust(ctx, rowID, (*basket.LineItem).Increment)
}

func (s *CartService) Decrement(ctx context.Context, rowID string) error {
	return s.adjust(ctx, rowID, (*basket.LineItem).Decrement)
}

func (s *CartService) adjust(ctx context.Context, rowID string, step func(*basket.LineItem) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := s.findRow(rowID)
	if row == nil {
		return ErrRowNotFound
	}
	cp := s.checkpoint()
	if err := step(row); err != nil {
		return err
	}
	return s.commit(ctx, cp, nil)
}

// Delete removes exactly one row, even when other rows share its product id.
func (s *CartService) Delete(ctx context.Context, rowID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := s.checkpoint()
	if !s.view.RemoveRow(rowID) {
		return ErrRowNotFound
	}
	return s.commit(ctx, cp, &itemRemoved)
}

func (s *CartService) RefreshSummary(ctx context.Context) (domain.CartSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refresh(ctx)
}

func (s *CartService) State() basket.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view.State()
}

// checkpoint records the rendered rows and their quantities so a change
// that cannot be persisted can be taken back.
type checkpoint struct {
	rows       []*basket.LineItem
	quantities []int
}

func (s *CartService) checkpoint() checkpoint {
	rows := s.view.Rows()
	cp := checkpoint{rows: rows, quantities: make([]int, len(rows))}
	for i, row := range rows {
		cp.quantities[i] = row.Quantity()
	}
	return cp
}

func (s *CartService) rollback(cp checkpoint) {
	for _, row := range s.view.Rows() {
		s.view.RemoveRow(row.RowID())
	}
	for i, row := range cp.rows {
		row.Restore(cp.quantities[i])
		s.view.AppendRow(row)
	}
}

// commit persists the rows, then refreshes the summary and notifies. When the
// rows cannot be persisted the view goes back to cp, so nothing unsaved stays
// on screen to be written by a later change.
func (s *CartService) commit(ctx context.Context, cp checkpoint, n *notify.Notification) error {
	ctx, span := tracer.Start(ctx, "cart.commit")
	defer span.End()

	if err := s.persist(ctx); err != nil {
		s.rollback(cp)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	if _, err := s.refresh(ctx); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	if n != nil && s.notifier != nil {
		if err := s.notifier.Notify(ctx, *n); err != nil {
			logger.WithTrace(ctx, s.logger).Warn("notify failed", zap.Error(err))
		}
	}
	return nil
}

func (s *CartService) persist(ctx context.Context) error {
	rows := s.view.Rows()
	items := make([]domain.CartLineItem, len(rows))
	for i, row := range rows {
		items[i] = row.Item()
	}
	if err := s.store.ReplaceAll(ctx, items); err != nil {
		logger.WithTrace(ctx, s.logger).Error("persist cart failed",
			zap.String("key", s.store.Key()),
			zap.Error(err))
		return err
	}
	return nil
}

func (s *CartService) refresh(ctx context.Context) (domain.CartSnapshot, error) {
	items, err := s.store.GetAll(ctx)
	if err != nil {
		return domain.CartSnapshot{}, fmt.Errorf("refresh summary: %w", err)
	}
	snapshot := summary.Summarize(items)
	s.view.SetCount(snapshot.ItemCount)
	s.view.SetTotal(snapshot.Total)
	return snapshot, nil
}

func (s *CartService) findRow(rowID string) *basket.LineItem {
	for _, row := range s.view.Rows() {
		if row.RowID() == rowID {
			return row
		}
	}
	return nil
}

func (s *CartService) findByProduct(productID string) *basket.LineItem {
	for _, row := range s.view.Rows() {
		if row.ProductID() == productID {
			return row
		}
	}
	return nil
}
