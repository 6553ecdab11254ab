package catalog

import (
	"context"
	"sync"

	"github.com/Katyxel/add-basket/internal/domain"
	"github.com/Katyxel/add-basket/pkg/logger"
	"go.uber.org/zap"
)

type Lister interface {
	List(ctx context.Context) ([]domain.Product, error)
}

// Grid is the rendered set of product cards. Cards keep the typed product
// record so that add-to-cart never has to re-read display text.
type Grid struct {
	mu     sync.RWMutex
	client Lister
	cards  []domain.Product
	byID   map[string]domain.Product
	logger *zap.Logger
}

func NewGrid(client Lister, l *zap.Logger) *Grid {
	if l == nil {
		l = zap.NewNop()
	}
	return &Grid{
		client: client,
		cards:  []domain.Product{},
		byID:   make(map[string]domain.Product),
		logger: l,
	}
}

// Load replaces the cards with a fresh catalog. On failure the error is
// logged and returned, and the previous cards stay on screen.
func (g *Grid) Load(ctx context.Context) error {
	products, err := g.client.List(ctx)
	if err != nil {
		logger.WithTrace(ctx, g.logger).Error("catalog load failed", zap.Error(err))
		return err
	}

	byID := make(map[string]domain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	g.mu.Lock()
	g.cards = products
	g.byID = byID
	g.mu.Unlock()

	g.logger.Debug("catalog loaded", zap.Int("products", len(products)))
	return nil
}

func (g *Grid) Cards() []domain.Product {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]domain.Product, len(g.cards))
	copy(out, g.cards)
	return out
}

func (g *Grid) Lookup(id string) (domain.Product, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	p, ok := g.byID[id]
	return p, ok
}
