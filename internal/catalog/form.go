package catalog

import (
	"context"
	"strings"

	"github.com/Katyxel/add-basket/internal/domain"
	"github.com/Katyxel/add-basket/internal/notify"
	"github.com/Katyxel/add-basket/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Creator interface {
	Create(ctx context.Context, p domain.Product) error
}

type Notifier interface {
	Notify(ctx context.Context, n notify.Notification) error
}

var productAdded = notify.Notification{
	Variant:  notify.VariantGreen,
	Title:    "Adding product:",
	Subtitle: "Product was added to the page",
}

// Form submits new products to the catalog and refreshes the grid.
type Form struct {
	client   Creator
	grid     *Grid
	notifier Notifier
	logger   *zap.Logger
	newID    func() string
}

func NewForm(client Creator, grid *Grid, notifier Notifier, l *zap.Logger) *Form {
	if l == nil {
		l = zap.NewNop()
	}
	return &Form{
		client:   client,
		grid:     grid,
		notifier: notifier,
		logger:   l,
		newID:    uuid.NewString,
	}
}

// ProductFromFields maps named form fields onto a product. Fields the
// catalog does not define are kept in Extra.
func ProductFromFields(id string, fields map[string]string) domain.Product {
	p := domain.Product{ID: id}
	for name, value := range fields {
		switch name {
		case "id":
			if strings.TrimSpace(value) != "" {
				p.ID = value
			}
		case "name":
			p.Name = value
		case "category":
			p.Category = value
		case "price":
			p.Price = domain.Text(value)
		case "imgSrc":
			p.ImgSrc = value
		case "rating":
			p.Rating = domain.Text(value)
		default:
			if p.Extra == nil {
				p.Extra = make(map[string]string)
			}
			p.Extra[name] = value
		}
	}
	return p
}

// Submit posts the product. Success toasts and reloads the grid; failure is
// only logged and handed back, the form keeps its values.
func (f *Form) Submit(ctx context.Context, fields map[string]string) (domain.Product, error) {
	p := ProductFromFields(f.newID(), fields)
	l := logger.WithTrace(ctx, f.logger).With(zap.String("product_id", p.ID))

	if err := f.client.Create(ctx, p); err != nil {
		l.Error("product submission failed", zap.Error(err))
		return domain.Product{}, err
	}

	if f.notifier != nil {
		if err := f.notifier.Notify(ctx, productAdded); err != nil {
			l.Warn("notify failed", zap.Error(err))
		}
	}
	if f.grid != nil {
		// a failed reload is already logged by the grid
		_ = f.grid.Load(ctx)
	}
	return p, nil
}
