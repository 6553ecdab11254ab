package basket

import (
	"errors"

	"github.com/Katyxel/add-basket/internal/domain"
	"github.com/Katyxel/add-basket/internal/summary"
	"github.com/google/uuid"
)

// ErrControlDisabled is returned when a quantity control is pressed while it
// is disabled. The row is left unchanged.
var ErrControlDisabled = errors.New("quantity control is disabled")

// LineItem is one rendered basket row and the owner of its live quantity.
type LineItem struct {
	rowID    string
	item     domain.CartLineItem
	quantity int
}

// NewLineItem renders a row in its initial state: quantity 1, decrement
// disabled, increment enabled.
func NewLineItem(item domain.CartLineItem) *LineItem {
	return &LineItem{
		rowID:    uuid.NewString(),
		item:     item,
		quantity: domain.MinQuantity,
	}
}

// Restore sets the counter from a persisted quantity, clamped into range.
func (l *LineItem) Restore(quantity int) {
	l.quantity = domain.ClampQuantity(quantity)
}

func (l *LineItem) RowID() string {
	return l.rowID
}

func (l *LineItem) ProductID() string {
	return l.item.ID
}

func (l *LineItem) Quantity() int {
	return l.quantity
}

func (l *LineItem) CanIncrement() bool {
	return l.quantity < domain.MaxQuantity
}

func (l *LineItem) CanDecrement() bool {
	return l.quantity > domain.MinQuantity
}

func (l *LineItem) Increment() error {
	if !l.CanIncrement() {
		return ErrControlDisabled
	}
	l.quantity++
	return nil
}

func (l *LineItem) Decrement() error {
	if !l.CanDecrement() {
		return ErrControlDisabled
	}
	l.quantity--
	return nil
}

// Subtotal is the row's displayed price: unit price times live quantity.
func (l *LineItem) Subtotal() string {
	return summary.Subtotal(l.item.Price, l.quantity)
}

// Item is the persisted form of the row, carrying the live quantity.
func (l *LineItem) Item() domain.CartLineItem {
	item := l.item
	item.Quantity = l.quantity
	return item
}

type RowView struct {
	RowID        string      `json:"row_id"`
	ID           string      `json:"id"`
	ImgSrc       string      `json:"imgSrc"`
	Name         string      `json:"name"`
	Category     string      `json:"category"`
	Price        domain.Text `json:"price"`
	Quantity     int         `json:"quantity"`
	Subtotal     string      `json:"subtotal"`
	CanIncrement bool        `json:"can_increment"`
	CanDecrement bool        `json:"can_decrement"`
}

func (l *LineItem) View() RowView {
	return RowView{
		RowID:        l.rowID,
		ID:           l.item.ID,
		ImgSrc:       l.item.ImgSrc,
		Name:         l.item.Name,
		Category:     l.item.Category,
		Price:        l.item.Price,
		Quantity:     l.quantity,
		Subtotal:     l.Subtotal(),
		CanIncrement: l.CanIncrement(),
		CanDecrement: l.CanDecrement(),
	}
}
