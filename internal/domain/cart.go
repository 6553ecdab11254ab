package domain

const (
	MinQuantity = 1
	MaxQuantity = 10
)

// CartLineItem is one persisted basket entry. ID is the originating product id.
type CartLineItem struct {
	ID       string `json:"id"`
	ImgSrc   string `json:"imgSrc"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Price    Text   `json:"price"`
	Quantity int    `json:"quantity"`
}

// NewLineItem builds a line for a freshly added product.
func NewLineItem(p Product) CartLineItem {
	return CartLineItem{
		ID:       p.ID,
		ImgSrc:   p.ImgSrc,
		Name:     p.Name,
		Category: p.Category,
		Price:    p.Price,
		Quantity: MinQuantity,
	}
}

// CartSnapshot is the summary shown in the basket: Total is formatted with
// two fraction digits, ItemCount counts lines rather than units.
type CartSnapshot struct {
	Total     string `json:"total"`
	ItemCount int    `json:"itemCount"`
}

// ClampQuantity forces q into [MinQuantity, MaxQuantity].
func ClampQuantity(q int) int {
	if q < MinQuantity {
		return MinQuantity
	}
	if q > MaxQuantity {
		return MaxQuantity
	}
	return q
}
