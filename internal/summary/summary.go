// Package summary derives the basket badge and total from persisted line items.
package summary

import (
	"regexp"
	"strings"

	"github.com/Katyxel/add-basket/internal/domain"
	"github.com/shopspring/decimal"
)

// leading decimal literal, the part a lenient float parser would consume
var numericPrefix = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// Magnitudes a float64 can hold. Values past them are not prices, and
// formatting them to two decimals would expand every digit of the exponent.
const (
	maxIntegerDigits = 309
	minDecimalPlace  = -324
)

// ParsePrice reads the longest numeric prefix of s ("12.50 $" -> 12.50).
// Anything without one, or outside float64 range, is zero.
func ParsePrice(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}
	if d, err := decimal.NewFromString(s); err == nil {
		return bounded(d)
	}

	prefix := numericPrefix.FindString(s)
	if prefix == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(prefix)
	if err != nil {
		return decimal.Zero
	}
	return bounded(d)
}

func bounded(d decimal.Decimal) decimal.Decimal {
	if d.IsZero() {
		return decimal.Zero
	}
	// position of the most significant digit relative to the decimal point
	magnitude := int64(d.NumDigits()) + int64(d.Exponent())
	if magnitude > maxIntegerDigits || magnitude < minDecimalPlace {
		return decimal.Zero
	}
	return d
}

// Subtotal is the row figure: unit price times quantity, two decimals.
func Subtotal(price domain.Text, quantity int) string {
	return lineAmount(price, quantity).StringFixed(2)
}

func lineAmount(price domain.Text, quantity int) decimal.Decimal {
	if quantity <= 0 {
		return decimal.Zero
	}
	return ParsePrice(price.String()).Mul(decimal.NewFromInt(int64(quantity)))
}

// Summarize counts lines (not units) and sums price*quantity.
func Summarize(items []domain.CartLineItem) domain.CartSnapshot {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(lineAmount(item.Price, item.Quantity))
	}

	return domain.CartSnapshot{
		Total:     total.StringFixed(2),
		ItemCount: len(items),
	}
}
