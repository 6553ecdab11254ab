// Package basket holds the rendered side of the cart: the row widgets, the
// count badge and the total label.
package basket

import (
	"fmt"
	"io"
	"text/tabwriter"
)

// State is what the basket currently displays.
type State struct {
	Items []RowView `json:"items"`
	Count int       `json:"count"`
	Total string    `json:"total"`
}

// Basket is the in-memory cart list. It is not safe for concurrent use;
// the owning cart service serializes access.
type Basket struct {
	rows  []*LineItem
	count int
	total string
}

func New() *Basket {
	return &Basket{total: "0.00"}
}

func (b *Basket) AppendRow(row *LineItem) {
	b.rows = append(b.rows, row)
}

// RemoveRow drops the row with rowID and reports whether it was present.
func (b *Basket) RemoveRow(rowID string) bool {
	for i, row := range b.rows {
		if row.RowID() == rowID {
			b.rows = append(b.rows[:i], b.rows[i+1:]...)
			return true
		}
	}
	return false
}

func (b *Basket) Rows() []*LineItem {
	out := make([]*LineItem, len(b.rows))
	copy(out, b.rows)
	return out
}

func (b *Basket) SetCount(n int) {
	b.count = n
}

func (b *Basket) SetTotal(total string) {
	b.total = total
}

func (b *Basket) State() State {
	items := make([]RowView, len(b.rows))
	for i, row := range b.rows {
		items[i] = row.View()
	}
	return State{
		Items: items,
		Count: b.count,
		Total: b.total,
	}
}

// WriteTable prints a basket state for terminal use.
func WriteTable(w io.Writer, s State) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tNAME\tCATEGORY\tPRICE\tQTY\tSUBTOTAL")
	for i, item := range s.Items {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%s\n",
			i+1, item.Name, item.Category, item.Price, item.Quantity, item.Subtotal)
	}
	fmt.Fprintf(tw, "\t\t\t\titems: %d\ttotal: %s\n", s.Count, s.Total)
	return tw.Flush()
}
