package domain

import (
	"encoding/json"
	"fmt"
)

// Text is a catalog field that may arrive as a JSON string, number or null.
// It always encodes back as a string; null and missing values become "".
type Text string

func (t *Text) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*t = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("text field must be a string or number: %w", err)
	}
	*t = Text(n.String())
	return nil
}

func (t Text) String() string {
	return string(t)
}

// Product is a catalog record as served by GET /products.
type Product struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Price    Text   `json:"price"`
	ImgSrc   string `json:"imgSrc"`
	Rating   Text   `json:"rating"`

	// Extra carries form fields the catalog schema does not name.
	Extra map[string]string `json:"-"`
}

var productFields = map[string]struct{}{
	"id": {}, "name": {}, "category": {}, "price": {}, "imgSrc": {}, "rating": {},
}

type productAlias Product

func (p Product) MarshalJSON() ([]byte, error) {
	if len(p.Extra) == 0 {
		return json.Marshal(productAlias(p))
	}

	out := make(map[string]any, len(productFields)+len(p.Extra))
	for k, v := range p.Extra {
		if _, known := productFields[k]; known {
			continue
		}
		out[k] = v
	}
	out["id"] = p.ID
	out["name"] = p.Name
	out["category"] = p.Category
	out["price"] = p.Price
	out["imgSrc"] = p.ImgSrc
	out["rating"] = p.Rating
	return json.Marshal(out)
}

func (p *Product) UnmarshalJSON(b []byte) error {
	var alias productAlias
	if err := json.Unmarshal(b, &alias); err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	for k, v := range raw {
		if _, known := productFields[k]; known {
			continue
		}
		var s string
		if json.Unmarshal(v, &s) != nil {
			continue // only string extras survive, the form never sends anything else
		}
		if alias.Extra == nil {
			alias.Extra = make(map[string]string)
		}
		alias.Extra[k] = s
	}

	*p = Product(alias)
	return nil
}
