package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestText_UnmarshalVariants(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Text
	}{
		{"string", `"12.50"`, "12.50"},
		{"number", `12.5`, "12.5"},
		{"integer", `4`, "4"},
		{"null", `null`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Text
			require.NoError(t, json.Unmarshal([]byte(tt.in), &got))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestText_RejectsObjects(t *testing.T) {
	var got Text
	err := json.Unmarshal([]byte(`{"a":1}`), &got)
	assert.Error(t, err)
}

func TestProduct_MissingFieldsDefaultToEmpty(t *testing.T) {
	var p Product
	require.NoError(t, json.Unmarshal([]byte(`{"id":"a1","name":"Lamp"}`), &p))

	assert.Equal(t, "a1", p.ID)
	assert.Equal(t, Text(""), p.Price)
	assert.Equal(t, Text(""), p.Rating)
	assert.Empty(t, p.Extra)
}

func TestProduct_ExtraFieldsRoundTrip(t *testing.T) {
	p := Product{
		ID:     "x",
		Name:   "Chair",
		Price:  "99.90",
		Rating: "4.8",
		Extra:  map[string]string{"color": "oak", "name": "ignored"},
	}

	b, err := json.Marshal(p)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(b, &raw))
	assert.Equal(t, "oak", raw["color"])
	assert.Equal(t, "Chair", raw["name"])
	assert.Equal(t, "99.90", raw["price"])

	var back Product
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, map[string]string{"color": "oak"}, back.Extra)
	assert.Equal(t, p.Name, back.Name)
}

func TestClampQuantity(t *testing.T) {
	assert.Equal(t, 1, ClampQuantity(0))
	assert.Equal(t, 1, ClampQuantity(-3))
	assert.Equal(t, 7, ClampQuantity(7))
	assert.Equal(t, 10, ClampQuantity(42))
}
