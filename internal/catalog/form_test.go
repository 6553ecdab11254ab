package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/Katyxel/add-basket/internal/domain"
	"github.com/Katyxel/add-basket/internal/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	got []notify.Notification
}

func (r *recordingNotifier) Notify(_ context.Context, n notify.Notification) error {
	r.got = append(r.got, n)
	return nil
}

func TestProductFromFields(t *testing.T) {
	p := ProductFromFields("gen-1", map[string]string{
		"name":     "Desk",
		"category": "Furniture",
		"price":    "150.00",
		"imgSrc":   "/img/desk.png",
		"rating":   "5",
		"color":    "white",
	})

	assert.Equal(t, domain.Product{
		ID:       "gen-1",
		Name:     "Desk",
		Category: "Furniture",
		Price:    "150.00",
		ImgSrc:   "/img/desk.png",
		Rating:   "5",
		Extra:    map[string]string{"color": "white"},
	}, p)
}

func TestProductFromFields_ExplicitIDWins(t *testing.T) {
	assert.Equal(t, "mine", ProductFromFields("gen", map[string]string{"id": "mine"}).ID)
	assert.Equal(t, "gen", ProductFromFields("gen", map[string]string{"id": "  "}).ID)
}

func TestForm_SubmitSuccessNotifiesAndReloads(t *testing.T) {
	client := &mockCatalog{}
	grid := NewGrid(client, nil)
	n := &recordingNotifier{}
	f := NewForm(client, grid, n, nil)
	f.newID = func() string { return "fixed-id" }

	p, err := f.Submit(context.Background(), map[string]string{"name": "Desk", "price": "150"})
	require.NoError(t, err)

	assert.Equal(t, "fixed-id", p.ID)
	require.Len(t, client.created, 1)
	assert.Equal(t, "Desk", client.created[0].Name)

	require.Len(t, n.got, 1)
	assert.Equal(t, notify.VariantGreen, n.got[0].Variant)

	found, ok := grid.Lookup("fixed-id")
	require.True(t, ok, "grid should be reloaded after submit")
	assert.Equal(t, "Desk", found.Name)
}

func TestForm_SubmitFailureIsSilent(t *testing.T) {
	client := &mockCatalog{err: errors.New("catalog down")}
	grid := NewGrid(client, nil)
	n := &recordingNotifier{}
	f := NewForm(client, grid, n, nil)

	_, err := f.Submit(context.Background(), map[string]string{"name": "Desk"})

	require.ErrorContains(t, err, "catalog down")
	assert.Empty(t, n.got)
}

func TestForm_GeneratesUniqueIDs(t *testing.T) {
	client := &mockCatalog{}
	f := NewForm(client, nil, nil, nil)

	a, err := f.Submit(context.Background(), map[string]string{"name": "A"})
	require.NoError(t, err)
	b, err := f.Submit(context.Background(), map[string]string{"name": "B"})
	require.NoError(t, err)

	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
}
