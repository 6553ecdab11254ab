package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/Katyxel/add-basket/internal/basket"
	"github.com/Katyxel/add-basket/internal/domain"
	"github.com/Katyxel/add-basket/internal/notify"
	"github.com/Katyxel/add-basket/internal/service"
	"github.com/Katyxel/add-basket/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type GridMock struct {
	m        sync.Mutex
	products []domain.Product
	loads    int
	err      error
}

func (g *GridMock) Cards() []domain.Product {
	g.m.Lock()
	defer g.m.Unlock()
	if g.loads == 0 {
		return []domain.Product{}
	}
	return g.products
}

func (g *GridMock) Load(context.Context) error {
	g.m.Lock()
	defer g.m.Unlock()
	if g.err != nil {
		return g.err
	}
	g.loads++
	return nil
}

func (g *GridMock) Lookup(id string) (domain.Product, bool) {
	g.m.Lock()
	defer g.m.Unlock()
	if g.loads == 0 {
		return domain.Product{}, false
	}
	for _, p := range g.products {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Product{}, false
}

type FormMock struct {
	fields map[string]string
	err    error
}

func (f *FormMock) Submit(_ context.Context, fields map[string]string) (domain.Product, error) {
	f.fields = fields
	if f.err != nil {
		return domain.Product{}, f.err
	}
	return domain.Product{ID: "new-id", Name: fields["name"], Price: domain.Text(fields["price"])}, nil
}

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, notify.Notification) error { return nil }

type testServer struct {
	handler http.Handler
	grid    *GridMock
	form    *FormMock
	slot    *store.MemorySlot
}

func newTestServer(t *testing.T, policy service.DuplicatePolicy) *testServer {
	t.Helper()
	grid := &GridMock{products: []domain.Product{
		{ID: "p1", Name: "Lamp", Category: "Light", Price: "10.00", ImgSrc: "/img/lamp.png"},
		{ID: "p2", Name: "Chair", Category: "Furniture", Price: "5.5", ImgSrc: "/img/chair.png"},
	}}
	form := &FormMock{}
	slot := store.NewMemorySlot()
	sessions := service.NewSessions(slot, nopNotifier{}, nil, policy, 0)

	h := NewStorefrontRouter(
		NewProductHandler(grid, form, 5*time.Second),
		NewCartHandler(sessions, grid, 5*time.Second, nil),
		5*time.Second,
	)
	return &testServer{handler: h, grid: grid, form: form, slot: slot}
}

func (s *testServer) do(t *testing.T, method, path, sessionID string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if sessionID != "" {
		req.Header.Set(SessionHeader, sessionID)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decodeState(t *testing.T, rec *httptest.ResponseRecorder) basket.State {
	t.Helper()
	var st basket.State
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&st))
	return st
}

func TestGetCart_Empty(t *testing.T) {
	s := newTestServer(t, service.DuplicateSeparate)

	rec := s.do(t, http.MethodGet, "/api/v1/cart", "s1", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	st := decodeState(t, rec)
	assert.Empty(t, st.Items)
	assert.Equal(t, 0, st.Count)
	assert.Equal(t, "0.00", st.Total)
	assert.Equal(t, "s1", rec.Header().Get(SessionHeader))
}

func TestGetCart_IssuesSessionCookie(t *testing.T) {
	s := newTestServer(t, service.DuplicateSeparate)

	rec := s.do(t, http.MethodGet, "/api/v1/cart", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, SessionCookie, cookies[0].Name)
	assert.NotEmpty(t, cookies[0].Value)
}

func TestSessionCookieIsHonored(t *testing.T) {
	s := newTestServer(t, service.DuplicateSeparate)
	s.do(t, http.MethodPost, "/api/v1/cart/items", "cookie-user", AddItemRequestDTO{ProductID: "p1"})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "cookie-user"})
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	assert.Len(t, decodeState(t, rec).Items, 1)
}

func TestAddItem_Success(t *testing.T) {
	s := newTestServer(t, service.DuplicateSeparate)

	rec := s.do(t, http.MethodPost, "/api/v1/cart/items", "s1", AddItemRequestDTO{ProductID: "p1"})

	require.Equal(t, http.StatusCreated, rec.Code)
	st := decodeState(t, rec)
	require.Len(t, st.Items, 1)
	assert.Equal(t, "Lamp", st.Items[0].Name)
	assert.Equal(t, 1, st.Count)
	assert.Equal(t, "10.00", st.Total)

	raw, err := s.slot.Get(context.Background(), store.SessionKey("s1"))
	require.NoError(t, err)
	assert.Contains(t, raw, `"id":"p1"`)
}

func TestAddItem_Validation(t *testing.T) {
	s := newTestServer(t, service.DuplicateSeparate)

	rec := s.do(t, http.MethodPost, "/api/v1/cart/items", "s1", AddItemRequestDTO{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", bytes.NewBufferString("{"))
	req.Header.Set(SessionHeader, "s1")
	bad := httptest.NewRecorder()
	s.handler.ServeHTTP(bad, req)
	assert.Equal(t, http.StatusBadRequest, bad.Code)

	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(bad.Body).Decode(&resp))
	assert.Equal(t, "invalid_request", resp.Code)
}

func TestAddItem_UnknownProduct(t *testing.T) {
	s := newTestServer(t, service.DuplicateSeparate)

	rec := s.do(t, http.MethodPost, "/api/v1/cart/items", "s1", AddItemRequestDTO{ProductID: "nope"})

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestIncrementDecrementDelete(t *testing.T) {
	s := newTestServer(t, service.DuplicateSeparate)
	st := decodeState(t, s.do(t, http.MethodPost, "/api/v1/cart/items", "s1", AddItemRequestDTO{ProductID: "p1"}))
	rowID := st.Items[0].RowID

	rec := s.do(t, http.MethodPost, "/api/v1/cart/items/"+rowID+"/increment", "s1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	st = decodeState(t, rec)
	assert.Equal(t, 2, st.Items[0].Quantity)
	assert.Equal(t, "20.00", st.Total)

	rec = s.do(t, http.MethodPost, "/api/v1/cart/items/"+rowID+"/decrement", "s1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decodeState(t, rec).Items[0].Quantity)

	rec = s.do(t, http.MethodPost, "/api/v1/cart/items/"+rowID+"/decrement", "s1", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "control_disabled", resp.Code)

	rec = s.do(t, http.MethodDelete, "/api/v1/cart/items/"+rowID, "s1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	st = decodeState(t, rec)
	assert.Empty(t, st.Items)
	assert.Equal(t, 0, st.Count)
}

func TestRowActions_UnknownRow(t *testing.T) {
	s := newTestServer(t, service.DuplicateSeparate)

	for _, path := range []string{"/api/v1/cart/items/missing/increment", "/api/v1/cart/items/missing/decrement"} {
		rec := s.do(t, http.MethodPost, path, "s1", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
	}
	rec := s.do(t, http.MethodDelete, "/api/v1/cart/items/missing", "s1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAddItem_MergePolicyConflictsAtMax(t *testing.T) {
	s := newTestServer(t, service.DuplicateMerge)

	for i := 0; i < 10; i++ {
		rec := s.do(t, http.MethodPost, "/api/v1/cart/items", "s1", AddItemRequestDTO{ProductID: "p2"})
		require.Equal(t, http.StatusCreated, rec.Code)
	}
	rec := s.do(t, http.MethodPost, "/api/v1/cart/items", "s1", AddItemRequestDTO{ProductID: "p2"})

	assert.Equal(t, http.StatusConflict, rec.Code)
	st := decodeState(t, s.do(t, http.MethodGet, "/api/v1/cart", "s1", nil))
	assert.Equal(t, 10, st.Items[0].Quantity)
	assert.Equal(t, "55.00", st.Total)
}

type failingSessions struct{}

func (failingSessions) Get(context.Context, string) (*service.CartService, error) {
	return nil, errors.New("redis unavailable")
}

func TestGetCart_SessionLoadFailure(t *testing.T) {
	h := NewCartHandler(failingSessions{}, &GridMock{}, time.Second, nil)
	handler := SessionMiddleware(http.HandlerFunc(h.GetCart))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(SessionHeader, "s1")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestGetCart_MissingSession(t *testing.T) {
	h := NewCartHandler(failingSessions{}, &GridMock{}, time.Second, nil)

	rec := httptest.NewRecorder()
	h.GetCart(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, service.DuplicateSeparate)

	rec := s.do(t, http.MethodGet, "/health", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}
