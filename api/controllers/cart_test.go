package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/monsoonshop/monsoon-backend/internal/catalog"
	"github.com/monsoonshop/monsoon-backend/pkg/config"
	pkgerrors "github.com/monsoonshop/monsoon-backend/pkg/errors"
	"github.com/monsoonshop/monsoon-backend/pkg/logger"
)

const testCartCookie = "monsoon_cart"

func newCartTestHandler(t *testing.T) (http.Handler, *memoryCartStore, *catalog.ProductDTO) {
	t.Helper()

	product := &catalog.ProductDTO{
		ID:    uuid.New(),
		Name:  "Monsoon Parka",
		Price: decimal.RequireFromString("129.00"),
		Images: []catalog.ImageDTO{
			{ID: uuid.New(), URL: "https://cdn.example.com/parka.jpg"},
		},
	}

	store := newMemoryCartStore()
	svc := &fakeCartCatalog{products: map[uuid.UUID]*catalog.ProductDTO{product.ID: product}}
	var out bytes.Buffer
	logg := logger.New(logger.Options{ServiceName: "test", Output: &out})
	handlers := NewCartHandlers(store, svc, config.CartConfig{
		SessionCookie: testCartCookie,
		TTL:           time.Hour,
	}, logg)

	r := chi.NewRouter()
	r.Route("/api/v1/cart", func(r chi.Router) {
		r.Get("/", handlers.Fetch())
		r.Post("/", handlers.Add())
		r.Delete("/", handlers.Clear())
		r.Patch("/{cartId}", handlers.UpdateQuantity())
		r.Delete("/{cartId}", handlers.Remove())
	})
	return r, store, product
}

func TestCartAddMintsSessionCookie(t *testing.T) {
	handler, store, product := newCartTestHandler(t)

	rec := doCartRequest(t, handler, http.MethodPost, "/api/v1/cart",
		addCartItemRequest{ProductID: product.ID, Quantity: 2, SelectedSize: "M"}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	cookie := cartSessionCookie(t, rec)
	assert.NotEmpty(t, cookie.Value)
	assert.Equal(t, "/", cookie.Path)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, 3600, cookie.MaxAge)

	payload := decodeCartResponse(t, rec)
	require.Len(t, payload.Items, 1)
	assert.Equal(t, "Added to cart", payload.Message)
	assert.Equal(t, product.ID, payload.Items[0].ProductID)
	assert.Equal(t, 2, payload.Items[0].Quantity)
	assert.Equal(t, "https://cdn.example.com/parka.jpg", payload.Items[0].Image)

	// The snapshot lands under the minted session's key.
	_, found, err := store.GetMaybe(context.Background(), store.CartKey(cookie.Value))
	require.NoError(t, err)
	assert.True(t, found)
}

func TestCartRoundTrip(t *testing.T) {
	handler, store, product := newCartTestHandler(t)

	rec := doCartRequest(t, handler, http.MethodPost, "/api/v1/cart",
		addCartItemRequest{ProductID: product.ID, SelectedSize: "M"}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	cookie := cartSessionCookie(t, rec)
	cartID := decodeCartResponse(t, rec).Items[0].CartID

	// A later request with the cookie sees the persisted snapshot.
	rec = doCartRequest(t, handler, http.MethodGet, "/api/v1/cart", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	payload := decodeCartResponse(t, rec)
	require.Len(t, payload.Items, 1)
	assert.Equal(t, cartID, payload.Items[0].CartID)
	assert.Equal(t, 1, payload.Items[0].Quantity)

	rec = doCartRequest(t, handler, http.MethodPatch, "/api/v1/cart/"+cartID,
		updateCartItemRequest{Quantity: 3}, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	payload = decodeCartResponse(t, rec)
	require.Len(t, payload.Items, 1)
	assert.Equal(t, 3, payload.Items[0].Quantity)
	assert.Equal(t, "Cart quantity updated", payload.Message)

	rec = doCartRequest(t, handler, http.MethodDelete, "/api/v1/cart/"+cartID, nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeCartResponse(t, rec).Items)

	// Emptying the cart drops the snapshot key instead of storing [].
	_, found, err := store.GetMaybe(context.Background(), store.CartKey(cookie.Value))
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCartAddMergesRepeatVariant(t *testing.T) {
	handler, _, product := newCartTestHandler(t)

	body := addCartItemRequest{ProductID: product.ID, SelectedSize: "M", SelectedColor: "Black"}
	rec := doCartRequest(t, handler, http.MethodPost, "/api/v1/cart", body, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	cookie := cartSessionCookie(t, rec)

	rec = doCartRequest(t, handler, http.MethodPost, "/api/v1/cart", body, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	payload := decodeCartResponse(t, rec)
	require.Len(t, payload.Items, 1)
	assert.Equal(t, 2, payload.Items[0].Quantity)
	assert.Equal(t, "Cart quantity updated", payload.Message)
}

func TestCartAddUnknownProduct(t *testing.T) {
	handler, store, _ := newCartTestHandler(t)

	rec := doCartRequest(t, handler, http.MethodPost, "/api/v1/cart",
		addCartItemRequest{ProductID: uuid.New()}, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, 0, store.len())
}

func TestCartExistingCookieNotReminted(t *testing.T) {
	handler, _, product := newCartTestHandler(t)

	rec := doCartRequest(t, handler, http.MethodPost, "/api/v1/cart",
		addCartItemRequest{ProductID: product.ID}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	cookie := cartSessionCookie(t, rec)

	rec = doCartRequest(t, handler, http.MethodGet, "/api/v1/cart", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	for _, c := range rec.Result().Cookies() {
		assert.NotEqual(t, testCartCookie, c.Name, "session cookie must not be reissued")
	}
}

func doCartRequest(t *testing.T, handler http.Handler, method, path string, body any, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func cartSessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == testCartCookie {
			return c
		}
	}
	t.Fatalf("session cookie not set")
	return nil
}

func decodeCartResponse(t *testing.T, rec *httptest.ResponseRecorder) cartResponse {
	t.Helper()
	var envelope struct {
		Data cartResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope.Data
}

// fakeCartCatalog serves product lookups from a fixed map. Only GetProduct is
// exercised by the cart endpoints.
type fakeCartCatalog struct {
	products map[uuid.UUID]*catalog.ProductDTO
}

func (f *fakeCartCatalog) GetProduct(_ context.Context, id uuid.UUID, _ bool) (*catalog.ProductDTO, error) {
	product, ok := f.products[id]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return product, nil
}

func (f *fakeCartCatalog) ListCategories(context.Context) ([]catalog.CategoryDTO, error) {
	return nil, nil
}

func (f *fakeCartCatalog) CreateCategory(context.Context, string) (*catalog.CategoryDTO, error) {
	return nil, pkgerrors.New(pkgerrors.CodeInternal, "not supported")
}

func (f *fakeCartCatalog) DeleteCategory(context.Context, uuid.UUID) error {
	return pkgerrors.New(pkgerrors.CodeInternal, "not supported")
}

func (f *fakeCartCatalog) ListProducts(context.Context, catalog.ListFilter) ([]catalog.ProductDTO, error) {
	return nil, nil
}

func (f *fakeCartCatalog) SearchProducts(context.Context, string) ([]catalog.ProductDTO, error) {
	return nil, nil
}

func (f *fakeCartCatalog) CreateProduct(context.Context, catalog.CreateProductInput) (*catalog.ProductDTO, error) {
	return nil, pkgerrors.New(pkgerrors.CodeInternal, "not supported")
}

func (f *fakeCartCatalog) UpdateProduct(context.Context, uuid.UUID, catalog.UpdateProductInput) (*catalog.ProductDTO, error) {
	return nil, pkgerrors.New(pkgerrors.CodeInternal, "not supported")
}

func (f *fakeCartCatalog) DeleteProduct(context.Context, uuid.UUID) error {
	return pkgerrors.New(pkgerrors.CodeInternal, "not supported")
}

// memoryCartStore is an in-process stand-in for the Redis-backed snapshot
// store.
type memoryCartStore struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemoryCartStore() *memoryCartStore {
	return &memoryCartStore{data: make(map[string]string)}
}

func (s *memoryCartStore) GetMaybe(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.data[key]
	return value, ok, nil
}

func (s *memoryCartStore) Set(_ context.Context, key string, value any, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch v := value.(type) {
	case []byte:
		s.data[key] = string(v)
	case string:
		s.data[key] = v
	default:
		s.data[key] = fmt.Sprintf("%v", v)
	}
	return nil
}

func (s *memoryCartStore) Del(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		delete(s.data, key)
	}
	return nil
}

func (s *memoryCartStore) CartKey(sessionID string) string {
	return fmt.Sprintf("monsoon:cart:%s", sessionID)
}

func (s *memoryCartStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data)
}
