package httphandler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/niksmo/candle-shop/internal/adapter/storage"
	"github.com/niksmo/candle-shop/internal/core/cart"
	"github.com/niksmo/candle-shop/internal/core/domain"
	"github.com/niksmo/candle-shop/internal/core/port"
	"github.com/niksmo/candle-shop/internal/core/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type catalog map[string]domain.Product

func (c catalog) ReadProduct(_ context.Context, id string) (domain.Product, error) {
	p, ok := c[id]
	if !ok {
		return domain.Product{}, fmt.Errorf("catalog: %w", domain.ErrProductNotFound)
	}
	return p, nil
}

type staticDemand map[string]int64

func (d staticDemand) ProductDemand(_ context.Context, id string) (int64, error) {
	return d[id], nil
}

var testCatalog = catalog{
	"p-vanilla": {
		ID: "p-vanilla", Name: "Vanilla Jar", Slug: "vanilla-jar",
		Price: 10, StockQuantity: 4,
	},
	"p-pine": {
		ID: "p-pine", Name: "Pine Taper", Slug: "pine-taper",
		Price: 7.5, StockQuantity: 1,
	},
}

type testAPI struct {
	t        *testing.T
	handler  http.Handler
	session  string
	sessions *cart.Sessions
}

func newTestAPI(t *testing.T, demand port.DemandReader) *testAPI {
	t.Helper()
	slot := storage.NewMemorySlot()
	sessions := cart.NewSessions(func(sessionID string) port.CartStore {
		return storage.NewCartStore(slot, "candle-cart:"+sessionID, 0)
	}, cart.DefaultMaxSessions)
	svc := service.New(testCatalog, demand, sessions, "USD")

	mux := http.NewServeMux()
	RegisterHealth(mux)
	RegisterCart(mux, svc)
	RegisterDemand(mux, svc)

	return &testAPI{
		t:        t,
		handler:  Session(AllowJSON(mux)),
		session:  uuid.NewString(),
		sessions: sessions,
	}
}

func (a *testAPI) do(method, target, body string) *httptest.ResponseRecorder {
	a.t.Helper()
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, target, nil)
	} else {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	}
	r.Header.Set(SessionHeader, a.session)

	w := httptest.NewRecorder()
	a.handler.ServeHTTP(w, r)
	return w
}

func decodeCart(t *testing.T, w *httptest.ResponseRecorder) Cart {
	t.Helper()
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var c Cart
	require.NoError(t, json.NewDecoder(w.Body).Decode(&c))
	return c
}

func TestCartHandler(t *testing.T) {
	t.Run("EmptyCart", func(t *testing.T) {
		api := newTestAPI(t, nil)
		c := decodeCart(t, api.do(http.MethodGet, "/v1/cart", ""))
		assert.Empty(t, c.Items)
		assert.Zero(t, c.TotalItems)
	})

	t.Run("AddItem", func(t *testing.T) {
		api := newTestAPI(t, nil)

		c := decodeCart(t, api.do(http.MethodPost, "/v1/cart/items",
			`{"product_id":"p-vanilla","quantity":3}`))
		require.Len(t, c.Items, 1)
		assert.Equal(t, "p-vanilla", c.Items[0].ID)
		assert.Equal(t, "vanilla-jar", c.Items[0].Product.Slug)
		assert.Equal(t, 3, c.TotalItems)
		assert.InDelta(t, 30.0, c.TotalPrice, 1e-9)
	})

	t.Run("AddItemDefaultsToOne", func(t *testing.T) {
		api := newTestAPI(t, nil)
		c := decodeCart(t, api.do(http.MethodPost, "/v1/cart/items", `{"product_id":"p-pine"}`))
		assert.Equal(t, 1, c.TotalItems)
	})

	t.Run("AddItemClampsAtStock", func(t *testing.T) {
		api := newTestAPI(t, nil)
		c := decodeCart(t, api.do(http.MethodPost, "/v1/cart/items",
			`{"product_id":"p-pine","quantity":5}`))
		assert.Equal(t, 1, c.TotalItems)
	})

	t.Run("AddMaxIntQuantity", func(t *testing.T) {
		api := newTestAPI(t, nil)
		api.do(http.MethodPost, "/v1/cart/items", `{"product_id":"p-vanilla","quantity":3}`)

		c := decodeCart(t, api.do(http.MethodPost, "/v1/cart/items",
			`{"product_id":"p-vanilla","quantity":9223372036854775807}`))
		require.Len(t, c.Items, 1)
		assert.Equal(t, 4, c.Items[0].Quantity)
	})

	t.Run("AddUnknownProduct", func(t *testing.T) {
		api := newTestAPI(t, nil)
		w := api.do(http.MethodPost, "/v1/cart/items", `{"product_id":"p-missing"}`)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("AddInvalidBody", func(t *testing.T) {
		api := newTestAPI(t, nil)
		assert.Equal(t, http.StatusBadRequest,
			api.do(http.MethodPost, "/v1/cart/items", `{"product_id":`).Code)
		assert.Equal(t, http.StatusBadRequest,
			api.do(http.MethodPost, "/v1/cart/items", `{"quantity":1}`).Code)
	})

	t.Run("UnsupportedMediaType", func(t *testing.T) {
		api := newTestAPI(t, nil)
		r := httptest.NewRequest(http.MethodPost, "/v1/cart/items",
			strings.NewReader(`{"product_id":"p-pine"}`))
		r.Header.Set("Content-Type", "text/plain")
		w := httptest.NewRecorder()
		api.handler.ServeHTTP(w, r)
		assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
	})

	t.Run("ItemStatus", func(t *testing.T) {
		api := newTestAPI(t, nil)
		api.do(http.MethodPost, "/v1/cart/items", `{"product_id":"p-vanilla","quantity":2}`)

		w := api.do(http.MethodGet, "/v1/cart/items/p-vanilla", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t,
			`{"product_id":"p-vanilla","in_cart":true,"quantity":2}`, w.Body.String())

		w = api.do(http.MethodGet, "/v1/cart/items/p-pine", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t,
			`{"product_id":"p-pine","in_cart":false,"quantity":0}`, w.Body.String())
	})

	t.Run("UpdateItem", func(t *testing.T) {
		api := newTestAPI(t, nil)
		api.do(http.MethodPost, "/v1/cart/items", `{"product_id":"p-vanilla"}`)

		c := decodeCart(t, api.do(http.MethodPut, "/v1/cart/items/p-vanilla", `{"quantity":9}`))
		assert.Equal(t, 4, c.TotalItems)

		c = decodeCart(t, api.do(http.MethodPut, "/v1/cart/items/p-vanilla", `{"quantity":0}`))
		assert.Empty(t, c.Items)
	})

	t.Run("DeleteItem", func(t *testing.T) {
		api := newTestAPI(t, nil)
		api.do(http.MethodPost, "/v1/cart/items", `{"product_id":"p-vanilla"}`)
		api.do(http.MethodPost, "/v1/cart/items", `{"product_id":"p-pine"}`)

		c := decodeCart(t, api.do(http.MethodDelete, "/v1/cart/items/p-vanilla", ""))
		require.Len(t, c.Items, 1)
		assert.Equal(t, "p-pine", c.Items[0].ID)
	})

	t.Run("ClearCart", func(t *testing.T) {
		api := newTestAPI(t, nil)
		api.do(http.MethodPost, "/v1/cart/items", `{"product_id":"p-vanilla"}`)

		c := decodeCart(t, api.do(http.MethodDelete, "/v1/cart", ""))
		assert.Empty(t, c.Items)
		assert.Zero(t, c.TotalPrice)
	})

	t.Run("Checkout", func(t *testing.T) {
		api := newTestAPI(t, nil)
		assert.Equal(t, http.StatusConflict,
			api.do(http.MethodPost, "/v1/cart/checkout", "").Code)

		api.do(http.MethodPost, "/v1/cart/items", `{"product_id":"p-vanilla","quantity":2}`)
		w := api.do(http.MethodPost, "/v1/cart/checkout", "")
		require.Equal(t, http.StatusOK, w.Code)

		var o OrderRequest
		require.NoError(t, json.NewDecoder(w.Body).Decode(&o))
		assert.Equal(t, "USD", o.Currency)
		assert.Equal(t, 2, o.TotalItems)
		require.Len(t, o.Lines, 1)
		assert.InDelta(t, 20.0, o.Lines[0].LineTotal, 1e-9)
	})

	t.Run("SessionSurvivesEnd", func(t *testing.T) {
		api := newTestAPI(t, nil)
		api.do(http.MethodPost, "/v1/cart/items", `{"product_id":"p-vanilla","quantity":2}`)

		assert.Equal(t, http.StatusNoContent, api.do(http.MethodDelete, "/v1/session", "").Code)

		c := decodeCart(t, api.do(http.MethodGet, "/v1/cart", ""))
		assert.Equal(t, 2, c.TotalItems)
	})

	t.Run("SessionsAreIndependent", func(t *testing.T) {
		api := newTestAPI(t, nil)
		api.do(http.MethodPost, "/v1/cart/items", `{"product_id":"p-vanilla"}`)

		other := *api
		other.session = uuid.NewString()
		c := decodeCart(t, other.do(http.MethodGet, "/v1/cart", ""))
		assert.Empty(t, c.Items)
	})
}

func TestAnonymousReadsKeepNoSessions(t *testing.T) {
	api := newTestAPI(t, nil)
	for range 1000 {
		r := httptest.NewRequest(http.MethodGet, "/v1/cart", nil)
		w := httptest.NewRecorder()
		api.handler.ServeHTTP(w, r)
		require.Equal(t, http.StatusOK, w.Code)
	}
	assert.Zero(t, api.sessions.Len())

	api.do(http.MethodPost, "/v1/cart/items", `{"product_id":"p-pine"}`)
	assert.Equal(t, 1, api.sessions.Len())
}

func TestDemandHandler(t *testing.T) {
	t.Run("Available", func(t *testing.T) {
		api := newTestAPI(t, staticDemand{"p-pine": 12})
		w := api.do(http.MethodGet, "/v1/products/p-pine/demand", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"product_id":"p-pine","demand":12}`, w.Body.String())
	})

	t.Run("Unavailable", func(t *testing.T) {
		api := newTestAPI(t, nil)
		w := api.do(http.MethodGet, "/v1/products/p-pine/demand", "")
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}

func TestSessionMiddleware(t *testing.T) {
	var got string
	h := Session(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = sessionID(r)
	}))

	t.Run("KeepsValidID", func(t *testing.T) {
		id := uuid.NewString()
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set(SessionHeader, id)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)

		assert.Equal(t, id, got)
		assert.Equal(t, id, w.Header().Get(SessionHeader))
	})

	t.Run("StartsNewSession", func(t *testing.T) {
		for _, header := range []string{"", "not-a-uuid"} {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if header != "" {
				r.Header.Set(SessionHeader, header)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, r)

			_, err := uuid.Parse(got)
			require.NoError(t, err)
			assert.Equal(t, got, w.Header().Get(SessionHeader))
		}
	})
}

func TestHealth(t *testing.T) {
	mux := http.NewServeMux()
	RegisterHealth(mux)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
