package httphandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/niksmo/candle-shop/internal/core/port"
	"github.com/niksmo/candle-shop/internal/core/service"
)

// GET    v1/cart                   (200 OK)
// DELETE v1/cart                   (200 OK)
// POST   v1/cart/items JSON        (200 OK, 400 Bad request, 404 Not found)
// GET    v1/cart/items/{id}        (200 OK)
// PUT    v1/cart/items/{id} JSON   (200 OK, 400 Bad request)
// DELETE v1/cart/items/{id}        (200 OK)
// POST   v1/cart/checkout          (200 OK, 409 Conflict)
// DELETE v1/session                (204 No content)

type CartHandler struct {
	cart port.CartService
}

func RegisterCart(mux *http.ServeMux, cart port.CartService) {
	h := CartHandler{cart}
	mux.HandleFunc("GET /v1/cart", h.GetCart)
	mux.HandleFunc("DELETE /v1/cart", h.ClearCart)
	mux.HandleFunc("POST /v1/cart/items", h.PostItem)
	mux.HandleFunc("GET /v1/cart/items/{id}", h.GetItem)
	mux.HandleFunc("PUT /v1/cart/items/{id}", h.PutItem)
	mux.HandleFunc("DELETE /v1/cart/items/{id}", h.DeleteItem)
	mux.HandleFunc("POST /v1/cart/checkout", h.PostCheckout)
	mux.HandleFunc("DELETE /v1/session", h.DeleteSession)
}

func (h CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	const op = "CartHandler.GetCart"
	s := h.cart.Cart(r.Context(), sessionID(r))
	writeJSON(w, op, http.StatusOK, fromSummary(s))
}

func (h CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	const op = "CartHandler.ClearCart"
	s := h.cart.ClearCart(r.Context(), sessionID(r))
	writeJSON(w, op, http.StatusOK, fromSummary(s))
}

func (h CartHandler) PostItem(w http.ResponseWriter, r *http.Request) {
	const op = "CartHandler.PostItem"
	log := slog.With("op", op)

	var req AddItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON data", http.StatusBadRequest)
		log.Warn("failed to parse JSON", "err", err)
		return
	}
	if req.ProductID == "" {
		http.Error(w, "product_id is required", http.StatusBadRequest)
		return
	}

	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	s, err := h.cart.AddToCart(r.Context(), sessionID(r), req.ProductID, quantity)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			http.Error(w, "product not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to add product", http.StatusServiceUnavailable)
		log.Error("failed to add product", "err", err)
		return
	}

	writeJSON(w, op, http.StatusOK, fromSummary(s))
}

func (h CartHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	const op = "CartHandler.GetItem"
	productID := r.PathValue("id")
	inCart, quantity := h.cart.ItemQuantity(r.Context(), sessionID(r), productID)
	writeJSON(w, op, http.StatusOK, ItemStatus{
		ProductID: productID,
		InCart:    inCart,
		Quantity:  quantity,
	})
}

func (h CartHandler) PutItem(w http.ResponseWriter, r *http.Request) {
	const op = "CartHandler.PutItem"
	log := slog.With("op", op)

	var req UpdateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON data", http.StatusBadRequest)
		log.Warn("failed to parse JSON", "err", err)
		return
	}

	s := h.cart.UpdateQuantity(
		r.Context(), sessionID(r), r.PathValue("id"), req.Quantity,
	)
	writeJSON(w, op, http.StatusOK, fromSummary(s))
}

func (h CartHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	const op = "CartHandler.DeleteItem"
	s := h.cart.RemoveFromCart(r.Context(), sessionID(r), r.PathValue("id"))
	writeJSON(w, op, http.StatusOK, fromSummary(s))
}

func (h CartHandler) PostCheckout(w http.ResponseWriter, r *http.Request) {
	const op = "CartHandler.PostCheckout"
	log := slog.With("op", op)

	o, err := h.cart.Checkout(r.Context(), sessionID(r))
	if err != nil {
		if errors.Is(err, service.ErrEmptyCart) {
			http.Error(w, "cart is empty", http.StatusConflict)
			return
		}
		http.Error(w, "failed to checkout", http.StatusServiceUnavailable)
		log.Error("failed to checkout", "err", err)
		return
	}

	writeJSON(w, op, http.StatusOK, fromOrderRequest(o))
}

func (h CartHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	h.cart.EndSession(sessionID(r))
	w.WriteHeader(http.StatusNoContent)
}

// GET v1/products/{id}/demand (200 OK, 503 Service unavailable)

type DemandHandler struct {
	demand port.DemandReader
}

func RegisterDemand(mux *http.ServeMux, demand port.DemandReader) {
	h := DemandHandler{demand}
	mux.HandleFunc("GET /v1/products/{id}/demand", h.GetDemand)
}

func (h DemandHandler) GetDemand(w http.ResponseWriter, r *http.Request) {
	const op = "DemandHandler.GetDemand"
	log := slog.With("op", op)

	productID := r.PathValue("id")
	n, err := h.demand.ProductDemand(r.Context(), productID)
	if err != nil {
		http.Error(w, "demand is unavailable", http.StatusServiceUnavailable)
		if !errors.Is(err, service.ErrDemandUnavailable) {
			log.Error("failed to read demand", "err", err)
		}
		return
	}

	writeJSON(w, op, http.StatusOK, ProductDemand{ProductID: productID, Demand: n})
}

func RegisterHealth(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func writeJSON(w http.ResponseWriter, op string, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to write response body", "op", op, "err", err)
	}
}
