// Package httpapi implements the HTTP surface of the ordering backend.
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/brewhouse/ordering/internal/domain/catalog"
	"github.com/brewhouse/ordering/internal/domain/order"
)

// OrderPlacer is the slice of the order service the handlers need.
type OrderPlacer interface {
	Place(ctx context.Context, req order.PlaceRequest) (*order.Order, error)
	History(ctx context.Context, requesterID string, limit int) ([]order.Order, error)
}

// Handler serves the menu and order endpoints.
type Handler struct {
	menu   catalog.Repository
	orders OrderPlacer
}

// NewHandler constructs a Handler with the required dependencies.
func NewHandler(menu catalog.Repository, orders OrderPlacer) *Handler {
	return &Handler{menu: menu, orders: orders}
}

// Routes registers all API routes on mux.
func (h *Handler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/menu", h.listMenu)
	mux.HandleFunc("POST /api/orders", h.placeOrder)
	mux.HandleFunc("GET /api/orders", h.listOrders)
}

// errorBody is the JSON error envelope shared by all endpoints.
type errorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, errorBody{Code: code, Message: message})
}

func writeFieldError(w http.ResponseWriter, code int, field, message string) {
	writeJSON(w, code, errorBody{Code: code, Message: message, Field: field})
}

// internalError logs err and responds with a generic 500. Internals never
// leak to the client.
func internalError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	zctx.From(r.Context()).Error(msg, zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal error")
}
