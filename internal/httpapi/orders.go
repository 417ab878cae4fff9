package httpapi

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-faster/errors"

	"github.com/brewhouse/ordering/internal/domain/order"
)

// maxOrderBody bounds the accepted request size; carts are small.
const maxOrderBody = 1 << 20

// orderPayload mirrors the checkout request wire format.
type orderPayload struct {
	RequesterID    string       `json:"requester_id"`
	Items          []order.Line `json:"items"`
	Total          int64        `json:"total"`
	Notes          string       `json:"notes"`
	Fulfillment    string       `json:"fulfillment"`
	ContactName    string       `json:"contact_name"`
	ContactPhone   string       `json:"contact_phone"`
	ContactAddress string       `json:"contact_address"`
}

// orderResponse is the acknowledgment returned for an accepted order.
type orderResponse struct {
	ID        string    `json:"id"`
	Status    string    `json:"status"`
	Total     int64     `json:"total"`
	CreatedAt time.Time `json:"created_at"`
}

// placeOrder accepts a checkout submission and persists it.
func (h *Handler) placeOrder(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxOrderBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "unreadable request body")
		return
	}

	var payload orderPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, "malformed JSON body")
		return
	}

	o, err := h.orders.Place(r.Context(), order.PlaceRequest{
		RequesterID:    payload.RequesterID,
		Lines:          payload.Items,
		Total:          payload.Total,
		Notes:          payload.Notes,
		Fulfillment:    payload.Fulfillment,
		ContactName:    payload.ContactName,
		ContactPhone:   payload.ContactPhone,
		ContactAddress: payload.ContactAddress,
	})
	if err != nil {
		h.mapPlaceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, orderResponse{
		ID:        o.ID,
		Status:    o.Status,
		Total:     o.Total,
		CreatedAt: o.CreatedAt,
	})
}

// mapPlaceError converts order service errors to HTTP responses.
func (h *Handler) mapPlaceError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, order.ErrEmptyItems) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var mfErr *order.MissingFieldError
	if errors.As(err, &mfErr) {
		writeFieldError(w, http.StatusBadRequest, mfErr.Field, mfErr.Error())
		return
	}

	var iqErr *order.InvalidQuantityError
	if errors.As(err, &iqErr) {
		writeError(w, http.StatusUnprocessableEntity, iqErr.Error())
		return
	}

	var uiErr *order.UnknownItemError
	if errors.As(err, &uiErr) {
		writeError(w, http.StatusUnprocessableEntity, uiErr.Error())
		return
	}

	var tmErr *order.TotalMismatchError
	if errors.As(err, &tmErr) {
		writeError(w, http.StatusUnprocessableEntity, tmErr.Error())
		return
	}

	internalError(w, r, "place order", err)
}

// listOrders returns the most recent orders for a requester.
func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	requester := r.URL.Query().Get("requester")
	if requester == "" {
		writeError(w, http.StatusBadRequest, "requester query parameter is required")
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	orders, err := h.orders.History(r.Context(), requester, limit)
	if err != nil {
		internalError(w, r, "list orders", err)
		return
	}

	out := make([]orderResponse, len(orders))
	for i, o := range orders {
		out[i] = orderResponse{ID: o.ID, Status: o.Status, Total: o.Total, CreatedAt: o.CreatedAt}
	}
	writeJSON(w, http.StatusOK, out)
}
