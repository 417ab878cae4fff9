package httpapi

import (
	"net/http"

	"github.com/brewhouse/ordering/internal/domain/catalog"
)

// listMenu returns the full menu, including currently unavailable items so
// clients can render them greyed out.
func (h *Handler) listMenu(w http.ResponseWriter, r *http.Request) {
	items, err := h.menu.List(r.Context())
	if err != nil {
		internalError(w, r, "list menu", err)
		return
	}
	if items == nil {
		// Never null on the wire.
		items = []catalog.Item{}
	}
	writeJSON(w, http.StatusOK, items)
}
