package catalog

import (
	"github.com/go-chi/chi/v5"
)

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/catalog/search", h.Search)
	r.Get("/catalog/price", h.Price)
}
