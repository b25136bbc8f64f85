package quotes

import (
	"github.com/go-chi/chi/v5"
)

func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/quotes", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Save)
		r.Delete("/{id}", h.Delete)
		r.Post("/{id}/send", h.Send)
		r.Post("/{id}/accept", h.Accept)
		r.Post("/{id}/refuse", h.Refuse)
		r.Get("/{id}/pdf", h.PDF)
	})
}
