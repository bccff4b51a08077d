package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"deals_bot/pkg/httpx/reply"
)

func (s Server) RegisterRoutes(r chi.Router) {
	r.Route("/", func(r chi.Router) {
		r.Route("/v1", func(r chi.Router) {
			// unauthorized zone
			r.Route("/deals", func(r chi.Router) {
				r.Get("/active", handler(s.getV1DealsActive))
				r.Get("/summary", handler(s.getV1DealsSummary))
			})
			r.Route("/settings", func(r chi.Router) {
				r.Get("/discount", handler(s.getV1SettingsDiscount))
				r.Put("/discount", handler(s.putV1SettingsDiscount))
			})
		})
	})
}

func handler(f func(http.ResponseWriter, *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := f(w, r); err != nil {
			reply.Error(r.Context(), w, err)
		}
	}
}
