package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	appmw "notes-backend/middleware"
)

// NewRouter wires every endpoint. Notes and /auth/me require a bearer token.
func NewRouter(h *Handler, resolver appmw.Resolver, logger zerolog.Logger, origins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(appmw.RequestLogger(logger))
	r.Use(chimw.Recoverer)
	r.Use(appmw.CORS(origins))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		appmw.WriteJSON(w, http.StatusNotFound, appmw.Detail{Detail: "Not Found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		appmw.WriteJSON(w, http.StatusMethodNotAllowed, appmw.Detail{Detail: "Method Not Allowed"})
	})

	r.Get("/", h.Health)
	r.Post("/auth/register", h.Register)
	r.Post("/auth/login", h.Login)

	r.Group(func(r chi.Router) {
		r.Use(appmw.RequireAuth(resolver))
		r.Get("/auth/me", h.Me)
		r.Delete("/auth/me", h.DeleteMe)

		r.Route("/notes", func(r chi.Router) {
			r.Get("/", h.ListNotes)
			r.Post("/", h.CreateNote)
			r.Get("/{id}", h.GetNote)
			r.Put("/{id}", h.UpdateNote)
			r.Patch("/{id}", h.UpdateNote)
			r.Delete("/{id}", h.DeleteNote)
		})
	})

	return r
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	appmw.WriteJSON(w, http.StatusOK, map[string]string{"message": "Healthy"})
}
