package api

import (
	"fmt"
	"net/http"

	"github.com/dannyrandall/moviereviews/internal/apperr"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

// NewRouter returns the routes of h. Callers may mount more routes on the
// returned mux.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()
	r.Use(requestID, h.logRequests, h.recoverPanics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", requestIDHeader},
		ExposedHeaders: []string{requestIDHeader},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.Route("/movies", func(r chi.Router) {
		r.Post("/reviews", h.addReview)
		r.Get("/{movieId}/reviews", h.listReviews)
		r.Get("/{movieId}/reviews/{parameter}", h.lookupReviews)
		// an empty key is rejected by the lookup itself
		r.Get("/{movieId}/reviews/", h.lookupReviews)
		r.Put("/{movieId}/reviews/{parameter}", h.updateReview)
	})

	if h.Auth != nil {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", h.signUp)
			r.Post("/confirm_signup", h.confirmSignUp)
			r.Post("/signin", h.signIn)
			r.Get("/signout", h.signOut)
		})
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		h.fail(w, r, &apperr.Error{
			Kind: apperr.KindNotFound,
			Op:   "api.route",
			Err:  fmt.Errorf("no route for %s %s", r.Method, r.URL.Path),
			Msg:  "Not Found",
		})
	})

	return r
}
