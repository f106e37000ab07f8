// Package api serves the review and auth endpoints over HTTP. The same router
// backs the container server and the API Gateway Lambda.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/dannyrandall/moviereviews/internal/auth"
	"github.com/dannyrandall/moviereviews/internal/reviews"
	"go.uber.org/zap"
)

const defaultTimeout = 10 * time.Second

type ReviewLookup interface {
	Lookup(ctx context.Context, req reviews.LookupRequest) ([]reviews.Review, error)
}

type ReviewService interface {
	ListByMovie(ctx context.Context, movieID int, minRating *float64) ([]reviews.Review, error)
	Add(ctx context.Context, r reviews.Review) error
	Update(ctx context.Context, movieID int, reviewerName string, u reviews.ReviewUpdate) (reviews.Review, error)
}

type Authenticator interface {
	SignUp(ctx context.Context, username, email, password string) error
	ConfirmSignUp(ctx context.Context, email, code string) error
	SignIn(ctx context.Context, email, password string) (auth.Tokens, error)
	SignOut(ctx context.Context, accessToken string) error
}

// Handler holds the collaborators of the endpoints. Auth is optional; without
// it the /auth routes aren't mounted.
type Handler struct {
	Lookup  ReviewLookup
	Reviews ReviewService
	Auth    Authenticator
	Logger  *zap.Logger

	// Timeout bounds the backend calls of a single request.
	Timeout time.Duration
}

func (h *Handler) requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	timeout := h.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return context.WithTimeout(r.Context(), timeout)
}

func (h *Handler) logger() *zap.Logger {
	if h.Logger == nil {
		return zap.NewNop()
	}
	return h.Logger
}
