package api

import (
	"math"
	"net/http"
	"net/url"
	"strconv"

	"github.com/dannyrandall/moviereviews/internal/apperr"
	"github.com/dannyrandall/moviereviews/internal/reviews"
	"github.com/go-chi/chi/v5"
)

type addReviewRequest struct {
	MovieID      int      `json:"movieId" validate:"required,gt=0"`
	ReviewerName string   `json:"reviewerName" validate:"required"`
	ReviewDate   string   `json:"reviewDate" validate:"required,datetime=2006-01-02"`
	Content      string   `json:"content" validate:"required"`
	Rating       *float64 `json:"rating" validate:"required"`
}

func movieIDParam(r *http.Request, op string) (int, error) {
	raw := chi.URLParam(r, "movieId")
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, apperr.Invalid(op, "movieId must be a positive integer, got %q", raw)
	}
	return id, nil
}

// pathParam returns the decoded value of a path parameter. chi matches on
// the escaped path when the request has one, so its values are escaped then.
func pathParam(r *http.Request, name, op string) (string, error) {
	raw := chi.URLParam(r, name)
	if r.URL.RawPath == "" {
		return raw, nil
	}
	v, err := url.PathUnescape(raw)
	if err != nil {
		return "", apperr.Invalid(op, "%s is not a valid path segment: %q", name, raw)
	}
	return v, nil
}

func (h *Handler) listReviews(w http.ResponseWriter, r *http.Request) {
	const op = "api.listReviews"
	ctx, cancel := h.requestContext(r)
	defer cancel()

	movieID, err := movieIDParam(r, op)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	var minRating *float64
	if raw := r.URL.Query().Get("minRating"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			h.fail(w, r, apperr.Invalid(op, "minRating must be a number, got %q", raw))
			return
		}
		minRating = &v
	}

	found, err := h.Reviews.ListByMovie(ctx, movieID, minRating)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, nonNil(found))
}

// lookupReviews serves reviews of a movie by year, or of a reviewer, depending
// on the shape of the last path segment.
func (h *Handler) lookupReviews(w http.ResponseWriter, r *http.Request) {
	const op = "api.lookupReviews"
	ctx, cancel := h.requestContext(r)
	defer cancel()

	movieID, err := movieIDParam(r, op)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	language := r.URL.Query().Get("language")
	if language != "" {
		if err := validate.Var(language, "bcp47_language_tag"); err != nil {
			h.fail(w, r, apperr.Invalid(op, "language must be a BCP-47 language tag, got %q", language))
			return
		}
	}

	key, err := pathParam(r, "parameter", op)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	found, err := h.Lookup.Lookup(ctx, reviews.LookupRequest{
		MovieID:  movieID,
		Key:      key,
		Language: language,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, nonNil(found))
}

func (h *Handler) addReview(w http.ResponseWriter, r *http.Request) {
	const op = "api.addReview"
	ctx, cancel := h.requestContext(r)
	defer cancel()

	var req addReviewRequest
	if err := decodeBody(w, r, op, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	err := h.Reviews.Add(ctx, reviews.Review{
		MovieID:      req.MovieID,
		ReviewerName: req.ReviewerName,
		ReviewDate:   req.ReviewDate,
		Content:      req.Content,
		Rating:       *req.Rating,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, messageBody{Message: "Review added successfully"})
}

// updateReview changes the review the reviewer named by the last path segment
// wrote for the movie.
func (h *Handler) updateReview(w http.ResponseWriter, r *http.Request) {
	const op = "api.updateReview"
	ctx, cancel := h.requestContext(r)
	defer cancel()

	movieID, err := movieIDParam(r, op)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	reviewerName, err := pathParam(r, "parameter", op)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	var u reviews.ReviewUpdate
	if err := decodeBody(w, r, op, &u); err != nil {
		h.fail(w, r, err)
		return
	}

	updated, err := h.Reviews.Update(ctx, movieID, reviewerName, u)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, updated)
}

func nonNil(rs []reviews.Review) []reviews.Review {
	if rs == nil {
		return []reviews.Review{}
	}
	return rs
}
