package reviews

import (
	"context"
	"errors"

	"github.com/dannyrandall/moviereviews/internal/apperr"
)

// Service implements the plain review operations: listing a movie's reviews,
// adding a review and changing one.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// ListByMovie returns the reviews of movieID ordered by reviewer name. A
// non-nil minRating drops reviews rated below it.
func (s *Service) ListByMovie(ctx context.Context, movieID int, minRating *float64) ([]Review, error) {
	const op = "reviews.ListByMovie"

	if movieID <= 0 {
		return nil, apperr.Invalid(op, "movieId must be a positive integer")
	}

	found, err := s.store.Query(ctx, Query{
		Key: KeyCondition{
			PartitionName:  AttrMovieID,
			PartitionValue: movieID,
		},
		MinRating: minRating,
	})
	if err != nil {
		return nil, apperr.E(apperr.KindQuery, op, err)
	}
	return found, nil
}

// Add stores r, replacing any review the same reviewer wrote for the movie.
func (s *Service) Add(ctx context.Context, r Review) error {
	const op = "reviews.Add"

	if err := r.Validate(); err != nil {
		return apperr.E(apperr.KindInvalidInput, op, err)
	}
	if err := s.store.Put(ctx, r); err != nil {
		return apperr.E(apperr.KindStore, op, err)
	}
	return nil
}

// Update applies u to the review reviewerName wrote for movieID and returns
// the stored result.
func (s *Service) Update(ctx context.Context, movieID int, reviewerName string, u ReviewUpdate) (Review, error) {
	const op = "reviews.Update"

	switch {
	case movieID <= 0:
		return Review{}, apperr.Invalid(op, "movieId must be a positive integer")
	case reviewerName == "":
		return Review{}, apperr.Invalid(op, "missing reviewer name")
	case u.Empty():
		return Review{}, apperr.Invalid(op, "nothing to update")
	}
	if err := validate.Struct(u); err != nil {
		return Review{}, apperr.E(apperr.KindInvalidInput, op, err)
	}

	updated, err := s.store.Update(ctx, movieID, reviewerName, u)
	switch {
	case errors.Is(err, ErrNotFound):
		return Review{}, apperr.E(apperr.KindNotFound, op, err)
	case err != nil:
		return Review{}, apperr.E(apperr.KindStore, op, err)
	}
	return updated, nil
}
