package reviews

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/dannyrandall/moviereviews/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestService_ListByMovie(t *testing.T) {
	ctx := context.Background()
	minRating := 4.0
	store := new(mockStore)
	store.On("Query", ctx, Query{
		Key: KeyCondition{PartitionName: AttrMovieID, PartitionValue: 101},
	}).Return([]Review{review101a, review101b}, nil)
	store.On("Query", ctx, Query{
		Key:       KeyCondition{PartitionName: AttrMovieID, PartitionValue: 101},
		MinRating: &minRating,
	}).Return([]Review{review101a}, nil)
	svc := NewService(store)

	all, err := svc.ListByMovie(ctx, 101, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	good, err := svc.ListByMovie(ctx, 101, &minRating)
	require.NoError(t, err)
	assert.Equal(t, []Review{review101a}, good)
	store.AssertExpectations(t)
}

func TestService_ListByMovie_Errors(t *testing.T) {
	ctx := context.Background()
	store := new(mockStore)
	store.On("Query", ctx, mock.Anything).Return(nil, errors.New("ProvisionedThroughputExceededException"))
	svc := NewService(store)

	_, err := svc.ListByMovie(ctx, 0, nil)
	assert.Equal(t, apperr.KindInvalidInput, apperr.KindOf(err))

	_, err = svc.ListByMovie(ctx, 5, nil)
	assert.Equal(t, apperr.KindQuery, apperr.KindOf(err))
}

func TestService_Add(t *testing.T) {
	ctx := context.Background()
	store := new(mockStore)
	store.On("Put", ctx, review101a).Return(nil)

	require.NoError(t, NewService(store).Add(ctx, review101a))
	store.AssertExpectations(t)
}

func TestService_Add_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Review)
	}{
		{"no movie", func(r *Review) { r.MovieID = 0 }},
		{"no reviewer", func(r *Review) { r.ReviewerName = "" }},
		{"no content", func(r *Review) { r.Content = "" }},
		{"bad date", func(r *Review) { r.ReviewDate = "01/11/2023" }},
		{"impossible date", func(r *Review) { r.ReviewDate = "2023-13-01" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := review101a
			tt.mutate(&r)
			store := new(mockStore)

			err := NewService(store).Add(context.Background(), r)

			assert.Equal(t, apperr.KindInvalidInput, apperr.KindOf(err))
			store.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
		})
	}
}

func TestService_Add_StoreFailure(t *testing.T) {
	store := new(mockStore)
	store.On("Put", mock.Anything, mock.Anything).Return(errors.New("boom"))

	err := NewService(store).Add(context.Background(), review101a)

	assert.Equal(t, apperr.KindStore, apperr.KindOf(err))
}

func TestService_Update(t *testing.T) {
	ctx := context.Background()
	content := "Better on a second watch."
	u := ReviewUpdate{Content: &content}
	want := review101b
	want.Content = content
	store := new(mockStore)
	store.On("Update", ctx, 101, "user456", u).Return(want, nil)

	got, err := NewService(store).Update(ctx, 101, "user456", u)

	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestService_Update_Errors(t *testing.T) {
	ctx := context.Background()
	rating := 3.0
	empty := ""
	store := new(mockStore)
	store.On("Update", ctx, 404, "nobody", mock.Anything).Return(Review{}, fmt.Errorf("update: %w", ErrNotFound))
	svc := NewService(store)

	_, err := svc.Update(ctx, 404, "nobody", ReviewUpdate{Rating: &rating})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	_, err = svc.Update(ctx, 101, "user123", ReviewUpdate{})
	assert.Equal(t, apperr.KindInvalidInput, apperr.KindOf(err))

	_, err = svc.Update(ctx, 101, "user123", ReviewUpdate{Content: &empty})
	assert.Equal(t, apperr.KindInvalidInput, apperr.KindOf(err))

	_, err = svc.Update(ctx, 101, "", ReviewUpdate{Rating: &rating})
	assert.Equal(t, apperr.KindInvalidInput, apperr.KindOf(err))
}

func TestSeedReviewsAreValid(t *testing.T) {
	for _, r := range SeedReviews() {
		assert.NoError(t, r.Validate(), "seed review of movie %d", r.MovieID)
	}
}
