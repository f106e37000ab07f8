package reviewstore

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/dannyrandall/moviereviews/internal/reviews"
)

type keySchema struct {
	partition string
	sort      string
}

type itemKey struct {
	movieID      int
	reviewerName string
}

// Memory is an in-process store with the key layout of the reviews table:
// (movieId, reviewerName) on the table, (reviewerName, reviewDate) on the
// reviewer index and (movieId, reviewDate) on the date index.
type Memory struct {
	mu      sync.RWMutex
	items   map[itemKey]reviews.Review
	schemas map[string]keySchema
}

func NewMemory(reviewerIndex, dateIndex string, seed ...reviews.Review) *Memory {
	m := &Memory{
		items: make(map[itemKey]reviews.Review, len(seed)),
		schemas: map[string]keySchema{
			"":            {partition: reviews.AttrMovieID, sort: reviews.AttrReviewerName},
			reviewerIndex: {partition: reviews.AttrReviewerName, sort: reviews.AttrReviewDate},
			dateIndex:     {partition: reviews.AttrMovieID, sort: reviews.AttrReviewDate},
		},
	}
	for _, r := range seed {
		m.items[itemKey{r.MovieID, r.ReviewerName}] = r
	}
	return m
}

func (m *Memory) Query(_ context.Context, q reviews.Query) ([]reviews.Review, error) {
	schema, ok := m.schemas[q.Index]
	if !ok {
		return nil, fmt.Errorf("query: index %q not found", q.Index)
	}
	if q.Key.PartitionName != schema.partition || (q.Key.SortName != "" && q.Key.SortName != schema.sort) {
		return nil, fmt.Errorf("query: key condition on %q/%q does not match key schema %q/%q",
			q.Key.PartitionName, q.Key.SortName, schema.partition, schema.sort)
	}
	partition := fmt.Sprint(q.Key.PartitionValue)

	m.mu.RLock()
	found := make([]reviews.Review, 0)
	for _, r := range m.items {
		if attr(r, schema.partition) != partition {
			continue
		}
		if q.Key.SortName != "" && !strings.HasPrefix(attr(r, q.Key.SortName), q.Key.SortPrefix) {
			continue
		}
		if q.MinRating != nil && r.Rating < *q.MinRating {
			continue
		}
		found = append(found, r)
	}
	m.mu.RUnlock()

	slices.SortFunc(found, func(a, b reviews.Review) int {
		return cmp.Or(
			strings.Compare(attr(a, schema.sort), attr(b, schema.sort)),
			cmp.Compare(a.MovieID, b.MovieID),
			strings.Compare(a.ReviewerName, b.ReviewerName),
		)
	})
	return found, nil
}

func (m *Memory) Put(_ context.Context, r reviews.Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[itemKey{r.MovieID, r.ReviewerName}] = r
	return nil
}

func (m *Memory) Update(_ context.Context, movieID int, reviewerName string, u reviews.ReviewUpdate) (reviews.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := itemKey{movieID, reviewerName}
	r, ok := m.items[key]
	if !ok {
		return reviews.Review{}, fmt.Errorf("movie %d reviewer %q: %w", movieID, reviewerName, reviews.ErrNotFound)
	}
	if u.Content != nil {
		r.Content = *u.Content
	}
	if u.Rating != nil {
		r.Rating = *u.Rating
	}
	m.items[key] = r
	return r, nil
}

func attr(r reviews.Review, name string) string {
	switch name {
	case reviews.AttrMovieID:
		return strconv.Itoa(r.MovieID)
	case reviews.AttrReviewerName:
		return r.ReviewerName
	case reviews.AttrReviewDate:
		return r.ReviewDate
	case reviews.AttrContent:
		return r.Content
	default:
		return ""
	}
}
