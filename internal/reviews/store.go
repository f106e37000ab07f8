package reviews

import (
	"context"
	"errors"
)

// ErrNotFound is returned by a Store when the review to change doesn't exist.
var ErrNotFound = errors.New("review not found")

// KeyCondition is an equality match on a partition key and an optional
// begins-with match on a sort key. An empty SortName means no sort key
// condition.
type KeyCondition struct {
	PartitionName  string
	PartitionValue any
	SortName       string
	SortPrefix     string
}

// Query reads reviews from the table, or from the secondary index Index when
// it is set. MinRating, when set, drops reviews rated below it.
type Query struct {
	Index     string
	Key       KeyCondition
	MinRating *float64
}

// Querier runs key condition queries and returns the matching reviews in
// the index's sort key order.
type Querier interface {
	Query(ctx context.Context, q Query) ([]Review, error)
}

// Translator translates text between two language codes.
type Translator interface {
	Translate(ctx context.Context, text, source, target string) (string, error)
}

// Store is the persistence the review service needs.
type Store interface {
	Querier
	Put(ctx context.Context, r Review) error
	Update(ctx context.Context, movieID int, reviewerName string, u ReviewUpdate) (Review, error)
}
