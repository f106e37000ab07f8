package reviews

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Attribute names of a review item in the reviews table and its indexes.
const (
	AttrMovieID      = "movieId"
	AttrReviewerName = "reviewerName"
	AttrReviewDate   = "reviewDate"
	AttrContent      = "content"
	AttrRating       = "rating"
)

// Default secondary index names.
const (
	DefaultReviewerIndex = "reviewerNameIndex"
	DefaultDateIndex     = "reviewDateIndex"
)

var validate = validator.New()

type Review struct {
	MovieID      int     `json:"movieId" dynamodbav:"movieId" validate:"gt=0"`
	ReviewerName string  `json:"reviewerName" dynamodbav:"reviewerName" validate:"required"`
	ReviewDate   string  `json:"reviewDate" dynamodbav:"reviewDate" validate:"required,datetime=2006-01-02"`
	Content      string  `json:"content" dynamodbav:"content" validate:"required"`
	Rating       float64 `json:"rating" dynamodbav:"rating"`
}

// Validate checks the fields a stored review must always have.
func (r Review) Validate() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("invalid review: %w", err)
	}
	return nil
}

// ReviewUpdate holds the mutable fields of a review. Nil fields are left as
// they are.
type ReviewUpdate struct {
	Content *string  `json:"content,omitempty" validate:"omitempty,min=1"`
	Rating  *float64 `json:"rating,omitempty"`
}

// Empty reports whether the update changes nothing.
func (u ReviewUpdate) Empty() bool {
	return u.Content == nil && u.Rating == nil
}
