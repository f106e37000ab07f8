package reviews

import (
	"context"
	"fmt"

	"github.com/dannyrandall/moviereviews/internal/apperr"
	"golang.org/x/sync/errgroup"
)

// Recorder is notified about served lookups and translation outcomes.
type Recorder interface {
	LookupServed(filter string)
	Translated(err error)
}

type nopRecorder struct{}

func (nopRecorder) LookupServed(string) {}
func (nopRecorder) Translated(error)    {}

// LookupRequest asks for the reviews of MovieID filtered by Key, which is
// either a four digit year or a reviewer name. A non-empty Language asks for
// the review content translated into that language.
type LookupRequest struct {
	MovieID  int
	Key      string
	Language string
}

// Dispatcher answers lookups by picking the secondary index that matches the
// shape of the lookup key.
type Dispatcher struct {
	querier     Querier
	translator  Translator
	recorder    Recorder
	reviewerIdx string
	dateIdx     string
	sourceLang  string
	concurrency int
}

type Option func(*Dispatcher)

// WithIndexes overrides the reviewer and date index names.
func WithIndexes(reviewer, date string) Option {
	return func(d *Dispatcher) {
		if reviewer != "" {
			d.reviewerIdx = reviewer
		}
		if date != "" {
			d.dateIdx = date
		}
	}
}

// WithSourceLanguage sets the language stored review content is written in.
func WithSourceLanguage(lang string) Option {
	return func(d *Dispatcher) {
		if lang != "" {
			d.sourceLang = lang
		}
	}
}

// WithTranslateConcurrency bounds the translation calls in flight for a
// single lookup.
func WithTranslateConcurrency(n int) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.concurrency = n
		}
	}
}

func WithRecorder(r Recorder) Option {
	return func(d *Dispatcher) {
		if r != nil {
			d.recorder = r
		}
	}
}

func NewDispatcher(q Querier, t Translator, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		querier:     q,
		translator:  t,
		recorder:    nopRecorder{},
		reviewerIdx: DefaultReviewerIndex,
		dateIdx:     DefaultDateIndex,
		sourceLang:  "en",
		concurrency: 8,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Lookup returns the reviews matching req in index order, translated when
// req.Language is set. A failed translation of any review fails the whole
// lookup.
func (d *Dispatcher) Lookup(ctx context.Context, req LookupRequest) ([]Review, error) {
	const op = "reviews.Lookup"

	if req.MovieID <= 0 {
		return nil, apperr.Invalid(op, "movieId must be a positive integer")
	}
	if req.Key == "" {
		return nil, apperr.Invalid(op, "missing reviewer name or year")
	}

	filter := Classify(req.Key)
	found, err := d.querier.Query(ctx, d.queryFor(req.MovieID, filter))
	if err != nil {
		return nil, apperr.E(apperr.KindQuery, op, fmt.Errorf("query by %s: %w", filter.Label(), err))
	}
	d.recorder.LookupServed(filter.Label())

	if req.Language == "" || len(found) == 0 {
		return found, nil
	}

	translated, err := d.translate(ctx, found, req.Language)
	if err != nil {
		return nil, apperr.E(apperr.KindTranslate, op, err)
	}
	return translated, nil
}

// queryFor builds the index query for filter. The reviewer index is keyed by
// reviewer alone, so a reviewer lookup returns that reviewer's reviews of
// every movie.
func (d *Dispatcher) queryFor(movieID int, filter Filter) Query {
	switch f := filter.(type) {
	case YearFilter:
		return Query{
			Index: d.dateIdx,
			Key: KeyCondition{
				PartitionName:  AttrMovieID,
				PartitionValue: movieID,
				SortName:       AttrReviewDate,
				SortPrefix:     f.Year,
			},
		}
	case ReviewerFilter:
		return Query{
			Index: d.reviewerIdx,
			Key: KeyCondition{
				PartitionName:  AttrReviewerName,
				PartitionValue: f.Name,
			},
		}
	default:
		panic(fmt.Sprintf("reviews: unknown filter %T", filter))
	}
}

// translate returns a copy of in with every Content translated to target.
func (d *Dispatcher) translate(ctx context.Context, in []Review, target string) ([]Review, error) {
	out := make([]Review, len(in))
	copy(out, in)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(d.concurrency)
	for i := range out {
		g.Go(func() error {
			text, err := d.translator.Translate(ctx, out[i].Content, d.sourceLang, target)
			// calls cut short by a sibling's failure aren't translation outcomes
			if err == nil || ctx.Err() == nil {
				d.recorder.Translated(err)
			}
			if err != nil {
				return fmt.Errorf("translate review of movie %d by %q to %q: %w", out[i].MovieID, out[i].ReviewerName, target, err)
			}
			out[i].Content = text
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
