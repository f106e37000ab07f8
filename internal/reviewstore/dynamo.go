// Package reviewstore persists reviews in DynamoDB, or in memory for local
// runs.
package reviewstore

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/dannyrandall/moviereviews/internal/reviews"
	"go.uber.org/zap"
)

// maxBatchWrite is the item limit of a single BatchWriteItem call.
const maxBatchWrite = 25

// DynamoDBAPI is the part of *dynamodb.Client the store uses.
type DynamoDBAPI interface {
	dynamodb.QueryAPIClient
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
}

var _ DynamoDBAPI = (*dynamodb.Client)(nil)

type Dynamo struct {
	client DynamoDBAPI
	table  string
	logger *zap.Logger

	// unprocessedBackoff is the wait before resending unprocessed batch items.
	unprocessedBackoff time.Duration
}

func NewDynamo(client DynamoDBAPI, table string, logger *zap.Logger) *Dynamo {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dynamo{
		client:             client,
		table:              table,
		logger:             logger,
		unprocessedBackoff: 200 * time.Millisecond,
	}
}

// Query runs q and follows LastEvaluatedKey until every page is read.
func (d *Dynamo) Query(ctx context.Context, q reviews.Query) ([]reviews.Review, error) {
	keyCond := expression.Key(q.Key.PartitionName).Equal(expression.Value(q.Key.PartitionValue))
	if q.Key.SortName != "" {
		keyCond = keyCond.And(expression.Key(q.Key.SortName).BeginsWith(q.Key.SortPrefix))
	}

	builder := expression.NewBuilder().WithKeyCondition(keyCond)
	if q.MinRating != nil {
		builder = builder.WithFilter(expression.Name(reviews.AttrRating).GreaterThanEqual(expression.Value(*q.MinRating)))
	}
	expr, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("build query expression: %w", err)
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(d.table),
		KeyConditionExpression:    expr.KeyCondition(),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}
	if q.Index != "" {
		input.IndexName = aws.String(q.Index)
	}

	found := make([]reviews.Review, 0)
	pages := dynamodb.NewQueryPaginator(d.client, input)
	for pages.HasMorePages() {
		page, err := pages.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("query %s: %w", d.source(q.Index), err)
		}

		var batch []reviews.Review
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, fmt.Errorf("unmarshal reviews: %w", err)
		}
		found = append(found, batch...)
	}

	d.logger.Debug("queried reviews",
		zap.String("source", d.source(q.Index)),
		zap.Any("partition", q.Key.PartitionValue),
		zap.Int("count", len(found)),
	)
	return found, nil
}

// Put writes r, replacing an existing review with the same key.
func (d *Dynamo) Put(ctx context.Context, r reviews.Review) error {
	av, err := attributevalue.MarshalMap(r)
	if err != nil {
		return fmt.Errorf("marshal review: %w", err)
	}

	_, err = d.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(d.table),
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("put item: %w", err)
	}
	return nil
}

// Update sets the fields of u on an existing review and returns the item as
// stored afterwards. A missing review yields reviews.ErrNotFound.
func (d *Dynamo) Update(ctx context.Context, movieID int, reviewerName string, u reviews.ReviewUpdate) (reviews.Review, error) {
	var update expression.UpdateBuilder
	if u.Content != nil {
		update = update.Set(expression.Name(reviews.AttrContent), expression.Value(*u.Content))
	}
	if u.Rating != nil {
		update = update.Set(expression.Name(reviews.AttrRating), expression.Value(*u.Rating))
	}

	expr, err := expression.NewBuilder().
		WithUpdate(update).
		WithCondition(expression.AttributeExists(expression.Name(reviews.AttrMovieID))).
		Build()
	if err != nil {
		return reviews.Review{}, fmt.Errorf("build update expression: %w", err)
	}

	out, err := d.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(d.table),
		Key:                       reviewKey(movieID, reviewerName),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ReturnValues:              types.ReturnValueAllNew,
	})
	var condErr *types.ConditionalCheckFailedException
	switch {
	case errors.As(err, &condErr):
		return reviews.Review{}, fmt.Errorf("movie %d reviewer %q: %w", movieID, reviewerName, reviews.ErrNotFound)
	case err != nil:
		return reviews.Review{}, fmt.Errorf("update item: %w", err)
	}

	var updated reviews.Review
	if err := attributevalue.UnmarshalMap(out.Attributes, &updated); err != nil {
		return reviews.Review{}, fmt.Errorf("unmarshal review: %w", err)
	}
	return updated, nil
}

// BatchPut writes rs in batches, resending items DynamoDB reports as
// unprocessed up to a fixed number of attempts.
func (d *Dynamo) BatchPut(ctx context.Context, rs []reviews.Review) error {
	const maxAttempts = 5

	for start := 0; start < len(rs); start += maxBatchWrite {
		end := min(start+maxBatchWrite, len(rs))

		requests := make([]types.WriteRequest, 0, end-start)
		for _, r := range rs[start:end] {
			av, err := attributevalue.MarshalMap(r)
			if err != nil {
				return fmt.Errorf("marshal review of movie %d by %q: %w", r.MovieID, r.ReviewerName, err)
			}
			requests = append(requests, types.WriteRequest{PutRequest: &types.PutRequest{Item: av}})
		}

		pending := map[string][]types.WriteRequest{d.table: requests}
		for attempt := 1; len(pending) > 0; attempt++ {
			if attempt > maxAttempts {
				return fmt.Errorf("batch write: %d items still unprocessed after %d attempts", len(pending[d.table]), maxAttempts)
			}
			if attempt > 1 {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(d.unprocessedBackoff * time.Duration(attempt-1)):
				}
			}

			out, err := d.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{RequestItems: pending})
			if err != nil {
				return fmt.Errorf("batch write: %w", err)
			}
			pending = out.UnprocessedItems
		}
		d.logger.Info("wrote review batch", zap.Int("count", end-start))
	}
	return nil
}

func (d *Dynamo) source(index string) string {
	if index == "" {
		return d.table
	}
	return d.table + "/" + index
}

func reviewKey(movieID int, reviewerName string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		reviews.AttrMovieID:      &types.AttributeValueMemberN{Value: strconv.Itoa(movieID)},
		reviews.AttrReviewerName: &types.AttributeValueMemberS{Value: reviewerName},
	}
}
