// Package reviewqueue consumes review submissions from an SQS queue and hands
// each one to the add review endpoint.
package reviewqueue

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/dannyrandall/moviereviews/internal/reviews"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	defaultWaitTime     = 20 // seconds
	defaultMaxMessages  = 10
	defaultErrorBackoff = 5 * time.Second
)

// SQSAPI is the part of the SQS client the queue uses.
type SQSAPI interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

var _ SQSAPI = (*sqs.Client)(nil)

type Queue struct {
	SQS    SQSAPI
	HTTP   *http.Client
	Tracer trace.Tracer
	Logger *zap.Logger

	AddReviewURL string
	QueueName    string
	QueueURL     string

	// Zero values use the defaults above.
	WaitTimeSeconds int32
	MaxMessages     int32
	ErrorBackoff    time.Duration
}

// ReceiveAndProcess long-polls the queue until ctx is done. Failures are
// logged; a message that couldn't be processed stays on the queue and is
// delivered again after its visibility timeout.
func (q *Queue) ReceiveAndProcess(ctx context.Context) error {
	for ctx.Err() == nil {
		err := q.ProcessOnce(ctx)
		if err == nil || ctx.Err() != nil {
			continue
		}

		q.Logger.Error("receive and process", zap.String("queue", q.QueueName), zap.Error(err))
		if errors.Is(err, errReceive) {
			select {
			case <-ctx.Done():
			case <-time.After(q.errorBackoff()):
			}
		}
	}
	return ctx.Err()
}

var errReceive = errors.New("receive messages")

// ProcessOnce runs one receive and process cycle. Every received message is
// attempted; the returned error joins the failures.
func (q *Queue) ProcessOnce(ctx context.Context) error {
	ctx, span := q.Tracer.Start(ctx, "recvAndProcess",
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			semconv.MessagingSystemAWSSqs,
			semconv.MessagingDestinationName(q.QueueName),
		))
	defer span.End()

	msgs, err := q.receiveMessages(ctx)
	if err != nil {
		return spanErrorf(span, "%w: %w", errReceive, err)
	}

	var errs []error
	for _, msg := range msgs {
		if err := q.processMessage(ctx, msg); err != nil {
			errs = append(errs, fmt.Errorf("process message %q: %w", aws.ToString(msg.MessageId), err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

func spanErrorf(span trace.Span, format string, a ...any) error {
	err := fmt.Errorf(format, a...)
	span.SetStatus(codes.Error, err.Error())
	return err
}

func (q *Queue) receiveMessages(ctx context.Context) ([]types.Message, error) {
	wait, maxMsgs := q.WaitTimeSeconds, q.MaxMessages
	if wait <= 0 {
		wait = defaultWaitTime
	}
	if maxMsgs <= 0 {
		maxMsgs = defaultMaxMessages
	}

	res, err := q.SQS.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            aws.String(q.QueueURL),
		MaxNumberOfMessages: maxMsgs,
		WaitTimeSeconds:     wait,
	})
	if err != nil {
		return nil, err
	}
	return res.Messages, nil
}

func (q *Queue) processMessage(ctx context.Context, msg types.Message) error {
	ctx, span := q.Tracer.Start(ctx, "processMessage",
		trace.WithAttributes(semconv.MessagingMessageID(aws.ToString(msg.MessageId))))
	defer span.End()

	// The body is forwarded as sent so the add endpoint validates what the
	// producer wrote; the decoded copy is only for logs.
	body := []byte(aws.ToString(msg.Body))
	var review reviews.Review
	if err := json.Unmarshal(body, &review); err != nil {
		return spanErrorf(span, "unmarshal review: %w", err)
	}

	if err := q.addReview(ctx, body); err != nil {
		return spanErrorf(span, "add review: %w", err)
	}

	if err := q.deleteMessage(ctx, msg.ReceiptHandle); err != nil {
		return spanErrorf(span, "delete message: %w", err)
	}

	q.Logger.Debug("added queued review",
		zap.String("message_id", aws.ToString(msg.MessageId)),
		zap.Int("movie_id", review.MovieID),
		zap.String("reviewer", review.ReviewerName))
	return nil
}

func (q *Queue) addReview(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, q.AddReviewURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := q.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("bad response: status code %v: %s", resp.StatusCode, bytes.TrimSpace(respBody))
	}
	return nil
}

func (q *Queue) deleteMessage(ctx context.Context, receiptHandle *string) error {
	_, err := q.SQS.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(q.QueueURL),
		ReceiptHandle: receiptHandle,
	})
	return err
}

func (q *Queue) errorBackoff() time.Duration {
	if q.ErrorBackoff > 0 {
		return q.ErrorBackoff
	}
	return defaultErrorBackoff
}
