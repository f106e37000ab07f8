package reviewqueue

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/dannyrandall/moviereviews/internal/api"
	"github.com/dannyrandall/moviereviews/internal/reviews"
	"github.com/dannyrandall/moviereviews/internal/reviewstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
)

type fakeSQS struct {
	mu         sync.Mutex
	batches    [][]types.Message
	receiveErr error
	deleted    []string
	inputs     []*sqs.ReceiveMessageInput
}

func (f *fakeSQS) ReceiveMessage(ctx context.Context, in *sqs.ReceiveMessageInput, _ ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inputs = append(f.inputs, in)
	if f.receiveErr != nil {
		return nil, f.receiveErr
	}
	if len(f.batches) == 0 {
		return &sqs.ReceiveMessageOutput{}, nil
	}
	batch := f.batches[0]
	f.batches = f.batches[1:]
	return &sqs.ReceiveMessageOutput{Messages: batch}, nil
}

func (f *fakeSQS) DeleteMessage(_ context.Context, in *sqs.DeleteMessageInput, _ ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, aws.ToString(in.ReceiptHandle))
	return &sqs.DeleteMessageOutput{}, nil
}

func message(id string, body string) types.Message {
	return types.Message{MessageId: aws.String(id), ReceiptHandle: aws.String("rh-" + id), Body: aws.String(body)}
}

func reviewBody(t *testing.T, r reviews.Review) string {
	t.Helper()
	b, err := json.Marshal(r)
	require.NoError(t, err)
	return string(b)
}

// reviewEndpoint accepts reviews for movies below 200 and rejects the rest.
func reviewEndpoint(t *testing.T, got *[]reviews.Review) *httptest.Server {
	var mu sync.Mutex
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var rev reviews.Review
		if err := json.NewDecoder(r.Body).Decode(&rev); err != nil || rev.MovieID >= 200 {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_input"}`))
			return
		}
		mu.Lock()
		*got = append(*got, rev)
		mu.Unlock()
		w.WriteHeader(http.StatusCreated)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newQueue(t *testing.T, fake *fakeSQS, url string) (*Queue, *tracetest.SpanRecorder) {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return &Queue{
		SQS:          fake,
		HTTP:         http.DefaultClient,
		Tracer:       tp.Tracer("reviewqueue"),
		Logger:       zap.NewNop(),
		AddReviewURL: url,
		QueueName:    "reviews",
		QueueURL:     "https://sqs.us-east-1.amazonaws.com/123456789012/reviews",
		ErrorBackoff: time.Millisecond,
	}, sr
}

func TestProcessOnce(t *testing.T) {
	r1 := reviews.Review{MovieID: 101, ReviewerName: "ana", ReviewDate: "2024-01-01", Content: "Fun.", Rating: 4}
	r2 := reviews.Review{MovieID: 102, ReviewerName: "bo", ReviewDate: "2024-01-02", Content: "Meh.", Rating: 2}
	fake := &fakeSQS{batches: [][]types.Message{{message("1", reviewBody(t, r1)), message("2", reviewBody(t, r2))}}}
	var added []reviews.Review
	q, sr := newQueue(t, fake, reviewEndpoint(t, &added).URL)

	require.NoError(t, q.ProcessOnce(context.Background()))

	assert.Equal(t, []reviews.Review{r1, r2}, added)
	assert.Equal(t, []string{"rh-1", "rh-2"}, fake.deleted)
	require.Len(t, fake.inputs, 1)
	assert.Equal(t, int32(defaultWaitTime), fake.inputs[0].WaitTimeSeconds)
	assert.Equal(t, int32(defaultMaxMessages), fake.inputs[0].MaxNumberOfMessages)

	spans := sr.Ended()
	require.Len(t, spans, 3)
	assert.Equal(t, "recvAndProcess", spans[2].Name())
	assert.Equal(t, codes.Unset, spans[2].Status().Code)
}

func TestProcessOnce_FailedMessagesStayQueued(t *testing.T) {
	good := reviews.Review{MovieID: 101, ReviewerName: "ana", ReviewDate: "2024-01-01", Content: "Fun.", Rating: 4}
	rejected := reviews.Review{MovieID: 250, ReviewerName: "bo", ReviewDate: "2024-01-02", Content: "Meh.", Rating: 2}
	fake := &fakeSQS{batches: [][]types.Message{{
		message("bad-json", "{not json"),
		message("rejected", reviewBody(t, rejected)),
		message("good", reviewBody(t, good)),
	}}}
	var added []reviews.Review
	q, sr := newQueue(t, fake, reviewEndpoint(t, &added).URL)

	err := q.ProcessOnce(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), `process message "bad-json"`)
	assert.Contains(t, err.Error(), "status code 400")
	assert.Equal(t, []reviews.Review{good}, added)
	assert.Equal(t, []string{"rh-good"}, fake.deleted)

	spans := sr.Ended()
	require.NotEmpty(t, spans)
	assert.Equal(t, codes.Error, spans[len(spans)-1].Status().Code)
}

func TestProcessOnce_ReceiveError(t *testing.T) {
	fake := &fakeSQS{receiveErr: errors.New("AccessDenied")}
	q, _ := newQueue(t, fake, "http://127.0.0.1:0")

	err := q.ProcessOnce(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, errReceive)
	assert.Contains(t, err.Error(), "AccessDenied")
}

func TestReceiveAndProcess_StopsWithContext(t *testing.T) {
	fake := &fakeSQS{receiveErr: errors.New("throttled")}
	q, _ := newQueue(t, fake, "http://127.0.0.1:0")
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := q.ReceiveAndProcess(ctx)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	fake.mu.Lock()
	defer fake.mu.Unlock()
	assert.NotEmpty(t, fake.inputs)
}

func TestProcessOnce_ForwardsBodyAsSent(t *testing.T) {
	const body = `{"movieId":101,"reviewerName":"ana","reviewDate":"2024-01-01","content":"Fun.","rating":4,"source":"mobile"}`
	var posted []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		posted, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()
	fake := &fakeSQS{batches: [][]types.Message{{message("1", body)}}}
	q, _ := newQueue(t, fake, srv.URL)

	require.NoError(t, q.ProcessOnce(context.Background()))

	assert.Equal(t, body, string(posted))
	assert.Equal(t, []string{"rh-1"}, fake.deleted)
}

func TestProcessOnce_MissingRatingIsRejected(t *testing.T) {
	store := reviewstore.NewMemory(reviews.DefaultReviewerIndex, reviews.DefaultDateIndex)
	srv := httptest.NewServer(api.NewRouter(&api.Handler{
		Lookup:  reviews.NewDispatcher(store, nil),
		Reviews: reviews.NewService(store),
	}))
	defer srv.Close()
	fake := &fakeSQS{batches: [][]types.Message{{
		message("no-rating", `{"movieId":101,"reviewerName":"x","reviewDate":"2024-01-01","content":"c"}`),
	}}}
	q, _ := newQueue(t, fake, srv.URL+"/movies/reviews")

	err := q.ProcessOnce(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status code 400")
	assert.Empty(t, fake.deleted)
	stored, err := store.Query(context.Background(), reviews.Query{
		Key: reviews.KeyCondition{PartitionName: reviews.AttrMovieID, PartitionValue: 101},
	})
	require.NoError(t, err)
	assert.Empty(t, stored)
}
