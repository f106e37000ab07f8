package reviews

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) Query(ctx context.Context, q Query) ([]Review, error) {
	args := m.Called(ctx, q)
	found, _ := args.Get(0).([]Review)
	return found, args.Error(1)
}

func (m *mockStore) Put(ctx context.Context, r Review) error {
	return m.Called(ctx, r).Error(0)
}

func (m *mockStore) Update(ctx context.Context, movieID int, reviewerName string, u ReviewUpdate) (Review, error) {
	args := m.Called(ctx, movieID, reviewerName, u)
	return args.Get(0).(Review), args.Error(1)
}

type mockTranslator struct {
	mock.Mock
}

func (m *mockTranslator) Translate(ctx context.Context, text, source, target string) (string, error) {
	args := m.Called(ctx, text, source, target)
	return args.String(0), args.Error(1)
}

type countingRecorder struct {
	mu           sync.Mutex
	lookups      map[string]int
	translated   int
	translateErr int
}

func (r *countingRecorder) LookupServed(filter string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.lookups == nil {
		r.lookups = map[string]int{}
	}
	r.lookups[filter]++
}

func (r *countingRecorder) Translated(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		r.translateErr++
		return
	}
	r.translated++
}
