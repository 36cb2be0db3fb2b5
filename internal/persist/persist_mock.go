package persist

import (
	"context"

	"github.com/cerennceyhan/e-commerce-churn-prediction/internal/contract"
	"github.com/cerennceyhan/e-commerce-churn-prediction/schema"
	"github.com/stretchr/testify/mock"
)

// MockStoreManager is a mock implementation of StoreManager for testing.
type MockStoreManager struct {
	mock.Mock
}

var _ contract.StoreManager = &MockStoreManager{} // Compile-time check

// GetSentimentStore implements the StoreManager interface.
func (m *MockStoreManager) GetSentimentStore() contract.SentimentStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.SentimentStore)
	return store
}

// MockSentimentStore is a mock implementation of SentimentStore for testing.
type MockSentimentStore struct {
	mock.Mock
}

var (
	_ contract.SentimentStore = &MockSentimentStore{} // Compile-time check
	_ contract.RunLister      = &MockSentimentStore{} // Compile-time check
)

// ProcessedProducts implements the SentimentStore interface.
func (m *MockSentimentStore) ProcessedProducts(ctx context.Context) (schema.CheckpointSet, error) {
	args := m.Called(ctx)
	set, _ := args.Get(0).(schema.CheckpointSet)
	return set, args.Error(1)
}

// Append implements the SentimentStore interface.
func (m *MockSentimentStore) Append(ctx context.Context, record schema.SentimentRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

// LoadAll implements the SentimentStore interface.
func (m *MockSentimentStore) LoadAll(ctx context.Context) ([]schema.SentimentRecord, error) {
	args := m.Called(ctx)
	records, _ := args.Get(0).([]schema.SentimentRecord)
	return records, args.Error(1)
}

// BeginRun implements the SentimentStore interface.
func (m *MockSentimentStore) BeginRun(ctx context.Context, run schema.ExtractionRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

// EndRun implements the SentimentStore interface.
func (m *MockSentimentStore) EndRun(ctx context.Context, run schema.ExtractionRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

// ListRuns implements the RunLister interface.
func (m *MockSentimentStore) ListRuns(ctx context.Context) ([]schema.ExtractionRun, error) {
	args := m.Called(ctx)
	runs, _ := args.Get(0).([]schema.ExtractionRun)
	return runs, args.Error(1)
}

// GetStatus implements the SentimentStore interface.
func (m *MockSentimentStore) GetStatus(ctx context.Context) (schema.StoreStatus, error) {
	args := m.Called(ctx)
	return args.Get(0).(schema.StoreStatus), args.Error(1)
}

// Close implements the SentimentStore interface.
func (m *MockSentimentStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
