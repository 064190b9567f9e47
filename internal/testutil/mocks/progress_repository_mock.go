package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/wordflash/internal/models"
)

// MockProgressRepository is a mock implementation of repository.ProgressRepository
type MockProgressRepository struct {
	mock.Mock
}

func (m *MockProgressRepository) ListForUser(ctx context.Context, userID int64) (map[int64]models.WordProgress, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]models.WordProgress), args.Error(1)
}

func (m *MockProgressRepository) Get(ctx context.Context, userID, wordID int64) (*models.WordProgress, error) {
	args := m.Called(ctx, userID, wordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WordProgress), args.Error(1)
}

func (m *MockProgressRepository) RecentlyShown(ctx context.Context, userID int64, n int) ([]int64, error) {
	args := m.Called(ctx, userID, n)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

func (m *MockProgressRepository) FindShownByRequest(ctx context.Context, userID int64, requestID string) (*models.ShownResult, error) {
	args := m.Called(ctx, userID, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ShownResult), args.Error(1)
}

func (m *MockProgressRepository) CommitShown(ctx context.Context, commit models.ShownCommit) (*models.ShownResult, error) {
	args := m.Called(ctx, commit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ShownResult), args.Error(1)
}

func (m *MockProgressRepository) CommitAnswer(ctx context.Context, commit models.AnswerCommit) (*models.WordProgress, error) {
	args := m.Called(ctx, commit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WordProgress), args.Error(1)
}

func (m *MockProgressRepository) EventsFor(ctx context.Context, userID, wordID int64) ([]models.UserWordEvent, error) {
	args := m.Called(ctx, userID, wordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.UserWordEvent), args.Error(1)
}
