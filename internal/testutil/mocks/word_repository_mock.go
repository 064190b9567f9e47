package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/wordflash/internal/models"
)

// MockWordRepository is a mock implementation of repository.WordRepository
type MockWordRepository struct {
	mock.Mock
}

func (m *MockWordRepository) CandidateIDs(ctx context.Context, userID int64) ([]int64, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

func (m *MockWordRepository) GetByIDs(ctx context.Context, ids []int64) (map[int64]models.Word, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]models.Word), args.Error(1)
}

func (m *MockWordRepository) Exists(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockWordRepository) UpsertWord(ctx context.Context, word models.Word) (int64, error) {
	args := m.Called(ctx, word)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockWordRepository) UpsertWordSet(ctx context.Context, set models.WordSet) (int64, error) {
	args := m.Called(ctx, set)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockWordRepository) FindWordSet(ctx context.Context, name string) (*models.WordSet, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WordSet), args.Error(1)
}

func (m *MockWordRepository) AddToWordSet(ctx context.Context, setID, wordID int64) error {
	args := m.Called(ctx, setID, wordID)
	return args.Error(0)
}

func (m *MockWordRepository) AssignWordSet(ctx context.Context, userID, setID int64) error {
	args := m.Called(ctx, userID, setID)
	return args.Error(0)
}
