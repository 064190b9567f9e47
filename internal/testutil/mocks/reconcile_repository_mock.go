package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/wordflash/internal/models"
)

// MockReconcileRepository is a mock implementation of repository.ReconcileRepository
type MockReconcileRepository struct {
	mock.Mock
}

func (m *MockReconcileRepository) CountProgress(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockReconcileRepository) ShownCountMismatches(ctx context.Context) ([]models.ShownMismatch, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ShownMismatch), args.Error(1)
}

func (m *MockReconcileRepository) ApplyCorrections(ctx context.Context, mismatches []models.ShownMismatch, at time.Time) ([]models.Correction, error) {
	args := m.Called(ctx, mismatches, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Correction), args.Error(1)
}

func (m *MockReconcileRepository) SuspiciousRecords(ctx context.Context, ratio float64) ([]models.SuspiciousRecord, error) {
	args := m.Called(ctx, ratio)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.SuspiciousRecord), args.Error(1)
}
