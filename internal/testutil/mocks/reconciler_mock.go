package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/wordflash/internal/models"
)

// MockReconciler is a mock implementation of services.ReconcileService
type MockReconciler struct {
	mock.Mock
}

func (m *MockReconciler) ReconcileShownCounts(ctx context.Context) (*models.ReconcileReport, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ReconcileReport), args.Error(1)
}

func (m *MockReconciler) Check(ctx context.Context) ([]models.ShownMismatch, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ShownMismatch), args.Error(1)
}
