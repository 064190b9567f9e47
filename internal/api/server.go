package api

import (
	"context"

	"github.com/vytor/wordflash/internal/jobs"
	"github.com/vytor/wordflash/internal/repository"
	"github.com/vytor/wordflash/internal/services"
)

// ReadinessCheck reports whether the store can take traffic.
type ReadinessCheck func(ctx context.Context) error

type Server struct {
	Study     services.StudyService
	Reconcile services.ReconcileService
	Users     repository.UserRepository
	Jobs      jobs.JobQueue
	Ready     ReadinessCheck
	Limiter   *RateLimiter
	// AdminToken must match the X-Admin-Token header on /api/admin routes.
	AdminToken string
}
