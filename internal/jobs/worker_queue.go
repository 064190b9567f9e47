package jobs

import (
	"github.com/vytor/wordflash/internal/models"
	"github.com/vytor/wordflash/internal/worker"
)

// WorkerQueue implements JobQueue using a worker pool
type WorkerQueue struct {
	pool       *worker.Pool
	reconciler worker.Reconciler
	onDone     func(*models.ReconcileReport)
}

// NewWorkerQueue creates a new WorkerQueue implementation. onDone may be nil.
func NewWorkerQueue(pool *worker.Pool, reconciler worker.Reconciler, onDone func(*models.ReconcileReport)) JobQueue {
	return &WorkerQueue{pool: pool, reconciler: reconciler, onDone: onDone}
}

func (q *WorkerQueue) EnqueueReconcile(trigger string) error {
	return q.pool.Submit(&worker.ReconcileJob{
		Reconciler: q.reconciler,
		Trigger:    trigger,
		OnDone:     q.onDone,
	})
}
