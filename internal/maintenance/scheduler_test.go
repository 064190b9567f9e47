package maintenance

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/wordflash/internal/testutil/mocks"
)

func TestScheduleReconcile(t *testing.T) {
	queue := new(mocks.MockJobQueue)
	s := New(queue)

	require.NoError(t, s.ScheduleReconcile(""))
	assert.Equal(t, 0, s.Jobs(), "empty expression disables the job")

	require.NoError(t, s.ScheduleReconcile("0 3 * * *"))
	assert.Equal(t, 1, s.Jobs())

	assert.Error(t, s.ScheduleReconcile("not a cron"))
}

func TestEnqueueReconcile(t *testing.T) {
	queue := new(mocks.MockJobQueue)
	queue.On("EnqueueReconcile", TriggerCron).Return(nil).Once()
	queue.On("EnqueueReconcile", TriggerCron).Return(errors.New("worker queue is full")).Once()

	s := New(queue)
	s.enqueueReconcile()
	s.enqueueReconcile()

	queue.AssertNumberOfCalls(t, "EnqueueReconcile", 2)
}

func TestStartStop(t *testing.T) {
	s := New(new(mocks.MockJobQueue))
	require.NoError(t, s.ScheduleReconcile("*/5 * * * *"))

	s.Start()
	s.Stop()
}
