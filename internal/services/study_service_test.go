package services_test

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vytor/wordflash/internal/errors"
	"github.com/vytor/wordflash/internal/models"
	"github.com/vytor/wordflash/internal/repository"
	"github.com/vytor/wordflash/internal/scheduler"
	"github.com/vytor/wordflash/internal/services"
	"github.com/vytor/wordflash/internal/testutil/mocks"
)

type studyMocks struct {
	words    *mocks.MockWordRepository
	users    *mocks.MockUserRepository
	progress *mocks.MockProgressRepository
}

func newStudyService(t *testing.T) (services.StudyService, studyMocks) {
	t.Helper()
	m := studyMocks{
		words:    new(mocks.MockWordRepository),
		users:    new(mocks.MockUserRepository),
		progress: new(mocks.MockProgressRepository),
	}
	t.Cleanup(func() {
		m.words.AssertExpectations(t)
		m.users.AssertExpectations(t)
		m.progress.AssertExpectations(t)
	})

	policy := scheduler.NewPolicy(scheduler.WithRand(rand.New(rand.NewSource(1))))
	options := scheduler.NewOptionGenerator(scheduler.NewRand(1), scheduler.DefaultOptionCount)
	svc := services.NewStudyService(m.words, m.users, m.progress, policy, options, services.StudyConfig{
		ExcludeLast: 5,
		Retry:       services.RetryPolicy{Attempts: 3, Backoff: time.Millisecond},
	})
	return svc, m
}

func wordsByID(ids ...int64) map[int64]models.Word {
	out := make(map[int64]models.Word, len(ids))
	for _, id := range ids {
		out[id] = models.Word{ID: id, English: "en", Native: "nat"}
	}
	return out
}

func (m studyMocks) expectReads(userID int64, pool []int64, recent []int64, progress map[int64]models.WordProgress, counter int64) {
	m.words.On("CandidateIDs", mock.Anything, userID).Return(pool, nil)
	m.progress.On("RecentlyShown", mock.Anything, userID, 5).Return(recent, nil)
	m.progress.On("ListForUser", mock.Anything, userID).Return(progress, nil)
	m.users.On("SessionCounter", mock.Anything, userID).Return(counter, nil)
}

func TestGetNextWord_SingleUnseenWord(t *testing.T) {
	svc, m := newStudyService(t)
	ctx := context.Background()

	m.users.On("Ensure", mock.Anything, int64(1)).Return(&models.User{ID: 1}, nil)
	m.expectReads(1, []int64{10}, []int64{}, map[int64]models.WordProgress{}, 0)
	m.progress.On("CommitShown", mock.Anything, mock.MatchedBy(func(c models.ShownCommit) bool {
		return c.UserID == 1 && c.WordID == 10 && assert.ObjectsAreEqual([]int64{10}, c.Options)
	})).Return(&models.ShownResult{
		WordID:   10,
		Position: 1,
		Options:  []int64{10},
		Progress: models.WordProgress{UserID: 1, WordID: 10, ShownCount: 1, ExpErrorRate: 0.5, LastShownPosition: 1},
	}, nil)
	m.words.On("GetByIDs", mock.Anything, []int64{10, 10}).Return(wordsByID(10), nil)

	next, err := svc.GetNextWord(ctx, 1, svc.Defaults())
	require.NoError(t, err)

	assert.Equal(t, int64(10), next.Word.ID)
	assert.Equal(t, int64(10), next.CorrectID)
	assert.Len(t, next.Options, 1)
	assert.Equal(t, int64(1), next.Position)
	assert.False(t, next.Replayed)
}

func TestGetNextWord_PrefersFreshWordOverRecentHardWord(t *testing.T) {
	svc, m := newStudyService(t)

	m.users.On("Ensure", mock.Anything, int64(1)).Return(&models.User{ID: 1}, nil)
	m.expectReads(1, []int64{1, 2}, []int64{}, map[int64]models.WordProgress{
		1: {UserID: 1, WordID: 1, ShownCount: 3, LastShownPosition: 10, ExpErrorRate: 0.9},
	}, 15)
	m.progress.On("CommitShown", mock.Anything, mock.MatchedBy(func(c models.ShownCommit) bool {
		return c.WordID == 2 && len(c.Options) == 2
	})).Return(&models.ShownResult{WordID: 2, Position: 16, Options: []int64{1, 2}}, nil)
	m.words.On("GetByIDs", mock.Anything, mock.Anything).Return(wordsByID(1, 2), nil)

	next, err := svc.GetNextWord(context.Background(), 1, svc.Defaults())
	require.NoError(t, err)
	assert.Equal(t, int64(2), next.Word.ID)
	assert.Len(t, next.Options, 2)
}

func TestGetNextWord_EmptyPool(t *testing.T) {
	svc, m := newStudyService(t)

	m.users.On("Ensure", mock.Anything, int64(1)).Return(&models.User{ID: 1}, nil)
	m.words.On("CandidateIDs", mock.Anything, int64(1)).Return([]int64{}, nil)

	next, err := svc.GetNextWord(context.Background(), 1, svc.Defaults())

	assert.Nil(t, next)
	assert.True(t, errors.HasCode(err, errors.ErrCodeNoWords))
	m.progress.AssertNotCalled(t, "CommitShown", mock.Anything, mock.Anything)
}

func TestGetNextWord_RetriesOnConflict(t *testing.T) {
	svc, m := newStudyService(t)

	m.users.On("Ensure", mock.Anything, int64(1)).Return(&models.User{ID: 1}, nil)
	m.expectReads(1, []int64{1}, []int64{}, map[int64]models.WordProgress{}, 0)
	m.progress.On("CommitShown", mock.Anything, mock.Anything).Return(nil, repository.ErrConflict).Once()
	m.progress.On("CommitShown", mock.Anything, mock.Anything).Return(&models.ShownResult{WordID: 1, Position: 1, Options: []int64{1}}, nil).Once()
	m.words.On("GetByIDs", mock.Anything, mock.Anything).Return(wordsByID(1), nil)

	next, err := svc.GetNextWord(context.Background(), 1, svc.Defaults())
	require.NoError(t, err)
	assert.Equal(t, int64(1), next.Word.ID)

	m.progress.AssertNumberOfCalls(t, "CommitShown", 2)
	m.words.AssertNumberOfCalls(t, "CandidateIDs", 2)
}

func TestGetNextWord_ConflictExhausted(t *testing.T) {
	svc, m := newStudyService(t)

	m.users.On("Ensure", mock.Anything, int64(1)).Return(&models.User{ID: 1}, nil)
	m.expectReads(1, []int64{1}, []int64{}, map[int64]models.WordProgress{}, 0)
	m.progress.On("CommitShown", mock.Anything, mock.Anything).Return(nil, repository.ErrConflict)

	_, err := svc.GetNextWord(context.Background(), 1, svc.Defaults())

	appErr, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeConflict, appErr.Code)
	assert.True(t, appErr.Retryable)
	m.progress.AssertNumberOfCalls(t, "CommitShown", 3)
}

func TestGetNextWord_StoreUnavailable(t *testing.T) {
	svc, m := newStudyService(t)

	m.users.On("Ensure", mock.Anything, int64(1)).Return(nil, repository.ErrUnavailable)

	_, err := svc.GetNextWord(context.Background(), 1, svc.Defaults())

	appErr, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeStoreUnavailable, appErr.Code)
	assert.True(t, appErr.Retryable)
}

func TestGetNextWord_CancelledBeforeCommit(t *testing.T) {
	svc, m := newStudyService(t)
	ctx, cancel := context.WithCancel(context.Background())

	m.users.On("Ensure", mock.Anything, int64(1)).Return(&models.User{ID: 1}, nil)
	m.words.On("CandidateIDs", mock.Anything, int64(1)).Return([]int64{1, 2}, nil)
	m.progress.On("RecentlyShown", mock.Anything, int64(1), 5).Return([]int64{}, nil)
	m.progress.On("ListForUser", mock.Anything, int64(1)).Return(map[int64]models.WordProgress{}, nil)
	m.users.On("SessionCounter", mock.Anything, int64(1)).Return(int64(0), nil).Run(func(mock.Arguments) { cancel() })

	_, err := svc.GetNextWord(ctx, 1, svc.Defaults())

	assert.ErrorIs(t, err, context.Canceled)
	m.progress.AssertNotCalled(t, "CommitShown", mock.Anything, mock.Anything)
}

func TestGetNextWord_ReplaysRequestID(t *testing.T) {
	svc, m := newStudyService(t)

	m.progress.On("FindShownByRequest", mock.Anything, int64(1), "abc").Return(&models.ShownResult{
		WordID: 3, Position: 7, Options: []int64{4, 3}, Replayed: true,
	}, nil)
	m.words.On("GetByIDs", mock.Anything, []int64{3, 4, 3}).Return(wordsByID(3, 4), nil)

	opts := svc.Defaults()
	opts.RequestID = "abc"
	next, err := svc.GetNextWord(context.Background(), 1, opts)
	require.NoError(t, err)

	assert.True(t, next.Replayed)
	assert.Equal(t, int64(3), next.CorrectID)
	assert.Equal(t, int64(7), next.Position)
	assert.Equal(t, int64(4), next.Options[0].ID)
	m.users.AssertNotCalled(t, "Ensure", mock.Anything, mock.Anything)
}

func TestGetNextWord_NewRequestIDIsCommittedWithTheShow(t *testing.T) {
	svc, m := newStudyService(t)

	m.progress.On("FindShownByRequest", mock.Anything, int64(1), "fresh").Return(nil, repository.ErrNotFound)
	m.users.On("Ensure", mock.Anything, int64(1)).Return(&models.User{ID: 1}, nil)
	m.expectReads(1, []int64{1}, []int64{}, map[int64]models.WordProgress{}, 0)
	m.progress.On("CommitShown", mock.Anything, mock.MatchedBy(func(c models.ShownCommit) bool {
		return c.RequestID == "fresh"
	})).Return(&models.ShownResult{WordID: 1, Position: 1, Options: []int64{1}}, nil)
	m.words.On("GetByIDs", mock.Anything, mock.Anything).Return(wordsByID(1), nil)

	opts := svc.Defaults()
	opts.RequestID = "fresh"
	_, err := svc.GetNextWord(context.Background(), 1, opts)
	require.NoError(t, err)
}

func TestGetNextWord_Validation(t *testing.T) {
	svc, _ := newStudyService(t)
	ctx := context.Background()

	_, err := svc.GetNextWord(ctx, 0, svc.Defaults())
	assert.True(t, errors.HasCode(err, errors.ErrCodeValidation))

	_, err = svc.GetNextWord(ctx, 1, services.NextWordOptions{ExcludeLastN: -1, Alpha: 2})
	assert.True(t, errors.HasCode(err, errors.ErrCodeValidation))

	_, err = svc.GetNextWord(ctx, 1, services.NextWordOptions{ExcludeLastN: 5, Alpha: -1})
	assert.True(t, errors.HasCode(err, errors.ErrCodeValidation))
}

func TestDefaults(t *testing.T) {
	svc, _ := newStudyService(t)

	d := svc.Defaults()
	assert.Equal(t, 5, d.ExcludeLastN)
	assert.Equal(t, 2.0, d.Alpha)
	assert.Empty(t, d.RequestID)
}

func TestRecordAnswer(t *testing.T) {
	svc, m := newStudyService(t)

	m.words.On("Exists", mock.Anything, int64(5)).Return(true, nil)
	m.users.On("Ensure", mock.Anything, int64(1)).Return(&models.User{ID: 1}, nil)
	m.progress.On("CommitAnswer", mock.Anything, mock.MatchedBy(func(c models.AnswerCommit) bool {
		return c.UserID == 1 && c.WordID == 5 && c.IsCorrect
	})).Return(&models.WordProgress{UserID: 1, WordID: 5, ShownCount: 1, CorrectCount: 1}, nil)

	p, err := svc.RecordAnswer(context.Background(), 1, 5, true)
	require.NoError(t, err)
	assert.Equal(t, 1, p.CorrectCount)
}

func TestRecordAnswer_UnknownWord(t *testing.T) {
	svc, m := newStudyService(t)

	m.words.On("Exists", mock.Anything, int64(99)).Return(false, nil)

	_, err := svc.RecordAnswer(context.Background(), 1, 99, false)
	assert.True(t, errors.HasCode(err, errors.ErrCodeNotFound))
	m.progress.AssertNotCalled(t, "CommitAnswer", mock.Anything, mock.Anything)
}

func TestRecordAnswer_RetriesOnConflict(t *testing.T) {
	svc, m := newStudyService(t)

	m.words.On("Exists", mock.Anything, int64(5)).Return(true, nil)
	m.users.On("Ensure", mock.Anything, int64(1)).Return(&models.User{ID: 1}, nil)
	m.progress.On("CommitAnswer", mock.Anything, mock.Anything).Return(nil, repository.ErrConflict).Once()
	m.progress.On("CommitAnswer", mock.Anything, mock.Anything).Return(&models.WordProgress{ErrorCount: 1}, nil).Once()

	p, err := svc.RecordAnswer(context.Background(), 1, 5, false)
	require.NoError(t, err)
	assert.Equal(t, 1, p.ErrorCount)
	m.progress.AssertNumberOfCalls(t, "CommitAnswer", 2)
}

func TestRecordAnswer_Validation(t *testing.T) {
	svc, _ := newStudyService(t)

	_, err := svc.RecordAnswer(context.Background(), 1, 0, true)
	assert.True(t, errors.HasCode(err, errors.ErrCodeValidation))

	_, err = svc.RecordAnswer(context.Background(), -3, 1, true)
	assert.True(t, errors.HasCode(err, errors.ErrCodeValidation))
}
