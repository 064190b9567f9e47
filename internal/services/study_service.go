package services

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/vytor/wordflash/internal/errors"
	"github.com/vytor/wordflash/internal/logger"
	"github.com/vytor/wordflash/internal/models"
	"github.com/vytor/wordflash/internal/repository"
	"github.com/vytor/wordflash/internal/scheduler"
)

// NextWordOptions tunes a single GetNextWord call.
type NextWordOptions struct {
	ExcludeLastN int
	Alpha        float64
	// RequestID makes the call idempotent: a repeat returns the stored result.
	RequestID string
}

// StudyService serves words to users and records their answers
type StudyService interface {
	Defaults() NextWordOptions
	GetNextWord(ctx context.Context, userID int64, opts NextWordOptions) (*models.NextWord, error)
	RecordAnswer(ctx context.Context, userID, wordID int64, isCorrect bool) (*models.WordProgress, error)
}

// StudyConfig carries the tunables the study service needs.
type StudyConfig struct {
	ExcludeLast int
	Retry       RetryPolicy
}

type studyService struct {
	words    repository.WordRepository
	users    repository.UserRepository
	progress repository.ProgressRepository
	policy   *scheduler.Policy
	options  *scheduler.OptionGenerator
	cfg      StudyConfig
	now      func() time.Time
}

// NewStudyService creates a new StudyService
func NewStudyService(
	words repository.WordRepository,
	users repository.UserRepository,
	progress repository.ProgressRepository,
	policy *scheduler.Policy,
	options *scheduler.OptionGenerator,
	cfg StudyConfig,
) StudyService {
	return &studyService{
		words:    words,
		users:    users,
		progress: progress,
		policy:   policy,
		options:  options,
		cfg:      cfg,
		now:      time.Now,
	}
}

func (s *studyService) Defaults() NextWordOptions {
	return NextWordOptions{ExcludeLastN: s.cfg.ExcludeLast, Alpha: s.policy.Alpha}
}

func (s *studyService) GetNextWord(ctx context.Context, userID int64, opts NextWordOptions) (*models.NextWord, error) {
	log := logger.FromContext(ctx).WithPrefix("study").WithField("user_id", userID)
	log.Debug("getting next word: exclude_last=%d, alpha=%.2f", opts.ExcludeLastN, opts.Alpha)

	if userID <= 0 {
		return nil, errors.NewValidationError("user_id", "must be positive")
	}
	if opts.ExcludeLastN < 0 {
		return nil, errors.NewValidationError("exclude_last", "cannot be negative")
	}
	if opts.Alpha < 0 {
		return nil, errors.NewValidationError("alpha", "cannot be negative")
	}

	if opts.RequestID != "" {
		prev, err := s.progress.FindShownByRequest(ctx, userID, opts.RequestID)
		switch {
		case err == nil:
			log.Info("replaying request: request_id=%s, word_id=%d", opts.RequestID, prev.WordID)
			return s.buildNextWord(ctx, prev)
		case !stderrors.Is(err, repository.ErrNotFound):
			log.Error("failed to look up request: %v", err)
			return nil, storeError(err, "request", opts.RequestID)
		}
	}

	if _, err := s.users.Ensure(ctx, userID); err != nil {
		log.Error("failed to ensure user: %v", err)
		return nil, storeError(err, "user", userID)
	}

	policy := s.policy.WithAlpha(opts.Alpha)
	var result *models.ShownResult
	err := withRetry(ctx, s.cfg.Retry, "get next word", func(ctx context.Context) error {
		pool, err := s.words.CandidateIDs(ctx, userID)
		if err != nil {
			return err
		}
		if len(pool) == 0 {
			return scheduler.ErrEmptyPool
		}

		recent, err := s.progress.RecentlyShown(ctx, userID, opts.ExcludeLastN)
		if err != nil {
			return err
		}
		progress, err := s.progress.ListForUser(ctx, userID)
		if err != nil {
			return err
		}
		counter, err := s.users.SessionCounter(ctx, userID)
		if err != nil {
			return err
		}

		candidates := make([]scheduler.Candidate, 0, len(pool))
		for _, id := range pool {
			c := scheduler.Candidate{WordID: id}
			if p, ok := progress[id]; ok {
				c.Progress = &p
			}
			candidates = append(candidates, c)
		}

		sel, err := policy.SelectNext(candidates, recent, counter)
		if err != nil {
			return err
		}
		if sel.Widened {
			log.Debug("exclusion window covered the whole pool, using all %d candidates", sel.Pool)
		}
		log.Debug("selected word: word_id=%d, age=%.0f, error_rate=%.3f, weight=%.3f", sel.WordID, sel.Age, sel.ErrorRate, sel.Weight)

		options := s.options.Generate(sel.WordID, pool)

		// nothing is written once the caller has gone away
		if err := ctx.Err(); err != nil {
			return err
		}

		result, err = s.progress.CommitShown(ctx, models.ShownCommit{
			UserID:    userID,
			WordID:    sel.WordID,
			Options:   options,
			RequestID: opts.RequestID,
			At:        s.now(),
		})
		return err
	})
	if stderrors.Is(err, scheduler.ErrEmptyPool) {
		log.Info("no words available")
		return nil, errors.NewNoWordsError()
	}
	if err != nil {
		log.Error("failed to get next word: %v", err)
		return nil, storeError(err, "user", userID)
	}

	// the exposure is committed; finish the response even if the caller cancels now
	return s.buildNextWord(context.WithoutCancel(ctx), result)
}

func (s *studyService) buildNextWord(ctx context.Context, res *models.ShownResult) (*models.NextWord, error) {
	ids := make([]int64, 0, len(res.Options)+1)
	ids = append(ids, res.WordID)
	ids = append(ids, res.Options...)

	words, err := s.words.GetByIDs(ctx, ids)
	if err != nil {
		logger.FromContext(ctx).WithPrefix("study").Error("failed to load word details: %v", err)
		return nil, storeError(err, "word", res.WordID)
	}

	word, ok := words[res.WordID]
	if !ok {
		return nil, errors.NewNotFoundError("word", res.WordID)
	}

	options := make([]models.Word, 0, len(res.Options))
	for _, id := range res.Options {
		if w, ok := words[id]; ok {
			options = append(options, w)
		}
	}
	if len(options) == 0 {
		options = append(options, word)
	}

	return &models.NextWord{
		Word:      word,
		Options:   options,
		CorrectID: word.ID,
		Position:  res.Position,
		Replayed:  res.Replayed,
	}, nil
}

func (s *studyService) RecordAnswer(ctx context.Context, userID, wordID int64, isCorrect bool) (*models.WordProgress, error) {
	log := logger.FromContext(ctx).WithPrefix("study").WithFields(map[string]any{"user_id": userID, "word_id": wordID})
	log.Debug("recording answer: correct=%t", isCorrect)

	if userID <= 0 {
		return nil, errors.NewValidationError("user_id", "must be positive")
	}
	if wordID <= 0 {
		return nil, errors.NewValidationError("word_id", "must be positive")
	}

	exists, err := s.words.Exists(ctx, wordID)
	if err != nil {
		log.Error("failed to check word: %v", err)
		return nil, storeError(err, "word", wordID)
	}
	if !exists {
		return nil, errors.NewNotFoundError("word", wordID)
	}

	if _, err := s.users.Ensure(ctx, userID); err != nil {
		log.Error("failed to ensure user: %v", err)
		return nil, storeError(err, "user", userID)
	}

	var progress *models.WordProgress
	err = withRetry(ctx, s.cfg.Retry, "record answer", func(ctx context.Context) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		p, err := s.progress.CommitAnswer(ctx, models.AnswerCommit{
			UserID:    userID,
			WordID:    wordID,
			IsCorrect: isCorrect,
			At:        s.now(),
		})
		progress = p
		return err
	})
	if err != nil {
		log.Error("failed to record answer: %v", err)
		return nil, storeError(err, "word", wordID)
	}

	log.Debug("answer recorded: answered=%d, errors=%d, error_rate=%.3f", progress.Answered(), progress.ErrorCount, progress.ExpErrorRate)
	return progress, nil
}
