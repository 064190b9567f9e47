package postgres_test

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/suite"
	"github.com/vytor/wordflash/internal/models"
	"github.com/vytor/wordflash/internal/repository"
	"github.com/vytor/wordflash/internal/repository/postgres"
	"github.com/vytor/wordflash/internal/scheduler"
)

// PostgresSuite runs against a real server. Set WORDFLASH_TEST_DATABASE_URL to enable it;
// the suite truncates every table it touches.
type PostgresSuite struct {
	suite.Suite
	pool      *pgxpool.Pool
	words     repository.WordRepository
	users     repository.UserRepository
	progress  repository.ProgressRepository
	reconcile repository.ReconcileRepository
	wordIDs   []int64
}

const userID int64 = 1

func (s *PostgresSuite) SetupSuite() {
	dsn := os.Getenv("WORDFLASH_TEST_DATABASE_URL")
	if dsn == "" {
		s.T().Skip("WORDFLASH_TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, dsn, postgres.PoolConfig{MaxConns: 8})
	s.Require().NoError(err)
	s.Require().NoError(postgres.Migrate(ctx, pool))
	s.Require().NoError(postgres.Migrate(ctx, pool), "migrations are idempotent")

	tx := postgres.NewTransactor(pool)
	s.pool = pool
	s.words = postgres.NewWordRepository(pool)
	s.users = postgres.NewUserRepository(pool)
	s.progress = postgres.NewProgressRepository(pool, tx)
	s.reconcile = postgres.NewReconcileRepository(pool, tx)
}

func (s *PostgresSuite) TearDownSuite() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *PostgresSuite) SetupTest() {
	ctx := context.Background()
	_, err := s.pool.Exec(ctx, `TRUNCATE progress_corrections, user_word_events, word_progress, user_word_sets, word_set_words, word_sets, words, users RESTART IDENTITY CASCADE`)
	s.Require().NoError(err)

	s.wordIDs = nil
	for i := 1; i <= 5; i++ {
		id, err := s.words.UpsertWord(ctx, models.Word{English: fmt.Sprintf("w%d", i), Native: fmt.Sprintf("n%d", i)})
		s.Require().NoError(err)
		s.wordIDs = append(s.wordIDs, id)
	}
	_, err = s.users.Ensure(ctx, userID)
	s.Require().NoError(err)
}

func (s *PostgresSuite) show(wordID int64, requestID string) *models.ShownResult {
	res, err := s.progress.CommitShown(context.Background(), models.ShownCommit{
		UserID: userID, WordID: wordID, Options: []int64{wordID}, RequestID: requestID, At: time.Now(),
	})
	s.Require().NoError(err)
	return res
}

func (s *PostgresSuite) TestShownAndAnswer() {
	ctx := context.Background()
	w := s.wordIDs[0]

	res := s.show(w, "")
	s.Assert().Equal(int64(1), res.Position)
	s.Assert().Equal(1, res.Progress.ShownCount)
	s.Assert().Equal(0.5, res.Progress.ExpErrorRate)

	p, err := s.progress.CommitAnswer(ctx, models.AnswerCommit{UserID: userID, WordID: w, IsCorrect: false, At: time.Now()})
	s.Require().NoError(err)
	s.Assert().Equal(1, p.ErrorCount)
	s.Assert().Equal(0, p.CorrectCount)
	s.Assert().Equal(1, p.ShownCount)
	s.Assert().Equal(0.75, p.ExpErrorRate)

	events, err := s.progress.EventsFor(ctx, userID, w)
	s.Require().NoError(err)
	s.Require().Len(events, 2)
	s.Assert().Equal(models.EventShown, events[0].EventType)
	s.Assert().Equal(models.EventAnswered, events[1].EventType)
	s.Require().NotNil(events[1].IsCorrect)
	s.Assert().False(*events[1].IsCorrect)
}

func (s *PostgresSuite) TestAnswerWithoutExposure() {
	p, err := s.progress.CommitAnswer(context.Background(), models.AnswerCommit{UserID: userID, WordID: s.wordIDs[1], IsCorrect: true, At: time.Now()})
	s.Require().NoError(err)

	s.Assert().Equal(1, p.ShownCount)
	s.Assert().Equal(1, p.CorrectCount)
	s.Assert().Equal(0.0, p.ExpErrorRate)
}

func (s *PostgresSuite) TestAnswerWithoutExposureRanksBelowLastShown() {
	ctx := context.Background()
	s.show(s.wordIDs[0], "")

	_, err := s.progress.CommitAnswer(ctx, models.AnswerCommit{UserID: userID, WordID: s.wordIDs[1], IsCorrect: true, At: time.Now()})
	s.Require().NoError(err)

	recent, err := s.progress.RecentlyShown(ctx, userID, 1)
	s.Require().NoError(err)
	s.Assert().Equal([]int64{s.wordIDs[0]}, recent)
}

func (s *PostgresSuite) TestReplay() {
	first := s.show(s.wordIDs[0], "req-a")
	again := s.show(s.wordIDs[2], "req-a")

	s.Assert().True(again.Replayed)
	s.Assert().Equal(first.WordID, again.WordID)
	s.Assert().Equal(first.Position, again.Position)

	counter, err := s.users.SessionCounter(context.Background(), userID)
	s.Require().NoError(err)
	s.Assert().Equal(int64(1), counter)
}

func (s *PostgresSuite) TestConcurrentShowsKeepCounterExact() {
	const n = 20
	var wg sync.WaitGroup
	positions := make(chan int64, n)
	errs := make(chan error, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := s.progress.CommitShown(context.Background(), models.ShownCommit{
				UserID: userID, WordID: s.wordIDs[i%len(s.wordIDs)], At: time.Now(),
			})
			if err != nil {
				errs <- err
				return
			}
			positions <- res.Position
		}(i)
	}
	wg.Wait()
	close(positions)
	close(errs)

	for err := range errs {
		s.Require().NoError(err)
	}
	seen := map[int64]bool{}
	for p := range positions {
		s.Assert().False(seen[p], "position %d handed out twice", p)
		seen[p] = true
	}
	s.Assert().Len(seen, n)

	counter, err := s.users.SessionCounter(context.Background(), userID)
	s.Require().NoError(err)
	s.Assert().Equal(int64(n), counter)
}

func (s *PostgresSuite) TestReconcile() {
	ctx := context.Background()
	s.show(s.wordIDs[0], "")
	_, err := s.pool.Exec(ctx, `UPDATE word_progress SET shown_count = 3 WHERE word_id = $1`, s.wordIDs[0])
	s.Require().NoError(err)

	mismatches, err := s.reconcile.ShownCountMismatches(ctx)
	s.Require().NoError(err)
	s.Require().Len(mismatches, 1)
	s.Assert().Equal(3, mismatches[0].StoredShown)
	s.Assert().Equal(1, mismatches[0].EventShown)

	suspicious, err := s.reconcile.SuspiciousRecords(ctx, scheduler.SuspiciousRatio)
	s.Require().NoError(err)
	s.Assert().Len(suspicious, 1)

	corrections, err := s.reconcile.ApplyCorrections(ctx, mismatches, time.Now())
	s.Require().NoError(err)
	s.Require().Len(corrections, 1)
	s.Assert().Equal(1, corrections[0].NewValue)

	again, err := s.reconcile.ShownCountMismatches(ctx)
	s.Require().NoError(err)
	s.Assert().Empty(again)
}

func (s *PostgresSuite) TestCandidateScoping() {
	ctx := context.Background()
	setID, err := s.words.UpsertWordSet(ctx, models.WordSet{Name: "basics"})
	s.Require().NoError(err)
	s.Require().NoError(s.words.AddToWordSet(ctx, setID, s.wordIDs[3]))
	s.Require().NoError(s.words.AssignWordSet(ctx, userID, setID))

	ids, err := s.words.CandidateIDs(ctx, userID)
	s.Require().NoError(err)
	s.Assert().Equal([]int64{s.wordIDs[3]}, ids)

	recent, err := s.progress.RecentlyShown(ctx, userID, 5)
	s.Require().NoError(err)
	s.Assert().Empty(recent)
}

func TestPostgresSuite(t *testing.T) {
	suite.Run(t, new(PostgresSuite))
}
