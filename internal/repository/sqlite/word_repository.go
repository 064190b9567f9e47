package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/wordflash/internal/logger"
	"github.com/vytor/wordflash/internal/models"
	"github.com/vytor/wordflash/internal/repository"
)

type wordRepository struct {
	db *sql.DB
}

// NewWordRepository creates a new WordRepository implementation
func NewWordRepository(db *sql.DB) repository.WordRepository {
	return &wordRepository{db: db}
}

func (r *wordRepository) CandidateIDs(ctx context.Context, userID int64) ([]int64, error) {
	log := logger.FromContext(ctx).WithPrefix("word_repo")
	log.Debug("loading candidate pool: user_id=%d", userID)

	var assigned int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM user_word_sets WHERE user_id = ?`, userID).Scan(&assigned); err != nil {
		log.Error("failed to count assigned word sets: %v", err)
		return nil, classify(err)
	}

	query := sqlBuilder.Select("w.id").From("words w").OrderBy("w.id")
	if assigned > 0 {
		query = sqlBuilder.Select("DISTINCT wsw.word_id").
			From("word_set_words wsw").
			Join("user_word_sets uws ON uws.word_set_id = wsw.word_set_id").
			Where(squirrel.Eq{"uws.user_id": userID}).
			OrderBy("wsw.word_id")
	}

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build candidate query: %v", err)
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		log.Error("failed to query candidates: %v", err)
		return nil, classify(err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			log.Error("failed to scan candidate id: %v", err)
			return nil, err
		}
		ids = append(ids, id)
	}
	log.Debug("candidate pool: user_id=%d, sets=%d, size=%d", userID, assigned, len(ids))
	return ids, classify(rows.Err())
}

func (r *wordRepository) GetByIDs(ctx context.Context, ids []int64) (map[int64]models.Word, error) {
	log := logger.FromContext(ctx).WithPrefix("word_repo")
	words := make(map[int64]models.Word, len(ids))
	if len(ids) == 0 {
		return words, nil
	}

	sqlStr, args, err := sqlBuilder.Select("id", "english", "native", "audio_path").
		From("words").
		Where(squirrel.Eq{"id": ids}).
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		log.Error("failed to query words: %v", err)
		return nil, classify(err)
	}
	defer rows.Close()

	for rows.Next() {
		var w models.Word
		if err := rows.Scan(&w.ID, &w.English, &w.Native, &w.AudioPath); err != nil {
			log.Error("failed to scan word row: %v", err)
			return nil, err
		}
		words[w.ID] = w
	}
	log.Debug("loaded %d of %d words", len(words), len(ids))
	return words, classify(rows.Err())
}

func (r *wordRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM words WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		logger.FromContext(ctx).WithPrefix("word_repo").Error("failed to check word: %v", err)
		return false, classify(err)
	}
	return true, nil
}

func (r *wordRepository) UpsertWord(ctx context.Context, w models.Word) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("word_repo")
	log.Debug("upserting word: english=%s", w.English)

	var id int64
	err := r.db.QueryRowContext(ctx, `
INSERT INTO words (english, native, audio_path)
VALUES (?, ?, ?)
ON CONFLICT(english) DO UPDATE SET
    native = excluded.native,
    audio_path = CASE WHEN excluded.audio_path <> '' THEN excluded.audio_path ELSE words.audio_path END
RETURNING id
`, w.English, w.Native, w.AudioPath).Scan(&id)
	if err != nil {
		log.Error("failed to upsert word: %v", err)
		return 0, classify(err)
	}
	return id, nil
}

func (r *wordRepository) UpsertWordSet(ctx context.Context, set models.WordSet) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("word_repo")
	log.Debug("upserting word set: name=%s", set.Name)

	var id int64
	err := r.db.QueryRowContext(ctx, `
INSERT INTO word_sets (name, description)
VALUES (?, ?)
ON CONFLICT(name) DO UPDATE SET
    description = CASE WHEN excluded.description <> '' THEN excluded.description ELSE word_sets.description END
RETURNING id
`, set.Name, set.Description).Scan(&id)
	if err != nil {
		log.Error("failed to upsert word set: %v", err)
		return 0, classify(err)
	}
	return id, nil
}

func (r *wordRepository) FindWordSet(ctx context.Context, name string) (*models.WordSet, error) {
	var s models.WordSet
	err := r.db.QueryRowContext(ctx, `SELECT id, name, description FROM word_sets WHERE name = ?`, name).
		Scan(&s.ID, &s.Name, &s.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		logger.FromContext(ctx).WithPrefix("word_repo").Error("failed to find word set: %v", err)
		return nil, classify(err)
	}
	return &s, nil
}

func (r *wordRepository) AddToWordSet(ctx context.Context, setID, wordID int64) error {
	_, err := r.db.ExecContext(ctx, `INSERT OR IGNORE INTO word_set_words (word_set_id, word_id) VALUES (?, ?)`, setID, wordID)
	if err != nil {
		logger.FromContext(ctx).WithPrefix("word_repo").Error("failed to add word %d to set %d: %v", wordID, setID, err)
	}
	return classify(err)
}

func (r *wordRepository) AssignWordSet(ctx context.Context, userID, setID int64) error {
	log := logger.FromContext(ctx).WithPrefix("word_repo")
	log.Debug("assigning word set: user_id=%d, set_id=%d", userID, setID)

	_, err := r.db.ExecContext(ctx, `INSERT OR IGNORE INTO user_word_sets (user_id, word_set_id) VALUES (?, ?)`, userID, setID)
	if err != nil {
		log.Error("failed to assign word set: %v", err)
	}
	return classify(err)
}
