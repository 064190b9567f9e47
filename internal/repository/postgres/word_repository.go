package postgres

import (
	"context"
	"errors"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vytor/wordflash/internal/logger"
	"github.com/vytor/wordflash/internal/models"
	"github.com/vytor/wordflash/internal/repository"
)

type wordRepository struct {
	db *pgxpool.Pool
}

// NewWordRepository creates a PostgreSQL WordRepository.
func NewWordRepository(db *pgxpool.Pool) repository.WordRepository {
	return &wordRepository{db: db}
}

func (r *wordRepository) CandidateIDs(ctx context.Context, userID int64) ([]int64, error) {
	log := logger.FromContext(ctx).WithPrefix("word_repo")

	var assigned bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM user_word_sets WHERE user_id = $1)`, userID).Scan(&assigned); err != nil {
		log.Error("failed to check assigned word sets: %v", err)
		return nil, classify(err)
	}

	query := sqlBuilder.Select("w.id").From("words w").OrderBy("w.id")
	if assigned {
		query = sqlBuilder.Select("DISTINCT wsw.word_id").
			From("word_set_words wsw").
			Join("user_word_sets uws ON uws.word_set_id = wsw.word_set_id").
			Where(squirrel.Eq{"uws.user_id": userID}).
			OrderBy("wsw.word_id")
	}

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sqlStr, args...)
	if err != nil {
		log.Error("failed to query candidates: %v", err)
		return nil, classify(err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, classify(err)
	}
	log.Debug("candidate pool: user_id=%d, scoped=%t, size=%d", userID, assigned, len(ids))
	return ids, nil
}

func (r *wordRepository) GetByIDs(ctx context.Context, ids []int64) (map[int64]models.Word, error) {
	words := make(map[int64]models.Word, len(ids))
	if len(ids) == 0 {
		return words, nil
	}

	rows, err := r.db.Query(ctx, `SELECT id, english, native, audio_path FROM words WHERE id = ANY($1)`, ids)
	if err != nil {
		logger.FromContext(ctx).WithPrefix("word_repo").Error("failed to query words: %v", err)
		return nil, classify(err)
	}
	defer rows.Close()

	for rows.Next() {
		var w models.Word
		if err := rows.Scan(&w.ID, &w.English, &w.Native, &w.AudioPath); err != nil {
			return nil, err
		}
		words[w.ID] = w
	}
	return words, classify(rows.Err())
}

func (r *wordRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var ok bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM words WHERE id = $1)`, id).Scan(&ok); err != nil {
		return false, classify(err)
	}
	return ok, nil
}

func (r *wordRepository) UpsertWord(ctx context.Context, w models.Word) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO words (english, native, audio_path)
		VALUES ($1, $2, $3)
		ON CONFLICT (english) DO UPDATE SET
			native = excluded.native,
			audio_path = CASE WHEN excluded.audio_path <> '' THEN excluded.audio_path ELSE words.audio_path END
		RETURNING id
	`, w.English, w.Native, w.AudioPath).Scan(&id)
	if err != nil {
		logger.FromContext(ctx).WithPrefix("word_repo").Error("failed to upsert word: %v", err)
		return 0, classify(err)
	}
	return id, nil
}

func (r *wordRepository) UpsertWordSet(ctx context.Context, set models.WordSet) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO word_sets (name, description)
		VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET
			description = CASE WHEN excluded.description <> '' THEN excluded.description ELSE word_sets.description END
		RETURNING id
	`, set.Name, set.Description).Scan(&id)
	if err != nil {
		logger.FromContext(ctx).WithPrefix("word_repo").Error("failed to upsert word set: %v", err)
		return 0, classify(err)
	}
	return id, nil
}

func (r *wordRepository) FindWordSet(ctx context.Context, name string) (*models.WordSet, error) {
	var s models.WordSet
	err := r.db.QueryRow(ctx, `SELECT id, name, description FROM word_sets WHERE name = $1`, name).
		Scan(&s.ID, &s.Name, &s.Description)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, classify(err)
	}
	return &s, nil
}

func (r *wordRepository) AddToWordSet(ctx context.Context, setID, wordID int64) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO word_set_words (word_set_id, word_id) VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`, setID, wordID)
	return classify(err)
}

func (r *wordRepository) AssignWordSet(ctx context.Context, userID, setID int64) error {
	logger.FromContext(ctx).WithPrefix("word_repo").Debug("assigning word set: user_id=%d, set_id=%d", userID, setID)
	_, err := r.db.Exec(ctx, `
		INSERT INTO user_word_sets (user_id, word_set_id) VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`, userID, setID)
	return classify(err)
}
