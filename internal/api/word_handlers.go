package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/vytor/wordflash/internal/errors"
	"github.com/vytor/wordflash/internal/logger"
	"github.com/vytor/wordflash/internal/models"
)

const idempotencyKeyHeader = "Idempotency-Key"

type nextWordResponse struct {
	Status    string        `json:"status"`
	Word      *models.Word  `json:"word"`
	Options   []models.Word `json:"options,omitempty"`
	CorrectID int64         `json:"correct_id,omitempty"`
	Position  int64         `json:"position,omitempty"`
	Replayed  bool          `json:"replayed,omitempty"`
}

type answerRequest struct {
	IsCorrect *bool `json:"is_correct"`
}

func (s *Server) handleNextWord(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)
	userID := userIDFromContext(ctx)

	opts := s.Study.Defaults()
	var err error
	if opts.ExcludeLastN, err = queryInt(r, "exclude_last", opts.ExcludeLastN); err != nil {
		handleError(w, r, err)
		return
	}
	if opts.Alpha, err = queryFloat(r, "alpha", opts.Alpha); err != nil {
		handleError(w, r, err)
		return
	}
	opts.RequestID = r.Header.Get(idempotencyKeyHeader)

	next, err := s.Study.GetNextWord(ctx, userID, opts)
	if errors.HasCode(err, errors.ErrCodeNoWords) {
		log.Debug("no words available for user")
		writeJSON(w, r, http.StatusOK, nextWordResponse{Status: "no_words"})
		return
	}
	if err != nil {
		handleError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, nextWordResponse{
		Status:    "ok",
		Word:      &next.Word,
		Options:   next.Options,
		CorrectID: next.CorrectID,
		Position:  next.Position,
		Replayed:  next.Replayed,
	})
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)

	idStr := chi.URLParam(r, "id")
	wordID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		log.Warn("invalid word id: %s", idStr)
		handleError(w, r, errors.NewValidationError("id", "must be an integer"))
		return
	}

	var req answerRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	if req.IsCorrect == nil {
		handleError(w, r, errors.NewValidationError("is_correct", "is required"))
		return
	}

	if _, err := s.Study.RecordAnswer(ctx, userIDFromContext(ctx), wordID, *req.IsCorrect); err != nil {
		handleError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]string{"status": "success"})
}
