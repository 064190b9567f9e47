package importer

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vytor/wordflash/internal/logger"
	"github.com/vytor/wordflash/internal/models"
	"github.com/vytor/wordflash/internal/repository"
)

// Result summarizes an import run.
type Result struct {
	Processed   int
	Imported    int
	Skipped     int
	SetsCreated int
	Errors      []string
}

// Importer loads word pairs into the catalog.
type Importer struct {
	words repository.WordRepository
	sets  map[string]int64
}

// New creates an Importer writing through words.
func New(words repository.WordRepository) *Importer {
	return &Importer{words: words, sets: make(map[string]int64)}
}

// ImportFile reads a .json or .xlsx file and imports its entries.
func (im *Importer) ImportFile(ctx context.Context, path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var entries []Entry
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		entries, err = ReadJSON(f)
	case ".xlsx":
		entries, err = ReadXLSX(f)
	default:
		return nil, fmt.Errorf("unsupported file type %q (want .json or .xlsx)", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	return im.Import(ctx, entries)
}

// Import upserts every valid entry. Invalid rows are skipped and reported in
// Result.Errors; a store failure aborts the run.
func (im *Importer) Import(ctx context.Context, entries []Entry) (*Result, error) {
	log := logger.FromContext(ctx).WithPrefix("import")
	log.Info("importing %d entries", len(entries))

	result := &Result{Errors: make([]string, 0)}
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		result.Processed++

		english := strings.TrimSpace(e.English)
		native := strings.TrimSpace(e.Native)
		if english == "" || native == "" {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: english and native are required", e.Row))
			continue
		}

		wordID, err := im.words.UpsertWord(ctx, models.Word{
			English:   english,
			Native:    native,
			AudioPath: strings.TrimSpace(e.AudioPath),
		})
		if err != nil {
			return result, fmt.Errorf("row %d: upsert word %q: %w", e.Row, english, err)
		}

		if set := strings.TrimSpace(e.Set); set != "" {
			setID, err := im.setID(ctx, set, result)
			if err != nil {
				return result, fmt.Errorf("row %d: %w", e.Row, err)
			}
			if err := im.words.AddToWordSet(ctx, setID, wordID); err != nil {
				return result, fmt.Errorf("row %d: add %q to set %q: %w", e.Row, english, set, err)
			}
		}
		result.Imported++
	}

	log.Info("import finished: processed=%d, imported=%d, skipped=%d, sets_created=%d",
		result.Processed, result.Imported, result.Skipped, result.SetsCreated)
	return result, nil
}

func (im *Importer) setID(ctx context.Context, name string, result *Result) (int64, error) {
	key := strings.ToLower(name)
	if id, ok := im.sets[key]; ok {
		return id, nil
	}

	existing, err := im.words.FindWordSet(ctx, name)
	switch {
	case err == nil:
		im.sets[key] = existing.ID
		return existing.ID, nil
	case !stderrors.Is(err, repository.ErrNotFound):
		return 0, fmt.Errorf("find word set %q: %w", name, err)
	}

	id, err := im.words.UpsertWordSet(ctx, models.WordSet{Name: name})
	if err != nil {
		return 0, fmt.Errorf("create word set %q: %w", name, err)
	}
	result.SetsCreated++
	im.sets[key] = id
	return id, nil
}
