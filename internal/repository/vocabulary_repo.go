package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"wordmastery/internal/database"
	"wordmastery/internal/models"
)

const vocabularyColumns = `id, word, translation, category, subcategory, created_at`

// lookups are split so IN lists stay under driver placeholder limits
const vocabularyLookupBatch = 500

// VocabularyRepository handles vocabulary catalog database operations
type VocabularyRepository struct {
	db *database.DB
}

// NewVocabularyRepository creates a new vocabulary repository
func NewVocabularyRepository(db *database.DB) *VocabularyRepository {
	return &VocabularyRepository{db: db}
}

// Upsert inserts catalog items, overwriting the text and categories of items
// that already exist. It returns the number of items written.
func (r *VocabularyRepository) Upsert(ctx context.Context, items []models.VocabularyItem) (int, error) {
	written := 0
	err := r.db.WithTx(ctx, func(tx *database.Tx) error {
		query := tx.GetDialect().Upsert("vocabulary", []string{"id"},
			[]string{"id", "word", "translation", "category", "subcategory", "created_at"},
			[]string{"word", "translation", "category", "subcategory"})
		now := time.Now().UTC()

		for _, item := range items {
			id := strings.TrimSpace(item.ID)
			if id == "" {
				continue
			}
			if _, err := tx.ExecContext(ctx, query,
				id, strings.TrimSpace(item.Word), strings.TrimSpace(item.Translation),
				strings.ToLower(strings.TrimSpace(item.Category)), strings.ToLower(strings.TrimSpace(item.Subcategory)),
				now); err != nil {
				return fmt.Errorf("upsert vocabulary %s: %w", id, err)
			}
			written++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return written, nil
}

// GetByIDs returns the catalog items for ids, keyed by id. Unknown ids are absent.
func (r *VocabularyRepository) GetByIDs(ctx context.Context, ids []string) (map[string]models.VocabularyItem, error) {
	out := make(map[string]models.VocabularyItem, len(ids))
	for start := 0; start < len(ids); start += vocabularyLookupBatch {
		end := start + vocabularyLookupBatch
		if end > len(ids) {
			end = len(ids)
		}

		query, args, err := r.db.In(`SELECT `+vocabularyColumns+` FROM vocabulary WHERE id IN (?)`, ids[start:end])
		if err != nil {
			return nil, fmt.Errorf("lookup vocabulary: %w", err)
		}
		var items []models.VocabularyItem
		if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
			return nil, fmt.Errorf("lookup vocabulary: %w", err)
		}
		for _, item := range items {
			out[item.ID] = item
		}
	}
	return out, nil
}

// List returns the whole catalog ordered by category then word
func (r *VocabularyRepository) List(ctx context.Context) ([]models.VocabularyItem, error) {
	items := []models.VocabularyItem{}
	if err := r.db.SelectContext(ctx, &items,
		`SELECT `+vocabularyColumns+` FROM vocabulary ORDER BY category, word, id`); err != nil {
		return nil, fmt.Errorf("list vocabulary: %w", err)
	}
	return items, nil
}

// Count returns the number of catalog items
func (r *VocabularyRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM vocabulary`); err != nil {
		return 0, fmt.Errorf("count vocabulary: %w", err)
	}
	return count, nil
}
