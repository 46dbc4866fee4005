package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"wordmastery/internal/models"
	"wordmastery/internal/repository"
)

const exportVersion = "1.0"

// ExportData is the JSON document written by Export
type ExportData struct {
	Version    string                           `json:"version"`
	ExportedAt time.Time                        `json:"exported_at"`
	StudentID  string                           `json:"student_id,omitempty"`
	Vocabulary []models.VocabularyItem          `json:"vocabulary"`
	Sessions   []models.GameSession             `json:"sessions"`
	Attempts   []models.WordAttempt             `json:"attempts"`
	Mastery    []models.VocabularyMasteryRecord `json:"mastery"`
}

// ImportStats reports how many rows an import added
type ImportStats struct {
	Vocabulary int
	Sessions   int
	Attempts   int
	Mastery    int
}

// ExportService dumps and restores mastery data
type ExportService struct {
	vocab    *repository.VocabularyRepository
	sessions *repository.SessionRepository
	store    *repository.MasteryRepository
	logger   *zap.Logger
}

// NewExportService creates a new export service
func NewExportService(vocab *repository.VocabularyRepository, sessions *repository.SessionRepository, store *repository.MasteryRepository, logger *zap.Logger) *ExportService {
	return &ExportService{vocab: vocab, sessions: sessions, store: store, logger: logger}
}

// Export writes the data of one student, or of everyone when studentID is
// empty, as indented JSON
func (s *ExportService) Export(ctx context.Context, studentID string, w io.Writer) (*ExportData, error) {
	data := &ExportData{
		Version:    exportVersion,
		ExportedAt: time.Now().UTC(),
		StudentID:  studentID,
	}

	var err error
	if data.Vocabulary, err = s.vocab.List(ctx); err != nil {
		return nil, fmt.Errorf("failed to export vocabulary: %w", err)
	}

	if studentID == "" {
		data.Sessions, err = s.sessions.ListAll(ctx)
	} else {
		data.Sessions, err = s.sessions.ListByStudent(ctx, studentID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to export sessions: %w", err)
	}

	if data.Attempts, err = s.store.ListAttempts(ctx, studentID); err != nil {
		return nil, fmt.Errorf("failed to export attempts: %w", err)
	}

	if studentID == "" {
		data.Mastery, err = s.store.ListAllRecords(ctx)
	} else {
		data.Mastery, err = s.store.ListStudentRecords(ctx, studentID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to export mastery records: %w", err)
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return nil, fmt.Errorf("failed to encode export: %w", err)
	}

	s.logger.Info("export written",
		zap.String("student_id", studentID),
		zap.Int("vocabulary", len(data.Vocabulary)),
		zap.Int("sessions", len(data.Sessions)),
		zap.Int("attempts", len(data.Attempts)),
		zap.Int("mastery", len(data.Mastery)),
	)
	return data, nil
}

// Import restores an export. Rows that already exist are kept as they are,
// so an import never lowers a counter.
func (s *ExportService) Import(ctx context.Context, r io.Reader) (ImportStats, error) {
	var data ExportData
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return ImportStats{}, fmt.Errorf("failed to decode export: %w", err)
	}
	s.logger.Info("importing export", zap.String("version", data.Version), zap.Time("exported_at", data.ExportedAt))

	var stats ImportStats
	var err error

	// Import in order of dependencies
	if stats.Vocabulary, err = s.vocab.Upsert(ctx, data.Vocabulary); err != nil {
		return stats, fmt.Errorf("failed to import vocabulary: %w", err)
	}
	if stats.Sessions, err = s.sessions.Import(ctx, data.Sessions); err != nil {
		return stats, fmt.Errorf("failed to import sessions: %w", err)
	}
	if stats.Attempts, err = s.store.ImportAttempts(ctx, data.Attempts); err != nil {
		return stats, fmt.Errorf("failed to import attempts: %w", err)
	}
	for _, rec := range data.Mastery {
		added, err := s.store.ImportRecord(ctx, rec)
		if err != nil {
			return stats, fmt.Errorf("failed to import mastery records: %w", err)
		}
		if added {
			stats.Mastery++
		}
	}

	s.logger.Info("import completed",
		zap.Int("vocabulary", stats.Vocabulary),
		zap.Int("sessions", stats.Sessions),
		zap.Int("attempts", stats.Attempts),
		zap.Int("mastery", stats.Mastery),
	)
	return stats, nil
}
