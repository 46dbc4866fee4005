package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"wordmastery/internal/mastery"
	"wordmastery/internal/metrics"
	"wordmastery/internal/models"
	"wordmastery/internal/repository"
)

type analysisEntry struct {
	stats    []mastery.WordStat
	analysis models.WeakWordsAnalysis
	expires  time.Time
}

// AnalysisService serves the read-side projections of a student's mastery
// state. Results are cached per student until the TTL passes or an attempt
// for the student is applied.
type AnalysisService struct {
	records   *repository.MasteryRepository
	vocab     *repository.VocabularyRepository
	generator *mastery.Generator
	logger    *zap.Logger
	ttl       time.Duration
	now       func() time.Time

	group       singleflight.Group
	mu          sync.Mutex
	cache       map[string]*analysisEntry
	generations map[string]uint64
}

// NewAnalysisService creates a new analysis service
func NewAnalysisService(records *repository.MasteryRepository, vocab *repository.VocabularyRepository, generator *mastery.Generator, logger *zap.Logger, ttl time.Duration) *AnalysisService {
	return &AnalysisService{
		records:     records,
		vocab:       vocab,
		generator:   generator,
		logger:      logger,
		ttl:         ttl,
		now:         time.Now,
		cache:       make(map[string]*analysisEntry),
		generations: make(map[string]uint64),
	}
}

// AttemptApplied drops the cached analysis of studentID
func (s *AnalysisService) AttemptApplied(studentID string) {
	s.mu.Lock()
	s.generations[studentID]++
	delete(s.cache, studentID)
	s.mu.Unlock()

	// callers arriving from now on must not join a computation that may
	// have read the store before the attempt landed
	s.group.Forget(studentID)
}

// WeakWordsAnalysis returns the weak/strong classification, recommendations
// and summary for a student
func (s *AnalysisService) WeakWordsAnalysis(ctx context.Context, studentID string) (models.WeakWordsAnalysis, error) {
	entry, err := s.load(ctx, studentID)
	if err != nil {
		return models.WeakWordsAnalysis{}, err
	}
	return entry.analysis, nil
}

// Categories returns the category roll-up of a student's words
func (s *AnalysisService) Categories(ctx context.Context, studentID string, groupBy mastery.GroupBy) ([]models.CategoryPerformanceSummary, error) {
	if groupBy == "" {
		groupBy = mastery.GroupByCategory
	}
	if !groupBy.Valid() {
		return nil, fmt.Errorf("%w: unknown grouping %q", ErrInvalidRequest, groupBy)
	}

	entry, err := s.load(ctx, studentID)
	if err != nil {
		return nil, err
	}
	return mastery.Aggregate(entry.stats, groupBy), nil
}

// PurgeExpired removes cache entries past their TTL
func (s *AnalysisService) PurgeExpired() int {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()

	purged := 0
	for id, e := range s.cache {
		if !now.Before(e.expires) {
			delete(s.cache, id)
			purged++
		}
	}
	return purged
}

func (s *AnalysisService) load(ctx context.Context, studentID string) (*analysisEntry, error) {
	studentID = strings.TrimSpace(studentID)
	if studentID == "" {
		return nil, fmt.Errorf("%w: student id is required", ErrInvalidRequest)
	}

	start := time.Now()
	s.mu.Lock()
	if e, ok := s.cache[studentID]; ok && s.now().Before(e.expires) {
		s.mu.Unlock()
		metrics.AnalysisDuration.WithLabelValues("hit").Observe(time.Since(start).Seconds())
		return e, nil
	}
	generation := s.generations[studentID]
	s.mu.Unlock()

	v, err, _ := s.group.Do(studentID, func() (interface{}, error) {
		entry, err := s.compute(ctx, studentID)
		if err != nil {
			return nil, err
		}

		s.mu.Lock()
		if s.ttl > 0 && s.generations[studentID] == generation {
			s.cache[studentID] = entry
		}
		s.mu.Unlock()
		return entry, nil
	})
	if err != nil {
		s.logger.Error("weak words analysis failed", zap.String("student_id", studentID), zap.Error(err))
		return nil, err
	}

	metrics.AnalysisDuration.WithLabelValues("miss").Observe(time.Since(start).Seconds())
	return v.(*analysisEntry), nil
}

func (s *AnalysisService) compute(ctx context.Context, studentID string) (*analysisEntry, error) {
	records, err := s.records.ListStudentRecords(ctx, studentID)
	if err != nil {
		return nil, storeUnavailable("load mastery records", err)
	}

	ids := make([]string, len(records))
	for i, r := range records {
		ids[i] = r.VocabularyID
	}
	catalog, err := s.vocab.GetByIDs(ctx, ids)
	if err != nil {
		return nil, storeUnavailable("load vocabulary", err)
	}

	stats := mastery.Evaluate(records, catalog)
	return &analysisEntry{
		stats:    stats,
		analysis: s.generator.Analyze(stats),
		expires:  s.now().Add(s.ttl),
	}, nil
}
