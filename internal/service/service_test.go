package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"wordmastery/internal/database"
	"wordmastery/internal/mastery"
	"wordmastery/internal/models"
	"wordmastery/internal/repository"
)

type testEnv struct {
	db       *database.DB
	sessions *repository.SessionRepository
	store    *repository.MasteryRepository
	vocab    *repository.VocabularyRepository
	logs     *observer.ObservedLogs
	logger   *zap.Logger
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := database.Initialize(filepath.Join(t.TempDir(), "mastery.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	_, err = db.RunMigrations(context.Background())
	require.NoError(t, err)

	core, logs := observer.New(zapcore.DebugLevel)
	return &testEnv{
		db:       db,
		sessions: repository.NewSessionRepository(db),
		store:    repository.NewMasteryRepository(db, mastery.NewCalculator(mastery.DefaultCurve())),
		vocab:    repository.NewVocabularyRepository(db),
		logs:     logs,
		logger:   zap.New(core),
	}
}

func (e *testEnv) sessionService(opts SessionOptions) *SessionService {
	return NewSessionService(e.sessions, e.store, e.logger, opts)
}

// fixedClock returns a settable clock
type fixedClock struct{ t time.Time }

func (c *fixedClock) now() time.Time { return c.t }

func seq(n int64) *int64 { return &n }

func seedCatalog(t *testing.T, e *testEnv) {
	t.Helper()
	_, err := e.vocab.Upsert(context.Background(), []models.VocabularyItem{
		{ID: "101", Word: "hola", Translation: "hello", Category: "greetings"},
		{ID: "102", Word: "gracias", Translation: "thank you", Category: "greetings"},
		{ID: "103", Word: "adiós", Translation: "goodbye", Category: "greetings"},
		{ID: "201", Word: "perro", Translation: "dog", Category: "animals"},
	})
	require.NoError(t, err)
}
