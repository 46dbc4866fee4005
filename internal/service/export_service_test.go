package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	src := newTestEnv(t)
	seedCatalog(t, src)
	sessions := src.sessionService(SessionOptions{})

	playWords(t, sessions, "student-1", map[string][]bool{
		"101": repeat(2, 1),
		"201": repeat(1, 2),
	})
	playWords(t, sessions, "student-2", map[string][]bool{"102": repeat(3, 0)})

	var buf bytes.Buffer
	data, err := NewExportService(src.vocab, src.sessions, src.store, src.logger).Export(ctx, "student-1", &buf)
	require.NoError(t, err)
	assert.Equal(t, "student-1", data.StudentID)
	assert.Len(t, data.Vocabulary, 4)
	assert.Len(t, data.Sessions, 1)
	assert.Len(t, data.Attempts, 6)
	assert.Len(t, data.Mastery, 2)

	dst := newTestEnv(t)
	importer := NewExportService(dst.vocab, dst.sessions, dst.store, dst.logger)
	stats, err := importer.Import(ctx, bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, ImportStats{Vocabulary: 4, Sessions: 1, Attempts: 6, Mastery: 2}, stats)

	rec, err := dst.store.GetRecord(ctx, "student-1", "101")
	require.NoError(t, err)
	assert.Equal(t, 2, rec.CorrectCount)
	assert.Equal(t, 1, rec.IncorrectCount)

	// replayed attempts are recognised as duplicates after import
	exists, err := dst.store.AttemptExists(ctx, data.Attempts[0].IdempotencyKey)
	require.NoError(t, err)
	assert.True(t, exists)

	// a second import adds nothing
	stats, err = importer.Import(ctx, bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, ImportStats{Vocabulary: 4}, stats)
}

func TestImportKeepsExistingRecords(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	seedCatalog(t, e)
	playWords(t, e.sessionService(SessionOptions{}), "student-1", map[string][]bool{"101": repeat(5, 0)})

	doc := `{"version":"1.0","vocabulary":[],"sessions":[],"attempts":[],"mastery":[
		{"studentId":"student-1","vocabularyId":"101","correctCount":1,"incorrectCount":9,"lastPracticedAt":"2024-01-01T00:00:00Z"},
		{"studentId":"student-1","vocabularyId":"102","correctCount":4,"incorrectCount":0,"masteryLevel":1,"lastPracticedAt":"2024-01-01T00:00:00Z"}
	]}`
	stats, err := NewExportService(e.vocab, e.sessions, e.store, e.logger).Import(ctx, bytes.NewBufferString(doc))
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Mastery)

	kept, err := e.store.GetRecord(ctx, "student-1", "101")
	require.NoError(t, err)
	assert.Equal(t, 5, kept.CorrectCount)

	added, err := e.store.GetRecord(ctx, "student-1", "102")
	require.NoError(t, err)
	assert.Equal(t, 4, added.CorrectCount)
	assert.True(t, added.LastPracticedAt.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
}

func TestImportRejectsMalformedDocument(t *testing.T) {
	e := newTestEnv(t)
	_, err := NewExportService(e.vocab, e.sessions, e.store, e.logger).Import(context.Background(), bytes.NewBufferString("{"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode export")
}
