package repository

import (
	"context"
	"testing"

	"github.com/nkurunziza/momo-ledger/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessingLogRepository_Append(t *testing.T) {
	db := setupTestDB(t).DB
	repo := NewProcessingLogRepository(db)
	ctx := context.Background()

	entry, err := repo.Append(ctx, &model.ProcessingLogEntry{
		BatchID:  "batch-1",
		Stage:    model.StageNormalize,
		Severity: model.LogSeverityError,
		Message:  "validation failed on amount",
		Status:   "VALIDATION_ERROR",
	})
	require.NoError(t, err)
	assert.NotZero(t, entry.ID)
	assert.False(t, entry.CreatedAt.IsZero())
	assert.Nil(t, entry.TransactionID)
}

func TestProcessingLogRepository_ListByBatch(t *testing.T) {
	db := setupTestDB(t).DB
	repo := NewProcessingLogRepository(db)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := repo.Append(ctx, &model.ProcessingLogEntry{
			BatchID:  "batch-a",
			Stage:    model.StageLoad,
			Severity: model.LogSeverityInfo,
			Message:  "ref completed",
			Status:   "Completed",
		})
		require.NoError(t, err)
	}
	_, err := repo.Append(ctx, &model.ProcessingLogEntry{
		BatchID:  "batch-b",
		Stage:    model.StageLoad,
		Severity: model.LogSeverityWarning,
		Message:  "duplicate reference",
		Status:   "DUPLICATE",
	})
	require.NoError(t, err)

	entries, total, err := repo.ListByBatch(ctx, "batch-a", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, entries, 3)
	for _, e := range entries {
		assert.Equal(t, "batch-a", e.BatchID)
	}

	entries, total, err = repo.ListByBatch(ctx, "batch-a", 2, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, entries, 2)
}

func TestProcessingLogRepository_CountBySeverity(t *testing.T) {
	db := setupTestDB(t).DB
	repo := NewProcessingLogRepository(db)
	ctx := context.Background()

	severities := []model.LogSeverity{
		model.LogSeverityInfo,
		model.LogSeverityInfo,
		model.LogSeverityError,
	}
	for _, s := range severities {
		_, err := repo.Append(ctx, &model.ProcessingLogEntry{
			BatchID:  "batch-c",
			Stage:    model.StageLoad,
			Severity: s,
			Message:  "entry",
		})
		require.NoError(t, err)
	}

	count, err := repo.CountBySeverity(ctx, "batch-c", model.LogSeverityInfo)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	count, err = repo.CountBySeverity(ctx, "batch-c", model.LogSeverityWarning)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}
