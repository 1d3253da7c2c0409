package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/nkurunziza/momo-ledger/internal/model"
	"github.com/nkurunziza/momo-ledger/internal/repository"
	"github.com/nkurunziza/momo-ledger/test/helpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_Record(t *testing.T) {
	db := helpers.SetupTestDB(t)
	logs := repository.NewProcessingLogRepository(db)
	stream := &bytes.Buffer{}
	recorder := NewRecorder(logs, stream)
	ctx := context.Background()

	txnID := int64(42)
	recorder.Info(ctx, "batch-1", model.StageLoad, "ref TX-1001 completed", "Completed", &txnID)
	recorder.Error(ctx, "batch-1", model.StageNormalize, "validation failed on amount", "VALIDATION_ERROR", nil)

	t.Run("rows land in the processing log", func(t *testing.T) {
		entries, total, err := logs.ListByBatch(ctx, "batch-1", 0, 0)
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)

		assert.Equal(t, model.LogSeverityInfo, entries[0].Severity)
		assert.Equal(t, model.StageLoad, entries[0].Stage)
		require.NotNil(t, entries[0].TransactionID)
		assert.Equal(t, txnID, *entries[0].TransactionID)

		assert.Equal(t, model.LogSeverityError, entries[1].Severity)
		assert.Nil(t, entries[1].TransactionID)
	})

	t.Run("stream carries one json line per entry", func(t *testing.T) {
		lines := strings.Split(strings.TrimSpace(stream.String()), "\n")
		require.Len(t, lines, 2)

		var first map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
		assert.Equal(t, "batch-1", first["batch_id"])
		assert.Equal(t, model.StageLoad, first["stage"])
		assert.Equal(t, "Completed", first["status"])
		assert.Equal(t, float64(42), first["transaction_id"])
		assert.Equal(t, "ref TX-1001 completed", first["message"])
		assert.NotEmpty(t, first["time"])

		var second map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
		assert.Equal(t, "error", second["level"])
		assert.NotContains(t, second, "transaction_id")
	})
}

func TestRecorder_SeverityHelpers(t *testing.T) {
	db := helpers.SetupTestDB(t)
	logs := repository.NewProcessingLogRepository(db)
	recorder := NewRecorder(logs, &bytes.Buffer{})
	ctx := context.Background()

	recorder.Debug(ctx, "batch-2", model.StageCategorize, "matched", "MATCHED", nil)
	recorder.Warning(ctx, "batch-2", model.StageCategorize, "no rule matched", "UNMATCHED", nil)

	count, err := logs.CountBySeverity(ctx, "batch-2", model.LogSeverityDebug)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	count, err = logs.CountBySeverity(ctx, "batch-2", model.LogSeverityWarning)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
