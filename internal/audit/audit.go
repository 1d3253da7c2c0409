package audit

import (
	"context"
	"io"

	"github.com/nkurunziza/momo-ledger/internal/model"
	"github.com/nkurunziza/momo-ledger/pkg/logger"
	"github.com/rs/zerolog"
)

// LogRepository is the slice of the processing log store the recorder
// needs: append and nothing else.
type LogRepository interface {
	Append(ctx context.Context, entry *model.ProcessingLogEntry) (*model.ProcessingLogEntry, error)
}

// Recorder writes one audit entry per pipeline decision: a relational
// processing_log row plus a line on the append-only JSON stream. It
// never updates or deletes what it wrote.
type Recorder struct {
	repo   LogRepository
	stream zerolog.Logger
}

func NewRecorder(repo LogRepository, w io.Writer) *Recorder {
	// Workers log concurrently, so the stream writer is serialized.
	return &Recorder{
		repo:   repo,
		stream: zerolog.New(zerolog.SyncWriter(w)).With().Timestamp().Logger(),
	}
}

func (r *Recorder) Record(ctx context.Context, batchID, stage string, severity model.LogSeverity, message, status string, transactionID *int64) {
	entry := &model.ProcessingLogEntry{
		BatchID:       batchID,
		Stage:         stage,
		Severity:      severity,
		Message:       message,
		Status:        status,
		TransactionID: transactionID,
	}
	if _, err := r.repo.Append(ctx, entry); err != nil {
		// The stream line below still lands; losing the row is logged
		// loudly instead of failing the record being processed.
		logger.Error("failed to append processing log entry", "batch_id", batchID, "stage", stage, "error", err)
	}

	ev := r.stream.Info()
	switch severity {
	case model.LogSeverityDebug:
		ev = r.stream.Debug()
	case model.LogSeverityWarning:
		ev = r.stream.Warn()
	case model.LogSeverityError:
		ev = r.stream.Error()
	}
	ev = ev.Str("batch_id", batchID).Str("stage", stage).Str("status", status)
	if transactionID != nil {
		ev = ev.Int64("transaction_id", *transactionID)
	}
	ev.Msg(message)
}

func (r *Recorder) Debug(ctx context.Context, batchID, stage, message, status string, transactionID *int64) {
	r.Record(ctx, batchID, stage, model.LogSeverityDebug, message, status, transactionID)
}

func (r *Recorder) Info(ctx context.Context, batchID, stage, message, status string, transactionID *int64) {
	r.Record(ctx, batchID, stage, model.LogSeverityInfo, message, status, transactionID)
}

func (r *Recorder) Warning(ctx context.Context, batchID, stage, message, status string, transactionID *int64) {
	r.Record(ctx, batchID, stage, model.LogSeverityWarning, message, status, transactionID)
}

func (r *Recorder) Error(ctx context.Context, batchID, stage, message, status string, transactionID *int64) {
	r.Record(ctx, batchID, stage, model.LogSeverityError, message, status, transactionID)
}
