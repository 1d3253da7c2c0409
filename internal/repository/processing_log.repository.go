package repository

import (
	"context"
	"time"

	"github.com/nkurunziza/momo-ledger/internal/model"
	"github.com/nkurunziza/momo-ledger/pkg/pg"
)

type ProcessingLogEntity struct {
	ID            int64     `db:"id"             gorm:"primaryKey;autoIncrement;column:id"`
	BatchID       string    `db:"batch_id"       gorm:"column:batch_id;not null;index"`
	Stage         string    `db:"stage"          gorm:"column:stage;not null"`
	Severity      string    `db:"severity"       gorm:"column:severity;not null;index"`
	Message       string    `db:"message"        gorm:"column:message;not null"`
	Status        string    `db:"status"         gorm:"column:status"`
	TransactionID *int64    `db:"transaction_id" gorm:"column:transaction_id;index"`
	CreatedAt     time.Time `db:"created_at"     gorm:"column:created_at;autoCreateTime"`
}

func (ProcessingLogEntity) TableName() string {
	return "processing_log"
}

func toProcessingLogModel(e *ProcessingLogEntity) *model.ProcessingLogEntry {
	if e == nil {
		return nil
	}
	return &model.ProcessingLogEntry{
		ID:            e.ID,
		BatchID:       e.BatchID,
		Stage:         e.Stage,
		Severity:      model.LogSeverity(e.Severity),
		Message:       e.Message,
		Status:        e.Status,
		TransactionID: e.TransactionID,
		CreatedAt:     e.CreatedAt,
	}
}

// ProcessingLogRepository only knows how to append and read. There is
// deliberately no update or delete path; retention is an out-of-band
// maintenance concern.
type ProcessingLogRepository struct {
	*pg.DB
}

func NewProcessingLogRepository(db *pg.DB) *ProcessingLogRepository {
	return &ProcessingLogRepository{
		db,
	}
}

func (r *ProcessingLogRepository) Append(ctx context.Context, entry *model.ProcessingLogEntry) (*model.ProcessingLogEntry, error) {
	entity := &ProcessingLogEntity{
		BatchID:       entry.BatchID,
		Stage:         entry.Stage,
		Severity:      string(entry.Severity),
		Message:       entry.Message,
		Status:        entry.Status,
		TransactionID: entry.TransactionID,
	}
	if err := r.Write(ctx).Create(entity).Error; err != nil {
		return nil, err
	}
	return toProcessingLogModel(entity), nil
}

func (r *ProcessingLogRepository) ListByBatch(ctx context.Context, batchID string, limit, offset int) ([]*model.ProcessingLogEntry, int64, error) {
	q := r.Read(ctx).Model(&ProcessingLogEntity{}).Where("batch_id = ?", batchID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit == 0 {
		limit = 100
	}
	var entities []*ProcessingLogEntity
	if err := q.Order("id").Limit(limit).Offset(offset).Find(&entities).Error; err != nil {
		return nil, 0, err
	}

	out := make([]*model.ProcessingLogEntry, len(entities))
	for i, e := range entities {
		out[i] = toProcessingLogModel(e)
	}
	return out, total, nil
}

func (r *ProcessingLogRepository) CountBySeverity(ctx context.Context, batchID string, severity model.LogSeverity) (int64, error) {
	var count int64
	err := r.Read(ctx).
		Model(&ProcessingLogEntity{}).
		Where("batch_id = ? AND severity = ?", batchID, string(severity)).
		Count(&count).
		Error
	return count, err
}
