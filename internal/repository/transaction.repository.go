package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nkurunziza/momo-ledger/internal/model"
	"github.com/nkurunziza/momo-ledger/pkg/pg"
	"gorm.io/gorm"
)

var (
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrDuplicateReference  = errors.New("reference code already exists")
	ErrInvalidTransition   = errors.New("invalid status transition")
)

type TransactionRepository struct {
	*pg.DB
}

func NewTransactionRepository(db *pg.DB) *TransactionRepository {
	return &TransactionRepository{
		db,
	}
}

func (r *TransactionRepository) Create(ctx context.Context, txn *model.Transaction) (*model.Transaction, error) {
	if !txn.Status.Valid() {
		return nil, fmt.Errorf("status %q is not a transaction status", txn.Status)
	}
	entity := toTransactionEntity(txn)

	if err := r.Write(ctx).Create(entity).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateReference, txn.Ref)
		}
		return nil, err
	}

	return toTransactionModel(entity), nil
}

// GetByRef looks a transaction up by its external reference code, the
// loader's idempotency key.
func (r *TransactionRepository) GetByRef(ctx context.Context, ref string) (*model.Transaction, error) {
	var entity TransactionEntity
	err := r.Write(ctx).
		Where("ref = ?", ref).
		First(&entity).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	return toTransactionModel(&entity), nil
}

// UpdateStatus moves a transaction along its lifecycle. Transitions the
// state machine does not allow are rejected with ErrInvalidTransition.
func (r *TransactionRepository) UpdateStatus(ctx context.Context, id int64, to model.TransactionStatus) error {
	var entity TransactionEntity
	err := r.Write(ctx).
		Where("id = ?", id).
		First(&entity).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTransactionNotFound
		}
		return err
	}

	from := model.TransactionStatus(entity.Status)
	if !from.CanTransition(to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}

	result := r.Write(ctx).
		Model(&TransactionEntity{}).
		Where("id = ? AND status = ?", id, string(from)).
		Update("status", string(to))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrConcurrentUpdate
	}
	return nil
}

// CreateFee attaches a fee row to its owning transaction.
func (r *TransactionRepository) CreateFee(ctx context.Context, fee *model.Fee) (*model.Fee, error) {
	entity := toFeeEntity(fee)
	if err := r.Write(ctx).Create(entity).Error; err != nil {
		return nil, err
	}
	return toFeeModel(entity), nil
}

func (r *TransactionRepository) GetFees(ctx context.Context, transactionID int64) ([]*model.Fee, error) {
	var entities []*FeeEntity
	err := r.Read(ctx).
		Where("transaction_id = ?", transactionID).
		Order("id").
		Find(&entities).
		Error
	if err != nil {
		return nil, err
	}
	fees := make([]*model.Fee, len(entities))
	for i, e := range entities {
		fees[i] = toFeeModel(e)
	}
	return fees, nil
}

type TransactionFilter struct {
	SenderAccountID   *int64
	ReceiverAccountID *int64
	Statuses          []model.TransactionStatus
	From              *time.Time
	To                *time.Time
	Limit             int
	Offset            int
}

func (r *TransactionRepository) List(ctx context.Context, f TransactionFilter) ([]*model.Transaction, int64, error) {
	q := r.Read(ctx).Model(&TransactionEntity{})
	if f.SenderAccountID != nil {
		q = q.Where("sender_account_id = ?", *f.SenderAccountID)
	}
	if f.ReceiverAccountID != nil {
		q = q.Where("receiver_account_id = ?", *f.ReceiverAccountID)
	}
	if len(f.Statuses) > 0 {
		statuses := make([]string, len(f.Statuses))
		for i, s := range f.Statuses {
			statuses[i] = string(s)
		}
		q = q.Where("status IN ?", statuses)
	}
	if f.From != nil {
		q = q.Where("occurred_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("occurred_at < ?", *f.To)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := f.Limit
	if limit == 0 {
		limit = 50
	}
	var entities []*TransactionEntity
	err := q.Order("occurred_at").Limit(limit).Offset(f.Offset).Find(&entities).Error
	if err != nil {
		return nil, 0, err
	}

	out := make([]*model.Transaction, len(entities))
	for i, e := range entities {
		out[i] = toTransactionModel(e)
	}
	return out, total, nil
}
