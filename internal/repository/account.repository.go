package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/nkurunziza/momo-ledger/internal/model"
	"github.com/nkurunziza/momo-ledger/pkg/pg"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrAccountNotFound     = errors.New("account not found")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInactiveAccount     = errors.New("account is not active")
	ErrConcurrentUpdate    = errors.New("concurrent update detected")
	ErrMaxRetriesExceeded  = errors.New("max retries exceeded")
)

type AccountRepository struct {
	*pg.DB
}

func NewAccountRepository(db *pg.DB) *AccountRepository {
	return &AccountRepository{
		db,
	}
}

// GetOrCreateDefault returns the party's default account for the given
// currency, creating it with a zero balance on first use.
func (r *AccountRepository) GetOrCreateDefault(ctx context.Context, partyID int64, currency string) (*model.Account, error) {
	var entity AccountEntity
	err := r.Write(ctx).
		Where("party_id = ? AND currency = ?", partyID, currency).
		Order("id").
		First(&entity).
		Error

	if err == nil {
		return toAccountModel(&entity), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	created := &AccountEntity{
		PartyID:  partyID,
		Type:     string(model.AccountTypeMobileMoney),
		Currency: currency,
		Balance:  0,
		Active:   true,
	}
	if err := r.Write(ctx).Create(created).Error; err != nil {
		return nil, err
	}
	return toAccountModel(created), nil
}

// LockForUpdate acquires row locks on the given accounts in ascending
// id order. Both sides of a transfer go through here so two concurrent
// transfers over the same pair can never deadlock.
func (r *AccountRepository) LockForUpdate(ctx context.Context, ids ...int64) ([]*model.Account, error) {
	sorted := make([]int64, len(ids))
	copy(sorted, ids)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	locked := make(map[int64]*model.Account, len(sorted))
	for _, id := range sorted {
		if _, done := locked[id]; done {
			continue
		}
		var entity AccountEntity
		err := r.Write(ctx).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", id).
			First(&entity).
			Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrAccountNotFound
			}
			return nil, err
		}
		locked[id] = toAccountModel(&entity)
	}

	out := make([]*model.Account, len(ids))
	for i, id := range ids {
		out[i] = locked[id]
	}
	return out, nil
}

// DeductBalance performs atomic balance deduction with automatic retry.
// The non-negative invariant is enforced here: the deduction is refused
// outright when the locked balance cannot cover the amount.
func (r *AccountRepository) DeductBalance(ctx context.Context, accountID int64, amount int64) error {
	const maxRetries = 3
	const baseDelay = 2 * time.Millisecond

	for attempt := 0; attempt <= maxRetries; attempt++ {
		err := r.deductBalanceAttempt(ctx, accountID, amount)

		if err == nil {
			return nil
		}

		// Don't retry on permanent errors
		if errors.Is(err, ErrAccountNotFound) ||
			errors.Is(err, ErrInsufficientBalance) ||
			errors.Is(err, ErrInactiveAccount) {
			return err
		}

		// Retry on transient errors
		if attempt < maxRetries {
			delay := baseDelay * time.Duration(1<<attempt)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				continue
			}
		}
	}

	return fmt.Errorf("%w: failed after %d attempts", ErrMaxRetriesExceeded, maxRetries+1)
}

func (r *AccountRepository) deductBalanceAttempt(ctx context.Context, accountID int64, amount int64) error {
	var entity AccountEntity

	err := r.Write(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", accountID).
		First(&entity).
		Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAccountNotFound
		}
		return err
	}

	if !entity.Active {
		return ErrInactiveAccount
	}
	if entity.Balance < amount {
		return ErrInsufficientBalance
	}

	result := r.Write(ctx).
		Model(&AccountEntity{}).
		Where("id = ? AND balance >= ?", accountID, amount).
		Update("balance", gorm.Expr("balance - ?", amount))

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrConcurrentUpdate
	}

	return nil
}

// AddBalance performs atomic balance addition with automatic retry
// using SELECT FOR UPDATE.
func (r *AccountRepository) AddBalance(ctx context.Context, accountID int64, amount int64) error {
	const maxRetries = 3
	const baseDelay = 2 * time.Millisecond

	for attempt := 0; attempt <= maxRetries; attempt++ {
		err := r.addBalanceAttempt(ctx, accountID, amount)

		if err == nil {
			return nil
		}

		if errors.Is(err, ErrAccountNotFound) {
			return err
		}

		if attempt < maxRetries {
			delay := baseDelay * time.Duration(1<<attempt)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				continue
			}
		}
	}

	return fmt.Errorf("%w: failed after %d attempts", ErrMaxRetriesExceeded, maxRetries+1)
}

func (r *AccountRepository) addBalanceAttempt(ctx context.Context, accountID int64, amount int64) error {
	var entity AccountEntity

	err := r.Write(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", accountID).
		First(&entity).
		Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAccountNotFound
		}
		return err
	}

	result := r.Write(ctx).
		Model(&AccountEntity{}).
		Where("id = ?", accountID).
		Update("balance", gorm.Expr("balance + ?", amount))

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrAccountNotFound
	}

	return nil
}

func (r *AccountRepository) GetBalance(ctx context.Context, accountID int64) (int64, error) {
	var entity AccountEntity
	err := r.Read(ctx).
		Select("balance").
		Where("id = ?", accountID).
		First(&entity).
		Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrAccountNotFound
		}
		return 0, err
	}

	return entity.Balance, nil
}

func (r *AccountRepository) GetByID(ctx context.Context, accountID int64) (*model.Account, error) {
	var entity AccountEntity
	err := r.Read(ctx).
		Where("id = ?", accountID).
		First(&entity).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return toAccountModel(&entity), nil
}
