package loader

import (
	"context"
	"errors"
	"fmt"

	"github.com/nkurunziza/momo-ledger/internal/audit"
	"github.com/nkurunziza/momo-ledger/internal/model"
	"github.com/nkurunziza/momo-ledger/internal/repository"
)

var (
	ErrSameAccount       = errors.New("sender and receiver resolve to the same account")
	ErrInsufficientFunds = errors.New("insufficient funds for transfer")
	ErrNotReversible     = errors.New("only completed transactions can be reversed")
)

type PartyRepository interface {
	UpsertByPhone(ctx context.Context, phone string, p *model.Party) (*model.Party, error)
}

type AccountRepository interface {
	GetOrCreateDefault(ctx context.Context, partyID int64, currency string) (*model.Account, error)
	LockForUpdate(ctx context.Context, ids ...int64) ([]*model.Account, error)
	DeductBalance(ctx context.Context, accountID int64, amount int64) error
	AddBalance(ctx context.Context, accountID int64, amount int64) error
	GetBalance(ctx context.Context, accountID int64) (int64, error)
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type TransactionRepository interface {
	Create(ctx context.Context, txn *model.Transaction) (*model.Transaction, error)
	GetByRef(ctx context.Context, ref string) (*model.Transaction, error)
	UpdateStatus(ctx context.Context, id int64, to model.TransactionStatus) error
	CreateFee(ctx context.Context, fee *model.Fee) (*model.Fee, error)
	GetFees(ctx context.Context, transactionID int64) ([]*model.Fee, error)
}

type CategoryRepository interface {
	GetOrCreateByName(ctx context.Context, name string) (*model.Category, error)
}

// Loader is the state-mutating core of the pipeline. It resolves the
// parties and accounts behind a normalized record and applies the value
// movement as one atomic unit, or refuses to touch the store at all.
type Loader struct {
	parties      PartyRepository
	accounts     AccountRepository
	transactions TransactionRepository
	categories   CategoryRepository
	audit        *audit.Recorder
	dedup        DedupCache
	feePolicy    FeePolicy
	locks        *accountLocker
}

func New(parties PartyRepository, accounts AccountRepository, transactions TransactionRepository, categories CategoryRepository, recorder *audit.Recorder, dedup DedupCache, feePolicy FeePolicy) *Loader {
	if dedup == nil {
		dedup = NoopDedupCache{}
	}
	return &Loader{
		parties:      parties,
		accounts:     accounts,
		transactions: transactions,
		categories:   categories,
		audit:        recorder,
		dedup:        dedup,
		feePolicy:    feePolicy,
		locks:        newAccountLocker(),
	}
}

// Load applies one record to the ledger and reports its terminal
// outcome. Per-record problems (duplicates, insufficient funds,
// integrity violations) land in the outcome and the audit log; only a
// store failure comes back as a non-nil error.
func (l *Loader) Load(ctx context.Context, rec *model.NormalizedRecord, assignment model.CategoryAssignment, batchID string) (model.Outcome, error) {
	if processed, err := l.dedup.IsProcessed(rec.Ref); err == nil && processed {
		l.audit.Info(ctx, batchID, model.StageLoad, fmt.Sprintf("duplicate reference %s, skipped", rec.Ref), "DUPLICATE", nil)
		return model.OutcomeSkipped, nil
	}

	sender, err := l.parties.UpsertByPhone(ctx, rec.SenderPhone, &model.Party{Type: model.PartyTypeIndividual})
	if err != nil {
		return "", fmt.Errorf("resolve sender party: %w", err)
	}
	receiver, err := l.parties.UpsertByPhone(ctx, rec.ReceiverPhone, &model.Party{Type: model.PartyTypeIndividual})
	if err != nil {
		return "", fmt.Errorf("resolve receiver party: %w", err)
	}

	senderAcct, err := l.accounts.GetOrCreateDefault(ctx, sender.ID, rec.Currency)
	if err != nil {
		return "", fmt.Errorf("resolve sender account: %w", err)
	}
	receiverAcct, err := l.accounts.GetOrCreateDefault(ctx, receiver.ID, rec.Currency)
	if err != nil {
		return "", fmt.Errorf("resolve receiver account: %w", err)
	}

	if senderAcct.ID == receiverAcct.ID {
		l.audit.Error(ctx, batchID, model.StageLoad, fmt.Sprintf("ref %s: %v", rec.Ref, ErrSameAccount), "INTEGRITY_VIOLATION", nil)
		return model.OutcomeFailed, nil
	}

	category, err := l.categories.GetOrCreateByName(ctx, assignment.Category)
	if err != nil {
		return "", fmt.Errorf("resolve category: %w", err)
	}

	// Authoritative dedup: the unique ref column, not the cache.
	if existing, err := l.transactions.GetByRef(ctx, rec.Ref); err == nil {
		_ = l.dedup.MarkProcessed(rec.Ref)
		l.audit.Info(ctx, batchID, model.StageLoad, fmt.Sprintf("duplicate reference %s, skipped", rec.Ref), "DUPLICATE", &existing.ID)
		return model.OutcomeSkipped, nil
	} else if !errors.Is(err, repository.ErrTransactionNotFound) {
		return "", fmt.Errorf("lookup reference: %w", err)
	}

	fee := l.feePolicy.Fee(rec.Amount)

	// Per-account serialization for the whole check-then-apply sequence.
	unlock := l.locks.Acquire(senderAcct.ID, receiverAcct.ID)
	defer unlock()

	balance, err := l.accounts.GetBalance(ctx, senderAcct.ID)
	if err != nil {
		return "", fmt.Errorf("read sender balance: %w", err)
	}
	if balance < rec.Amount+fee {
		return l.recordFailed(ctx, rec, senderAcct.ID, receiverAcct.ID, category.ID, batchID,
			fmt.Sprintf("ref %s: %v: balance %d, need %d", rec.Ref, ErrInsufficientFunds, balance, rec.Amount+fee))
	}

	var txnID int64
	err = l.accounts.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := l.accounts.LockForUpdate(ctx, senderAcct.ID, receiverAcct.ID); err != nil {
			return err
		}

		created, err := l.transactions.Create(ctx, &model.Transaction{
			Ref:               rec.Ref,
			SenderAccountID:   senderAcct.ID,
			ReceiverAccountID: receiverAcct.ID,
			CategoryID:        category.ID,
			Amount:            rec.Amount,
			Currency:          rec.Currency,
			Status:            model.TransactionStatusPending,
			OccurredAt:        rec.OccurredAt,
			Description:       rec.Description,
		})
		if err != nil {
			return err
		}
		txnID = created.ID

		if err := l.accounts.DeductBalance(ctx, senderAcct.ID, rec.Amount+fee); err != nil {
			return err
		}
		if err := l.accounts.AddBalance(ctx, receiverAcct.ID, rec.Amount); err != nil {
			return err
		}
		if _, err := l.transactions.CreateFee(ctx, l.feePolicy.FeeRecord(txnID, rec.Amount)); err != nil {
			return err
		}
		return l.transactions.UpdateStatus(ctx, txnID, model.TransactionStatusCompleted)
	})
	if err != nil {
		if errors.Is(err, repository.ErrInsufficientBalance) {
			// Lost a race with another writer on this account.
			return l.recordFailed(ctx, rec, senderAcct.ID, receiverAcct.ID, category.ID, batchID,
				fmt.Sprintf("ref %s: %v", rec.Ref, ErrInsufficientFunds))
		}
		if errors.Is(err, repository.ErrDuplicateReference) {
			// A concurrent worker committed this ref after the lookup
			// above. The unique index is the authority, so skip.
			return l.recordDuplicate(ctx, rec.Ref, batchID)
		}
		return "", fmt.Errorf("apply atomic unit: %w", err)
	}

	_ = l.dedup.MarkProcessed(rec.Ref)
	l.audit.Info(ctx, batchID, model.StageLoad, fmt.Sprintf("ref %s completed", rec.Ref), string(model.OutcomeCompleted), &txnID)
	return model.OutcomeCompleted, nil
}

// recordFailed persists a Failed transaction row without touching any
// balance, so the rejection itself is queryable.
func (l *Loader) recordFailed(ctx context.Context, rec *model.NormalizedRecord, senderAcctID, receiverAcctID, categoryID int64, batchID, message string) (model.Outcome, error) {
	created, err := l.transactions.Create(ctx, &model.Transaction{
		Ref:               rec.Ref,
		SenderAccountID:   senderAcctID,
		ReceiverAccountID: receiverAcctID,
		CategoryID:        categoryID,
		Amount:            rec.Amount,
		Currency:          rec.Currency,
		Status:            model.TransactionStatusFailed,
		OccurredAt:        rec.OccurredAt,
		Description:       rec.Description,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateReference) {
			return l.recordDuplicate(ctx, rec.Ref, batchID)
		}
		return "", fmt.Errorf("record failed transaction: %w", err)
	}
	_ = l.dedup.MarkProcessed(rec.Ref)
	l.audit.Error(ctx, batchID, model.StageLoad, message, string(model.OutcomeFailed), &created.ID)
	return model.OutcomeFailed, nil
}

func (l *Loader) recordDuplicate(ctx context.Context, ref, batchID string) (model.Outcome, error) {
	_ = l.dedup.MarkProcessed(ref)
	l.audit.Info(ctx, batchID, model.StageLoad, fmt.Sprintf("duplicate reference %s, skipped", ref), "DUPLICATE", nil)
	return model.OutcomeSkipped, nil
}

// Reverse posts a compensating transaction for a completed transfer:
// the receiver gives the amount back, the sender also recovers the
// fees, and the original row only changes status, never amounts.
func (l *Loader) Reverse(ctx context.Context, ref, batchID string) error {
	orig, err := l.transactions.GetByRef(ctx, ref)
	if err != nil {
		return err
	}
	if orig.Status != model.TransactionStatusCompleted {
		return fmt.Errorf("%w: %s is %s", ErrNotReversible, ref, orig.Status)
	}

	fees, err := l.transactions.GetFees(ctx, orig.ID)
	if err != nil {
		return err
	}
	var feeTotal int64
	for _, f := range fees {
		feeTotal += f.Amount
	}

	unlock := l.locks.Acquire(orig.SenderAccountID, orig.ReceiverAccountID)
	defer unlock()

	err = l.accounts.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := l.accounts.LockForUpdate(ctx, orig.SenderAccountID, orig.ReceiverAccountID); err != nil {
			return err
		}

		rev, err := l.transactions.Create(ctx, &model.Transaction{
			Ref:               "REV-" + orig.Ref,
			SenderAccountID:   orig.ReceiverAccountID,
			ReceiverAccountID: orig.SenderAccountID,
			CategoryID:        orig.CategoryID,
			Amount:            orig.Amount,
			Currency:          orig.Currency,
			Status:            model.TransactionStatusPending,
			OccurredAt:        orig.OccurredAt,
			Description:       "reversal of " + orig.Ref,
		})
		if err != nil {
			return err
		}

		// The refunded fee is attributed to the compensating row, so the
		// charge and its return stay visible as a pair.
		for _, f := range fees {
			if _, err := l.transactions.CreateFee(ctx, &model.Fee{
				TransactionID: rev.ID,
				Amount:        f.Amount,
				Type:          f.Type,
				Percentage:    f.Percentage,
			}); err != nil {
				return err
			}
		}

		if err := l.accounts.DeductBalance(ctx, orig.ReceiverAccountID, orig.Amount); err != nil {
			return err
		}
		if err := l.accounts.AddBalance(ctx, orig.SenderAccountID, orig.Amount+feeTotal); err != nil {
			return err
		}
		if err := l.transactions.UpdateStatus(ctx, rev.ID, model.TransactionStatusCompleted); err != nil {
			return err
		}
		return l.transactions.UpdateStatus(ctx, orig.ID, model.TransactionStatusReversed)
	})
	if err != nil {
		return fmt.Errorf("apply reversal: %w", err)
	}

	l.audit.Info(ctx, batchID, model.StageLoad, fmt.Sprintf("ref %s reversed", ref), string(model.TransactionStatusReversed), &orig.ID)
	return nil
}
