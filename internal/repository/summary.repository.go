package repository

import (
	"context"

	"github.com/nkurunziza/momo-ledger/pkg/pg"
)

// Aggregate rows backing the snapshot export. They mirror the
// transaction_summary and account_summary read views so the export and
// the views never disagree.

type StatusTotalsRow struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
	Total  int64  `json:"total"`
}

type CategoryTotalsRow struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
	Total    int64  `json:"total"`
}

type DailyVolumeRow struct {
	Day   string `json:"day"`
	Count int64  `json:"count"`
	Total int64  `json:"total"`
}

type AccountSummaryRow struct {
	PartyName     string `json:"party_name"`
	Phone         string `json:"phone"`
	Currency      string `json:"currency"`
	Balance       int64  `json:"balance"`
	SentCount     int64  `json:"sent_count"`
	SentTotal     int64  `json:"sent_total"`
	ReceivedCount int64  `json:"received_count"`
	ReceivedTotal int64  `json:"received_total"`
}

type TransactionSummaryRow struct {
	Ref          string `json:"ref"`
	SenderName   string `json:"sender_name"`
	ReceiverName string `json:"receiver_name"`
	Category     string `json:"category"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
	Status       string `json:"status"`
	OccurredAt   string `json:"occurred_at"`
}

type SummaryRepository struct {
	*pg.DB
}

func NewSummaryRepository(db *pg.DB) *SummaryRepository {
	return &SummaryRepository{
		db,
	}
}

func (r *SummaryRepository) TotalsByStatus(ctx context.Context) ([]StatusTotalsRow, error) {
	var rows []StatusTotalsRow
	err := r.Read(ctx).Raw(`
		SELECT status, COUNT(*) AS count, COALESCE(SUM(amount), 0) AS total
		FROM transactions
		GROUP BY status
		ORDER BY status`).Scan(&rows).Error
	return rows, err
}

func (r *SummaryRepository) TotalsByCategory(ctx context.Context) ([]CategoryTotalsRow, error) {
	var rows []CategoryTotalsRow
	err := r.Read(ctx).Raw(`
		SELECT c.name AS category, COUNT(*) AS count, COALESCE(SUM(t.amount), 0) AS total
		FROM transactions t
		JOIN categories c ON c.id = t.category_id
		GROUP BY c.name
		ORDER BY c.name`).Scan(&rows).Error
	return rows, err
}

func (r *SummaryRepository) DailyVolume(ctx context.Context) ([]DailyVolumeRow, error) {
	var rows []DailyVolumeRow
	err := r.Read(ctx).Raw(`
		SELECT date(occurred_at) AS day, COUNT(*) AS count, COALESCE(SUM(amount), 0) AS total
		FROM transactions
		GROUP BY date(occurred_at)
		ORDER BY day`).Scan(&rows).Error
	return rows, err
}

func (r *SummaryRepository) AccountSummary(ctx context.Context) ([]AccountSummaryRow, error) {
	var rows []AccountSummaryRow
	err := r.Read(ctx).Raw(`
		SELECT p.name AS party_name,
		       p.phone AS phone,
		       a.currency AS currency,
		       a.balance AS balance,
		       COALESCE(s.cnt, 0) AS sent_count,
		       COALESCE(s.total, 0) AS sent_total,
		       COALESCE(rc.cnt, 0) AS received_count,
		       COALESCE(rc.total, 0) AS received_total
		FROM accounts a
		JOIN parties p ON p.id = a.party_id
		LEFT JOIN (
			SELECT sender_account_id, COUNT(*) AS cnt, SUM(amount) AS total
			FROM transactions WHERE status = 'Completed'
			GROUP BY sender_account_id
		) s ON s.sender_account_id = a.id
		LEFT JOIN (
			SELECT receiver_account_id, COUNT(*) AS cnt, SUM(amount) AS total
			FROM transactions WHERE status = 'Completed'
			GROUP BY receiver_account_id
		) rc ON rc.receiver_account_id = a.id
		ORDER BY p.name, a.id`).Scan(&rows).Error
	return rows, err
}

func (r *SummaryRepository) TransactionSummary(ctx context.Context, limit, offset int) ([]TransactionSummaryRow, error) {
	if limit == 0 {
		limit = 100
	}
	var rows []TransactionSummaryRow
	err := r.Read(ctx).Raw(`
		SELECT t.ref AS ref,
		       sp.name AS sender_name,
		       rp.name AS receiver_name,
		       c.name AS category,
		       t.amount AS amount,
		       t.currency AS currency,
		       t.status AS status,
		       t.occurred_at AS occurred_at
		FROM transactions t
		JOIN accounts sa ON sa.id = t.sender_account_id
		JOIN parties sp ON sp.id = sa.party_id
		JOIN accounts ra ON ra.id = t.receiver_account_id
		JOIN parties rp ON rp.id = ra.party_id
		JOIN categories c ON c.id = t.category_id
		ORDER BY t.occurred_at, t.id
		LIMIT ? OFFSET ?`, limit, offset).Scan(&rows).Error
	return rows, err
}
