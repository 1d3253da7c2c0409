package repository

import (
	"time"

	"github.com/nkurunziza/momo-ledger/internal/model"
)

type TransactionEntity struct {
	ID                int64     `db:"id"                  gorm:"primaryKey;autoIncrement;column:id"`
	Ref               string    `db:"ref"                 gorm:"column:ref;not null;uniqueIndex"`
	SenderAccountID   int64     `db:"sender_account_id"   gorm:"column:sender_account_id;not null;index"`
	ReceiverAccountID int64     `db:"receiver_account_id" gorm:"column:receiver_account_id;not null;index"`
	CategoryID        int64     `db:"category_id"         gorm:"column:category_id;not null;index"`
	Amount            int64     `db:"amount"              gorm:"column:amount;not null"`
	Currency          string    `db:"currency"            gorm:"column:currency;not null"`
	Status            string    `db:"status"              gorm:"column:status;not null;index"`
	OccurredAt        time.Time `db:"occurred_at"         gorm:"column:occurred_at;not null;index"`
	Description       string    `db:"description"         gorm:"column:description"`
	CreatedAt         time.Time `db:"created_at"          gorm:"column:created_at;autoCreateTime"`
}

func (TransactionEntity) TableName() string {
	return "transactions"
}

type FeeEntity struct {
	ID            int64    `db:"id"             gorm:"primaryKey;autoIncrement;column:id"`
	TransactionID int64    `db:"transaction_id" gorm:"column:transaction_id;not null;index"`
	Amount        int64    `db:"amount"         gorm:"column:amount;not null"`
	Type          string   `db:"type"           gorm:"column:type;not null"`
	Percentage    *float64 `db:"percentage"     gorm:"column:percentage"`
}

func (FeeEntity) TableName() string {
	return "fees"
}

func toTransactionEntity(m *model.Transaction) *TransactionEntity {
	if m == nil {
		return nil
	}
	return &TransactionEntity{
		ID:                m.ID,
		Ref:               m.Ref,
		SenderAccountID:   m.SenderAccountID,
		ReceiverAccountID: m.ReceiverAccountID,
		CategoryID:        m.CategoryID,
		Amount:            m.Amount,
		Currency:          m.Currency,
		Status:            string(m.Status),
		OccurredAt:        m.OccurredAt,
		Description:       m.Description,
		CreatedAt:         m.CreatedAt,
	}
}

func toTransactionModel(e *TransactionEntity) *model.Transaction {
	if e == nil {
		return nil
	}
	return &model.Transaction{
		ID:                e.ID,
		Ref:               e.Ref,
		SenderAccountID:   e.SenderAccountID,
		ReceiverAccountID: e.ReceiverAccountID,
		CategoryID:        e.CategoryID,
		Amount:            e.Amount,
		Currency:          e.Currency,
		Status:            model.TransactionStatus(e.Status),
		OccurredAt:        e.OccurredAt,
		Description:       e.Description,
		CreatedAt:         e.CreatedAt,
	}
}

func toFeeEntity(m *model.Fee) *FeeEntity {
	if m == nil {
		return nil
	}
	return &FeeEntity{
		ID:            m.ID,
		TransactionID: m.TransactionID,
		Amount:        m.Amount,
		Type:          string(m.Type),
		Percentage:    m.Percentage,
	}
}

func toFeeModel(e *FeeEntity) *model.Fee {
	if e == nil {
		return nil
	}
	return &model.Fee{
		ID:            e.ID,
		TransactionID: e.TransactionID,
		Amount:        e.Amount,
		Type:          model.FeeType(e.Type),
		Percentage:    e.Percentage,
	}
}
