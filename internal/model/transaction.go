package model

import "time"

// TransactionStatus is the lifecycle state of a transaction.
// Transitions only move forward: Pending -> Completed | Failed,
// Completed -> Reversed. A Reversed state is reached by a compensating
// entry, never by editing the original row.
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "Pending"
	TransactionStatusCompleted TransactionStatus = "Completed"
	TransactionStatusFailed    TransactionStatus = "Failed"
	TransactionStatusReversed  TransactionStatus = "Reversed"
)

func (s TransactionStatus) Valid() bool {
	switch s {
	case TransactionStatusPending, TransactionStatusCompleted,
		TransactionStatusFailed, TransactionStatusReversed:
		return true
	}
	return false
}

func (s TransactionStatus) CanTransition(to TransactionStatus) bool {
	switch s {
	case TransactionStatusPending:
		return to == TransactionStatusCompleted || to == TransactionStatusFailed
	case TransactionStatusCompleted:
		return to == TransactionStatusReversed
	}
	return false
}

type Transaction struct {
	ID                int64             `json:"id"                  db:"id"                  gorm:"primaryKey;autoIncrement;column:id"`
	Ref               string            `json:"ref"                 db:"ref"                 gorm:"column:ref;not null;uniqueIndex"` // external reference code, the idempotency key
	SenderAccountID   int64             `json:"sender_account_id"   db:"sender_account_id"   gorm:"column:sender_account_id;not null;index"`
	SenderAccount     *Account          `json:"-"                                              gorm:"foreignKey:SenderAccountID;references:ID"`
	ReceiverAccountID int64             `json:"receiver_account_id" db:"receiver_account_id" gorm:"column:receiver_account_id;not null;index"`
	ReceiverAccount   *Account          `json:"-"                                              gorm:"foreignKey:ReceiverAccountID;references:ID"`
	CategoryID        int64             `json:"category_id"         db:"category_id"         gorm:"column:category_id;not null;index"`
	Category          *Category         `json:"-"                                              gorm:"foreignKey:CategoryID;references:ID"`
	Amount            int64             `json:"amount"              db:"amount"              gorm:"column:amount;not null"` // minor units, > 0
	Currency          string            `json:"currency"            db:"currency"            gorm:"column:currency;not null"`
	Status            TransactionStatus `json:"status"              db:"status"              gorm:"column:status;not null;index"`
	OccurredAt        time.Time         `json:"occurred_at"         db:"occurred_at"         gorm:"column:occurred_at;not null;index"`
	Description       string            `json:"description"         db:"description"         gorm:"column:description"`
	CreatedAt         time.Time         `json:"created_at"          db:"created_at"          gorm:"column:created_at;autoCreateTime"`
}

func (Transaction) TableName() string { return "transactions" }
