package model

import "time"

// LogSeverity of a processing log entry.
type LogSeverity string

const (
	LogSeverityDebug   LogSeverity = "DEBUG"
	LogSeverityInfo    LogSeverity = "INFO"
	LogSeverityWarning LogSeverity = "WARNING"
	LogSeverityError   LogSeverity = "ERROR"
)

// ProcessingLogEntry is an append-only audit record. It weakly references
// a transaction: deleting the transaction nulls the reference, never the
// log row itself. Normal operation never updates or deletes entries.
type ProcessingLogEntry struct {
	ID            int64        `json:"id"             db:"id"             gorm:"primaryKey;autoIncrement;column:id"`
	BatchID       string       `json:"batch_id"       db:"batch_id"       gorm:"column:batch_id;not null;index"`
	Stage         string       `json:"stage"          db:"stage"          gorm:"column:stage;not null"`
	Severity      LogSeverity  `json:"severity"       db:"severity"       gorm:"column:severity;not null;index"`
	Message       string       `json:"message"        db:"message"        gorm:"column:message;not null"`
	Status        string       `json:"status"         db:"status"         gorm:"column:status"`
	TransactionID *int64       `json:"transaction_id" db:"transaction_id" gorm:"column:transaction_id;index"`
	Transaction   *Transaction `json:"-"                                    gorm:"foreignKey:TransactionID;references:ID;constraint:OnDelete:SET NULL"`
	CreatedAt     time.Time    `json:"created_at"     db:"created_at"     gorm:"column:created_at;autoCreateTime"`
}

func (ProcessingLogEntry) TableName() string { return "processing_log" }
