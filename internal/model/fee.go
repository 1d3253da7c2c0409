package model

type FeeType string

const (
	FeeTypeFlat       FeeType = "Flat"
	FeeTypePercentage FeeType = "Percentage"
	FeeTypeTiered     FeeType = "Tiered"
)

// Fee is a charge owned by exactly one Transaction; it is deleted with it.
type Fee struct {
	ID            int64        `json:"id"             db:"id"             gorm:"primaryKey;autoIncrement;column:id"`
	TransactionID int64        `json:"transaction_id" db:"transaction_id" gorm:"column:transaction_id;not null;index"`
	Transaction   *Transaction `json:"-"                                    gorm:"foreignKey:TransactionID;references:ID;constraint:OnDelete:CASCADE"`
	Amount        int64        `json:"amount"         db:"amount"         gorm:"column:amount;not null"` // minor units, >= 0
	Type          FeeType      `json:"type"           db:"type"           gorm:"column:type;not null"`
	Percentage    *float64     `json:"percentage"     db:"percentage"     gorm:"column:percentage"`
}

func (Fee) TableName() string { return "fees" }
