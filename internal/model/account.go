package model

import "time"

type AccountType string

const (
	AccountTypeMobileMoney AccountType = "MobileMoney"
	AccountTypeBank        AccountType = "Bank"
)

// Account is a balance-bearing container owned by exactly one Party.
// Balance is stored in minor units (cents) and must never go negative.
type Account struct {
	ID        int64       `json:"id"         db:"id"         gorm:"primaryKey;autoIncrement;column:id"`
	PartyID   int64       `json:"party_id"   db:"party_id"   gorm:"column:party_id;not null;index"`
	Party     *Party      `json:"-"                            gorm:"foreignKey:PartyID;references:ID;constraint:OnDelete:CASCADE"`
	Type      AccountType `json:"type"       db:"type"       gorm:"column:type;not null;default:MobileMoney"`
	Currency  string      `json:"currency"   db:"currency"   gorm:"column:currency;not null"`
	Balance   int64       `json:"balance"    db:"balance"    gorm:"column:balance;not null;default:0"`
	Active    bool        `json:"active"     db:"active"     gorm:"column:active;not null;default:true"`
	CreatedAt time.Time   `json:"created_at" db:"created_at" gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time   `json:"updated_at" db:"updated_at" gorm:"column:updated_at;autoUpdateTime"`
}

func (Account) TableName() string { return "accounts" }
