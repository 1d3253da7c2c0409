package repository

import (
	"time"

	"github.com/nkurunziza/momo-ledger/internal/model"
)

type AccountEntity struct {
	ID        int64     `db:"id"         gorm:"primaryKey;autoIncrement;column:id"`
	PartyID   int64     `db:"party_id"   gorm:"column:party_id;not null;index"`
	Type      string    `db:"type"       gorm:"column:type;not null;default:MobileMoney"`
	Currency  string    `db:"currency"   gorm:"column:currency;not null"`
	Balance   int64     `db:"balance"    gorm:"column:balance;not null;default:0"`
	Active    bool      `db:"active"     gorm:"column:active;not null;default:true"`
	CreatedAt time.Time `db:"created_at" gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `db:"updated_at" gorm:"column:updated_at;autoUpdateTime"`
}

func (AccountEntity) TableName() string {
	return "accounts"
}

func toAccountEntity(m *model.Account) *AccountEntity {
	if m == nil {
		return nil
	}
	return &AccountEntity{
		ID:        m.ID,
		PartyID:   m.PartyID,
		Type:      string(m.Type),
		Currency:  m.Currency,
		Balance:   m.Balance,
		Active:    m.Active,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func toAccountModel(e *AccountEntity) *model.Account {
	if e == nil {
		return nil
	}
	return &model.Account{
		ID:        e.ID,
		PartyID:   e.PartyID,
		Type:      model.AccountType(e.Type),
		Currency:  e.Currency,
		Balance:   e.Balance,
		Active:    e.Active,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}
