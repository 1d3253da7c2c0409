package repository

import (
	"time"

	"github.com/nkurunziza/momo-ledger/internal/model"
)

type PartyEntity struct {
	ID         int64     `db:"id"          gorm:"primaryKey;autoIncrement;column:id"`
	Name       string    `db:"name"        gorm:"column:name;not null"`
	Type       string    `db:"type"        gorm:"column:type;not null;default:Individual"`
	Phone      string    `db:"phone"       gorm:"column:phone;not null;uniqueIndex"`
	NationalID *string   `db:"national_id" gorm:"column:national_id;unique"`
	Email      *string   `db:"email"       gorm:"column:email"`
	CreatedAt  time.Time `db:"created_at"  gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `db:"updated_at"  gorm:"column:updated_at;autoUpdateTime"`
}

func (PartyEntity) TableName() string {
	return "parties"
}

func toPartyEntity(m *model.Party) *PartyEntity {
	if m == nil {
		return nil
	}
	return &PartyEntity{
		ID:         m.ID,
		Name:       m.Name,
		Type:       string(m.Type),
		Phone:      m.Phone,
		NationalID: m.NationalID,
		Email:      m.Email,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

func toPartyModel(e *PartyEntity) *model.Party {
	if e == nil {
		return nil
	}
	return &model.Party{
		ID:         e.ID,
		Name:       e.Name,
		Type:       model.PartyType(e.Type),
		Phone:      e.Phone,
		NationalID: e.NationalID,
		Email:      e.Email,
		CreatedAt:  e.CreatedAt,
		UpdatedAt:  e.UpdatedAt,
	}
}
