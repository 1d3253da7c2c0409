package model

import "time"

// PartyType classifies an actor able to own accounts.
type PartyType string

const (
	PartyTypeIndividual PartyType = "Individual"
	PartyTypeBusiness   PartyType = "Business"
	PartyTypeAgent      PartyType = "Agent"
)

type Party struct {
	ID         int64     `json:"id"          db:"id"           gorm:"primaryKey;autoIncrement;column:id"`
	Name       string    `json:"name"        db:"name"         gorm:"column:name;not null"`
	Type       PartyType `json:"type"        db:"type"         gorm:"column:type;not null;default:Individual"`
	Phone      string    `json:"phone"       db:"phone"        gorm:"column:phone;not null;uniqueIndex"` // canonical +<digits> form
	NationalID *string   `json:"national_id" db:"national_id"  gorm:"column:national_id;unique"`
	Email      *string   `json:"email"       db:"email"        gorm:"column:email"`
	CreatedAt  time.Time `json:"created_at"  db:"created_at"   gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `json:"updated_at"  db:"updated_at"   gorm:"column:updated_at;autoUpdateTime"`
}

func (Party) TableName() string { return "parties" }
