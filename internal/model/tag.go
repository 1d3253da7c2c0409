package model

import "time"

type Tag struct {
	ID   int64  `json:"id"   db:"id"   gorm:"primaryKey;autoIncrement;column:id"`
	Name string `json:"name" db:"name" gorm:"column:name;not null;uniqueIndex"`
}

func (Tag) TableName() string { return "tags" }

// TransactionTag is the explicit Transaction <-> Tag join row; assignment
// metadata lives here, not on either side.
type TransactionTag struct {
	TransactionID int64        `json:"transaction_id" db:"transaction_id" gorm:"primaryKey;column:transaction_id"`
	Transaction   *Transaction `json:"-"                                    gorm:"foreignKey:TransactionID;references:ID;constraint:OnDelete:CASCADE"`
	TagID         int64        `json:"tag_id"         db:"tag_id"         gorm:"primaryKey;column:tag_id"`
	Tag           *Tag         `json:"-"                                    gorm:"foreignKey:TagID;references:ID;constraint:OnDelete:CASCADE"`
	AssignedBy    string       `json:"assigned_by"    db:"assigned_by"    gorm:"column:assigned_by;not null"`
	AssignedAt    time.Time    `json:"assigned_at"    db:"assigned_at"    gorm:"column:assigned_at;autoCreateTime"`
}

func (TransactionTag) TableName() string { return "transaction_tags" }
