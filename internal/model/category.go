package model

// CategoryUncategorized is assigned when no categorization rule matches.
const CategoryUncategorized = "Uncategorized"

type Category struct {
	ID          int64  `json:"id"          db:"id"          gorm:"primaryKey;autoIncrement;column:id"`
	Name        string `json:"name"        db:"name"        gorm:"column:name;not null;uniqueIndex"`
	Description string `json:"description" db:"description" gorm:"column:description"`
	Active      bool   `json:"active"      db:"active"      gorm:"column:active;not null;default:true"`
}

func (Category) TableName() string { return "categories" }
