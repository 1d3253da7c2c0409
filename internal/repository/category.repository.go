package repository

import (
	"context"
	"errors"

	"github.com/nkurunziza/momo-ledger/internal/model"
	"github.com/nkurunziza/momo-ledger/pkg/pg"
	"gorm.io/gorm"
)

var ErrCategoryNotFound = errors.New("category not found")

type CategoryEntity struct {
	ID          int64  `db:"id"          gorm:"primaryKey;autoIncrement;column:id"`
	Name        string `db:"name"        gorm:"column:name;not null;uniqueIndex"`
	Description string `db:"description" gorm:"column:description"`
	Active      bool   `db:"active"      gorm:"column:active;not null;default:true"`
}

func (CategoryEntity) TableName() string {
	return "categories"
}

func toCategoryModel(e *CategoryEntity) *model.Category {
	if e == nil {
		return nil
	}
	return &model.Category{
		ID:          e.ID,
		Name:        e.Name,
		Description: e.Description,
		Active:      e.Active,
	}
}

type CategoryRepository struct {
	*pg.DB
}

func NewCategoryRepository(db *pg.DB) *CategoryRepository {
	return &CategoryRepository{
		db,
	}
}

// GetOrCreateByName resolves a category by name, creating an active one
// if it does not exist yet.
func (r *CategoryRepository) GetOrCreateByName(ctx context.Context, name string) (*model.Category, error) {
	var entity CategoryEntity
	err := r.Write(ctx).
		Where("name = ?", name).
		First(&entity).
		Error

	if err == nil {
		return toCategoryModel(&entity), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	created := &CategoryEntity{Name: name, Active: true}
	if err := r.Write(ctx).Create(created).Error; err != nil {
		return nil, err
	}
	return toCategoryModel(created), nil
}

func (r *CategoryRepository) GetByName(ctx context.Context, name string) (*model.Category, error) {
	var entity CategoryEntity
	err := r.Read(ctx).
		Where("name = ?", name).
		First(&entity).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return toCategoryModel(&entity), nil
}
