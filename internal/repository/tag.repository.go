package repository

import (
	"context"
	"errors"
	"time"

	"github.com/nkurunziza/momo-ledger/internal/model"
	"github.com/nkurunziza/momo-ledger/pkg/pg"
	"gorm.io/gorm"
)

var ErrTagNotFound = errors.New("tag not found")

type TagEntity struct {
	ID   int64  `db:"id"   gorm:"primaryKey;autoIncrement;column:id"`
	Name string `db:"name" gorm:"column:name;not null;uniqueIndex"`
}

func (TagEntity) TableName() string {
	return "tags"
}

type TransactionTagEntity struct {
	TransactionID int64     `db:"transaction_id" gorm:"primaryKey;column:transaction_id"`
	TagID         int64     `db:"tag_id"         gorm:"primaryKey;column:tag_id"`
	AssignedBy    string    `db:"assigned_by"    gorm:"column:assigned_by;not null"`
	AssignedAt    time.Time `db:"assigned_at"    gorm:"column:assigned_at;autoCreateTime"`
}

func (TransactionTagEntity) TableName() string {
	return "transaction_tags"
}

type TagRepository struct {
	*pg.DB
}

func NewTagRepository(db *pg.DB) *TagRepository {
	return &TagRepository{
		db,
	}
}

func (r *TagRepository) GetOrCreate(ctx context.Context, name string) (*model.Tag, error) {
	var entity TagEntity
	err := r.Write(ctx).
		Where("name = ?", name).
		First(&entity).
		Error

	if err == nil {
		return &model.Tag{ID: entity.ID, Name: entity.Name}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	created := &TagEntity{Name: name}
	if err := r.Write(ctx).Create(created).Error; err != nil {
		return nil, err
	}
	return &model.Tag{ID: created.ID, Name: created.Name}, nil
}

// Assign links a tag to a transaction, keeping who assigned it and when.
// Assigning the same pair twice is a no-op.
func (r *TagRepository) Assign(ctx context.Context, transactionID, tagID int64, assignedBy string) error {
	var existing TransactionTagEntity
	err := r.Write(ctx).
		Where("transaction_id = ? AND tag_id = ?", transactionID, tagID).
		First(&existing).
		Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	return r.Write(ctx).Create(&TransactionTagEntity{
		TransactionID: transactionID,
		TagID:         tagID,
		AssignedBy:    assignedBy,
	}).Error
}

func (r *TagRepository) ListForTransaction(ctx context.Context, transactionID int64) ([]*model.TransactionTag, error) {
	var entities []*TransactionTagEntity
	err := r.Read(ctx).
		Where("transaction_id = ?", transactionID).
		Order("assigned_at").
		Find(&entities).
		Error
	if err != nil {
		return nil, err
	}

	out := make([]*model.TransactionTag, len(entities))
	for i, e := range entities {
		out[i] = &model.TransactionTag{
			TransactionID: e.TransactionID,
			TagID:         e.TagID,
			AssignedBy:    e.AssignedBy,
			AssignedAt:    e.AssignedAt,
		}
	}
	return out, nil
}
