package repository

import (
	"context"
	"errors"
	"time"

	"github.com/nkurunziza/momo-ledger/internal/model"
	"github.com/nkurunziza/momo-ledger/pkg/pg"
	"gorm.io/gorm"
)

var (
	ErrPartyNotFound = errors.New("party not found")
	ErrEmptyPhone    = errors.New("party phone must not be empty")
)

type PartyRepository struct {
	*pg.DB
}

func NewPartyRepository(db *pg.DB) *PartyRepository {
	return &PartyRepository{
		db,
	}
}

// UpsertByPhone resolves the party owning phone, creating it on first
// sight. On conflict the existing name/email win (first-write-wins);
// only updated_at is touched so reprocessing leaves identity stable.
func (r *PartyRepository) UpsertByPhone(ctx context.Context, phone string, p *model.Party) (*model.Party, error) {
	if phone == "" {
		return nil, ErrEmptyPhone
	}

	var entity PartyEntity
	err := r.Write(ctx).
		Where("phone = ?", phone).
		First(&entity).
		Error

	if err == nil {
		result := r.Write(ctx).
			Model(&PartyEntity{}).
			Where("id = ?", entity.ID).
			Update("updated_at", time.Now())
		if result.Error != nil {
			return nil, result.Error
		}
		return toPartyModel(&entity), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	created := &PartyEntity{
		Name:       p.Name,
		Type:       string(p.Type),
		Phone:      phone,
		NationalID: p.NationalID,
		Email:      p.Email,
	}
	if created.Name == "" {
		created.Name = phone
	}
	if created.Type == "" {
		created.Type = string(model.PartyTypeIndividual)
	}
	if err := r.Write(ctx).Create(created).Error; err != nil {
		return nil, err
	}
	return toPartyModel(created), nil
}

func (r *PartyRepository) GetByPhone(ctx context.Context, phone string) (*model.Party, error) {
	var entity PartyEntity
	err := r.Read(ctx).
		Where("phone = ?", phone).
		First(&entity).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPartyNotFound
		}
		return nil, err
	}
	return toPartyModel(&entity), nil
}

func (r *PartyRepository) GetByID(ctx context.Context, id int64) (*model.Party, error) {
	var entity PartyEntity
	err := r.Read(ctx).
		Where("id = ?", id).
		First(&entity).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPartyNotFound
		}
		return nil, err
	}
	return toPartyModel(&entity), nil
}
