package mysql

import (
	"errors"
	"strings"
	"time"

	"vfw-service/internal/domain"
	"vfw-service/internal/repository"

	"gorm.io/gorm"
)

type warrantyRepo struct {
	db *gorm.DB
}

func NewWarrantyRepository(db *gorm.DB) repository.WarrantyRepository {
	return &warrantyRepo{db: db}
}

func (r *warrantyRepo) Save(warranty *domain.Warranty) error {
	warranty.NormalizeExpiry(time.Now())
	err := r.db.Create(warranty).Error
	if err != nil && isDuplicateKey(err) {
		return domain.ErrDuplicateSerial
	}
	return err
}

func (r *warrantyRepo) Update(warranty *domain.Warranty) error {
	warranty.NormalizeExpiry(time.Now())
	return r.db.Save(warranty).Error
}

func (r *warrantyRepo) FindByID(id uint64) (*domain.Warranty, error) {
	var w domain.Warranty
	if err := r.db.First(&w, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &w, nil
}

func (r *warrantyRepo) FindBySerial(serialNumber string) (*domain.Warranty, error) {
	var w domain.Warranty
	if err := r.db.Where("serial_number = ?", serialNumber).First(&w).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &w, nil
}

func (r *warrantyRepo) FindByUserId(userID uint64) ([]domain.Warranty, error) {
	var out []domain.Warranty
	if err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// isDuplicateKey matches the MySQL unique-constraint violation on the
// serial number index.
func isDuplicateKey(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(err.Error(), "Duplicate entry")
}
