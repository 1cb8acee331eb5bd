package mysql

import (
	"errors"

	"vfw-service/internal/domain"
	"vfw-service/internal/repository"

	"gorm.io/gorm"
)

type inquiryRepo struct {
	db *gorm.DB
}

func NewInquiryRepository(db *gorm.DB) repository.InquiryRepository {
	return &inquiryRepo{db: db}
}

func (r *inquiryRepo) Save(inquiry *domain.Inquiry) error {
	return r.db.Create(inquiry).Error
}

func (r *inquiryRepo) Update(inquiry *domain.Inquiry) error {
	return r.db.Save(inquiry).Error
}

func (r *inquiryRepo) FindByID(id uint64) (*domain.Inquiry, error) {
	var in domain.Inquiry
	if err := r.db.First(&in, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &in, nil
}

func (r *inquiryRepo) FindByUserId(userID uint64) ([]domain.Inquiry, error) {
	var out []domain.Inquiry
	if err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *inquiryRepo) FindByStatus(status domain.InquiryStatus) ([]domain.Inquiry, error) {
	var out []domain.Inquiry
	if err := r.db.Where("status = ?", status).Order("created_at ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Delete hard-deletes an inquiry. Orders and warranties have no delete
// path; inquiries are the only aggregate that supports one.
func (r *inquiryRepo) Delete(id uint64) error {
	return r.db.Delete(&domain.Inquiry{}, id).Error
}
