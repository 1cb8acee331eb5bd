package repository

import (
	"vfw-service/internal/domain"
)

type InquiryRepository interface {
	Save(inquiry *domain.Inquiry) error
	Update(inquiry *domain.Inquiry) error
	FindByID(id uint64) (*domain.Inquiry, error)
	FindByUserId(userID uint64) ([]domain.Inquiry, error)
	FindByStatus(status domain.InquiryStatus) ([]domain.Inquiry, error)
	Delete(id uint64) error
}
