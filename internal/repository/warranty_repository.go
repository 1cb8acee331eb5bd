package repository

import (
	"vfw-service/internal/domain"
)

// WarrantyRepository persists the warranty aggregate. Implementations
// apply the lazy expiry correction on every save and update.
type WarrantyRepository interface {
	Save(warranty *domain.Warranty) error
	Update(warranty *domain.Warranty) error
	FindByID(id uint64) (*domain.Warranty, error)
	FindBySerial(serialNumber string) (*domain.Warranty, error)
	FindByUserId(userID uint64) ([]domain.Warranty, error)
}
