package repository

import (
	"vfw-service/internal/domain"
)

// OrderRepository persists the order aggregate. Save assigns the order
// number; finders return nil, nil when nothing matches.
type OrderRepository interface {
	Save(order *domain.Order) error
	Update(order *domain.Order) error
	FindByID(id uint64) (*domain.Order, error)
	FindByOrderNumber(number string) (*domain.Order, error)
	FindByUserId(userID uint64) ([]domain.Order, error)
}
