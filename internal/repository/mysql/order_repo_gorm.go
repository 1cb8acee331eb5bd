package mysql

import (
	"errors"
	"fmt"
	"time"

	"vfw-service/internal/domain"
	"vfw-service/internal/repository"

	"gorm.io/gorm"
)

// OrderSequence backs order numbering. A row is inserted in the same
// transaction that saves the order, so the auto-increment id is unique
// even under concurrent creation.
type OrderSequence struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (OrderSequence) TableName() string { return "order_sequences" }

type orderRepo struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) repository.OrderRepository {
	return &orderRepo{db: db}
}

// Save persists a new order, assigning its VFW number from the sequence
// table inside the same transaction.
func (r *orderRepo) Save(order *domain.Order) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		seq := OrderSequence{}
		if err := tx.Create(&seq).Error; err != nil {
			return err
		}
		order.OrderNumber = fmt.Sprintf("VFW%06d", seq.ID)
		if err := tx.Create(order).Error; err != nil {
			return err
		}
		if order.ID == 0 {
			return errors.New("failed to assign order ID")
		}
		return nil
	})
}

func (r *orderRepo) Update(order *domain.Order) error {
	return r.db.Save(order).Error
}

func (r *orderRepo) FindByID(id uint64) (*domain.Order, error) {
	var o domain.Order
	if err := r.db.First(&o, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &o, nil
}

func (r *orderRepo) FindByOrderNumber(number string) (*domain.Order, error) {
	var o domain.Order
	if err := r.db.Where("order_number = ?", number).First(&o).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &o, nil
}

func (r *orderRepo) FindByUserId(userID uint64) ([]domain.Order, error) {
	var out []domain.Order
	if err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
