package domain

import "time"

// Event routing keys published to the lifecycle exchange.
const (
	EventOrderCreated          = "order.created"
	EventOrderStatusChanged    = "order.status_changed"
	EventOrderCancelled        = "order.cancelled"
	EventOrderPaymentConfirmed = "order.payment_confirmed"
	EventOrderPaymentFailed    = "order.payment_failed"
	EventInquiryCreated        = "inquiry.created"
	EventInquiryResponded      = "inquiry.responded"
	EventWarrantyRegistered    = "warranty.registered"
	EventWarrantyClaimFiled    = "warranty.claim_filed"
	EventWarrantyClaimUpdated  = "warranty.claim_updated"
)

type OrderCreatedEvent struct {
	OrderID     uint64    `json:"orderId"`
	OrderNumber string    `json:"orderNumber"`
	UserID      uint64    `json:"userId"`
	Total       int64     `json:"total"`
	CreatedAt   time.Time `json:"createdAt"`
}

type OrderStatusChangedEvent struct {
	OrderID     uint64      `json:"orderId"`
	OrderNumber string      `json:"orderNumber"`
	OldStatus   OrderStatus `json:"oldStatus"`
	NewStatus   OrderStatus `json:"newStatus"`
	ActorID     uint64      `json:"actorId"`
	ChangedAt   time.Time   `json:"changedAt"`
}

type OrderPaymentEvent struct {
	OrderID       uint64 `json:"orderId"`
	OrderNumber   string `json:"orderNumber"`
	TransactionID string `json:"transactionId"`
	Amount        int64  `json:"amount"`
}

type InquiryCreatedEvent struct {
	InquiryID uint64      `json:"inquiryId"`
	Type      InquiryType `json:"type"`
	Subject   string      `json:"subject"`
	Email     string      `json:"email"`
	CreatedAt time.Time   `json:"createdAt"`
}

type InquiryRespondedEvent struct {
	InquiryID   uint64        `json:"inquiryId"`
	ResponderID uint64        `json:"responderId"`
	Status      InquiryStatus `json:"status"`
	RespondedAt time.Time     `json:"respondedAt"`
}

type WarrantyRegisteredEvent struct {
	WarrantyID     uint64    `json:"warrantyId"`
	WarrantyNumber string    `json:"warrantyNumber"`
	SerialNumber   string    `json:"serialNumber"`
	ExpiryDate     time.Time `json:"expiryDate"`
}

type WarrantyClaimEvent struct {
	WarrantyID     uint64         `json:"warrantyId"`
	WarrantyNumber string         `json:"warrantyNumber"`
	ClaimID        string         `json:"claimId"`
	ClaimStatus    ClaimStatus    `json:"claimStatus"`
	WarrantyStatus WarrantyStatus `json:"warrantyStatus"`
}
