package domain

import (
	"fmt"
	"time"

	"gorm.io/datatypes"
)

type OrderStatus string

const (
	OrderPending       OrderStatus = "pending"
	OrderConfirmed     OrderStatus = "confirmed"
	OrderManufacturing OrderStatus = "manufacturing"
	OrderQualityCheck  OrderStatus = "quality-check"
	OrderReady         OrderStatus = "ready"
	OrderShipped       OrderStatus = "shipped"
	OrderDelivered     OrderStatus = "delivered"
	OrderInstalled     OrderStatus = "installed"
	OrderCompleted     OrderStatus = "completed"
	OrderCancelled     OrderStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPartial  PaymentStatus = "partial"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
	PaymentFailed   PaymentStatus = "failed"
)

// TaxRatePercent is the fixed GST rate applied to the order subtotal.
const TaxRatePercent = 18

// orderProgress maps each status to the display progress percentage.
var orderProgress = map[OrderStatus]int{
	OrderPending:       0,
	OrderConfirmed:     10,
	OrderManufacturing: 30,
	OrderQualityCheck:  50,
	OrderReady:         70,
	OrderShipped:       85,
	OrderDelivered:     90,
	OrderInstalled:     95,
	OrderCompleted:     100,
	OrderCancelled:     0,
}

var orderStatusTitles = map[OrderStatus]string{
	OrderPending:       "Order Placed",
	OrderConfirmed:     "Order Confirmed",
	OrderManufacturing: "Manufacturing Started",
	OrderQualityCheck:  "Quality Check in Progress",
	OrderReady:         "Ready for Dispatch",
	OrderShipped:       "Order Shipped",
	OrderDelivered:     "Order Delivered",
	OrderInstalled:     "Installation Completed",
	OrderCompleted:     "Order Completed",
	OrderCancelled:     "Order Cancelled",
}

// terminalShipped is the set of statuses past which cancellation is refused.
var terminalShipped = map[OrderStatus]bool{
	OrderShipped:   true,
	OrderDelivered: true,
	OrderInstalled: true,
	OrderCompleted: true,
}

func ValidOrderStatus(s OrderStatus) bool {
	_, ok := orderProgress[s]
	return ok
}

// StatusTitle returns the timeline title for a status, falling back to a
// generic description for anything outside the fixed table.
func StatusTitle(s OrderStatus) string {
	if t, ok := orderStatusTitles[s]; ok {
		return t
	}
	return fmt.Sprintf("Status changed to %s", s)
}

type OrderItem struct {
	ProductID uint64 `json:"productId"`
	Name      string `json:"name"`
	Variant   string `json:"variant,omitempty"`
	Quantity  int64  `json:"quantity"`
	UnitPrice int64  `json:"unitPrice"`
	Discount  int64  `json:"discount"`
	LineTotal int64  `json:"lineTotal"`
}

type Address struct {
	Line1   string `json:"line1"`
	Line2   string `json:"line2,omitempty"`
	City    string `json:"city"`
	State   string `json:"state"`
	Pincode string `json:"pincode"`
	Country string `json:"country"`
}

type TimelineEntry struct {
	Status      OrderStatus `json:"status"`
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	Timestamp   time.Time   `json:"timestamp"`
	ActorID     uint64      `json:"actorId"`
}

type CancellationRecord struct {
	Reason       string     `json:"reason"`
	RequestedBy  uint64     `json:"requestedBy"`
	RequestedAt  time.Time  `json:"requestedAt"`
	ApprovedBy   *uint64    `json:"approvedBy,omitempty"`
	ApprovedAt   *time.Time `json:"approvedAt,omitempty"`
	RefundAmount int64      `json:"refundAmount"`
	RefundStatus string     `json:"refundStatus"`
}

type PaymentDetails struct {
	TransactionID string    `json:"transactionId"`
	PaymentDate   time.Time `json:"paymentDate"`
	Amount        int64     `json:"amount"`
	Method        string    `json:"method"`
	Status        string    `json:"status"`
}

// Order is the order aggregate. Items, timeline entries and the
// cancellation record have no identity outside the order document.
// Monetary amounts are integer minor units. The pricing fields are a
// snapshot frozen at creation and never recomputed from the catalog.
type Order struct {
	ID            uint64      `json:"id" gorm:"primaryKey;autoIncrement"`
	OrderNumber   string      `json:"orderNumber" gorm:"uniqueIndex;size:32"`
	UserID        uint64      `json:"userId" gorm:"index"`
	CustomerEmail string      `json:"customerEmail" gorm:"size:255"`
	Items         []OrderItem `json:"items" gorm:"serializer:json"`

	Subtotal     int64 `json:"subtotal"`
	Discount     int64 `json:"discount"`
	Tax          int64 `json:"tax"`
	Shipping     int64 `json:"shipping"`
	Installation int64 `json:"installation"`
	Total        int64 `json:"total"`

	Status        OrderStatus   `json:"status" gorm:"size:20;default:'pending';index"`
	PaymentStatus PaymentStatus `json:"paymentStatus" gorm:"size:20;default:'pending'"`

	ShippingAddress       Address `json:"shippingAddress" gorm:"serializer:json"`
	BillingAddress        Address `json:"billingAddress" gorm:"serializer:json"`
	PaymentMethod         string  `json:"paymentMethod" gorm:"size:32"`
	InstallationRequested bool    `json:"installationRequested"`

	PaymentDetails *PaymentDetails     `json:"paymentDetails,omitempty" gorm:"serializer:json"`
	Timeline       []TimelineEntry     `json:"timeline" gorm:"serializer:json"`
	Cancellation   *CancellationRecord `json:"cancellation,omitempty" gorm:"serializer:json"`
	Metadata       datatypes.JSON      `json:"metadata,omitempty"`

	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}

// ProgressPercent is derived from status on read, never stored.
func (o *Order) ProgressPercent() int {
	return orderProgress[o.Status]
}

func (o *Order) appendTimeline(status OrderStatus, title, description string, actor Actor) {
	o.Timeline = append(o.Timeline, TimelineEntry{
		Status:      status,
		Title:       title,
		Description: description,
		Timestamp:   time.Now(),
		ActorID:     actor.ID,
	})
}

// Place initializes the lifecycle fields of a freshly priced order and
// records the first timeline entry.
func (o *Order) Place(actor Actor) {
	o.Status = OrderPending
	o.PaymentStatus = PaymentPending
	o.appendTimeline(OrderPending, orderStatusTitles[OrderPending], "Your order has been received.", actor)
}

// ChangeStatus moves the order to newStatus and appends a timeline entry.
// It returns false without touching the order when the status is unchanged.
// Cancelled is terminal: a cancelled order cannot be moved again, and
// cancellation itself must go through Cancel, not ChangeStatus.
func (o *Order) ChangeStatus(newStatus OrderStatus, actor Actor) (bool, error) {
	if !ValidOrderStatus(newStatus) {
		return false, fmt.Errorf("%w: unknown order status %q", ErrValidation, newStatus)
	}
	if o.Status == OrderCancelled {
		return false, fmt.Errorf("%w: cancelled orders cannot change status", ErrInvalidTransition)
	}
	if newStatus == OrderCancelled {
		return false, fmt.Errorf("%w: cancellation must go through cancel", ErrInvalidTransition)
	}
	if newStatus == o.Status {
		return false, nil
	}
	o.Status = newStatus
	o.appendTimeline(newStatus, StatusTitle(newStatus), "", actor)
	return true, nil
}

// Cancel moves the order to cancelled and records the cancellation.
// Orders already shipped or beyond cannot be cancelled. Staff cancellations
// are auto-approved; customer cancellations await approval.
func (o *Order) Cancel(reason string, actor Actor) error {
	if terminalShipped[o.Status] {
		return fmt.Errorf("%w: cannot cancel order in status %s", ErrInvalidTransition, o.Status)
	}
	if o.Status == OrderCancelled {
		return fmt.Errorf("%w: order already cancelled", ErrInvalidTransition)
	}
	now := time.Now()
	rec := &CancellationRecord{
		Reason:       reason,
		RequestedBy:  actor.ID,
		RequestedAt:  now,
		RefundAmount: o.Total,
		RefundStatus: "pending",
	}
	if actor.IsStaff() {
		rec.ApprovedBy = &actor.ID
		rec.ApprovedAt = &now
	}
	o.Cancellation = rec
	o.Status = OrderCancelled
	o.appendTimeline(OrderCancelled, StatusTitle(OrderCancelled), reason, actor)
	return nil
}

// ApplyPayment records a successful online payment. It is idempotent on the
// external transaction id: re-delivery of an already-applied transaction
// returns false and leaves the order untouched.
func (o *Order) ApplyPayment(transactionID string, amount int64, actor Actor) bool {
	if o.PaymentDetails != nil && o.PaymentDetails.TransactionID == transactionID {
		return false
	}
	o.PaymentStatus = PaymentPaid
	o.PaymentDetails = &PaymentDetails{
		TransactionID: transactionID,
		PaymentDate:   time.Now(),
		Amount:        amount,
		Method:        "online",
		Status:        "completed",
	}
	o.appendTimeline(o.Status, "Payment Confirmed", fmt.Sprintf("Payment received, transaction %s.", transactionID), actor)
	return true
}

// FailPayment records a failed payment attempt reported by the gateway.
func (o *Order) FailPayment(transactionID, reason string, actor Actor) {
	o.PaymentStatus = PaymentFailed
	o.appendTimeline(o.Status, "Payment Failed", fmt.Sprintf("Transaction %s failed: %s", transactionID, reason), actor)
}
