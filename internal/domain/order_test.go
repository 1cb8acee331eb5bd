package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func placedOrder() *Order {
	o := &Order{UserID: 7, Total: 2360}
	o.Place(Actor{ID: 7, Role: RoleUser})
	return o
}

func TestOrder_Place(t *testing.T) {
	o := placedOrder()

	assert.Equal(t, OrderPending, o.Status)
	assert.Equal(t, PaymentPending, o.PaymentStatus)
	assert.Len(t, o.Timeline, 1)
	assert.Equal(t, "Order Placed", o.Timeline[0].Title)
}

func TestOrder_ChangeStatus(t *testing.T) {
	tests := []struct {
		name          string
		newStatus     OrderStatus
		wantChanged   bool
		wantErr       error
		wantTimelines int
	}{
		{
			name:          "valid forward transition",
			newStatus:     OrderConfirmed,
			wantChanged:   true,
			wantTimelines: 2,
		},
		{
			name:          "same status is a no-op",
			newStatus:     OrderPending,
			wantChanged:   false,
			wantTimelines: 1,
		},
		{
			name:          "unknown status rejected",
			newStatus:     OrderStatus("dispatched"),
			wantErr:       ErrValidation,
			wantTimelines: 1,
		},
		{
			name:          "cancelled must go through Cancel",
			newStatus:     OrderCancelled,
			wantErr:       ErrInvalidTransition,
			wantTimelines: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := placedOrder()
			changed, err := o.ChangeStatus(tt.newStatus, Actor{ID: 1, Role: RoleAdmin})

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.wantChanged, changed)
			}
			assert.Len(t, o.Timeline, tt.wantTimelines)
		})
	}
}

func TestOrder_ChangeStatusAfterCancellation(t *testing.T) {
	o := placedOrder()
	admin := Actor{ID: 1, Role: RoleAdmin}

	assert.NoError(t, o.Cancel("customer request", admin))
	timelineBefore := len(o.Timeline)

	// Cancelled is terminal: no status update may resurrect the order.
	for _, s := range []OrderStatus{OrderConfirmed, OrderPending, OrderCompleted} {
		changed, err := o.ChangeStatus(s, admin)
		assert.ErrorIs(t, err, ErrInvalidTransition, "to %s", s)
		assert.False(t, changed)
	}

	assert.Equal(t, OrderCancelled, o.Status)
	assert.Len(t, o.Timeline, timelineBefore)
	assert.NotNil(t, o.Cancellation)
}

func TestOrder_TimelineAppendOnly(t *testing.T) {
	o := placedOrder()
	admin := Actor{ID: 1, Role: RoleAdmin}

	// Five updates, two of which repeat the current status.
	sequence := []OrderStatus{OrderConfirmed, OrderConfirmed, OrderManufacturing, OrderManufacturing, OrderReady}
	effective := 0
	for _, s := range sequence {
		changed, err := o.ChangeStatus(s, admin)
		assert.NoError(t, err)
		if changed {
			effective++
		}
	}

	assert.Equal(t, 3, effective)
	assert.Len(t, o.Timeline, 1+effective)
}

func TestOrder_Cancel(t *testing.T) {
	tests := []struct {
		name    string
		status  OrderStatus
		wantErr bool
	}{
		{name: "pending cancellable", status: OrderPending},
		{name: "confirmed cancellable", status: OrderConfirmed},
		{name: "manufacturing cancellable", status: OrderManufacturing},
		{name: "quality-check cancellable", status: OrderQualityCheck},
		{name: "ready cancellable", status: OrderReady},
		{name: "shipped not cancellable", status: OrderShipped, wantErr: true},
		{name: "delivered not cancellable", status: OrderDelivered, wantErr: true},
		{name: "installed not cancellable", status: OrderInstalled, wantErr: true},
		{name: "completed not cancellable", status: OrderCompleted, wantErr: true},
		{name: "already cancelled", status: OrderCancelled, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := placedOrder()
			o.Status = tt.status

			err := o.Cancel("changed my mind", Actor{ID: 7, Role: RoleUser})
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidTransition)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, OrderCancelled, o.Status)
			assert.NotNil(t, o.Cancellation)
			assert.Equal(t, "changed my mind", o.Cancellation.Reason)
			assert.Nil(t, o.Cancellation.ApprovedBy)
			assert.Equal(t, o.Total, o.Cancellation.RefundAmount)
		})
	}
}

func TestOrder_CancelByStaffAutoApproved(t *testing.T) {
	o := placedOrder()
	staff := Actor{ID: 42, Role: RoleManager}

	assert.NoError(t, o.Cancel("stock issue", staff))
	assert.NotNil(t, o.Cancellation.ApprovedBy)
	assert.Equal(t, staff.ID, *o.Cancellation.ApprovedBy)
	assert.NotNil(t, o.Cancellation.ApprovedAt)
}

func TestOrder_ProgressPercent(t *testing.T) {
	want := map[OrderStatus]int{
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
	for status, pct := range want {
		o := &Order{Status: status}
		assert.Equal(t, pct, o.ProgressPercent(), "status %s", status)
	}
}

func TestOrder_ApplyPaymentIdempotent(t *testing.T) {
	o := placedOrder()

	applied := o.ApplyPayment("txn_123", 2360, Anonymous)
	assert.True(t, applied)
	assert.Equal(t, PaymentPaid, o.PaymentStatus)
	assert.Equal(t, "txn_123", o.PaymentDetails.TransactionID)
	assert.Len(t, o.Timeline, 2)

	// Webhook replay of the same transaction changes nothing.
	applied = o.ApplyPayment("txn_123", 2360, Anonymous)
	assert.False(t, applied)
	assert.Len(t, o.Timeline, 2)

	// A genuinely new transaction overwrites the snapshot.
	applied = o.ApplyPayment("txn_456", 2360, Anonymous)
	assert.True(t, applied)
	assert.Equal(t, "txn_456", o.PaymentDetails.TransactionID)
}

func TestStatusTitleFallback(t *testing.T) {
	assert.Equal(t, "Order Shipped", StatusTitle(OrderShipped))
	assert.Equal(t, "Status changed to on-hold", StatusTitle(OrderStatus("on-hold")))
}
