package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"vfw-service/internal/domain"
	"vfw-service/internal/infra"
	"vfw-service/internal/infra/mailer"
	rabbit "vfw-service/internal/infra/rabbitmq"
	"vfw-service/internal/repository"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// InstallationSurcharge is the flat fee (minor units) added when the
// customer requests on-site installation.
const InstallationSurcharge int64 = 5000

type CreateOrderItemInput struct {
	ProductID uint64
	Variant   string
	Quantity  int64
	UnitPrice *int64 // overrides the catalog base price when set
	Discount  int64
}

type CreateOrderInput struct {
	Items                 []CreateOrderItemInput
	ShippingAddress       domain.Address
	BillingAddress        domain.Address
	PaymentMethod         string
	InstallationRequested bool
	CustomerEmail         string
}

type OrderService struct {
	repo          repository.OrderRepository
	catalogClient infra.CatalogClientInterface
	publisher     rabbit.PublisherInterface
	mailer        mailer.Mailer
	logger        *zap.Logger
	redisClient   *redis.Client
	opsEmail      string
}

func NewOrderService(r repository.OrderRepository, c infra.CatalogClientInterface, pub rabbit.PublisherInterface, m mailer.Mailer, logger *zap.Logger) *OrderService {
	return &OrderService{
		repo:          r,
		catalogClient: c,
		publisher:     pub,
		mailer:        m,
		logger:        logger,
		opsEmail:      "operations@vfw.example",
	}
}

func (s *OrderService) SetRedisClient(client *redis.Client) {
	s.redisClient = client
}

func (s *OrderService) SetOpsEmail(email string) {
	s.opsEmail = email
}

// CreateOrder prices the requested items against the catalog and persists
// the order with its frozen pricing snapshot. Catalog failures abort the
// operation; notification failures never do.
func (s *OrderService) CreateOrder(ctx context.Context, input CreateOrderInput, actor domain.Actor) (*domain.Order, error) {
	if len(input.Items) == 0 {
		return nil, fmt.Errorf("%w: order must contain at least one item", domain.ErrValidation)
	}

	items := make([]domain.OrderItem, 0, len(input.Items))
	for _, in := range input.Items {
		if in.Quantity < 1 {
			return nil, fmt.Errorf("%w: quantity must be at least 1 for product %d", domain.ErrValidation, in.ProductID)
		}
		if in.Discount < 0 {
			return nil, fmt.Errorf("%w: negative discount for product %d", domain.ErrValidation, in.ProductID)
		}

		prod, err := s.getProductWithCache(ctx, in.ProductID)
		if err != nil {
			return nil, fmt.Errorf("%w: catalog lookup for product %d: %v", domain.ErrDependencyUnavailable, in.ProductID, err)
		}
		if prod == nil {
			return nil, fmt.Errorf("%w: product %d", domain.ErrNotFound, in.ProductID)
		}
		if !prod.Active() {
			return nil, fmt.Errorf("%w: product %q is %s", domain.ErrProductUnavailable, prod.Name, prod.Status)
		}

		unitPrice := prod.BasePrice
		if in.UnitPrice != nil {
			unitPrice = *in.UnitPrice
		}
		if unitPrice < 0 {
			return nil, fmt.Errorf("%w: negative unit price for product %d", domain.ErrValidation, in.ProductID)
		}

		items = append(items, domain.OrderItem{
			ProductID: in.ProductID,
			Name:      prod.Name,
			Variant:   in.Variant,
			Quantity:  in.Quantity,
			UnitPrice: unitPrice,
			Discount:  in.Discount,
			LineTotal: in.Quantity * unitPrice,
		})
	}

	order := &domain.Order{
		UserID:                actor.ID,
		CustomerEmail:         input.CustomerEmail,
		Items:                 items,
		ShippingAddress:       input.ShippingAddress,
		BillingAddress:        input.BillingAddress,
		PaymentMethod:         input.PaymentMethod,
		InstallationRequested: input.InstallationRequested,
	}
	priceOrder(order)
	order.Place(actor)

	if err := s.repo.Save(order); err != nil {
		return nil, err
	}

	go s.publishEvent(context.Background(), domain.EventOrderCreated, domain.OrderCreatedEvent{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		UserID:      order.UserID,
		Total:       order.Total,
		CreatedAt:   order.CreatedAt,
	})
	s.notify(input.CustomerEmail, fmt.Sprintf("Order %s placed", order.OrderNumber),
		fmt.Sprintf("<p>Thank you! Your order <b>%s</b> for a total of %d has been placed.</p>", order.OrderNumber, order.Total))
	s.notify(s.opsEmail, fmt.Sprintf("New order %s", order.OrderNumber),
		fmt.Sprintf("<p>Order %s placed by user %d, total %d.</p>", order.OrderNumber, order.UserID, order.Total))

	return order, nil
}

// priceOrder computes the frozen pricing snapshot: subtotal from line
// totals, fixed-rate GST on the subtotal, flat installation surcharge.
// Shipping stays zero here; it is an extension point, not computed.
func priceOrder(o *domain.Order) {
	var subtotal, discount int64
	for i := range o.Items {
		subtotal += o.Items[i].LineTotal
		discount += o.Items[i].Discount
	}
	o.Subtotal = subtotal
	o.Discount = discount
	o.Tax = int64(math.Round(float64(subtotal) * float64(domain.TaxRatePercent) / 100))
	o.Shipping = 0
	if o.InstallationRequested {
		o.Installation = InstallationSurcharge
	}
	o.Total = o.Subtotal - o.Discount + o.Tax + o.Shipping + o.Installation
}

// UpdateStatus applies an admin status change. A no-op change (same
// status) produces no timeline entry, no event and no email.
func (s *OrderService) UpdateStatus(ctx context.Context, id uint64, newStatus domain.OrderStatus, actor domain.Actor) (*domain.Order, error) {
	if !actor.IsStaff() {
		return nil, fmt.Errorf("%w: only staff may update order status", domain.ErrForbidden)
	}

	order, err := s.loadOrder(id)
	if err != nil {
		return nil, err
	}

	oldStatus := order.Status
	changed, err := order.ChangeStatus(newStatus, actor)
	if err != nil {
		return nil, err
	}
	if !changed {
		return order, nil
	}

	if err := s.repo.Update(order); err != nil {
		return nil, err
	}

	go s.publishEvent(context.Background(), domain.EventOrderStatusChanged, domain.OrderStatusChangedEvent{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		OldStatus:   oldStatus,
		NewStatus:   newStatus,
		ActorID:     actor.ID,
		ChangedAt:   time.Now(),
	})
	s.notify(order.CustomerEmail, fmt.Sprintf("Order %s: %s", order.OrderNumber, domain.StatusTitle(newStatus)),
		fmt.Sprintf("<p>Your order <b>%s</b> is now <b>%s</b> (%d%% complete).</p>", order.OrderNumber, newStatus, order.ProgressPercent()))

	return order, nil
}

// CancelOrder handles both customer-requested and staff cancellation.
func (s *OrderService) CancelOrder(ctx context.Context, id uint64, reason string, actor domain.Actor) (*domain.Order, error) {
	order, err := s.loadOrder(id)
	if err != nil {
		return nil, err
	}
	if !actor.IsStaff() && actor.ID != order.UserID {
		return nil, fmt.Errorf("%w: order %s belongs to another user", domain.ErrForbidden, order.OrderNumber)
	}

	if err := order.Cancel(reason, actor); err != nil {
		return nil, err
	}
	if err := s.repo.Update(order); err != nil {
		return nil, err
	}

	go s.publishEvent(context.Background(), domain.EventOrderCancelled, domain.OrderStatusChangedEvent{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		NewStatus:   domain.OrderCancelled,
		ActorID:     actor.ID,
		ChangedAt:   time.Now(),
	})
	s.notify(order.CustomerEmail, fmt.Sprintf("Order %s cancelled", order.OrderNumber),
		fmt.Sprintf("<p>Your order <b>%s</b> has been cancelled: %s</p>", order.OrderNumber, reason))

	return order, nil
}

// ConfirmPayment is invoked by the payment webhook. Re-delivery of an
// already-applied transaction is a no-op.
func (s *OrderService) ConfirmPayment(ctx context.Context, id uint64, transactionID string, amount int64, actor domain.Actor) (*domain.Order, error) {
	order, err := s.loadOrder(id)
	if err != nil {
		return nil, err
	}

	if !order.ApplyPayment(transactionID, amount, actor) {
		s.logger.Info("duplicate payment webhook ignored",
			zap.String("orderNumber", order.OrderNumber),
			zap.String("transactionId", transactionID))
		return order, nil
	}
	if err := s.repo.Update(order); err != nil {
		return nil, err
	}

	go s.publishEvent(context.Background(), domain.EventOrderPaymentConfirmed, domain.OrderPaymentEvent{
		OrderID:       order.ID,
		OrderNumber:   order.OrderNumber,
		TransactionID: transactionID,
		Amount:        amount,
	})
	s.notify(order.CustomerEmail, fmt.Sprintf("Payment confirmed for order %s", order.OrderNumber),
		fmt.Sprintf("<p>We received your payment for order <b>%s</b>.</p>", order.OrderNumber))

	return order, nil
}

// FailPayment records a gateway-reported payment failure.
func (s *OrderService) FailPayment(ctx context.Context, id uint64, transactionID, reason string) (*domain.Order, error) {
	order, err := s.loadOrder(id)
	if err != nil {
		return nil, err
	}

	order.FailPayment(transactionID, reason, domain.Anonymous)
	if err := s.repo.Update(order); err != nil {
		return nil, err
	}

	go s.publishEvent(context.Background(), domain.EventOrderPaymentFailed, domain.OrderPaymentEvent{
		OrderID:       order.ID,
		OrderNumber:   order.OrderNumber,
		TransactionID: transactionID,
	})

	return order, nil
}

func (s *OrderService) GetOrderById(ctx context.Context, id uint64, actor domain.Actor) (*domain.Order, error) {
	order, err := s.loadOrder(id)
	if err != nil {
		return nil, err
	}
	if !actor.IsStaff() && actor.ID != order.UserID {
		return nil, fmt.Errorf("%w: order %s belongs to another user", domain.ErrForbidden, order.OrderNumber)
	}
	return order, nil
}

// GetOrderByNumber looks an order up by its human-readable VFW number.
func (s *OrderService) GetOrderByNumber(ctx context.Context, number string, actor domain.Actor) (*domain.Order, error) {
	order, err := s.repo.FindByOrderNumber(number)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, fmt.Errorf("%w: order %s", domain.ErrNotFound, number)
	}
	if !actor.IsStaff() && actor.ID != order.UserID {
		return nil, fmt.Errorf("%w: order %s belongs to another user", domain.ErrForbidden, order.OrderNumber)
	}
	return order, nil
}

func (s *OrderService) ListOrdersByUser(ctx context.Context, userID uint64, actor domain.Actor) ([]domain.Order, error) {
	if !actor.IsStaff() && actor.ID != userID {
		return nil, fmt.Errorf("%w: cannot list another user's orders", domain.ErrForbidden)
	}
	return s.repo.FindByUserId(userID)
}

func (s *OrderService) loadOrder(id uint64) (*domain.Order, error) {
	order, err := s.repo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, fmt.Errorf("%w: order %d", domain.ErrNotFound, id)
	}
	return order, nil
}

func (s *OrderService) getProductWithCache(ctx context.Context, productID uint64) (*infra.ProductInfo, error) {
	cacheKey := fmt.Sprintf("product:%d", productID)

	if s.redisClient != nil {
		cached, err := s.redisClient.Get(ctx, cacheKey).Result()
		if err == nil {
			var prod infra.ProductInfo
			if err := json.Unmarshal([]byte(cached), &prod); err == nil {
				return &prod, nil
			}
		}
	}

	prod, err := s.catalogClient.GetProductById(ctx, productID)
	if err != nil {
		return nil, err
	}

	if s.redisClient != nil && prod != nil {
		if data, err := json.Marshal(prod); err == nil {
			s.redisClient.Set(ctx, cacheKey, data, time.Minute)
		}
	}

	return prod, nil
}

func (s *OrderService) publishEvent(ctx context.Context, routingKey string, data any) {
	if err := s.publisher.Publish(ctx, routingKey, data); err != nil {
		s.logger.Warn("failed to publish event",
			zap.String("routingKey", routingKey),
			zap.Error(err))
	}
}

// notify sends a best-effort email in the background; failures are logged
// and never surface to the caller.
func (s *OrderService) notify(to, subject, html string) {
	if to == "" {
		return
	}
	go func() {
		if err := s.mailer.SendEmail(to, subject, html); err != nil {
			s.logger.Warn("failed to send email",
				zap.String("to", to),
				zap.String("subject", subject),
				zap.Error(err))
		}
	}()
}
