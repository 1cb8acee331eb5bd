package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"vfw-service/internal/domain"
	"vfw-service/internal/metrics"
	"vfw-service/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Handler struct {
	orders     *services.OrderService
	inquiries  *services.InquiryService
	warranties *services.WarrantyService
	rdb        *redis.Client
}

func NewHandler(orders *services.OrderService, inquiries *services.InquiryService, warranties *services.WarrantyService, rdb *redis.Client) *Handler {
	return &Handler{orders: orders, inquiries: inquiries, warranties: warranties, rdb: rdb}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	RegisterValidators()

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.POST("/orders", h.CreateOrder)
	r.GET("/orders/:id", h.GetOrder)
	r.GET("/orders/number/:number", h.GetOrderByNumber)
	r.PATCH("/orders/:id/status", h.UpdateOrderStatus)
	r.POST("/orders/:id/cancel", h.CancelOrder)
	r.GET("/users/:userId/orders", h.ListUserOrders)
	r.POST("/webhooks/payment", h.PaymentWebhook)

	r.POST("/inquiries", h.SubmitInquiry)
	r.GET("/inquiries/pending", h.ListPendingInquiries)
	r.GET("/inquiries/:id", h.GetInquiry)
	r.POST("/inquiries/:id/responses", h.AddInquiryResponse)
	r.PATCH("/inquiries/:id/status", h.UpdateInquiryStatus)
	r.POST("/inquiries/:id/notes", h.AddInquiryNote)
	r.POST("/inquiries/:id/assign", h.AssignInquiry)
	r.DELETE("/inquiries/:id", h.DeleteInquiry)

	r.POST("/warranties", h.RegisterWarranty)
	r.GET("/warranties/:id", h.GetWarranty)
	r.GET("/warranties/serial/:serial", h.GetWarrantyBySerial)
	r.GET("/users/:userId/warranties", h.ListUserWarranties)
	r.POST("/warranties/:id/claims", h.FileClaim)
	r.PATCH("/warranties/:id/claims/:claimId", h.ResolveClaim)
}

// actorFrom reads the identity headers set by the upstream auth proxy.
func actorFrom(c *gin.Context) domain.Actor {
	id, _ := strconv.ParseUint(c.GetHeader("X-User-Id"), 10, 64)
	role := domain.Role(c.GetHeader("X-User-Role"))
	if role == "" {
		role = domain.RoleUser
	}
	return domain.Actor{ID: id, Role: role}
}

// writeError maps the domain error taxonomy onto HTTP status codes.
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrClaimNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrDuplicateSerial),
		errors.Is(err, domain.ErrWarrantyNotClaimable),
		errors.Is(err, domain.ErrProductUnavailable):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrDependencyUnavailable):
		status = http.StatusBadGateway
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func pathID(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": name + " must be a positive integer"})
		return 0, false
	}
	return id, true
}

func (h *Handler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	items := make([]services.CreateOrderItemInput, len(req.Items))
	for i, it := range req.Items {
		items[i] = services.CreateOrderItemInput{
			ProductID: it.ProductID,
			Variant:   it.Variant,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			Discount:  it.Discount,
		}
	}

	order, err := h.orders.CreateOrder(c.Request.Context(), services.CreateOrderInput{
		Items:                 items,
		ShippingAddress:       req.ShippingAddress.toDomain(),
		BillingAddress:        req.BillingAddress.toDomain(),
		PaymentMethod:         req.PaymentMethod,
		InstallationRequested: req.InstallationRequested,
		CustomerEmail:         req.CustomerEmail,
	}, actorFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}

	metrics.OrdersCreated.Inc()
	h.invalidateUserOrders(order.UserID)
	c.JSON(http.StatusCreated, toOrderResponse(order))
}

func (h *Handler) GetOrder(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	order, err := h.orders.GetOrderById(c.Request.Context(), id, actorFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(order))
}

func (h *Handler) GetOrderByNumber(c *gin.Context) {
	number := c.Param("number")
	order, err := h.orders.GetOrderByNumber(c.Request.Context(), number, actorFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(order))
}

func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := h.orders.UpdateStatus(c.Request.Context(), id, domain.OrderStatus(req.Status), actorFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	h.invalidateUserOrders(order.UserID)
	c.JSON(http.StatusOK, toOrderResponse(order))
}

func (h *Handler) CancelOrder(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req CancelOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := h.orders.CancelOrder(c.Request.Context(), id, req.Reason, actorFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	h.invalidateUserOrders(order.UserID)
	c.JSON(http.StatusOK, toOrderResponse(order))
}

func (h *Handler) ListUserOrders(c *gin.Context) {
	userID, ok := pathID(c, "userId")
	if !ok {
		return
	}
	actor := actorFrom(c)
	cacheKey := "orders:user:" + strconv.FormatUint(userID, 10)

	if h.rdb != nil && actor.ID == userID {
		if b, err := h.rdb.Get(c.Request.Context(), cacheKey).Result(); err == nil {
			c.Data(http.StatusOK, "application/json", []byte(b))
			return
		}
	}

	orders, err := h.orders.ListOrdersByUser(c.Request.Context(), userID, actor)
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]OrderResponse, len(orders))
	for i := range orders {
		out[i] = toOrderResponse(&orders[i])
	}
	if h.rdb != nil && actor.ID == userID {
		if data, err := json.Marshal(out); err == nil {
			h.rdb.Set(c.Request.Context(), cacheKey, data, 10*time.Second)
		}
	}
	c.JSON(http.StatusOK, out)
}

// PaymentWebhook maps gateway events onto payment state updates.
func (h *Handler) PaymentWebhook(c *gin.Context) {
	var req PaymentWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var err error
	switch req.Type {
	case "payment_intent.succeeded":
		_, err = h.orders.ConfirmPayment(c.Request.Context(), req.Data.Metadata.OrderID, req.Data.TransactionID, req.Data.Amount, domain.Anonymous)
	case "payment_intent.payment_failed":
		_, err = h.orders.FailPayment(c.Request.Context(), req.Data.Metadata.OrderID, req.Data.TransactionID, req.Data.FailureReason)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported event type " + req.Type})
		return
	}
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}

func (h *Handler) SubmitInquiry(c *gin.Context) {
	var req SubmitInquiryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	inquiry, err := h.inquiries.SubmitInquiry(c.Request.Context(), services.SubmitInquiryInput{
		Type:    domain.InquiryType(req.Type),
		Subject: req.Subject,
		Message: req.Message,
		Contact: domain.Contact{
			Name:    req.Contact.Name,
			Email:   req.Contact.Email,
			Phone:   req.Contact.Phone,
			Company: req.Contact.Company,
			Address: req.Contact.Address,
		},
		ProductID: req.ProductID,
		Priority:  domain.InquiryPriority(req.Priority),
		Source:    req.Source,
	}, actorFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}

	metrics.InquiriesSubmitted.Inc()
	c.JSON(http.StatusCreated, toInquiryResponse(inquiry, false))
}

func (h *Handler) GetInquiry(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	actor := actorFrom(c)
	inquiry, err := h.inquiries.GetInquiryById(c.Request.Context(), id, actor)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toInquiryResponse(inquiry, actor.IsStaff()))
}

func (h *Handler) AddInquiryResponse(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req AddResponseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	inquiry, err := h.inquiries.AddResponse(c.Request.Context(), id, req.Message, toAttachments(req.Attachments), actorFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toInquiryResponse(inquiry, true))
}

func (h *Handler) UpdateInquiryStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req UpdateInquiryStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	inquiry, err := h.inquiries.UpdateStatus(c.Request.Context(), id, domain.InquiryStatus(req.Status), actorFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toInquiryResponse(inquiry, true))
}

func (h *Handler) AddInquiryNote(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req AddNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	inquiry, err := h.inquiries.AddInternalNote(c.Request.Context(), id, req.Note, actorFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toInquiryResponse(inquiry, true))
}

func (h *Handler) AssignInquiry(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req AssignInquiryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	inquiry, err := h.inquiries.Assign(c.Request.Context(), id, req.StaffID, actorFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toInquiryResponse(inquiry, true))
}

func (h *Handler) DeleteInquiry(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.inquiries.DeleteInquiry(c.Request.Context(), id, actorFrom(c)); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) ListPendingInquiries(c *gin.Context) {
	inquiries, err := h.inquiries.ListPending(c.Request.Context(), actorFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]InquiryResponse, len(inquiries))
	for i := range inquiries {
		out[i] = toInquiryResponse(&inquiries[i], true)
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) RegisterWarranty(c *gin.Context) {
	var req RegisterWarrantyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	warranty, err := h.warranties.RegisterWarranty(c.Request.Context(), services.RegisterWarrantyInput{
		ProductID:        req.ProductID,
		SerialNumber:     req.SerialNumber,
		PurchaseDate:     req.PurchaseDate,
		InstallationDate: req.InstallationDate,
		Dealer: domain.DealerInfo{
			Name:    req.DealerName,
			City:    req.DealerCity,
			Contact: req.DealerContact,
		},
		CustomerEmail: req.CustomerEmail,
	}, actorFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toWarrantyResponse(warranty))
}

func (h *Handler) GetWarranty(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	warranty, err := h.warranties.GetWarrantyById(c.Request.Context(), id, actorFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toWarrantyResponse(warranty))
}

func (h *Handler) GetWarrantyBySerial(c *gin.Context) {
	serial := c.Param("serial")
	if serial == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "serial required"})
		return
	}
	warranty, err := h.warranties.GetWarrantyBySerial(c.Request.Context(), serial, actorFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toWarrantyResponse(warranty))
}

func (h *Handler) ListUserWarranties(c *gin.Context) {
	userID, ok := pathID(c, "userId")
	if !ok {
		return
	}
	warranties, err := h.warranties.ListWarrantiesByUser(c.Request.Context(), userID, actorFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]WarrantyResponse, len(warranties))
	for i := range warranties {
		out[i] = toWarrantyResponse(&warranties[i])
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) FileClaim(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req FileClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	warranty, err := h.warranties.FileClaim(c.Request.Context(), id, services.ClaimInput{
		Issue:       req.Issue,
		IssueType:   req.IssueType,
		Priority:    domain.InquiryPriority(req.Priority),
		Description: req.Description,
		Attachments: toAttachments(req.Attachments),
	}, actorFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}

	metrics.ClaimsFiled.Inc()
	c.JSON(http.StatusCreated, toWarrantyResponse(warranty))
}

func (h *Handler) ResolveClaim(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	claimID := c.Param("claimId")
	var req ResolveClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	warranty, err := h.warranties.ResolveClaim(c.Request.Context(), id, claimID, domain.ClaimStatus(req.Status), req.Resolution, actorFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toWarrantyResponse(warranty))
}

// invalidateUserOrders drops the short-lived per-user order list cache
// after any order mutation.
func (h *Handler) invalidateUserOrders(userID uint64) {
	if h.rdb == nil {
		return
	}
	h.rdb.Del(context.Background(), "orders:user:"+strconv.FormatUint(userID, 10))
}
