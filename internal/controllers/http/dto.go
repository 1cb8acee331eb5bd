package http

import (
	"regexp"
	"time"

	"vfw-service/internal/domain"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// indianMobile matches 10-digit Indian mobile numbers starting 6-9.
var indianMobile = regexp.MustCompile(`^[6-9][0-9]{9}$`)

// RegisterValidators installs the custom binding rules on gin's validator.
func RegisterValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("inmobile", func(fl validator.FieldLevel) bool {
			return indianMobile.MatchString(fl.Field().String())
		})
	}
}

type AddressDTO struct {
	Line1   string `json:"line1" binding:"required"`
	Line2   string `json:"line2"`
	City    string `json:"city" binding:"required"`
	State   string `json:"state" binding:"required"`
	Pincode string `json:"pincode" binding:"required"`
	Country string `json:"country"`
}

func (a AddressDTO) toDomain() domain.Address {
	country := a.Country
	if country == "" {
		country = "India"
	}
	return domain.Address{
		Line1:   a.Line1,
		Line2:   a.Line2,
		City:    a.City,
		State:   a.State,
		Pincode: a.Pincode,
		Country: country,
	}
}

type OrderItemRequest struct {
	ProductID uint64 `json:"productId" binding:"required"`
	Variant   string `json:"variant"`
	Quantity  int64  `json:"quantity" binding:"required,min=1"`
	UnitPrice *int64 `json:"unitPrice" binding:"omitempty,min=0"`
	Discount  int64  `json:"discount" binding:"min=0"`
}

type CreateOrderRequest struct {
	Items                 []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
	ShippingAddress       AddressDTO         `json:"shippingAddress" binding:"required"`
	BillingAddress        AddressDTO         `json:"billingAddress" binding:"required"`
	PaymentMethod         string             `json:"paymentMethod" binding:"required"`
	InstallationRequested bool               `json:"installationRequested"`
	CustomerEmail         string             `json:"customerEmail" binding:"required,email"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type CancelOrderRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// PaymentWebhookRequest carries the gateway event. The order id travels in
// the event metadata, per the payment provider contract.
type PaymentWebhookRequest struct {
	Type string `json:"type" binding:"required"`
	Data struct {
		TransactionID string `json:"transactionId" binding:"required"`
		Amount        int64  `json:"amount"`
		FailureReason string `json:"failureReason"`
		Metadata      struct {
			OrderID uint64 `json:"orderId" binding:"required"`
		} `json:"metadata"`
	} `json:"data"`
}

type ContactDTO struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
	Phone   string `json:"phone" binding:"required,inmobile"`
	Company string `json:"company"`
	Address string `json:"address"`
}

type SubmitInquiryRequest struct {
	Type      string     `json:"type" binding:"required"`
	Subject   string     `json:"subject" binding:"required"`
	Message   string     `json:"message" binding:"required"`
	Contact   ContactDTO `json:"contact" binding:"required"`
	ProductID uint64     `json:"productId"`
	Priority  string     `json:"priority"`
	Source    string     `json:"source"`
}

type AttachmentDTO struct {
	URL      string `json:"url" binding:"required"`
	Size     int64  `json:"size"`
	MimeType string `json:"mimeType"`
}

func toAttachments(in []AttachmentDTO) []domain.Attachment {
	if len(in) == 0 {
		return nil
	}
	out := make([]domain.Attachment, len(in))
	for i, a := range in {
		out[i] = domain.Attachment{URL: a.URL, Size: a.Size, MimeType: a.MimeType}
	}
	return out
}

type AddResponseRequest struct {
	Message     string          `json:"message" binding:"required"`
	Attachments []AttachmentDTO `json:"attachments" binding:"dive"`
}

type UpdateInquiryStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type AddNoteRequest struct {
	Note string `json:"note" binding:"required"`
}

type AssignInquiryRequest struct {
	StaffID uint64 `json:"staffId" binding:"required"`
}

type RegisterWarrantyRequest struct {
	ProductID        uint64     `json:"productId" binding:"required"`
	SerialNumber     string     `json:"serialNumber" binding:"required"`
	PurchaseDate     time.Time  `json:"purchaseDate" binding:"required"`
	InstallationDate *time.Time `json:"installationDate"`
	DealerName       string     `json:"dealerName"`
	DealerCity       string     `json:"dealerCity"`
	DealerContact    string     `json:"dealerContact"`
	CustomerEmail    string     `json:"customerEmail" binding:"omitempty,email"`
}

type FileClaimRequest struct {
	Issue       string          `json:"issue" binding:"required"`
	IssueType   string          `json:"issueType" binding:"required"`
	Priority    string          `json:"priority"`
	Description string          `json:"description"`
	Attachments []AttachmentDTO `json:"attachments" binding:"dive"`
}

type ResolveClaimRequest struct {
	Status     string `json:"status" binding:"required"`
	Resolution string `json:"resolution"`
}

// OrderResponse augments the stored order with its derived progress.
type OrderResponse struct {
	*domain.Order
	ProgressPercent int `json:"progressPercent"`
}

func toOrderResponse(o *domain.Order) OrderResponse {
	return OrderResponse{Order: o, ProgressPercent: o.ProgressPercent()}
}

// InquiryResponse strips internal notes from the public representation and
// adds the derived SLA fields.
type InquiryResponse struct {
	*domain.Inquiry
	Notes        []domain.InternalNote `json:"notes,omitempty"`
	ResponseTime *float64              `json:"responseTimeHours,omitempty"`
	Overdue      bool                  `json:"overdue"`
}

// WarrantyResponse augments the stored warranty with the derived coverage
// fields the storefront renders.
type WarrantyResponse struct {
	*domain.Warranty
	Claimable     bool `json:"claimable"`
	DaysRemaining int  `json:"daysRemaining"`
}

func toWarrantyResponse(w *domain.Warranty) WarrantyResponse {
	now := time.Now()
	remaining := 0
	if w.ExpiryDate.After(now) {
		remaining = int(w.ExpiryDate.Sub(now).Hours() / 24)
	}
	return WarrantyResponse{
		Warranty:      w,
		Claimable:     w.Claimable(now),
		DaysRemaining: remaining,
	}
}

func toInquiryResponse(in *domain.Inquiry, includeNotes bool) InquiryResponse {
	resp := InquiryResponse{
		Inquiry:      in,
		ResponseTime: in.ResponseTime(),
		Overdue:      in.IsOverdue(),
	}
	if includeNotes {
		resp.Notes = in.Notes
	}
	return resp
}
