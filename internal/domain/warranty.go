package domain

import (
	"fmt"
	"time"

	"gorm.io/datatypes"
)

type WarrantyStatus string

const (
	WarrantyActive          WarrantyStatus = "active"
	WarrantyExpired         WarrantyStatus = "expired"
	WarrantyClaimPending    WarrantyStatus = "claim-pending"
	WarrantyClaimInProgress WarrantyStatus = "claim-in-progress"
	WarrantyVoid            WarrantyStatus = "void"
)

type ClaimStatus string

const (
	ClaimPending    ClaimStatus = "pending"
	ClaimInProgress ClaimStatus = "in-progress"
	ClaimResolved   ClaimStatus = "resolved"
	ClaimRejected   ClaimStatus = "rejected"
)

var claimStatuses = map[ClaimStatus]bool{
	ClaimPending:    true,
	ClaimInProgress: true,
	ClaimResolved:   true,
	ClaimRejected:   true,
}

func ValidClaimStatus(s ClaimStatus) bool {
	return claimStatuses[s]
}

// DefaultWarrantyMonths applies when the product has no configured
// warranty duration.
const DefaultWarrantyMonths = 12

type Claim struct {
	ID          string          `json:"id"`
	Issue       string          `json:"issue"`
	IssueType   string          `json:"issueType"`
	Priority    InquiryPriority `json:"priority"`
	Description string          `json:"description,omitempty"`
	Attachments []Attachment    `json:"attachments,omitempty"`

	Status      ClaimStatus `json:"status"`
	SubmittedAt time.Time   `json:"submittedAt"`
	ResolvedAt  *time.Time  `json:"resolvedAt,omitempty"`
	ResolverID  uint64      `json:"resolverId,omitempty"`
	Resolution  string      `json:"resolution,omitempty"`

	PartsReplaced []string `json:"partsReplaced,omitempty"`
	LaborHours    float64  `json:"laborHours,omitempty"`
	LaborCost     int64    `json:"laborCost,omitempty"`
	TotalCost     int64    `json:"totalCost,omitempty"`
}

type DealerInfo struct {
	Name    string `json:"name"`
	City    string `json:"city,omitempty"`
	Contact string `json:"contact,omitempty"`
}

// Warranty covers one physical unit, keyed by serial number. Claims have
// no identity outside the warranty document.
type Warranty struct {
	ID             uint64 `json:"id" gorm:"primaryKey;autoIncrement"`
	WarrantyNumber string `json:"warrantyNumber" gorm:"uniqueIndex;size:64"`
	SerialNumber   string `json:"serialNumber" gorm:"uniqueIndex;size:64"`
	ProductID      uint64 `json:"productId" gorm:"index"`
	UserID         uint64 `json:"userId" gorm:"index"`

	PurchaseDate     time.Time  `json:"purchaseDate"`
	InstallationDate *time.Time `json:"installationDate,omitempty"`
	ExpiryDate       time.Time  `json:"expiryDate"`

	Status WarrantyStatus `json:"status" gorm:"size:20;default:'active';index"`
	Claims []Claim        `json:"claims" gorm:"serializer:json"`

	Dealer   DealerInfo     `json:"dealer" gorm:"serializer:json"`
	Metadata datatypes.JSON `json:"metadata,omitempty"`

	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}

// ExpiryFrom computes the expiry date from the purchase date and the
// product's warranty duration, defaulting to DefaultWarrantyMonths.
func ExpiryFrom(purchase time.Time, warrantyMonths int) time.Time {
	if warrantyMonths <= 0 {
		warrantyMonths = DefaultWarrantyMonths
	}
	return purchase.AddDate(0, warrantyMonths, 0)
}

// Claimable reports whether a new claim may be filed right now.
func (w *Warranty) Claimable(now time.Time) bool {
	return w.Status == WarrantyActive && !w.ExpiryDate.Before(now)
}

// FileClaim appends a pending claim and moves the warranty to
// claim-pending. Claims are only accepted on an active, unexpired warranty.
func (w *Warranty) FileClaim(claim Claim) error {
	if !w.Claimable(time.Now()) {
		return fmt.Errorf("%w: warranty %s is %s (expires %s)",
			ErrWarrantyNotClaimable, w.WarrantyNumber, w.Status, w.ExpiryDate.Format("2006-01-02"))
	}
	claim.Status = ClaimPending
	claim.SubmittedAt = time.Now()
	w.Claims = append(w.Claims, claim)
	w.Status = WarrantyClaimPending
	return nil
}

// ResolveClaim updates one claim and recomputes the aggregate warranty
// status from the full claim set.
func (w *Warranty) ResolveClaim(claimID string, status ClaimStatus, resolution string, actor Actor) error {
	if !ValidClaimStatus(status) {
		return fmt.Errorf("%w: unknown claim status %q", ErrValidation, status)
	}
	idx := -1
	for i := range w.Claims {
		if w.Claims[i].ID == claimID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: claim %s on warranty %s", ErrClaimNotFound, claimID, w.WarrantyNumber)
	}
	c := &w.Claims[idx]
	c.Status = status
	c.Resolution = resolution
	c.ResolverID = actor.ID
	if status == ClaimResolved {
		now := time.Now()
		c.ResolvedAt = &now
	} else {
		c.ResolvedAt = nil
	}
	w.recomputeStatus()
	return nil
}

// recomputeStatus derives the warranty status from its claim set: all
// claims settled (resolved or rejected) reverts to active, any in-progress
// claim takes precedence over merely pending ones.
func (w *Warranty) recomputeStatus() {
	if w.Status == WarrantyVoid {
		return
	}
	settled := true
	inProgress := false
	for i := range w.Claims {
		switch w.Claims[i].Status {
		case ClaimInProgress:
			inProgress = true
			settled = false
		case ClaimPending:
			settled = false
		}
	}
	switch {
	case inProgress:
		w.Status = WarrantyClaimInProgress
	case settled:
		w.Status = WarrantyActive
	default:
		w.Status = WarrantyClaimPending
	}
}

// NormalizeExpiry lazily corrects an active warranty past its expiry date.
// Repositories call it before every save.
func (w *Warranty) NormalizeExpiry(now time.Time) {
	if w.Status == WarrantyActive && w.ExpiryDate.Before(now) {
		w.Status = WarrantyExpired
	}
}
