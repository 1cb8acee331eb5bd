package domain

import (
	"time"

	"gorm.io/datatypes"
)

type InquiryType string

const (
	InquiryGeneral      InquiryType = "general"
	InquiryProduct      InquiryType = "product"
	InquiryTechnical    InquiryType = "technical"
	InquiryWarranty     InquiryType = "warranty"
	InquiryComplaint    InquiryType = "complaint"
	InquiryFeedback     InquiryType = "feedback"
	InquiryFactoryVisit InquiryType = "factory-visit"
)

var inquiryTypes = map[InquiryType]bool{
	InquiryGeneral:      true,
	InquiryProduct:      true,
	InquiryTechnical:    true,
	InquiryWarranty:     true,
	InquiryComplaint:    true,
	InquiryFeedback:     true,
	InquiryFactoryVisit: true,
}

func ValidInquiryType(t InquiryType) bool {
	return inquiryTypes[t]
}

type InquiryPriority string

const (
	PriorityLow    InquiryPriority = "low"
	PriorityMedium InquiryPriority = "medium"
	PriorityHigh   InquiryPriority = "high"
	PriorityUrgent InquiryPriority = "urgent"
)

type InquiryStatus string

const (
	InquiryPending    InquiryStatus = "pending"
	InquiryInProgress InquiryStatus = "in-progress"
	InquiryResolved   InquiryStatus = "resolved"
	InquiryClosed     InquiryStatus = "closed"
)

var inquiryStatuses = map[InquiryStatus]bool{
	InquiryPending:    true,
	InquiryInProgress: true,
	InquiryResolved:   true,
	InquiryClosed:     true,
}

func ValidInquiryStatus(s InquiryStatus) bool {
	return inquiryStatuses[s]
}

// slaHours is the maximum allowed response time for a pending inquiry,
// keyed by priority.
var slaHours = map[InquiryPriority]float64{
	PriorityUrgent: 2,
	PriorityHigh:   8,
}

const defaultSLAHours = 24

// Contact is the submitter snapshot captured at submission time,
// independent of any linked user account.
type Contact struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Company string `json:"company,omitempty"`
	Address string `json:"address,omitempty"`
}

type InquiryResponse struct {
	Message       string       `json:"message"`
	ResponderID   uint64       `json:"responderId"`
	ResponderRole Role         `json:"responderRole"`
	Attachments   []Attachment `json:"attachments,omitempty"`
	CreatedAt     time.Time    `json:"createdAt"`
}

// InternalNote is staff-only and never rendered to the submitting contact.
type InternalNote struct {
	Note      string    `json:"note"`
	AuthorID  uint64    `json:"authorId"`
	CreatedAt time.Time `json:"createdAt"`
}

type Inquiry struct {
	ID      uint64      `json:"id" gorm:"primaryKey;autoIncrement"`
	Type    InquiryType `json:"type" gorm:"size:20;index"`
	Subject string      `json:"subject" gorm:"size:255"`
	Message string      `json:"message" gorm:"type:text"`

	Contact   Contact `json:"contact" gorm:"serializer:json"`
	UserID    uint64  `json:"userId" gorm:"index"`
	ProductID uint64  `json:"productId"`

	Priority InquiryPriority `json:"priority" gorm:"size:10;default:'medium'"`
	Status   InquiryStatus   `json:"status" gorm:"size:15;default:'pending';index"`

	AssignedTo uint64 `json:"assignedTo"`

	Responses []InquiryResponse `json:"responses" gorm:"serializer:json"`
	Notes     []InternalNote    `json:"notes" gorm:"serializer:json"`
	Metadata  datatypes.JSON    `json:"metadata,omitempty"`

	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}

// ResponseTime returns the hours between submission and the first response,
// or nil when no response has been given yet. Computed on read, not stored.
func (i *Inquiry) ResponseTime() *float64 {
	if len(i.Responses) == 0 {
		return nil
	}
	h := i.Responses[0].CreatedAt.Sub(i.CreatedAt).Hours()
	return &h
}

// IsOverdue reports whether a still-pending inquiry has exceeded its
// priority SLA threshold.
func (i *Inquiry) IsOverdue() bool {
	if i.Status != InquiryPending {
		return false
	}
	threshold, ok := slaHours[i.Priority]
	if !ok {
		threshold = defaultSLAHours
	}
	return time.Since(i.CreatedAt).Hours() > threshold
}

// AddResponse appends a staff response. The first response to a pending
// inquiry auto-escalates it to in-progress; escalated reports whether that
// transition happened.
func (i *Inquiry) AddResponse(message string, attachments []Attachment, actor Actor) (escalated bool) {
	i.Responses = append(i.Responses, InquiryResponse{
		Message:       message,
		ResponderID:   actor.ID,
		ResponderRole: actor.Role,
		Attachments:   attachments,
		CreatedAt:     time.Now(),
	})
	if i.Status == InquiryPending {
		i.Status = InquiryInProgress
		return true
	}
	return false
}

// AddNote appends an internal staff note.
func (i *Inquiry) AddNote(note string, actor Actor) {
	i.Notes = append(i.Notes, InternalNote{
		Note:      note,
		AuthorID:  actor.ID,
		CreatedAt: time.Now(),
	})
}
