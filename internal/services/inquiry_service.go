package services

import (
	"context"
	"fmt"
	"time"

	"vfw-service/internal/domain"
	"vfw-service/internal/infra/mailer"
	rabbit "vfw-service/internal/infra/rabbitmq"
	"vfw-service/internal/repository"

	"go.uber.org/zap"
	"gorm.io/datatypes"
)

type SubmitInquiryInput struct {
	Type      domain.InquiryType
	Subject   string
	Message   string
	Contact   domain.Contact
	ProductID uint64
	Priority  domain.InquiryPriority
	Source    string
}

type InquiryService struct {
	repo      repository.InquiryRepository
	publisher rabbit.PublisherInterface
	mailer    mailer.Mailer
	logger    *zap.Logger
	opsEmail  string
}

func NewInquiryService(r repository.InquiryRepository, pub rabbit.PublisherInterface, m mailer.Mailer, logger *zap.Logger) *InquiryService {
	return &InquiryService{
		repo:      r,
		publisher: pub,
		mailer:    m,
		logger:    logger,
		opsEmail:  "operations@vfw.example",
	}
}

func (s *InquiryService) SetOpsEmail(email string) {
	s.opsEmail = email
}

// SubmitInquiry persists a public inquiry submission. Format validation of
// the contact fields happens at the HTTP binding layer; only enum and
// presence checks live here.
func (s *InquiryService) SubmitInquiry(ctx context.Context, input SubmitInquiryInput, actor domain.Actor) (*domain.Inquiry, error) {
	if !domain.ValidInquiryType(input.Type) {
		return nil, fmt.Errorf("%w: unknown inquiry type %q", domain.ErrValidation, input.Type)
	}
	if input.Subject == "" || input.Message == "" {
		return nil, fmt.Errorf("%w: subject and message are required", domain.ErrValidation)
	}

	priority := input.Priority
	if priority == "" {
		priority = domain.PriorityMedium
	}
	source := input.Source
	if source == "" {
		source = "website"
	}

	inquiry := &domain.Inquiry{
		Type:      input.Type,
		Subject:   input.Subject,
		Message:   input.Message,
		Contact:   input.Contact,
		UserID:    actor.ID,
		ProductID: input.ProductID,
		Priority:  priority,
		Status:    domain.InquiryPending,
		Metadata:  datatypes.JSON(fmt.Sprintf(`{"source":%q}`, source)),
	}

	if err := s.repo.Save(inquiry); err != nil {
		return nil, err
	}

	go s.publishEvent(context.Background(), domain.EventInquiryCreated, domain.InquiryCreatedEvent{
		InquiryID: inquiry.ID,
		Type:      inquiry.Type,
		Subject:   inquiry.Subject,
		Email:     inquiry.Contact.Email,
		CreatedAt: inquiry.CreatedAt,
	})
	s.notify(inquiry.Contact.Email, "We received your inquiry",
		fmt.Sprintf("<p>Hi %s, thanks for reaching out about %q. Our team will get back to you shortly.</p>", inquiry.Contact.Name, inquiry.Subject))
	s.notify(s.opsEmail, fmt.Sprintf("New %s inquiry: %s", inquiry.Type, inquiry.Subject),
		fmt.Sprintf("<p>From %s (%s), priority %s.</p>", inquiry.Contact.Name, inquiry.Contact.Email, inquiry.Priority))

	return inquiry, nil
}

// AddResponse appends a staff response. The first response to a pending
// inquiry auto-escalates it to in-progress.
func (s *InquiryService) AddResponse(ctx context.Context, id uint64, message string, attachments []domain.Attachment, actor domain.Actor) (*domain.Inquiry, error) {
	if !actor.IsStaff() {
		return nil, fmt.Errorf("%w: only staff may respond to inquiries", domain.ErrForbidden)
	}
	if message == "" {
		return nil, fmt.Errorf("%w: response message is required", domain.ErrValidation)
	}

	inquiry, err := s.loadInquiry(id)
	if err != nil {
		return nil, err
	}

	escalated := inquiry.AddResponse(message, attachments, actor)
	if err := s.repo.Update(inquiry); err != nil {
		return nil, err
	}
	if escalated {
		s.logger.Info("inquiry escalated to in-progress",
			zap.Uint64("inquiryId", inquiry.ID),
			zap.Uint64("responderId", actor.ID))
	}

	go s.publishEvent(context.Background(), domain.EventInquiryResponded, domain.InquiryRespondedEvent{
		InquiryID:   inquiry.ID,
		ResponderID: actor.ID,
		Status:      inquiry.Status,
		RespondedAt: time.Now(),
	})
	s.notify(inquiry.Contact.Email, fmt.Sprintf("Re: %s", inquiry.Subject),
		fmt.Sprintf("<p>%s</p>", message))

	return inquiry, nil
}

func (s *InquiryService) UpdateStatus(ctx context.Context, id uint64, status domain.InquiryStatus, actor domain.Actor) (*domain.Inquiry, error) {
	if !actor.IsStaff() {
		return nil, fmt.Errorf("%w: only staff may update inquiry status", domain.ErrForbidden)
	}
	if !domain.ValidInquiryStatus(status) {
		return nil, fmt.Errorf("%w: unknown inquiry status %q", domain.ErrValidation, status)
	}

	inquiry, err := s.loadInquiry(id)
	if err != nil {
		return nil, err
	}

	inquiry.Status = status
	if err := s.repo.Update(inquiry); err != nil {
		return nil, err
	}
	return inquiry, nil
}

// AddInternalNote appends a staff-only note; notes are stripped from every
// public representation of the inquiry.
func (s *InquiryService) AddInternalNote(ctx context.Context, id uint64, note string, actor domain.Actor) (*domain.Inquiry, error) {
	if !actor.IsStaff() {
		return nil, fmt.Errorf("%w: only staff may add internal notes", domain.ErrForbidden)
	}
	if note == "" {
		return nil, fmt.Errorf("%w: note is required", domain.ErrValidation)
	}

	inquiry, err := s.loadInquiry(id)
	if err != nil {
		return nil, err
	}

	inquiry.AddNote(note, actor)
	if err := s.repo.Update(inquiry); err != nil {
		return nil, err
	}
	return inquiry, nil
}

func (s *InquiryService) Assign(ctx context.Context, id uint64, staffID uint64, actor domain.Actor) (*domain.Inquiry, error) {
	if !actor.IsStaff() {
		return nil, fmt.Errorf("%w: only staff may assign inquiries", domain.ErrForbidden)
	}

	inquiry, err := s.loadInquiry(id)
	if err != nil {
		return nil, err
	}

	inquiry.AssignedTo = staffID
	if err := s.repo.Update(inquiry); err != nil {
		return nil, err
	}
	return inquiry, nil
}

// DeleteInquiry hard-deletes an inquiry. Admin only; inquiry is the one
// aggregate that supports deletion.
func (s *InquiryService) DeleteInquiry(ctx context.Context, id uint64, actor domain.Actor) error {
	if !actor.IsAdmin() {
		return fmt.Errorf("%w: only admins may delete inquiries", domain.ErrForbidden)
	}

	if _, err := s.loadInquiry(id); err != nil {
		return err
	}
	return s.repo.Delete(id)
}

func (s *InquiryService) GetInquiryById(ctx context.Context, id uint64, actor domain.Actor) (*domain.Inquiry, error) {
	inquiry, err := s.loadInquiry(id)
	if err != nil {
		return nil, err
	}
	if !actor.IsStaff() && actor.ID != inquiry.UserID {
		return nil, fmt.Errorf("%w: inquiry %d belongs to another user", domain.ErrForbidden, id)
	}
	return inquiry, nil
}

func (s *InquiryService) ListPending(ctx context.Context, actor domain.Actor) ([]domain.Inquiry, error) {
	if !actor.IsStaff() {
		return nil, fmt.Errorf("%w: only staff may list pending inquiries", domain.ErrForbidden)
	}
	return s.repo.FindByStatus(domain.InquiryPending)
}

func (s *InquiryService) loadInquiry(id uint64) (*domain.Inquiry, error) {
	inquiry, err := s.repo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if inquiry == nil {
		return nil, fmt.Errorf("%w: inquiry %d", domain.ErrNotFound, id)
	}
	return inquiry, nil
}

func (s *InquiryService) publishEvent(ctx context.Context, routingKey string, data any) {
	if err := s.publisher.Publish(ctx, routingKey, data); err != nil {
		s.logger.Warn("failed to publish event",
			zap.String("routingKey", routingKey),
			zap.Error(err))
	}
}

func (s *InquiryService) notify(to, subject, html string) {
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
