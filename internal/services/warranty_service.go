package services

import (
	"context"
	"fmt"
	"time"

	"vfw-service/internal/domain"
	"vfw-service/internal/infra"
	"vfw-service/internal/infra/mailer"
	rabbit "vfw-service/internal/infra/rabbitmq"
	"vfw-service/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type RegisterWarrantyInput struct {
	ProductID        uint64
	SerialNumber     string
	PurchaseDate     time.Time
	InstallationDate *time.Time
	Dealer           domain.DealerInfo
	CustomerEmail    string
}

type ClaimInput struct {
	Issue       string
	IssueType   string
	Priority    domain.InquiryPriority
	Description string
	Attachments []domain.Attachment
}

type WarrantyService struct {
	repo          repository.WarrantyRepository
	catalogClient infra.CatalogClientInterface
	publisher     rabbit.PublisherInterface
	mailer        mailer.Mailer
	logger        *zap.Logger
	opsEmail      string
}

func NewWarrantyService(r repository.WarrantyRepository, c infra.CatalogClientInterface, pub rabbit.PublisherInterface, m mailer.Mailer, logger *zap.Logger) *WarrantyService {
	return &WarrantyService{
		repo:          r,
		catalogClient: c,
		publisher:     pub,
		mailer:        m,
		logger:        logger,
		opsEmail:      "operations@vfw.example",
	}
}

func (s *WarrantyService) SetOpsEmail(email string) {
	s.opsEmail = email
}

// RegisterWarranty creates the single warranty for a physical unit. The
// expiry date is computed from the product's configured warranty duration.
func (s *WarrantyService) RegisterWarranty(ctx context.Context, input RegisterWarrantyInput, actor domain.Actor) (*domain.Warranty, error) {
	if input.SerialNumber == "" {
		return nil, fmt.Errorf("%w: serial number is required", domain.ErrValidation)
	}
	if input.PurchaseDate.IsZero() {
		return nil, fmt.Errorf("%w: purchase date is required", domain.ErrValidation)
	}

	prod, err := s.catalogClient.GetProductById(ctx, input.ProductID)
	if err != nil {
		return nil, fmt.Errorf("%w: catalog lookup for product %d: %v", domain.ErrDependencyUnavailable, input.ProductID, err)
	}
	if prod == nil {
		return nil, fmt.Errorf("%w: product %d", domain.ErrNotFound, input.ProductID)
	}

	existing, err := s.repo.FindBySerial(input.SerialNumber)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrDuplicateSerial, input.SerialNumber)
	}

	warranty := &domain.Warranty{
		WarrantyNumber:   newWarrantyNumber(),
		SerialNumber:     input.SerialNumber,
		ProductID:        input.ProductID,
		UserID:           actor.ID,
		PurchaseDate:     input.PurchaseDate,
		InstallationDate: input.InstallationDate,
		ExpiryDate:       domain.ExpiryFrom(input.PurchaseDate, prod.WarrantyMonths),
		Status:           domain.WarrantyActive,
		Dealer:           input.Dealer,
	}

	if err := s.repo.Save(warranty); err != nil {
		return nil, err
	}

	go s.publishEvent(context.Background(), domain.EventWarrantyRegistered, domain.WarrantyRegisteredEvent{
		WarrantyID:     warranty.ID,
		WarrantyNumber: warranty.WarrantyNumber,
		SerialNumber:   warranty.SerialNumber,
		ExpiryDate:     warranty.ExpiryDate,
	})
	s.notify(input.CustomerEmail, fmt.Sprintf("Warranty %s registered", warranty.WarrantyNumber),
		fmt.Sprintf("<p>Your %s is covered until <b>%s</b>.</p>", prod.Name, warranty.ExpiryDate.Format("2 January 2006")))

	return warranty, nil
}

// FileClaim files a claim against an active, unexpired warranty.
func (s *WarrantyService) FileClaim(ctx context.Context, warrantyID uint64, input ClaimInput, actor domain.Actor) (*domain.Warranty, error) {
	if input.Issue == "" {
		return nil, fmt.Errorf("%w: issue is required", domain.ErrValidation)
	}

	warranty, err := s.loadWarranty(warrantyID)
	if err != nil {
		return nil, err
	}
	if !actor.IsStaff() && actor.ID != warranty.UserID {
		return nil, fmt.Errorf("%w: warranty %s belongs to another user", domain.ErrForbidden, warranty.WarrantyNumber)
	}

	priority := input.Priority
	if priority == "" {
		priority = domain.PriorityMedium
	}
	claim := domain.Claim{
		ID:          uuid.NewString(),
		Issue:       input.Issue,
		IssueType:   input.IssueType,
		Priority:    priority,
		Description: input.Description,
		Attachments: input.Attachments,
	}
	if err := warranty.FileClaim(claim); err != nil {
		return nil, err
	}
	if err := s.repo.Update(warranty); err != nil {
		return nil, err
	}

	go s.publishEvent(context.Background(), domain.EventWarrantyClaimFiled, domain.WarrantyClaimEvent{
		WarrantyID:     warranty.ID,
		WarrantyNumber: warranty.WarrantyNumber,
		ClaimID:        claim.ID,
		ClaimStatus:    domain.ClaimPending,
		WarrantyStatus: warranty.Status,
	})
	s.notify(s.opsEmail, fmt.Sprintf("New claim on warranty %s", warranty.WarrantyNumber),
		fmt.Sprintf("<p>Issue: %s (%s), priority %s.</p>", input.Issue, input.IssueType, priority))

	return warranty, nil
}

// ResolveClaim updates one claim's status and recomputes the aggregate
// warranty status from the full claim set.
func (s *WarrantyService) ResolveClaim(ctx context.Context, warrantyID uint64, claimID string, status domain.ClaimStatus, resolution string, actor domain.Actor) (*domain.Warranty, error) {
	if !actor.IsStaff() {
		return nil, fmt.Errorf("%w: only staff may resolve claims", domain.ErrForbidden)
	}

	warranty, err := s.loadWarranty(warrantyID)
	if err != nil {
		return nil, err
	}
	if err := warranty.ResolveClaim(claimID, status, resolution, actor); err != nil {
		return nil, err
	}
	if err := s.repo.Update(warranty); err != nil {
		return nil, err
	}

	go s.publishEvent(context.Background(), domain.EventWarrantyClaimUpdated, domain.WarrantyClaimEvent{
		WarrantyID:     warranty.ID,
		WarrantyNumber: warranty.WarrantyNumber,
		ClaimID:        claimID,
		ClaimStatus:    status,
		WarrantyStatus: warranty.Status,
	})

	return warranty, nil
}

func (s *WarrantyService) GetWarrantyById(ctx context.Context, id uint64, actor domain.Actor) (*domain.Warranty, error) {
	warranty, err := s.loadWarranty(id)
	if err != nil {
		return nil, err
	}
	if !actor.IsStaff() && actor.ID != warranty.UserID {
		return nil, fmt.Errorf("%w: warranty %s belongs to another user", domain.ErrForbidden, warranty.WarrantyNumber)
	}
	return warranty, nil
}

func (s *WarrantyService) GetWarrantyBySerial(ctx context.Context, serialNumber string, actor domain.Actor) (*domain.Warranty, error) {
	warranty, err := s.repo.FindBySerial(serialNumber)
	if err != nil {
		return nil, err
	}
	if warranty == nil {
		return nil, fmt.Errorf("%w: warranty for serial %s", domain.ErrNotFound, serialNumber)
	}
	if !actor.IsStaff() && actor.ID != warranty.UserID {
		return nil, fmt.Errorf("%w: warranty %s belongs to another user", domain.ErrForbidden, warranty.WarrantyNumber)
	}
	return warranty, nil
}

func (s *WarrantyService) ListWarrantiesByUser(ctx context.Context, userID uint64, actor domain.Actor) ([]domain.Warranty, error) {
	if !actor.IsStaff() && actor.ID != userID {
		return nil, fmt.Errorf("%w: cannot list another user's warranties", domain.ErrForbidden)
	}
	return s.repo.FindByUserId(userID)
}

func (s *WarrantyService) loadWarranty(id uint64) (*domain.Warranty, error) {
	warranty, err := s.repo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if warranty == nil {
		return nil, fmt.Errorf("%w: warranty %d", domain.ErrNotFound, id)
	}
	return warranty, nil
}

// newWarrantyNumber yields VFW-WR-<timestamp>-<random>. The random suffix
// keeps numbers collision-resistant without a shared counter.
func newWarrantyNumber() string {
	return fmt.Sprintf("VFW-WR-%d-%s", time.Now().Unix(), uuid.NewString()[:8])
}

func (s *WarrantyService) publishEvent(ctx context.Context, routingKey string, data any) {
	if err := s.publisher.Publish(ctx, routingKey, data); err != nil {
		s.logger.Warn("failed to publish event",
			zap.String("routingKey", routingKey),
			zap.Error(err))
	}
}

func (s *WarrantyService) notify(to, subject, html string) {
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
