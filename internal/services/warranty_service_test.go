package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"vfw-service/internal/domain"
	"vfw-service/internal/infra"
	"vfw-service/internal/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

func newWarrantyService(repo *mocks.MockWarrantyRepository, catalog *mocks.MockCatalogClient, pub *mocks.MockPublisher, mail *mocks.MockMailer) *WarrantyService {
	return NewWarrantyService(repo, catalog, pub, mail, zap.NewNop())
}

func TestWarrantyService_RegisterWarranty(t *testing.T) {
	owner := domain.Actor{ID: 7, Role: domain.RoleUser}
	purchase := time.Date(2026, time.January, 10, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name          string
		input         RegisterWarrantyInput
		setupMocks    func(*mocks.MockWarrantyRepository, *mocks.MockCatalogClient)
		expectedError error
		wantExpiry    time.Time
	}{
		{
			name: "expiry from configured duration",
			input: RegisterWarrantyInput{
				ProductID:    1,
				SerialNumber: "SN-1001",
				PurchaseDate: purchase,
			},
			setupMocks: func(repo *mocks.MockWarrantyRepository, catalog *mocks.MockCatalogClient) {
				catalog.On("GetProductById", mock.Anything, uint64(1)).Return(tractor(), nil)
				repo.On("FindBySerial", "SN-1001").Return(nil, nil)
				repo.On("Save", mock.AnythingOfType("*domain.Warranty")).Return(nil).Run(func(args mock.Arguments) {
					args.Get(0).(*domain.Warranty).ID = 1
				})
			},
			wantExpiry: purchase.AddDate(0, 24, 0),
		},
		{
			name: "expiry defaults to twelve months",
			input: RegisterWarrantyInput{
				ProductID:    2,
				SerialNumber: "SN-1002",
				PurchaseDate: purchase,
			},
			setupMocks: func(repo *mocks.MockWarrantyRepository, catalog *mocks.MockCatalogClient) {
				catalog.On("GetProductById", mock.Anything, uint64(2)).Return(&infra.ProductInfo{
					ID:     2,
					Name:   "VFW 300 Rotavator",
					Status: "active",
				}, nil)
				repo.On("FindBySerial", "SN-1002").Return(nil, nil)
				repo.On("Save", mock.AnythingOfType("*domain.Warranty")).Return(nil)
			},
			wantExpiry: purchase.AddDate(0, 12, 0),
		},
		{
			name: "duplicate serial rejected",
			input: RegisterWarrantyInput{
				ProductID:    1,
				SerialNumber: "SN-1001",
				PurchaseDate: purchase,
			},
			setupMocks: func(repo *mocks.MockWarrantyRepository, catalog *mocks.MockCatalogClient) {
				catalog.On("GetProductById", mock.Anything, uint64(1)).Return(tractor(), nil)
				repo.On("FindBySerial", "SN-1001").Return(&domain.Warranty{ID: 5, SerialNumber: "SN-1001"}, nil)
			},
			expectedError: domain.ErrDuplicateSerial,
		},
		{
			name: "unknown product rejected",
			input: RegisterWarrantyInput{
				ProductID:    99,
				SerialNumber: "SN-1003",
				PurchaseDate: purchase,
			},
			setupMocks: func(repo *mocks.MockWarrantyRepository, catalog *mocks.MockCatalogClient) {
				catalog.On("GetProductById", mock.Anything, uint64(99)).Return(nil, nil)
			},
			expectedError: domain.ErrNotFound,
		},
		{
			name: "missing serial rejected",
			input: RegisterWarrantyInput{
				ProductID:    1,
				PurchaseDate: purchase,
			},
			setupMocks:    func(*mocks.MockWarrantyRepository, *mocks.MockCatalogClient) {},
			expectedError: domain.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mocks.MockWarrantyRepository)
			catalog := new(mocks.MockCatalogClient)
			pub := new(mocks.MockPublisher)
			mail := new(mocks.MockMailer)
			pub.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
			mail.On("SendEmail", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()

			tt.setupMocks(repo, catalog)
			service := newWarrantyService(repo, catalog, pub, mail)

			warranty, err := service.RegisterWarranty(context.Background(), tt.input, owner)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, warranty)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.wantExpiry, warranty.ExpiryDate)
				assert.Equal(t, domain.WarrantyActive, warranty.Status)
				assert.True(t, strings.HasPrefix(warranty.WarrantyNumber, "VFW-WR-"))
				assert.Equal(t, owner.ID, warranty.UserID)
			}

			time.Sleep(50 * time.Millisecond)
			repo.AssertExpectations(t)
			catalog.AssertExpectations(t)
		})
	}
}

func TestWarrantyService_FileClaim(t *testing.T) {
	owner := domain.Actor{ID: 7, Role: domain.RoleUser}
	stranger := domain.Actor{ID: 8, Role: domain.RoleUser}

	storedWarranty := func() *domain.Warranty {
		return &domain.Warranty{
			ID:             1,
			WarrantyNumber: "VFW-WR-1700000000-abcd1234",
			SerialNumber:   "SN-1001",
			UserID:         7,
			Status:         domain.WarrantyActive,
			ExpiryDate:     time.Now().AddDate(0, 6, 0),
		}
	}

	t.Run("owner files a claim", func(t *testing.T) {
		repo := new(mocks.MockWarrantyRepository)
		pub := new(mocks.MockPublisher)
		mail := new(mocks.MockMailer)
		pub.On("Publish", mock.Anything, domain.EventWarrantyClaimFiled, mock.Anything).Return(nil).Maybe()
		mail.On("SendEmail", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()

		repo.On("FindByID", uint64(1)).Return(storedWarranty(), nil)
		repo.On("Update", mock.AnythingOfType("*domain.Warranty")).Return(nil)

		service := newWarrantyService(repo, new(mocks.MockCatalogClient), pub, mail)
		warranty, err := service.FileClaim(context.Background(), 1, ClaimInput{
			Issue:     "hydraulic leak",
			IssueType: "mechanical",
		}, owner)

		assert.NoError(t, err)
		assert.Equal(t, domain.WarrantyClaimPending, warranty.Status)
		assert.Len(t, warranty.Claims, 1)
		assert.Equal(t, domain.ClaimPending, warranty.Claims[0].Status)
		assert.Equal(t, domain.PriorityMedium, warranty.Claims[0].Priority)
		assert.NotEmpty(t, warranty.Claims[0].ID)

		time.Sleep(50 * time.Millisecond)
		repo.AssertExpectations(t)
	})

	t.Run("stranger forbidden", func(t *testing.T) {
		repo := new(mocks.MockWarrantyRepository)
		repo.On("FindByID", uint64(1)).Return(storedWarranty(), nil)

		service := newWarrantyService(repo, new(mocks.MockCatalogClient), new(mocks.MockPublisher), new(mocks.MockMailer))
		_, err := service.FileClaim(context.Background(), 1, ClaimInput{Issue: "x", IssueType: "y"}, stranger)
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("expired warranty not claimable", func(t *testing.T) {
		repo := new(mocks.MockWarrantyRepository)
		w := storedWarranty()
		w.ExpiryDate = time.Now().AddDate(0, -1, 0)
		repo.On("FindByID", uint64(1)).Return(w, nil)

		service := newWarrantyService(repo, new(mocks.MockCatalogClient), new(mocks.MockPublisher), new(mocks.MockMailer))
		_, err := service.FileClaim(context.Background(), 1, ClaimInput{Issue: "x", IssueType: "y"}, owner)
		assert.ErrorIs(t, err, domain.ErrWarrantyNotClaimable)
		repo.AssertNotCalled(t, "Update", mock.Anything)
	})
}

func TestWarrantyService_ResolveClaim(t *testing.T) {
	admin := domain.Actor{ID: 1, Role: domain.RoleAdmin}
	owner := domain.Actor{ID: 7, Role: domain.RoleUser}

	storedWithClaim := func() *domain.Warranty {
		return &domain.Warranty{
			ID:             1,
			WarrantyNumber: "VFW-WR-1700000000-abcd1234",
			UserID:         7,
			Status:         domain.WarrantyClaimPending,
			ExpiryDate:     time.Now().AddDate(0, 6, 0),
			Claims: []domain.Claim{
				{ID: "c1", Issue: "hydraulic leak", Status: domain.ClaimPending, SubmittedAt: time.Now()},
			},
		}
	}

	t.Run("resolving the only claim reactivates the warranty", func(t *testing.T) {
		repo := new(mocks.MockWarrantyRepository)
		pub := new(mocks.MockPublisher)
		mail := new(mocks.MockMailer)
		pub.On("Publish", mock.Anything, domain.EventWarrantyClaimUpdated, mock.Anything).Return(nil).Maybe()
		mail.On("SendEmail", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()

		repo.On("FindByID", uint64(1)).Return(storedWithClaim(), nil)
		repo.On("Update", mock.AnythingOfType("*domain.Warranty")).Return(nil)

		service := newWarrantyService(repo, new(mocks.MockCatalogClient), pub, mail)
		warranty, err := service.ResolveClaim(context.Background(), 1, "c1", domain.ClaimResolved, "seal replaced", admin)

		assert.NoError(t, err)
		assert.Equal(t, domain.WarrantyActive, warranty.Status)
		assert.NotNil(t, warranty.Claims[0].ResolvedAt)

		time.Sleep(50 * time.Millisecond)
		repo.AssertExpectations(t)
	})

	t.Run("in-progress claim moves warranty along", func(t *testing.T) {
		repo := new(mocks.MockWarrantyRepository)
		repo.On("FindByID", uint64(1)).Return(storedWithClaim(), nil)
		repo.On("Update", mock.AnythingOfType("*domain.Warranty")).Return(nil)
		pub := new(mocks.MockPublisher)
		pub.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()

		service := newWarrantyService(repo, new(mocks.MockCatalogClient), pub, new(mocks.MockMailer))
		warranty, err := service.ResolveClaim(context.Background(), 1, "c1", domain.ClaimInProgress, "", admin)

		assert.NoError(t, err)
		assert.Equal(t, domain.WarrantyClaimInProgress, warranty.Status)
		time.Sleep(50 * time.Millisecond)
	})

	t.Run("non-staff forbidden", func(t *testing.T) {
		service := newWarrantyService(new(mocks.MockWarrantyRepository), new(mocks.MockCatalogClient), new(mocks.MockPublisher), new(mocks.MockMailer))
		_, err := service.ResolveClaim(context.Background(), 1, "c1", domain.ClaimResolved, "", owner)
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("unknown claim", func(t *testing.T) {
		repo := new(mocks.MockWarrantyRepository)
		repo.On("FindByID", uint64(1)).Return(storedWithClaim(), nil)

		service := newWarrantyService(repo, new(mocks.MockCatalogClient), new(mocks.MockPublisher), new(mocks.MockMailer))
		_, err := service.ResolveClaim(context.Background(), 1, "c9", domain.ClaimResolved, "", admin)
		assert.ErrorIs(t, err, domain.ErrClaimNotFound)
	})
}

func TestWarrantyService_GetWarrantyBySerial(t *testing.T) {
	repo := new(mocks.MockWarrantyRepository)
	repo.On("FindBySerial", "SN-1001").Return(&domain.Warranty{ID: 1, SerialNumber: "SN-1001", UserID: 7}, nil)
	repo.On("FindBySerial", "SN-9999").Return(nil, nil)

	service := newWarrantyService(repo, new(mocks.MockCatalogClient), new(mocks.MockPublisher), new(mocks.MockMailer))
	owner := domain.Actor{ID: 7, Role: domain.RoleUser}

	w, err := service.GetWarrantyBySerial(context.Background(), "SN-1001", owner)
	assert.NoError(t, err)
	assert.Equal(t, "SN-1001", w.SerialNumber)

	_, err = service.GetWarrantyBySerial(context.Background(), "SN-9999", owner)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = service.GetWarrantyBySerial(context.Background(), "SN-1001", domain.Actor{ID: 9, Role: domain.RoleUser})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}
