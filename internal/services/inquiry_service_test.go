package services

import (
	"context"
	"testing"
	"time"

	"vfw-service/internal/domain"
	"vfw-service/internal/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

func newInquiryService(repo *mocks.MockInquiryRepository, pub *mocks.MockPublisher, mail *mocks.MockMailer) *InquiryService {
	return NewInquiryService(repo, pub, mail, zap.NewNop())
}

func TestInquiryService_SubmitInquiry(t *testing.T) {
	tests := []struct {
		name          string
		input         SubmitInquiryInput
		expectedError error
		check         func(*testing.T, *domain.Inquiry)
	}{
		{
			name: "defaults applied",
			input: SubmitInquiryInput{
				Type:    domain.InquiryProduct,
				Subject: "Power tiller spare parts",
				Message: "Do you stock blades for the 450 DI?",
				Contact: domain.Contact{Name: "Asha", Email: "asha@example.com", Phone: "9876543210"},
			},
			check: func(t *testing.T, in *domain.Inquiry) {
				assert.Equal(t, domain.InquiryPending, in.Status)
				assert.Equal(t, domain.PriorityMedium, in.Priority)
				assert.Contains(t, string(in.Metadata), "website")
			},
		},
		{
			name: "explicit priority and source preserved",
			input: SubmitInquiryInput{
				Type:     domain.InquiryComplaint,
				Subject:  "Gearbox failed within a week",
				Message:  "The gearbox seized on day six.",
				Contact:  domain.Contact{Name: "Ravi", Email: "ravi@example.com", Phone: "8765432109"},
				Priority: domain.PriorityUrgent,
				Source:   "dealer-portal",
			},
			check: func(t *testing.T, in *domain.Inquiry) {
				assert.Equal(t, domain.PriorityUrgent, in.Priority)
				assert.Contains(t, string(in.Metadata), "dealer-portal")
			},
		},
		{
			name: "unknown type rejected",
			input: SubmitInquiryInput{
				Type:    domain.InquiryType("sales"),
				Subject: "x",
				Message: "y",
			},
			expectedError: domain.ErrValidation,
		},
		{
			name: "missing subject rejected",
			input: SubmitInquiryInput{
				Type:    domain.InquiryGeneral,
				Message: "hello",
			},
			expectedError: domain.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mocks.MockInquiryRepository)
			pub := new(mocks.MockPublisher)
			mail := new(mocks.MockMailer)
			pub.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
			mail.On("SendEmail", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()

			if tt.expectedError == nil {
				repo.On("Save", mock.AnythingOfType("*domain.Inquiry")).Return(nil).Run(func(args mock.Arguments) {
					args.Get(0).(*domain.Inquiry).ID = 1
				})
			}

			service := newInquiryService(repo, pub, mail)
			inquiry, err := service.SubmitInquiry(context.Background(), tt.input, domain.Anonymous)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, inquiry)
			} else {
				assert.NoError(t, err)
				tt.check(t, inquiry)
			}

			time.Sleep(50 * time.Millisecond)
			repo.AssertExpectations(t)
		})
	}
}

func TestInquiryService_AddResponse(t *testing.T) {
	manager := domain.Actor{ID: 3, Role: domain.RoleManager}
	customer := domain.Actor{ID: 7, Role: domain.RoleUser}

	t.Run("first response escalates pending inquiry", func(t *testing.T) {
		repo := new(mocks.MockInquiryRepository)
		pub := new(mocks.MockPublisher)
		mail := new(mocks.MockMailer)
		pub.On("Publish", mock.Anything, domain.EventInquiryResponded, mock.Anything).Return(nil).Maybe()
		mail.On("SendEmail", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()

		stored := &domain.Inquiry{
			ID:      1,
			Status:  domain.InquiryPending,
			Contact: domain.Contact{Email: "asha@example.com"},
		}
		repo.On("FindByID", uint64(1)).Return(stored, nil)
		repo.On("Update", mock.AnythingOfType("*domain.Inquiry")).Return(nil)

		service := newInquiryService(repo, pub, mail)
		inquiry, err := service.AddResponse(context.Background(), 1, "Blades are in stock.", nil, manager)

		assert.NoError(t, err)
		assert.Equal(t, domain.InquiryInProgress, inquiry.Status)
		assert.Len(t, inquiry.Responses, 1)

		time.Sleep(50 * time.Millisecond)
		repo.AssertExpectations(t)
	})

	t.Run("non-staff forbidden", func(t *testing.T) {
		service := newInquiryService(new(mocks.MockInquiryRepository), new(mocks.MockPublisher), new(mocks.MockMailer))
		_, err := service.AddResponse(context.Background(), 1, "hi", nil, customer)
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("empty message rejected", func(t *testing.T) {
		service := newInquiryService(new(mocks.MockInquiryRepository), new(mocks.MockPublisher), new(mocks.MockMailer))
		_, err := service.AddResponse(context.Background(), 1, "", nil, manager)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestInquiryService_UpdateStatus(t *testing.T) {
	manager := domain.Actor{ID: 3, Role: domain.RoleManager}

	repo := new(mocks.MockInquiryRepository)
	repo.On("FindByID", uint64(1)).Return(&domain.Inquiry{ID: 1, Status: domain.InquiryInProgress}, nil)
	repo.On("Update", mock.AnythingOfType("*domain.Inquiry")).Return(nil)

	service := newInquiryService(repo, new(mocks.MockPublisher), new(mocks.MockMailer))

	inquiry, err := service.UpdateStatus(context.Background(), 1, domain.InquiryResolved, manager)
	assert.NoError(t, err)
	assert.Equal(t, domain.InquiryResolved, inquiry.Status)

	_, err = service.UpdateStatus(context.Background(), 1, domain.InquiryStatus("archived"), manager)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestInquiryService_InternalNotes(t *testing.T) {
	manager := domain.Actor{ID: 3, Role: domain.RoleManager}

	repo := new(mocks.MockInquiryRepository)
	repo.On("FindByID", uint64(1)).Return(&domain.Inquiry{ID: 1}, nil)
	repo.On("Update", mock.AnythingOfType("*domain.Inquiry")).Return(nil)

	service := newInquiryService(repo, new(mocks.MockPublisher), new(mocks.MockMailer))
	inquiry, err := service.AddInternalNote(context.Background(), 1, "asked dealer for serial", manager)

	assert.NoError(t, err)
	assert.Len(t, inquiry.Notes, 1)
}

func TestInquiryService_DeleteInquiry(t *testing.T) {
	t.Run("manager may not delete", func(t *testing.T) {
		service := newInquiryService(new(mocks.MockInquiryRepository), new(mocks.MockPublisher), new(mocks.MockMailer))
		err := service.DeleteInquiry(context.Background(), 1, domain.Actor{ID: 3, Role: domain.RoleManager})
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("admin deletes", func(t *testing.T) {
		repo := new(mocks.MockInquiryRepository)
		repo.On("FindByID", uint64(1)).Return(&domain.Inquiry{ID: 1}, nil)
		repo.On("Delete", uint64(1)).Return(nil)

		service := newInquiryService(repo, new(mocks.MockPublisher), new(mocks.MockMailer))
		err := service.DeleteInquiry(context.Background(), 1, domain.Actor{ID: 1, Role: domain.RoleAdmin})
		assert.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("missing inquiry", func(t *testing.T) {
		repo := new(mocks.MockInquiryRepository)
		repo.On("FindByID", uint64(9)).Return(nil, nil)

		service := newInquiryService(repo, new(mocks.MockPublisher), new(mocks.MockMailer))
		err := service.DeleteInquiry(context.Background(), 9, domain.Actor{ID: 1, Role: domain.RoleAdmin})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}
