package bookings

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/booking"
	catalogRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/catalog"
	"github.com/m04kA/SMC-AppointmentService/internal/service/bookings/models"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
	"github.com/m04kA/SMC-AppointmentService/pkg/ptr"
)

type mockBookingRepo struct {
	mock.Mock
}

func (m *mockBookingRepo) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	b, _ := args.Get(0).(*domain.Booking)
	return b, args.Error(1)
}

func (m *mockBookingRepo) List(ctx context.Context, filter domain.BookingFilter) ([]*domain.Booking, error) {
	args := m.Called(ctx, filter)
	b, _ := args.Get(0).([]*domain.Booking)
	return b, args.Error(1)
}

type mockBusinessRepo struct {
	mock.Mock
}

func (m *mockBusinessRepo) GetBusiness(ctx context.Context, businessID int64) (*domain.Business, error) {
	args := m.Called(ctx, businessID)
	b, _ := args.Get(0).(*domain.Business)
	return b, args.Error(1)
}

func (m *mockBusinessRepo) GetBusinessByOwner(ctx context.Context, ownerID int64) (*domain.Business, error) {
	args := m.Called(ctx, ownerID)
	b, _ := args.Get(0).(*domain.Business)
	return b, args.Error(1)
}

var (
	client      = domain.Actor{ID: 7, Role: domain.RoleClient}
	otherClient = domain.Actor{ID: 8, Role: domain.RoleClient}
	owner       = domain.Actor{ID: 100, Role: domain.RoleBusiness}
	otherOwner  = domain.Actor{ID: 200, Role: domain.RoleBusiness}

	business = &domain.Business{ID: 1, OwnerID: 100, Name: "Barbers"}
)

func newTestService(t *testing.T) (*Service, *mockBookingRepo, *mockBusinessRepo) {
	t.Helper()

	log, err := logger.NewWithWriter(io.Discard, "error")
	require.NoError(t, err)

	bookings := &mockBookingRepo{}
	businesses := &mockBusinessRepo{}
	t.Cleanup(func() {
		bookings.AssertExpectations(t)
		businesses.AssertExpectations(t)
	})
	return NewService(bookings, businesses, log), bookings, businesses
}

func sampleBooking() *domain.Booking {
	return &domain.Booking{
		ID:              42,
		BusinessID:      1,
		ServiceID:       10,
		ClientID:        7,
		Date:            time.Date(2030, 6, 3, 0, 0, 0, 0, time.UTC),
		StartTime:       "10:00",
		DurationMinutes: 45,
		ServiceName:     "Haircut",
		PriceMinorUnits: 2500,
		Status:          domain.StatusPending,
	}
}

func TestService_GetByID_Client(t *testing.T) {
	svc, bookings, _ := newTestService(t)
	bookings.On("GetByID", mock.Anything, int64(42)).Return(sampleBooking(), nil)

	resp, err := svc.GetByID(context.Background(), client, 42)

	require.NoError(t, err)
	assert.Equal(t, int64(42), resp.ID)
	assert.Equal(t, "2030-06-03", resp.BookingDate)
	assert.Equal(t, "10:00", resp.StartTime)
	assert.Equal(t, "10:45", resp.EndTime)
	assert.Equal(t, "pending", resp.Status)
	assert.Equal(t, "Haircut", resp.ServiceName)
	assert.Equal(t, int64(2500), resp.PriceMinorUnits)
}

func TestService_GetByID_OwningBusiness(t *testing.T) {
	svc, bookings, businesses := newTestService(t)
	bookings.On("GetByID", mock.Anything, int64(42)).Return(sampleBooking(), nil)
	businesses.On("GetBusiness", mock.Anything, int64(1)).Return(business, nil)

	resp, err := svc.GetByID(context.Background(), owner, 42)

	require.NoError(t, err)
	assert.Equal(t, int64(7), resp.ClientID)
}

func TestService_GetByID_NotAParty(t *testing.T) {
	tests := []struct {
		name  string
		actor domain.Actor
	}{
		{name: "other client", actor: otherClient},
		{name: "other business", actor: otherOwner},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, bookings, businesses := newTestService(t)
			bookings.On("GetByID", mock.Anything, int64(42)).Return(sampleBooking(), nil)
			businesses.On("GetBusiness", mock.Anything, int64(1)).Return(business, nil).Maybe()

			_, err := svc.GetByID(context.Background(), tt.actor, 42)

			assert.ErrorIs(t, err, ErrAccessDenied)
			assert.ErrorIs(t, err, domain.ErrAuthorization)
		})
	}
}

func TestService_GetByID_Errors(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		svc, bookings, _ := newTestService(t)
		bookings.On("GetByID", mock.Anything, int64(5)).Return(nil, bookingRepo.ErrBookingNotFound)

		_, err := svc.GetByID(context.Background(), client, 5)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("invalid id", func(t *testing.T) {
		svc, _, _ := newTestService(t)

		_, err := svc.GetByID(context.Background(), client, 0)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("storage failure", func(t *testing.T) {
		svc, bookings, _ := newTestService(t)
		bookings.On("GetByID", mock.Anything, int64(5)).Return(nil, errors.New("connection reset"))

		_, err := svc.GetByID(context.Background(), client, 5)
		assert.ErrorIs(t, err, domain.ErrUnavailable)
	})
}

func TestService_List_ClientSeesOwnBookings(t *testing.T) {
	svc, bookings, _ := newTestService(t)

	bookings.On("List", mock.Anything, mock.MatchedBy(func(f domain.BookingFilter) bool {
		return f.ClientID != nil && *f.ClientID == 7 && f.BusinessID == nil &&
			len(f.Statuses) == 2 && f.Statuses[0] == domain.StatusPending && f.Statuses[1] == domain.StatusConfirmed
	})).Return([]*domain.Booking{sampleBooking()}, nil)

	resp, err := svc.List(context.Background(), &models.ListBookingsRequest{
		Actor:    client,
		Statuses: []string{"PENDING", "Confirmed"},
	})

	require.NoError(t, err)
	require.Len(t, resp.Bookings, 1)
	assert.Equal(t, int64(42), resp.Bookings[0].ID)
}

func TestService_List_BusinessDefaultsToOwnedBusiness(t *testing.T) {
	svc, bookings, businesses := newTestService(t)

	businesses.On("GetBusinessByOwner", mock.Anything, int64(100)).Return(business, nil)
	bookings.On("List", mock.Anything, mock.MatchedBy(func(f domain.BookingFilter) bool {
		return f.BusinessID != nil && *f.BusinessID == 1 && f.ClientID == nil
	})).Return([]*domain.Booking{}, nil)

	resp, err := svc.List(context.Background(), &models.ListBookingsRequest{Actor: owner})

	require.NoError(t, err)
	assert.Empty(t, resp.Bookings)
}

func TestService_List_BusinessCannotReadForeignBusiness(t *testing.T) {
	svc, _, businesses := newTestService(t)
	businesses.On("GetBusiness", mock.Anything, int64(1)).Return(business, nil)

	_, err := svc.List(context.Background(), &models.ListBookingsRequest{
		Actor:      otherOwner,
		BusinessID: ptr.Ptr(int64(1)),
	})

	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestService_List_BusinessWithoutBusiness(t *testing.T) {
	svc, _, businesses := newTestService(t)
	businesses.On("GetBusinessByOwner", mock.Anything, int64(200)).Return(nil, catalogRepo.ErrBusinessNotFound)

	_, err := svc.List(context.Background(), &models.ListBookingsRequest{Actor: otherOwner})

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestService_List_Validation(t *testing.T) {
	from := time.Date(2030, 6, 10, 0, 0, 0, 0, time.UTC)
	to := time.Date(2030, 6, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		req  *models.ListBookingsRequest
	}{
		{
			name: "unknown status",
			req:  &models.ListBookingsRequest{Actor: client, Statuses: []string{"archived"}},
		},
		{
			name: "inverted period",
			req:  &models.ListBookingsRequest{Actor: client, DateFrom: &from, DateTo: &to},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, _ := newTestService(t)

			_, err := svc.List(context.Background(), tt.req)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}
