package get_available_slots

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
	catalogRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/catalog"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
	"github.com/m04kA/SMC-AppointmentService/pkg/ptr"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

type mockCatalog struct {
	mock.Mock
}

func (m *mockCatalog) GetBusiness(ctx context.Context, businessID int64) (*domain.Business, error) {
	args := m.Called(ctx, businessID)
	b, _ := args.Get(0).(*domain.Business)
	return b, args.Error(1)
}

func (m *mockCatalog) GetService(ctx context.Context, businessID, serviceID int64) (*domain.Service, error) {
	args := m.Called(ctx, businessID, serviceID)
	s, _ := args.Get(0).(*domain.Service)
	return s, args.Error(1)
}

func (m *mockCatalog) GetStaff(ctx context.Context, businessID, staffID int64) (*domain.Staff, error) {
	args := m.Called(ctx, businessID, staffID)
	s, _ := args.Get(0).(*domain.Staff)
	return s, args.Error(1)
}

func (m *mockCatalog) GetWorkingIntervals(ctx context.Context, businessID int64, weekday time.Weekday) ([]domain.WorkingInterval, error) {
	args := m.Called(ctx, businessID, weekday)
	w, _ := args.Get(0).([]domain.WorkingInterval)
	return w, args.Error(1)
}

func (m *mockCatalog) ListEmergencyBlocks(ctx context.Context, businessID int64, from, to *time.Time) ([]domain.EmergencyBlock, error) {
	args := m.Called(ctx, businessID, from, to)
	b, _ := args.Get(0).([]domain.EmergencyBlock)
	return b, args.Error(1)
}

type mockBookings struct {
	mock.Mock
}

func (m *mockBookings) GetActiveForResource(ctx context.Context, businessID int64, staffID *int64, date time.Time) ([]*domain.Booking, error) {
	args := m.Called(ctx, businessID, staffID, date)
	b, _ := args.Get(0).([]*domain.Booking)
	return b, args.Error(1)
}

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

// 2030-06-03 is a Monday
var monday = time.Date(2030, 6, 3, 0, 0, 0, 0, time.UTC)

func newTestUseCase(t *testing.T, now time.Time) (*UseCase, *mockCatalog, *mockBookings) {
	t.Helper()

	log, err := logger.NewWithWriter(io.Discard, "error")
	require.NoError(t, err)

	catalog := &mockCatalog{}
	bookings := &mockBookings{}
	uc := NewUseCase(catalog, bookings, time.UTC, log)
	uc.timeProvider = fixedClock{now: now}

	t.Cleanup(func() {
		catalog.AssertExpectations(t)
		bookings.AssertExpectations(t)
	})
	return uc, catalog, bookings
}

func expectOpenMorning(catalog *mockCatalog, bookings *mockBookings, staffID *int64, booked []*domain.Booking) {
	catalog.On("GetBusiness", mock.Anything, int64(1)).Return(&domain.Business{ID: 1, OwnerID: 100}, nil)
	catalog.On("GetService", mock.Anything, int64(1), int64(10)).
		Return(&domain.Service{ID: 10, BusinessID: 1, DurationMinutes: 60, IsActive: true}, nil)
	catalog.On("GetWorkingIntervals", mock.Anything, int64(1), time.Monday).
		Return([]domain.WorkingInterval{{Open: "09:00", Close: "12:00"}}, nil)
	catalog.On("ListEmergencyBlocks", mock.Anything, int64(1), mock.Anything, mock.Anything).
		Return([]domain.EmergencyBlock{}, nil)
	bookings.On("GetActiveForResource", mock.Anything, int64(1), staffID, monday).Return(booked, nil)
}

func starts(slots []domain.TimeSlot) []types.TimeString {
	result := make([]types.TimeString, 0, len(slots))
	for _, s := range slots {
		result = append(result, s.Start)
	}
	return result
}

func TestUseCase_Execute_BusinessWide(t *testing.T) {
	uc, catalog, bookings := newTestUseCase(t, monday.AddDate(0, 0, -1))

	expectOpenMorning(catalog, bookings, nil, []*domain.Booking{
		{BusinessID: 1, Date: monday, StartTime: "10:00", DurationMinutes: 60, Status: domain.StatusPending},
	})

	resp, err := uc.Execute(context.Background(), &Request{BusinessID: 1, ServiceID: 10, Date: monday})

	require.NoError(t, err)
	assert.Equal(t, 60, resp.DurationMinutes)
	assert.Equal(t, []types.TimeString{"09:00", "11:00"}, starts(resp.Slots))
}

func TestUseCase_Execute_WithStaff(t *testing.T) {
	uc, catalog, bookings := newTestUseCase(t, monday.AddDate(0, 0, -1))
	staffID := ptr.Ptr(int64(5))

	expectOpenMorning(catalog, bookings, staffID, []*domain.Booking{})
	catalog.On("GetStaff", mock.Anything, int64(1), int64(5)).
		Return(&domain.Staff{ID: 5, BusinessID: 1, ServiceIDs: []int64{10}, IsActive: true}, nil)

	resp, err := uc.Execute(context.Background(), &Request{BusinessID: 1, ServiceID: 10, StaffID: staffID, Date: monday})

	require.NoError(t, err)
	assert.Len(t, resp.Slots, 3)
	assert.Equal(t, staffID, resp.StaffID)
}

func TestUseCase_Execute_StaffCannotPerform(t *testing.T) {
	uc, catalog, bookings := newTestUseCase(t, monday.AddDate(0, 0, -1))
	staffID := ptr.Ptr(int64(5))

	expectOpenMorning(catalog, bookings, staffID, []*domain.Booking{})
	catalog.On("GetStaff", mock.Anything, int64(1), int64(5)).
		Return(&domain.Staff{ID: 5, BusinessID: 1, ServiceIDs: []int64{11}, IsActive: true}, nil)

	_, err := uc.Execute(context.Background(), &Request{BusinessID: 1, ServiceID: 10, StaffID: staffID, Date: monday})

	assert.ErrorIs(t, err, ErrStaffCannotPerform)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestUseCase_Execute_InactiveStaff(t *testing.T) {
	uc, catalog, bookings := newTestUseCase(t, monday.AddDate(0, 0, -1))
	staffID := ptr.Ptr(int64(5))

	expectOpenMorning(catalog, bookings, staffID, []*domain.Booking{})
	catalog.On("GetStaff", mock.Anything, int64(1), int64(5)).
		Return(&domain.Staff{ID: 5, BusinessID: 1, IsActive: false}, nil)

	_, err := uc.Execute(context.Background(), &Request{BusinessID: 1, ServiceID: 10, StaffID: staffID, Date: monday})

	assert.ErrorIs(t, err, ErrStaffNotFound)
}

func TestUseCase_Execute_InactiveService(t *testing.T) {
	uc, catalog, bookings := newTestUseCase(t, monday.AddDate(0, 0, -1))

	catalog.On("GetBusiness", mock.Anything, int64(1)).Return(&domain.Business{ID: 1}, nil)
	catalog.On("GetService", mock.Anything, int64(1), int64(10)).
		Return(&domain.Service{ID: 10, BusinessID: 1, DurationMinutes: 60, IsActive: false}, nil)
	catalog.On("GetWorkingIntervals", mock.Anything, int64(1), time.Monday).Return([]domain.WorkingInterval{}, nil)
	catalog.On("ListEmergencyBlocks", mock.Anything, int64(1), mock.Anything, mock.Anything).Return([]domain.EmergencyBlock{}, nil)
	bookings.On("GetActiveForResource", mock.Anything, int64(1), (*int64)(nil), monday).Return([]*domain.Booking{}, nil)

	_, err := uc.Execute(context.Background(), &Request{BusinessID: 1, ServiceID: 10, Date: monday})

	assert.ErrorIs(t, err, ErrServiceNotFound)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUseCase_Execute_BusinessNotFound(t *testing.T) {
	uc, catalog, bookings := newTestUseCase(t, monday.AddDate(0, 0, -1))

	catalog.On("GetBusiness", mock.Anything, int64(1)).Return(nil, catalogRepo.ErrBusinessNotFound)
	catalog.On("GetService", mock.Anything, int64(1), int64(10)).Return(nil, catalogRepo.ErrServiceNotFound).Maybe()
	catalog.On("GetWorkingIntervals", mock.Anything, int64(1), time.Monday).Return([]domain.WorkingInterval{}, nil).Maybe()
	catalog.On("ListEmergencyBlocks", mock.Anything, int64(1), mock.Anything, mock.Anything).Return([]domain.EmergencyBlock{}, nil).Maybe()
	bookings.On("GetActiveForResource", mock.Anything, int64(1), (*int64)(nil), monday).Return([]*domain.Booking{}, nil).Maybe()

	_, err := uc.Execute(context.Background(), &Request{BusinessID: 1, ServiceID: 10, Date: monday})

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUseCase_Execute_StorageFailure(t *testing.T) {
	uc, catalog, bookings := newTestUseCase(t, monday.AddDate(0, 0, -1))

	catalog.On("GetBusiness", mock.Anything, int64(1)).Return(&domain.Business{ID: 1}, nil).Maybe()
	catalog.On("GetService", mock.Anything, int64(1), int64(10)).
		Return(&domain.Service{ID: 10, DurationMinutes: 60, IsActive: true}, nil).Maybe()
	catalog.On("GetWorkingIntervals", mock.Anything, int64(1), time.Monday).Return([]domain.WorkingInterval{}, nil).Maybe()
	catalog.On("ListEmergencyBlocks", mock.Anything, int64(1), mock.Anything, mock.Anything).Return([]domain.EmergencyBlock{}, nil).Maybe()
	bookings.On("GetActiveForResource", mock.Anything, int64(1), (*int64)(nil), monday).Return(nil, errors.New("connection refused"))

	_, err := uc.Execute(context.Background(), &Request{BusinessID: 1, ServiceID: 10, Date: monday})

	assert.ErrorIs(t, err, ErrInternal)
	assert.ErrorIs(t, err, domain.ErrUnavailable)
}

func TestUseCase_Execute_TodayDropsStartedSlots(t *testing.T) {
	uc, catalog, bookings := newTestUseCase(t, monday.Add(10*time.Hour+15*time.Minute))

	expectOpenMorning(catalog, bookings, nil, []*domain.Booking{})

	resp, err := uc.Execute(context.Background(), &Request{BusinessID: 1, ServiceID: 10, Date: monday})

	require.NoError(t, err)
	assert.Equal(t, []types.TimeString{"11:00"}, starts(resp.Slots))
}

func TestUseCase_Execute_Validation(t *testing.T) {
	tests := []struct {
		name string
		req  *Request
	}{
		{name: "no business", req: &Request{ServiceID: 10, Date: monday}},
		{name: "no service", req: &Request{BusinessID: 1, Date: monday}},
		{name: "bad staff", req: &Request{BusinessID: 1, ServiceID: 10, StaffID: ptr.Ptr(int64(0)), Date: monday}},
		{name: "no date", req: &Request{BusinessID: 1, ServiceID: 10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, _, _ := newTestUseCase(t, monday)

			_, err := uc.Execute(context.Background(), tt.req)

			assert.ErrorIs(t, err, ErrInvalidInput)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}
