package reviews

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/booking"
	catalogRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/catalog"
	reviewRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/review"
	"github.com/m04kA/SMC-AppointmentService/internal/service/reviews/models"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
	"github.com/m04kA/SMC-AppointmentService/pkg/ptr"
)

type mockBookings struct {
	mock.Mock
}

func (m *mockBookings) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	b, _ := args.Get(0).(*domain.Booking)
	return b, args.Error(1)
}

type mockBusinesses struct {
	mock.Mock
}

func (m *mockBusinesses) GetBusiness(ctx context.Context, businessID int64) (*domain.Business, error) {
	args := m.Called(ctx, businessID)
	b, _ := args.Get(0).(*domain.Business)
	return b, args.Error(1)
}

// memoryReviews enforces one review per booking like the unique index
type memoryReviews struct {
	reviews []*domain.Review
}

func (r *memoryReviews) Create(_ context.Context, review *domain.Review) (*domain.Review, error) {
	for _, existing := range r.reviews {
		if existing.BookingID == review.BookingID {
			return nil, reviewRepo.ErrReviewExists
		}
	}
	review.ID = int64(len(r.reviews) + 1)
	review.CreatedAt = time.Now()
	r.reviews = append(r.reviews, review)
	return review, nil
}

func (r *memoryReviews) ListByBusiness(_ context.Context, businessID int64) ([]*domain.Review, error) {
	result := make([]*domain.Review, 0)
	for _, review := range r.reviews {
		if review.BusinessID == businessID {
			result = append(result, review)
		}
	}
	return result, nil
}

type memoryOutbox struct {
	events []*domain.OutboxEvent
	err    error
}

func (o *memoryOutbox) Append(_ context.Context, event *domain.OutboxEvent) error {
	if o.err != nil {
		return o.err
	}
	o.events = append(o.events, event)
	return nil
}

// rollbackTx discards reviews created inside a failed function
type rollbackTx struct {
	reviews *memoryReviews
}

func (t rollbackTx) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	before := len(t.reviews.reviews)
	if err := fn(ctx); err != nil {
		t.reviews.reviews = t.reviews.reviews[:before]
		return err
	}
	return nil
}

var client = domain.Actor{ID: 7, Role: domain.RoleClient}

type testEnv struct {
	svc        *Service
	bookings   *mockBookings
	businesses *mockBusinesses
	reviews    *memoryReviews
	outbox     *memoryOutbox
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	log, err := logger.NewWithWriter(io.Discard, "error")
	require.NoError(t, err)

	env := &testEnv{
		bookings:   &mockBookings{},
		businesses: &mockBusinesses{},
		reviews:    &memoryReviews{},
		outbox:     &memoryOutbox{},
	}
	env.svc = NewService(env.bookings, env.reviews, env.businesses, env.outbox, rollbackTx{reviews: env.reviews}, log)

	t.Cleanup(func() {
		env.bookings.AssertExpectations(t)
		env.businesses.AssertExpectations(t)
	})
	return env
}

func completedBooking() *domain.Booking {
	return &domain.Booking{ID: 42, BusinessID: 1, ClientID: 7, Status: domain.StatusCompleted}
}

func TestService_Create(t *testing.T) {
	env := newTestEnv(t)
	env.bookings.On("GetByID", mock.Anything, int64(42)).Return(completedBooking(), nil)

	resp, err := env.svc.Create(context.Background(), &models.CreateReviewRequest{
		Actor:     client,
		BookingID: 42,
		Rating:    5,
		Comment:   ptr.Ptr("  great cut  "),
	})

	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.BusinessID)
	assert.Equal(t, 5, resp.Rating)
	require.NotNil(t, resp.Comment)
	assert.Equal(t, "great cut", *resp.Comment)

	require.Len(t, env.outbox.events, 1)
	assert.Equal(t, domain.EventReviewCreated, env.outbox.events[0].EventType)
	assert.Equal(t, "1", env.outbox.events[0].AggregateID)
}

func TestService_Create_OncePerBooking(t *testing.T) {
	env := newTestEnv(t)
	env.bookings.On("GetByID", mock.Anything, int64(42)).Return(completedBooking(), nil)
	req := func() *models.CreateReviewRequest {
		return &models.CreateReviewRequest{Actor: client, BookingID: 42, Rating: 4}
	}

	_, err := env.svc.Create(context.Background(), req())
	require.NoError(t, err)

	_, err = env.svc.Create(context.Background(), req())
	assert.ErrorIs(t, err, ErrReviewAlreadyExists)
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Len(t, env.outbox.events, 1)
}

func TestService_Create_RequiresCompletedBooking(t *testing.T) {
	for _, status := range []domain.BookingStatus{domain.StatusPending, domain.StatusConfirmed, domain.StatusCancelled} {
		t.Run(string(status), func(t *testing.T) {
			env := newTestEnv(t)
			booking := completedBooking()
			booking.Status = status
			env.bookings.On("GetByID", mock.Anything, int64(42)).Return(booking, nil)

			_, err := env.svc.Create(context.Background(), &models.CreateReviewRequest{Actor: client, BookingID: 42, Rating: 3})

			assert.ErrorIs(t, err, domain.ErrInvalidTransition)
			assert.Empty(t, env.reviews.reviews)
		})
	}
}

func TestService_Create_Authorization(t *testing.T) {
	t.Run("business actor", func(t *testing.T) {
		env := newTestEnv(t)

		_, err := env.svc.Create(context.Background(), &models.CreateReviewRequest{
			Actor: domain.Actor{ID: 7, Role: domain.RoleBusiness}, BookingID: 42, Rating: 3,
		})
		assert.ErrorIs(t, err, ErrOnlyClientsCanReview)
	})

	t.Run("another client", func(t *testing.T) {
		env := newTestEnv(t)
		env.bookings.On("GetByID", mock.Anything, int64(42)).Return(completedBooking(), nil)

		_, err := env.svc.Create(context.Background(), &models.CreateReviewRequest{
			Actor: domain.Actor{ID: 8, Role: domain.RoleClient}, BookingID: 42, Rating: 3,
		})
		assert.ErrorIs(t, err, ErrAccessDenied)
	})
}

func TestService_Create_Validation(t *testing.T) {
	tests := []struct {
		name string
		req  *models.CreateReviewRequest
	}{
		{name: "rating too low", req: &models.CreateReviewRequest{Actor: client, BookingID: 42, Rating: 0}},
		{name: "rating too high", req: &models.CreateReviewRequest{Actor: client, BookingID: 42, Rating: 6}},
		{name: "no booking", req: &models.CreateReviewRequest{Actor: client, Rating: 5}},
		{
			name: "comment too long",
			req: &models.CreateReviewRequest{
				Actor: client, BookingID: 42, Rating: 5,
				Comment: ptr.Ptr(strings.Repeat("a", domain.MaxReviewCommentLength+1)),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)

			_, err := env.svc.Create(context.Background(), tt.req)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestService_Create_BookingNotFound(t *testing.T) {
	env := newTestEnv(t)
	env.bookings.On("GetByID", mock.Anything, int64(42)).Return(nil, bookingRepo.ErrBookingNotFound)

	_, err := env.svc.Create(context.Background(), &models.CreateReviewRequest{Actor: client, BookingID: 42, Rating: 5})

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestService_Create_OutboxFailureRollsBack(t *testing.T) {
	env := newTestEnv(t)
	env.outbox.err = errors.New("disk full")
	env.bookings.On("GetByID", mock.Anything, int64(42)).Return(completedBooking(), nil)

	_, err := env.svc.Create(context.Background(), &models.CreateReviewRequest{Actor: client, BookingID: 42, Rating: 5})

	assert.ErrorIs(t, err, domain.ErrUnavailable)
	assert.Empty(t, env.reviews.reviews)
}

func TestService_ListByBusiness(t *testing.T) {
	env := newTestEnv(t)
	env.businesses.On("GetBusiness", mock.Anything, int64(1)).Return(&domain.Business{ID: 1, OwnerID: 100}, nil)
	env.reviews.reviews = []*domain.Review{
		{ID: 1, BookingID: 1, BusinessID: 1, Rating: 5},
		{ID: 2, BookingID: 2, BusinessID: 1, Rating: 2},
		{ID: 3, BookingID: 3, BusinessID: 2, Rating: 1},
	}

	resp, err := env.svc.ListByBusiness(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, 2, resp.Count)
	assert.InDelta(t, 3.5, resp.AverageRating, 1e-9)
}

func TestService_ListByBusiness_UnknownBusiness(t *testing.T) {
	env := newTestEnv(t)
	env.businesses.On("GetBusiness", mock.Anything, int64(9)).Return(nil, catalogRepo.ErrBusinessNotFound)

	_, err := env.svc.ListByBusiness(context.Background(), 9)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}
