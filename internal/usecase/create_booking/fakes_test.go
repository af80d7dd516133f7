package create_booking

import (
	"context"
	"sync"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/booking"
	catalogRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/catalog"
)

// memoryStore in-memory ledger with the same conflict rules as the database schema
type memoryStore struct {
	mu       sync.Mutex
	nextID   int64
	bookings []*domain.Booking
	events   []*domain.OutboxEvent

	// skipLock disables resource serialization to exercise the exclusion check
	skipLock bool
	locks    sync.Map // key -> *sync.Mutex
}

func newMemoryStore() *memoryStore {
	return &memoryStore{}
}

type heldLocksKey struct{}

func (s *memoryStore) LockResource(ctx context.Context, key string) error {
	if s.skipLock {
		return nil
	}
	held, ok := ctx.Value(heldLocksKey{}).(*[]*sync.Mutex)
	if !ok {
		return bookingRepo.ErrTransactionRequired
	}
	m, _ := s.locks.LoadOrStore(key, &sync.Mutex{})
	mu := m.(*sync.Mutex)
	mu.Lock()
	*held = append(*held, mu)
	return nil
}

func (s *memoryStore) GetActiveForResource(_ context.Context, businessID int64, staffID *int64, date time.Time) ([]*domain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]*domain.Booking, 0)
	for _, b := range s.bookings {
		if b.BusinessID == businessID && b.ResourceID() == domain.ResourceIDOf(staffID) &&
			b.Date.Equal(domain.DateOnly(date)) && b.IsActive() {
			copied := *b
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (s *memoryStore) GetByIdempotencyKey(_ context.Context, clientID int64, key string) (*domain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, b := range s.bookings {
		if b.ClientID == clientID && b.IdempotencyKey != nil && *b.IdempotencyKey == key {
			copied := *b
			return &copied, nil
		}
	}
	return nil, bookingRepo.ErrBookingNotFound
}

func (s *memoryStore) Create(_ context.Context, booking *domain.Booking) (*domain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start, _ := booking.StartTime.Minutes()
	for _, b := range s.bookings {
		if booking.IdempotencyKey != nil && b.ClientID == booking.ClientID &&
			b.IdempotencyKey != nil && *b.IdempotencyKey == *booking.IdempotencyKey {
			return nil, bookingRepo.ErrDuplicateIdempotencyKey
		}
		if !b.IsActive() || b.BusinessID != booking.BusinessID || b.ResourceID() != booking.ResourceID() ||
			!b.Date.Equal(booking.Date) {
			continue
		}
		otherStart, _ := b.StartTime.Minutes()
		if start < otherStart+b.DurationMinutes && otherStart < start+booking.DurationMinutes {
			return nil, bookingRepo.ErrSlotTaken
		}
	}

	s.nextID++
	stored := *booking
	stored.ID = s.nextID
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	s.bookings = append(s.bookings, &stored)

	copied := stored
	return &copied, nil
}

func (s *memoryStore) Append(_ context.Context, event *domain.OutboxEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *memoryStore) active() []*domain.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]*domain.Booking, 0)
	for _, b := range s.bookings {
		if b.IsActive() {
			result = append(result, b)
		}
	}
	return result
}

// memoryTx releases the resource locks taken inside fn when fn returns, like a commit
type memoryTx struct{}

func (memoryTx) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	held := make([]*sync.Mutex, 0, 1)
	defer func() {
		for _, mu := range held {
			mu.Unlock()
		}
	}()
	return fn(context.WithValue(ctx, heldLocksKey{}, &held))
}

type staticCatalog struct {
	business  *domain.Business
	services  map[int64]*domain.Service
	staff     map[int64]*domain.Staff
	hours     domain.WeeklyHours
	blocks    []domain.EmergencyBlock
	blocksErr error
}

func (c *staticCatalog) GetBusiness(_ context.Context, businessID int64) (*domain.Business, error) {
	if c.business == nil || c.business.ID != businessID {
		return nil, catalogRepo.ErrBusinessNotFound
	}
	return c.business, nil
}

func (c *staticCatalog) GetService(_ context.Context, businessID, serviceID int64) (*domain.Service, error) {
	s, ok := c.services[serviceID]
	if !ok || s.BusinessID != businessID {
		return nil, catalogRepo.ErrServiceNotFound
	}
	return s, nil
}

func (c *staticCatalog) GetStaff(_ context.Context, businessID, staffID int64) (*domain.Staff, error) {
	s, ok := c.staff[staffID]
	if !ok || s.BusinessID != businessID {
		return nil, catalogRepo.ErrStaffNotFound
	}
	return s, nil
}

func (c *staticCatalog) GetWorkingIntervals(_ context.Context, _ int64, weekday time.Weekday) ([]domain.WorkingInterval, error) {
	return c.hours[weekday], nil
}

func (c *staticCatalog) ListEmergencyBlocks(_ context.Context, _ int64, _, _ *time.Time) ([]domain.EmergencyBlock, error) {
	return c.blocks, c.blocksErr
}

type countingMetrics struct {
	mu        sync.Mutex
	created   int
	conflicts int
}

func (m *countingMetrics) IncBookingCreated(bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created++
}

func (m *countingMetrics) IncBookingConflict() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.conflicts++
}

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }
