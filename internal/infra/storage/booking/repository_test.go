package booking

import (
	"context"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/ptr"
)

var bookingDate = time.Date(2030, 6, 3, 0, 0, 0, 0, time.UTC)

func newMockRepository(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return NewRepository(db), mock
}

func bookingRow(status domain.BookingStatus) []driver.Value {
	now := time.Date(2030, 6, 1, 12, 0, 0, 0, time.UTC)
	return []driver.Value{
		int64(42), int64(1), int64(10), nil, int64(7), bookingDate, "10:00", int64(45),
		"Haircut", int64(2500), string(status), nil, nil, nil, now, now,
	}
}

func TestRepository_GetActiveForResource(t *testing.T) {
	tests := []struct {
		name       string
		staffID    *int64
		resourceID int64
	}{
		{name: "business wide", resourceID: domain.BusinessWideResource},
		{name: "staff member", staffID: ptr.Ptr(int64(5)), resourceID: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newMockRepository(t)
			mock.ExpectQuery(
				`FROM bookings WHERE booking_date = \$1 AND business_id = \$2 AND resource_id = \$3 ` +
					`AND status IN \(\$4,\$5\) ORDER BY start_time ASC`,
			).
				WithArgs("2030-06-03", 1, tt.resourceID, "pending", "confirmed").
				WillReturnRows(sqlmock.NewRows(bookingColumns).AddRow(bookingRow(domain.StatusPending)...))

			bookings, err := repo.GetActiveForResource(context.Background(), 1, tt.staffID, bookingDate)

			require.NoError(t, err)
			require.Len(t, bookings, 1)
			assert.Equal(t, "10:00", bookings[0].StartTime.String())
			assert.Nil(t, bookings[0].StaffID)
		})
	}
}

func TestRepository_List_Filter(t *testing.T) {
	repo, mock := newMockRepository(t)
	from := time.Date(2030, 6, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2030, 6, 30, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(
		`FROM bookings WHERE business_id = \$1 AND booking_date >= \$2 AND booking_date <= \$3 ` +
			`AND status IN \(\$4\) ORDER BY booking_date DESC, start_time DESC, id DESC`,
	).
		WithArgs(1, "2030-06-01", "2030-06-30", "confirmed").
		WillReturnRows(sqlmock.NewRows(bookingColumns))

	bookings, err := repo.List(context.Background(), domain.BookingFilter{
		BusinessID: ptr.Ptr(int64(1)),
		DateFrom:   &from,
		DateTo:     &to,
		Statuses:   []domain.BookingStatus{domain.StatusConfirmed},
	})

	require.NoError(t, err)
	assert.NotNil(t, bookings)
	assert.Empty(t, bookings)
}

func TestRepository_Create_ConstraintMapping(t *testing.T) {
	tests := []struct {
		name    string
		dbErr   error
		wantErr error
	}{
		{name: "overlap", dbErr: &pq.Error{Code: "23P01"}, wantErr: ErrSlotTaken},
		{
			name:    "idempotency key",
			dbErr:   &pq.Error{Code: "23505", Constraint: constraintIdempotency},
			wantErr: ErrDuplicateIdempotencyKey,
		},
		{name: "connection", dbErr: errors.New("connection reset by peer"), wantErr: ErrExecQuery},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newMockRepository(t)
			mock.ExpectQuery(`INSERT INTO bookings \(business_id,service_id,staff_id,`).WillReturnError(tt.dbErr)

			_, err := repo.Create(context.Background(), &domain.Booking{
				BusinessID:      1,
				ServiceID:       10,
				ClientID:        7,
				Date:            bookingDate,
				StartTime:       "10:00",
				DurationMinutes: 45,
				Status:          domain.StatusPending,
			})

			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRepository_CompareAndSetStatus(t *testing.T) {
	at := time.Date(2030, 6, 2, 9, 0, 0, 0, time.UTC)
	const update = `UPDATE bookings SET status = \$1, updated_at = \$2, cancelled_at = \$3 ` +
		`WHERE id = \$4 AND status = \$5 RETURNING id, business_id`

	t.Run("updated", func(t *testing.T) {
		repo, mock := newMockRepository(t)
		mock.ExpectQuery(update).
			WithArgs("cancelled", at, at, 42, "pending").
			WillReturnRows(sqlmock.NewRows(bookingColumns).AddRow(bookingRow(domain.StatusCancelled)...))

		booking, err := repo.CompareAndSetStatus(context.Background(), 42, domain.StatusPending, domain.StatusCancelled, at)

		require.NoError(t, err)
		assert.Equal(t, domain.StatusCancelled, booking.Status)
	})

	t.Run("status changed", func(t *testing.T) {
		repo, mock := newMockRepository(t)
		mock.ExpectQuery(update).WillReturnRows(sqlmock.NewRows(bookingColumns))
		mock.ExpectQuery(`FROM bookings WHERE id = \$1`).
			WithArgs(42).
			WillReturnRows(sqlmock.NewRows(bookingColumns).AddRow(bookingRow(domain.StatusConfirmed)...))

		_, err := repo.CompareAndSetStatus(context.Background(), 42, domain.StatusPending, domain.StatusCancelled, at)

		assert.ErrorIs(t, err, ErrStatusChanged)
	})

	t.Run("not found", func(t *testing.T) {
		repo, mock := newMockRepository(t)
		mock.ExpectQuery(update).WillReturnRows(sqlmock.NewRows(bookingColumns))
		mock.ExpectQuery(`FROM bookings WHERE id = \$1`).
			WithArgs(42).
			WillReturnRows(sqlmock.NewRows(bookingColumns))

		_, err := repo.CompareAndSetStatus(context.Background(), 42, domain.StatusPending, domain.StatusCancelled, at)

		assert.ErrorIs(t, err, ErrBookingNotFound)
	})

	t.Run("completion stamps completed_at", func(t *testing.T) {
		repo, mock := newMockRepository(t)
		mock.ExpectQuery(`UPDATE bookings SET status = \$1, updated_at = \$2, completed_at = \$3 WHERE`).
			WillReturnRows(sqlmock.NewRows(bookingColumns).AddRow(bookingRow(domain.StatusCompleted)...))

		_, err := repo.CompareAndSetStatus(context.Background(), 42, domain.StatusConfirmed, domain.StatusCompleted, at)

		require.NoError(t, err)
	})
}

func TestRepository_GetByIDForUpdate(t *testing.T) {
	t.Run("outside transaction", func(t *testing.T) {
		repo, _ := newMockRepository(t)

		_, err := repo.GetByIDForUpdate(context.Background(), 42)
		assert.ErrorIs(t, err, ErrTransactionRequired)
	})

	t.Run("locks the row", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectQuery(`FROM bookings WHERE id = \$1 FOR UPDATE`).
			WithArgs(42).
			WillReturnRows(sqlmock.NewRows(bookingColumns).AddRow(bookingRow(domain.StatusPending)...))
		mock.ExpectRollback()

		tx, err := db.Begin()
		require.NoError(t, err)
		ctx := dbmetrics.WithTx(context.Background(), tx)

		booking, err := NewRepository(db).GetByIDForUpdate(ctx, 42)
		require.NoError(t, err)
		assert.Equal(t, int64(42), booking.ID)

		require.NoError(t, tx.Rollback())
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
