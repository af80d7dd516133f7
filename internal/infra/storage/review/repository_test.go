package review

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

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

func TestRepository_Create(t *testing.T) {
	review := func() *domain.Review {
		return &domain.Review{BookingID: 42, BusinessID: 1, ClientID: 7, Rating: 5}
	}
	const insert = `INSERT INTO reviews \(booking_id,business_id,client_id,rating,comment\) VALUES \(\$1,\$2,\$3,\$4,\$5\)`

	t.Run("stored", func(t *testing.T) {
		repo, mock := newMockRepository(t)
		mock.ExpectQuery(insert).
			WithArgs(42, 1, 7, 5, nil).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(3), time.Now()))

		created, err := repo.Create(context.Background(), review())

		require.NoError(t, err)
		assert.Equal(t, int64(3), created.ID)
	})

	t.Run("second review for booking", func(t *testing.T) {
		repo, mock := newMockRepository(t)
		mock.ExpectQuery(insert).WillReturnError(&pq.Error{Code: "23505", Constraint: "reviews_booking_id_key"})

		_, err := repo.Create(context.Background(), review())

		assert.ErrorIs(t, err, ErrReviewExists)
	})
}

func TestRepository_ListByBusiness(t *testing.T) {
	repo, mock := newMockRepository(t)
	comment := "great cut"

	mock.ExpectQuery(`FROM reviews WHERE business_id = \$1 ORDER BY created_at DESC, id DESC`).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "booking_id", "business_id", "client_id", "rating", "comment", "created_at"}).
			AddRow(int64(2), int64(43), int64(1), int64(8), int64(4), nil, time.Now()).
			AddRow(int64(1), int64(42), int64(1), int64(7), int64(5), comment, time.Now()))

	reviews, err := repo.ListByBusiness(context.Background(), 1)

	require.NoError(t, err)
	require.Len(t, reviews, 2)
	assert.Nil(t, reviews[0].Comment)
	require.NotNil(t, reviews[1].Comment)
	assert.Equal(t, comment, *reviews[1].Comment)
}
