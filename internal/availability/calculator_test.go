package availability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/ptr"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// 2030-06-03 is a Monday
var monday = time.Date(2030, 6, 3, 0, 0, 0, 0, time.UTC)

func interval(open, close string) domain.WorkingInterval {
	return domain.WorkingInterval{Open: types.TimeString(open), Close: types.TimeString(close)}
}

func slot(start, end string) domain.TimeSlot {
	return domain.TimeSlot{Start: types.TimeString(start), End: types.TimeString(end)}
}

func booking(start string, duration int, status domain.BookingStatus, staffID *int64) *domain.Booking {
	return &domain.Booking{
		Date:            monday,
		StartTime:       types.TimeString(start),
		DurationMinutes: duration,
		Status:          status,
		StaffID:         staffID,
	}
}

func baseInput() Input {
	return Input{
		Date:            monday,
		Now:             monday.AddDate(0, 0, -1),
		DurationMinutes: 60,
		OpenIntervals:   []domain.WorkingInterval{interval("09:00", "12:00")},
	}
}

func TestComputeSlots_OpenMorningNoBookings(t *testing.T) {
	got := ComputeSlots(baseInput())

	assert.Equal(t, []domain.TimeSlot{
		slot("09:00", "10:00"),
		slot("10:00", "11:00"),
		slot("11:00", "12:00"),
	}, got)
}

func TestComputeSlots_ConfirmedBookingRemovesSlot(t *testing.T) {
	in := baseInput()
	in.Bookings = []*domain.Booking{booking("10:00", 60, domain.StatusConfirmed, nil)}

	assert.Equal(t, []domain.TimeSlot{
		slot("09:00", "10:00"),
		slot("11:00", "12:00"),
	}, ComputeSlots(in))
}

func TestComputeSlots_InactiveBookingsDoNotBlock(t *testing.T) {
	in := baseInput()
	in.Bookings = []*domain.Booking{
		booking("09:00", 60, domain.StatusCancelled, nil),
		booking("10:00", 60, domain.StatusCompleted, nil),
	}

	assert.Len(t, ComputeSlots(in), 3)
}

func TestComputeSlots_PartialOverlapRemovesBothNeighbours(t *testing.T) {
	in := baseInput()
	in.Bookings = []*domain.Booking{booking("09:30", 60, domain.StatusPending, nil)}

	assert.Equal(t, []domain.TimeSlot{slot("11:00", "12:00")}, ComputeSlots(in))
}

func TestComputeSlots_TouchingBookingIsNotOverlap(t *testing.T) {
	in := baseInput()
	in.OpenIntervals = []domain.WorkingInterval{interval("10:00", "12:00")}
	in.Bookings = []*domain.Booking{booking("09:00", 60, domain.StatusConfirmed, nil)}

	assert.Equal(t, []domain.TimeSlot{
		slot("10:00", "11:00"),
		slot("11:00", "12:00"),
	}, ComputeSlots(in))
}

func TestComputeSlots_OtherResourceDoesNotBlock(t *testing.T) {
	in := baseInput()
	in.StaffID = ptr.Ptr(int64(7))
	in.Bookings = []*domain.Booking{
		booking("09:00", 60, domain.StatusConfirmed, nil),
		booking("10:00", 60, domain.StatusConfirmed, ptr.Ptr(int64(8))),
		booking("11:00", 60, domain.StatusConfirmed, ptr.Ptr(int64(7))),
	}

	assert.Equal(t, []domain.TimeSlot{
		slot("09:00", "10:00"),
		slot("10:00", "11:00"),
	}, ComputeSlots(in))
}

func TestComputeSlots_ClosedDay(t *testing.T) {
	in := baseInput()
	in.OpenIntervals = nil

	got := ComputeSlots(in)
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestComputeSlots_EmergencyBlockCoversDate(t *testing.T) {
	in := baseInput()
	in.Blocks = []domain.EmergencyBlock{{
		StartDate: monday.AddDate(0, 0, -2),
		EndDate:   monday,
		Reason:    "flood",
	}}

	assert.Empty(t, ComputeSlots(in))
}

func TestComputeSlots_EmergencyBlockOnOtherDates(t *testing.T) {
	in := baseInput()
	in.Blocks = []domain.EmergencyBlock{{
		StartDate: monday.AddDate(0, 0, 1),
		EndDate:   monday.AddDate(0, 0, 3),
	}}

	assert.Len(t, ComputeSlots(in), 3)
}

func TestComputeSlots_TrailingRemainderDropped(t *testing.T) {
	in := baseInput()
	in.DurationMinutes = 50

	assert.Equal(t, []domain.TimeSlot{
		slot("09:00", "09:50"),
		slot("09:50", "10:40"),
		slot("10:40", "11:30"),
	}, ComputeSlots(in))
}

func TestComputeSlots_DurationLongerThanInterval(t *testing.T) {
	in := baseInput()
	in.OpenIntervals = []domain.WorkingInterval{interval("09:00", "10:00"), interval("13:00", "16:00")}
	in.DurationMinutes = 90

	assert.Equal(t, []domain.TimeSlot{
		slot("13:00", "14:30"),
		slot("14:30", "16:00"),
	}, ComputeSlots(in))
}

func TestComputeSlots_MultipleIntervalsAreOrdered(t *testing.T) {
	in := baseInput()
	in.OpenIntervals = []domain.WorkingInterval{interval("14:00", "16:00"), interval("09:00", "11:00")}

	assert.Equal(t, []domain.TimeSlot{
		slot("09:00", "10:00"),
		slot("10:00", "11:00"),
		slot("14:00", "15:00"),
		slot("15:00", "16:00"),
	}, ComputeSlots(in))
}

func TestComputeSlots_TodayDropsStartedSlots(t *testing.T) {
	in := baseInput()
	in.Now = monday.Add(10*time.Hour + 15*time.Minute)

	assert.Equal(t, []domain.TimeSlot{slot("11:00", "12:00")}, ComputeSlots(in))
}

func TestComputeSlots_TodayKeepsSlotStartingNow(t *testing.T) {
	in := baseInput()
	in.Now = monday.Add(10 * time.Hour)

	assert.Equal(t, []domain.TimeSlot{
		slot("10:00", "11:00"),
		slot("11:00", "12:00"),
	}, ComputeSlots(in))
}

func TestComputeSlots_PastDateIsEmpty(t *testing.T) {
	in := baseInput()
	in.Now = monday.AddDate(0, 0, 1)

	assert.Empty(t, ComputeSlots(in))
}

func TestContains(t *testing.T) {
	slots := ComputeSlots(baseInput())

	assert.True(t, Contains(slots, "10:00"))
	assert.False(t, Contains(slots, "10:30"))
	assert.False(t, Contains(nil, "10:00"))
}

func genInput(t *rapid.T) Input {
	duration := rapid.SampledFrom([]int{15, 30, 45, 60, 90}).Draw(t, "duration")

	intervals := make([]domain.WorkingInterval, 0)
	for i, n := 0, rapid.IntRange(0, 3).Draw(t, "intervals"); i < n; i++ {
		open := rapid.IntRange(0, 20).Draw(t, "openHour") * 60
		length := rapid.IntRange(1, 8).Draw(t, "lengthHours") * 60
		if open+length > types.MinutesPerDay {
			length = types.MinutesPerDay - open
		}
		o, _ := types.FromMinutes(open)
		c, _ := types.FromMinutes(open + length)
		intervals = append(intervals, domain.WorkingInterval{Open: o, Close: c})
	}

	bookings := make([]*domain.Booking, 0)
	for i, n := 0, rapid.IntRange(0, 6).Draw(t, "bookings"); i < n; i++ {
		start, _ := types.FromMinutes(rapid.IntRange(0, 22*60).Draw(t, "bookingStart"))
		status := rapid.SampledFrom([]domain.BookingStatus{
			domain.StatusPending, domain.StatusConfirmed, domain.StatusCancelled, domain.StatusCompleted,
		}).Draw(t, "status")
		bookings = append(bookings, booking(start.String(), rapid.IntRange(5, 120).Draw(t, "bookingDuration"), status, nil))
	}

	return Input{
		Date:            monday,
		Now:             monday.AddDate(0, 0, -rapid.IntRange(0, 3).Draw(t, "daysBefore")),
		DurationMinutes: duration,
		OpenIntervals:   intervals,
		Bookings:        bookings,
	}
}

func TestComputeSlots_Properties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		in := genInput(t)
		got := ComputeSlots(in)

		// idempotence
		assert.Equal(t, got, ComputeSlots(in))

		for i, s := range got {
			start, err := s.Start.Minutes()
			require.NoError(t, err)
			end, err := s.End.Minutes()
			require.NoError(t, err)
			assert.Equal(t, in.DurationMinutes, end-start)

			if i > 0 {
				assert.True(t, got[i-1].Start.IsBefore(s.Start), "slots must be strictly ordered")
			}

			for _, b := range in.Bookings {
				if !b.IsActive() {
					continue
				}
				bEnd, err := b.EndTime()
				if err != nil {
					continue
				}
				assert.False(t, s.Overlaps(domain.TimeSlot{Start: b.StartTime, End: bEnd}),
					"slot %v overlaps active booking at %s", s, b.StartTime)
			}
		}
	})
}

func TestComputeSlots_BlockedOrClosedIsAlwaysEmpty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		in := genInput(t)
		if rapid.Bool().Draw(t, "closed") {
			in.OpenIntervals = nil
		} else {
			from := rapid.IntRange(0, 5).Draw(t, "blockFrom")
			to := rapid.IntRange(0, 5).Draw(t, "blockTo")
			in.Blocks = []domain.EmergencyBlock{{
				StartDate: monday.AddDate(0, 0, -from),
				EndDate:   monday.AddDate(0, 0, to),
			}}
		}

		assert.Empty(t, ComputeSlots(in))
	})
}
