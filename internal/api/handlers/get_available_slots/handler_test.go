package get_available_slots

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	getAvailableSlots "github.com/m04kA/SMC-AppointmentService/internal/usecase/get_available_slots"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
)

type mockUseCase struct {
	mock.Mock
}

func (m *mockUseCase) Execute(ctx context.Context, req *getAvailableSlots.Request) (*getAvailableSlots.Response, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*getAvailableSlots.Response)
	return resp, args.Error(1)
}

func serve(t *testing.T, uc GetAvailableSlotsUseCase, target string) *httptest.ResponseRecorder {
	t.Helper()
	log, err := logger.NewWithWriter(io.Discard, "error")
	require.NoError(t, err)

	r := mux.NewRouter()
	r.HandleFunc("/api/v1/businesses/{businessId}/services/{serviceId}/available-slots", NewHandler(uc, log).Handle).
		Methods(http.MethodGet)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHandler_Slots(t *testing.T) {
	uc := &mockUseCase{}
	date := time.Date(2030, 6, 3, 0, 0, 0, 0, time.UTC)
	uc.On("Execute", mock.Anything, mock.MatchedBy(func(req *getAvailableSlots.Request) bool {
		return req.BusinessID == 1 && req.ServiceID == 10 && req.StaffID != nil && *req.StaffID == 5 && req.Date.Equal(date)
	})).Return(&getAvailableSlots.Response{
		Date:            date,
		BusinessID:      1,
		ServiceID:       10,
		DurationMinutes: 60,
		Slots: []domain.TimeSlot{
			{Start: "09:00", End: "10:00"},
			{Start: "10:00", End: "11:00"},
		},
	}, nil)

	rec := serve(t, uc, "/api/v1/businesses/1/services/10/available-slots?date=2030-06-03&staffId=5")

	require.Equal(t, http.StatusOK, rec.Code)
	var body AvailableSlotsResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "2030-06-03", body.Date)
	assert.Equal(t, []AvailableSlot{{StartTime: "09:00", EndTime: "10:00"}, {StartTime: "10:00", EndTime: "11:00"}}, body.Slots)
	uc.AssertExpectations(t)
}

func TestHandler_EmptySlotsEncodeAsArray(t *testing.T) {
	uc := &mockUseCase{}
	uc.On("Execute", mock.Anything, mock.Anything).Return(&getAvailableSlots.Response{Slots: nil}, nil)

	rec := serve(t, uc, "/api/v1/businesses/1/services/10/available-slots?date=2030-06-03")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"slots":[]`)
}

func TestHandler_Errors(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		err        error
		wantStatus int
	}{
		{name: "missing date", target: "/api/v1/businesses/1/services/10/available-slots", wantStatus: http.StatusBadRequest},
		{name: "bad date", target: "/api/v1/businesses/1/services/10/available-slots?date=tomorrow", wantStatus: http.StatusBadRequest},
		{name: "bad staff", target: "/api/v1/businesses/1/services/10/available-slots?date=2030-06-03&staffId=x", wantStatus: http.StatusBadRequest},
		{name: "bad business", target: "/api/v1/businesses/0/services/10/available-slots?date=2030-06-03", wantStatus: http.StatusBadRequest},
		{
			name:       "unknown business",
			target:     "/api/v1/businesses/1/services/10/available-slots?date=2030-06-03",
			err:        getAvailableSlots.ErrBusinessNotFound,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "unknown service",
			target:     "/api/v1/businesses/1/services/10/available-slots?date=2030-06-03",
			err:        getAvailableSlots.ErrServiceNotFound,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "staff cannot perform",
			target:     "/api/v1/businesses/1/services/10/available-slots?date=2030-06-03&staffId=5",
			err:        getAvailableSlots.ErrStaffCannotPerform,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &mockUseCase{}
			if tt.err != nil {
				uc.On("Execute", mock.Anything, mock.Anything).Return(nil, tt.err)
			}

			rec := serve(t, uc, tt.target)

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}
