package list_bookings

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/service/bookings/models"
	"github.com/m04kA/SMC-AppointmentService/pkg/ptr"
)

// ToServiceRequest формирует запрос к сервису из query параметров
// status можно передать несколько раз или через запятую
func ToServiceRequest(actor domain.Actor, query url.Values) (*models.ListBookingsRequest, error) {
	req := &models.ListBookingsRequest{Actor: actor}

	if businessIDStr := query.Get("businessId"); businessIDStr != "" {
		businessID, err := strconv.ParseInt(businessIDStr, 10, 64)
		if err != nil {
			return nil, err
		}
		req.BusinessID = ptr.Ptr(businessID)
	}

	for _, raw := range query["status"] {
		for _, status := range strings.Split(raw, ",") {
			if status = strings.TrimSpace(status); status != "" {
				req.Statuses = append(req.Statuses, status)
			}
		}
	}

	var err error
	if req.DateFrom, err = parseDate(query.Get("dateFrom")); err != nil {
		return nil, err
	}
	if req.DateTo, err = parseDate(query.Get("dateTo")); err != nil {
		return nil, err
	}

	return req, nil
}

func parseDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	date, err := time.Parse(domain.DateFormat, value)
	if err != nil {
		return nil, err
	}
	return &date, nil
}
