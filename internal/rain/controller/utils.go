package controller

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tkasparek/tkasparek/internal/apperr"
	"github.com/tkasparek/tkasparek/internal/rain/types"
)

// parseDay reads the optional {day} path parameter, defaulting to yesterday.
func (c *rainControllerImpl) parseDay(r *http.Request) (types.Day, error) {
	s := chi.URLParam(r, "day")
	if s == "" {
		return c.service.Yesterday(), nil
	}
	day, err := types.ParseDay(s)
	if err != nil {
		return types.Day{}, apperr.InvalidParameter("day must be a date in YYYY-MM-DD format")
	}
	return day, nil
}

func parseStationID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		return 0, apperr.InvalidParameter("station_id must be number")
	}
	return id, nil
}
