package controller

import (
	"net/http"

	"github.com/tkasparek/tkasparek/internal/pagination"
	"github.com/tkasparek/tkasparek/internal/utils"
)

func (c *rainControllerImpl) handleHistogram(w http.ResponseWriter, r *http.Request) {
	day, err := c.parseDay(r)
	if err != nil {
		utils.WriteAppError(w, r, err)
		return
	}
	histogram, err := c.service.Histogram(r.Context(), day)
	if err != nil {
		utils.WriteAppError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{"data": histogram})
}

func (c *rainControllerImpl) handleDaily(w http.ResponseWriter, r *http.Request) {
	day, err := c.parseDay(r)
	if err != nil {
		utils.WriteAppError(w, r, err)
		return
	}
	page, err := pagination.Parse(r.URL.Query(), c.maxPageSize)
	if err != nil {
		utils.WriteAppError(w, r, err)
		return
	}
	result, err := c.service.Daily(r.Context(), day, page)
	if err != nil {
		utils.WriteAppError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, result)
}

func (c *rainControllerImpl) handleHourly(w http.ResponseWriter, r *http.Request) {
	day, err := c.parseDay(r)
	if err != nil {
		utils.WriteAppError(w, r, err)
		return
	}
	page, err := pagination.Parse(r.URL.Query(), c.maxPageSize)
	if err != nil {
		utils.WriteAppError(w, r, err)
		return
	}
	result, err := c.service.Hourly(r.Context(), day, page)
	if err != nil {
		utils.WriteAppError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, result)
}

func (c *rainControllerImpl) handleOutliers(w http.ResponseWriter, r *http.Request) {
	outliers, err := c.service.Outliers(r.Context())
	if err != nil {
		utils.WriteAppError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, outliers)
}

func (c *rainControllerImpl) handleStation(w http.ResponseWriter, r *http.Request) {
	id, err := parseStationID(r)
	if err != nil {
		utils.WriteAppError(w, r, err)
		return
	}
	detail, err := c.service.Station(r.Context(), id)
	if err != nil {
		utils.WriteAppError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, detail)
}

func (c *rainControllerImpl) handleStations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := pagination.Parse(q, c.maxPageSize)
	if err != nil {
		utils.WriteAppError(w, r, err)
		return
	}
	result, err := c.service.Stations(r.Context(), q.Get("filter[name]"), page)
	if err != nil {
		utils.WriteAppError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, result)
}
