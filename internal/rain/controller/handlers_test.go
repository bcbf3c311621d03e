package controller

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/tkasparek/tkasparek/internal/apperr"
	"github.com/tkasparek/tkasparek/internal/pagination"
	"github.com/tkasparek/tkasparek/internal/rain/types"
)

type mockService struct {
	yesterday types.Day

	daily     types.Page[types.DailyTotal]
	hourly    types.Page[types.HourlyTotal]
	histogram types.Histogram
	outliers  types.Outliers
	detail    types.StationDetail
	stations  types.Page[types.StationListItem]
	err       error

	gotDay    types.Day
	gotPage   pagination.Pagination
	gotID     int64
	gotFilter string
	called    bool
}

func (m *mockService) Yesterday() types.Day { return m.yesterday }

func (m *mockService) Daily(_ context.Context, day types.Day, page pagination.Pagination) (types.Page[types.DailyTotal], error) {
	m.called, m.gotDay, m.gotPage = true, day, page
	return m.daily, m.err
}

func (m *mockService) Hourly(_ context.Context, day types.Day, page pagination.Pagination) (types.Page[types.HourlyTotal], error) {
	m.called, m.gotDay, m.gotPage = true, day, page
	return m.hourly, m.err
}

func (m *mockService) Histogram(_ context.Context, day types.Day) (types.Histogram, error) {
	m.called, m.gotDay = true, day
	return m.histogram, m.err
}

func (m *mockService) Outliers(context.Context) (types.Outliers, error) {
	m.called = true
	return m.outliers, m.err
}

func (m *mockService) Station(_ context.Context, id int64) (types.StationDetail, error) {
	m.called, m.gotID = true, id
	return m.detail, m.err
}

func (m *mockService) Stations(_ context.Context, filter string, page pagination.Pagination) (types.Page[types.StationListItem], error) {
	m.called, m.gotFilter, m.gotPage = true, filter, page
	return m.stations, m.err
}

func mustDay(t *testing.T, s string) types.Day {
	t.Helper()
	d, err := types.ParseDay(s)
	if err != nil {
		t.Fatalf("ParseDay(%q): %v", s, err)
	}
	return d
}

func serve(t *testing.T, svc RainService, target string) *httptest.ResponseRecorder {
	t.Helper()
	r := chi.NewRouter()
	NewRainController(svc, 100).RegisterRoutes(r)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("body is not valid JSON: %v", err)
	}
	return body
}

func Test_handleHistogram(t *testing.T) {
	t.Run("defaults to yesterday", func(t *testing.T) {
		svc := &mockService{yesterday: mustDay(t, "2024-05-08"), histogram: types.Histogram{Under10: 2}}
		rec := serve(t, svc, "/histogram")

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d; want 200", rec.Code)
		}
		if svc.gotDay.String() != "2024-05-08" {
			t.Errorf("day = %s; want yesterday", svc.gotDay)
		}
		want := `{"data":{"0":0,"10":2,"25":0,"50":0,"100":0,"1000":0}}`
		if got := strings.TrimSpace(rec.Body.String()); got != want {
			t.Errorf("body = %s; want %s", got, want)
		}
	})

	t.Run("explicit day", func(t *testing.T) {
		svc := &mockService{}
		rec := serve(t, svc, "/histogram/2024-05-01")
		if rec.Code != http.StatusOK || svc.gotDay.String() != "2024-05-01" {
			t.Errorf("status = %d, day = %s", rec.Code, svc.gotDay)
		}
	})

	t.Run("invalid day is 400", func(t *testing.T) {
		svc := &mockService{}
		rec := serve(t, svc, "/histogram/2024-13-40")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d; want 400", rec.Code)
		}
		if svc.called {
			t.Error("service called for an invalid day")
		}
	})

	t.Run("timeout is 503", func(t *testing.T) {
		svc := &mockService{err: apperr.Unavailable(context.DeadlineExceeded)}
		rec := serve(t, svc, "/histogram/2024-05-01")
		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("status = %d; want 503", rec.Code)
		}
	})
}

func Test_handleDaily(t *testing.T) {
	t.Run("returns page envelope", func(t *testing.T) {
		svc := &mockService{daily: types.NewPage(
			[]types.DailyTotal{{ID: 5, Name: "Opravna", Rain: types.MM("30.5")}},
			pagination.Meta{TotalItems: 11, Page: 2, PageSize: 5},
		)}
		rec := serve(t, svc, "/rain/daily/2024-05-01?page=2&page_size=5")

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d; want 200", rec.Code)
		}
		if svc.gotPage != (pagination.Pagination{Limit: 5, Offset: 5}) {
			t.Errorf("page = %+v", svc.gotPage)
		}
		want := `{"data":[{"id":5,"name":"Opravna","rain":30.5}],"meta":{"total_items":11,"page":2,"page_size":5}}`
		if got := strings.TrimSpace(rec.Body.String()); got != want {
			t.Errorf("body = %s; want %s", got, want)
		}
	})

	t.Run("defaults", func(t *testing.T) {
		svc := &mockService{yesterday: mustDay(t, "2024-05-08")}
		rec := serve(t, svc, "/rain/daily")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d; want 200", rec.Code)
		}
		if svc.gotDay.String() != "2024-05-08" || svc.gotPage != (pagination.Pagination{Limit: 10}) {
			t.Errorf("day = %s, page = %+v", svc.gotDay, svc.gotPage)
		}
	})

	t.Run("bad pagination is 400", func(t *testing.T) {
		for _, target := range []string{
			"/rain/daily?page=abc",
			"/rain/daily/2024-05-01?page_size=x",
			"/rain/daily?page_size=1000",
		} {
			svc := &mockService{}
			rec := serve(t, svc, target)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("%s: status = %d; want 400", target, rec.Code)
			}
			if svc.called {
				t.Errorf("%s: service called", target)
			}
		}
	})

	t.Run("query failure is 500 with message", func(t *testing.T) {
		svc := &mockService{err: apperr.QueryFailure(errors.New("daily_totals: relation \"rain_data\" does not exist"))}
		rec := serve(t, svc, "/rain/daily/2024-05-01")
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("status = %d; want 500", rec.Code)
		}
		if got := decode(t, rec)["error"]; got != `daily_totals: relation "rain_data" does not exist` {
			t.Errorf("error = %v", got)
		}
	})
}

func Test_handleHourly(t *testing.T) {
	svc := &mockService{hourly: types.NewPage(
		[]types.HourlyTotal{{ID: 3, Name: "Charlie", Rain: types.MM("10"), Hour: 5}},
		pagination.Meta{TotalItems: 1, Page: 1, PageSize: 10},
	)}
	rec := serve(t, svc, "/rain/hourly/2024-05-01")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", rec.Code)
	}
	want := `{"data":[{"id":3,"name":"Charlie","rain":10,"hour":5}],"meta":{"total_items":1,"page":1,"page_size":10}}`
	if got := strings.TrimSpace(rec.Body.String()); got != want {
		t.Errorf("body = %s; want %s", got, want)
	}

	rec = serve(t, &mockService{}, "/rain/hourly/yesterday")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid day status = %d; want 400", rec.Code)
	}
}

func Test_handleOutliers(t *testing.T) {
	svc := &mockService{outliers: types.Outliers{
		DailyMaximums:  []types.DailyRecord{{ID: 1, Name: "Alpha", Rain: types.MM("50.2"), Day: mustDay(t, "2024-05-01")}},
		HourlyMaximums: []types.HourlyRecord{},
		TotalMaximums:  []types.TotalRain{},
		TotalMinimums:  []types.TotalRain{},
	}}
	rec := serve(t, svc, "/outliers")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", rec.Code)
	}
	body := decode(t, rec)
	for _, key := range []string{"daily_maximums", "hourly_maximums", "total_maximums", "total_minimums"} {
		if _, ok := body[key]; !ok {
			t.Errorf("missing %s", key)
		}
	}
	first := body["daily_maximums"].([]any)[0].(map[string]any)
	if first["day"] != "2024-05-01" || first["rain"] != 50.2 {
		t.Errorf("daily_maximums[0] = %v", first)
	}
}

func Test_handleStation(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		svc := &mockService{detail: types.StationDetail{Station: types.Station{ID: 7, Name: "Alpha"}}}
		rec := serve(t, svc, "/stations/7")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d; want 200", rec.Code)
		}
		if svc.gotID != 7 {
			t.Errorf("id = %d; want 7", svc.gotID)
		}
	})

	t.Run("unknown id is 404", func(t *testing.T) {
		svc := &mockService{err: apperr.NotFound("Station not found")}
		rec := serve(t, svc, "/stations/999999")
		if rec.Code != http.StatusNotFound {
			t.Fatalf("status = %d; want 404", rec.Code)
		}
		if got := strings.TrimSpace(rec.Body.String()); got != `{"error":"Station not found"}` {
			t.Errorf("body = %s", got)
		}
	})

	t.Run("non numeric id is 400", func(t *testing.T) {
		for _, id := range []string{"abc", "0", "-3", "1.5"} {
			svc := &mockService{}
			rec := serve(t, svc, "/stations/"+id)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("id %q: status = %d; want 400", id, rec.Code)
			}
			if got := decode(t, rec)["error"]; got != "station_id must be number" {
				t.Errorf("id %q: error = %v", id, got)
			}
			if svc.called {
				t.Errorf("id %q: service called", id)
			}
		}
	})
}

func Test_handleStations(t *testing.T) {
	t.Run("filter and pagination", func(t *testing.T) {
		svc := &mockService{stations: types.NewPage([]types.StationListItem{}, pagination.Meta{Page: 1, PageSize: 20})}
		rec := serve(t, svc, "/stations?filter%5Bname%5D=pra&page_size=20")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d; want 200", rec.Code)
		}
		if svc.gotFilter != "pra" {
			t.Errorf("filter = %q; want pra", svc.gotFilter)
		}
		if svc.gotPage.Limit != 20 {
			t.Errorf("page = %+v", svc.gotPage)
		}
		if got := strings.TrimSpace(rec.Body.String()); !strings.HasPrefix(got, `{"data":[],`) {
			t.Errorf("body = %s", got)
		}
	})

	t.Run("absent filter", func(t *testing.T) {
		svc := &mockService{}
		serve(t, svc, "/stations")
		if svc.gotFilter != "" {
			t.Errorf("filter = %q; want empty", svc.gotFilter)
		}
	})

	t.Run("bad page is 400", func(t *testing.T) {
		rec := serve(t, &mockService{}, "/stations?page=first")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d; want 400", rec.Code)
		}
		if got := decode(t, rec)["error"]; got != "page has to be a number" {
			t.Errorf("error = %v", got)
		}
	})
}
