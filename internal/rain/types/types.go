package types

import "github.com/tkasparek/tkasparek/internal/pagination"

// DailyTotal is one station's daily rain on the requested day.
type DailyTotal struct {
	ID   int64       `json:"id"`
	Name string      `json:"name"`
	Rain Millimetres `json:"rain"`
}

type HourlyTotal struct {
	ID   int64       `json:"id"`
	Name string      `json:"name"`
	Rain Millimetres `json:"rain"`
	Hour int16       `json:"hour"`
}

// DailyRecord is a row of the daily_records view.
type DailyRecord struct {
	ID   int64       `json:"id"`
	Name string      `json:"name"`
	Rain Millimetres `json:"rain"`
	Day  Day         `json:"day"`
}

// HourlyRecord is a row of the hourly_records view.
type HourlyRecord struct {
	ID   int64       `json:"id"`
	Name string      `json:"name"`
	Rain Millimetres `json:"rain"`
	Day  Day         `json:"day"`
	Hour int16       `json:"hour"`
}

// TotalRain is a row of the total_rain view.
type TotalRain struct {
	ID   int64       `json:"id"`
	Name string      `json:"name"`
	Rain Millimetres `json:"rain"`
}

type Outliers struct {
	DailyMaximums  []DailyRecord  `json:"daily_maximums"`
	HourlyMaximums []HourlyRecord `json:"hourly_maximums"`
	TotalMaximums  []TotalRain    `json:"total_maximums"`
	TotalMinimums  []TotalRain    `json:"total_minimums"`
}

type Station struct {
	ID                int64   `json:"id"`
	Height            Metres  `json:"height"`
	Name              string  `json:"name"`
	ChmiBranch        *string `json:"chmi_branch"`
	Basin             *string `json:"basin"`
	PartialBasin      *string `json:"partial_basin"`
	LocalMunicipality *string `json:"local_municipality"`
	RegionName        *string `json:"region_name"`
}

type StationDay struct {
	Day  Day         `json:"day"`
	Rain Millimetres `json:"rain"`
}

type StationHour struct {
	Day  Day         `json:"day"`
	Hour int16       `json:"hour"`
	Rain Millimetres `json:"rain"`
}

// StationDetail flattens the station attributes next to its rain lists.
type StationDetail struct {
	Station
	TopDays   []StationDay  `json:"top_days"`
	TopHours  []StationHour `json:"top_hours"`
	LastMonth []StationDay  `json:"last_month"`
	LastWeek  []StationHour `json:"last_week"`
}

type StationListItem struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	Height     Metres  `json:"height"`
	RegionName string  `json:"region_name"`
	Basin      *string `json:"basin"`
}

// Page is the {data, meta} envelope of paginated endpoints.
type Page[T any] struct {
	Data []T             `json:"data"`
	Meta pagination.Meta `json:"meta"`
}

func NewPage[T any](data []T, meta pagination.Meta) Page[T] {
	if data == nil {
		data = []T{}
	}
	return Page[T]{Data: data, Meta: meta}
}
