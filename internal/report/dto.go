package report

import "github.com/frahmantamala/attendance-tracker/internal/core/calendar"

type SummaryResponse struct {
	StartDate calendar.Date `json:"start_date"`
	EndDate   calendar.Date `json:"end_date"`
	Summary   *Summary      `json:"summary"`
}

type TeamSummaryResponse struct {
	StartDate calendar.Date `json:"start_date"`
	EndDate   calendar.Date `json:"end_date"`
	*TeamSummary
}

type RowsResponse struct {
	StartDate calendar.Date `json:"start_date"`
	EndDate   calendar.Date `json:"end_date"`
	Count     int           `json:"count"`
	Records   []*Row        `json:"records"`
}

// DataResponse wraps chart series the way the dashboard widgets consume them.
type DataResponse struct {
	Data interface{} `json:"data"`
}
