package attendance

import "github.com/frahmantamala/attendance-tracker/internal/core/calendar"

type CheckResponse struct {
	Message    string  `json:"message"`
	Attendance *Record `json:"attendance"`
}

// TodayResponse carries a nil attendance when the user has not checked in today.
type TodayResponse struct {
	Date       calendar.Date `json:"date"`
	Status     Status        `json:"status"`
	Attendance *Record       `json:"attendance"`
}

type HistoryResponse struct {
	StartDate calendar.Date `json:"start_date"`
	EndDate   calendar.Date `json:"end_date"`
	Records   []*Record     `json:"records"`
}
