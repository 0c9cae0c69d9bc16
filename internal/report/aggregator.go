package report

import (
	"math"
	"sort"

	"github.com/frahmantamala/attendance-tracker/internal/attendance"
	"github.com/frahmantamala/attendance-tracker/internal/core/calendar"
)

// Summarize tallies persisted statuses. Days without a row are not counted as absent.
func Summarize(rows []*Row) Summary {
	var s Summary
	for _, r := range rows {
		s.TotalRecords++
		switch r.Status {
		case attendance.StatusPresent:
			s.Present++
		case attendance.StatusAbsent:
			s.Absent++
		case attendance.StatusLate:
			s.Late++
		case attendance.StatusHalfDay:
			s.HalfDay++
		}
		s.TotalHours += r.Hours()
	}
	s.TotalHours = attendance.RoundHours(s.TotalHours)
	return s
}

// HeadcountForDay applies the headcount policy: an employee counts once as present when
// any of their rows that day shows up, and everyone else is absent whether or not a row
// exists.
func HeadcountForDay(day calendar.Date, totalEmployees int, rows []*Row) TodayStatus {
	present := make(map[int64]struct{})
	late := make(map[int64]struct{})
	halfDay := make(map[int64]struct{})

	for _, r := range rows {
		if r.Date != day || !r.Status.CountsAsPresent() {
			continue
		}
		present[r.UserID] = struct{}{}
		switch r.Status {
		case attendance.StatusLate:
			late[r.UserID] = struct{}{}
		case attendance.StatusHalfDay:
			halfDay[r.UserID] = struct{}{}
		}
	}

	absent := totalEmployees - len(present)
	if absent < 0 {
		absent = 0
	}

	return TodayStatus{
		Date:           day,
		TotalEmployees: totalEmployees,
		Present:        len(present),
		Absent:         absent,
		Late:           len(late),
		HalfDay:        len(halfDay),
	}
}

// DailySeries applies the headcount policy to each day of days.
func DailySeries(days []calendar.Date, totalEmployees int, rows []*Row) []DailyPresence {
	byDay := make(map[calendar.Date][]*Row)
	for _, r := range rows {
		byDay[r.Date] = append(byDay[r.Date], r)
	}

	series := make([]DailyPresence, 0, len(days))
	for _, d := range days {
		hc := HeadcountForDay(d, totalEmployees, byDay[d])
		series = append(series, DailyPresence{Date: d, Present: hc.Present, Absent: hc.Absent})
	}
	return series
}

// DepartmentStats groups employees by department and counts the distinct ones who showed
// up at least once in rows. Rate is a percentage with one decimal.
func DepartmentStats(employees []*Employee, rows []*Row) []DepartmentStat {
	totals := make(map[string]int)
	deptOf := make(map[int64]string, len(employees))
	for _, e := range employees {
		dept := e.DepartmentName()
		totals[dept]++
		deptOf[e.ID] = dept
	}

	present := make(map[string]map[int64]struct{})
	for _, r := range rows {
		if !r.Status.CountsAsPresent() {
			continue
		}
		dept, ok := deptOf[r.UserID]
		if !ok {
			continue
		}
		if present[dept] == nil {
			present[dept] = make(map[int64]struct{})
		}
		present[dept][r.UserID] = struct{}{}
	}

	stats := make([]DepartmentStat, 0, len(totals))
	for dept, total := range totals {
		p := len(present[dept])
		stats = append(stats, DepartmentStat{
			Department: dept,
			Present:    p,
			Total:      total,
			Rate:       Percentage(p, total),
		})
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Department < stats[j].Department })
	return stats
}

// TeamTotals counts distinct employees per status across rows.
func TeamTotals(totalEmployees int, rows []*Row) TeamSummary {
	sets := map[attendance.Status]map[int64]struct{}{
		attendance.StatusPresent: {},
		attendance.StatusLate:    {},
		attendance.StatusHalfDay: {},
		attendance.StatusAbsent:  {},
	}
	showedUp := make(map[int64]struct{})

	var hours float64
	var completed int
	for _, r := range rows {
		if set, ok := sets[r.Status]; ok {
			set[r.UserID] = struct{}{}
		}
		if r.Status.CountsAsPresent() {
			showedUp[r.UserID] = struct{}{}
		}
		if r.TotalHours != nil {
			hours += *r.TotalHours
			completed++
		}
	}

	ts := TeamSummary{
		TotalEmployees:   totalEmployees,
		PresentEmployees: len(showedUp),
		LateEmployees:    len(sets[attendance.StatusLate]),
		HalfDayEmployees: len(sets[attendance.StatusHalfDay]),
		AbsentEmployees:  len(sets[attendance.StatusAbsent]),
		TotalHours:       attendance.RoundHours(hours),
	}
	if completed > 0 {
		ts.AverageHours = attendance.RoundHours(hours / float64(completed))
	}
	return ts
}

// Percentage returns part/whole*100 rounded to one decimal, and 0 for an empty whole.
func Percentage(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return math.Round(float64(part)/float64(whole)*1000) / 10
}
