package calendar

// Range is an inclusive span of days.
type Range struct {
	From Date `json:"start_date"`
	To   Date `json:"end_date"`
}

func NewRange(from, to Date) Range {
	return Range{From: from, To: to}
}

// MonthToDate covers the first of today's month through today.
func MonthToDate(today Date) Range {
	return Range{From: today.StartOfMonth(), To: today}
}

// Trailing covers the n days before today plus today itself.
func Trailing(today Date, n int) Range {
	return Range{From: today.AddDays(-n), To: today}
}

func (r Range) Valid() bool {
	return !r.From.After(r.To)
}

func (r Range) Contains(d Date) bool {
	return d.Within(r.From, r.To)
}

// Days lists every day in the range in ascending order.
func (r Range) Days() []Date {
	if !r.Valid() {
		return nil
	}
	var days []Date
	for d := r.From; !d.After(r.To); d = d.AddDays(1) {
		days = append(days, d)
	}
	return days
}
