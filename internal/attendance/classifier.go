package attendance

import (
	"math"
	"time"
)

const (
	// Check-ins after 10:01 are late.
	lateAfterHour   = 10
	lateAfterMinute = 1

	// Checkouts at or before 14:00 make the day a half-day.
	halfDayCheckoutHour = 14

	minFullDayHours = 4.0

	// On-time cutoff used by the punctuality reports.
	onTimeHour = 10
)

// Classifier derives a record's status from its timestamps. Every time-of-day rule is
// evaluated in the classifier's location.
type Classifier struct {
	loc *time.Location
}

func NewClassifier(loc *time.Location) *Classifier {
	if loc == nil {
		loc = time.UTC
	}
	return &Classifier{loc: loc}
}

func (c *Classifier) Location() *time.Location {
	return c.loc
}

// Classify applies, in order: no check-in is absent; an open shift is late or present by
// arrival; a closed shift is half-day when it ended by 14:00 or lasted under four hours,
// and otherwise keeps the arrival verdict.
func (c *Classifier) Classify(checkIn, checkOut *time.Time) Status {
	if checkIn == nil {
		return StatusAbsent
	}

	arrival := StatusPresent
	if c.IsLate(*checkIn) {
		arrival = StatusLate
	}

	if checkOut == nil {
		return arrival
	}

	if c.IsHalfDayCheckout(*checkOut) || ElapsedHours(*checkIn, *checkOut) < minFullDayHours {
		return StatusHalfDay
	}
	return arrival
}

func (c *Classifier) IsLate(checkIn time.Time) bool {
	t := checkIn.In(c.loc)
	h, m := t.Hour(), t.Minute()
	return h > lateAfterHour || (h == lateAfterHour && m > lateAfterMinute)
}

func (c *Classifier) IsHalfDayCheckout(checkOut time.Time) bool {
	t := checkOut.In(c.loc)
	h, m := t.Hour(), t.Minute()
	return h < halfDayCheckoutHour || (h == halfDayCheckoutHour && m == 0)
}

// IsOnTime reports a check-in at or before 10:00.
func (c *Classifier) IsOnTime(checkIn time.Time) bool {
	t := checkIn.In(c.loc)
	h, m := t.Hour(), t.Minute()
	return h < onTimeHour || (h == onTimeHour && m == 0)
}

// IsEarlyCheckout reports a checkout strictly before 14:00.
func (c *Classifier) IsEarlyCheckout(checkOut time.Time) bool {
	return checkOut.In(c.loc).Hour() < halfDayCheckoutHour
}

// DecimalHour renders a time-of-day as fractional hours, 09:30 -> 9.5.
func (c *Classifier) DecimalHour(t time.Time) float64 {
	lt := t.In(c.loc)
	return RoundHours(float64(lt.Hour()) + float64(lt.Minute())/60.0)
}

// ElapsedHours is the plain clock difference in fractional hours.
func ElapsedHours(checkIn, checkOut time.Time) float64 {
	return checkOut.Sub(checkIn).Hours()
}

func RoundHours(h float64) float64 {
	return math.Round(h*100) / 100
}
