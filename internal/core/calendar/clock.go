package calendar

import "time"

// Clock pins "now" and the attendance timezone together so every component agrees on
// which calendar day it is.
type Clock struct {
	now func() time.Time
	loc *time.Location
}

func NewClock(loc *time.Location) Clock {
	return NewFixedClock(time.Now, loc)
}

// NewFixedClock is NewClock with an injectable time source.
func NewFixedClock(now func() time.Time, loc *time.Location) Clock {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return Clock{now: now, loc: loc}
}

func (c Clock) Now() time.Time {
	if c.now == nil {
		return time.Now().In(c.Location())
	}
	return c.now().In(c.Location())
}

func (c Clock) Today() Date {
	return DateOf(c.Now())
}

func (c Clock) Location() *time.Location {
	if c.loc == nil {
		return time.UTC
	}
	return c.loc
}
