package models

import (
	"fmt"
	"time"
)

// DayLayout — формат календарного дня во всех строковых представлениях.
const DayLayout = "2006-01-02"

// Day — нормализованный календарный день без времени и часового пояса.
type Day struct {
	Year  int
	Month time.Month
	Day   int
}

// DayOf возвращает календарный день момента t в его собственной локации.
func DayOf(t time.Time) Day {
	y, m, d := t.Date()
	return Day{Year: y, Month: m, Day: d}
}

// ParseDay разбирает строку вида 2006-01-02.
func ParseDay(s string) (Day, error) {
	t, err := time.Parse(DayLayout, s)
	if err != nil {
		return Day{}, fmt.Errorf("parse day %q: %w", s, err)
	}

	return DayOf(t), nil
}

// String возвращает день в формате 2006-01-02.
func (d Day) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// IsZero сообщает, что день не задан.
func (d Day) IsZero() bool {
	return d == Day{}
}

// Time возвращает полночь дня в локации loc.
func (d Day) Time(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}

	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// Compare возвращает -1, 0 или +1.
func (d Day) Compare(o Day) int {
	switch {
	case d.Year != o.Year:
		return cmpInt(d.Year, o.Year)
	case d.Month != o.Month:
		return cmpInt(int(d.Month), int(o.Month))
	default:
		return cmpInt(d.Day, o.Day)
	}
}

func (d Day) Before(o Day) bool { return d.Compare(o) < 0 }
func (d Day) After(o Day) bool  { return d.Compare(o) > 0 }

// AddDays сдвигает день на n суток.
func (d Day) AddDays(n int) Day {
	return DayOf(d.Time(time.UTC).AddDate(0, 0, n))
}

// Weekday возвращает день недели.
func (d Day) Weekday() time.Weekday {
	return d.Time(time.UTC).Weekday()
}

// StartOfMonth — первый день месяца.
func (d Day) StartOfMonth() Day {
	return Day{Year: d.Year, Month: d.Month, Day: 1}
}

// EndOfMonth — последний день месяца.
func (d Day) EndOfMonth() Day {
	return DayOf(time.Date(d.Year, d.Month+1, 0, 0, 0, 0, 0, time.UTC))
}

// SameMonth сообщает, что оба дня в одном месяце одного года.
func (d Day) SameMonth(o Day) bool {
	return d.Year == o.Year && d.Month == o.Month
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
