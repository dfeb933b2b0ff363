package format

import (
	"fmt"
	"time"

	"github.com/rickar/cal/v2"
)

// SLA buckets by response target.
const (
	BucketCritical = "critical"
	BucketHigh     = "high"
	BucketMedium   = "medium"
	BucketLow      = "low"
	BucketPlanning = "planning"
)

// SLABucket groups a response target: up to 1h is critical, 4h high, 8h
// medium, 24h low, anything longer is planning.
func SLABucket(responseHours int) string {
	switch {
	case responseHours <= 1:
		return BucketCritical
	case responseHours <= 4:
		return BucketHigh
	case responseHours <= 8:
		return BucketMedium
	case responseHours <= 24:
		return BucketLow
	default:
		return BucketPlanning
	}
}

// SLATone maps a bucket to a badge colour.
func SLATone(bucket string) string {
	switch bucket {
	case BucketCritical:
		return "danger"
	case BucketHigh:
		return "warning"
	case BucketMedium:
		return "info"
	case BucketLow:
		return "success"
	}
	return "muted"
}

// BusinessCalendar computes SLA due times in working hours.
type BusinessCalendar struct {
	cal *cal.BusinessCalendar
}

// NewBusinessCalendar builds a Monday to Friday calendar working from start
// to end ("HH:MM") with one-off holidays given as YYYY-MM-DD.
func NewBusinessCalendar(start, end string, holidays []string) (*BusinessCalendar, error) {
	from, err := clock(start)
	if err != nil {
		return nil, fmt.Errorf("workday start: %w", err)
	}
	to, err := clock(end)
	if err != nil {
		return nil, fmt.Errorf("workday end: %w", err)
	}
	if to <= from {
		return nil, fmt.Errorf("workday end %s is not after start %s", end, start)
	}

	c := cal.NewBusinessCalendar()
	c.SetWorkHours(from, to)
	c.SetWorkday(time.Saturday, false)
	c.SetWorkday(time.Sunday, false)

	for _, h := range holidays {
		day, err := time.Parse("2006-01-02", h)
		if err != nil {
			return nil, fmt.Errorf("holiday %q: %w", h, err)
		}
		c.AddHoliday(&cal.Holiday{
			Name:      h,
			Type:      cal.ObservancePublic,
			Month:     day.Month(),
			Day:       day.Day(),
			Func:      cal.CalcDayOfMonth,
			StartYear: day.Year(),
			EndYear:   day.Year(),
		})
	}
	return &BusinessCalendar{cal: c}, nil
}

func clock(hhmm string) (time.Duration, error) {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return 0, err
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

// DueAt returns when a target of hours falls due starting at from. With
// businessOnly false the hours run on the wall clock.
func (b *BusinessCalendar) DueAt(from time.Time, hours int, businessOnly bool) time.Time {
	d := time.Duration(hours) * time.Hour
	if !businessOnly || b == nil {
		return from.Add(d)
	}
	return b.cal.AddWorkHours(from, d)
}

// WorkingHoursBetween counts working time between two instants.
func (b *BusinessCalendar) WorkingHoursBetween(start, end time.Time) time.Duration {
	return b.cal.WorkHoursInRange(start, end)
}

// IsWorkTime reports whether t falls within working hours.
func (b *BusinessCalendar) IsWorkTime(t time.Time) bool {
	return b.cal.IsWorkTime(t)
}
