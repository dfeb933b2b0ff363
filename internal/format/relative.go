package format

import (
	"time"

	"github.com/xeonx/timeago"
)

// Relative renders t as "3 hours ago" / "in 2 days" relative to now.
func Relative(t time.Time) string {
	return relativeTo(t, time.Now())
}

func relativeTo(t, ref time.Time) string {
	if t.IsZero() {
		return ""
	}
	return timeago.English.FormatReference(t, ref)
}
