package stats

import (
	"fmt"
	"time"
)

// FormatDuration renders a span the way daily summaries show it:
// "2h 5m" above an hour, "49m" below. Negative spans keep their sign.
func FormatDuration(d time.Duration) string {
	sign := ""
	if d < 0 {
		sign = "-"
		d = -d
	}
	mins := int(d / time.Minute)
	hours := mins / 60
	if hours > 0 {
		return fmt.Sprintf("%s%dh %dm", sign, hours, mins%60)
	}
	return fmt.Sprintf("%s%dm", sign, mins)
}

// FormatDurationExact renders a span with seconds, used when reporting a
// just-finished activity: "5m 13s".
func FormatDurationExact(d time.Duration) string {
	sign := ""
	if d < 0 {
		sign = "-"
		d = -d
	}
	mins := int(d / time.Minute)
	secs := int(d/time.Second) % 60
	return fmt.Sprintf("%s%dm %ds", sign, mins, secs)
}
