package explorer

import (
	"time"

	"github.com/dustin/go-humanize"
)

// HumanSize renders a byte count for listings, "0 B" for empty files.
func HumanSize(n int64) string {
	if n <= 0 {
		return "0 B"
	}
	return humanize.Bytes(uint64(n))
}

// ShortDate is the listing date column.
func ShortDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("Jan 2, 2006 15:04")
}

// Ago renders t relative to now, as the activity log does.
func Ago(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return humanize.Time(t)
}
