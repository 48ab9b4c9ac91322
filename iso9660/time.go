package iso9660

import (
	"fmt"
	"time"
)

func location(tzSeconds int) *time.Location {
	var tzName string
	if tzSeconds == 0 {
		tzName = "UTC"
	} else if tzSeconds > 0 && tzSeconds%3600 == 0 {
		tzName = fmt.Sprintf("UTC+%d", tzSeconds/3600)
	} else if tzSeconds > 0 {
		tzName = fmt.Sprintf("UTC+%d:%02d", tzSeconds/3600, tzSeconds%3600/60)
	} else if tzSeconds < 0 && tzSeconds%3600 == 0 {
		tzName = fmt.Sprintf("UTC-%d", -tzSeconds/3600)
	} else {
		tzName = fmt.Sprintf("UTC-%d:%02d", -tzSeconds/3600, -tzSeconds%3600/60)
	}

	return time.FixedZone(tzName, tzSeconds)
}

// parseShortFormTime decodes the 7 byte recording date of a directory record.
// The offset from GMT is a signed count of 15 minute intervals.
func parseShortFormTime(buf []byte) time.Time {
	year := buf[0]
	month := buf[1]
	day := buf[2]
	hour := buf[3]
	minute := buf[4]
	second := buf[5]
	tz := int8(buf[6])

	// All zero means the date wasn't recorded.
	if year == 0 && month == 0 && day == 0 {
		return time.Time{}
	}

	return time.Date(1900+int(year), time.Month(month), int(day), int(hour), int(minute), int(second), 0, location(15*60*int(tz)))
}
