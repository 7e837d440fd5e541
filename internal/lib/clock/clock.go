package clock

import "time"

const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

func Now() string {
	return time.Now().Format(TimestampLayout)
}
