package internal

import "time"

const (
	formatDDMMYYYY = "02.01.2006"
	formatHHMMSS   = "15:04:05"
)

func Format(date time.Time) string {
	return date.Format(formatDDMMYYYY)
}

func FormatTime(t time.Time) string {
	return t.Format(formatHHMMSS)
}
