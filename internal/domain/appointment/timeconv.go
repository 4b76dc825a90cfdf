package appointment

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrBadClock = errors.New("time must be a 12-hour clock reading like 02:30 PM")
	ErrBadDate  = errors.New("date must be YYYY-MM-DD")
)

// Convert12To24 turns a 12-hour clock reading into 24-hour HH:MM.
// "02:30 PM" becomes "14:30", "12:15 AM" becomes "00:15".
func Convert12To24(clock string) (string, error) {
	t, err := time.Parse("03:04 PM", clock)
	if err != nil {
		return "", ErrBadClock
	}
	return t.Format("15:04"), nil
}

// CombineDateTime joins a calendar day and a 12-hour clock reading into the
// local timestamp format stored on appointments, seconds always zero.
func CombineDateTime(date, clock string) (string, error) {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return "", ErrBadDate
	}
	hhmm, err := Convert12To24(clock)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%sT%s:00", date, hhmm), nil
}
