package timegrid

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidFormat = errors.New("time must be HH:MM")
	ErrOutOfRange    = errors.New("minutes out of range")
)

const minutesPerDay = 24 * 60

// ToMinutes converts a wall-clock "HH:MM" string to a minute-of-day integer
// in [0, 1439].
func ToMinutes(t string) (int, error) {
	if len(t) != 5 || t[2] != ':' {
		return 0, fmt.Errorf("%w: %q", ErrInvalidFormat, t)
	}

	for _, i := range []int{0, 1, 3, 4} {
		if t[i] < '0' || t[i] > '9' {
			return 0, fmt.Errorf("%w: %q", ErrInvalidFormat, t)
		}
	}

	hours := int(t[0]-'0')*10 + int(t[1]-'0')
	minutes := int(t[3]-'0')*10 + int(t[4]-'0')

	if hours > 23 || minutes > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidFormat, t)
	}

	return hours*60 + minutes, nil
}

// ToTimeString converts a minute-of-day back to "HH:MM".
func ToTimeString(minutes int) (string, error) {
	if minutes < 0 || minutes >= minutesPerDay {
		return "", fmt.Errorf("%w: %d", ErrOutOfRange, minutes)
	}

	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60), nil
}

// Bucketize returns every step-aligned minute in [start, end), ascending.
// Alignment is relative to midnight, so an 08:10 window with a 30-minute
// step starts at 08:30. Empty when start >= end or step is not positive.
func Bucketize(start, end, step int) []int {
	if step <= 0 || start >= end {
		return nil
	}

	first := start
	if rem := first % step; rem != 0 {
		first += step - rem
	}

	var points []int
	for p := first; p < end; p += step {
		points = append(points, p)
	}

	return points
}
