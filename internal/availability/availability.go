package availability

import (
	"fmt"
	"time"

	"heartcare-gateway/internal/models"
	"heartcare-gateway/internal/timegrid"
	"heartcare-gateway/pkg/response"
)

// DefaultStepMinutes is the slot grid used when the caller passes step <= 0.
const DefaultStepMinutes = 30

// ResolveSlots computes the ordered bookable start times for one counselor
// on one date.
//
// schedule is the counselor's entry for the date's weekday (nil when none
// exists), periods are the unavailable periods whose date range contains the
// date, and appointments are that counselor's appointments on the date.
// Cancelled and rejected appointments never block. The result is ascending
// and the inputs are never mutated; an empty day is a valid result, not an
// error.
func ResolveSlots(date time.Time, schedule *models.WeeklySchedule, periods []models.UnavailablePeriod, appointments []models.AppointmentRecord, step int) ([]models.DaySlot, error) {
	const op = "availability.ResolveSlots"

	if step <= 0 {
		step = DefaultStepMinutes
	}

	if schedule == nil || !schedule.IsAvailable {
		return []models.DaySlot{}, nil
	}

	windowStart, err := timegrid.ToMinutes(schedule.StartTime)
	if err != nil {
		return nil, fmt.Errorf("%s: schedule start: %w", op, err)
	}
	windowEnd, err := timegrid.ToMinutes(schedule.EndTime)
	if err != nil {
		return nil, fmt.Errorf("%s: schedule end: %w", op, err)
	}

	type span struct{ start, end int }
	var blocked []span

	for _, p := range periods {
		if !p.Active() || !p.Covers(date) {
			continue
		}

		if p.TimeType != models.TimeTypeCustom {
			// Whole day is blocked.
			return []models.DaySlot{}, nil
		}

		bs, err := timegrid.ToMinutes(p.StartTime)
		if err != nil {
			return nil, fmt.Errorf("%s: period start: %w", op, err)
		}
		be, err := timegrid.ToMinutes(p.EndTime)
		if err != nil {
			return nil, fmt.Errorf("%s: period end: %w", op, err)
		}

		// Overlapping periods act as a union of blocked time.
		blocked = append(blocked, span{start: bs, end: be})
	}

	booked := blockingOn(date, appointments)
	if schedule.MaxDaily > 0 && len(booked) >= schedule.MaxDaily {
		return []models.DaySlot{}, nil
	}

	var taken []span
	for _, a := range booked {
		start, end := a.Interval()
		taken = append(taken, span{
			start: start.Hour()*60 + start.Minute(),
			end:   end.Hour()*60 + end.Minute(),
		})
	}

	slots := []models.DaySlot{}

points:
	for _, p := range timegrid.Bucketize(windowStart, windowEnd, step) {
		for _, b := range blocked {
			if b.start <= p && p < b.end {
				continue points
			}
		}

		// Two intervals overlap iff a.start < b.end && b.start < a.end.
		for _, t := range taken {
			if p < t.end && t.start < p+step {
				continue points
			}
		}

		ts, err := timegrid.ToTimeString(p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		slots = append(slots, models.DaySlot{Time: ts, Available: true})
	}

	return slots, nil
}

func blockingOn(date time.Time, appointments []models.AppointmentRecord) []models.AppointmentRecord {
	y, m, d := date.Date()

	var out []models.AppointmentRecord
	for _, a := range appointments {
		ay, am, ad := a.AppointmentDate.Date()
		if ay == y && am == m && ad == d && a.Status.Blocking() {
			out = append(out, a)
		}
	}

	return out
}

// ValidateBookingWindow checks a requested start/end pair before anything is
// sent upstream: both ends on the slot grid, duration between 1 and 3 hours,
// and the start present in the resolved available set.
func ValidateBookingWindow(startTime, endTime string, step int, available []models.DaySlot) error {
	const op = "availability.ValidateBookingWindow"

	if step <= 0 {
		step = DefaultStepMinutes
	}

	start, err := timegrid.ToMinutes(startTime)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	end, err := timegrid.ToMinutes(endTime)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if start%step != 0 || end%step != 0 {
		return fmt.Errorf("%s: %w", op, response.ErrNotOnGrid)
	}

	duration := end - start
	if duration < 60 || duration > 180 {
		return fmt.Errorf("%s: %w", op, response.ErrInvalidDuration)
	}

	for _, s := range available {
		if s.Available && s.Time == startTime {
			return nil
		}
	}

	return fmt.Errorf("%s: %w", op, response.ErrSlotNotAvailable)
}
