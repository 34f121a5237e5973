package calendar

import (
	"fmt"
	"time"

	"heartcare-gateway/internal/models"
)

type DayStatus string

const (
	DayDone      DayStatus = "done"      // at least one confirmed or completed
	DayScheduled DayStatus = "scheduled" // only pending activity
	DayIdle      DayStatus = "idle"      // nothing to mark
)

// DateKey renders a local calendar date as "YYYY-M-D" (no zero padding),
// the key format the month grid is addressed by.
func DateKey(t time.Time) string {
	return fmt.Sprintf("%d-%d-%d", t.Year(), int(t.Month()), t.Day())
}

// GroupByDay buckets appointments by their local calendar date.
func GroupByDay(appointments []models.AppointmentRecord) map[string][]models.AppointmentRecord {
	grouped := make(map[string][]models.AppointmentRecord)

	for _, a := range appointments {
		if a.AppointmentDate.IsZero() {
			continue
		}
		key := DateKey(a.AppointmentDate)
		grouped[key] = append(grouped[key], a)
	}

	return grouped
}

// Classify collapses one day's appointments into a single marker.
// Precedence: done beats scheduled beats idle, so a day holding both a
// confirmed and a pending record shows done.
func Classify(day []models.AppointmentRecord) DayStatus {
	if len(day) == 0 {
		return DayIdle
	}

	hasPending := false
	for _, a := range day {
		switch a.Status {
		case models.StatusConfirmed, models.StatusCompleted:
			return DayDone
		case models.StatusPending:
			hasPending = true
		}
	}

	if hasPending {
		return DayScheduled
	}

	return DayIdle
}

type DayCell struct {
	Day     int       `json:"day"`
	Date    string    `json:"date"` // "YYYY-M-D"
	Status  DayStatus `json:"status"`
	Count   int       `json:"count"`
	IsToday bool      `json:"is_today"`
}

type MonthGrid struct {
	Year          int       `json:"year"`
	Month         int       `json:"month"` // 1..12
	MonthName     string    `json:"month_name"`
	LeadingBlanks int       `json:"leading_blanks"`
	Days          []DayCell `json:"days"`
}

// BuildMonthGrid lays out one month for rendering: Monday-first columns,
// leading blank cells for the first week, and a classified cell per day.
func BuildMonthGrid(year int, month time.Month, appointments []models.AppointmentRecord, today time.Time) MonthGrid {
	grouped := GroupByDay(appointments)

	first := time.Date(year, month, 1, 0, 0, 0, 0, time.Local)
	daysInMonth := first.AddDate(0, 1, -1).Day()

	// int(time.Weekday) has Sunday as 0; shift so Monday is column 0.
	leading := (int(first.Weekday()) + 6) % 7

	grid := MonthGrid{
		Year:          year,
		Month:         int(month),
		MonthName:     month.String(),
		LeadingBlanks: leading,
		Days:          make([]DayCell, 0, daysInMonth),
	}

	ty, tm, td := today.Date()

	for day := 1; day <= daysInMonth; day++ {
		date := time.Date(year, month, day, 0, 0, 0, 0, time.Local)
		key := DateKey(date)
		records := grouped[key]

		grid.Days = append(grid.Days, DayCell{
			Day:     day,
			Date:    key,
			Status:  Classify(records),
			Count:   len(records),
			IsToday: ty == year && tm == month && td == day,
		})
	}

	return grid
}
