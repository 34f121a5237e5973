package calendar

import (
	"testing"
	"time"

	"heartcare-gateway/internal/models"
)

func record(day int, status models.AppointmentStatus) models.AppointmentRecord {
	return models.AppointmentRecord{
		AppointmentDate: time.Date(2025, time.January, day, 14, 0, 0, 0, time.Local),
		Status:          status,
	}
}

func TestDateKey_NoZeroPadding(t *testing.T) {
	got := DateKey(time.Date(2025, time.January, 5, 9, 30, 0, 0, time.Local))
	if got != "2025-1-5" {
		t.Errorf("DateKey = %q, want %q", got, "2025-1-5")
	}

	got = DateKey(time.Date(2025, time.December, 25, 0, 0, 0, 0, time.Local))
	if got != "2025-12-25" {
		t.Errorf("DateKey = %q, want %q", got, "2025-12-25")
	}
}

func TestGroupByDay(t *testing.T) {
	appts := []models.AppointmentRecord{
		record(5, models.StatusConfirmed),
		record(5, models.StatusPending),
		record(6, models.StatusPending),
		{}, // zero date, dropped
	}

	grouped := GroupByDay(appts)

	if len(grouped) != 2 {
		t.Fatalf("grouped into %d days, want 2", len(grouped))
	}
	if len(grouped["2025-1-5"]) != 2 {
		t.Errorf("2025-1-5 holds %d records, want 2", len(grouped["2025-1-5"]))
	}
	if len(grouped["2025-1-6"]) != 1 {
		t.Errorf("2025-1-6 holds %d records, want 1", len(grouped["2025-1-6"]))
	}
}

func TestClassify_Precedence(t *testing.T) {
	cases := []struct {
		name string
		day  []models.AppointmentRecord
		want DayStatus
	}{
		{"empty", nil, DayIdle},
		{"only pending", []models.AppointmentRecord{record(1, models.StatusPending)}, DayScheduled},
		{"only confirmed", []models.AppointmentRecord{record(1, models.StatusConfirmed)}, DayDone},
		{"completed counts as done", []models.AppointmentRecord{record(1, models.StatusCompleted)}, DayDone},
		{"done beats pending", []models.AppointmentRecord{
			record(1, models.StatusPending),
			record(1, models.StatusConfirmed),
		}, DayDone},
		{"cancelled and rejected are idle", []models.AppointmentRecord{
			record(1, models.StatusCancelled),
			record(1, models.StatusRejected),
		}, DayIdle},
		{"pending beats cancelled", []models.AppointmentRecord{
			record(1, models.StatusCancelled),
			record(1, models.StatusPending),
		}, DayScheduled},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := Classify(c.day); got != c.want {
				t.Errorf("Classify = %q, want %q", got, c.want)
			}
		})
	}
}

func TestBuildMonthGrid_Layout(t *testing.T) {
	// January 2025 starts on a Wednesday, so the Monday-first grid needs
	// two leading blanks.
	today := time.Date(2025, time.January, 15, 10, 0, 0, 0, time.Local)

	grid := BuildMonthGrid(2025, time.January, nil, today)

	if grid.Year != 2025 || grid.Month != 1 || grid.MonthName != "January" {
		t.Errorf("grid header = %d %d %q", grid.Year, grid.Month, grid.MonthName)
	}
	if grid.LeadingBlanks != 2 {
		t.Errorf("LeadingBlanks = %d, want 2", grid.LeadingBlanks)
	}
	if len(grid.Days) != 31 {
		t.Fatalf("Days has %d cells, want 31", len(grid.Days))
	}

	for _, cell := range grid.Days {
		if cell.IsToday != (cell.Day == 15) {
			t.Errorf("day %d IsToday = %v", cell.Day, cell.IsToday)
		}
		if cell.Status != DayIdle {
			t.Errorf("day %d Status = %q, want idle", cell.Day, cell.Status)
		}
	}
}

func TestBuildMonthGrid_MondayFirstNeedsNoBlanks(t *testing.T) {
	// September 2025 starts on a Monday.
	grid := BuildMonthGrid(2025, time.September, nil, time.Date(2025, time.September, 1, 0, 0, 0, 0, time.Local))

	if grid.LeadingBlanks != 0 {
		t.Errorf("LeadingBlanks = %d, want 0", grid.LeadingBlanks)
	}
	if len(grid.Days) != 30 {
		t.Errorf("Days has %d cells, want 30", len(grid.Days))
	}
}

func TestBuildMonthGrid_MarksDays(t *testing.T) {
	appts := []models.AppointmentRecord{
		record(5, models.StatusConfirmed),
		record(5, models.StatusPending),
		record(10, models.StatusPending),
		record(20, models.StatusCancelled),
	}
	today := time.Date(2025, time.February, 1, 0, 0, 0, 0, time.Local) // outside the month

	grid := BuildMonthGrid(2025, time.January, appts, today)

	byDay := make(map[int]DayCell, len(grid.Days))
	for _, cell := range grid.Days {
		byDay[cell.Day] = cell
	}

	if c := byDay[5]; c.Status != DayDone || c.Count != 2 {
		t.Errorf("day 5 = %+v, want done with count 2", c)
	}
	if c := byDay[10]; c.Status != DayScheduled || c.Count != 1 {
		t.Errorf("day 10 = %+v, want scheduled with count 1", c)
	}
	if c := byDay[20]; c.Status != DayIdle || c.Count != 1 {
		t.Errorf("day 20 = %+v, want idle with count 1", c)
	}
	for _, cell := range grid.Days {
		if cell.IsToday {
			t.Errorf("day %d marked today for a date outside the month", cell.Day)
		}
	}
}

func TestBuildMonthGrid_LeapFebruary(t *testing.T) {
	grid := BuildMonthGrid(2024, time.February, nil, time.Now())
	if len(grid.Days) != 29 {
		t.Errorf("February 2024 has %d cells, want 29", len(grid.Days))
	}
}
