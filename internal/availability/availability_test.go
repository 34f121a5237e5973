package availability

import (
	"errors"
	"testing"
	"time"

	"heartcare-gateway/internal/models"
	"heartcare-gateway/pkg/response"
)

// 2025-06-02 is a Monday.
var monday = time.Date(2025, 6, 2, 0, 0, 0, 0, time.Local)

func workingDay(start, end string) *models.WeeklySchedule {
	return &models.WeeklySchedule{
		Weekday:     1,
		IsAvailable: true,
		StartTime:   start,
		EndTime:     end,
	}
}

func appointmentAt(date time.Time, hour, min, durMin int, status models.AppointmentStatus) models.AppointmentRecord {
	start := time.Date(date.Year(), date.Month(), date.Day(), hour, min, 0, 0, time.Local)
	end := start.Add(time.Duration(durMin) * time.Minute)
	return models.AppointmentRecord{
		AppointmentDate: start,
		EndTime:         &end,
		Status:          status,
	}
}

func slotTimes(slots []models.DaySlot) []string {
	out := make([]string, 0, len(slots))
	for _, s := range slots {
		out = append(out, s.Time)
	}
	return out
}

func assertTimes(t *testing.T, got []models.DaySlot, want []string) {
	t.Helper()

	if len(got) != len(want) {
		t.Fatalf("got slots %v, want %v", slotTimes(got), want)
	}
	for i, s := range got {
		if s.Time != want[i] {
			t.Fatalf("got slots %v, want %v", slotTimes(got), want)
		}
		if !s.Available {
			t.Fatalf("slot %s marked unavailable", s.Time)
		}
	}
}

func TestResolveSlots_BookingBlocksOnlyItsOwnBuckets(t *testing.T) {
	// 09:00..12:00 window, one confirmed booking 10:00..11:00. The buckets
	// inside the booking disappear; 09:30 and 11:00 stay bookable.
	schedule := workingDay("09:00", "12:00")
	appts := []models.AppointmentRecord{
		appointmentAt(monday, 10, 0, 60, models.StatusConfirmed),
	}

	slots, err := ResolveSlots(monday, schedule, nil, appts, 30)
	if err != nil {
		t.Fatalf("ResolveSlots returned error: %v", err)
	}

	assertTimes(t, slots, []string{"09:00", "09:30", "11:00", "11:30"})
}

func TestResolveSlots_CancelledAndRejectedNeverBlock(t *testing.T) {
	schedule := workingDay("09:00", "11:00")
	appts := []models.AppointmentRecord{
		appointmentAt(monday, 9, 0, 60, models.StatusCancelled),
		appointmentAt(monday, 10, 0, 60, models.StatusRejected),
	}

	slots, err := ResolveSlots(monday, schedule, nil, appts, 30)
	if err != nil {
		t.Fatalf("ResolveSlots returned error: %v", err)
	}

	assertTimes(t, slots, []string{"09:00", "09:30", "10:00", "10:30"})
}

func TestResolveSlots_PendingBlocksLikeConfirmed(t *testing.T) {
	schedule := workingDay("09:00", "11:00")
	appts := []models.AppointmentRecord{
		appointmentAt(monday, 9, 0, 60, models.StatusPending),
	}

	slots, err := ResolveSlots(monday, schedule, nil, appts, 30)
	if err != nil {
		t.Fatalf("ResolveSlots returned error: %v", err)
	}

	assertTimes(t, slots, []string{"10:00", "10:30"})
}

func TestResolveSlots_OtherDaysAppointmentsIgnored(t *testing.T) {
	schedule := workingDay("09:00", "10:00")
	tuesday := monday.AddDate(0, 0, 1)
	appts := []models.AppointmentRecord{
		appointmentAt(tuesday, 9, 0, 60, models.StatusConfirmed),
	}

	slots, err := ResolveSlots(monday, schedule, nil, appts, 30)
	if err != nil {
		t.Fatalf("ResolveSlots returned error: %v", err)
	}

	assertTimes(t, slots, []string{"09:00", "09:30"})
}

func TestResolveSlots_NoScheduleOrDayOff(t *testing.T) {
	slots, err := ResolveSlots(monday, nil, nil, nil, 30)
	if err != nil {
		t.Fatalf("ResolveSlots returned error: %v", err)
	}
	if len(slots) != 0 {
		t.Errorf("nil schedule produced slots %v", slotTimes(slots))
	}

	off := workingDay("09:00", "12:00")
	off.IsAvailable = false

	slots, err = ResolveSlots(monday, off, nil, nil, 30)
	if err != nil {
		t.Fatalf("ResolveSlots returned error: %v", err)
	}
	if len(slots) != 0 {
		t.Errorf("day off produced slots %v", slotTimes(slots))
	}
}

func TestResolveSlots_AllDayPeriodEmptiesTheDay(t *testing.T) {
	schedule := workingDay("09:00", "12:00")
	periods := []models.UnavailablePeriod{
		{StartDate: "2025-06-01", EndDate: "2025-06-03", TimeType: models.TimeTypeAll, Status: 1},
	}

	slots, err := ResolveSlots(monday, schedule, periods, nil, 30)
	if err != nil {
		t.Fatalf("ResolveSlots returned error: %v", err)
	}
	if len(slots) != 0 {
		t.Errorf("all-day block produced slots %v", slotTimes(slots))
	}
}

func TestResolveSlots_InactiveOrNonCoveringPeriodsIgnored(t *testing.T) {
	schedule := workingDay("09:00", "10:00")
	periods := []models.UnavailablePeriod{
		{StartDate: "2025-06-02", EndDate: "2025-06-02", TimeType: models.TimeTypeAll, Status: 0},
		{StartDate: "2025-06-10", EndDate: "2025-06-12", TimeType: models.TimeTypeAll, Status: 1},
	}

	slots, err := ResolveSlots(monday, schedule, periods, nil, 30)
	if err != nil {
		t.Fatalf("ResolveSlots returned error: %v", err)
	}

	assertTimes(t, slots, []string{"09:00", "09:30"})
}

func TestResolveSlots_CustomPeriodsUnion(t *testing.T) {
	schedule := workingDay("09:00", "12:00")
	periods := []models.UnavailablePeriod{
		{StartDate: "2025-06-02", EndDate: "2025-06-02", TimeType: models.TimeTypeCustom, StartTime: "09:00", EndTime: "10:00", Status: 1},
		{StartDate: "2025-06-02", EndDate: "2025-06-02", TimeType: models.TimeTypeCustom, StartTime: "09:30", EndTime: "11:00", Status: 1},
	}

	slots, err := ResolveSlots(monday, schedule, periods, nil, 30)
	if err != nil {
		t.Fatalf("ResolveSlots returned error: %v", err)
	}

	assertTimes(t, slots, []string{"11:00", "11:30"})
}

func TestResolveSlots_DailyCapEmptiesTheDay(t *testing.T) {
	schedule := workingDay("09:00", "18:00")
	schedule.MaxDaily = 2

	appts := []models.AppointmentRecord{
		appointmentAt(monday, 9, 0, 60, models.StatusConfirmed),
		appointmentAt(monday, 14, 0, 60, models.StatusPending),
	}

	slots, err := ResolveSlots(monday, schedule, nil, appts, 30)
	if err != nil {
		t.Fatalf("ResolveSlots returned error: %v", err)
	}
	if len(slots) != 0 {
		t.Errorf("capped day produced slots %v", slotTimes(slots))
	}

	// Cancelled appointments do not count toward the cap.
	appts[1].Status = models.StatusCancelled

	slots, err = ResolveSlots(monday, schedule, nil, appts, 30)
	if err != nil {
		t.Fatalf("ResolveSlots returned error: %v", err)
	}
	if len(slots) == 0 {
		t.Error("day with one blocking appointment under the cap produced no slots")
	}
}

func TestResolveSlots_MissingEndTimeOccupiesOneHour(t *testing.T) {
	schedule := workingDay("09:00", "11:00")
	start := time.Date(2025, 6, 2, 9, 0, 0, 0, time.Local)
	appts := []models.AppointmentRecord{
		{AppointmentDate: start, Status: models.StatusConfirmed},
	}

	slots, err := ResolveSlots(monday, schedule, nil, appts, 30)
	if err != nil {
		t.Fatalf("ResolveSlots returned error: %v", err)
	}

	assertTimes(t, slots, []string{"10:00", "10:30"})
}

func TestResolveSlots_DoesNotMutateInputs(t *testing.T) {
	schedule := workingDay("09:00", "12:00")
	periods := []models.UnavailablePeriod{
		{StartDate: "2025-06-02", EndDate: "2025-06-02", TimeType: models.TimeTypeCustom, StartTime: "09:00", EndTime: "10:00", Status: 1},
	}
	appts := []models.AppointmentRecord{
		appointmentAt(monday, 10, 0, 60, models.StatusConfirmed),
	}

	first, err := ResolveSlots(monday, schedule, periods, appts, 30)
	if err != nil {
		t.Fatalf("ResolveSlots returned error: %v", err)
	}
	second, err := ResolveSlots(monday, schedule, periods, appts, 30)
	if err != nil {
		t.Fatalf("ResolveSlots returned error: %v", err)
	}

	if len(first) != len(second) {
		t.Fatalf("repeated calls differ: %v vs %v", slotTimes(first), slotTimes(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("repeated calls differ: %v vs %v", slotTimes(first), slotTimes(second))
		}
	}
}

func TestResolveSlots_MalformedScheduleTime(t *testing.T) {
	schedule := workingDay("9am", "12:00")

	if _, err := ResolveSlots(monday, schedule, nil, nil, 30); err == nil {
		t.Error("expected error for malformed schedule time")
	}
}

func TestValidateBookingWindow(t *testing.T) {
	available := []models.DaySlot{
		{Time: "09:00", Available: true},
		{Time: "09:30", Available: true},
		{Time: "10:00", Available: true},
	}

	cases := []struct {
		name    string
		start   string
		end     string
		wantErr error
	}{
		{"one hour on grid", "09:00", "10:00", nil},
		{"ninety minutes", "09:30", "11:00", nil},
		{"three hours", "09:00", "12:00", nil},
		{"off grid start", "09:15", "10:15", response.ErrNotOnGrid},
		{"off grid end", "09:00", "10:10", response.ErrNotOnGrid},
		{"too short", "09:00", "09:30", response.ErrInvalidDuration},
		{"too long", "09:00", "12:30", response.ErrInvalidDuration},
		{"negative", "10:00", "09:00", response.ErrInvalidDuration},
		{"start not available", "10:30", "11:30", response.ErrSlotNotAvailable},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := ValidateBookingWindow(c.start, c.end, 30, available)
			if c.wantErr == nil {
				if err != nil {
					t.Fatalf("ValidateBookingWindow(%s, %s) = %v, want nil", c.start, c.end, err)
				}
				return
			}
			if !errors.Is(err, c.wantErr) {
				t.Fatalf("ValidateBookingWindow(%s, %s) = %v, want %v", c.start, c.end, err, c.wantErr)
			}
		})
	}
}

func TestValidateBookingWindow_UnavailableSlotRejected(t *testing.T) {
	available := []models.DaySlot{
		{Time: "09:00", Available: false},
	}

	err := ValidateBookingWindow("09:00", "10:00", 30, available)
	if !errors.Is(err, response.ErrSlotNotAvailable) {
		t.Fatalf("got %v, want ErrSlotNotAvailable", err)
	}
}
