package models

import (
	"encoding/json"
	"strings"
	"time"
)

type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
	StatusRejected  AppointmentStatus = "rejected"
)

// ParseStatus maps the backend's status encodings to the closed status set.
// The backend may send a bare string, an enum wrapper with "value", or one
// with "name"; anything unrecognized collapses to pending.
func ParseStatus(v string) AppointmentStatus {
	s := strings.ToLower(strings.TrimSpace(v))
	s = strings.TrimPrefix(s, "appointmentstatus.")

	switch AppointmentStatus(s) {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled, StatusRejected:
		return AppointmentStatus(s)
	default:
		return StatusPending
	}
}

func (s *AppointmentStatus) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err == nil {
		*s = ParseStatus(raw)
		return nil
	}

	var wrapper struct {
		Value string `json:"value"`
		Name  string `json:"name"`
	}
	if err := json.Unmarshal(data, &wrapper); err == nil {
		if wrapper.Value != "" {
			*s = ParseStatus(wrapper.Value)
			return nil
		}
		if wrapper.Name != "" {
			*s = ParseStatus(wrapper.Name)
			return nil
		}
	}

	*s = StatusPending
	return nil
}

// Terminal reports whether the status can no longer change.
func (s AppointmentStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled || s == StatusRejected
}

// Blocking reports whether an appointment in this status occupies its slot.
// Cancelled and rejected appointments release their time.
func (s AppointmentStatus) Blocking() bool {
	return s == StatusPending || s == StatusConfirmed || s == StatusCompleted
}

type WeeklySchedule struct {
	Weekday     int    `json:"weekday"` // 1=Monday .. 7=Sunday
	IsAvailable bool   `json:"is_available"`
	StartTime   string `json:"start_time"` // "HH:MM"
	EndTime     string `json:"end_time"`   // "HH:MM"
	MaxDaily    int    `json:"max_num"`    // 0 = unlimited
}

type TimeType string

const (
	TimeTypeAll    TimeType = "all"
	TimeTypeCustom TimeType = "custom"
)

type UnavailablePeriod struct {
	ID        int64    `json:"id"`
	StartDate string   `json:"start_date"` // "YYYY-MM-DD"
	EndDate   string   `json:"end_date"`
	TimeType  TimeType `json:"time_type"`
	StartTime string   `json:"start_time,omitempty"` // required when TimeType == custom
	EndTime   string   `json:"end_time,omitempty"`
	Reason    string   `json:"reason,omitempty"`
	Status    int      `json:"status"` // 1 = active
}

// Active reports whether the period is in effect.
func (p UnavailablePeriod) Active() bool {
	return p.Status == 1
}

// Covers reports whether the period's date range contains the given date.
func (p UnavailablePeriod) Covers(date time.Time) bool {
	day := date.Format("2006-01-02")
	return p.StartDate <= day && day <= p.EndDate
}

type AppointmentRecord struct {
	ID                         int64             `json:"id"`
	CounselorID                int64             `json:"counselor_id"`
	UserID                     int64             `json:"user_id"`
	AppointmentDate            time.Time         `json:"appointment_date"`
	EndTime                    *time.Time        `json:"end_time,omitempty"`
	Status                     AppointmentStatus `json:"status"`
	ConsultType                string            `json:"consult_type,omitempty"`
	ConsultMethod              string            `json:"consult_method,omitempty"`
	Description                string            `json:"description,omitempty"`
	Summary                    string            `json:"summary,omitempty"`
	Rating                     *int              `json:"rating,omitempty"`
	Review                     string            `json:"review,omitempty"`
	UserConfirmedComplete      bool              `json:"user_confirmed_complete"`
	CounselorConfirmedComplete bool              `json:"counselor_confirmed_complete"`
}

// Interval returns the appointment's occupied window. Appointments without
// an explicit end time occupy the default 60 minutes.
func (a AppointmentRecord) Interval() (start, end time.Time) {
	start = a.AppointmentDate
	if a.EndTime != nil && a.EndTime.After(start) {
		return start, *a.EndTime
	}
	return start, start.Add(60 * time.Minute)
}

// DaySlot is one bookable bucket of a counselor's day. Derived, never stored.
type DaySlot struct {
	Time      string `json:"time"` // "HH:MM"
	Available bool   `json:"available"`
}

// DailyStat is one day's consultation totals as reported by the backend.
type DailyStat struct {
	Date          string `json:"date"` // "YYYY-MM-DD"
	Count         int    `json:"count"`
	TotalDuration int    `json:"total_duration"` // minutes
}

// HourStat is one hour-of-day bucket for the day view.
type HourStat struct {
	Hour          int `json:"hour"`
	Count         int `json:"count"`
	TotalDuration int `json:"total_duration"` // minutes
}

// ActivityStats is the consultation-activity payload from the backend.
type ActivityStats struct {
	DailyStats           []DailyStat    `json:"daily_stats"`
	HourStats            []HourStat     `json:"hour_stats"`
	WeekStats            map[string]int `json:"week_stats"` // "0" = current week
	TimePeriodStats      map[string]int `json:"time_period_stats"`
	DurationDistribution map[string]int `json:"duration_distribution"`
}
