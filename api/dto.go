package api

import "encoding/json"

// DefaultScheduleWindow is the window the schedule editor seeds new weekday
// entries with.
var DefaultScheduleWindow = struct {
	StartTime string
	EndTime   string
}{StartTime: "08:00", EndTime: "22:00"}

type LoginRequest struct {
	Account  string `json:"account" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	AccessToken string          `json:"access_token"`
	UserInfo    json.RawMessage `json:"user_info,omitempty"`
}

type ScheduleEntry struct {
	Weekday     int    `json:"weekday" validate:"required,min=1,max=7"`
	IsAvailable bool   `json:"is_available"`
	StartTime   string `json:"start_time" validate:"required"`
	EndTime     string `json:"end_time" validate:"required"`
	MaxDaily    int    `json:"max_num" validate:"min=0"`
}

type SaveSchedulesRequest struct {
	Schedules []ScheduleEntry `json:"schedules" validate:"required,min=1,dive"`
}

type UnavailablePeriodRequest struct {
	StartDate string `json:"start_date" validate:"required"`
	EndDate   string `json:"end_date" validate:"required"`
	TimeType  string `json:"time_type" validate:"required,oneof=all custom"`
	StartTime string `json:"start_time,omitempty"`
	EndTime   string `json:"end_time,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

type CreateAppointmentRequest struct {
	CounselorID   int64  `json:"counselor_id" validate:"required"`
	ConsultType   string `json:"consult_type" validate:"required"`
	ConsultMethod string `json:"consult_method" validate:"required"`
	Date          string `json:"date" validate:"required"`       // "YYYY-MM-DD"
	StartTime     string `json:"start_time" validate:"required"` // "HH:MM"
	EndTime       string `json:"end_time" validate:"required"`   // "HH:MM"
	Description   string `json:"description,omitempty"`
}

type UpdateAppointmentRequest struct {
	Status                     string `json:"status,omitempty" validate:"omitempty,oneof=pending confirmed completed cancelled rejected"`
	Summary                    string `json:"summary,omitempty"`
	UserConfirmedComplete      *bool  `json:"user_confirmed_complete,omitempty"`
	CounselorConfirmedComplete *bool  `json:"counselor_confirmed_complete,omitempty"`
	Rating                     *int   `json:"rating,omitempty" validate:"omitempty,min=1,max=5"`
	Review                     string `json:"review,omitempty"`
}
