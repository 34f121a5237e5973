package service

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"

	"heartcare-gateway/api"
	"heartcare-gateway/internal/availability"
	"heartcare-gateway/internal/cache"
	"heartcare-gateway/internal/calendar"
	"heartcare-gateway/internal/models"
	"heartcare-gateway/internal/rollup"
	"heartcare-gateway/internal/session"
	"heartcare-gateway/internal/timegrid"
	"heartcare-gateway/internal/upstream"
	"heartcare-gateway/pkg/response"
)

// Upstream is the slice of the REST backend the service depends on.
type Upstream interface {
	Login(ctx context.Context, account, password string) (*session.Session, error)
	Logout(ctx context.Context, token string) error

	AvailableSlots(ctx context.Context, token string, counselorID int64, date string) ([]models.DaySlot, error)
	Schedules(ctx context.Context, token string) ([]models.WeeklySchedule, error)
	SaveSchedules(ctx context.Context, token string, schedules []models.WeeklySchedule) error

	UnavailablePeriods(ctx context.Context, token string, skip, limit int) ([]models.UnavailablePeriod, error)
	CreateUnavailablePeriod(ctx context.Context, token string, period models.UnavailablePeriod) error
	UpdateUnavailablePeriod(ctx context.Context, token string, id int64, period models.UnavailablePeriod) error
	DeleteUnavailablePeriod(ctx context.Context, token string, id int64) error

	MyAppointments(ctx context.Context, token string) ([]models.AppointmentRecord, error)
	CreateAppointment(ctx context.Context, token string, req upstream.CreateAppointmentRequest) (json.RawMessage, error)
	UpdateAppointment(ctx context.Context, token string, id int64, req upstream.UpdateAppointmentRequest) (json.RawMessage, error)
	CancelAppointment(ctx context.Context, token string, id int64) error

	ConsultationActivity(ctx context.Context, token, role string) (*models.ActivityStats, error)
}

type Service struct {
	backend     Upstream
	cache       cache.Cache
	cacheTTL    time.Duration
	stepMinutes int
	horizonDays int
	now         func() time.Time
}

type Options struct {
	Cache       cache.Cache
	CacheTTL    time.Duration
	StepMinutes int
	HorizonDays int
	Now         func() time.Time
}

func NewService(backend Upstream, opts Options) *Service {
	if opts.StepMinutes <= 0 {
		opts.StepMinutes = availability.DefaultStepMinutes
	}
	if opts.HorizonDays <= 0 {
		opts.HorizonDays = 30
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Service{
		backend:     backend,
		cache:       opts.Cache,
		cacheTTL:    opts.CacheTTL,
		stepMinutes: opts.StepMinutes,
		horizonDays: opts.HorizonDays,
		now:         opts.Now,
	}
}

const dateLayout = "2006-01-02"

// ---- auth ----

func (s *Service) Login(ctx context.Context, req *api.LoginRequest) (*api.LoginResponse, error) {
	const op = "service.Login"

	sess, err := s.backend.Login(ctx, req.Account, req.Password)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &api.LoginResponse{
		AccessToken: sess.AccessToken,
		UserInfo:    sess.UserInfo,
	}, nil
}

func (s *Service) Logout(ctx context.Context, token string) error {
	const op = "service.Logout"

	if err := s.backend.Logout(ctx, token); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// ---- availability ----

// AvailableSlots returns the bookable start times for a counselor on a date,
// as resolved by the backend. An empty list means a full or unavailable day,
// never a fetch error.
func (s *Service) AvailableSlots(ctx context.Context, token string, counselorID int64, date string) ([]models.DaySlot, error) {
	const op = "service.AvailableSlots"

	if err := s.checkHorizon(date); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	cacheKey := fmt.Sprintf("slots:%d:%s", counselorID, date)
	if cached, ok := s.cacheGet(ctx, cacheKey); ok {
		var slots []models.DaySlot
		if err := json.Unmarshal(cached, &slots); err == nil {
			return slots, nil
		}
	}

	slots, err := s.backend.AvailableSlots(ctx, token, counselorID, date)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.cacheSet(ctx, cacheKey, slots)
	return slots, nil
}

// PreviewAvailability computes the authenticated counselor's own bookable
// slots for a date from their weekly schedule, their unavailable periods,
// and their existing appointments, without asking the backend to resolve.
func (s *Service) PreviewAvailability(ctx context.Context, token, date string) ([]models.DaySlot, error) {
	const op = "service.PreviewAvailability"

	target, err := time.ParseInLocation(dateLayout, date, time.Local)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", op, response.ErrBadRequest, err)
	}

	schedules, err := s.backend.Schedules(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	periods, err := s.backend.UnavailablePeriods(ctx, token, 0, 200)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	appointments, err := s.backend.MyAppointments(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	schedule := scheduleFor(schedules, isoWeekday(target))

	slots, err := availability.ResolveSlots(target, schedule, periods, appointments, s.stepMinutes)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return slots, nil
}

// ---- schedules ----

func (s *Service) Schedules(ctx context.Context, token string) ([]models.WeeklySchedule, error) {
	const op = "service.Schedules"

	schedules, err := s.backend.Schedules(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return schedules, nil
}

// SaveSchedules validates and stores weekday entries. At most one entry per
// weekday survives: a later entry for the same weekday overwrites the
// earlier one.
func (s *Service) SaveSchedules(ctx context.Context, token string, entries []api.ScheduleEntry) error {
	const op = "service.SaveSchedules"

	byWeekday := make(map[int]models.WeeklySchedule, len(entries))
	order := make([]int, 0, len(entries))

	for _, e := range entries {
		start, err := timegrid.ToMinutes(e.StartTime)
		if err != nil {
			return fmt.Errorf("%s: weekday %d: %w", op, e.Weekday, err)
		}
		end, err := timegrid.ToMinutes(e.EndTime)
		if err != nil {
			return fmt.Errorf("%s: weekday %d: %w", op, e.Weekday, err)
		}
		if start >= end {
			return fmt.Errorf("%s: weekday %d: %w: start_time must precede end_time", op, e.Weekday, response.ErrBadRequest)
		}

		if _, seen := byWeekday[e.Weekday]; !seen {
			order = append(order, e.Weekday)
		}
		byWeekday[e.Weekday] = models.WeeklySchedule{
			Weekday:     e.Weekday,
			IsAvailable: e.IsAvailable,
			StartTime:   e.StartTime,
			EndTime:     e.EndTime,
			MaxDaily:    e.MaxDaily,
		}
	}

	schedules := make([]models.WeeklySchedule, 0, len(order))
	for _, wd := range order {
		schedules = append(schedules, byWeekday[wd])
	}

	if err := s.backend.SaveSchedules(ctx, token, schedules); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// ---- unavailable periods ----

func (s *Service) UnavailablePeriods(ctx context.Context, token string, skip, limit int) ([]models.UnavailablePeriod, error) {
	const op = "service.UnavailablePeriods"

	if limit <= 0 {
		limit = 10
	}

	periods, err := s.backend.UnavailablePeriods(ctx, token, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return periods, nil
}

func (s *Service) CreateUnavailablePeriod(ctx context.Context, token string, req *api.UnavailablePeriodRequest) error {
	const op = "service.CreateUnavailablePeriod"

	period, err := periodFromRequest(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.backend.CreateUnavailablePeriod(ctx, token, period); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Service) UpdateUnavailablePeriod(ctx context.Context, token string, id int64, req *api.UnavailablePeriodRequest) error {
	const op = "service.UpdateUnavailablePeriod"

	period, err := periodFromRequest(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.backend.UpdateUnavailablePeriod(ctx, token, id, period); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Service) DeleteUnavailablePeriod(ctx context.Context, token string, id int64) error {
	const op = "service.DeleteUnavailablePeriod"

	if err := s.backend.DeleteUnavailablePeriod(ctx, token, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// ---- appointments ----

func (s *Service) MyAppointments(ctx context.Context, token string) ([]models.AppointmentRecord, error) {
	const op = "service.MyAppointments"

	records, err := s.backend.MyAppointments(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return records, nil
}

// CreateAppointment enforces the booking rules locally before anything goes
// upstream: date inside the horizon, start and end on the slot grid, 1-3
// hour duration, and the start present in the counselor's resolved
// availability. A violation costs no network call beyond the slot fetch.
func (s *Service) CreateAppointment(ctx context.Context, token string, req *api.CreateAppointmentRequest) (json.RawMessage, error) {
	const op = "service.CreateAppointment"

	if err := s.checkHorizon(req.Date); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	// Booking validates against a fresh upstream fetch, never the cache.
	slots, err := s.backend.AvailableSlots(ctx, token, req.CounselorID, req.Date)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := availability.ValidateBookingWindow(req.StartTime, req.EndTime, s.stepMinutes, slots); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	created, err := s.backend.CreateAppointment(ctx, token, upstream.CreateAppointmentRequest{
		CounselorID:     req.CounselorID,
		ConsultType:     req.ConsultType,
		ConsultMethod:   req.ConsultMethod,
		AppointmentDate: req.Date + "T" + req.StartTime + ":00",
		EndTime:         req.Date + "T" + req.EndTime + ":00",
		Description:     req.Description,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return created, nil
}

func (s *Service) UpdateAppointment(ctx context.Context, token string, id int64, req *api.UpdateAppointmentRequest) (json.RawMessage, error) {
	const op = "service.UpdateAppointment"

	updated, err := s.backend.UpdateAppointment(ctx, token, id, upstream.UpdateAppointmentRequest{
		Status:                     req.Status,
		Summary:                    req.Summary,
		UserConfirmedComplete:      req.UserConfirmedComplete,
		CounselorConfirmedComplete: req.CounselorConfirmedComplete,
		Rating:                     req.Rating,
		Review:                     req.Review,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return updated, nil
}

func (s *Service) CancelAppointment(ctx context.Context, token string, id int64) error {
	const op = "service.CancelAppointment"

	if err := s.backend.CancelAppointment(ctx, token, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// ---- calendar & activity ----

func (s *Service) Calendar(ctx context.Context, token string, year int, month time.Month) (calendar.MonthGrid, error) {
	const op = "service.Calendar"

	records, err := s.backend.MyAppointments(ctx, token)
	if err != nil {
		return calendar.MonthGrid{}, fmt.Errorf("%s: %w", op, err)
	}

	return calendar.BuildMonthGrid(year, month, records, s.now()), nil
}

// Activity builds one rollup view. The month view window follows the
// caller's (year, month) selection so the statistics stay in step with
// calendar navigation.
func (s *Service) Activity(ctx context.Context, token, role string, view rollup.ViewMode, year int, month time.Month) (rollup.Result, error) {
	const op = "service.Activity"

	var stats *models.ActivityStats

	// Key by a token digest so the credential never lands in the key space.
	cacheKey := fmt.Sprintf("activity:%s:%x", role, sha256.Sum256([]byte(token)))
	if cached, ok := s.cacheGet(ctx, cacheKey); ok {
		var decoded models.ActivityStats
		if err := json.Unmarshal(cached, &decoded); err == nil {
			stats = &decoded
		}
	}

	if stats == nil {
		var err error
		stats, err = s.backend.ConsultationActivity(ctx, token, role)
		if err != nil {
			return rollup.Result{}, fmt.Errorf("%s: %w", op, err)
		}
		s.cacheSet(ctx, cacheKey, stats)
	}

	return rollup.BuildView(stats, view, year, month, s.now()), nil
}

// ---- helpers ----

func (s *Service) checkHorizon(date string) error {
	target, err := time.ParseInLocation(dateLayout, date, time.Local)
	if err != nil {
		return fmt.Errorf("%w: date must be YYYY-MM-DD", response.ErrBadRequest)
	}

	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)

	if target.Before(today) {
		return response.ErrPastDate
	}
	if target.After(today.AddDate(0, 0, s.horizonDays)) {
		return response.ErrBeyondHorizon
	}

	return nil
}

func (s *Service) cacheGet(ctx context.Context, key string) ([]byte, bool) {
	if s.cache == nil {
		return nil, false
	}

	// Cache failures are invisible to callers; the upstream answer wins.
	data, ok, err := s.cache.Get(ctx, key)
	if err != nil || !ok {
		return nil, false
	}
	return data, true
}

func (s *Service) cacheSet(ctx context.Context, key string, value any) {
	if s.cache == nil {
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	_ = s.cache.Set(ctx, key, data, s.cacheTTL)
}

func scheduleFor(schedules []models.WeeklySchedule, weekday int) *models.WeeklySchedule {
	for i := range schedules {
		if schedules[i].Weekday == weekday {
			return &schedules[i]
		}
	}
	return nil
}

// isoWeekday maps time.Weekday to 1=Monday .. 7=Sunday.
func isoWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

func periodFromRequest(req *api.UnavailablePeriodRequest) (models.UnavailablePeriod, error) {
	if _, err := time.Parse(dateLayout, req.StartDate); err != nil {
		return models.UnavailablePeriod{}, fmt.Errorf("%w: invalid start_date", response.ErrBadRequest)
	}
	if _, err := time.Parse(dateLayout, req.EndDate); err != nil {
		return models.UnavailablePeriod{}, fmt.Errorf("%w: invalid end_date", response.ErrBadRequest)
	}
	if req.EndDate < req.StartDate {
		return models.UnavailablePeriod{}, fmt.Errorf("%w: end_date before start_date", response.ErrBadRequest)
	}

	timeType := models.TimeType(req.TimeType)
	if timeType == models.TimeTypeCustom {
		start, err := timegrid.ToMinutes(req.StartTime)
		if err != nil {
			return models.UnavailablePeriod{}, fmt.Errorf("%w: invalid start_time", response.ErrBadRequest)
		}
		end, err := timegrid.ToMinutes(req.EndTime)
		if err != nil {
			return models.UnavailablePeriod{}, fmt.Errorf("%w: invalid end_time", response.ErrBadRequest)
		}
		if start >= end {
			return models.UnavailablePeriod{}, fmt.Errorf("%w: start_time must precede end_time", response.ErrBadRequest)
		}
	}

	return models.UnavailablePeriod{
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		TimeType:  timeType,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Reason:    req.Reason,
		Status:    1,
	}, nil
}
