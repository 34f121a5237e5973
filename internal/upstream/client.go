package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"heartcare-gateway/internal/models"
	"heartcare-gateway/internal/session"
	"heartcare-gateway/pkg/response"

	"github.com/google/uuid"
)

// Error is an upstream failure with the backend's user-facing detail
// attached. IsNetwork marks transport-level failures where no HTTP response
// arrived at all, as opposed to application-level 4xx/5xx.
type Error struct {
	Status    int
	Detail    string
	IsNetwork bool
	err       error
}

func (e *Error) Error() string {
	if e.IsNetwork {
		return fmt.Sprintf("upstream unreachable: %s", e.Detail)
	}
	return fmt.Sprintf("upstream %d: %s", e.Status, e.Detail)
}

func (e *Error) Unwrap() error { return e.err }

// Client talks to the counseling platform's REST backend. Every call accepts
// the caller's bearer token; an empty token falls back to the stored session.
// An upstream 401 clears the session before the error is returned.
type Client struct {
	baseURL    string
	http       *http.Client
	sessions   *session.Store
	retryDelay time.Duration
}

func New(baseURL string, timeout, retryDelay time.Duration, sessions *session.Store) *Client {
	return &Client{
		baseURL:    baseURL,
		http:       &http.Client{Timeout: timeout},
		sessions:   sessions,
		retryDelay: retryDelay,
	}
}

// ---- auth ----

func (c *Client) Login(ctx context.Context, account, password string) (*session.Session, error) {
	const op = "upstream.Client.Login"

	body := map[string]string{"account": account, "password": password}

	var raw json.RawMessage
	if err := c.do(ctx, http.MethodPost, "/auth/login", nil, "", body, nil, &raw); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var tok struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(raw, &tok); err != nil || tok.AccessToken == "" {
		return nil, fmt.Errorf("%s: login response has no access_token", op)
	}

	sess := &session.Session{AccessToken: tok.AccessToken, UserInfo: raw}
	if err := c.sessions.Save(*sess); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return sess, nil
}

func (c *Client) Logout(ctx context.Context, token string) error {
	const op = "upstream.Client.Logout"

	// The session is dropped regardless of what upstream says: logging out
	// locally must always succeed.
	err := c.do(ctx, http.MethodPost, "/auth/logout", nil, token, nil, nil, nil)
	if clearErr := c.sessions.Clear(); clearErr != nil {
		return fmt.Errorf("%s: %w", op, clearErr)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// ---- counselors ----

func (c *Client) AvailableSlots(ctx context.Context, token string, counselorID int64, date string) ([]models.DaySlot, error) {
	const op = "upstream.Client.AvailableSlots"

	var payload struct {
		AvailableSlots []struct {
			Time      string `json:"time"`
			Available *bool  `json:"available"`
		} `json:"available_slots"`
	}

	q := url.Values{"date": {date}}
	path := fmt.Sprintf("/counselors/%d/available-slots", counselorID)
	if err := c.do(ctx, http.MethodGet, path, q, token, nil, nil, &payload); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	slots := make([]models.DaySlot, 0, len(payload.AvailableSlots))
	for _, s := range payload.AvailableSlots {
		// Older backend builds omit the flag on entries that are all bookable.
		available := s.Available == nil || *s.Available
		slots = append(slots, models.DaySlot{Time: s.Time, Available: available})
	}

	return slots, nil
}

func (c *Client) Schedules(ctx context.Context, token string) ([]models.WeeklySchedule, error) {
	const op = "upstream.Client.Schedules"

	var payload struct {
		Schedules []models.WeeklySchedule `json:"schedules"`
	}

	if err := c.do(ctx, http.MethodGet, "/counselors/schedules", nil, token, nil, nil, &payload); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return payload.Schedules, nil
}

func (c *Client) SaveSchedules(ctx context.Context, token string, schedules []models.WeeklySchedule) error {
	const op = "upstream.Client.SaveSchedules"

	body := map[string]any{"schedules": schedules}
	if err := c.do(ctx, http.MethodPost, "/counselors/schedules", nil, token, body, nil, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (c *Client) UnavailablePeriods(ctx context.Context, token string, skip, limit int) ([]models.UnavailablePeriod, error) {
	const op = "upstream.Client.UnavailablePeriods"

	var payload struct {
		Periods []models.UnavailablePeriod `json:"periods"`
	}

	q := url.Values{
		"skip":  {strconv.Itoa(skip)},
		"limit": {strconv.Itoa(limit)},
	}
	if err := c.do(ctx, http.MethodGet, "/counselors/unavailable", q, token, nil, nil, &payload); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return payload.Periods, nil
}

func (c *Client) CreateUnavailablePeriod(ctx context.Context, token string, period models.UnavailablePeriod) error {
	const op = "upstream.Client.CreateUnavailablePeriod"

	if err := c.do(ctx, http.MethodPost, "/counselors/unavailable", nil, token, period, nil, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (c *Client) UpdateUnavailablePeriod(ctx context.Context, token string, id int64, period models.UnavailablePeriod) error {
	const op = "upstream.Client.UpdateUnavailablePeriod"

	path := fmt.Sprintf("/counselors/unavailable/%d", id)
	if err := c.do(ctx, http.MethodPut, path, nil, token, period, nil, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (c *Client) DeleteUnavailablePeriod(ctx context.Context, token string, id int64) error {
	const op = "upstream.Client.DeleteUnavailablePeriod"

	path := fmt.Sprintf("/counselors/unavailable/%d", id)
	if err := c.do(ctx, http.MethodDelete, path, nil, token, nil, nil, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// ---- appointments ----

func (c *Client) MyAppointments(ctx context.Context, token string) ([]models.AppointmentRecord, error) {
	const op = "upstream.Client.MyAppointments"

	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/appointments/my-appointments", nil, token, nil, nil, &raw); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	records, err := unwrapRecords(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return records, nil
}

type CreateAppointmentRequest struct {
	CounselorID     int64  `json:"counselor_id"`
	ConsultType     string `json:"consult_type"`
	ConsultMethod   string `json:"consult_method"`
	AppointmentDate string `json:"appointment_date"`
	EndTime         string `json:"end_time,omitempty"`
	Description     string `json:"description,omitempty"`
}

func (c *Client) CreateAppointment(ctx context.Context, token string, req CreateAppointmentRequest) (json.RawMessage, error) {
	const op = "upstream.Client.CreateAppointment"

	headers := map[string]string{"Idempotency-Key": uuid.NewString()}

	var raw json.RawMessage
	if err := c.do(ctx, http.MethodPost, "/appointments/create", nil, token, req, headers, &raw); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return raw, nil
}

type UpdateAppointmentRequest struct {
	Status                     string `json:"status,omitempty"`
	Summary                    string `json:"summary,omitempty"`
	UserConfirmedComplete      *bool  `json:"user_confirmed_complete,omitempty"`
	CounselorConfirmedComplete *bool  `json:"counselor_confirmed_complete,omitempty"`
	Rating                     *int   `json:"rating,omitempty"`
	Review                     string `json:"review,omitempty"`
}

func (c *Client) UpdateAppointment(ctx context.Context, token string, id int64, req UpdateAppointmentRequest) (json.RawMessage, error) {
	const op = "upstream.Client.UpdateAppointment"

	var raw json.RawMessage
	path := fmt.Sprintf("/appointments/%d", id)
	if err := c.do(ctx, http.MethodPut, path, nil, token, req, nil, &raw); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return raw, nil
}

func (c *Client) CancelAppointment(ctx context.Context, token string, id int64) error {
	const op = "upstream.Client.CancelAppointment"

	path := fmt.Sprintf("/appointments/%d", id)
	if err := c.do(ctx, http.MethodDelete, path, nil, token, nil, nil, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// ---- statistics ----

// ConsultationActivity loads the activity payload for the given role
// ("user" or "counselor"). This is one of the two calls allowed a single
// blind retry: transport failures get one more attempt after a fixed delay,
// HTTP-level errors never do.
func (c *Client) ConsultationActivity(ctx context.Context, token, role string) (*models.ActivityStats, error) {
	const op = "upstream.Client.ConsultationActivity"

	path := "/users/stats/consultation-activity"
	if role == "counselor" {
		path = "/counselors/stats/consultation-activity"
	}

	var stats models.ActivityStats
	err := c.do(ctx, http.MethodGet, path, nil, token, nil, nil, &stats)
	if err != nil && IsNetworkError(err) {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%s: %w", op, ctx.Err())
		case <-time.After(c.retryDelay):
		}
		err = c.do(ctx, http.MethodGet, path, nil, token, nil, nil, &stats)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &stats, nil
}

// IsNetworkError reports whether err is a transport-level upstream failure
// (no HTTP response at all).
func IsNetworkError(err error) bool {
	var ue *Error
	return errors.As(err, &ue) && ue.IsNetwork
}

// ---- plumbing ----

func (c *Client) do(ctx context.Context, method, path string, query url.Values, token string, body any, headers map[string]string, out any) error {
	const op = "upstream.Client.do"

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		reqBody = bytes.NewReader(data)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	req.Header.Set("Content-Type", "application/json")
	if token == "" && c.sessions != nil {
		token = c.sessions.Token()
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, &Error{
			Detail:    err.Error(),
			IsNetwork: true,
			err:       response.ErrUpstreamDown,
		})
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s: %w", op, &Error{
			Detail:    err.Error(),
			IsNetwork: true,
			err:       response.ErrUpstreamDown,
		})
	}

	if resp.StatusCode >= 400 {
		detail := extractDetail(data, resp.Status)

		var sentinel error
		switch resp.StatusCode {
		case http.StatusUnauthorized:
			// Token considered expired: drop the stored session.
			if c.sessions != nil {
				_ = c.sessions.Clear()
			}
			sentinel = response.ErrUnauthorized
		case http.StatusForbidden:
			sentinel = response.ErrForbidden
		case http.StatusNotFound:
			sentinel = response.ErrNotFound
		case http.StatusBadRequest, http.StatusUnprocessableEntity:
			// Upstream rejected the payload; the caller's request is at
			// fault, not the upstream link.
			sentinel = response.ErrBadRequest
		default:
			sentinel = response.ErrUpstream
		}

		return fmt.Errorf("%s: %w", op, &Error{
			Status: resp.StatusCode,
			Detail: detail,
			err:    sentinel,
		})
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("%s: decode response: %w", op, err)
		}
	}

	return nil
}

// extractDetail pulls the user-facing message from the backend's error
// envelope: detail may be a bare string or an array of {msg} objects; when
// neither fits, the transport status text stands in.
func extractDetail(data []byte, fallback string) string {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil || len(envelope.Detail) == 0 {
		return fallback
	}

	var s string
	if err := json.Unmarshal(envelope.Detail, &s); err == nil && s != "" {
		return s
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(envelope.Detail, &items); err == nil && len(items) > 0 && items[0].Msg != "" {
		return items[0].Msg
	}

	return fallback
}

// unwrapRecords accepts the three list shapes the backend is known to send:
// a bare array, {"records": [...]}, or {"data": [...]}.
func unwrapRecords(data []byte) ([]models.AppointmentRecord, error) {
	if len(data) == 0 {
		return []models.AppointmentRecord{}, nil
	}

	var bare []models.AppointmentRecord
	if err := json.Unmarshal(data, &bare); err == nil {
		return bare, nil
	}

	var wrapped struct {
		Records []models.AppointmentRecord `json:"records"`
		Data    []models.AppointmentRecord `json:"data"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, err
	}

	if wrapped.Records != nil {
		return wrapped.Records, nil
	}
	if wrapped.Data != nil {
		return wrapped.Data, nil
	}

	return []models.AppointmentRecord{}, nil
}
