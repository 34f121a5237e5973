package rollup

import (
	"math"
	"sort"
	"strconv"
	"time"

	"heartcare-gateway/internal/models"
)

type ViewMode string

const (
	ViewDay   ViewMode = "day"
	ViewWeek  ViewMode = "week"
	ViewMonth ViewMode = "month"
)

func ParseViewMode(s string) (ViewMode, bool) {
	switch ViewMode(s) {
	case ViewDay, ViewWeek, ViewMonth:
		return ViewMode(s), true
	default:
		return "", false
	}
}

type TrendPoint struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

type ChartPoint struct {
	Label    string `json:"label"`
	Count    int    `json:"count"`
	Duration int    `json:"duration"` // minutes
}

// Result is one view over the consultation-activity payload.
// TotalDuration is in minutes for the day view and in rounded hours for the
// week and month views; AvgDuration is always minutes.
type Result struct {
	TotalConsultations int            `json:"total_consultations"`
	TotalDuration      int            `json:"total_duration"`
	AvgDuration        int            `json:"avg_duration"`
	TrendData          []TrendPoint   `json:"trend_data"`
	ChartData          []ChartPoint   `json:"chart_data"`
	PeriodData         map[string]int `json:"period_data"`
	DurationData       map[string]int `json:"duration_data"`
}

const dateLayout = "2006-01-02"

// BuildView rolls the raw activity payload up into one of the three view
// modes. year/month select the window for the month view and are ignored
// otherwise. A nil payload produces an all-zero result, never a panic: the
// caller renders that as an explicit "no data" state.
func BuildView(stats *models.ActivityStats, view ViewMode, year int, month time.Month, now time.Time) Result {
	empty := Result{
		TrendData:    []TrendPoint{},
		ChartData:    []ChartPoint{},
		PeriodData:   map[string]int{},
		DurationData: map[string]int{},
	}

	if stats == nil {
		return empty
	}

	var res Result
	switch view {
	case ViewDay:
		res = dayView(stats, now)
	case ViewWeek:
		res = weekView(stats, now)
	default:
		res = monthView(stats, year, month)
	}

	res.PeriodData = orEmpty(stats.TimePeriodStats)
	res.DurationData = orEmpty(stats.DurationDistribution)

	if len(res.ChartData) == 0 {
		res.ChartData = fallbackChart(stats.DailyStats, view)
	}
	if res.TrendData == nil {
		res.TrendData = []TrendPoint{}
	}
	if res.ChartData == nil {
		res.ChartData = []ChartPoint{}
	}

	return res
}

func dayView(stats *models.ActivityStats, now time.Time) Result {
	todayStr := now.Format(dateLayout)

	count := 0
	for _, d := range stats.DailyStats {
		if d.Date == todayStr {
			count = d.Count
			break
		}
	}

	totalDuration := 0
	chart := make([]ChartPoint, 0, len(stats.HourStats))
	for _, h := range stats.HourStats {
		totalDuration += h.TotalDuration
		chart = append(chart, ChartPoint{
			Label:    strconv.Itoa(h.Hour) + ":00",
			Count:    h.Count,
			Duration: h.TotalDuration,
		})
	}

	return Result{
		TotalConsultations: count,
		TotalDuration:      totalDuration, // minutes
		AvgDuration:        avgDuration(totalDuration, count),
		TrendData:          dailyTrend(stats.DailyStats, 7),
		ChartData:          chart,
	}
}

func weekView(stats *models.ActivityStats, now time.Time) Result {
	weekStart := mondayOf(now)
	weekEnd := weekStart.AddDate(0, 0, 6)

	count, durationMin := 0, 0
	var chart []ChartPoint

	for _, d := range stats.DailyStats {
		date, err := time.ParseInLocation(dateLayout, d.Date, now.Location())
		if err != nil {
			continue
		}
		if date.Before(weekStart) || date.After(weekEnd) {
			continue
		}

		count += d.Count
		durationMin += d.TotalDuration
		chart = append(chart, ChartPoint{
			Label:    strconv.Itoa(date.Day()),
			Count:    d.Count,
			Duration: d.TotalDuration,
		})
	}

	return Result{
		TotalConsultations: count,
		TotalDuration:      roundedHours(durationMin),
		AvgDuration:        avgDuration(durationMin, count),
		TrendData:          weeklyTrend(stats.WeekStats, 4),
		ChartData:          chart,
	}
}

func monthView(stats *models.ActivityStats, year int, month time.Month) Result {
	count, durationMin := 0, 0
	var chart []ChartPoint

	for _, d := range stats.DailyStats {
		date, err := time.Parse(dateLayout, d.Date)
		if err != nil {
			continue
		}
		if date.Year() != year || date.Month() != month {
			continue
		}

		count += d.Count
		durationMin += d.TotalDuration
		chart = append(chart, ChartPoint{
			Label:    strconv.Itoa(date.Day()),
			Count:    d.Count,
			Duration: d.TotalDuration,
		})
	}

	return Result{
		TotalConsultations: count,
		TotalDuration:      roundedHours(durationMin),
		AvgDuration:        avgDuration(durationMin, count),
		TrendData:          dailyTrend(stats.DailyStats, 30),
		ChartData:          chart,
	}
}

// fallbackChart keeps the chart from rendering fully blank: when the primary
// source for a view is empty, the most recent raw daily entries stand in
// (7, 14, or 30 of them by view mode).
func fallbackChart(daily []models.DailyStat, view ViewMode) []ChartPoint {
	if len(daily) == 0 {
		return nil
	}

	n := 30
	switch view {
	case ViewDay:
		n = 7
	case ViewWeek:
		n = 14
	}
	if len(daily) < n {
		n = len(daily)
	}

	out := make([]ChartPoint, 0, n)
	for _, d := range daily[len(daily)-n:] {
		label := d.Date
		if len(label) > 5 {
			label = label[5:] // "MM-DD"
		}
		out = append(out, ChartPoint{Label: label, Count: d.Count, Duration: d.TotalDuration})
	}

	return out
}

func dailyTrend(daily []models.DailyStat, n int) []TrendPoint {
	if len(daily) < n {
		n = len(daily)
	}

	out := make([]TrendPoint, 0, n)
	for _, d := range daily[len(daily)-n:] {
		out = append(out, TrendPoint{Label: d.Date, Count: d.Count})
	}

	return out
}

// weeklyTrend takes the n most recent week buckets, oldest first.
// Bucket keys count weeks back from today: "0" is the current week.
func weeklyTrend(weeks map[string]int, n int) []TrendPoint {
	if len(weeks) == 0 {
		return nil
	}

	nums := make([]int, 0, len(weeks))
	for k := range weeks {
		if num, err := strconv.Atoi(k); err == nil {
			nums = append(nums, num)
		}
	}
	sort.Ints(nums)

	if len(nums) > n {
		nums = nums[:n]
	}

	out := make([]TrendPoint, 0, len(nums))
	for i := len(nums) - 1; i >= 0; i-- {
		out = append(out, TrendPoint{
			Label: "week " + strconv.Itoa(nums[i]),
			Count: weeks[strconv.Itoa(nums[i])],
		})
	}

	return out
}

// mondayOf returns midnight of the Monday of the week containing t.
func mondayOf(t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	shift := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -shift)
}

func avgDuration(totalMinutes, count int) int {
	if count == 0 {
		return 0
	}
	return int(math.Round(float64(totalMinutes) / float64(count)))
}

func roundedHours(minutes int) int {
	return int(math.Round(float64(minutes) / 60))
}

func orEmpty(m map[string]int) map[string]int {
	if m == nil {
		return map[string]int{}
	}
	return m
}
