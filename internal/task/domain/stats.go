package domain

import "time"

// Keys are unpadded ("2024-5-9"), the form the web client writes.
const (
	dayKeyLayout   = "2006-1-2"
	monthKeyLayout = "2006-1"
)

// Counts is a completed/total pair for one day or month
type Counts struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
}

// Stats is the per-user rollup stored at users/{uid}/stats/taskStats
type Stats struct {
	Daily   map[string]Counts `json:"daily"`
	Monthly map[string]Counts `json:"monthly"`
}

func NewStats() *Stats {
	return &Stats{
		Daily:   map[string]Counts{},
		Monthly: map[string]Counts{},
	}
}

func DayKey(t time.Time) string   { return t.Format(dayKeyLayout) }
func MonthKey(t time.Time) string { return t.Format(monthKeyLayout) }

// CanonicalDayKey accepts padded or unpadded day keys and returns the
// DayKey form.
func CanonicalDayKey(key string) (string, bool) {
	t, err := time.Parse(dayKeyLayout, key)
	if err != nil {
		return "", false
	}
	return DayKey(t), true
}

func CanonicalMonthKey(key string) (string, bool) {
	t, err := time.Parse(monthKeyLayout, key)
	if err != nil {
		return "", false
	}
	return MonthKey(t), true
}

// TrendPoint is one day of the completion trend
type TrendPoint struct {
	Date      string `json:"date"`
	Completed int    `json:"completed"`
	Total     int    `json:"total"`
}

// Trend returns the trailing days ending at now, oldest first. Days without
// a record are zero.
func (s *Stats) Trend(now time.Time, days int) []TrendPoint {
	points := make([]TrendPoint, 0, days)
	for i := days - 1; i >= 0; i-- {
		key := DayKey(now.AddDate(0, 0, -i))
		c := s.Daily[key]
		points = append(points, TrendPoint{Date: key, Completed: c.Completed, Total: c.Total})
	}
	return points
}

// UncategorizedLabel groups tasks without a category in analytics.
const UncategorizedLabel = "uncategorized"

// Analytics summarizes every task a user owns, archived ones included
type Analytics struct {
	Total          int               `json:"total"`
	Completed      int               `json:"completed"`
	Overdue        int               `json:"overdue"`
	CompletionRate float64           `json:"completion_rate"`
	ByCategory     map[string]Counts `json:"by_category"`
	ByPriority     map[string]int    `json:"by_priority"`
	Trend          []TrendPoint      `json:"trend"`
}

// ComputeAnalytics aggregates tasks and merges the daily trend from stats.
func ComputeAnalytics(tasks []*Task, stats *Stats, now time.Time) *Analytics {
	a := &Analytics{
		ByCategory: map[string]Counts{},
		ByPriority: map[string]int{},
	}
	for _, t := range tasks {
		a.Total++
		if t.Completed {
			a.Completed++
		}
		if t.IsOverdue(now) {
			a.Overdue++
		}
		category := t.Category
		if category == "" {
			category = UncategorizedLabel
		}
		c := a.ByCategory[category]
		c.Total++
		if t.Completed {
			c.Completed++
		}
		a.ByCategory[category] = c

		priority := t.Priority
		if !priority.Valid() {
			priority = PriorityMedium
		}
		a.ByPriority[priority.Label()]++
	}
	if a.Total > 0 {
		a.CompletionRate = float64(a.Completed) / float64(a.Total)
	}
	if stats == nil {
		stats = NewStats()
	}
	a.Trend = stats.Trend(now, 7)
	return a
}
