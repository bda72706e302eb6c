package score

import "time"

// Recommendation types and priorities.
const (
	RecommendSchedule = "schedule"
	RecommendBreak    = "break"
	RecommendFocus    = "focus"
	RecommendHabit    = "habit"
	RecommendTool     = "tool"

	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// Productivity trend labels.
const (
	TrendImproving = "improving"
	TrendDeclining = "declining"
	TrendStable    = "stable"
)

// Snapshot is one immutable point-in-time score for an account.
type Snapshot struct {
	ID        string     `json:"id"`
	AccountID string     `json:"userId"`
	Date      time.Time  `json:"date"`
	Score     int        `json:"score"`
	Breakdown *Breakdown `json:"breakdown,omitempty"`
	Metrics   *Metrics   `json:"metrics,omitempty"`
	Insights  *Insights  `json:"insights,omitempty"`
}

// Breakdown is the percentage of tracked time per category.
type Breakdown struct {
	Productive  int `json:"productive"`
	Restful     int `json:"restful"`
	Neutral     int `json:"neutral"`
	Distractive int `json:"distractive"`
}

// Metrics are rolled-up figures at snapshot time. Times are in minutes.
type Metrics struct {
	TotalSessions        int     `json:"totalSessions"`
	TotalTime            int     `json:"totalTime"`
	ProductiveTime       int     `json:"productiveTime"`
	FocusRate            int     `json:"focusRate"`
	AverageSessionLength float64 `json:"averageSessionLength"`
}

type Insights struct {
	AIGenerated     string           `json:"aiGenerated,omitempty"`
	Recommendations []Recommendation `json:"recommendations,omitempty"`
	Trends          *Trends          `json:"trends,omitempty"`
}

type Recommendation struct {
	Type     string `json:"type"`
	Message  string `json:"message"`
	Priority string `json:"priority"`
	Category string `json:"category,omitempty"`
}

type Trends struct {
	ScoreChange         int      `json:"scoreChange"`
	ProductivityTrend   string   `json:"productivityTrend"`
	PeakHours           []string `json:"peakHours,omitempty"`
	DistractionTriggers []string `json:"distractionTriggers,omitempty"`
}

// Clamp bounds v to the closed percentage range [0, 100].
func Clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
