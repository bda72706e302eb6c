// Package insights serves canned productivity tips.
package insights

import (
	"math/rand"
	"sync"
	"time"

	domain "github.com/zenscore/zenscore/internal/app/domain/score"
)

// Messages is the fixed rotation of tips.
var Messages = []string{
	"Keep up your focus sessions! Consider deep work in the mornings.",
	"Use Pomodoro technique periodically for sustained focus.",
	"Well-balanced rest periods are helping productivity.",
	"Minimize distractions during peak hours.",
	"Balance work and rest for consistent performance.",
}

// Insight is a tip plus its recommendations.
type Insight struct {
	Insight         string                  `json:"insight"`
	Recommendations []domain.Recommendation `json:"recommendations"`
}

// Service picks tips uniformly at random.
type Service struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// New constructs an insight service. A nil source seeds from the clock.
func New(src rand.Source) *Service {
	if src == nil {
		src = rand.NewSource(time.Now().UnixNano())
	}
	return &Service{rng: rand.New(src)}
}

// GetInsight returns one tip and the standing schedule recommendation.
func (s *Service) GetInsight() Insight {
	s.mu.Lock()
	i := s.rng.Intn(len(Messages))
	s.mu.Unlock()

	return Insight{
		Insight: Messages[i],
		Recommendations: []domain.Recommendation{{
			Type:     domain.RecommendSchedule,
			Message:  "Schedule deep work in morning",
			Priority: domain.PriorityHigh,
		}},
	}
}
