package insights

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/zenscore/zenscore/internal/app/domain/score"
)

func TestGetInsightFromRotation(t *testing.T) {
	svc := New(rand.NewSource(1))
	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		got := svc.GetInsight()
		assert.Contains(t, Messages, got.Insight)
		seen[got.Insight] = true

		require.Len(t, got.Recommendations, 1)
		rec := got.Recommendations[0]
		assert.Equal(t, domain.RecommendSchedule, rec.Type)
		assert.Equal(t, domain.PriorityHigh, rec.Priority)
		assert.Equal(t, "Schedule deep work in morning", rec.Message)
	}
	assert.Len(t, seen, len(Messages))
}

func TestGetInsightDeterministicWithSeed(t *testing.T) {
	a := New(rand.NewSource(42))
	b := New(rand.NewSource(42))
	for i := 0; i < 10; i++ {
		assert.Equal(t, a.GetInsight(), b.GetInsight())
	}
}

func TestNilSource(t *testing.T) {
	assert.NotEmpty(t, New(nil).GetInsight().Insight)
}
