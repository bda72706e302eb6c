package app

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zenscore/zenscore/internal/app/services/auth"
	"github.com/zenscore/zenscore/internal/app/services/sessions"
	"github.com/zenscore/zenscore/internal/app/system"
	"github.com/zenscore/zenscore/pkg/logger"
)

func TestNewDefaultsToMemory(t *testing.T) {
	application, err := New(Stores{}, Options{
		Auth:          auth.Options{Secret: "s3cret", BcryptCost: 4},
		InsightSource: rand.NewSource(7),
	}, logger.NewDiscard())
	require.NoError(t, err)

	ctx := context.Background()
	res, err := application.Auth.Register(ctx, auth.RegisterInput{Name: "Ada", Email: "ada@example.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = application.Sessions.Record(ctx, res.User.ID, sessions.Input{AppName: "Editor", Category: "productive", Duration: 30})
	require.NoError(t, err)

	current, err := application.Scores.Latest(ctx, res.User.ID)
	require.NoError(t, err)
	assert.Equal(t, 75, current)

	summary, err := application.Reporting.Summarize(ctx, res.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "100%", summary.FocusRate)
	assert.NotEmpty(t, application.Insights.GetInsight().Insight)
}

func TestNewRequiresSecret(t *testing.T) {
	_, err := New(Stores{}, Options{}, nil)
	assert.Error(t, err)
}

func TestLifecycle(t *testing.T) {
	application, err := New(Stores{}, Options{Auth: auth.Options{Secret: "x"}}, logger.NewDiscard())
	require.NoError(t, err)

	var stopped bool
	require.NoError(t, application.Attach(system.Func{
		ServiceName: "probe",
		OnStop:      func(context.Context) error { stopped = true; return nil },
	}))
	require.NoError(t, application.Start(context.Background()))
	require.NoError(t, application.Stop(context.Background()))
	assert.True(t, stopped)
}
