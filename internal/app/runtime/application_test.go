package runtime

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zenscore/zenscore/internal/config"
	"github.com/zenscore/zenscore/pkg/logger"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Database.DSN = ":memory:"
	cfg.Auth.JWTSecret = "runtime-secret"
	cfg.Auth.BcryptCost = 4
	cfg.Server.Host = "127.0.0.1"
	return &cfg
}

func TestNewApplicationServesAPI(t *testing.T) {
	ctx := context.Background()
	a, err := NewApplication(ctx, testConfig(), logger.NewDiscard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Shutdown(ctx) })

	body, _ := json.Marshal(map[string]string{"name": "Ada", "email": "ada@example.com", "password": "secret1"})
	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/auth/signup", bytes.NewReader(body)))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var res struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))

	body, _ = json.Marshal(map[string]interface{}{"appName": "Editor", "category": "productive", "duration": 45})
	req := httptest.NewRequest(http.MethodPost, "/api/sessions", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+res.Token)
	rec = httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	req.Header.Set("Authorization", "Bearer "+res.Token)
	rec = httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"totalDuration":"0h 45m"`)
	assert.Contains(t, rec.Body.String(), `"focusRate":"100%"`)

	rec = httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestNewApplicationRejectsBadDriver(t *testing.T) {
	cfg := testConfig()
	cfg.Database.Driver = "mysql"
	_, err := NewApplication(context.Background(), cfg, logger.NewDiscard())
	assert.Error(t, err)

	_, err = NewApplication(context.Background(), nil, nil)
	assert.Error(t, err)
}

func TestServeAndShutdown(t *testing.T) {
	a, err := NewApplication(context.Background(), testConfig(), logger.NewDiscard())
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Serve(ctx, ln) }()

	url := "http://" + ln.Addr().String() + "/healthz"
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
	require.NoError(t, a.Shutdown(context.Background()))

	_, err = http.Get(url)
	assert.Error(t, err)
}
