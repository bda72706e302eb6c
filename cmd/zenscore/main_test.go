package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zenscore/zenscore/internal/config"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "dev\n", out)
}

func TestParseSteps(t *testing.T) {
	steps, err := parseSteps(nil)
	require.NoError(t, err)
	assert.Equal(t, 1, steps)

	steps, err = parseSteps([]string{"3"})
	require.NoError(t, err)
	assert.Equal(t, 3, steps)

	_, err = parseSteps([]string{"0"})
	assert.Error(t, err)
	_, err = parseSteps([]string{"two"})
	assert.Error(t, err)
}

func TestApplyAddr(t *testing.T) {
	var server config.ServerConfig
	require.NoError(t, applyAddr(&server, "127.0.0.1:8080"))
	assert.Equal(t, "127.0.0.1", server.Host)
	assert.Equal(t, 8080, server.Port)

	assert.Error(t, applyAddr(&server, "localhost"))
	assert.Error(t, applyAddr(&server, ":99999"))
}

func TestMigrateLifecycle(t *testing.T) {
	t.Setenv("ZENSCORE_CONFIG_PATH", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("DATABASE_URL", filepath.Join(t.TempDir(), "zenscore.db"))

	out, err := execute(t, "migrate", "up")
	require.NoError(t, err)
	assert.Contains(t, out, "migrations applied")

	out, err = execute(t, "migrate", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "dirty: false")
	assert.NotContains(t, out, "version 0 ")

	out, err = execute(t, "migrate", "down")
	require.NoError(t, err)
	assert.Contains(t, out, "rolled back 1 migration(s)")

	_, err = execute(t, "migrate", "down", "nope")
	assert.Error(t, err)
}

func TestMigrateRejectsUnknownDriver(t *testing.T) {
	t.Setenv("ZENSCORE_CONFIG_PATH", "")
	t.Setenv("DATABASE_DRIVER", "mysql")
	_, err := execute(t, "migrate", "up")
	assert.Error(t, err)
}
