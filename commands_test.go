package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nholding/rate-calendar/internal/config"
)

func runCmd(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})

	err := cmd.Execute()
	return out.String(), err
}

func TestProcess_Stdin(t *testing.T) {
	out, err := runCmd(t, `[{"periodStart":"2021-01-05","periodEnd":"2021-01-06","rate":"10"}]`, "process")
	require.NoError(t, err)

	assert.JSONEq(t, `{"data":[{"periodStart":"2021-01-05","periodEnd":"2021-01-06","rate":"10.00","colorCode":"c0b3c9"}]}`, out)
}

func TestProcess_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "batch.json")
	require.NoError(t, os.WriteFile(path, []byte(`[]`), 0o600))

	out, err := runCmd(t, "", "process", path)
	require.NoError(t, err)

	assert.Equal(t, "{\"data\":[]}\n", out)
}

func TestProcess_RejectedBatch(t *testing.T) {
	out, err := runCmd(t, `[{"rate":"1"}]`, "process", "-")

	assert.ErrorIs(t, err, errBatchRejected)
	assert.JSONEq(t, `{"errors":[{"msg":"Missing date period.","data":"{\"rate\":\"1\"}"}]}`, out)
}

func TestProcess_MissingFile(t *testing.T) {
	_, err := runCmd(t, "", "process", filepath.Join(t.TempDir(), "nope.json"))

	assert.ErrorContains(t, err, "read batch file")
}

func TestProcess_InvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ratecal.yaml")
	require.NoError(t, os.WriteFile(path, []byte("calendar:\n  time_zone: Nowhere/Special\n"), 0o600))

	_, err := runCmd(t, `[]`, "--config", path, "process")

	assert.ErrorContains(t, err, "calendar.time_zone")
}

func TestVersion(t *testing.T) {
	out, err := runCmd(t, "", "version")
	require.NoError(t, err)

	assert.Equal(t, "ratecal dev\n", out)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer

	logger := newLogger(config.LogConfig{Level: "warn", Format: "json"}, &buf)
	logger.Info("hidden")
	logger.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
}
