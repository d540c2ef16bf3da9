package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/launchdarkly/app-test-harness/apptest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRequestCommandRoutedRequest(t *testing.T) {
	out, err := execute(t, "request", "GET", "/Kiki")
	require.NoError(t, err)
	assert.Contains(t, out, "200 (Application.index)")
	assert.Contains(t, out, "Content-Type: text/html; charset=utf-8")
	assert.Contains(t, out, "Hello Kiki")
}

func TestRequestCommandJSONBody(t *testing.T) {
	out, err := execute(t, "request", "POST", "/json", "--json", `{"key1":"val1","key2":2}`)
	require.NoError(t, err)
	assert.Contains(t, out, `{"key1":"val1","key2":2}`)
}

func TestRequestCommandAsyncAction(t *testing.T) {
	out, err := execute(t, "request", "get", "/async")
	require.NoError(t, err)
	assert.Contains(t, out, "Header_test: header_val", "header names are printed in canonical form")
	assert.Contains(t, out, "Session[session_test]: session_val")
	assert.Contains(t, out, "Flash[flash_test]: flash_val")
	assert.Contains(t, out, "Set-Cookie: cookie_test=cookie_val")
	assert.Contains(t, out, "success")
}

func TestRequestCommandHeaders(t *testing.T) {
	out, err := execute(t, "request", "POST", "/register", "-H", "Accept-Language=fr")
	require.NoError(t, err)
	assert.Contains(t, out, "400 (Application.register)")
	assert.Contains(t, out, "Ce champ est obligatoire")

	_, err = execute(t, "request", "GET", "/", "-H", "no-equals-sign")
	assert.Error(t, err)
}

func TestRequestCommandErrors(t *testing.T) {
	_, err := execute(t, "request", "GET", "/xx/Kiki")
	assert.ErrorContains(t, err, "no route")

	_, err = execute(t, "request", "BREW", "/")
	var ime *apptest.InvalidMethodError
	assert.True(t, errors.As(err, &ime))

	_, err = execute(t, "request", "POST", "/json", "--json", "{")
	assert.ErrorContains(t, err, "invalid --json body")

	_, err = execute(t, "request", "GET")
	assert.Error(t, err)

	_, err = execute(t, "request", "GET", "/", "--timeout", "0s")
	assert.Error(t, err)
}

func TestRequestCommandConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: custom\nvalues:\n  key: fromfile\n"), 0o600))
	out, err := execute(t, "request", "GET", "/key", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "fromfile")
}

func TestEnvironmentVariablesSetFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.yaml")
	require.NoError(t, os.WriteFile(path, []byte("values:\n  key: fromenv\n"), 0o600))
	t.Setenv("APPTEST_CONFIG", path)
	out, err := execute(t, "request", "GET", "/key")
	require.NoError(t, err)
	assert.Contains(t, out, "fromenv")
}

func TestRunCommand(t *testing.T) {
	junitFile := filepath.Join(t.TempDir(), "results.xml")
	out, err := execute(t, "run", "--no-server", "--run", "app tests/route index", "--junit", junitFile)
	require.NoError(t, err)
	assert.Contains(t, out, "app-test-harness v"+version())
	assert.Contains(t, out, "[app tests/route index]")
	assert.Contains(t, out, "All tests passed")

	data, err := os.ReadFile(junitFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "route index")
}

func TestRunCommandRejectsBadPattern(t *testing.T) {
	_, err := execute(t, "run", "--run", "(")
	assert.Error(t, err)
}
