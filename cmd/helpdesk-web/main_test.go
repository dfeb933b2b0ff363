package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func TestRoutesCommand(t *testing.T) {
	out := execute(t, "routes")

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Greater(t, len(lines), 30)
	assert.Contains(t, lines[0], "HANDLER")
	assert.Regexp(t, `public\s+POST\s+/login\s+auth\.login\s+-`, out)
	assert.Regexp(t, `admin\s+GET\s+/users\s+users\.list\s+auth,admin`, out)
	assert.Regexp(t, `protected\s+GET\s+/reports/export\s+reports\.export\s+auth,reports`, out)
}

func TestVersionCommand(t *testing.T) {
	assert.Contains(t, execute(t, "version"), "helpdesk-web dev")
}

func TestServeRejectsInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HELPDESK_BACKEND_BASE_URL", "not a url")

	rootCmd.SetArgs([]string{"serve", "--config-dir", dir})
	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "backend.base_url")
}
