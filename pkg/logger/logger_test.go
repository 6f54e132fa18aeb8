package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := GetLevel()
	SetOutput(&buf)
	t.Cleanup(func() {
		SetOutput(os.Stderr)
		SetLevel(prev)
	})
	return &buf
}

func TestInfoCF_WritesComponentAndFields(t *testing.T) {
	buf := captureLogs(t)
	SetLevel(INFO)

	InfoCF("store", "Profile saved", map[string]any{"user_id": "42"})

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "store", entry["component"])
	assert.Equal(t, "42", entry["user_id"])
	assert.Equal(t, "Profile saved", entry["message"])
}

func TestSetLevel_FiltersLowerLevels(t *testing.T) {
	buf := captureLogs(t)
	SetLevel(WARN)

	DebugC("coach", "hidden")
	InfoC("coach", "hidden too")
	WarnC("coach", "visible")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "visible")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, DEBUG, ParseLevel("debug"))
	assert.Equal(t, DEBUG, ParseLevel("DEBUG"))
	assert.Equal(t, WARN, ParseLevel("warning"))
	assert.Equal(t, ERROR, ParseLevel("error"))
	assert.Equal(t, INFO, ParseLevel(""))
	assert.Equal(t, INFO, ParseLevel("verbose"))
}
