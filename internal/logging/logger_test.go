package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNew_DefaultShowsWarnings(t *testing.T) {
	t.Setenv(LevelEnv, "")
	var buf bytes.Buffer
	log := New(&buf, false)
	log.Debug("hidden")
	log.Info("hidden too")
	log.Warn("enum skipped", zap.String("enum", "Mixed"))

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "WARN")
	assert.Contains(t, out, "enum skipped")
	assert.Contains(t, out, `"enum": "Mixed"`)
}

func TestNew_VerboseShowsDebug(t *testing.T) {
	t.Setenv(LevelEnv, "")
	var buf bytes.Buffer
	New(&buf, true).Debug("compiled operation")
	assert.Contains(t, buf.String(), "DEBUG")
	assert.Contains(t, buf.String(), "compiled operation")
}

func TestNew_EnvOverridesFlag(t *testing.T) {
	t.Setenv(LevelEnv, "error")
	var buf bytes.Buffer
	New(&buf, true).Warn("quiet")
	assert.Empty(t, buf.String())
}

func TestParseLevel(t *testing.T) {
	t.Parallel()
	lvl, ok := parseLevel(" info ")
	assert.True(t, ok)
	assert.Equal(t, zapcore.InfoLevel, lvl)
	_, ok = parseLevel("loud")
	assert.False(t, ok)
}
