package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFilter(t *testing.T) {
	f, err := ParseFilter("warn,update=debug,update/archive=error,terminal")
	require.NoError(t, err)

	assert.Equal(t, slog.LevelWarn, f.Level(""))
	assert.Equal(t, slog.LevelWarn, f.Level("other"))
	assert.Equal(t, slog.LevelDebug, f.Level("update"))
	assert.Equal(t, slog.LevelDebug, f.Level("update/xml"))
	assert.Equal(t, slog.LevelError, f.Level("update/archive"))
	assert.Equal(t, slog.LevelWarn, f.Level("updates"), "not a child of update")
	assert.Equal(t, LevelTrace, f.Level("terminal"))
	assert.Equal(t, LevelTrace, f.MinLevel())
	assert.Equal(t, "warn,update=debug,update/archive=error,terminal", f.String())
}

func TestParseFilter_levels(t *testing.T) {
	for expr, expected := range map[string]slog.Level{
		"trace":   LevelTrace,
		"DEBUG":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"Warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"off":     LevelOff,
		"info+2":  slog.LevelInfo + 2,
		"DEBUG-3": slog.LevelDebug - 3,
	} {
		f, err := ParseFilter(expr)
		require.NoError(t, err, expr)
		assert.Equal(t, expected, f.Level("any"), expr)
	}
}

func TestParseFilter_malformed(t *testing.T) {
	for _, expr := range []string{
		"",
		"  ",
		"update=loud",
		"=debug",
		"up date=info",
		"info,[x]",
	} {
		_, err := ParseFilter(expr)
		assert.Error(t, err, "expr %q", expr)
	}
}

func TestFilter_zeroValueIsInfo(t *testing.T) {
	var f Filter
	assert.False(t, f.Enabled("x", slog.LevelDebug))
	assert.True(t, f.Enabled("x", slog.LevelInfo))
	assert.Equal(t, "info", f.String())
}

func getenv(values map[string]string) func(string) string {
	return func(key string) string {
		return values[key]
	}
}

func TestFilterFromEnv_unset(t *testing.T) {
	f, err := FilterFromEnv(getenv(nil))
	assert.NoError(t, err)
	assert.Equal(t, "info", f.String())
	assert.Equal(t, slog.LevelInfo, f.Level(""))
}

func TestFilterFromEnv_verbatim(t *testing.T) {
	f, err := FilterFromEnv(getenv(map[string]string{EnvVar: "error,update=trace"}))
	assert.NoError(t, err)
	assert.Equal(t, "error,update=trace", f.String())
	assert.Equal(t, LevelTrace, f.Level("update"))
}

func TestFilterFromEnv_malformedFallsBack(t *testing.T) {
	f, err := FilterFromEnv(getenv(map[string]string{EnvVar: "update=sometimes"}))
	assert.ErrorContains(t, err, EnvVar)
	assert.Equal(t, "info", f.String())
	assert.Equal(t, slog.LevelInfo, f.Level("update"))
}

func TestNew_filtersByTarget(t *testing.T) {
	f, err := ParseFilter("warn,update=debug")
	require.NoError(t, err)

	var buf bytes.Buffer
	log := New(&buf, Config{Filter: f})

	log.Info("root info")
	log.Warn("root warn")
	Target(log, "update").Debug("update debug")
	Target(log, "update/archive").Debug("archive debug")
	Target(log, "terminal").Info("terminal info")
	log.Info("inline target", TargetKey, "update")

	out := buf.String()
	assert.NotContains(t, out, "root info")
	assert.Contains(t, out, "root warn")
	assert.Contains(t, out, "update debug")
	assert.Contains(t, out, "archive debug")
	assert.NotContains(t, out, "terminal info")
	assert.Contains(t, out, "inline target")
	assert.Contains(t, out, "target=update")
}

func TestNew_groupedTargetIsNotATarget(t *testing.T) {
	f, err := ParseFilter("info,noisy=off")
	require.NoError(t, err)

	var buf bytes.Buffer
	log := New(&buf, Config{Filter: f})
	log.WithGroup("g").With(TargetKey, "noisy").Info("grouped")

	assert.Contains(t, buf.String(), "grouped")
}

func TestNew_noColor(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, Config{Filter: DefaultFilter()}).Info("plain", "k", "v")

	assert.Contains(t, buf.String(), "INF")
	assert.Contains(t, buf.String(), "k=v")
	assert.NotContains(t, buf.String(), "\x1b[")
}

func TestNew_color(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, Config{Filter: DefaultFilter(), Color: true}).Info("styled")

	assert.Contains(t, buf.String(), "styled")
	assert.Contains(t, buf.String(), "\x1b[")
}

func TestNew_source(t *testing.T) {
	var with, without bytes.Buffer
	New(&with, Config{Filter: DefaultFilter(), Source: true}).Info("here")
	New(&without, Config{Filter: DefaultFilter()}).Info("here")

	assert.Contains(t, with.String(), "logging_test.go:")
	assert.NotContains(t, without.String(), "logging_test.go:")
}

func TestInstaller_secondInstallPanics(t *testing.T) {
	var installed []*slog.Logger
	i := NewInstaller(func(l *slog.Logger) {
		installed = append(installed, l)
	})

	first := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	assert.False(t, i.Installed())
	assert.NotPanics(t, func() { i.Install(first) })
	assert.True(t, i.Installed())

	assert.PanicsWithError(t, ErrAlreadyInstalled.Error(), func() {
		i.Install(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	})
	assert.Equal(t, []*slog.Logger{first}, installed, "second logger must not be installed")
}

func TestContext(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, Config{})
	ctx := WithLogger(context.Background(), log)

	assert.Same(t, log, FromContext(ctx))
	assert.Panics(t, func() { FromContext(context.Background()) })
}
