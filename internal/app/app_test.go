package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newTestApp(t *testing.T, cfg Config) (*App, *bytes.Buffer) {
	t.Helper()
	cfg.NoColor = true
	if cfg.LogLevel == "" {
		cfg.LogLevel = "error"
	}
	validated, err := NewConfig(cfg)
	require.NoError(t, err)
	out := &bytes.Buffer{}
	return NewApp(out, &bytes.Buffer{}, validated), out
}

func TestRun(t *testing.T) {
	t.Run("text output with override and interpolation", func(t *testing.T) {
		dir := t.TempDir()
		base := writeFile(t, dir, "base.properties", "host=db1\nurl=jdbc://${host}\n")
		override := writeFile(t, dir, "override.properties", "host=db2\n")

		a, out := newTestApp(t, Config{Seeds: []string{base, override}})
		require.NoError(t, a.Run(context.Background()))
		assert.Equal(t, "url=jdbc://db2\nhost=db2\n", out.String())
	})

	t.Run("child loading across files", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "child.properties", "x=hello\n")
		parent := writeFile(t, dir, "parent.properties",
			"_load_child="+filepath.Join(dir, "child.properties")+"\nmsg=${x}\n")

		a, out := newTestApp(t, Config{Seeds: []string{parent}})
		require.NoError(t, a.Run(context.Background()))
		assert.Contains(t, out.String(), "msg=hello\n")
		assert.Contains(t, out.String(), "x=hello\n")
	})

	t.Run("sensitive values redacted in output", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "secret.properties", "token=hunter2\n")
		parent := writeFile(t, dir, "parent.properties",
			"_load_sec="+filepath.Join(dir, "secret.properties")+"\n_flags_sec=sensitive\n")

		a, out := newTestApp(t, Config{Seeds: []string{parent}})
		require.NoError(t, a.Run(context.Background()))
		assert.Equal(t, "token=*****\n", out.String())
	})

	t.Run("json output", func(t *testing.T) {
		dir := t.TempDir()
		base := writeFile(t, dir, "base.properties", "host=db1\n")

		a, out := newTestApp(t, Config{Seeds: []string{base}, Output: "json"})
		require.NoError(t, a.Run(context.Background()))
		assert.JSONEq(t, `{"host": "db1"}`, out.String())
	})

	t.Run("external variables", func(t *testing.T) {
		dir := t.TempDir()
		base := writeFile(t, dir, "base.properties", "greeting=hi ${user}\n")

		a, out := newTestApp(t, Config{
			Seeds: []string{base},
			Vars:  map[string]string{"user": "alice"},
		})
		require.NoError(t, a.Run(context.Background()))
		assert.Equal(t, "greeting=hi alice\n", out.String())
	})

	t.Run("args scheme", func(t *testing.T) {
		dir := t.TempDir()
		parent := writeFile(t, dir, "parent.properties", "_load_cli=args:\n")

		a, out := newTestApp(t, Config{
			Seeds: []string{parent},
			Args:  []string{"k=v"},
		})
		require.NoError(t, a.Run(context.Background()))
		assert.Equal(t, "k=v\n", out.String())
	})

	t.Run("missing seed fails", func(t *testing.T) {
		a, _ := newTestApp(t, Config{Seeds: []string{"file:/definitely/not/here.properties"}})
		err := a.Run(context.Background())
		require.Error(t, err)
		assert.ErrorContains(t, err, "not found")
	})
}

func TestNewConfig(t *testing.T) {
	t.Run("requires a seed", func(t *testing.T) {
		_, err := NewConfig(Config{})
		require.Error(t, err)
	})

	t.Run("rejects unknown output", func(t *testing.T) {
		_, err := NewConfig(Config{Seeds: []string{"file:a"}, Output: "xml"})
		require.Error(t, err)
	})
}
