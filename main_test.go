package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signpad/internal/config"
)

func TestReplayWritesArtifacts(t *testing.T) {
	dir := t.TempDir()
	o := options{
		replay: filepath.Join("testdata", "fast-line.json"),
		out:    filepath.Join(dir, "sig.png"),
		pdf:    filepath.Join(dir, "form.pdf"),
		signer: "Ada Example",
		title:  "Site induction",
	}
	require.NoError(t, runReplay(t.Context(), config.Default(), o))

	png, err := os.ReadFile(o.out)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(png), "\x89PNG"))

	pdf, err := os.ReadFile(o.pdf)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(pdf), "%PDF-"))
}

func TestReplayNothingDrawn(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(script, []byte(`{"events":[{"type":"clear"}]}`), 0o644))

	o := options{replay: script, out: filepath.Join(dir, "sig.png")}
	err := runReplay(t.Context(), config.Default(), o)
	require.Error(t, err)
	assert.NoFileExists(t, o.out)
}

func TestReplayBadScript(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(script, []byte(`{"events":[{"type":"scribble"}]}`), 0o644))

	err := runReplay(t.Context(), config.Default(), options{replay: script, out: filepath.Join(dir, "x.png")})
	assert.ErrorContains(t, err, "unknown event kind")
}

func TestListenPort(t *testing.T) {
	port, err := listenPort(":8888")
	require.NoError(t, err)
	assert.Equal(t, 8888, port)

	_, err = listenPort("8888")
	assert.Error(t, err)
}
