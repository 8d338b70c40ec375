package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/owif/web-portal/internal/config"
	perrors "github.com/owif/web-portal/internal/errors"
	"github.com/owif/web-portal/internal/nav"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestRenderListing(t *testing.T) {
	out, err := run(t, "render", "--path", "/config", "--variant", "data")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 5)
	assert.True(t, strings.HasPrefix(lines[1], "*"))
	assert.Contains(t, lines[1], "Configuration")
	assert.Equal(t, 1, strings.Count(out, "*"))
}

func TestRenderHTML(t *testing.T) {
	out, err := run(t, "render", "--path", "/ota", "--html")
	require.NoError(t, err)

	v, _, err := config.Default().Variant("firmware")
	require.NoError(t, err)
	assert.Equal(t, nav.Build(v.Entries, "/ota", v.Options()).HTML()+"\n", out)
}

func TestRenderJSON(t *testing.T) {
	out, err := run(t, "--json", "render", "--path", "/nowhere")
	require.NoError(t, err)

	var body struct {
		Variant string     `json:"variant"`
		Links   []nav.Link `json:"links"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &body))
	assert.Equal(t, "firmware", body.Variant)
	for _, l := range body.Links {
		assert.False(t, l.Active, l.Label)
	}
}

func TestRenderRequiresPath(t *testing.T) {
	_, err := run(t, "render")
	assert.Error(t, err)
}

func TestBuild(t *testing.T) {
	dir := t.TempDir()
	out, err := run(t, "build", "--out", dir, "--variant", "data")
	require.NoError(t, err)
	assert.Contains(t, out, "Built variant data")

	data, err := os.ReadFile(filepath.Join(dir, "console.html"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `<a href="/console" class="active">Console</a>`)
}

func TestBuildWithConfigFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "web")
	require.NoError(t, os.Mkdir(src, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "index.html"),
		[]byte(`<html><body><div id="menu"></div></body></html>`), 0644))

	cfgPath := filepath.Join(dir, "portal.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
site:
  source: `+src+`
  output: `+filepath.Join(dir, "out")+`
  pages:
    - route: /
      file: index.html
default_variant: lab
variants:
  lab:
    entries:
      - label: Home
        href: /
`), 0644))

	_, err := run(t, "--config", cfgPath, "build")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "out", "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `<div class="menubar"><a href="/" class="active">Home</a></div>`)
}

func TestUnknownVariant(t *testing.T) {
	_, err := run(t, "build", "--out", t.TempDir(), "--variant", "lab")
	assert.True(t, perrors.Is(err, perrors.ErrCodeVariantNotFound))
}

func TestMissingExplicitConfig(t *testing.T) {
	_, err := run(t, "--config", filepath.Join(t.TempDir(), "absent.yaml"), "variants")
	assert.True(t, perrors.Is(err, perrors.ErrCodeConfigNotFound))
}

func TestVariants(t *testing.T) {
	out, err := run(t, "variants")
	require.NoError(t, err)
	assert.Contains(t, out, "firmware (default)")
	assert.Contains(t, out, "OTA Update")
}

func TestVersionJSON(t *testing.T) {
	out, err := run(t, "--json", "version")
	require.NoError(t, err)
	assert.Contains(t, out, `"version":"dev"`)
}

func TestErrorHandler(t *testing.T) {
	var buf bytes.Buffer
	h := NewErrorHandler(&buf, false)

	cfg := config.Default()
	cfg.DefaultVariant = "lab"
	err := h.Handle(cfg.Validate())
	require.Error(t, err)
	assert.Contains(t, buf.String(), "Error: invalid configuration")
	assert.Contains(t, buf.String(), `  - default_variant "lab" is not defined`)

	buf.Reset()
	h.Verbose = true
	h.Handle(perrors.VariantNotFound("lab"))
	assert.Contains(t, buf.String(), "variant 'lab' not found")
	assert.Contains(t, buf.String(), `"code": "VARIANT_NOT_FOUND"`)
}
