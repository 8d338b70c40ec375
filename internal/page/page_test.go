package page

import (
	"errors"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/owif/web-portal/internal/metrics"
	"github.com/owif/web-portal/internal/nav"
)

const shell = `<!DOCTYPE html><html><head><title>t</title></head><body><div id="title"></div><div id="menu"></div><p>body</p></body></html>`

func testDecorator(m *metrics.Metrics) *Decorator {
	return &Decorator{
		Title:      "1-Wire Interface",
		TitleMount: "title",
		MenuMount:  "menu",
		Entries: nav.List{
			{Label: "Dashboard", Href: "/"},
			{Label: "Configuration", Href: "/config"},
		},
		Metrics: m,
	}
}

func TestDecorateBytes(t *testing.T) {
	d := testDecorator(nil)

	out, res, err := d.DecorateBytes("config.html", []byte(shell), "/config?tab=net")
	require.NoError(t, err)
	assert.True(t, res.Mounted)
	assert.True(t, res.HasActive)
	assert.Equal(t, "/config", res.Active.Href)

	got := string(out)
	assert.True(t, strings.HasPrefix(got, "<!DOCTYPE html>"))
	assert.Contains(t, got, `<div id="title"><h1>1-Wire Interface</h1></div>`)
	assert.Contains(t, got, `<div id="menu"><div class="menubar"><a href="/">Dashboard</a><a href="/config" class="active">Configuration</a></div></div>`)
	assert.Contains(t, got, "<p>body</p>")
}

func TestDecorateWithoutMountsLeavesPage(t *testing.T) {
	m := metrics.New()
	d := testDecorator(m)

	src := `<html><head></head><body><form id="login"></form></body></html>`
	out, res, err := d.DecorateBytes("login.html", []byte(src), "/login")
	require.NoError(t, err)
	assert.False(t, res.Mounted)
	assert.False(t, res.HasActive)
	assert.Equal(t, src, string(out))

	count, err := testutil.GatherAndCount(m.Registry(), "owif_portal_nav_renders_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestDecorateNoActiveEntry(t *testing.T) {
	d := testDecorator(nil)
	doc, err := Parse(strings.NewReader(shell))
	require.NoError(t, err)

	res := d.Decorate(doc, "/unknown")
	assert.True(t, res.Mounted)
	assert.False(t, res.HasActive)

	var sb strings.Builder
	require.NoError(t, Write(&sb, doc))
	assert.NotContains(t, sb.String(), "active")
	assert.Equal(t, 2, strings.Count(sb.String(), "<a "))
}

func TestDecorateIsRepeatable(t *testing.T) {
	d := testDecorator(nil)
	doc, err := Parse(strings.NewReader(shell))
	require.NoError(t, err)

	d.Decorate(doc, "/")
	d.Decorate(doc, "/config")

	var sb strings.Builder
	require.NoError(t, Write(&sb, doc))
	out := sb.String()
	assert.Equal(t, 1, strings.Count(out, `class="menubar"`))
	assert.Equal(t, 1, strings.Count(out, "<h1>"))
	assert.Contains(t, out, `<a href="/config" class="active">`)
	assert.NotContains(t, out, `<a href="/" class="active">`)
}

func TestDecorateBrand(t *testing.T) {
	d := testDecorator(nil)
	d.Brand = nav.Brand{Logo: "img/logo-emblem.svg", Height: 50}

	out, _, err := d.DecorateBytes("index.html", []byte(shell), "/")
	require.NoError(t, err)
	assert.Contains(t, string(out), `<div class="menubar"><img class="logo" src="img/logo-emblem.svg" height="50"/><a href="/" class="active">`)
}

func TestParseReaderError(t *testing.T) {
	_, err := Parse(iotest.ErrReader(errors.New("disk gone")))
	assert.Error(t, err)
}
