package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/owif/web-portal/internal/config"
	perrors "github.com/owif/web-portal/internal/errors"
	"github.com/owif/web-portal/internal/logging"
	"github.com/owif/web-portal/internal/metrics"
	"github.com/owif/web-portal/internal/nav"
	"github.com/owif/web-portal/internal/site"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.Default()
	cfg.Site.Output = t.TempDir()
	m := metrics.New()

	b, err := site.NewBuilder(cfg, "", m)
	require.NoError(t, err)
	return NewServer(cfg, b, m)
}

func get(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHealth(t *testing.T) {
	rec := get(t, testServer(t), "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())
}

func TestHealthReportsLastBuild(t *testing.T) {
	s := testServer(t)
	require.NoError(t, s.Rebuild(context.Background()))
	last, ok := s.builder.History.Last()
	require.True(t, ok)

	rec := get(t, s, "/health")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Status    string           `json:"status"`
		LastBuild site.BuildRecord `json:"last_build"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, last.ID, body.LastBuild.ID)
	assert.Equal(t, site.StatusSucceeded, body.LastBuild.Status)
}

func TestNavEndpoint(t *testing.T) {
	s := testServer(t)

	rec := get(t, s, "/api/nav?path=/ota&variant=data")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Variant string     `json:"variant"`
		Path    string     `json:"path"`
		Links   []nav.Link `json:"links"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "data", body.Variant)
	assert.Equal(t, "/ota", body.Path)
	require.Len(t, body.Links, 5)

	var active []string
	for _, l := range body.Links {
		if l.Active {
			active = append(active, l.Label)
		}
	}
	assert.Equal(t, []string{"OTA Update"}, active)
}

func TestNavEndpointDefaults(t *testing.T) {
	rec := get(t, testServer(t), "/api/nav")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"variant":"firmware"`)
	assert.Contains(t, rec.Body.String(), `"path":"/"`)
}

func TestNavEndpointUnknownVariant(t *testing.T) {
	rec := get(t, testServer(t), "/api/nav?variant=lab")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"VARIANT_NOT_FOUND"`)
}

func TestPageServing(t *testing.T) {
	s := testServer(t)

	rec := get(t, s, "/config")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, body, `<a href="/config" class="active">Configuration</a>`)
	assert.Contains(t, body, "/ws/reload")
	assert.True(t, strings.Index(body, "/ws/reload") < strings.Index(body, "</body>"))

	rec = get(t, s, "/config.html")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `<a href="/config" class="active">Configuration</a>`)
}

func TestAssetServing(t *testing.T) {
	s := testServer(t)

	rec := get(t, s, "/style.css")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), ".menubar")

	rec = get(t, s, "/logout")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSourceDirectoriesAreNotListed(t *testing.T) {
	s := testServer(t)

	for _, target := range []string{"/img/", "/img"} {
		rec := get(t, s, target)
		assert.Equal(t, http.StatusNotFound, rec.Code, target)
		assert.NotContains(t, rec.Body.String(), "logo-emblem.svg", target)
	}

	rec := get(t, s, "/img/logo-emblem.svg")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestConcurrentRebuilds(t *testing.T) {
	s := testServer(t)

	var wg sync.WaitGroup
	errs := make(chan error, 5)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- s.Rebuild(context.Background())
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	for _, b := range s.builder.History.Entries() {
		assert.Equal(t, site.StatusSucceeded, b.Status)
		require.NotNil(t, b.FinishedAt)
	}
}

func TestBuildsEndpoint(t *testing.T) {
	s := testServer(t)
	require.NoError(t, s.Rebuild(context.Background()))
	require.NoError(t, s.Rebuild(context.Background()))

	rec := get(t, s, "/api/builds")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Builds []site.BuildRecord `json:"builds"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Builds, 2)
	assert.Equal(t, site.StatusSucceeded, body.Builds[0].Status)
	assert.True(t, !body.Builds[0].StartedAt.Before(body.Builds[1].StartedAt))
}

func TestLogsEndpoint(t *testing.T) {
	logging.Buffer().Clear()
	logging.NewLogger("test").Warn("disk almost full")
	logging.NewLogger("test").Info("all good")

	rec := get(t, testServer(t), "/api/logs?level=warn")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "disk almost full")
	assert.NotContains(t, rec.Body.String(), "all good")
}

func TestClearLogs(t *testing.T) {
	logging.NewLogger("test").Warn("stale entry")
	s := testServer(t)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/logs", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, logging.Buffer().Entries(nil))
}

func TestWriteErrorCodesPlainErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, http.StatusInternalServerError, errors.New("disk full"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"code":"INTERNAL_ERROR","message":"disk full"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	writeError(rec, http.StatusNotFound, perrors.PageNotFound("/logout"))
	assert.Contains(t, rec.Body.String(), `"code":"PAGE_NOT_FOUND"`)
}

func TestMetricsEndpoint(t *testing.T) {
	s := testServer(t)
	get(t, s, "/")

	rec := get(t, s, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `owif_portal_nav_renders_total{result="active"} 1`)
	assert.Contains(t, string(body), `owif_portal_http_requests_total{method="GET",status="200"}`)
}

func TestStartShutsDownOnCancel(t *testing.T) {
	s := testServer(t)
	s.config.Server.Host = "127.0.0.1"
	s.config.Server.Port = 0

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	cancel()
	assert.NoError(t, <-done)
}

func TestInjectReloadWithoutBody(t *testing.T) {
	out := injectReload([]byte("<p>fragment</p>"))
	assert.True(t, strings.HasPrefix(string(out), "<p>fragment</p><script>"))
}

func TestDashboard(t *testing.T) {
	rec := get(t, testServer(t), "/_preview")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/api/builds")
	assert.Contains(t, rec.Body.String(), "/ws/reload")
}
