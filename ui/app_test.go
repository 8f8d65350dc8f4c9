package ui

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"goinsight/internal"
	"goinsight/internal/config"
	"goinsight/internal/container"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApp(t *testing.T) (*App, *container.Container) {
	t.Helper()
	logger := internal.NewLoggerWithWriter(internal.LogLevelError, io.Discard)
	c, err := container.New(config.Default(), logger)
	require.NoError(t, err)
	t.Cleanup(func() { c.Shutdown(context.Background()) })

	token, err := c.Start(context.Background())
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	_, err = c.Session.Await(ctx, token)
	require.NoError(t, err)

	return NewApp(Config{}, c.Session, c.Renderer, logger), c
}

func get(t *testing.T, app *App, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	app.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestIndexRendersReport(t *testing.T) {
	app, _ := newApp(t)

	w := get(t, app, "/")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/html"))
	assert.Contains(t, w.Body.String(), "<title>retail</title>")
	assert.Contains(t, w.Body.String(), "Page No. 1 of")
}

func TestMarkdownReport(t *testing.T) {
	app, _ := newApp(t)

	w := get(t, app, "/report.md")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.True(t, strings.HasPrefix(body, "# retail\n"))
	assert.Contains(t, body, "## Recommended view")
	assert.Contains(t, body, "## Subspace")
	assert.Contains(t, body, "## Field profiles")
}

func TestPageJSON(t *testing.T) {
	app, c := newApp(t)

	w := get(t, app, "/page")
	require.Equal(t, http.StatusOK, w.Code)
	var page PageResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, c.Session.Snapshot().PageLabel, page.Snapshot.PageLabel)
	assert.NotEmpty(t, page.Data)
}

func TestGotoPage(t *testing.T) {
	app, c := newApp(t)

	w := get(t, app, "/pages/2")
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, 1, c.Session.Snapshot().Page)

	assert.Equal(t, http.StatusBadRequest, get(t, app, "/pages/99").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, app, "/pages/x").Code)
}
