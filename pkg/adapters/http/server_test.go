package http

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/pkg/adapters/memory"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/layout"
	"github.com/aretw0/arbor/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManager(t *testing.T, render bool) *arbor.Manager {
	t.Helper()
	m, err := arbor.New("",
		arbor.WithSnapshotStore(memory.NewStore()),
		arbor.WithStrictFlush(true),
		arbor.WithTemplates(map[string]string{
			"Page":  `<main>{{yield}}</main>`,
			"Home":  `home {{with .}}{{.user}}{{end}}`,
			"About": `about`,
		}),
	)
	require.NoError(t, err)
	if render {
		require.NoError(t, m.Render(layout.Props{Template: "Page"}))
	}
	t.Cleanup(m.Close)
	return m
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestServer_RenderAndRegions(t *testing.T) {
	h := NewHandler(newManager(t, true))

	w := do(t, h, "PUT", "/regions/main", `{"template":"Home"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var snap domain.Snapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	assert.Equal(t, "Home", snap.Regions["main"])

	w = do(t, h, "PUT", "/data", `{"user":"ana"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(t, h, "GET", "/render", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "<main>home ana</main>", w.Body.String())

	w = do(t, h, "DELETE", "/regions/main", "")
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, h, "GET", "/regions/", "")
	var regions map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &regions))
	assert.Equal(t, "", regions["main"])
}

func TestServer_ErrorStatus(t *testing.T) {
	t.Run("Unrendered", func(t *testing.T) {
		h := NewHandler(newManager(t, false))
		w := do(t, h, "GET", "/render", "")
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("MissingTemplate", func(t *testing.T) {
		h := NewHandler(newManager(t, true))
		w := do(t, h, "PUT", "/template", `{"template":"Nope"}`)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "Nope")
	})

	t.Run("BadBody", func(t *testing.T) {
		h := NewHandler(newManager(t, true))
		w := do(t, h, "PUT", "/regions/main", `{`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("InvalidData", func(t *testing.T) {
		m, err := arbor.New("",
			arbor.WithTemplates(map[string]string{"Page": "page"}),
			arbor.WithDataSchema(schema.Schema{"user": schema.String()}),
		)
		require.NoError(t, err)
		require.NoError(t, m.Render(layout.Props{Template: "Page"}))
		w := do(t, NewHandler(m), "PUT", "/data", `{"user":3}`)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, w.Body.String(), "user")
	})

	t.Run("MissingSnapshot", func(t *testing.T) {
		h := NewHandler(newManager(t, true))
		w := do(t, h, "POST", "/snapshots/nope/restore", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestServer_FailedMutationRollsBack(t *testing.T) {
	h := NewHandler(newManager(t, true))
	require.Equal(t, http.StatusOK, do(t, h, "PUT", "/regions/main", `{"template":"Home"}`).Code)

	w := do(t, h, "PUT", "/regions/main", `{"template":"Bogus"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Bogus")

	var snap domain.Snapshot
	require.NoError(t, json.Unmarshal(do(t, h, "GET", "/state", "").Body.Bytes(), &snap))
	assert.Equal(t, "Home", snap.Regions["main"])

	w = do(t, h, "GET", "/render", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "<main>home </main>", w.Body.String())

	w = do(t, h, "PUT", "/template", `{"template":"Nope"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	require.NoError(t, json.Unmarshal(do(t, h, "GET", "/state", "").Body.Bytes(), &snap))
	assert.Equal(t, "Page", snap.Template)
}

func TestServer_Snapshots(t *testing.T) {
	h := NewHandler(newManager(t, true))

	require.Equal(t, http.StatusOK, do(t, h, "PUT", "/regions/main", `{"template":"About"}`).Code)
	require.Equal(t, http.StatusNoContent, do(t, h, "POST", "/snapshots/s1", "").Code)
	require.Equal(t, http.StatusOK, do(t, h, "PUT", "/regions/main", `{"template":"Home"}`).Code)

	w := do(t, h, "POST", "/snapshots/s1/restore", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(t, h, "GET", "/render", "")
	assert.Equal(t, "<main>about</main>", w.Body.String())

	w = do(t, h, "GET", "/snapshots", "")
	assert.JSONEq(t, `["s1"]`, w.Body.String())

	require.Equal(t, http.StatusNoContent, do(t, h, "DELETE", "/snapshots/s1", "").Code)
	w = do(t, h, "GET", "/snapshots", "")
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestServer_InfoAndTemplates(t *testing.T) {
	h := NewHandler(newManager(t, true))

	w := do(t, h, "GET", "/info", "")
	assert.Contains(t, w.Body.String(), arbor.Version)

	w = do(t, h, "GET", "/templates", "")
	var names []string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &names))
	assert.Equal(t, []string{"About", "Home", "Page"}, names)

	w = do(t, h, "GET", "/metrics", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	h = NewHandler(newManager(t, true), WithMetricsHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "metrics")
	})))
	assert.Equal(t, "metrics", do(t, h, "GET", "/metrics", "").Body.String())
}

func TestServer_ReloadUnsupported(t *testing.T) {
	h := NewHandler(newManager(t, true))
	w := do(t, h, "GET", "/events/reload", "")
	assert.Equal(t, http.StatusNotImplemented, w.Code)
}

type watchCounter struct {
	*arbor.Manager
	calls  atomic.Int32
	events chan struct{}
}

func (w *watchCounter) Watch(context.Context) (<-chan struct{}, error) {
	w.calls.Add(1)
	return w.events, nil
}

func nextData(t *testing.T, lines *bufio.Scanner) string {
	t.Helper()
	for lines.Scan() {
		if data, ok := strings.CutPrefix(lines.Text(), "data: "); ok && data != "connected" {
			return data
		}
	}
	t.Fatal("stream ended")
	return ""
}

func TestSubscribeReload_SharesOneWatch(t *testing.T) {
	wl := &watchCounter{Manager: newManager(t, true), events: make(chan struct{})}
	srv := httptest.NewServer(NewHandler(wl))
	defer srv.Close()
	defer close(wl.events)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var streams []*bufio.Scanner
	for range 3 {
		req, err := http.NewRequestWithContext(ctx, "GET", srv.URL+"/events/reload", nil)
		require.NoError(t, err)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		lines := bufio.NewScanner(resp.Body)
		require.True(t, lines.Scan())
		assert.Equal(t, "event: ping", lines.Text())
		streams = append(streams, lines)
	}

	wl.events <- struct{}{}
	for _, lines := range streams {
		assert.Equal(t, "reload", nextData(t, lines))
	}
	assert.Equal(t, int32(1), wl.calls.Load())
}

func TestSubscribeEvents_Diffs(t *testing.T) {
	srv := httptest.NewServer(NewHandler(newManager(t, true)))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, "GET", srv.URL+"/events?watch=regions", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	lines := bufio.NewScanner(resp.Body)
	require.True(t, lines.Scan())
	assert.Equal(t, "event: ping", lines.Text())

	put := func(path, body string) {
		req, err := http.NewRequest("PUT", srv.URL+path, strings.NewReader(body))
		require.NoError(t, err)
		res, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		res.Body.Close()
		require.Equal(t, http.StatusOK, res.StatusCode)
	}
	// Filtered out: only data changes.
	put("/data", `{"user":"ana"}`)
	put("/regions/main", `{"template":"About"}`)

	var got string
	for lines.Scan() {
		if data, ok := strings.CutPrefix(lines.Text(), "data: "); ok && data != "connected" {
			got = data
			break
		}
	}
	var diff domain.SnapshotDiff
	require.NoError(t, json.Unmarshal([]byte(got), &diff))
	assert.Equal(t, map[string]string{"main": "About"}, diff.Regions)
	assert.False(t, diff.DataSet)
}

func TestStreamManager(t *testing.T) {
	sm := NewStreamManager(nopLogger())
	ch, cancel := sm.Subscribe()
	assert.Equal(t, 1, sm.Subscribers())

	sm.Broadcast("hello")
	assert.Equal(t, "hello", <-ch)

	cancel()
	cancel()
	assert.Equal(t, 0, sm.Subscribers())
	_, open := <-ch
	assert.False(t, open)
}
