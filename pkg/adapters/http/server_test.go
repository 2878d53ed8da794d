package http

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/quire"
	"github.com/aretw0/quire/internal/testutils"
	"github.com/aretw0/quire/pkg/domain"
	"github.com/aretw0/quire/pkg/formats"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLibrary(t *testing.T) *quire.Library {
	t.Helper()
	fetcher := formats.FetcherFunc(func(ctx context.Context, url string) ([]byte, error) {
		return []byte(`window.storyFormat({"name": "Fake", "version": "1.0.0", "source": "<html>{{STORY_DATA}}</html>"})`), nil
	})
	lib := quire.New(
		quire.WithFormats(testutils.Formats()),
		quire.WithDefaultFormat(domain.FormatRef{Name: "Harlowe", Version: "3.3.8"}),
		quire.WithProofingFormat(domain.FormatRef{Name: "Paperthin", Version: "1.0.0"}),
		quire.WithFetcher(fetcher),
		quire.WithIDGenerator(&testutils.SequenceIDs{}),
		quire.WithClock(testutils.FixedClock),
	)
	s := testutils.NewStory("a", "Cave", "Start", "End")
	s.Passages[0].Text = "[[End]] [[Lake]]"
	lib.Init([]*domain.Story{s})
	return lib
}

func newTestServer(t *testing.T, opts ...Option) (*httptest.Server, *quire.Library) {
	t.Helper()
	lib := newTestLibrary(t)
	handler, stop := NewHandler(lib, opts...)
	srv := httptest.NewServer(handler)
	t.Cleanup(func() {
		srv.Close()
		stop()
	})
	return srv, lib
}

func do(t *testing.T, srv *httptest.Server, method, path, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestServer_Health(t *testing.T) {
	srv, _ := newTestServer(t)
	resp := do(t, srv, "GET", "/health", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", decodeBody[map[string]string](t, resp)["status"])
}

func TestServer_Stories(t *testing.T) {
	srv, lib := newTestServer(t)

	list := decodeBody[[]StorySummary](t, do(t, srv, "GET", "/stories", ""))
	require.Len(t, list, 1)
	assert.Equal(t, "Cave", list[0].Name)
	assert.Equal(t, 2, list[0].Passages)

	resp := do(t, srv, "POST", "/stories", `{"name": "Lake"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeBody[domain.Story](t, resp)
	assert.Equal(t, "Lake", created.Name)

	resp = do(t, srv, "POST", "/stories", `{"name": "Lake"}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = do(t, srv, "PATCH", "/stories/a", `{"script": "go()"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "go()", decodeBody[domain.Story](t, resp).Script)

	resp = do(t, srv, "PATCH", "/stories/a", `{"name": "Lake"}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = do(t, srv, "GET", "/stories/nope", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = do(t, srv, "DELETE", "/stories/"+created.ID, "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Len(t, lib.Stories(), 1)
}

func TestServer_Passages(t *testing.T) {
	srv, lib := newTestServer(t)

	resp := do(t, srv, "POST", "/stories/a/passages", `{"left": 0, "top": 300}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	p := decodeBody[domain.Passage](t, resp)
	assert.Equal(t, domain.DefaultPassageName, p.Name)

	resp = do(t, srv, "PATCH", "/stories/a/passages/a-p2", `{"name": "Exit", "text": "Bye"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	updated := decodeBody[domain.Passage](t, resp)
	assert.Equal(t, "Exit", updated.Name)
	assert.Equal(t, "Bye", updated.Text)

	story, err := lib.Story("a")
	require.NoError(t, err)
	assert.Equal(t, "[[Exit]] [[Lake]]", story.Passages[0].Text, "rename rewrites links")

	resp = do(t, srv, "PATCH", "/stories/a/passages/a-p2", `{"name": "Start"}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = do(t, srv, "DELETE", "/stories/a/passages/"+p.ID, "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp = do(t, srv, "DELETE", "/stories/a/passages/"+p.ID, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = do(t, srv, "PATCH", "/stories/a/passages/a-p1", `{not json`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServer_StatsAndLinks(t *testing.T) {
	srv, _ := newTestServer(t)

	stats := decodeBody[map[string]any](t, do(t, srv, "GET", "/stories/a/stats", ""))
	assert.Equal(t, 1.0, stats["brokenLinks"])

	views := decodeBody[[]LinkView](t, do(t, srv, "GET", "/stories/a/links", ""))
	require.Len(t, views, 2)
	assert.Equal(t, LinkView{From: "a-p1", To: "a-p2", Target: "End", Kind: "ordinary"}, views[0])
	assert.Equal(t, LinkView{From: "a-p1", Target: "Lake", Kind: "broken"}, views[1])
}

func TestServer_PublishAndImport(t *testing.T) {
	srv, lib := newTestServer(t)

	resp := do(t, srv, "GET", "/stories/a/publish", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/html; charset=utf-8", resp.Header.Get("Content-Type"))

	resp = do(t, srv, "GET", "/stories/a/test?start=missing", "")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp = do(t, srv, "GET", "/stories/a/proof", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	archive := lib.Archive()
	resp = do(t, srv, "POST", "/import", archive)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	imported := decodeBody[[]domain.Story](t, resp)
	require.Len(t, imported, 1)
	assert.Equal(t, "Cave 1", imported[0].Name)

	resp = do(t, srv, "POST", "/import?replace=true", archive)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, lib.Stories(), 2)
}

func TestServer_Formats(t *testing.T) {
	srv, _ := newTestServer(t)
	pool := decodeBody[[]domain.StoryFormat](t, do(t, srv, "GET", "/formats?newest=true", ""))
	assert.Len(t, pool, 3)
}

func TestServer_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewCounter(prometheus.CounterOpts{Name: "quire_test_total", Help: "test"}))
	srv, _ := newTestServer(t, WithMetrics(reg))

	resp := do(t, srv, "GET", "/metrics", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "quire_test_total 0")
}

func TestSubscribeEvents(t *testing.T) {
	srv, _ := newTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, "GET", srv.URL+"/events?story=a", nil)
	require.NoError(t, err)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	lines := bufio.NewScanner(resp.Body)
	require.True(t, lines.Scan())
	assert.Equal(t, "event: ping", lines.Text())

	// The subscription is registered before the ping is written.
	do(t, srv, "PATCH", "/stories/a", `{"stylesheet": "body {}"}`)

	for lines.Scan() {
		line := lines.Text()
		if !strings.HasPrefix(line, "data: {") {
			continue
		}
		var event ChangeEvent
		require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &event))
		assert.Equal(t, "updateStory", event.Action)
		assert.Equal(t, []string{"a"}, event.Changed)
		return
	}
	t.Fatal("no change event received")
}
