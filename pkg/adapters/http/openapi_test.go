package http

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSpecRouter(t *testing.T) routers.Router {
	t.Helper()
	router, err := NewSpecRouter(context.Background())
	require.NoError(t, err)
	return router
}

func doJSON(t *testing.T, srv *httptest.Server, method, path, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

// matchesSpec checks a response against the documented operation for method and path.
func matchesSpec(t *testing.T, router routers.Router, method, path string, resp *http.Response) {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	route, params, err := router.FindRoute(req)
	require.NoError(t, err, "%s %s is not documented", method, path)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	input := &openapi3filter.ResponseValidationInput{
		RequestValidationInput: &openapi3filter.RequestValidationInput{
			Request:    req,
			PathParams: params,
			Route:      route,
			Options:    validationOptions,
		},
		Status:  resp.StatusCode,
		Header:  resp.Header,
		Options: validationOptions,
	}
	input.SetBodyBytes(body)
	assert.NoError(t, openapi3filter.ValidateResponse(context.Background(), input), "%s %s", method, path)
}

func TestLoadSpec(t *testing.T) {
	doc, err := LoadSpec(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Quire API", doc.Info.Title)
	assert.NotNil(t, doc.Paths.Value("/stories/{storyID}"))
}

func TestSpec_DocumentsEveryRoute(t *testing.T) {
	doc, err := LoadSpec(context.Background())
	require.NoError(t, err)

	handler, stop := NewHandler(newTestLibrary(t))
	defer stop()
	mux, ok := handler.(chi.Routes)
	require.True(t, ok)

	undocumented := map[string]bool{"/openapi.yaml": true, "/swagger": true, "/metrics": true}
	err = chi.Walk(mux, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		if len(route) > 1 {
			route = strings.TrimSuffix(route, "/")
		}
		if undocumented[route] {
			return nil
		}
		item := doc.Paths.Value(route)
		if assert.NotNil(t, item, "path %s", route) {
			assert.NotNil(t, item.GetOperation(method), "%s %s", method, route)
		}
		return nil
	})
	require.NoError(t, err)
}

func TestServer_ResponsesMatchSpec(t *testing.T) {
	router := newSpecRouter(t)
	srv, _ := newTestServer(t, WithRequestValidation(router))

	calls := []struct {
		method, path, body string
		status             int
	}{
		{"GET", "/health", "", http.StatusOK},
		{"GET", "/info", "", http.StatusOK},
		{"GET", "/formats", "", http.StatusOK},
		{"GET", "/stories", "", http.StatusOK},
		{"POST", "/stories", `{"name": "Lake"}`, http.StatusCreated},
		{"POST", "/stories", `{"name": "Lake"}`, http.StatusConflict},
		{"GET", "/stories/a", "", http.StatusOK},
		{"PATCH", "/stories/a", `{"zoom": 0.5, "tags": ["dark"]}`, http.StatusOK},
		{"GET", "/stories/nope", "", http.StatusNotFound},
		{"GET", "/stories/a/stats", "", http.StatusOK},
		{"GET", "/stories/a/links", "", http.StatusOK},
		{"POST", "/stories/a/passages", `{"left": 10, "top": 400}`, http.StatusCreated},
		{"PATCH", "/stories/a/passages/a-p2", `{"text": "Bye"}`, http.StatusOK},
		{"GET", "/stories/a/publish", "", http.StatusOK},
		{"GET", "/stories/a/test?start=missing", "", http.StatusUnprocessableEntity},
		{"GET", "/archive", "", http.StatusOK},
	}
	for _, c := range calls {
		resp := doJSON(t, srv, c.method, c.path, c.body)
		require.Equal(t, c.status, resp.StatusCode, "%s %s", c.method, c.path)
		path, _, _ := strings.Cut(c.path, "?")
		matchesSpec(t, router, c.method, path, resp)
	}
}

func TestServer_RequestValidation(t *testing.T) {
	srv, lib := newTestServer(t, WithRequestValidation(newSpecRouter(t)))

	resp := doJSON(t, srv, "PATCH", "/stories/a", `{"zoom": "huge"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	story, err := lib.Story("a")
	require.NoError(t, err)
	assert.Equal(t, 1.0, story.Zoom, "rejected requests never reach the library")

	resp = doJSON(t, srv, "GET", "/formats?newest=maybe", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, srv, "PATCH", "/stories/a/passages/a-p1", `{"left": "far"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(t, srv, "GET", "/openapi.yaml", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	spec, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(spec), "openapi: 3.0.3")

	resp = do(t, srv, "GET", "/swagger", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
