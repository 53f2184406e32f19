package handler_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wadjakorntonsri/shortlinks/pkg/adapters/handler"
	"github.com/wadjakorntonsri/shortlinks/pkg/adapters/repository/sqlite"
	"github.com/wadjakorntonsri/shortlinks/pkg/adapters/stats"
	"github.com/wadjakorntonsri/shortlinks/pkg/config"
	"github.com/wadjakorntonsri/shortlinks/pkg/core/domain"
	"github.com/wadjakorntonsri/shortlinks/pkg/core/services"
)

type testApp struct {
	server *httptest.Server
	client *http.Client
	repo   *sqlite.SQLiteRepository
}

func newTestApp(t *testing.T, upstream http.HandlerFunc) *testApp {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	repo, err := sqlite.NewSQLiteRepository(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	if upstream == nil {
		upstream = func(w http.ResponseWriter, r *http.Request) {
			t.Errorf("unexpected stats call: %s", r.URL)
		}
	}
	statsSrv := httptest.NewServer(upstream)
	t.Cleanup(statsSrv.Close)

	service := services.NewLinkService(repo, stats.NewClient(statsSrv.Client(), statsSrv.URL))
	cfg := &config.Config{SecretKey: "test-secret", AppEnv: "test"}

	srv := httptest.NewServer(handler.NewRouter(cfg, service))
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := srv.Client()
	client.Jar = jar
	client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	}

	return &testApp{server: srv, client: client, repo: repo}
}

func (a *testApp) get(t *testing.T, path string) (*http.Response, string) {
	t.Helper()
	resp, err := a.client.Get(a.server.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func (a *testApp) postForm(t *testing.T, path string, form url.Values) (*http.Response, string) {
	t.Helper()
	resp, err := a.client.PostForm(a.server.URL+path, form)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func (a *testApp) seed(t *testing.T, name, linkURL string) *domain.Link {
	t.Helper()
	link := &domain.Link{Name: name, URL: linkURL}
	require.NoError(t, a.repo.Create(context.Background(), link))
	return link
}

func (a *testApp) counter(t *testing.T, id int64) int64 {
	t.Helper()
	link, err := a.repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	return link.Counter
}

func TestRedirect_PrefixesSchemeAndCounts(t *testing.T) {
	app := newTestApp(t, nil)
	link := app.seed(t, "Example", "example.com")

	resp, _ := app.get(t, "/visit/1")

	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "http://example.com", resp.Header.Get("Location"))
	assert.Equal(t, int64(1), app.counter(t, link.ID))

	app.get(t, "/visit/1")
	app.get(t, "/visit/1")
	assert.Equal(t, int64(3), app.counter(t, link.ID))
}

func TestRedirect_KeepsExistingScheme(t *testing.T) {
	app := newTestApp(t, nil)
	app.seed(t, "Secure", "https://example.com/path?q=1")
	app.seed(t, "Plain", "http://example.org")

	resp, _ := app.get(t, "/visit/1")
	assert.Equal(t, "https://example.com/path?q=1", resp.Header.Get("Location"))

	resp, _ = app.get(t, "/visit/2")
	assert.Equal(t, "http://example.org", resp.Header.Get("Location"))
}

func TestRedirect_UnknownID(t *testing.T) {
	app := newTestApp(t, nil)
	link := app.seed(t, "Example", "example.com")

	resp, body := app.get(t, "/visit/42")

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Link 42 not found", body)
	assert.Zero(t, app.counter(t, link.ID))
}

func TestRedirect_InvalidID(t *testing.T) {
	app := newTestApp(t, nil)
	link := app.seed(t, "Example", "example.com")

	resp, _ := app.get(t, "/visit/abc")

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Zero(t, app.counter(t, link.ID))
}

func TestStats_AggregatesClicks(t *testing.T) {
	upstreamBody := `{"linkEventStats":[{"event":"CLICK","count":"3"},{"event":"CLICK","count":"2"},{"event":"SHARE","count":"5"}]}`
	var gotPath string
	app := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.RequestURI
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(upstreamBody))
	})
	app.seed(t, "Dynamic", "https://example.page.link/abc")

	resp, body := app.get(t, "/stats/1")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.Equal(t, "/v1/https%3A%2F%2Fexample.page.link%2Fabc/linkStats?durationDays=365", gotPath)
	assert.JSONEq(t, `{"count":5,"status_code":200,"response_json":`+upstreamBody+`}`, body)
}

func TestStats_MirrorsUpstreamStatus(t *testing.T) {
	app := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
		w.Write([]byte(`{"linkEventStats":[{"event":"CLICK","count":"1"}]}`))
	})
	app.seed(t, "Example", "example.com")

	resp, body := app.get(t, "/stats/1")

	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	var got struct {
		Count      int64 `json:"count"`
		StatusCode int   `json:"status_code"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &got))
	assert.Equal(t, int64(1), got.Count)
	assert.Equal(t, http.StatusAccepted, got.StatusCode)
}

func TestStats_EmptyStats(t *testing.T) {
	app := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})
	app.seed(t, "Example", "example.com")

	resp, body := app.get(t, "/stats/1")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"count":0,"status_code":200,"response_json":{}}`, body)
}

func TestStats_UpstreamFailure(t *testing.T) {
	app := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	})
	app.seed(t, "Example", "example.com")

	resp, body := app.get(t, "/stats/1")

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.True(t, strings.HasPrefix(body, "503 Server Error: Service Unavailable for url: "), body)
}

func TestStats_UnknownAndInvalidID(t *testing.T) {
	app := newTestApp(t, nil)

	resp, body := app.get(t, "/stats/7")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Link 7 not found", body)

	resp, _ = app.get(t, "/stats/seven")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestNew_Form(t *testing.T) {
	app := newTestApp(t, nil)

	resp, body := app.get(t, "/new")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `<form action="/new" method="post">`)
}

func TestNew_MissingFields(t *testing.T) {
	tests := []struct {
		name string
		form url.Values
	}{
		{name: "empty name", form: url.Values{"name": {""}, "url": {"example.com"}}},
		{name: "empty url", form: url.Values{"name": {"Example"}, "url": {""}}},
		{name: "missing both", form: url.Values{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(t, nil)

			resp, body := app.postForm(t, "/new", tt.form)

			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Contains(t, body, "Please enter all the fields")

			links, err := app.repo.List(context.Background())
			require.NoError(t, err)
			assert.Empty(t, links)
		})
	}
}

func TestNew_TooLong(t *testing.T) {
	app := newTestApp(t, nil)

	resp, body := app.postForm(t, "/new", url.Values{
		"name": {strings.Repeat("n", domain.MaxNameLength+1)},
		"url":  {"example.com"},
	})

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Name or URL is too long")

	resp, body = app.postForm(t, "/new", url.Values{
		"name": {strings.Repeat("й", domain.MaxNameLength+1)},
		"url":  {"example.com"},
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Name or URL is too long")

	links, err := app.repo.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, links)
}

func TestNew_MultibyteWithinLimits(t *testing.T) {
	app := newTestApp(t, nil)

	name := strings.Repeat("й", 60)
	dest := "https://пример.рф/" + strings.Repeat("ж", 1200)
	resp, _ := app.postForm(t, "/new", url.Values{"name": {name}, "url": {dest}})
	assert.Equal(t, http.StatusFound, resp.StatusCode)

	link, err := app.repo.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, name, link.Name)
	assert.Equal(t, dest, link.URL)
}

func TestNew_CreatesAndLists(t *testing.T) {
	app := newTestApp(t, nil)

	resp, _ := app.postForm(t, "/new", url.Values{"name": {"Example"}, "url": {"example.com"}})
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	link, err := app.repo.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Example", link.Name)
	assert.Equal(t, "example.com", link.URL)
	assert.Zero(t, link.Counter)

	resp, body := app.get(t, "/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Record was successfully added")
	assert.Contains(t, body, "Example")
	assert.Contains(t, body, `<a href="/visit/1">1</a>`)
	assert.Contains(t, body, "example.com")

	// The flash is shown once
	_, body = app.get(t, "/")
	assert.NotContains(t, body, "Record was successfully added")
	assert.Contains(t, body, "Example")
}

func TestList_EscapesValues(t *testing.T) {
	app := newTestApp(t, nil)
	app.seed(t, "<script>alert(1)</script>", "example.com")

	_, body := app.get(t, "/")

	assert.NotContains(t, body, "<script>alert(1)</script>")
	assert.Contains(t, body, "&lt;script&gt;")
}

func TestHealth(t *testing.T) {
	app := newTestApp(t, nil)

	resp, body := app.get(t, "/healthz")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"message":"ok"}`, body)
}

func TestUnknownRoute(t *testing.T) {
	app := newTestApp(t, nil)

	resp, _ := app.get(t, "/nope")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
