package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AngelCh415/campaign-dashboard/internal/dashboard"
	"github.com/AngelCh415/campaign-dashboard/internal/ingest"
	"github.com/AngelCh415/campaign-dashboard/internal/models"
	"github.com/AngelCh415/campaign-dashboard/internal/pipeline"
	"github.com/AngelCh415/campaign-dashboard/internal/store"
	"github.com/AngelCh415/campaign-dashboard/internal/telemetry"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

type fakeLoader struct {
	st       *store.Store
	err      error
	inflight bool
	ctxErr   error
}

func (f *fakeLoader) Load(ctx context.Context) error {
	f.ctxErr = ctx.Err()
	if f.inflight {
		return ingest.ErrLoadInProgress
	}
	f.st.BeginLoad()
	if f.err != nil {
		f.st.LoadFailed(f.err.Error())
		return f.err
	}
	f.st.LoadSucceeded(records())
	return nil
}

func (f *fakeLoader) InFlight() bool { return f.inflight }

func records() []models.Record {
	var out []models.Record
	for i, ch := range []string{"Search", "Social", "Email", "Search", "Video"} {
		out = append(out, models.Record{
			ID:          models.RecordID(string(rune('a' + i))),
			Channel:     ch,
			Region:      "NA",
			Spend:       decimal.NewFromInt(int64(10 * (i + 1))),
			Impressions: 100,
			Clicks:      int64(i),
			Conversions: int64(i + 1),
		})
	}
	return out
}

func setup(t *testing.T) (*httptest.Server, *fakeLoader) {
	t.Helper()
	st := store.NewStore(2)
	l := &fakeLoader{st: st}
	tel := telemetry.New()
	d := dashboard.New(st, pipeline.New(), l)
	srv := httptest.NewServer(NewRouter(quiet, d, tel.Handler()))
	t.Cleanup(srv.Close)
	return srv, l
}

func do(t *testing.T, method, url string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequest(method, url, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, b
}

func decode[T any](t *testing.T, b []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(b, &v))
	return v
}

func TestHealthAndReadiness(t *testing.T) {
	srv, _ := setup(t)

	resp, body := do(t, http.MethodGet, srv.URL+"/healthz")
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "ok", string(body))
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	resp, _ = do(t, http.MethodGet, srv.URL+"/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	resp, _ = do(t, http.MethodPost, srv.URL+"/snapshot/load")
	require.Equal(t, 200, resp.StatusCode)

	resp, _ = do(t, http.MethodGet, srv.URL+"/readyz")
	assert.Equal(t, 200, resp.StatusCode)
}

func TestViewsAndMutations(t *testing.T) {
	srv, _ := setup(t)
	resp, _ := do(t, http.MethodPost, srv.URL+"/snapshot/load")
	require.Equal(t, 200, resp.StatusCode)

	_, body := do(t, http.MethodGet, srv.URL+"/view/records")
	page := decode[models.Page](t, body)
	assert.Equal(t, 3, page.TotalPages)
	assert.Len(t, page.Records, 2)

	resp, body = do(t, http.MethodPost, srv.URL+"/view/page?n=3")
	require.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, 3, decode[store.State](t, body).CurrentPage)
	_, body = do(t, http.MethodGet, srv.URL+"/view/records")
	assert.Len(t, decode[models.Page](t, body).Records, 1)

	resp, body = do(t, http.MethodPost, srv.URL+"/view/sort?key=spend")
	require.Equal(t, 200, resp.StatusCode)
	st := decode[store.State](t, body)
	assert.Equal(t, models.SortSpend, st.Sort.Key)
	assert.Equal(t, 1, st.CurrentPage)
	_, body = do(t, http.MethodPost, srv.URL+"/view/sort?key=spend")
	assert.Equal(t, models.Descending, decode[store.State](t, body).Sort.Direction)

	_, body = do(t, http.MethodPost, srv.URL+"/view/channels/toggle?name=Search")
	assert.Equal(t, []string{"Search"}, decode[store.State](t, body).SelectedChannels.Values())
	_, body = do(t, http.MethodGet, srv.URL+"/view/summary")
	sum := decode[models.Summary](t, body)
	assert.Equal(t, "50", sum.TotalSpend.String())

	_, body = do(t, http.MethodPost, srv.URL+"/view/search?q=zzz")
	assert.Equal(t, "zzz", decode[store.State](t, body).SearchTerm)
	_, body = do(t, http.MethodGet, srv.URL+"/view/chart")
	assert.Empty(t, decode[[]models.ChannelAggregate](t, body))

	do(t, http.MethodPost, srv.URL+"/view/channels/clear")
	_, body = do(t, http.MethodPost, srv.URL+"/view/reset")
	st = decode[store.State](t, body)
	assert.Empty(t, st.SearchTerm)
	assert.Equal(t, models.SortNone, st.Sort.Key)

	_, body = do(t, http.MethodGet, srv.URL+"/view/top")
	top := decode[[]models.TopPerformer](t, body)
	require.NotEmpty(t, top)
	assert.Equal(t, "Video", top[0].Channel)

	_, body = do(t, http.MethodGet, srv.URL+"/view/channels")
	assert.Equal(t, []string{"Email", "Search", "Social", "Video"}, decode[[]string](t, body))

	_, body = do(t, http.MethodGet, srv.URL+"/view/snapshot")
	snap := decode[map[string]json.RawMessage](t, body)
	for _, k := range []string{"state", "page", "summary", "chart", "top_performers", "channels"} {
		assert.Contains(t, snap, k)
	}
}

func TestBadParameters(t *testing.T) {
	srv, _ := setup(t)
	for _, url := range []string{
		"/view/page?n=two",
		"/view/page",
		"/view/sort?key=ctr",
		"/view/sort",
		"/view/channels/toggle",
	} {
		resp, _ := do(t, http.MethodPost, srv.URL+url)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, url)
	}
}

func TestLoadErrors(t *testing.T) {
	srv, l := setup(t)

	l.err = errors.New("upstream down")
	resp, body := do(t, http.MethodPost, srv.URL+"/snapshot/load")
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Contains(t, string(body), "upstream down")

	_, body = do(t, http.MethodGet, srv.URL+"/view/state")
	assert.Equal(t, "upstream down", decode[store.State](t, body).Error)

	l.inflight = true
	resp, _ = do(t, http.MethodPost, srv.URL+"/snapshot/load")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, _ = do(t, http.MethodGet, srv.URL+"/view/records")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	resp, _ = do(t, http.MethodGet, srv.URL+"/view/state")
	assert.Equal(t, 200, resp.StatusCode, "state stays readable while loading")
}

func TestLoadSurvivesClientDisconnect(t *testing.T) {
	st := store.NewStore(2)
	l := &fakeLoader{st: st}
	h := NewRouter(quiet, dashboard.New(st, pipeline.New(), l), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodPost, "/snapshot/load", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NoError(t, l.ctxErr)
	assert.True(t, st.Snapshot().Loaded())
	assert.Empty(t, st.Snapshot().Error)
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := setup(t)
	resp, body := do(t, http.MethodGet, srv.URL+"/metrics")
	assert.Equal(t, 200, resp.StatusCode)
	assert.True(t, strings.Contains(string(body), "go_goroutines"))
}
