package monitor

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/polymer.report/internal/config"
	"github.com/banshee-data/polymer.report/internal/monitoring"
	"github.com/banshee-data/polymer.report/internal/saw"
	"github.com/banshee-data/polymer.report/internal/saw/ensemble"
	"github.com/banshee-data/polymer.report/internal/saw/scaling"
	"github.com/banshee-data/polymer.report/internal/testutil"
)

func newTestMux(t *testing.T) *http.ServeMux {
	t.Helper()
	orig := monitoring.Logf
	monitoring.SetLogger(nil)
	t.Cleanup(func() { monitoring.SetLogger(orig) })
	return NewWebServer(WebServerConfig{Address: ":0"}).ServeMux()
}

func doRequest(t *testing.T, mux *http.ServeMux, method, path string) *http.Response {
	t.Helper()
	rec := testutil.NewTestRecorder()
	mux.ServeHTTP(rec, testutil.NewTestRequest(method, path))
	return rec.Result()
}

func decodeBody(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestHealthEndpoint(t *testing.T) {
	resp := doRequest(t, newTestMux(t), http.MethodGet, "/health")
	testutil.AssertStatusCode(t, resp.StatusCode, http.StatusOK)

	var body map[string]string
	decodeBody(t, resp, &body)
	assert.Equal(t, "ok", body["status"])
}

func TestEnsembleEndpoint(t *testing.T) {
	mux := newTestMux(t)
	resp := doRequest(t, mux, http.MethodGet, "/api/ensemble?n=6&trials=50&method=unweighted&seed=3")
	testutil.AssertStatusCode(t, resp.StatusCode, http.StatusOK)

	var body struct {
		N      int            `json:"n"`
		Method string         `json:"method"`
		Trials int            `json:"trials"`
		Seed   int64          `json:"seed"`
		Stats  ensemble.Stats `json:"stats"`
	}
	decodeBody(t, resp, &body)

	assert.Equal(t, 6, body.N)
	assert.Equal(t, "unweighted", body.Method)
	assert.Equal(t, 50, body.Trials)
	assert.Equal(t, int64(3), body.Seed)
	assert.GreaterOrEqual(t, body.Stats.SuccessRate, 0.0)
	assert.LessOrEqual(t, body.Stats.SuccessRate, 100.0)
}

func TestEnsembleEndpointValidation(t *testing.T) {
	mux := newTestMux(t)

	tests := []struct {
		name string
		path string
		code int
	}{
		{"missing n", "/api/ensemble", http.StatusBadRequest},
		{"zero n", "/api/ensemble?n=0", http.StatusBadRequest},
		{"oversized n", "/api/ensemble?n=100000", http.StatusBadRequest},
		{"bad method", "/api/ensemble?n=6&method=bogus", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doRequest(t, mux, http.MethodGet, tt.path)
			testutil.AssertStatusCode(t, resp.StatusCode, tt.code)

			var body map[string]string
			decodeBody(t, resp, &body)
			assert.NotEmpty(t, body["error"])
		})
	}

	resp := doRequest(t, mux, http.MethodDelete, "/api/ensemble?n=6")
	testutil.AssertStatusCode(t, resp.StatusCode, http.StatusMethodNotAllowed)
}

func TestSweepEndpoint(t *testing.T) {
	mux := newTestMux(t)
	resp := doRequest(t, mux, http.MethodGet, "/api/sweep?range=4:12:4&trials=40&seed=1")
	testutil.AssertStatusCode(t, resp.StatusCode, http.StatusOK)

	var curve scaling.Curve
	decodeBody(t, resp, &curve)

	require.Len(t, curve.Points, 3)
	assert.Equal(t, []int{4, 8, 12}, []int{curve.Points[0].N, curve.Points[1].N, curve.Points[2].N})
	assert.Equal(t, 40, curve.Trials)
	assert.Equal(t, int64(1), curve.Seed)
}

func TestSweepEndpointValidation(t *testing.T) {
	mux := newTestMux(t)

	resp := doRequest(t, mux, http.MethodGet, "/api/sweep?range=banana")
	testutil.AssertStatusCode(t, resp.StatusCode, http.StatusBadRequest)

	resp = doRequest(t, mux, http.MethodGet, "/api/sweep?range=4:9999")
	testutil.AssertStatusCode(t, resp.StatusCode, http.StatusBadRequest)
}

func TestTrajectoryEndpoint(t *testing.T) {
	mux := newTestMux(t)
	resp := doRequest(t, mux, http.MethodGet, "/api/trajectory?n=5&method=weighted&seed=2")
	testutil.AssertStatusCode(t, resp.StatusCode, http.StatusOK)

	var body struct {
		Record   saw.TrialRecord `json:"record"`
		Snapshot saw.Snapshot    `json:"snapshot"`
	}
	decodeBody(t, resp, &body)

	assert.Equal(t, 5, body.Snapshot.Target)
	assert.Equal(t, saw.DefaultGridSize(5), body.Snapshot.Size)
	assert.Equal(t, body.Snapshot.Steps+1, len(body.Snapshot.Path))
	if body.Record.Success {
		assert.Equal(t, 5, body.Snapshot.Steps)
	}
}

func TestTrajectoryUsesConfiguredGridMargin(t *testing.T) {
	orig := monitoring.Logf
	monitoring.SetLogger(nil)
	t.Cleanup(func() { monitoring.SetLogger(orig) })

	margin := 2
	mux := NewWebServer(WebServerConfig{
		Address: ":0",
		Config:  &config.SimConfig{GridMargin: &margin},
	}).ServeMux()

	resp := doRequest(t, mux, http.MethodGet, "/api/trajectory?n=5&seed=2")
	testutil.AssertStatusCode(t, resp.StatusCode, http.StatusOK)

	var body struct {
		Snapshot saw.Snapshot `json:"snapshot"`
	}
	decodeBody(t, resp, &body)

	// margin*N + 3, not the hardcoded default.
	assert.Equal(t, 2*5+3, body.Snapshot.Size)
}

func TestTrajectoryEndpointValidation(t *testing.T) {
	mux := newTestMux(t)

	resp := doRequest(t, mux, http.MethodGet, "/api/trajectory")
	testutil.AssertStatusCode(t, resp.StatusCode, http.StatusBadRequest)

	resp = doRequest(t, mux, http.MethodPost, "/api/trajectory?n=5")
	testutil.AssertStatusCode(t, resp.StatusCode, http.StatusMethodNotAllowed)
}

func TestListRunsWithoutStore(t *testing.T) {
	resp := doRequest(t, newTestMux(t), http.MethodGet, "/api/runs")
	testutil.AssertStatusCode(t, resp.StatusCode, http.StatusServiceUnavailable)
}

func TestChartEndpointsRenderHTML(t *testing.T) {
	mux := newTestMux(t)

	paths := []string{
		"/charts/success?range=4:12:4&trials=30&seed=1",
		"/charts/scaling?range=4:12:4&trials=30&seed=1",
		"/charts/trajectory?n=8&seed=2",
	}
	for _, path := range paths {
		resp := doRequest(t, mux, http.MethodGet, path)
		testutil.AssertStatusCode(t, resp.StatusCode, http.StatusOK)
		assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Type"), "text/html"), "Content-Type for %s", path)
		resp.Body.Close()
	}
}

func TestQueryHelpers(t *testing.T) {
	req := testutil.NewTestRequest(http.MethodGet, "/x?a=5&b=junk&s=9000000000")

	assert.Equal(t, 5, queryInt(req, "a", 1))
	assert.Equal(t, 1, queryInt(req, "b", 1))
	assert.Equal(t, 1, queryInt(req, "missing", 1))
	assert.Equal(t, int64(9000000000), queryInt64(req, "s", 0))

	m, err := queryMethod(req)
	require.NoError(t, err)
	assert.Equal(t, saw.Weighted, m)
}
