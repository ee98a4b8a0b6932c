package router

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
	"github.com/lintang-b-s/Collectorx/pkg/engine"
	http_server "github.com/lintang-b-s/Collectorx/pkg/http/server"
	"github.com/lintang-b-s/Collectorx/pkg/http/usecases"
	"github.com/lintang-b-s/Collectorx/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestEnforceJSONHandler(t *testing.T) {
	testCases := []struct {
		name        string
		method      string
		contentType string
		want        int
	}{
		{name: "get passes", method: http.MethodGet, want: http.StatusOK},
		{name: "json post", method: http.MethodPost, contentType: "application/json; charset=utf-8", want: http.StatusOK},
		{name: "missing content type", method: http.MethodPost, want: http.StatusBadRequest},
		{name: "form post", method: http.MethodPost, contentType: "application/x-www-form-urlencoded", want: http.StatusUnsupportedMediaType},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/computeTour", strings.NewReader("{}"))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			rec := httptest.NewRecorder()
			EnforceJSONHandler(okHandler).ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestRealIP(t *testing.T) {
	var got string
	h := RealIP(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.RemoteAddr
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "10.0.0.1, 10.0.0.2")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "10.0.0.1", got)

	req.Header.Set("X-Real-IP", "10.0.0.9")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "10.0.0.9", got)
}

func TestHeartbeat(t *testing.T) {
	h := Heartbeat("healthz")(http.NotFoundHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, ".", rec.Body.String())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/other", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLimit(t *testing.T) {
	h := Limit(1, 1)(okHandler)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestRecoverPanic(t *testing.T) {
	api := NewAPI(zap.NewNop(), nil, nil)
	h := api.recoverPanic(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "close", rec.Header().Get("Connection"))
}

func TestRouteLabel(t *testing.T) {
	assert.Equal(t, "/api/computeTour", routeLabel("/api/computeTour"))
	assert.Equal(t, "/doc", routeLabel("/doc/index.html"))
	assert.Equal(t, "/debug/pprof", routeLabel("/debug/pprof/heap"))
	assert.Equal(t, "other", routeLabel("/favicon.ico"))
}

func newTestServer(t *testing.T) (*httptest.Server, *prometheus.Registry) {
	t.Helper()
	log := zap.NewNop()
	reg := prometheus.NewRegistry()
	metric := metrics.NewMetric(reg)
	svc := usecases.NewRoutingService(log, engine.NewEngine(engine.DefaultConfig(), log, metric), nil)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	api := NewAPI(log, metric, reg)
	handler := api.Handler(ctx, http_server.Config{Timeout: 5 * time.Second}, svc)
	srv := httptest.NewServer(handler)
	t.Cleanup(func() {
		api.hub.RemoveAllUser()
		srv.Close()
	})
	return srv, reg
}

func TestAPIHandler(t *testing.T) {
	srv, _ := newTestServer(t)

	res, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)

	res, err = http.Post(srv.URL+"/api/computeTour", "application/json",
		strings.NewReader(`{"matrix":[[0,1],[1,0]],"start":0,"must_return":true}`))
	require.NoError(t, err)
	var env struct {
		Data struct {
			Tour []int `json:"tour"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&env))
	res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, []int{0, 1, 0}, env.Data.Tour)

	res, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "collectorx_plans_total")
	assert.Contains(t, string(body), `collectorx_http_requests_total{method="POST",path="/api/computeTour",status="200"} 1`)
}

func TestAPIWebsocket(t *testing.T) {
	srv, _ := newTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn, _, _, err := ws.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http")+"/api/ws")
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, wsutil.WriteClientText(conn, []byte(`{"action":"examplePoints"}`)))
	msg, err := wsutil.ReadServerText(conn)
	require.NoError(t, err)

	var reply struct {
		Action string `json:"action"`
		Data   struct {
			Points []json.RawMessage `json:"points"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(msg, &reply))
	assert.Equal(t, "examplePoints", reply.Action)
	assert.Len(t, reply.Data.Points, 4)
}
