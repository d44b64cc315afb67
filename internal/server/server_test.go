package server

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rpgo/asset-projector/internal/cache"
	"github.com/rpgo/asset-projector/internal/domain"
	"github.com/rpgo/asset-projector/internal/recorder"
	"github.com/rpgo/asset-projector/internal/scenario"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
)

const indexFundDeck = `{"scenarios":[{"name":"index-fund","periods":10,"initial_balance":0,` +
	`"rate":{"kind":"constant","value":0.05},"contribution":{"kind":"fixed","amount":1000000}}]}`

func do(s *Server, method, uri, body string) *fasthttp.RequestCtx {
	var ctx fasthttp.RequestCtx
	ctx.Request.Header.SetMethod(method)
	ctx.Request.SetRequestURI(uri)
	if body != "" {
		ctx.Request.SetBodyString(body)
	}
	s.Handler(&ctx)
	return &ctx
}

func decodeError(t *testing.T, ctx *fasthttp.RequestCtx) ErrorResponse {
	t.Helper()
	var e ErrorResponse
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &e))
	assert.Equal(t, ctx.Response.StatusCode(), e.Status)
	return e
}

func newTestServer(t *testing.T) (*Server, *cache.MemoryCache) {
	t.Helper()
	rec, err := recorder.NewSQLiteRecorder(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { rec.Close() })
	mem := cache.NewMemoryCache()
	return New(scenario.NewRunner(rec, nil), mem, rec, nil, nil), mem
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t)
	ctx := do(s, "GET", "/healthz", "")
	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	assert.JSONEq(t, `{"status":"ok"}`, string(ctx.Response.Body()))
}

func TestProjections(t *testing.T) {
	s, mem := newTestServer(t)

	first := do(s, "POST", "/v1/projections", indexFundDeck)
	require.Equal(t, fasthttp.StatusOK, first.Response.StatusCode(), string(first.Response.Body()))
	assert.Equal(t, "MISS", string(first.Response.Header.Peek("X-Cache")))

	var report domain.RunReport
	require.NoError(t, json.Unmarshal(first.Response.Body(), &report))
	require.Len(t, report.Scenarios, 1)
	assert.Equal(t, "http", report.Source)
	assert.Equal(t, "12577893", report.Scenarios[0].Summary.FinalBalance.String())
	assert.Equal(t, 1, mem.Len())

	second := do(s, "POST", "/v1/projections", indexFundDeck)
	require.Equal(t, fasthttp.StatusOK, second.Response.StatusCode())
	assert.Equal(t, "HIT", string(second.Response.Header.Peek("X-Cache")))
	assert.Equal(t, first.Response.Body(), second.Response.Body())

	reordered := `{ "scenarios": [ { "contribution": {"amount": 1000000, "kind": "fixed"},
		"rate": {"value": 0.05, "kind": "constant"}, "initial_balance": 0, "periods": 10, "name": "index-fund" } ] }`
	third := do(s, "POST", "/v1/projections", reordered)
	require.Equal(t, fasthttp.StatusOK, third.Response.StatusCode())
	assert.Equal(t, "HIT", string(third.Response.Header.Peek("X-Cache")), "key ignores formatting")

	shorthand := `{"scenarios":[{"name":"index-fund","periods":10,"initial_balance":0,` +
		`"rate":0.05,"contribution":{"kind":"fixed","amount":1000000}}]}`
	fourth := do(s, "POST", "/v1/projections", shorthand)
	require.Equal(t, fasthttp.StatusOK, fourth.Response.StatusCode(), string(fourth.Response.Body()))
	assert.Equal(t, "HIT", string(fourth.Response.Header.Peek("X-Cache")), "bare rate is a constant rate")

	runs := do(s, "GET", "/v1/runs?limit=5", "")
	require.Equal(t, fasthttp.StatusOK, runs.Response.StatusCode())
	var history []recorder.RunSummary
	require.NoError(t, json.Unmarshal(runs.Response.Body(), &history))
	require.Len(t, history, 1, "cache hits are not re-run")
	assert.Equal(t, report.RunID, history[0].RunID)
}

func TestProjectionsErrors(t *testing.T) {
	s, _ := newTestServer(t)

	tests := []struct {
		name   string
		method string
		body   string
		status int
		errMsg string
	}{
		{"malformed json", "POST", `{"scenarios":`, fasthttp.StatusBadRequest, "failed to parse JSON"},
		{"empty deck", "POST", `{}`, fasthttp.StatusBadRequest, "no scenarios or sweeps provided"},
		{
			"rate table file",
			"POST",
			`{"scenarios":[{"name":"a","periods":1,"rate":{"kind":"table","file":"/etc/passwd"},"contribution":{"kind":"fixed","amount":1}}]}`,
			fasthttp.StatusBadRequest,
			"not allowed",
		},
		{
			"overflow",
			"POST",
			`{"scenarios":[{"name":"a","periods":100,"rate":{"kind":"constant","value":10000000000},"contribution":{"kind":"fixed","amount":1}}]}`,
			fasthttp.StatusUnprocessableEntity,
			"overflow",
		},
		{
			"periods beyond limit",
			"POST",
			`{"scenarios":[{"name":"a","periods":9223372036854775807,"rate":{"kind":"constant","value":0.05},"contribution":{"kind":"fixed","amount":1}}]}`,
			fasthttp.StatusBadRequest,
			"periods cannot exceed 1200",
		},
		{
			"sweep periods beyond limit",
			"POST",
			`{"sweeps":[{"name":"s","periods":5000,"rates":[0.05],"annual_contributions":[1]}]}`,
			fasthttp.StatusBadRequest,
			"periods cannot exceed 1200",
		},
		{"wrong method", "GET", "", fasthttp.StatusMethodNotAllowed, "method not allowed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := do(s, tt.method, "/v1/projections", tt.body)
			assert.Equal(t, tt.status, ctx.Response.StatusCode())
			e := decodeError(t, ctx)
			assert.Contains(t, e.Message, tt.errMsg)
		})
	}
}

func TestProjectionsTimeout(t *testing.T) {
	s, mem := newTestServer(t)
	s.Timeout = time.Nanosecond

	deck := `{"scenarios":[{"name":"mc","periods":1200,"rate":0.05,"contribution":{"kind":"fixed","amount":1},` +
		`"monte_carlo":{"simulations":2000,"mean":0.05,"stddev":0.15,"seed":7}}]}`
	ctx := do(s, "POST", "/v1/projections", deck)
	assert.Equal(t, fasthttp.StatusGatewayTimeout, ctx.Response.StatusCode())
	assert.Equal(t, "projection timed out", decodeError(t, ctx).Message)
	assert.Equal(t, 0, mem.Len())
}

func TestTargets(t *testing.T) {
	s, _ := newTestServer(t)

	ctx := do(s, "POST", "/v1/targets", `{"amount":1200000,"rate":0,"years":10,"monthly":true}`)
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode(), string(ctx.Response.Body()))
	var res domain.TargetResult
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &res))
	assert.Equal(t, "10000", res.Contribution.String())
	assert.Equal(t, "monthly", res.Frequency)

	ctx = do(s, "POST", "/v1/targets", `{"amount":100,"rate":0.05,"years":0}`)
	assert.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())

	ctx = do(s, "POST", "/v1/targets", `not json`)
	assert.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())
}

func TestRunsLimit(t *testing.T) {
	s, _ := newTestServer(t)

	ctx := do(s, "GET", "/v1/runs", "")
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	assert.JSONEq(t, `[]`, string(ctx.Response.Body()))

	ctx = do(s, "GET", "/v1/runs?limit=abc", "")
	assert.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())
	ctx = do(s, "GET", "/v1/runs?limit=0", "")
	assert.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())
}

func TestNotFound(t *testing.T) {
	s, _ := newTestServer(t)
	ctx := do(s, "GET", "/v2/anything", "")
	assert.Equal(t, fasthttp.StatusNotFound, ctx.Response.StatusCode())
}

func TestRateLimitedRequests(t *testing.T) {
	s, _ := newTestServer(t)
	s.Limiter = NewRateLimiter(1, time.Hour)
	defer s.Limiter.Stop()

	assert.Equal(t, fasthttp.StatusOK, do(s, "GET", "/v1/runs", "").Response.StatusCode())
	limited := do(s, "GET", "/v1/runs", "")
	assert.Equal(t, fasthttp.StatusTooManyRequests, limited.Response.StatusCode())
	assert.Equal(t, "rate limit exceeded", decodeError(t, limited).Message)

	// health checks are never limited
	assert.Equal(t, fasthttp.StatusOK, do(s, "GET", "/healthz", "").Response.StatusCode())
}

func TestRateLimiter(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(2, time.Minute)
	defer rl.Stop()
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("a"))
	assert.True(t, rl.Allow("a"))
	assert.False(t, rl.Allow("a"))
	assert.True(t, rl.Allow("b"), "buckets are per client")

	now = now.Add(time.Minute)
	assert.True(t, rl.Allow("a"), "bucket refills")

	now = now.Add(2 * time.Hour)
	rl.cleanup()
	rl.mu.Lock()
	assert.Empty(t, rl.clients)
	rl.mu.Unlock()
}
