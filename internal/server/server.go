// Package server exposes the projection engine over HTTP.
package server

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/rpgo/asset-projector/internal/cache"
	"github.com/rpgo/asset-projector/internal/calculation"
	"github.com/rpgo/asset-projector/internal/config"
	"github.com/rpgo/asset-projector/internal/domain"
	"github.com/rpgo/asset-projector/internal/recorder"
	"github.com/rpgo/asset-projector/internal/scenario"
	"github.com/valyala/fasthttp"
)

const defaultRunsLimit = 20

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// Server serves projections, targets and run history.
type Server struct {
	Runner      *scenario.Runner
	Cache       cache.Cache
	CachePrefix string
	Recorder    recorder.Recorder
	Limiter     *RateLimiter
	Logger      calculation.Logger
	// Timeout bounds a single projection request; 0 means no limit.
	Timeout time.Duration

	parser *config.InputParser
	srv    *fasthttp.Server
}

// New creates a Server. Nil cache, recorder or limiter disable that feature.
func New(runner *scenario.Runner, c cache.Cache, rec recorder.Recorder, limiter *RateLimiter, logger calculation.Logger) *Server {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	if runner == nil {
		runner = scenario.NewRunner(rec, logger)
	}
	s := &Server{
		Runner:      runner,
		Cache:       c,
		CachePrefix: "projection",
		Recorder:    rec,
		Limiter:     limiter,
		Logger:      calculation.OrNop(logger),
		parser:      &config.InputParser{DisallowFiles: true},
	}
	s.srv = &fasthttp.Server{
		Handler: s.Handler,
		Name:    "asset-projector",
	}
	return s
}

// Handler routes a request.
func (s *Server) Handler(ctx *fasthttp.RequestCtx) {
	path := string(ctx.Path())
	if path == "/healthz" {
		s.handleHealth(ctx)
		return
	}

	if s.Limiter != nil && !s.Limiter.Allow(ctx.RemoteIP().String()) {
		writeError(ctx, fasthttp.StatusTooManyRequests, "rate limit exceeded")
		return
	}

	switch path {
	case "/v1/projections":
		if !ctx.IsPost() {
			writeError(ctx, fasthttp.StatusMethodNotAllowed, "method not allowed")
			return
		}
		s.handleProjections(ctx)
	case "/v1/targets":
		if !ctx.IsPost() {
			writeError(ctx, fasthttp.StatusMethodNotAllowed, "method not allowed")
			return
		}
		s.handleTargets(ctx)
	case "/v1/runs":
		if !ctx.IsGet() {
			writeError(ctx, fasthttp.StatusMethodNotAllowed, "method not allowed")
			return
		}
		s.handleRuns(ctx)
	default:
		writeError(ctx, fasthttp.StatusNotFound, "not found")
	}
}

func (s *Server) handleHealth(ctx *fasthttp.RequestCtx) {
	writeJSON(ctx, fasthttp.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleProjections(ctx *fasthttp.RequestCtx) {
	deck, err := s.parser.ParseJSON(ctx.PostBody())
	if err != nil {
		writeError(ctx, fasthttp.StatusBadRequest, err.Error())
		return
	}
	// Re-encoding the parsed deck makes the key independent of whitespace and key order.
	canonical, err := json.Marshal(deck)
	if err != nil {
		writeError(ctx, fasthttp.StatusInternalServerError, "failed to encode deck")
		return
	}
	key := cache.Key(s.CachePrefix, canonical)

	runCtx := context.Background()
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(runCtx, s.Timeout)
		defer cancel()
	}

	if s.Cache != nil {
		cached, ok, err := s.Cache.Get(runCtx, key)
		if err != nil {
			s.Logger.Warnf("cache get: %v", err)
		} else if ok {
			ctx.Response.Header.Set("X-Cache", "HIT")
			ctx.SetContentType("application/json")
			ctx.SetStatusCode(fasthttp.StatusOK)
			ctx.SetBody(cached)
			return
		}
	}

	report, err := s.Runner.Run(runCtx, deck, "http")
	if errors.Is(err, context.DeadlineExceeded) {
		writeError(ctx, fasthttp.StatusGatewayTimeout, "projection timed out")
		return
	}
	if err != nil {
		writeError(ctx, fasthttp.StatusUnprocessableEntity, err.Error())
		return
	}

	out, err := json.Marshal(report)
	if err != nil {
		writeError(ctx, fasthttp.StatusInternalServerError, "failed to encode report")
		return
	}
	if s.Cache != nil {
		if err := s.Cache.Set(runCtx, key, out); err != nil {
			s.Logger.Warnf("cache set: %v", err)
		}
	}
	ctx.Response.Header.Set("X-Cache", "MISS")
	ctx.SetContentType("application/json")
	ctx.SetStatusCode(fasthttp.StatusOK)
	ctx.SetBody(out)
}

func (s *Server) handleTargets(ctx *fasthttp.RequestCtx) {
	var req domain.TargetRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		writeError(ctx, fasthttp.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	res, err := scenario.Target(req)
	if err != nil {
		status := fasthttp.StatusUnprocessableEntity
		if errors.Is(err, calculation.ErrInvalidConfiguration) {
			status = fasthttp.StatusBadRequest
		}
		writeError(ctx, status, err.Error())
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, res)
}

func (s *Server) handleRuns(ctx *fasthttp.RequestCtx) {
	limit := defaultRunsLimit
	if raw := ctx.QueryArgs().Peek("limit"); len(raw) > 0 {
		n, err := strconv.Atoi(string(raw))
		if err != nil || n <= 0 {
			writeError(ctx, fasthttp.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}
	runs, err := s.Recorder.ListRuns(context.Background(), limit)
	if err != nil {
		writeError(ctx, fasthttp.StatusInternalServerError, err.Error())
		return
	}
	if runs == nil {
		runs = []recorder.RunSummary{}
	}
	writeJSON(ctx, fasthttp.StatusOK, runs)
}

// SetReadTimeout bounds how long reading a request may take. Call before ListenAndServe.
func (s *Server) SetReadTimeout(d time.Duration) { s.srv.ReadTimeout = d }

// ListenAndServe serves on addr until Shutdown.
func (s *Server) ListenAndServe(addr string) error {
	s.Logger.Infof("projection service listening on %s", addr)
	return s.srv.ListenAndServe(addr)
}

// Shutdown stops accepting connections and waits for open requests.
func (s *Server) Shutdown() error {
	return s.srv.Shutdown()
}

func writeJSON(ctx *fasthttp.RequestCtx, status int, v any) {
	out, err := json.Marshal(v)
	if err != nil {
		status = fasthttp.StatusInternalServerError
		out = []byte(`{"status":500,"message":"failed to encode response"}`)
	}
	ctx.SetContentType("application/json")
	ctx.SetStatusCode(status)
	ctx.SetBody(out)
}

func writeError(ctx *fasthttp.RequestCtx, status int, message string) {
	writeJSON(ctx, status, ErrorResponse{Status: status, Message: message})
}
