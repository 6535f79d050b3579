// Package mockapi serves a scenario over plain HTTP so a storefront dev
// server, curl or a manual session can talk to the same canned backend the
// browser tests intercept.
package mockapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jwtpizza/pizza-e2e/internal/scenario"
	"github.com/jwtpizza/pizza-e2e/internal/version"
)

// Options configures a Server. Zero values disable the optional pieces.
type Options struct {
	Signer      scenario.Signer
	CORSOrigins []string
	LogRequests bool
	MetricsPath string
	Registry    *prometheus.Registry
}

// Server answers every non-admin request from the active scenario.
type Server struct {
	mu      sync.RWMutex
	sc      *scenario.Scenario
	rec     *scenario.Recorder
	rsp     *scenario.Responder
	engine  *gin.Engine
	metrics *Metrics
	events  *eventHub
}

// New builds a server answering sc. Call Handler or Run to serve it.
func New(sc *scenario.Scenario, opts Options) *Server {
	rec := scenario.NewRecorder()
	reg := opts.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	s := &Server{
		sc:      sc,
		rec:     rec,
		rsp:     &scenario.Responder{Signer: opts.Signer, Recorder: rec},
		metrics: newMetrics(reg),
		events:  newEventHub(),
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID())
	if len(opts.CORSOrigins) > 0 {
		r.Use(CORS(opts.CORSOrigins))
	}
	if opts.LogRequests {
		r.Use(AccessLog())
	}

	r.GET("/healthz", s.handleHealth)
	if opts.MetricsPath != "" {
		r.GET(opts.MetricsPath, gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	}
	admin := r.Group("/__mock")
	{
		admin.GET("/calls", s.handleCalls)
		admin.POST("/reset", s.handleReset)
		admin.GET("/events", s.handleEvents)
	}
	r.NoRoute(s.handleScenario)

	s.engine = r
	return s
}

// Handler exposes the router, mostly for httptest.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Scenario returns the active scenario.
func (s *Server) Scenario() *scenario.Scenario {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sc
}

// Swap activates sc and clears the recorder.
func (s *Server) Swap(sc *scenario.Scenario) {
	s.mu.Lock()
	s.sc = sc
	s.mu.Unlock()
	s.rec.Reset()
	s.events.publish(Event{Type: "swap", Scenario: sc.Name})
	log.Printf("[pizzamock] scenario %q active (%d routes)", sc.Name, len(sc.Routes))
}

// Recorder returns the recorder every served request is written to.
func (s *Server) Recorder() *scenario.Recorder {
	return s.rec
}

// Run listens on addr until ctx is done, then drains in-flight requests for
// at most shutdownTimeout.
func (s *Server) Run(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[pizzamock] listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("failed to serve on %s: %w", addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Printf("[pizzamock] shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return nil
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"scenario": s.Scenario().Name,
		"version":  version.GetInfo(),
	})
}

type callsResponse struct {
	Scenario   string         `json:"scenario"`
	Calls      []scenario.Hit `json:"calls"`
	Misses     []scenario.Hit `json:"misses"`
	Violations []string       `json:"violations"`
	Unmet      []string       `json:"unmet"`
}

func (s *Server) handleCalls(c *gin.Context) {
	sc := s.Scenario()
	resp := callsResponse{
		Scenario:   sc.Name,
		Calls:      s.rec.Calls(),
		Misses:     s.rec.Misses(),
		Violations: []string{},
		Unmet:      s.rec.Unmet(sc),
	}
	for _, v := range s.rec.Violations() {
		resp.Violations = append(resp.Violations, v.Error())
	}
	if resp.Calls == nil {
		resp.Calls = []scenario.Hit{}
	}
	if resp.Misses == nil {
		resp.Misses = []scenario.Hit{}
	}
	if resp.Unmet == nil {
		resp.Unmet = []string{}
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleReset(c *gin.Context) {
	s.rec.Reset()
	c.Status(http.StatusNoContent)
}

func (s *Server) handleScenario(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "failed to read body"})
		return
	}
	url := requestURL(c.Request)
	sc := s.Scenario()

	route, matchErr := sc.Match(c.Request.Method, url)
	reply := s.rsp.Answer(route, matchErr, scenario.Request{Method: c.Request.Method, URL: url, Body: body})
	if reply.Violation != nil {
		log.Printf("[pizzamock] %s %s: %v rid=%s", c.Request.Method, url, reply.Violation, c.GetString("request_id"))
	}

	// a wrong method is a violation against a known pattern, not a miss
	miss := errors.Is(matchErr, scenario.ErrNoRoute)
	name := ""
	if matchErr == nil {
		name = route.Name
	}
	s.metrics.observe(name, c.Request.Method, reply.Status, miss, reply.Violation != nil)

	ev := Event{
		Type:     "served",
		Scenario: sc.Name,
		Hit:      &scenario.Hit{Route: name, Method: c.Request.Method, URL: url, Body: string(body), Status: reply.Status},
	}
	if miss {
		ev.Type = "miss"
	}
	if reply.Violation != nil {
		ev.Violation = reply.Violation.Error()
	}
	s.events.publish(ev)

	c.Data(reply.Status, "application/json", reply.Body)
}

func requestURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host + r.URL.RequestURI()
}
