package tools

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/parlaylab/sports-mcp/internal/config"
	"github.com/parlaylab/sports-mcp/internal/providers"
	"github.com/parlaylab/sports-mcp/internal/services"
)

// testUpstreams holds one fake handler per provider. Nil handlers get a
// server that fails the test on contact.
type testUpstreams struct {
	mlb    http.Handler
	soccer http.Handler
	live   http.Handler
	odds   http.Handler
	llm    http.Handler
}

func silentLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func unexpectedCall(t *testing.T, name string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected call to %s upstream: %s", name, r.URL.Path)
		w.WriteHeader(http.StatusTeapot)
	})
}

// newTestRegistry builds a registry whose providers point at fake upstreams.
// Backoff sleeps are disabled so retry paths run instantly.
func newTestRegistry(t *testing.T, up testUpstreams) *Registry {
	t.Helper()

	serve := func(name string, h http.Handler) *httptest.Server {
		if h == nil {
			h = unexpectedCall(t, name)
		}
		srv := httptest.NewServer(h)
		t.Cleanup(srv.Close)
		return srv
	}

	log := silentLogger()
	opts := providers.ClientOptions{Timeout: 2 * time.Second, Logger: log}
	noSleep := func(ctx context.Context, d time.Duration) error { return nil }

	mlb := providers.NewMLBClient(opts)
	mlb.SetBaseURL(serve("mlb", up.mlb).URL)
	mlb.Client().SetSleep(noSleep)

	soccer := providers.NewFootballDataClient("test-token", opts)
	soccer.SetBaseURL(serve("football-data", up.soccer).URL)

	var live *providers.SoccerDataClient
	if up.live != nil {
		live = providers.NewSoccerDataClient("test-token", opts)
		live.SetBaseURL(serve("soccerdata", up.live).URL)
	}

	odds := providers.NewOddsClient("test-key", opts)
	odds.SetBaseURL(serve("odds", up.odds).URL)

	llm := providers.NewLLMClient("test-key", "", "test-model", opts)
	llm.SetBaseURL(serve("llm", up.llm).URL)

	cfg := &config.Config{
		Port:           "8000",
		Env:            "development",
		MaxConcurrency: 15,
		RequestTimeout: 2 * time.Second,
		OverallTimeout: 10 * time.Second,
		LLMAPIKey:      "test-key",
		LLMModel:       "test-model",
	}

	return NewRegistry(RegistryDeps{
		Config:   cfg,
		MLB:      mlb,
		Soccer:   soccer,
		Live:     live,
		Odds:     odds,
		LLM:      llm,
		Breakers: services.NewCircuitBreakerService(time.Minute, log),
		Logger:   log,
	})
}

func jsonHandler(body string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	})
}
