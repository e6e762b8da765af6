// Package server wires the HTTP surface of the canvas chat service.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/genesiss-tech/genesiss/agent"
	"github.com/genesiss-tech/genesiss/ai/llm"
	"github.com/genesiss-tech/genesiss/ai/planner"
	"github.com/genesiss-tech/genesiss/gateway"
	"github.com/genesiss-tech/genesiss/internal/debounce"
	"github.com/genesiss-tech/genesiss/internal/metrics"
	"github.com/genesiss-tech/genesiss/internal/profile"
	apiv1 "github.com/genesiss-tech/genesiss/server/router/api/v1"
	"github.com/genesiss-tech/genesiss/store"
	"github.com/genesiss-tech/genesiss/turn"
)

type Server struct {
	Profile *profile.Profile
	Store   *store.Store

	echoServer *echo.Echo
	scheduler  *debounce.Scheduler
	metrics    *metrics.Metrics
}

func NewServer(ctx context.Context, instanceProfile *profile.Profile, storeInstance *store.Store) (*Server, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	gatewayClient := gateway.NewClient(instanceProfile.GenesissAPIURL, instanceProfile.GenesissAPIKey)

	llmService, err := newPlannerBackend(instanceProfile, gatewayClient)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create planner backend")
	}

	m := metrics.New()
	registry := agent.NewRegistry(agent.NewAll(gatewayClient)...)
	router := turn.NewRouter(storeInstance, registry, planner.New(llmService, m), m)
	scheduler := debounce.NewScheduler()

	s := &Server{
		Profile:    instanceProfile,
		Store:      storeInstance,
		echoServer: e,
		scheduler:  scheduler,
		metrics:    m,
	}

	e.GET("/healthz", func(c echo.Context) error {
		if err := storeInstance.Ping(c.Request().Context()); err != nil {
			return echo.NewHTTPError(http.StatusServiceUnavailable, "storage unavailable")
		}
		return c.String(http.StatusOK, "Service ready.")
	})
	e.GET("/metrics", echo.WrapHandler(m.Handler()))

	apiV1Service := apiv1.NewAPIV1Service(instanceProfile, storeInstance, router, scheduler, m)
	apiV1Service.Register(e)

	return s, nil
}

// newPlannerBackend prefers a directly configured LLM and falls back to
// the Genesiss simple chat endpoint.
func newPlannerBackend(p *profile.Profile, client *gateway.Client) (llm.Service, error) {
	if !p.IsLLMEnabled() {
		slog.Info("planner: no LLM configured, using gateway simple chat")
		return llm.NewGatewayService(client), nil
	}

	slog.Info("planner: LLM configured", "provider", p.LLMProvider, "model", p.LLMModel)
	return llm.NewService(&llm.Config{
		Provider: p.LLMProvider,
		Model:    p.LLMModel,
		APIKey:   p.LLMAPIKey,
		BaseURL:  p.LLMBaseURL,
		Timeout:  p.LLMTimeout,
	})
}

func (s *Server) Start(ctx context.Context) error {
	address := fmt.Sprintf("%s:%d", s.Profile.Addr, s.Profile.Port)
	slog.Info("server started", "address", address, "mode", s.Profile.Mode, "version", s.Profile.Version)
	return s.echoServer.Start(address)
}

func (s *Server) Shutdown(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	// Flush pending canvas saves before the store goes away.
	s.scheduler.Drain()

	if err := s.echoServer.Shutdown(ctx); err != nil {
		slog.Error("failed to shutdown server", "error", err)
	}
	if err := s.Store.Close(); err != nil {
		slog.Error("failed to close store", "error", err)
	}
	slog.Info("server shutdown")
}
