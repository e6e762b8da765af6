// Package v1 exposes the canvas chat REST and websocket API.
package v1

import (
	jsoniter "github.com/json-iterator/go"
	"github.com/labstack/echo/v4"

	"github.com/genesiss-tech/genesiss/internal/debounce"
	"github.com/genesiss-tech/genesiss/internal/metrics"
	"github.com/genesiss-tech/genesiss/internal/profile"
	"github.com/genesiss-tech/genesiss/plugin/search"
	"github.com/genesiss-tech/genesiss/store"
	"github.com/genesiss-tech/genesiss/turn"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type APIV1Service struct {
	Profile *profile.Profile
	Store   *store.Store
	Router  *turn.Router

	scheduler *debounce.Scheduler
	metrics   *metrics.Metrics
	searcher  *search.Searcher
}

func NewAPIV1Service(instanceProfile *profile.Profile, storeInstance *store.Store, router *turn.Router, scheduler *debounce.Scheduler, m *metrics.Metrics) *APIV1Service {
	service := &APIV1Service{
		Profile:   instanceProfile,
		Store:     storeInstance,
		Router:    router,
		scheduler: scheduler,
		metrics:   m,
	}

	if len(instanceProfile.JinaAPIKeys) > 0 {
		searcher, err := search.NewSearcher(instanceProfile.JinaAPIKeys)
		if err == nil {
			service.searcher = searcher
		}
	}
	return service
}

// Register mounts all v1 routes on the echo instance.
func (s *APIV1Service) Register(e *echo.Echo) {
	api := e.Group("/api")

	canvasGroup := api.Group("/canvaschat")
	canvasGroup.POST("/getcanvas", s.GetCanvas)
	canvasGroup.POST("/update", s.UpdateCanvas)
	canvasGroup.POST("/new", s.NewTurn)
	canvasGroup.GET("/ws", s.CanvasWebSocket)

	chatGroup := api.Group("/chats")
	chatGroup.POST("/get", s.GetChat)
	chatGroup.POST("/store", s.StoreChat)

	api.POST("/internet", s.InternetSearch)
}
