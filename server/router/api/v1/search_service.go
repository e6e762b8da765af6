package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type internetSearchRequest struct {
	Queries []string `json:"queries"`
}

// InternetSearch proxies web search queries. The response is one result
// group per query, in query order.
func (s *APIV1Service) InternetSearch(c echo.Context) error {
	if s.searcher == nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "Search is not configured"})
	}

	req := &internetSearchRequest{}
	if err := c.Bind(req); err != nil || req.Queries == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid query format"})
	}

	results := s.searcher.SearchAll(c.Request().Context(), req.Queries)
	return c.JSON(http.StatusOK, results)
}
