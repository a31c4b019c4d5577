package api

import (
	"net/http"

	echo "github.com/labstack/echo/v5"
)

// schemaHandler handles GET /api/v1/schema.
// Returns the reference schema snapshot in the same shape candidates receive
// inside task payloads.
func (s *Server) schemaHandler(c *echo.Context) error {
	info, err := s.adapter.SchemaInfo(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "reference schema unavailable")
	}
	return c.JSON(http.StatusOK, map[string]any{
		"dialect": s.dbClient.Dialect(),
		"tables":  info,
	})
}
