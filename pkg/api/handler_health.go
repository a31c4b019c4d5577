package api

import (
	"context"
	"net/http"
	"time"

	echo "github.com/labstack/echo/v5"

	"github.com/codeready-toolchain/sqlbench/pkg/database"
	"github.com/codeready-toolchain/sqlbench/pkg/version"
)

// healthHandler handles GET /health.
func (s *Server) healthHandler(c *echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	dbHealth, err := database.Health(ctx, s.dbClient.DB())
	body := map[string]any{
		"status":   "healthy",
		"version":  version.Version,
		"database": dbHealth,
		"catalog": map[string]any{
			"tasks": s.catalog.Len(),
		},
		"dialect":     s.dbClient.Dialect(),
		"connections": s.connManager.ConnectionCount(),
	}
	if err != nil {
		body["status"] = "unhealthy"
		body["error"] = err.Error()
		return c.JSON(http.StatusServiceUnavailable, body)
	}
	return c.JSON(http.StatusOK, body)
}
