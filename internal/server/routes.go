package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func (s *Server) setupRoutes() {
	s.echo.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	s.echo.GET("/metrics", echo.WrapHandler(s.metrics))

	s.auth.RegisterRoutes(s.echo, s.guards)
	s.catalog.RegisterRoutes(s.echo, s.guards)
	s.orders.RegisterRoutes(s.echo, s.guards)
	s.seller.RegisterRoutes(s.echo, s.guards)
	s.tokens.RegisterRoutes(s.echo, s.guards)
}
