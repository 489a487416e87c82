package node

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/lioia/markov-pagerank/pkg/rank"
	"github.com/lioia/markov-pagerank/pkg/utils"
	"github.com/pkg/errors"
)

// NewApiServer returns the HTTP API:
//
//	GET  /health
//	POST /rank    RankRequest -> RankResponse
func NewApiServer() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.GET("/health", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	e.POST("/rank", rankRoute)
	return e
}

func rankRoute(c echo.Context) error {
	var req RankRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Graph == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "missing graph")
	}
	utils.ServerLog("HTTP rank request (%d pages)", len(req.Graph))
	ctx, cancel := context.WithTimeout(c.Request().Context(), rankTimeout)
	defer cancel()
	resp, err := Handle(ctx, req)
	if err != nil {
		return echo.NewHTTPError(httpStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, resp)
}

func httpStatus(err error) int {
	switch {
	case isClientError(err):
		return http.StatusBadRequest
	case errors.Is(err, rank.ErrNotConverged):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}
