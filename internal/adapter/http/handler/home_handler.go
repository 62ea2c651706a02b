package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"userapp/internal/adapter/http/helper"
	"userapp/internal/core/model/response"
)

const DocsPath = "/docs/v1/index.html"

type Pinger interface {
	Ping(ctx context.Context) error
}

type HomeHandler struct {
	name    string
	version string
	store   Pinger
}

func NewHomeHandler(name, version string, store Pinger) *HomeHandler {
	return &HomeHandler{name: name, version: version, store: store}
}

// Home godoc
// @Summary  Service banner
// @Tags     meta
// @Produce  json
// @Success  200  {object}  response.HomeResponse
// @Router   / [get]
func (h *HomeHandler) Home(c *gin.Context) {
	helper.SendSuccess(c, http.StatusOK, response.HomeResponse{
		Name:    h.name,
		Version: h.version,
		Docs:    DocsPath,
	})
}

// Docs sends /docs/v1 to the Swagger UI page.
func (h *HomeHandler) Docs(c *gin.Context) {
	c.Redirect(http.StatusFound, DocsPath)
}

// Health godoc
// @Summary  Liveness and store reachability
// @Tags     meta
// @Produce  json
// @Success  200  {object}  response.HealthResponse
// @Failure  503  {object}  response.HealthResponse
// @Router   /health [get]
func (h *HomeHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, response.HealthResponse{Status: "degraded", Database: "down"})
		return
	}

	helper.SendSuccess(c, http.StatusOK, response.HealthResponse{Status: "ok", Database: "up"})
}
