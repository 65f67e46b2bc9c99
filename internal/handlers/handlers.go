package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/kubev2v/virt-harness/internal/services"
	"github.com/kubev2v/virt-harness/pkg/checkpoint"
)

type Handler struct {
	reports  *services.Reports
	registry *checkpoint.Registry
}

func New(reports *services.Reports, registry *checkpoint.Registry) *Handler {
	return &Handler{
		reports:  reports,
		registry: registry,
	}
}

// RegisterHandlers mounts every endpoint on router, which is expected to be
// the /api/v1 group.
func RegisterHandlers(router gin.IRouter, h *Handler) {
	router.GET("/runs", h.GetRuns)
	router.GET("/runs/:id", h.GetRun)
	router.GET("/runs/:id/log", h.GetRunLog)
	router.GET("/summary", h.GetSummary)
	router.GET("/checkpoints", h.GetCheckpoints)
}
