package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	v1 "github.com/kubev2v/virt-harness/api/v1"
)

// GetCheckpoints lists the registered checkpoints, optionally of one module
// (GET /checkpoints)
func (h *Handler) GetCheckpoints(c *gin.Context) {
	module := c.Query("module")

	cps := h.registry.List(module)
	resp := make([]v1.Checkpoint, 0, len(cps))
	for _, cp := range cps {
		resp = append(resp, v1.NewCheckpointFromModel(h.registry.Module(cp.Name), cp))
	}
	c.JSON(http.StatusOK, resp)
}
