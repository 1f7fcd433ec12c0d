package handlers

import (
	"net/http"

	"github.com/Conceptual-Machines/jazz-grammar/internal/grammar"
	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	version string
}

func NewHealthHandler(version string) *HealthHandler {
	return &HealthHandler{version: version}
}

// HealthCheck returns the health status of the API
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"ok":      true,
		"status":  "healthy",
		"version": h.version,
		"rules":   len(grammar.Rules()),
	})
}
