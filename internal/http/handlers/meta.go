package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// MetaHandler describes the running deployment.
type MetaHandler struct {
	env     string
	version string
	store   string
}

func NewMetaHandler(env, version, store string) *MetaHandler {
	return &MetaHandler{env: env, version: version, store: store}
}

func (h *MetaHandler) GetMeta(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":        "Underwriter Portal",
		"version":     h.version,
		"env":         h.env,
		"storeDriver": h.store,
	})
}

// Smoke answers the legacy /test probe.
func (h *MetaHandler) Smoke(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Server is working!"})
}
