package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/printdesk/printd/internal/device"
	"github.com/printdesk/printd/internal/retention"
)

type DeviceHandler struct {
	gateway device.Gateway
	sweeper *retention.Sweeper
}

func NewDeviceHandler(gw device.Gateway, sweeper *retention.Sweeper) *DeviceHandler {
	return &DeviceHandler{gateway: gw, sweeper: sweeper}
}

func (h *DeviceHandler) GetStatus(c *gin.Context) {
	res := h.gateway.Status(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"available": res.Available,
		"status":    res.Status,
		"message":   res.Message,
	})
}

func (h *DeviceHandler) GetQueue(c *gin.Context) {
	listing := h.gateway.QueryQueue(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"jobs":    listing.Jobs,
		"count":   len(listing.Jobs),
		"message": listing.Message,
	})
}

// RunSweep triggers an on-demand retention sweep.
func (h *DeviceHandler) RunSweep(c *gin.Context) {
	res := h.sweeper.RunAll(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"uploaded_deleted": res.UploadedDeleted,
		"scanned_deleted":  res.ScannedDeleted,
		"jobs_deleted":     res.JobsDeleted,
	})
}

func (h *DeviceHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/device/status", h.GetStatus)
	r.GET("/device/queue", h.GetQueue)
	r.POST("/maintenance/sweep", h.RunSweep)
}
