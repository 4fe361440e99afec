package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/printdesk/printd/internal/api/middleware"
	"github.com/printdesk/printd/internal/device"
	"github.com/printdesk/printd/internal/lifecycle"
	"github.com/printdesk/printd/internal/store"
)

// CreateJobRequest expects a document already stored by the upload
// collaborator; this layer does not parse or validate file content.
type CreateJobRequest struct {
	DocumentName string         `json:"document_name" binding:"required"`
	DocumentPath string         `json:"document_path" binding:"required"`
	Settings     map[string]any `json:"settings"`
}

type JobHandler struct {
	lifecycle *lifecycle.Lifecycle
	gateway   device.Gateway
}

func NewJobHandler(lc *lifecycle.Lifecycle, gw device.Gateway) *JobHandler {
	return &JobHandler{lifecycle: lc, gateway: gw}
}

func (h *JobHandler) CreateJob(c *gin.Context) {
	var req CreateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := middleware.CurrentUserID(c)

	out, err := h.lifecycle.CreateAndSubmit(c.Request.Context(), userID, req.DocumentName, req.DocumentPath, req.Settings)
	if err != nil {
		var verr *lifecycle.ValidationError
		switch {
		case errors.As(err, &verr):
			c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error(), "details": verr.Errors})
		case errors.Is(err, lifecycle.ErrMissingData):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create job"})
		}
		return
	}

	// A failed device submission is not an error: the job is persisted
	// and recoverable, the caller just hasn't reached the device yet.
	status := http.StatusCreated
	if !out.Submitted {
		status = http.StatusAccepted
	}
	c.JSON(status, gin.H{
		"job":       out.Job,
		"submitted": out.Submitted,
		"message":   out.Message,
	})
}

func (h *JobHandler) ListJobs(c *gin.Context) {
	userID := middleware.CurrentUserID(c)

	jobs, err := h.lifecycle.ListForUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list jobs"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"jobs": jobs, "count": len(jobs)})
}

func (h *JobHandler) GetJob(c *gin.Context) {
	job, ok := h.ownedJob(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, job)
}

func (h *JobHandler) ReconcileJob(c *gin.Context) {
	userID := middleware.CurrentUserID(c)

	job, err := h.lifecycle.Reconcile(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		h.writeLifecycleError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

// CancelJob forwards a cancel request for the job's device token. The
// stored job status is left for reconcile to settle.
func (h *JobHandler) CancelJob(c *gin.Context) {
	job, ok := h.ownedJob(c)
	if !ok {
		return
	}

	res := h.gateway.Cancel(c.Request.Context(), job.DeviceToken)
	status := http.StatusOK
	if !res.OK {
		status = http.StatusBadGateway
	}
	c.JSON(status, gin.H{"success": res.OK, "message": res.Message})
}

func (h *JobHandler) ownedJob(c *gin.Context) (*store.Job, bool) {
	userID := middleware.CurrentUserID(c)
	j, err := h.lifecycle.Get(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		h.writeLifecycleError(c, err)
		return nil, false
	}
	return j, true
}

func (h *JobHandler) writeLifecycleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, lifecycle.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
	case errors.Is(err, lifecycle.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "not your job"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func (h *JobHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/jobs", h.ListJobs)
	r.POST("/jobs", h.CreateJob)
	r.GET("/jobs/:id", h.GetJob)
	r.POST("/jobs/:id/reconcile", h.ReconcileJob)
	r.POST("/jobs/:id/cancel", h.CancelJob)
}
