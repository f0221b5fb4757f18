package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appsync "github.com/revo/commerce-sync/internal/application/sync"
)

// StoreHandler exposes the sync control plane over HTTP. Every endpoint is a
// thin shell: bind input, call the typed control-plane method, map the error.
type StoreHandler struct {
	BaseHandler
	controlPlane *appsync.ControlPlane
	thresholds   appsync.Thresholds
	logger       *zap.Logger
}

// NewStoreHandler creates a new StoreHandler
func NewStoreHandler(controlPlane *appsync.ControlPlane, thresholds appsync.Thresholds, logger *zap.Logger) *StoreHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StoreHandler{
		controlPlane: controlPlane,
		thresholds:   thresholds,
		logger:       logger,
	}
}

// RegisterRoutes registers store sync routes
func (h *StoreHandler) RegisterRoutes(rg *gin.RouterGroup) {
	stores := rg.Group("/stores")
	{
		stores.GET("", h.ListStores)
		stores.GET("/:id/status", h.StoreStatus)
		stores.POST("/:id/healthcheck", h.Healthcheck)
		stores.POST("/:id/webhooks/register", h.RegisterWebhooks)
		stores.POST("/:id/product-map/build", h.BuildProductMap)
		stores.GET("/:id/product-map", h.ListProductMap)
		stores.POST("/:id/sync/stock", h.SyncStock)
		stores.POST("/:id/sync/price", h.SyncPrice)
		stores.POST("/:id/orders/reconcile", h.ReconcileOrder)
		stores.POST("/:id/pause", h.PauseStore)
		stores.POST("/:id/unpause", h.UnpauseStore)
		stores.POST("/:id/worker/run", h.RunWorker)
		stores.POST("/:id/jobs/:job_id/requeue", h.RequeueJob)
		stores.GET("/:id/runs", h.ListRuns)
		stores.GET("/:id/runs/:run_id", h.GetRun)
		stores.POST("/:id/runs/:run_id/retry-failed", h.RetryFailedRun)
	}
}

// SyncSkusRequest carries the explicit SKU list of a forced sync
type SyncSkusRequest struct {
	Skus []string `json:"skus" binding:"required"`
}

// ReconcileOrderRequest identifies the external order to replay
type ReconcileOrderRequest struct {
	OrderID int64 `json:"order_id" binding:"required"`
}

// RunWorkerRequest bounds one inline worker run
type RunWorkerRequest struct {
	Limit int `json:"limit"`
}

// StoreStatusResponse pairs the worker snapshot with the locally evaluated
// health findings so the caller gets numbers and their interpretation together
type StoreStatusResponse struct {
	Status *appsync.StoreStatusResult `json:"status"`
	Health appsync.HealthReport       `json:"health"`
}

// ListStores handles GET /stores
func (h *StoreHandler) ListStores(c *gin.Context) {
	out, err := h.controlPlane.ListStores(c.Request.Context(), getTenantID(c))
	if err != nil {
		h.HandleSyncError(c, err)
		return
	}
	h.Success(c, out)
}

// StoreStatus handles GET /stores/:id/status
func (h *StoreHandler) StoreStatus(c *gin.Context) {
	out, err := h.controlPlane.StoreStatus(c.Request.Context(), getTenantID(c), c.Param("id"))
	if err != nil {
		h.HandleSyncError(c, err)
		return
	}
	h.Success(c, StoreStatusResponse{
		Status: out,
		Health: appsync.EvaluateHealth(out, h.thresholds, time.Now()),
	})
}

// Healthcheck handles POST /stores/:id/healthcheck
func (h *StoreHandler) Healthcheck(c *gin.Context) {
	out, err := h.controlPlane.Healthcheck(c.Request.Context(), getTenantID(c), c.Param("id"))
	if err != nil {
		h.HandleSyncError(c, err)
		return
	}
	h.Success(c, out)
}

// RegisterWebhooks handles POST /stores/:id/webhooks/register
func (h *StoreHandler) RegisterWebhooks(c *gin.Context) {
	out, err := h.controlPlane.RegisterWebhooks(c.Request.Context(), getTenantID(c), c.Param("id"))
	if err != nil {
		h.HandleSyncError(c, err)
		return
	}
	h.Success(c, out)
}

// BuildProductMap handles POST /stores/:id/product-map/build
func (h *StoreHandler) BuildProductMap(c *gin.Context) {
	out, err := h.controlPlane.BuildProductMap(c.Request.Context(), getTenantID(c), c.Param("id"))
	if err != nil {
		h.HandleSyncError(c, err)
		return
	}
	h.Success(c, out)
}

// ListProductMap handles GET /stores/:id/product-map
func (h *StoreHandler) ListProductMap(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			h.BadRequest(c, "limit must be an integer")
			return
		}
		limit = parsed
	}

	out, err := h.controlPlane.ListProductMap(c.Request.Context(), getTenantID(c), c.Param("id"), limit)
	if err != nil {
		h.HandleSyncError(c, err)
		return
	}
	h.Success(c, out)
}

// SyncStock handles POST /stores/:id/sync/stock
func (h *StoreHandler) SyncStock(c *gin.Context) {
	var req SyncSkusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	out, err := h.controlPlane.SyncStock(c.Request.Context(), getTenantID(c), c.Param("id"), req.Skus)
	if err != nil {
		h.HandleSyncError(c, err)
		return
	}
	h.Success(c, out)
}

// SyncPrice handles POST /stores/:id/sync/price
func (h *StoreHandler) SyncPrice(c *gin.Context) {
	var req SyncSkusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	out, err := h.controlPlane.SyncPrice(c.Request.Context(), getTenantID(c), c.Param("id"), req.Skus)
	if err != nil {
		h.HandleSyncError(c, err)
		return
	}
	h.Success(c, out)
}

// ReconcileOrder handles POST /stores/:id/orders/reconcile
func (h *StoreHandler) ReconcileOrder(c *gin.Context) {
	var req ReconcileOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	out, err := h.controlPlane.ReconcileOrder(c.Request.Context(), getTenantID(c), c.Param("id"), req.OrderID)
	if err != nil {
		h.HandleSyncError(c, err)
		return
	}
	h.Success(c, out)
}

// PauseStore handles POST /stores/:id/pause
func (h *StoreHandler) PauseStore(c *gin.Context) {
	out, err := h.controlPlane.PauseStore(c.Request.Context(), getTenantID(c), c.Param("id"))
	if err != nil {
		h.HandleSyncError(c, err)
		return
	}
	h.Success(c, out)
}

// UnpauseStore handles POST /stores/:id/unpause
func (h *StoreHandler) UnpauseStore(c *gin.Context) {
	out, err := h.controlPlane.UnpauseStore(c.Request.Context(), getTenantID(c), c.Param("id"))
	if err != nil {
		h.HandleSyncError(c, err)
		return
	}
	h.Success(c, out)
}

// RunWorker handles POST /stores/:id/worker/run
func (h *StoreHandler) RunWorker(c *gin.Context) {
	// body is optional; an absent limit falls back to the worker default
	var req RunWorkerRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BadRequest(c, "Invalid request body: "+err.Error())
			return
		}
	}
	out, err := h.controlPlane.RunWorker(c.Request.Context(), getTenantID(c), c.Param("id"), req.Limit)
	if err != nil {
		h.HandleSyncError(c, err)
		return
	}
	h.Success(c, out)
}

// RequeueJob handles POST /stores/:id/jobs/:job_id/requeue
func (h *StoreHandler) RequeueJob(c *gin.Context) {
	out, err := h.controlPlane.RequeueJob(c.Request.Context(), getTenantID(c), c.Param("id"), c.Param("job_id"))
	if err != nil {
		h.HandleSyncError(c, err)
		return
	}
	h.Success(c, out)
}

// ListRuns handles GET /stores/:id/runs
func (h *StoreHandler) ListRuns(c *gin.Context) {
	out, err := h.controlPlane.ListRuns(c.Request.Context(), getTenantID(c), c.Param("id"))
	if err != nil {
		h.HandleSyncError(c, err)
		return
	}
	h.Success(c, out)
}

// GetRun handles GET /stores/:id/runs/:run_id
func (h *StoreHandler) GetRun(c *gin.Context) {
	out, err := h.controlPlane.GetRun(c.Request.Context(), getTenantID(c), c.Param("id"), c.Param("run_id"))
	if err != nil {
		h.HandleSyncError(c, err)
		return
	}
	h.Success(c, out)
}

// RetryFailedRun handles POST /stores/:id/runs/:run_id/retry-failed
func (h *StoreHandler) RetryFailedRun(c *gin.Context) {
	out, err := h.controlPlane.RetryFailedRun(c.Request.Context(), getTenantID(c), c.Param("id"), c.Param("run_id"))
	if err != nil {
		h.HandleSyncError(c, err)
		return
	}
	h.Success(c, out)
}
