package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appsync "github.com/revo/commerce-sync/internal/application/sync"
	domain "github.com/revo/commerce-sync/internal/domain/sync"
	"github.com/revo/commerce-sync/internal/interfaces/http/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// stubDispatcher feeds canned worker responses into the real control plane
type stubDispatcher struct {
	action   domain.Action
	payload  map[string]any
	response any
	err      error
}

func (s *stubDispatcher) Dispatch(_ context.Context, _ string, action domain.Action, payload map[string]any, out any) error {
	s.action = action
	s.payload = payload
	if s.err != nil {
		return s.err
	}
	if s.response != nil {
		raw, err := json.Marshal(s.response)
		if err != nil {
			return err
		}
		return json.Unmarshal(raw, out)
	}
	return nil
}

func newStoreTestRouter(stub *stubDispatcher) *gin.Engine {
	cp := appsync.NewControlPlane(stub, nil)
	h := NewStoreHandler(cp, appsync.DefaultThresholds(), nil)

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.TenantMiddleware())
	api := r.Group("/api/v1")
	h.RegisterRoutes(api)
	return r
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	req.Header.Set("X-Tenant-ID", "tenant-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestListStoresEndpoint(t *testing.T) {
	stub := &stubDispatcher{response: appsync.StoresListResult{
		OK:     true,
		Stores: []appsync.StoreSummary{{ID: "store-1", Name: "Main", URL: "https://shop.example.com"}},
	}}
	r := newStoreTestRouter(stub)

	w := doRequest(r, http.MethodGet, "/api/v1/stores", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, domain.ActionStoresList, stub.action)
	assert.Contains(t, w.Body.String(), `"store-1"`)
	assert.Contains(t, w.Body.String(), `"success":true`)
}

func TestListStoresRequiresTenant(t *testing.T) {
	r := newStoreTestRouter(&stubDispatcher{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/stores", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestStoreStatusIncludesHealth(t *testing.T) {
	stub := &stubDispatcher{response: appsync.StoreStatusResult{
		OK:    true,
		Store: appsync.StoreSummary{ID: "store-1"},
		Queue: appsync.QueueDepth{Error: 4, Dead: 2},
	}}
	r := newStoreTestRouter(stub)

	w := doRequest(r, http.MethodGet, "/api/v1/stores/store-1/status", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "store-1", stub.payload["store_id"])

	var resp struct {
		Data struct {
			Health appsync.HealthReport `json:"health"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, appsync.SeverityCritical, resp.Data.Health.Severity)
}

func TestSyncStockEndpoint(t *testing.T) {
	stub := &stubDispatcher{response: appsync.ForceSyncResult{OK: true, JobID: "job-1", Queued: 2}}
	r := newStoreTestRouter(stub)

	w := doRequest(r, http.MethodPost, "/api/v1/stores/store-1/sync/stock", `{"skus":["SKU-1"," SKU-2 "]}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, domain.ActionSyncStock, stub.action)
	assert.Equal(t, []string{"SKU-1", "SKU-2"}, stub.payload["skus"])
}

func TestSyncStockEmptySkus(t *testing.T) {
	r := newStoreTestRouter(&stubDispatcher{})

	w := doRequest(r, http.MethodPost, "/api/v1/stores/store-1/sync/stock", `{"skus":["  "]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "ERR_INVALID_INPUT")
}

func TestSyncStockMalformedBody(t *testing.T) {
	r := newStoreTestRouter(&stubDispatcher{})

	w := doRequest(r, http.MethodPost, "/api/v1/stores/store-1/sync/stock", `{not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "ERR_BAD_REQUEST")
}

func TestReconcileOrderEndpoint(t *testing.T) {
	stub := &stubDispatcher{response: appsync.ReconcileOrderResult{OK: true, OrderID: 77, Imported: true}}
	r := newStoreTestRouter(stub)

	w := doRequest(r, http.MethodPost, "/api/v1/stores/store-1/orders/reconcile", `{"order_id":77}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, domain.ActionReconcileOrders, stub.action)
	// binding:"required" rejects a zero order id before the control plane runs
	w = doRequest(r, http.MethodPost, "/api/v1/stores/store-1/orders/reconcile", `{"order_id":0}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRunWorkerEndpoint(t *testing.T) {
	stub := &stubDispatcher{response: appsync.WorkerRunResult{OK: true, Processed: 5}}
	r := newStoreTestRouter(stub)

	w := doRequest(r, http.MethodPost, "/api/v1/stores/store-1/worker/run", `{"limit":50}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 20, stub.payload["limit"])

	// no body means the default limit
	w = doRequest(r, http.MethodPost, "/api/v1/stores/store-1/worker/run", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 5, stub.payload["limit"])
}

func TestRequeueJobEndpoint(t *testing.T) {
	stub := &stubDispatcher{response: appsync.RequeueJobResult{OK: true}}
	r := newStoreTestRouter(stub)

	w := doRequest(r, http.MethodPost, "/api/v1/stores/store-1/jobs/job-9/requeue", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, domain.ActionJobsRequeue, stub.action)
	assert.Equal(t, "job-9", stub.payload["job_id"])
}

func TestWorkerFailureMapsToBadGateway(t *testing.T) {
	stub := &stubDispatcher{err: domain.NormalizeWorkerError("store not found", "check the store id")}
	r := newStoreTestRouter(stub)

	w := doRequest(r, http.MethodPost, "/api/v1/stores/store-1/healthcheck", "")
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "ERR_SYNC_FAILED")
	assert.Contains(t, w.Body.String(), "store not found (check the store id)")
}

func TestListProductMapEndpoint(t *testing.T) {
	stub := &stubDispatcher{response: appsync.ProductMapListResult{OK: true}}
	r := newStoreTestRouter(stub)

	w := doRequest(r, http.MethodGet, "/api/v1/stores/store-1/product-map?limit=40", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 40, stub.payload["limit"])

	w = doRequest(r, http.MethodGet, "/api/v1/stores/store-1/product-map?limit=abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetRunEndpoint(t *testing.T) {
	stub := &stubDispatcher{response: appsync.RunGetResult{
		OK: true,
		Run: appsync.RunDetail{
			ID:   "run-1",
			Type: domain.RunTypeExport,
			Items: []domain.RunItem{
				{SKU: "SKU-1", Status: domain.RunItemStatusFailed},
			},
		},
	}}
	r := newStoreTestRouter(stub)

	w := doRequest(r, http.MethodGet, "/api/v1/stores/store-1/runs/run-1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"allow_retry_failed":true`)
}
