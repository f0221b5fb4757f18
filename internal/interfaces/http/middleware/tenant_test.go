package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func tenantTestRouter(cfg TenantMiddlewareConfig) *gin.Engine {
	r := gin.New()
	r.Use(TenantMiddlewareWithConfig(cfg))
	r.GET("/stores", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"tenant": GetTenantID(c)})
	})
	r.GET("/health", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func TestTenantMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		header     string
		cfg        TenantMiddlewareConfig
		wantStatus int
		wantTenant string
	}{
		{
			name:       "header accepted",
			path:       "/stores",
			header:     "tenant-42",
			cfg:        DefaultTenantConfig(),
			wantStatus: http.StatusOK,
			wantTenant: "tenant-42",
		},
		{
			name:       "missing tenant rejected when required",
			path:       "/stores",
			cfg:        DefaultTenantConfig(),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "skip path needs no tenant",
			path:       "/health",
			cfg:        DefaultTenantConfig(),
			wantStatus: http.StatusOK,
		},
		{
			name:       "optional mode passes without tenant",
			path:       "/stores",
			cfg:        TenantMiddlewareConfig{Required: false},
			wantStatus: http.StatusOK,
		},
		{
			name:       "oversized tenant id rejected",
			path:       "/stores",
			header:     strings.Repeat("a", 200),
			cfg:        DefaultTenantConfig(),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "whitespace trimmed",
			path:       "/stores",
			header:     "  tenant-7  ",
			cfg:        DefaultTenantConfig(),
			wantStatus: http.StatusOK,
			wantTenant: "tenant-7",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := tenantTestRouter(tt.cfg)
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set(TenantHeaderKey, tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantTenant != "" {
				assert.Contains(t, w.Body.String(), tt.wantTenant)
			}
		})
	}
}
