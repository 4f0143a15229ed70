package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"servicelog/internal/config"
	"servicelog/internal/observability"
)

func newValidationRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := observability.NewLogger(&config.OpenTelemetryConfig{EnableLogging: false})

	router := gin.New()
	router.Use(ResponseValidationMiddleware(logger))
	return router
}

func TestSchemaLoader_CompilesAllSchemas(t *testing.T) {
	loader, err := NewSchemaLoader()
	require.NoError(t, err)

	assert.NotNil(t, loader.Schema(http.MethodGet, "/v1/dashboard/summary"))
	assert.NotNil(t, loader.Schema(http.MethodPost, "/v1/service-logs"))
	assert.Nil(t, loader.Schema(http.MethodGet, "/v1/unknown"))
}

func TestResponseValidation_PassesConformingResponse(t *testing.T) {
	router := newValidationRouter(t)
	router.GET("/v1/dashboard/summary", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"total":                3,
			"status_counts":        gin.H{"Open": 2, "Solved": 1},
			"last_30_days":         2,
			"prior_30_days":        1,
			"trend_delta":          1,
			"mean_resolution_days": 4.5,
		})
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/dashboard/summary", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":3`)
}

func TestResponseValidation_MismatchDoesNotBreakResponse(t *testing.T) {
	router := newValidationRouter(t)
	router.GET("/v1/dashboard/summary", func(c *gin.Context) {
		// Missing required fields; the client must still get the payload.
		c.JSON(http.StatusOK, gin.H{"total": "not-a-number"})
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/dashboard/summary", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "not-a-number")
}

func TestResponseValidation_SkipsUnregisteredRoutes(t *testing.T) {
	router := newValidationRouter(t)
	router.GET("/v1/other", func(c *gin.Context) {
		c.String(http.StatusOK, "plain text, no schema")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/other", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "plain text, no schema", w.Body.String())
}

func TestResponseValidation_SkipsErrorResponses(t *testing.T) {
	router := newValidationRouter(t)
	router.GET("/v1/dashboard/summary", func(c *gin.Context) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "store down"})
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/dashboard/summary", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
