package routes

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"supplier-payment-backend/internal/logger"
)

func TestRequestLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer

	r := gin.New()
	r.Use(RequestLogger(logger.NewWithWriter(&buf)))
	r.GET("/ping", func(c *gin.Context) {
		log := logger.FromContext(c.Request.Context())
		log.Info().Msg("inside handler")
		c.Status(http.StatusTeapot)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-ID", "req-42")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusTeapot, w.Code)
	assert.Equal(t, "req-42", w.Header().Get("X-Request-ID"))
	out := buf.String()
	assert.Contains(t, out, `"message":"inside handler"`)
	assert.Contains(t, out, `"request_id":"req-42"`)
	assert.Contains(t, out, `"status":418`)
	assert.Contains(t, out, `"level":"warn"`)
}
