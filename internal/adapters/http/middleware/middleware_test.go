package middleware

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("GeneratesNewRequestID", func(t *testing.T) {
		router := gin.New()
		router.Use(RequestID())
		router.GET("/test", func(c *gin.Context) {
			c.String(200, "ok")
		})

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		requestID := w.Header().Get(RequestIDHeader)
		assert.NotEmpty(t, requestID)
		assert.Len(t, requestID, 36) // UUID length
	})

	t.Run("UsesProvidedRequestID", func(t *testing.T) {
		router := gin.New()
		router.Use(RequestID())
		router.GET("/test", func(c *gin.Context) {
			c.String(200, "ok")
		})

		customID := "custom-request-123"
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set(RequestIDHeader, customID)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, customID, w.Header().Get(RequestIDHeader))
	})

	t.Run("StoresRequestIDInContext", func(t *testing.T) {
		router := gin.New()
		router.Use(RequestID())

		var contextID string
		router.GET("/test", func(c *gin.Context) {
			contextID = GetRequestID(c)
			c.String(200, "ok")
		})

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, w.Header().Get(RequestIDHeader), contextID)
		assert.NotEmpty(t, contextID)
	})
}

func TestLogging(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("LogsRequest", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(slog.NewJSONHandler(&buf, nil))

		router := gin.New()
		router.Use(RequestID())
		router.Use(Logging(&LoggingConfig{Logger: logger}))
		router.GET("/payments", func(c *gin.Context) {
			c.String(200, "ok")
		})

		req := httptest.NewRequest(http.MethodGet, "/payments", nil)
		router.ServeHTTP(httptest.NewRecorder(), req)

		logLine := buf.String()
		assert.Contains(t, logLine, "HTTP Request")
		assert.Contains(t, logLine, "/payments")
		assert.Contains(t, logLine, `"status":200`)
	})

	t.Run("SkipsConfiguredPaths", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(slog.NewJSONHandler(&buf, nil))

		router := gin.New()
		router.Use(Logging(&LoggingConfig{Logger: logger, SkipPaths: []string{"/health"}}))
		router.GET("/health", func(c *gin.Context) {
			c.String(200, "ok")
		})

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		router.ServeHTTP(httptest.NewRecorder(), req)

		assert.Empty(t, buf.String())
	})

	t.Run("ServerErrorLogsAtErrorLevel", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(slog.NewJSONHandler(&buf, nil))

		router := gin.New()
		router.Use(Logging(&LoggingConfig{Logger: logger}))
		router.GET("/boom", func(c *gin.Context) {
			c.String(500, "fail")
		})

		req := httptest.NewRequest(http.MethodGet, "/boom", nil)
		router.ServeHTTP(httptest.NewRecorder(), req)

		assert.Contains(t, buf.String(), `"level":"ERROR"`)
	})
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("RecoversFromPanic", func(t *testing.T) {
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))

		router := gin.New()
		router.Use(Recovery(&RecoveryConfig{Logger: logger}))
		router.GET("/panic", func(c *gin.Context) {
			panic("something broke")
		})

		req := httptest.NewRequest(http.MethodGet, "/panic", nil)
		w := httptest.NewRecorder()

		assert.NotPanics(t, func() {
			router.ServeHTTP(w, req)
		})
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, w.Body.String(), "INTERNAL_ERROR")
	})

	t.Run("LogsPanicDetails", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(slog.NewJSONHandler(&buf, nil))

		router := gin.New()
		router.Use(Recovery(&RecoveryConfig{Logger: logger, EnableStackTrace: true}))
		router.GET("/panic", func(c *gin.Context) {
			panic("something broke")
		})

		req := httptest.NewRequest(http.MethodGet, "/panic", nil)
		router.ServeHTTP(httptest.NewRecorder(), req)

		assert.Contains(t, buf.String(), "Panic recovered")
		assert.Contains(t, buf.String(), "something broke")
	})
}

func TestCORS(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("AllowsAllOriginsByDefault", func(t *testing.T) {
		router := gin.New()
		router.Use(CORS(DefaultCORSConfig()))
		router.GET("/test", func(c *gin.Context) {
			c.String(200, "ok")
		})

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("Origin", "https://example.com")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("PreflightReturnsNoContent", func(t *testing.T) {
		router := gin.New()
		router.Use(CORS(DefaultCORSConfig()))

		req := httptest.NewRequest(http.MethodOptions, "/test", nil)
		req.Header.Set("Origin", "https://example.com")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("RejectsUnknownOriginInProduction", func(t *testing.T) {
		router := gin.New()
		router.Use(CORS(ProductionCORSConfig([]string{"https://ops.example.com"})))
		router.GET("/test", func(c *gin.Context) {
			c.String(200, "ok")
		})

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("Origin", "https://evil.example.com")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestMetrics(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("DoesNotBreakRequestFlow", func(t *testing.T) {
		router := gin.New()
		router.Use(Metrics())
		router.GET("/test", func(c *gin.Context) {
			c.String(200, "ok")
		})

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}
