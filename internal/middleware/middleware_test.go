package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/hms-api/pkg/logger"
)

func TestRequestIDGeneratedAndPropagated(t *testing.T) {
	var seen string
	r := gin.New()
	r.Use(RequestID())
	r.GET("/x", func(c *gin.Context) {
		seen = logger.RequestIDFromContext(c.Request.Context())
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	require.NotEmpty(t, seen)
	assert.Equal(t, seen, w.Header().Get(HeaderXRequestID))

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(HeaderXRequestID, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", seen)
	assert.Equal(t, "abc-123", w.Header().Get(HeaderXRequestID))
}

func TestRecoveryReturnsEnvelope(t *testing.T) {
	r := gin.New()
	r.Use(Recovery())
	r.GET("/panic", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "An unexpected error occurred", decode(t, w).Message)
}

func TestRateLimiterPerClient(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{RPS: 1, Burst: 2})
	now := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	r := gin.New()
	r.GET("/x", rl.RateLimit(), func(c *gin.Context) { c.Status(http.StatusOK) })

	call := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.RemoteAddr = ip + ":1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, call("10.0.0.1"))
	assert.Equal(t, http.StatusOK, call("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, call("10.0.0.1"))
	assert.Equal(t, http.StatusOK, call("10.0.0.2"))

	now = now.Add(time.Second)
	assert.Equal(t, http.StatusOK, call("10.0.0.1"))
}

func TestRateLimiterDropsIdleClients(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{RPS: 1, Burst: 1, IdleTTL: 50 * time.Millisecond})

	rl.allow("a")
	assert.Equal(t, 1, rl.clients.ItemCount())

	assert.Eventually(t, func() bool {
		_, found := rl.clients.Get("a")
		return !found
	}, time.Second, 10*time.Millisecond)

	assert.True(t, rl.allow("a"), "an evicted client starts with a full bucket")
}

func TestRateLimiterKeepsActiveClients(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{RPS: 1000, Burst: 1000, IdleTTL: 200 * time.Millisecond})

	first := rl.limiter("a")
	for i := 0; i < 6; i++ {
		time.Sleep(50 * time.Millisecond)
		rl.allow("a")
	}
	assert.Same(t, first, rl.limiter("a"), "each request extends the idle deadline")

	for i := 0; i < 100; i++ {
		rl.allow(fmt.Sprintf("10.0.0.%d", i))
	}
	assert.Equal(t, 101, rl.clients.ItemCount())
}

func TestSizeLimit(t *testing.T) {
	r := gin.New()
	r.POST("/x", SizeLimit(8), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/x", strings.NewReader("0123456789")))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/x", strings.NewReader("0123")))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS(CORSConfig{
		AllowOrigins:  []string{"https://app.example.com"},
		AllowMethods:  []string{http.MethodGet},
		AllowHeaders:  []string{"Authorization"},
		ExposeHeaders: []string{HeaderXRequestID},
		MaxAge:        600,
	}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "https://app.example.com")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "600", w.Header().Get("Access-Control-Max-Age"))

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestTimeoutSetsDeadline(t *testing.T) {
	r := gin.New()
	r.Use(Timeout(TimeoutConfig{Duration: time.Minute}))
	r.GET("/x", func(c *gin.Context) {
		_, ok := c.Request.Context().Deadline()
		assert.True(t, ok)
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

type validated struct {
	When  time.Time `json:"when" binding:"required,future"`
	Born  time.Time `json:"born" binding:"omitempty,past"`
	Phone string    `json:"phone" binding:"omitempty,phone"`
	Email string    `json:"email" binding:"required,email"`
}

func TestCustomValidators(t *testing.T) {
	require.NoError(t, RegisterValidators())
	require.NoError(t, RegisterValidators())

	bind := func(body string) error {
		var v validated
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")
		return c.ShouldBindJSON(&v)
	}

	assert.NoError(t, bind(`{"when":"2999-01-01T10:00:00Z","born":"1990-01-01T00:00:00Z","phone":"+1 (555) 123-4567","email":"a@b.co"}`))

	err := bind(`{"when":"2000-01-01T10:00:00Z","email":"a@b.co"}`)
	require.Error(t, err)
	assert.Equal(t, "when must be in the future", ValidationMessage(err))

	err = bind(`{"when":"2999-01-01T10:00:00Z","born":"2999-01-01T00:00:00Z","email":"a@b.co"}`)
	require.Error(t, err)
	assert.Equal(t, "born must be in the past", ValidationMessage(err))

	err = bind(`{"when":"2999-01-01T10:00:00Z","phone":"call me","email":"nope"}`)
	require.Error(t, err)
	msg := ValidationMessage(err)
	assert.Contains(t, msg, "phone must be a valid phone number")
	assert.Contains(t, msg, "email must be a valid email address")
}

func TestValidationMessageFallbacks(t *testing.T) {
	assert.Equal(t, "Invalid request: EOF", ValidationMessage(errors.New("EOF")))
}
