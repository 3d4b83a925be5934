package bridge

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/maheshwarkibehan-hub/vyaas-backend-android/internal/middleware"
	"github.com/maheshwarkibehan-hub/vyaas-backend-android/internal/models"
)

// Router builds the bridge HTTP surface: POST /command and GET /health.
// Everything else is a JSON 404.
func Router(b *Bridge, limiter *middleware.RateLimiter) *gin.Engine {
	r := gin.New()

	// Add recovery middleware
	r.Use(gin.Recovery())

	// Add custom logging middleware
	r.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
			param.ClientIP,
			param.TimeStamp.Format(time.RFC1123),
			param.Method,
			param.Path,
			param.Request.Proto,
			param.StatusCode,
			param.Latency,
			param.Request.UserAgent(),
			param.ErrorMessage,
		)
	}))

	r.Use(middleware.SecurityHeaders())
	if limiter != nil {
		r.Use(limiter.Middleware())
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.POST("/command", func(c *gin.Context) {
		var env models.CommandEnvelope
		if err := c.ShouldBindJSON(&env); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"status": models.StatusError,
				"result": "invalid request body",
			})
			return
		}

		if !b.Authorize(env) {
			c.JSON(http.StatusUnauthorized, gin.H{
				"status": models.StatusError,
				"result": middleware.UnauthorizedMessage,
			})
			return
		}

		result := b.Execute(c.Request.Context(), env)
		c.JSON(http.StatusOK, gin.H{
			"status": result.Status,
			"result": result.Message,
		})
	})

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	return r
}
