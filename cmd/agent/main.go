package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/maheshwarkibehan-hub/vyaas-backend-android/internal/config"
	"github.com/maheshwarkibehan-hub/vyaas-backend-android/internal/dispatch"
	"github.com/maheshwarkibehan-hub/vyaas-backend-android/internal/middleware"
	"github.com/maheshwarkibehan-hub/vyaas-backend-android/internal/models"
	"github.com/maheshwarkibehan-hub/vyaas-backend-android/internal/monitor"
	"github.com/maheshwarkibehan-hub/vyaas-backend-android/internal/session"
	"github.com/maheshwarkibehan-hub/vyaas-backend-android/internal/utils"
	"github.com/maheshwarkibehan-hub/vyaas-backend-android/internal/version"
)

// The agent process hosts the session hub the bridge and mobile clients join,
// watches machine health, and exposes a small HTTP surface the assistant core
// calls to dispatch commands at the user's PC.

const envAgentListen = "VYAAS_AGENT_LISTEN"

func main() {
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}
	listenAddr := os.Getenv(envAgentListen)
	if listenAddr == "" {
		listenAddr = ":8876"
	}

	logger := utils.NewLogger("vyaas-agent.log")
	defer logger.Close()
	logger.Writef("vyaas agent %s starting", version.String())

	hub := session.NewHub(cfg.SessionTokenSecret, logger)
	go hub.Run()

	dispatcher := dispatch.NewDispatcher(pickTransport(cfg, hub, logger), cfg.Secret, cfg.CommandTimeout, logger)

	mon := monitor.New(monitor.Options{
		Interval: cfg.MonitorInterval,
		Thresholds: monitor.Thresholds{
			CPU:        cfg.CPUThreshold,
			RAM:        cfg.RAMThreshold,
			Disk:       cfg.DiskThreshold,
			ProcessCPU: cfg.ProcessCPUThreshold,
		},
		Cooldown:   cfg.AlertCooldown,
		Exclusions: cfg.ProcessExclusions,
		DiskPath:   cfg.DiskPath,
		Publisher:  hub,
		Speaker:    hubSpeaker{hub},
		Log:        logger,
	})
	mon.Start()

	rateLimiter := middleware.NewRateLimiter(rate.Every(time.Minute/300), 20)
	r := setupRouter(cfg, hub, dispatcher, rateLimiter)

	srv := &http.Server{
		Addr:           listenAddr,
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		logger.Writef("listening on %s", listenAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Write("shutting down")

	mon.Stop()
	rateLimiter.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	logger.Write("agent exited")
}

// pickTransport prefers Direct Transport; Channel Transport is the opt-in
// fallback for setups where the agent cannot reach the bridge's HTTP port.
func pickTransport(cfg *config.Config, hub *session.Hub, logger *utils.Logger) dispatch.Transport {
	if cfg.EnableRelay {
		logger.Write("using channel transport")
		return dispatch.NewChannelTransport(hub)
	}
	logger.Writef("using direct transport at %s", cfg.BridgeBaseURL)
	return dispatch.NewDirectTransport(cfg.BridgeBaseURL)
}

// hubSpeaker turns alert text into a speak request on the session channel;
// whichever client owns voice output picks it up.
type hubSpeaker struct {
	hub *session.Hub
}

func (s hubSpeaker) Speak(ctx context.Context, text string) error {
	return s.hub.Publish(models.TopicSpeakRequest, models.SystemAlert{
		Message:  text,
		RaisedAt: time.Now(),
	})
}

func setupRouter(cfg *config.Config, hub *session.Hub, dispatcher *dispatch.Dispatcher, rl *middleware.RateLimiter) *gin.Engine {
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
	r.Use(rl.Middleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "clients": hub.ClientCount()})
	})

	// Mint a join token for a session participant. The caller must already
	// hold the bridge secret; this is a single-user system, not a login flow.
	r.POST("/token", func(c *gin.Context) {
		var req struct {
			Secret   string `json:"secret" binding:"required"`
			Identity string `json:"identity" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		guard := middleware.NewSecretGuard(cfg.Secret)
		if !guard.Verify(req.Secret) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": middleware.UnauthorizedMessage})
			return
		}
		token, err := session.GenerateToken(cfg.SessionTokenSecret, req.Identity, cfg.RoomName)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "token generation failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"token": token, "room": cfg.RoomName})
	})

	r.POST("/dispatch", func(c *gin.Context) {
		var req struct {
			Command string         `json:"command" binding:"required"`
			Params  map[string]any `json:"params"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		result, err := dispatcher.Dispatch(c.Request.Context(), req.Command, req.Params)
		if err != nil {
			status := http.StatusBadGateway
			message := "Sorry, I could not reach your PC. Is the bridge running?"
			switch {
			case errors.Is(err, dispatch.ErrUnauthorized):
				status = http.StatusUnauthorized
				message = middleware.UnauthorizedMessage
			case errors.Is(err, dispatch.ErrBridgeOffline):
				// keep the offline wording
			}
			c.JSON(status, gin.H{"status": models.StatusError, "result": message})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": result.Status, "result": result.Message})
	})

	// WebSocket endpoint
	r.GET("/ws", hub.HandleWebSocket())

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	return r
}
