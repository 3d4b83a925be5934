package main

import (
	"context"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/maheshwarkibehan-hub/vyaas-backend-android/internal/bridge"
	"github.com/maheshwarkibehan-hub/vyaas-backend-android/internal/config"
	"github.com/maheshwarkibehan-hub/vyaas-backend-android/internal/executor"
	"github.com/maheshwarkibehan-hub/vyaas-backend-android/internal/middleware"
	"github.com/maheshwarkibehan-hub/vyaas-backend-android/internal/notify"
	"github.com/maheshwarkibehan-hub/vyaas-backend-android/internal/session"
	"github.com/maheshwarkibehan-hub/vyaas-backend-android/internal/utils"
	"github.com/maheshwarkibehan-hub/vyaas-backend-android/internal/version"
	"github.com/maheshwarkibehan-hub/vyaas-backend-android/internal/whatsapp"
)

// App bundles the long-lived pieces of the bridge process so the tray and
// shutdown paths can reach them.
type App struct {
	cfg         *config.Config
	log         *utils.Logger
	bridge      *bridge.Bridge
	rateLimiter *middleware.RateLimiter
	forwarder   *notify.Forwarder
	session     *session.Client
	relay       *session.Relay
}

func main() {
	// Re-launch detached so the console returns to the user; the child lives
	// in the tray.
	if spawnDetachedIfNeeded() {
		return
	}
	hideConsoleWindow()

	// Set Gin mode
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	logger := utils.NewLogger("")
	defer logger.Close()
	logger.Writef("vyaas bridge %s starting", version.String())

	waClient := whatsapp.NewClient(cfg.WhatsAppServiceURL)
	sender := whatsapp.NewSender(logger,
		whatsapp.NewAPITier(waClient),
		executor.NewAutomationSendTier(),
	)

	registry := executor.NewDefaultRegistry(executor.Deps{
		Log:      logger,
		Sender:   sender,
		DiskPath: cfg.DiskPath,
	})
	guard := middleware.NewSecretGuard(cfg.Secret)

	app := &App{
		cfg:         cfg,
		log:         logger,
		bridge:      bridge.New(registry, guard, logger, cfg.CommandTimeout),
		rateLimiter: middleware.NewRateLimiter(rate.Every(time.Minute/300), 20),
	}

	// Join the session channel when one is configured. The bridge keeps
	// working without it: commands still arrive over HTTP, only notification
	// forwarding and the channel relay go quiet.
	var publisher notify.Publisher
	if cfg.SessionURL != "" {
		token := ""
		if cfg.SessionTokenSecret != "" {
			token, err = session.GenerateToken(cfg.SessionTokenSecret, "vyaas-bridge", cfg.RoomName)
			if err != nil {
				log.Fatalf("Session token error: %v", err)
			}
		}
		client, err := session.Dial(cfg.SessionURL, token, logger)
		if err != nil {
			logger.Writef("session join failed, continuing offline: %v", err)
		} else {
			app.session = client
			publisher = client
			if cfg.EnableRelay {
				app.relay = session.NewRelay(client, app.bridge, logger)
				app.relay.Start()
			}
		}
	}
	if publisher == nil {
		publisher = logPublisher{logger}
	}

	app.forwarder = notify.NewForwarder(waClient, publisher, cfg.PollInterval, logger)
	app.forwarder.Start()

	if cfg.EnableNATMapping {
		go mapBridgePort(cfg, logger)
	}

	r := bridge.Router(app.bridge, app.rateLimiter)

	srv := &http.Server{
		Addr:           cfg.ListenAddr,
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		logger.Writef("listening on %s", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// The tray owns the main goroutine on Windows; elsewhere startTray closes
	// done immediately and we block on signals alone.
	trayDone := make(chan struct{})
	go startTray(app, srv, trayDone)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case <-trayDone:
	}
	logger.Write("shutting down")

	app.forwarder.Stop()
	app.rateLimiter.Stop()
	if app.session != nil {
		_ = app.session.Close()
	}
	if cfg.EnableNATMapping {
		if port := listenPort(cfg.ListenAddr); port > 0 {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			_ = utils.DeleteBridgeMapping(ctx, port)
			cancel()
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	logger.Write("bridge exited")
}

// logPublisher stands in for the session channel when none is configured, so
// the forwarder's dedup state still advances.
type logPublisher struct {
	log *utils.Logger
}

func (p logPublisher) Publish(topic string, payload any) error {
	p.log.Writef("no session; dropping %s event", topic)
	return nil
}

func mapBridgePort(cfg *config.Config, logger *utils.Logger) {
	port := listenPort(cfg.ListenAddr)
	if port <= 0 {
		logger.Writef("cannot map port: bad listen address %q", cfg.ListenAddr)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	external, err := utils.EnsureBridgeMapping(ctx, port, time.Hour)
	if err != nil {
		logger.Writef("NAT mapping unavailable: %v", err)
		return
	}
	if ip, err := utils.GetExternalIP(ctx); err == nil && ip != nil {
		logger.Writef("bridge reachable at %s:%d", ip, external)
	} else {
		logger.Writef("bridge mapped to external port %d", external)
	}
}

func listenPort(addr string) int {
	_, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return 0
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return 0
	}
	return port
}
