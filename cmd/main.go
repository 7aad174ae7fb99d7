package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sharath018/event-resource-backend/config"
	"github.com/sharath018/event-resource-backend/database"
	"github.com/sharath018/event-resource-backend/internal/auditlog"
	"github.com/sharath018/event-resource-backend/internal/event"
	"github.com/sharath018/event-resource-backend/internal/inventory"
	"github.com/sharath018/event-resource-backend/internal/notification"
	"github.com/sharath018/event-resource-backend/internal/room"
	"github.com/sharath018/event-resource-backend/internal/roster"
	"github.com/sharath018/event-resource-backend/routes"
	"github.com/sharath018/event-resource-backend/utils"
)

func main() {
	cfg := config.Load()
	db := database.Connect(cfg)

	if err := database.Migrate(db,
		&inventory.Equipment{},
		&room.Room{},
		&roster.Staff{},
		&roster.Visitor{},
		&event.Event{},
		&event.Archive{},
		&auditlog.AuditLog{},
		&notification.NotificationLog{},
		&notification.InAppNotification{},
		&notification.DeviceToken{},
	); err != nil {
		log.Fatalf("❌ DB migration failed: %v", err)
	}

	// Redis backs live in-app streams and shared rate limits; optional.
	if err := utils.InitRedis(cfg); err != nil {
		log.Println("ℹ️ Continuing without Redis (live notifications disabled)")
	}

	utils.InitializeKafka(cfg)
	defer utils.CloseKafka()

	if err := utils.InitFirebase(cfg); err != nil {
		log.Printf("⚠️ Firebase initialization failed: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ========== Notification delivery ==========
	notificationSvc := notification.NewService(
		notification.NewRepository(db),
		notification.NewFCMChannel(utils.FirebaseClient),
		notification.NewEmailSender(utils.SMTPFromConfig(cfg)),
		notification.NewRedisPublisher(),
	)

	var queue notification.Queue
	if utils.KafkaWriter != nil {
		queue = utils.KafkaWriter
		go notification.StartKafkaConsumer(ctx, utils.NewKafkaReader(cfg), notificationSvc)
	}
	dispatcher := notification.NewDispatcher(queue, notificationSvc)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// ========== Router ==========
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "Cache-Control"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.Setup(router, cfg, routes.Modules{
		Notifications: notificationSvc,
		Dispatcher:    dispatcher,
		Registry:      registry,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}
	go func() {
		log.Printf("🚀 Server running on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("❌ Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("🛑 Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("⚠️ Server shutdown: %v", err)
	}
	dispatcher.Wait()
	log.Println("✅ Shutdown complete")
}
