package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sharath018/event-resource-backend/config"
	"github.com/sharath018/event-resource-backend/database"
	"github.com/sharath018/event-resource-backend/internal/auditlog"
	"github.com/sharath018/event-resource-backend/internal/event"
	"github.com/sharath018/event-resource-backend/internal/inventory"
	"github.com/sharath018/event-resource-backend/internal/notification"
	"github.com/sharath018/event-resource-backend/internal/room"
	"github.com/sharath018/event-resource-backend/internal/roster"
	"github.com/sharath018/event-resource-backend/middleware"
)

// Modules are the process-wide pieces built in main before routing.
type Modules struct {
	Notifications *notification.Service
	Dispatcher    *notification.Dispatcher
	Registry      *prometheus.Registry
}

func Setup(r *gin.Engine, cfg *config.Config, m Modules) {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})))

	api := r.Group("/api/v1")
	api.Use(middleware.RateLimiter(cfg.RateLimitPerMinute))
	api.Use(middleware.AuditMiddleware()) // capture IP for audit

	// ========== Stores ==========
	auditSvc := auditlog.NewService(auditlog.NewRepository(database.DB))
	inventoryRepo := inventory.NewRepository(database.DB)
	roomRepo := room.NewRepository(database.DB)
	rosterRepo := roster.NewRepository(database.DB)
	eventRepo := event.NewRepository(database.DB)

	// ========== Reconciliation engine ==========
	allocator := inventory.NewAllocator(inventoryRepo)
	scheduler := room.NewScheduler(roomRepo)
	differ := roster.NewEngine(rosterRepo)
	metrics := event.NewMetrics(m.Registry)

	eventSvc := event.NewService(event.Deps{
		Events:       eventRepo,
		Allocator:    allocator,
		Scheduler:    scheduler,
		Differ:       differ,
		Rooms:        roomRepo,
		Participants: rosterRepo,
		Notifier:     m.Dispatcher,
		Audit:        auditSvc,
		Metrics:      metrics,
	})
	coordinator := event.NewCoordinator(event.CoordinatorDeps{
		Events:       eventRepo,
		Archives:     eventRepo,
		Equipment:    allocator,
		Rooms:        scheduler,
		Differ:       differ,
		EquipmentDir: inventoryRepo,
		RoomDir:      roomRepo,
		Participants: rosterRepo,
		Notifier:     m.Dispatcher,
		Audit:        auditSvc,
		Metrics:      metrics,
	})

	eventHandler := event.NewHandler(eventSvc, coordinator, eventRepo)
	inventoryHandler := inventory.NewHandler(inventoryRepo)
	roomHandler := room.NewHandler(roomRepo)
	rosterHandler := roster.NewHandler(rosterRepo)
	auditHandler := auditlog.NewHandler(auditSvc)
	notificationHandler := notification.NewHandler(m.Notifications)

	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(cfg))

	// ========== Events ==========
	eventRoutes := protected.Group("/events")
	{
		writeRoutes := eventRoutes.Group("")
		writeRoutes.Use(middleware.RequireWriteAccess())
		{
			writeRoutes.POST("", eventHandler.CreateEvent)
			writeRoutes.PUT("/:id", eventHandler.UpdateEvent)
			writeRoutes.DELETE("/:id", eventHandler.DeleteEvent)
		}
		eventRoutes.GET("", eventHandler.ListEvents)
		eventRoutes.GET("/:id", eventHandler.GetEvent)
	}

	archiveRoutes := protected.Group("/archives")
	{
		archiveRoutes.GET("", eventHandler.ListArchives)
		archiveRoutes.GET("/:id", eventHandler.GetArchive)
		archiveRoutes.DELETE("/:id", middleware.RequireWriteAccess(), eventHandler.DeleteArchive)
	}

	// ========== Resources ==========
	protected.GET("/equipment", inventoryHandler.List)
	protected.GET("/equipment/:id", inventoryHandler.Get)
	protected.GET("/rooms/:id/bookings", roomHandler.Bookings)
	protected.GET("/staff/:id/events", rosterHandler.StaffEvents)
	protected.GET("/visitors/:id/events", rosterHandler.VisitorEvents)

	// ========== Notifications ==========
	notificationRoutes := protected.Group("/notifications")
	notificationRoutes.Use(middleware.RequireParticipant())
	{
		notificationRoutes.POST("/devices", notificationHandler.RegisterDevice)
		notificationRoutes.DELETE("/devices", notificationHandler.UnregisterDevice)
		notificationRoutes.GET("/inapp", notificationHandler.GetMyInApp)
		notificationRoutes.PUT("/inapp/:id/read", notificationHandler.MarkInAppRead)
		notificationRoutes.GET("/stream", notificationHandler.StreamInApp)
	}

	// ========== Audit Logs ==========
	auditRoutes := protected.Group("/audit-logs")
	auditRoutes.Use(middleware.RBACMiddleware(middleware.RoleAdmin))
	{
		auditRoutes.GET("", auditHandler.GetAuditLogs)
		auditRoutes.GET("/:id", auditHandler.GetAuditLogByID)
	}
}
