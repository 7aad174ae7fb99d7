package notification

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sharath018/event-resource-backend/internal/domain"
	"github.com/sharath018/event-resource-backend/middleware"
	"github.com/sharath018/event-resource-backend/utils"
)

type Handler struct {
	Service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{Service: s}
}

func recipientFrom(c *gin.Context) (Recipient, bool) {
	ctx, ok := middleware.GetAccessContext(c)
	if !ok || ctx.ParticipantKind == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "access context missing"})
		return Recipient{}, false
	}
	return Recipient{Kind: ctx.ParticipantKind, ID: ctx.UserID}, true
}

// POST /api/v1/notifications/devices
func (h *Handler) RegisterDevice(c *gin.Context) {
	r, ok := recipientFrom(c)
	if !ok {
		return
	}

	var req struct {
		DeviceToken string `json:"device_token" binding:"required"`
		DeviceType  string `json:"device_type"` // android, ios, web
		DeviceName  string `json:"device_name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.Service.RegisterDevice(c.Request.Context(), r, req.DeviceToken, req.DeviceType, req.DeviceName)
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to register device token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "device token registered successfully"})
}

// DELETE /api/v1/notifications/devices
func (h *Handler) UnregisterDevice(c *gin.Context) {
	r, ok := recipientFrom(c)
	if !ok {
		return
	}

	var req struct {
		DeviceToken string `json:"device_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.Service.RemoveDevice(c.Request.Context(), r, req.DeviceToken); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to unregister device token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "device token removed successfully"})
}

// GET /api/v1/notifications/inapp
func (h *Handler) GetMyInApp(c *gin.Context) {
	r, ok := recipientFrom(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	items, err := h.Service.ListInApp(c.Request.Context(), r, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch in-app notifications"})
		return
	}
	if items == nil {
		items = []InAppNotification{}
	}
	c.JSON(http.StatusOK, items)
}

// PUT /api/v1/notifications/inapp/:id/read
func (h *Handler) MarkInAppRead(c *gin.Context) {
	r, ok := recipientFrom(c)
	if !ok {
		return
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if err := h.Service.MarkInAppRead(c.Request.Context(), uint(id), r); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to mark as read"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "marked as read"})
}

// GET /api/v1/notifications/stream (SSE)
func (h *Handler) StreamInApp(c *gin.Context) {
	r, ok := recipientFrom(c)
	if !ok {
		return
	}
	if utils.RedisClient == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "live notifications unavailable"})
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.Status(http.StatusInternalServerError)
		return
	}

	sub := utils.RedisClient.Subscribe(c.Request.Context(), ChannelFor(r))
	defer sub.Close()

	_, _ = c.Writer.Write([]byte(":ok\n\n"))
	flusher.Flush()

	ch := sub.Channel()
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_, _ = c.Writer.Write([]byte("event: inapp\n"))
			_, _ = c.Writer.Write([]byte("data: " + msg.Payload + "\n\n"))
			flusher.Flush()
		case <-c.Request.Context().Done():
			return
		}
	}
}
