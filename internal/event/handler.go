package event

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sharath018/event-resource-backend/internal/domain"
	"github.com/sharath018/event-resource-backend/middleware"
)

// Lister pages through stored events. *Repository implements it.
type Lister interface {
	List(ctx context.Context, limit, offset int, search string) ([]Event, error)
}

type Handler struct {
	Service     *Service
	Coordinator *Coordinator
	Repo        Lister
}

func NewHandler(s *Service, c *Coordinator, repo Lister) *Handler {
	return &Handler{Service: s, Coordinator: c, Repo: repo}
}

// ===========================
// 📌 Actor from access context
func actorFrom(c *gin.Context) Actor {
	actor := Actor{IP: middleware.GetIPFromContext(c)}
	if ac, ok := middleware.GetAccessContext(c); ok && ac.UserID != 0 {
		uid := ac.UserID
		actor.UserID = &uid
	}
	return actor
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return uint(id), true
}

// writeError maps engine errors to HTTP responses.
func writeError(c *gin.Context, err error, result *Result) {
	var rerr *ReconcileError
	switch {
	case errors.Is(err, domain.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
	case errors.As(err, &rerr):
		c.JSON(http.StatusConflict, gin.H{"error": rerr.Error(), "result": result})
	default:
		body := gin.H{"error": domain.ErrPersistence.Error()}
		if result != nil {
			body["result"] = result
		}
		c.JSON(http.StatusInternalServerError, body)
	}
}

// ===========================
// 🎯 Create Event - POST /events
func (h *Handler) CreateEvent(c *gin.Context) {
	var req EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input: " + err.Error()})
		return
	}

	result, err := h.Service.Create(c.Request.Context(), &req, actorFrom(c))
	if err != nil {
		writeError(c, err, result)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// ===========================
// 🛠 Update Event - PUT /events/:id
func (h *Handler) UpdateEvent(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input: " + err.Error()})
		return
	}

	result, err := h.Service.Update(c.Request.Context(), id, &req, actorFrom(c))
	if err != nil {
		writeError(c, err, result)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ===========================
// 🔍 Get Event - GET /events/:id
func (h *Handler) GetEvent(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	ev, err := h.Service.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, ev)
}

// ===========================
// 📄 List Events - GET /events?limit=&page=&search=
func (h *Handler) ListEvents(c *gin.Context) {
	limit, page := pagination(c)
	events, err := h.Repo.List(c.Request.Context(), limit, (page-1)*limit, c.Query("search"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch events"})
		return
	}
	if events == nil {
		events = []Event{}
	}
	c.JSON(http.StatusOK, events)
}

// ===========================
// ❌ Delete Event - DELETE /events/:id?archive=true
func (h *Handler) DeleteEvent(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	archive, _ := strconv.ParseBool(c.DefaultQuery("archive", "false"))

	snapshot, err := h.Coordinator.Delete(c.Request.Context(), id, archive, actorFrom(c))
	if err != nil {
		writeError(c, err, nil)
		return
	}
	body := gin.H{"message": "event deleted successfully"}
	if snapshot != nil {
		body["archive"] = snapshot
	}
	c.JSON(http.StatusOK, body)
}

// ===========================
// 🗄 Archives
func (h *Handler) ListArchives(c *gin.Context) {
	limit, page := pagination(c)
	archives, err := h.Coordinator.ListArchives(c.Request.Context(), limit, (page-1)*limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch archives"})
		return
	}
	if archives == nil {
		archives = []Archive{}
	}
	c.JSON(http.StatusOK, archives)
}

func (h *Handler) GetArchive(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	a, err := h.Coordinator.GetArchive(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "archive not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch archive"})
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *Handler) DeleteArchive(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.Coordinator.DeleteArchive(c.Request.Context(), id, actorFrom(c)); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "archive not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete archive"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "archive deleted successfully"})
}

func pagination(c *gin.Context) (int, int) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 || limit > 100 {
		limit = 20
	}
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page <= 0 {
		page = 1
	}
	return limit, page
}
