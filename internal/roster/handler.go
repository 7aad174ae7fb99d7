package roster

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sharath018/event-resource-backend/internal/domain"
)

type Handler struct {
	Repo *Repository
}

func NewHandler(repo *Repository) *Handler {
	return &Handler{Repo: repo}
}

// GET /api/v1/staff/:id/events
func (h *Handler) StaffEvents(c *gin.Context) {
	h.attendance(c, KindStaff)
}

// GET /api/v1/visitors/:id/events
func (h *Handler) VisitorEvents(c *gin.Context) {
	h.attendance(c, KindVisitor)
}

func (h *Handler) attendance(c *gin.Context, kind Kind) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + string(kind) + " id"})
		return
	}

	list, err := h.Repo.Attendance(c.Request.Context(), kind, uint(id))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": string(kind) + " not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch attendance"})
		return
	}
	if list == nil {
		list = []Attendance{}
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "kind": kind, "attending_events": list})
}
