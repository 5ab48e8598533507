package handlers

import (
	"bytes"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ukydev/pantry-finder/internal/auth"
	"github.com/ukydev/pantry-finder/internal/export"
	"github.com/ukydev/pantry-finder/internal/location"
	"github.com/ukydev/pantry-finder/internal/middleware"
	"github.com/ukydev/pantry-finder/internal/present"
	"github.com/ukydev/pantry-finder/internal/store"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// PantryHandler serves the presentation surfaces of each session.
type PantryHandler struct {
	registry    *Registry
	authService *auth.Service
	log         logrus.FieldLogger
}

// NewPantryHandler creates a new pantry handler
func NewPantryHandler(registry *Registry, authService *auth.Service, logger logrus.FieldLogger) *PantryHandler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &PantryHandler{
		registry:    registry,
		authService: authService,
		log:         logger,
	}
}

type searchRequest struct {
	Text string `json:"text"`
}

type sortRequest struct {
	Mode string `json:"mode" binding:"required"`
}

type selectionRequest struct {
	ID string `json:"id"`
}

// GetView handles GET /api/view
func (h *PantryHandler) GetView(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, present.List(sess.Store.Snapshot()))
}

// GetMap handles GET /api/map
func (h *PantryHandler) GetMap(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, present.Map(sess.Store.Snapshot()))
}

// GetPantry handles GET /api/pantries/:id
func (h *PantryHandler) GetPantry(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	p, found, err := sess.Store.Lookup(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	if !found {
		h.fail(c, store.ErrPantryNotFound)
		return
	}
	c.JSON(http.StatusOK, present.Describe(p))
}

// PutSearch handles PUT /api/search
func (h *PantryHandler) PutSearch(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON"})
		return
	}
	snap, err := sess.Store.SetSearchText(req.Text)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, present.List(snap))
}

// PutSort handles PUT /api/sort
func (h *PantryHandler) PutSort(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	var req sortRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "mode is required"})
		return
	}
	mode, err := store.ParseSortMode(req.Mode)
	if err != nil {
		h.fail(c, err)
		return
	}
	snap, err := sess.Store.SetSortMode(mode)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, present.List(snap))
}

// PostRefresh handles POST /api/refresh
func (h *PantryHandler) PostRefresh(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	snap, err := sess.Store.RequestRefresh()
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusAccepted, present.List(snap))
}

// PostLocation handles POST /api/location. The fix is queued for the session tracker.
func (h *PantryHandler) PostLocation(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	var fix location.Fix
	if err := c.ShouldBindJSON(&fix); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON"})
		return
	}
	evt, err := fix.Event()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := sess.Feed.Push(c.Request.Context(), evt); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
}

// PutSelection handles PUT /api/selection. An empty id clears the selection.
func (h *PantryHandler) PutSelection(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	var req selectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON"})
		return
	}
	snap, err := sess.Store.SetSelection(req.ID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, present.Map(snap))
}

// GetNavigation handles GET /api/navigation
func (h *PantryHandler) GetNavigation(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	dest, err := present.Navigation(sess.Store.Snapshot())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dest)
}

// GetExport handles GET /api/export.xlsx
func (h *PantryHandler) GetExport(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, sess.Store.Snapshot()); err != nil {
		h.log.WithError(err).WithField("session_id", sess.ID).Error("Failed to export pantries")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to export pantries"})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="pantries.xlsx"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// HealthCheck handles GET /health
func (h *PantryHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"sessions": h.registry.Len(),
		"time":     time.Now().UTC().Format(time.RFC3339),
	})
}

// session resolves the authenticated session, writing the error response if it cannot.
func (h *PantryHandler) session(c *gin.Context) (*Session, bool) {
	claims, ok := middleware.GetSessionFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "session context not found"})
		return nil, false
	}
	sess, err := h.registry.Get(claims.SessionID)
	if err != nil {
		h.fail(c, err)
		return nil, false
	}
	return sess, true
}

func (h *PantryHandler) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.log.WithError(err).Error("Request failed")
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrUnknownSortMode):
		return http.StatusBadRequest
	case errors.Is(err, ErrSessionNotFound),
		errors.Is(err, store.ErrPantryNotFound),
		errors.Is(err, present.ErrNoSelection),
		errors.Is(err, present.ErrNoDestination):
		return http.StatusNotFound
	case errors.Is(err, store.ErrStoreClosed),
		errors.Is(err, location.ErrFeedClosed):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
