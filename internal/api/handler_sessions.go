package api

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"attendance-backend/internal/model"
	"attendance-backend/internal/mw"
	"attendance-backend/internal/store"
)

type startSessionRequest struct {
	Name       string    `json:"name" binding:"required"`
	LocationID uuid.UUID `json:"locationId" binding:"required"`
}

// StartSession handles POST /api/admin/sessions/start. Any session the
// admin still has active is superseded.
func (h *Handler) StartSession(c *gin.Context) {
	principal, _ := mw.PrincipalFrom(c)

	var req startSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := h.coord.StartSession(c.Request.Context(), principal.ID, req.LocationID, req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, session)
}

// EndSession handles PUT /api/admin/sessions/end.
func (h *Handler) EndSession(c *gin.Context) {
	principal, _ := mw.PrincipalFrom(c)

	session, err := h.coord.EndSession(c.Request.Context(), principal.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "session ended successfully", "session": session})
}

// ActiveSessionAttendance handles GET /api/admin/sessions/active/attendance:
// who is present in the caller's running session. An admin with no active
// session gets an empty list, not an error.
func (h *Handler) ActiveSessionAttendance(c *gin.Context) {
	principal, _ := mw.PrincipalFrom(c)
	ctx := c.Request.Context()

	session, err := h.store.ActiveSession(ctx, principal.ID)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusOK, []model.Attendance{})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	records, err := h.store.ListBySession(ctx, principal.ID, session.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

// PreviousSessions handles GET /api/admin/sessions/previous.
func (h *Handler) PreviousSessions(c *gin.Context) {
	principal, _ := mw.PrincipalFrom(c)

	history, err := h.store.SessionHistory(c.Request.Context(), principal.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, history)
}

// DownloadReport handles GET /api/admin/sessions/:id/report.
func (h *Handler) DownloadReport(c *gin.Context) {
	principal, _ := mw.PrincipalFrom(c)

	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session id"})
		return
	}

	session, err := h.store.GetSession(c.Request.Context(), sessionID)
	if err != nil {
		respondError(c, err)
		return
	}
	if session.AdminID != principal.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "session belongs to another admin"})
		return
	}
	if session.ReportPath == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "no report for this session"})
		return
	}

	// The path is server-generated, but refuse to serve anything that has
	// ended up outside the reports directory.
	path := filepath.Clean(session.ReportPath)
	rel, err := filepath.Rel(filepath.Clean(h.reportsDir), path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		c.JSON(http.StatusNotFound, gin.H{"error": "no report for this session"})
		return
	}

	c.FileAttachment(path, filepath.Base(path))
}

type activeSessionView struct {
	model.Session
	UserAttendance *model.Attendance `json:"userAttendance"`
}

// UserActiveSessions handles GET /api/user/sessions/active: every active
// session system-wide, each with the caller's attendance record attached
// when one exists. Visibility is global — a user may belong to several
// admins' audiences.
func (h *Handler) UserActiveSessions(c *gin.Context) {
	principal, _ := mw.PrincipalFrom(c)
	ctx := c.Request.Context()

	sessions, err := h.store.ListActiveSessions(ctx)
	if err != nil {
		respondError(c, err)
		return
	}

	views := make([]activeSessionView, 0, len(sessions))
	for _, session := range sessions {
		record, err := h.store.Find(ctx, principal.ID, session.ID)
		if err != nil {
			respondError(c, err)
			return
		}
		views = append(views, activeSessionView{Session: session, UserAttendance: record})
	}
	c.JSON(http.StatusOK, gin.H{"activeSessions": views})
}
