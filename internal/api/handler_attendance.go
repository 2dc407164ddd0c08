package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"attendance-backend/internal/geofence"
	"attendance-backend/internal/model"
	"attendance-backend/internal/mw"
)

type markAttendanceRequest struct {
	SessionID uuid.UUID `json:"sessionId" binding:"required"`
	// Optional proof payloads. When present the server re-evaluates them
	// rather than trusting the client-side checks.
	Coordinates    *geofence.LatLng `json:"coordinates"`
	FaceDescriptor []float64        `json:"faceDescriptor"`
}

// MarkAttendance handles POST /api/user/attendance/mark. The client runs
// the geofence and face checks before submitting; when the request
// carries coordinates or a descriptor the server re-verifies them against
// the session's zone and the caller's enrollment descriptor.
func (h *Handler) MarkAttendance(c *gin.Context) {
	principal, _ := mw.PrincipalFrom(c)
	ctx := c.Request.Context()

	var req markAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := h.store.GetSession(ctx, req.SessionID)
	if err != nil {
		respondError(c, err)
		return
	}

	if req.Coordinates != nil {
		if !geofence.Contains(*req.Coordinates, session.Location.Shape()) {
			c.JSON(http.StatusForbidden, gin.H{"error": "outside the session geofence"})
			return
		}
	}

	if len(req.FaceDescriptor) > 0 {
		var user model.User
		if err := h.store.DB().First(&user, "id = ?", principal.ID).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}
		ok, _, err := h.matcher.Match(user.FaceDescriptor, req.FaceDescriptor)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "malformed face descriptor"})
			return
		}
		if !ok {
			c.JSON(http.StatusForbidden, gin.H{"error": "face verification failed"})
			return
		}
	}

	record, err := h.coord.MarkAttendance(ctx, principal.ID, req.SessionID, true, false)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, record)
}

type adminMarkRequest struct {
	UserID    uuid.UUID `json:"userId" binding:"required"`
	SessionID uuid.UUID `json:"sessionId" binding:"required"`
}

// AdminMarkAttendance handles POST /api/admin/attendance/mark: a manual
// override. The record is flagged so reports can tell it apart from a
// biometric admission.
func (h *Handler) AdminMarkAttendance(c *gin.Context) {
	var req adminMarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	record, err := h.coord.MarkAttendance(c.Request.Context(), req.UserID, req.SessionID, true, true)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, record)
}

type scanRequest struct {
	SessionID      uuid.UUID `json:"sessionId" binding:"required"`
	FaceDescriptor []float64 `json:"faceDescriptor" binding:"required"`
}

// ScanAttendance handles POST /api/admin/attendance/scan: the admin-side
// camera scanner sends a probe descriptor and the server admits the
// closest enrolled user within the match threshold.
func (h *Handler) ScanAttendance(c *gin.Context) {
	var req scanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var users []model.User
	if err := h.store.DB().Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	var (
		best     *model.User
		bestDist float64
	)
	for i := range users {
		if len(users[i].FaceDescriptor) == 0 {
			continue
		}
		ok, dist, err := h.matcher.Match(users[i].FaceDescriptor, req.FaceDescriptor)
		if err != nil || !ok {
			continue
		}
		if best == nil || dist < bestDist {
			best = &users[i]
			bestDist = dist
		}
	}
	if best == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no enrolled user matches"})
		return
	}

	record, err := h.coord.MarkAttendance(c.Request.Context(), best.ID, req.SessionID, true, false)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, record)
}

type matchDataResponse struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Descriptor []float64 `json:"descriptor"`
}

// UserMatchData handles GET /api/admin/users/match-data: enrollment
// descriptors for the in-browser scanner.
func (h *Handler) UserMatchData(c *gin.Context) {
	var users []model.User
	if err := h.store.DB().Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	out := make([]matchDataResponse, 0, len(users))
	for _, u := range users {
		if len(u.FaceDescriptor) == 0 {
			continue
		}
		out = append(out, matchDataResponse{ID: u.ID, Name: u.Name, Descriptor: u.FaceDescriptor})
	}
	c.JSON(http.StatusOK, out)
}
