package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"attendance-backend/internal/geofence"
	"attendance-backend/internal/mw"
)

type createLocationRequest struct {
	Name      string             `json:"name" binding:"required"`
	ShapeType geofence.ShapeType `json:"shapeType" binding:"required"`
	Center    geofence.LatLng    `json:"center"`
	Radius    float64            `json:"radius"`
	Path      []geofence.LatLng  `json:"path"`
}

// CreateLocation handles POST /api/admin/locations.
func (h *Handler) CreateLocation(c *gin.Context) {
	principal, _ := mw.PrincipalFrom(c)

	var req createLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	shape := geofence.Shape{
		Type:         req.ShapeType,
		Center:       req.Center,
		RadiusMeters: req.Radius,
		Path:         req.Path,
	}
	location, err := h.store.CreateLocation(c.Request.Context(), principal.ID, req.Name, shape)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, location)
}

// ListLocations handles GET /api/admin/locations.
func (h *Handler) ListLocations(c *gin.Context) {
	principal, _ := mw.PrincipalFrom(c)

	locations, err := h.store.ListLocations(c.Request.Context(), principal.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, locations)
}

// DeleteLocation handles DELETE /api/admin/locations/:id.
func (h *Handler) DeleteLocation(c *gin.Context) {
	principal, _ := mw.PrincipalFrom(c)

	locationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid location id"})
		return
	}

	if err := h.store.DeleteLocation(c.Request.Context(), principal.ID, locationID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
