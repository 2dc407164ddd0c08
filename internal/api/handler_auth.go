package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"attendance-backend/internal/identity"
	"attendance-backend/internal/model"
	"attendance-backend/internal/mw"
)

type registerUserRequest struct {
	Name           string    `json:"name" binding:"required"`
	Email          string    `json:"email" binding:"required,email"`
	Password       string    `json:"password" binding:"required,min=6"`
	FaceDescriptor []float64 `json:"faceDescriptor" binding:"required"`
}

type registerAdminRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type principalResponse struct {
	ID    uuid.UUID     `json:"id"`
	Name  string        `json:"name"`
	Email string        `json:"email"`
	Role  identity.Role `json:"role"`
}

// RegisterUser enrolls a new user with their face descriptor and returns
// a token.
func (h *Handler) RegisterUser(c *gin.Context) {
	var req registerUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	db := h.store.DB()
	var existing model.User
	if err := db.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user already exists"})
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	hash, err := identity.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	user := model.User{
		ID:             uuid.New(),
		Name:           req.Name,
		Email:          req.Email,
		PasswordHash:   hash,
		FaceDescriptor: req.FaceDescriptor,
		CreatedAt:      time.Now().UTC(),
	}
	if err := db.Create(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	h.issueToken(c, user.ID, identity.RoleUser, user.Name, user.Email)
}

// RegisterAdmin creates a new admin account and returns a token.
func (h *Handler) RegisterAdmin(c *gin.Context) {
	var req registerAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	db := h.store.DB()
	var existing model.Admin
	if err := db.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "admin already exists"})
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	hash, err := identity.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	admin := model.Admin{
		ID:           uuid.New(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := db.Create(&admin).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	h.issueToken(c, admin.ID, identity.RoleAdmin, admin.Name, admin.Email)
}

// LoginUser authenticates a user by email and password.
func (h *Handler) LoginUser(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user model.User
	err := h.store.DB().Where("email = ?", req.Email).First(&user).Error
	if err != nil || !identity.CheckPassword(user.PasswordHash, req.Password) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid credentials"})
		return
	}

	h.issueToken(c, user.ID, identity.RoleUser, user.Name, user.Email)
}

// LoginAdmin authenticates an admin by email and password.
func (h *Handler) LoginAdmin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var admin model.Admin
	err := h.store.DB().Where("email = ?", req.Email).First(&admin).Error
	if err != nil || !identity.CheckPassword(admin.PasswordHash, req.Password) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid credentials"})
		return
	}

	h.issueToken(c, admin.ID, identity.RoleAdmin, admin.Name, admin.Email)
}

// Me returns the authenticated principal's profile.
func (h *Handler) Me(c *gin.Context) {
	principal, ok := mw.PrincipalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	db := h.store.DB()
	switch principal.Role {
	case identity.RoleAdmin:
		var admin model.Admin
		if err := db.First(&admin, "id = ?", principal.ID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "account not found"})
			return
		}
		c.JSON(http.StatusOK, principalResponse{ID: admin.ID, Name: admin.Name, Email: admin.Email, Role: identity.RoleAdmin})
	default:
		var user model.User
		if err := db.First(&user, "id = ?", principal.ID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "account not found"})
			return
		}
		c.JSON(http.StatusOK, principalResponse{ID: user.ID, Name: user.Name, Email: user.Email, Role: identity.RoleUser})
	}
}

func (h *Handler) issueToken(c *gin.Context, id uuid.UUID, role identity.Role, name, email string) {
	token, err := h.tokens.Issue(id, role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  principalResponse{ID: id, Name: name, Email: email, Role: role},
	})
}
