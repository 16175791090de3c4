package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mgltickets/api/internal/auth"
	"github.com/mgltickets/api/internal/helpers"
	"github.com/mgltickets/api/internal/metrics"
	"github.com/mgltickets/api/internal/middleware"
	"github.com/mgltickets/api/internal/models"
	"github.com/mgltickets/api/internal/schemas"
	"github.com/mgltickets/api/internal/services"
)

type LoginRequest struct {
	Email    string `json:"email" form:"username"`
	Password string `json:"password" form:"password"`
}

type AuthHandler struct {
	auth  *services.AuthService
	users *services.UserService
}

func NewAuthHandler(authService *services.AuthService, users *services.UserService) *AuthHandler {
	return &AuthHandler{auth: authService, users: users}
}

// Register is public; only callers allowed to manage users may create
// admin accounts.
func (h *AuthHandler) Register(c *gin.Context) {
	var req services.RegisterInput
	if !bindJSON(c, &req) {
		return
	}
	if req.Role == models.RoleAdmin && !middleware.CurrentIdentity(c).Can(auth.CapUsersManage) {
		helpers.RespondWithError(c, http.StatusForbidden, "Only administrators can create admin accounts.")
		return
	}

	user, err := h.users.Register(c.Request.Context(), req)
	if err != nil {
		helpers.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully.",
		"user":    schemas.User(user),
	})
}

// Login accepts the OAuth2 password form (username/password) or a JSON body
// with email/password.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	var err error
	if strings.HasPrefix(c.ContentType(), "application/json") {
		err = c.ShouldBindJSON(&req)
	} else {
		err = c.ShouldBind(&req)
	}
	if err != nil || req.Email == "" || req.Password == "" {
		helpers.RespondWithError(c, http.StatusBadRequest, invalidInputMessage)
		return
	}

	token, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrUnauthorized) {
			metrics.AuthFailures.WithLabelValues("invalid_credentials").Inc()
		}
		helpers.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "Login successful",
		"access_token": token.AccessToken,
		"token_type":   token.TokenType,
		"expires_in":   token.ExpiresIn,
	})
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	token, err := h.auth.Refresh(c.Request.Context(), middleware.CurrentIdentity(c))
	if err != nil {
		helpers.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, token)
}

// Logout is stateless: tokens stay valid until they expire.
func (h *AuthHandler) Logout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Logout successful. Client should delete the token."})
}

func (h *AuthHandler) Me(c *gin.Context) {
	identity := middleware.CurrentIdentity(c)
	user, err := h.users.GetByID(c.Request.Context(), identity.UserID)
	if err != nil {
		helpers.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, schemas.User(user))
}
