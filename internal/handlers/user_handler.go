package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mgltickets/api/internal/helpers"
	"github.com/mgltickets/api/internal/models"
	"github.com/mgltickets/api/internal/repositories"
	"github.com/mgltickets/api/internal/schemas"
	"github.com/mgltickets/api/internal/services"
)

type UpdateContactRequest struct {
	Email       *string `json:"email"`
	PhoneNumber *string `json:"phone_number"`
}

type UpdatePasswordRequest struct {
	Password string `json:"password" binding:"required"`
}

type ChangeRoleRequest struct {
	Role models.Role `json:"role" binding:"required"`
}

type UserHandler struct {
	users *services.UserService
}

func NewUserHandler(users *services.UserService) *UserHandler {
	return &UserHandler{users: users}
}

func (h *UserHandler) userFilter(c *gin.Context) (repositories.UserFilter, helpers.Pagination, bool) {
	base, pagination, ok := listFilter(c)
	if !ok {
		return repositories.UserFilter{}, pagination, false
	}
	filter := repositories.UserFilter{Filter: base, NameContains: c.Query("name")}
	if role := helpers.LowerQuery(c, "role"); role != "" {
		userRole := models.Role(role)
		filter.Role = &userRole
	}
	if filter.IsActive, ok = queryBool(c, "is_active"); !ok {
		return filter, pagination, false
	}
	if filter.IsVerified, ok = queryBool(c, "is_verified"); !ok {
		return filter, pagination, false
	}
	return filter, pagination, true
}

func (h *UserHandler) List(c *gin.Context) {
	filter, pagination, ok := h.userFilter(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	users, err := h.users.List(ctx, filter)
	if err != nil {
		helpers.RespondWithServiceError(c, err)
		return
	}
	total, err := h.users.Count(ctx, filter)
	if err != nil {
		helpers.RespondWithServiceError(c, err)
		return
	}
	paginated(c, "users", schemas.Users(users), total, pagination)
}

func (h *UserHandler) Count(c *gin.Context) {
	filter, _, ok := h.userFilter(c)
	if !ok {
		return
	}
	total, err := h.users.Count(c.Request.Context(), filter)
	if err != nil {
		helpers.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": total})
}

func (h *UserHandler) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		helpers.RespondWithError(c, http.StatusBadRequest, "q is required")
		return
	}
	users, err := h.users.SearchByName(c.Request.Context(), query)
	if err != nil {
		helpers.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, schemas.Users(users))
}

func (h *UserHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	user, err := h.users.GetByID(c.Request.Context(), id)
	if err != nil {
		helpers.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, schemas.User(user))
}

func (h *UserHandler) UpdateContact(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req UpdateContactRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.users.UpdateContact(c.Request.Context(), id, req.Email, req.PhoneNumber)
	if err != nil {
		helpers.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, schemas.User(user))
}

func (h *UserHandler) UpdatePassword(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req UpdatePasswordRequest
	if !bindJSON(c, &req) {
		return
	}
	if _, err := h.users.UpdatePassword(c.Request.Context(), id, req.Password); err != nil {
		helpers.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password updated successfully."})
}

func (h *UserHandler) Activate(c *gin.Context)   { h.apply(c, h.users.Activate) }
func (h *UserHandler) Deactivate(c *gin.Context) { h.apply(c, h.users.Deactivate) }
func (h *UserHandler) Verify(c *gin.Context)     { h.apply(c, h.users.Verify) }
func (h *UserHandler) Unverify(c *gin.Context)   { h.apply(c, h.users.Unverify) }

func (h *UserHandler) RoleAction(c *gin.Context) {
	action := c.Param("action")
	h.apply(c, func(ctx context.Context, id uuid.UUID) (*models.User, error) {
		return h.users.RoleAction(ctx, id, action)
	})
}

func (h *UserHandler) ChangeRole(c *gin.Context) {
	var req ChangeRoleRequest
	if !bindJSON(c, &req) {
		return
	}
	h.apply(c, func(ctx context.Context, id uuid.UUID) (*models.User, error) {
		return h.users.ChangeRole(ctx, id, req.Role)
	})
}

func (h *UserHandler) apply(c *gin.Context, action func(context.Context, uuid.UUID) (*models.User, error)) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	user, err := action(c.Request.Context(), id)
	if err != nil {
		helpers.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, schemas.User(user))
}

func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.users.Delete(c.Request.Context(), id); err != nil {
		helpers.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully."})
}
