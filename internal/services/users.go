package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/mgltickets/api/internal/auth"
	"github.com/mgltickets/api/internal/models"
	"github.com/mgltickets/api/internal/repositories"
	"gorm.io/gorm"
)

type RegisterInput struct {
	Name        string      `json:"name" validate:"required,min=3,max=100"`
	Email       string      `json:"email" validate:"required,email_shape,max=150"`
	Password    string      `json:"password" validate:"required,min=8,max=72"`
	PhoneNumber string      `json:"phone_number" validate:"max=20"`
	Role        models.Role `json:"role" validate:"omitempty,oneof=attendee organizer admin"`
}

type UserService struct {
	users *repositories.UserRepository
}

func NewUserService(users *repositories.UserRepository) *UserService {
	return &UserService{users: users}
}

// Register creates an active, unverified account. Email uniqueness is left
// to the unique index so two concurrent registrations cannot both succeed.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	logger := loggerFor(ctx, "users")
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if err := validateStruct(input); err != nil {
		logger.Warn().Err(err).Msg("registration rejected")
		return nil, err
	}
	if input.Role == "" {
		input.Role = models.RoleAttendee
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, persistence("hash password", err)
	}

	user := &models.User{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: hash,
		PhoneNumber:  input.PhoneNumber,
		Role:         input.Role,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			logger.Warn().Str("email", input.Email).Msg("registration with existing email")
			return nil, ErrEmailTaken
		}
		return nil, persistence("create user", err)
	}

	logger.Info().Str("user_id", user.ID.String()).Str("role", string(user.Role)).Msg("user registered")
	return user, nil
}

// Authenticate checks credentials. Unknown emails and bad passwords both
// yield ErrInvalidCredentials.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	logger := loggerFor(ctx, "users")
	email = strings.ToLower(strings.TrimSpace(email))
	if !looksLikeEmail(email) {
		return nil, invalid("email", "invalid email format")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, persistence("load user", err)
	}
	if user == nil || !auth.CheckPassword(user.PasswordHash, password) {
		logger.Warn().Str("email", email).Msg("authentication failed")
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		logger.Warn().Str("user_id", user.ID.String()).Msg("inactive user tried to authenticate")
		return nil, ErrUserInactive
	}
	return user, nil
}

func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, persistence("load user", err)
	}
	if user == nil {
		return nil, notFound("user")
	}
	return user, nil
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, persistence("load user", err)
	}
	if user == nil {
		return nil, notFound("user")
	}
	return user, nil
}

func (s *UserService) SearchByName(ctx context.Context, query string) ([]models.User, error) {
	users, err := s.users.List(ctx, repositories.UserFilter{NameContains: strings.TrimSpace(query)})
	if err != nil {
		return nil, persistence("search users", err)
	}
	return users, nil
}

func (s *UserService) List(ctx context.Context, filter repositories.UserFilter) ([]models.User, error) {
	if filter.Role != nil && !filter.Role.Valid() {
		return nil, invalid("role", "unknown role")
	}
	users, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, persistence("list users", err)
	}
	return users, nil
}

func (s *UserService) Count(ctx context.Context, filter repositories.UserFilter) (int64, error) {
	if filter.Role != nil && !filter.Role.Valid() {
		return 0, invalid("role", "unknown role")
	}
	total, err := s.users.Count(ctx, filter)
	if err != nil {
		return 0, persistence("count users", err)
	}
	return total, nil
}

// UpdateContact changes email and/or phone; nil leaves the value as is.
func (s *UserService) UpdateContact(ctx context.Context, id uuid.UUID, email, phoneNumber *string) (*models.User, error) {
	if err := authorizeOwnerOr(ctx, id, auth.CapUsersManage); err != nil {
		return nil, err
	}
	update := repositories.UserUpdate{PhoneNumber: phoneNumber}
	if email != nil {
		normalized := strings.ToLower(strings.TrimSpace(*email))
		if !looksLikeEmail(normalized) {
			return nil, invalid("email", "invalid email format")
		}
		update.Email = &normalized
	}
	if phoneNumber != nil && len(*phoneNumber) > 20 {
		return nil, invalid("phone_number", "must be at most 20 characters long")
	}

	user, err := s.users.Update(ctx, id, update)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, ErrEmailTaken
	}
	return s.updated(ctx, user, err, "contact updated")
}

func (s *UserService) UpdatePassword(ctx context.Context, id uuid.UUID, password string) (*models.User, error) {
	if err := authorizeOwnerOr(ctx, id, auth.CapUsersManage); err != nil {
		return nil, err
	}
	if len(password) < 8 {
		return nil, invalid("password", "must be at least 8 characters long")
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, persistence("hash password", err)
	}
	user, err := s.users.Update(ctx, id, repositories.UserUpdate{PasswordHash: &hash})
	return s.updated(ctx, user, err, "password updated")
}

func (s *UserService) Activate(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.setFlag(ctx, id, repositories.UserUpdate{IsActive: boolPtr(true)}, "user activated")
}

func (s *UserService) Deactivate(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.setFlag(ctx, id, repositories.UserUpdate{IsActive: boolPtr(false)}, "user deactivated")
}

func (s *UserService) Verify(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.setFlag(ctx, id, repositories.UserUpdate{IsVerified: boolPtr(true)}, "user verified")
}

func (s *UserService) Unverify(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.setFlag(ctx, id, repositories.UserUpdate{IsVerified: boolPtr(false)}, "user unverified")
}

func (s *UserService) PromoteToAdmin(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.ChangeRole(ctx, id, models.RoleAdmin)
}

func (s *UserService) DemoteFromAdmin(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.ChangeRole(ctx, id, models.RoleAttendee)
}

func (s *UserService) PromoteToOrganizer(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.ChangeRole(ctx, id, models.RoleOrganizer)
}

func (s *UserService) DemoteFromOrganizer(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.ChangeRole(ctx, id, models.RoleAttendee)
}

func (s *UserService) PromoteOrganizerToAdmin(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.ChangeRole(ctx, id, models.RoleAdmin)
}

func (s *UserService) DemoteAdminToOrganizer(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.ChangeRole(ctx, id, models.RoleOrganizer)
}

// RoleAction applies one of the named role helpers, as used by
// POST /users/:id/role/:action.
func (s *UserService) RoleAction(ctx context.Context, id uuid.UUID, action string) (*models.User, error) {
	actions := map[string]func(context.Context, uuid.UUID) (*models.User, error){
		"promote-admin":           s.PromoteToAdmin,
		"demote-admin":            s.DemoteFromAdmin,
		"promote-organizer":       s.PromoteToOrganizer,
		"demote-organizer":        s.DemoteFromOrganizer,
		"promote-organizer-admin": s.PromoteOrganizerToAdmin,
		"demote-admin-organizer":  s.DemoteAdminToOrganizer,
	}
	apply, ok := actions[action]
	if !ok {
		return nil, invalid("action", "unknown role action")
	}
	return apply(ctx, id)
}

func (s *UserService) ChangeRole(ctx context.Context, id uuid.UUID, role models.Role) (*models.User, error) {
	if !role.Valid() {
		return nil, invalid("role", "unknown role")
	}
	user, err := s.users.Update(ctx, id, repositories.UserUpdate{Role: &role})
	return s.updated(ctx, user, err, "role changed")
}

func (s *UserService) Delete(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.users.Delete(ctx, id)
	if err != nil {
		return persistence("delete user", err)
	}
	if !deleted {
		return notFound("user")
	}
	logger := loggerFor(ctx, "users")
	logger.Info().Str("target_user_id", id.String()).Msg("user deleted")
	return nil
}

func (s *UserService) setFlag(ctx context.Context, id uuid.UUID, update repositories.UserUpdate, message string) (*models.User, error) {
	user, err := s.users.Update(ctx, id, update)
	return s.updated(ctx, user, err, message)
}

func (s *UserService) updated(ctx context.Context, user *models.User, err error, message string) (*models.User, error) {
	if err != nil {
		return nil, persistence("update user", err)
	}
	if user == nil {
		return nil, notFound("user")
	}
	logger := loggerFor(ctx, "users")
	logger.Info().Str("target_user_id", user.ID.String()).Msg(message)
	return user, nil
}

func boolPtr(v bool) *bool {
	return &v
}
