package service

import (
	"context"
	"strings"

	"github.com/deppfellow/consultdesk/internal/errs"
	"github.com/deppfellow/consultdesk/internal/model"
	"github.com/google/uuid"
)

type UserService struct {
	users userStore
	auth  *AuthService
}

func NewUserService(users userStore, auth *AuthService) *UserService {
	return &UserService{users: users, auth: auth}
}

type UpdateProfileInput struct {
	Email    string
	FullName string
}

type ChangePasswordInput struct {
	CurrentPassword string
	NewPassword     string
}

type CreateUserInput struct {
	Email    string
	FullName string
	Password string
	Role     model.Role
}

type UpdateUserInput struct {
	Email    string
	FullName string
	Role     model.Role
	Active   bool
}

func (s *UserService) Me(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	return s.users.GetByID(ctx, userID)
}

func (s *UserService) UpdateProfile(ctx context.Context, userID uuid.UUID, in UpdateProfileInput) (*model.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.Email = strings.TrimSpace(in.Email)
	user.FullName = strings.TrimSpace(in.FullName)

	return s.users.Update(ctx, user)
}

func (s *UserService) ChangePassword(ctx context.Context, userID uuid.UUID, in ChangePasswordInput) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if !CheckPassword(user, in.CurrentPassword) {
		return errs.FieldValidationError("currentPassword", "is incorrect")
	}

	if len(in.NewPassword) < MinPasswordLength {
		return errs.FieldValidationError("newPassword", "must be at least 8 characters")
	}

	hash, err := HashPassword(in.NewPassword)
	if err != nil {
		return err
	}

	return s.users.UpdatePassword(ctx, userID, hash)
}

func (s *UserService) List(ctx context.Context, f model.UserFilter) (*model.PaginatedResponse[model.User], error) {
	return s.users.List(ctx, f)
}

func (s *UserService) Create(ctx context.Context, in CreateUserInput) (*model.User, error) {
	if !in.Role.Valid() {
		return nil, errs.FieldValidationError("role", "must be one of: admin, staff")
	}

	if len(in.Password) < MinPasswordLength {
		return nil, errs.FieldValidationError("password", "must be at least 8 characters")
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	return s.users.Create(ctx, &model.User{
		Email:        strings.TrimSpace(in.Email),
		FullName:     strings.TrimSpace(in.FullName),
		PasswordHash: hash,
		Role:         in.Role,
		Active:       true,
	})
}

// Update applies an admin edit. Demoting or deactivating the last active
// admin is refused. Deactivation revokes the user's sessions; a role change
// evicts them from the cache so RequireRole sees the new role at once.
func (s *UserService) Update(ctx context.Context, actorID, userID uuid.UUID, in UpdateUserInput) (*model.User, error) {
	if !in.Role.Valid() {
		return nil, errs.FieldValidationError("role", "must be one of: admin, staff")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if actorID == userID && !in.Active {
		return nil, errs.NewBadRequestError("You cannot deactivate your own account", true, nil, nil, nil)
	}

	losesAdmin := user.IsAdmin() && user.Active && (in.Role != model.RoleAdmin || !in.Active)
	if losesAdmin {
		if err := s.ensureAnotherAdmin(ctx); err != nil {
			return nil, err
		}
	}

	wasActive := user.Active
	roleChanged := user.Role != in.Role

	user.Email = strings.TrimSpace(in.Email)
	user.FullName = strings.TrimSpace(in.FullName)
	user.Role = in.Role
	user.Active = in.Active

	updated, err := s.users.Update(ctx, user)
	if err != nil {
		return nil, err
	}

	switch {
	case wasActive && !updated.Active:
		if _, err := s.auth.ExpireUserSessions(ctx, userID); err != nil {
			return nil, err
		}
	case roleChanged && updated.Active:
		if err := s.auth.EvictUserSessions(ctx, userID); err != nil {
			return nil, err
		}
	}

	return updated, nil
}

// Deactivate is the soft delete behind DELETE /admin/users/:id.
func (s *UserService) Deactivate(ctx context.Context, actorID, userID uuid.UUID) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	_, err = s.Update(ctx, actorID, userID, UpdateUserInput{
		Email:    user.Email,
		FullName: user.FullName,
		Role:     user.Role,
		Active:   false,
	})
	return err
}

func (s *UserService) ExpireSessions(ctx context.Context, userID uuid.UUID) (int, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return 0, err
	}
	return s.auth.ExpireUserSessions(ctx, userID)
}

func (s *UserService) ensureAnotherAdmin(ctx context.Context) error {
	admins, err := s.users.CountActiveAdmins(ctx)
	if err != nil {
		return err
	}
	if admins <= 1 {
		return errs.NewBadRequestError("At least one active admin is required", true, nil, nil, nil)
	}
	return nil
}
