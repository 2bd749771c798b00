package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/prodbrandon/CSE360HW4-sub000/internal/models"
	"github.com/prodbrandon/CSE360HW4-sub000/internal/repositories"
	"github.com/prodbrandon/CSE360HW4-sub000/internal/validator"
)

type userService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	events    NotificationEventService
}

func NewUserService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, events NotificationEventService) UserService {
	return &userService{
		repo:      repo,
		logger:    logger,
		validator: validator,
		events:    events,
	}
}

// ===== REGISTRATION AND AUTHENTICATION =====

func (s *userService) Register(ctx context.Context, req *RegisterRequest) (*UserResponse, error) {
	s.logger.Info("Registering user", "user_name", req.UserName)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	if _, err := s.repo.User().GetByUserName(ctx, nil, req.UserName); err == nil {
		return nil, ErrUserNameTaken
	} else if !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to check user name: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		UserName:     req.UserName,
		PasswordHash: string(hash),
	}

	// Registration and invite consumption commit together so a code is
	// never burned on a failed registration.
	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		roles := []models.Role{models.RoleStudent}

		if req.InviteCode != nil {
			if err := txRepo.User().Create(ctx, nil, user); err != nil {
				return fmt.Errorf("failed to create user: %w", err)
			}
			invite, err := txRepo.User().ConsumeInvitation(ctx, nil, *req.InviteCode, user.ID)
			if err != nil {
				if repositories.IsNotFoundError(err) {
					return ErrInviteNotFound
				}
				return fmt.Errorf("failed to consume invitation: %w", err)
			}
			if inviteRoles := invite.RoleSet(); len(inviteRoles) > 0 {
				roles = inviteRoles
			}
			user.SetRoles(roles)
			return txRepo.User().Update(ctx, nil, user)
		}

		user.SetRoles(roles)
		return txRepo.User().Create(ctx, nil, user)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("User registered", "user_id", user.ID, "user_name", user.UserName)

	if s.events != nil {
		if err := s.events.PublishUserRegistered(ctx, user); err != nil {
			s.logger.Warn("Failed to publish registration event", "error", err)
		}
	}

	return buildUserResponse(user), nil
}

func (s *userService) Authenticate(ctx context.Context, req *LoginRequest) (*UserResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.repo.User().GetByUserName(ctx, nil, req.UserName)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return buildUserResponse(user), nil
}

func (s *userService) ResetPassword(ctx context.Context, req *PasswordResetRequest) (*UserResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.repo.User().GetByUserName(ctx, nil, req.UserName)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		consumed, err := txRepo.User().ConsumeOneTimePassword(ctx, nil, user.ID, req.OneTimeCode)
		if err != nil {
			return fmt.Errorf("failed to consume one-time password: %w", err)
		}
		if !consumed {
			return ErrInvalidCredentials
		}

		user.PasswordHash = string(hash)
		user.MustResetPassword = false
		return txRepo.User().Update(ctx, nil, user)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Password reset completed", "user_id", user.ID)

	return buildUserResponse(user), nil
}

// ===== LOOKUPS =====

func (s *userService) GetByID(ctx context.Context, id uint) (*UserResponse, error) {
	user, err := s.repo.User().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return buildUserResponse(user), nil
}

func (s *userService) List(ctx context.Context, filters repositories.UserFilters, actorID uint) (*UserListResponse, error) {
	if err := s.requireAnyRole(ctx, actorID, "user", "list", models.RoleAdmin, models.RoleInstructor, models.RoleStaff); err != nil {
		return nil, err
	}

	users, total, err := s.repo.User().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	resp := &UserListResponse{Total: total}
	for _, user := range users {
		resp.Users = append(resp.Users, buildUserResponse(user))
	}
	return resp, nil
}

// ===== ADMIN OPERATIONS =====

func (s *userService) UpdateRoles(ctx context.Context, userID uint, req *UpdateRolesRequest, actorID uint) (*UserResponse, error) {
	s.logger.Info("Updating roles", "user_id", userID, "actor_id", actorID, "roles", req.Roles)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if err := s.requireAnyRole(ctx, actorID, "user", "update_roles", models.RoleAdmin); err != nil {
		return nil, err
	}

	newRoles := make([]models.Role, 0, len(req.Roles))
	for _, r := range req.Roles {
		newRoles = append(newRoles, models.Role(r))
	}

	var user *models.User
	err := s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		var err error
		user, err = txRepo.User().GetByID(ctx, nil, userID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrUserNotFound
			}
			return fmt.Errorf("failed to get user: %w", err)
		}

		losesAdmin := user.HasRole(models.RoleAdmin) && !containsRole(newRoles, models.RoleAdmin)
		if losesAdmin {
			remaining, err := txRepo.User().CountAdmins(ctx, nil, userID)
			if err != nil {
				return fmt.Errorf("failed to count admins: %w", err)
			}
			if remaining == 0 {
				return ErrLastAdmin
			}
		}

		user.SetRoles(newRoles)
		return txRepo.User().Update(ctx, nil, user)
	})
	if err != nil {
		return nil, err
	}

	if s.events != nil {
		if err := s.events.PublishUserRolesChanged(ctx, user); err != nil {
			s.logger.Warn("Failed to publish role change event", "error", err)
		}
	}

	return buildUserResponse(user), nil
}

func (s *userService) SetOneTimePassword(ctx context.Context, userID uint, actorID uint) (string, error) {
	s.logger.Info("Issuing one-time password", "user_id", userID, "actor_id", actorID)

	if err := s.requireAnyRole(ctx, actorID, "user", "set_one_time_password", models.RoleAdmin); err != nil {
		return "", err
	}

	user, err := s.repo.User().GetByID(ctx, nil, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return "", ErrUserNotFound
		}
		return "", fmt.Errorf("failed to get user: %w", err)
	}

	code := generateCode()

	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		otp := &models.OneTimePassword{
			UserID:    user.ID,
			Code:      code,
			CreatedBy: actorID,
		}
		if err := txRepo.User().CreateOneTimePassword(ctx, nil, otp); err != nil {
			return fmt.Errorf("failed to store one-time password: %w", err)
		}

		user.MustResetPassword = true
		return txRepo.User().Update(ctx, nil, user)
	})
	if err != nil {
		return "", err
	}

	return code, nil
}

func (s *userService) CreateInvitation(ctx context.Context, req *InvitationCreateRequest, actorID uint) (*InvitationResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if err := s.requireAnyRole(ctx, actorID, "invitation", "create", models.RoleAdmin); err != nil {
		return nil, err
	}

	invite := &models.InvitationCode{
		Code:      generateCode(),
		CreatedBy: actorID,
	}
	roles := make([]models.Role, 0, len(req.Roles))
	for _, r := range req.Roles {
		roles = append(roles, models.Role(r))
	}
	invite.SetRoles(roles)

	if err := s.repo.User().CreateInvitation(ctx, nil, invite); err != nil {
		return nil, fmt.Errorf("failed to create invitation: %w", err)
	}

	s.logger.Info("Invitation created", "actor_id", actorID, "roles", req.Roles)

	return &InvitationResponse{Code: invite.Code, Roles: req.Roles}, nil
}

func (s *userService) Delete(ctx context.Context, userID uint, actorID uint) error {
	s.logger.Info("Deleting user", "user_id", userID, "actor_id", actorID)

	if err := s.requireAnyRole(ctx, actorID, "user", "delete", models.RoleAdmin); err != nil {
		return err
	}

	return s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		user, err := txRepo.User().GetByID(ctx, nil, userID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrUserNotFound
			}
			return fmt.Errorf("failed to get user: %w", err)
		}

		if user.HasRole(models.RoleAdmin) {
			remaining, err := txRepo.User().CountAdmins(ctx, nil, userID)
			if err != nil {
				return fmt.Errorf("failed to count admins: %w", err)
			}
			if remaining == 0 {
				return ErrLastAdmin
			}
		}

		hasContent, err := txRepo.User().HasAuthoredContent(ctx, nil, userID)
		if err != nil {
			return fmt.Errorf("failed to check authored content: %w", err)
		}
		if hasContent {
			return ErrUserHasContent
		}

		// A reviewer profile and its reviews go with the account.
		if reviewer, err := txRepo.Reviewer().GetByUser(ctx, nil, userID); err == nil {
			if err := txRepo.Review().DeleteByReviewer(ctx, nil, reviewer.ID); err != nil {
				return fmt.Errorf("failed to delete reviewer's reviews: %w", err)
			}
			if err := txRepo.Reviewer().Delete(ctx, nil, reviewer.ID); err != nil {
				return fmt.Errorf("failed to delete reviewer profile: %w", err)
			}
		} else if !repositories.IsNotFoundError(err) {
			return fmt.Errorf("failed to look up reviewer profile: %w", err)
		}

		return txRepo.User().Delete(ctx, nil, userID)
	})
}

// ===== HELPERS =====

func (s *userService) requireAnyRole(ctx context.Context, actorID uint, resource, action string, roles ...models.Role) error {
	actor, err := s.repo.User().GetByID(ctx, nil, actorID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return NewPermissionError(actorID, 0, resource, action, "actor not found")
		}
		return fmt.Errorf("failed to get actor: %w", err)
	}
	if !actor.HasAnyRole(roles...) {
		return NewPermissionError(actorID, 0, resource, action, "insufficient role")
	}
	return nil
}

func buildUserResponse(user *models.User) *UserResponse {
	roles := user.RoleSet()
	roleNames := make([]string, 0, len(roles))
	for _, r := range roles {
		roleNames = append(roleNames, string(r))
	}
	return &UserResponse{
		ID:                user.ID,
		UserName:          user.UserName,
		Roles:             roleNames,
		MustResetPassword: user.MustResetPassword,
	}
}

func containsRole(roles []models.Role, role models.Role) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

func generateCode() string {
	return strings.ToUpper(uuid.New().String()[:8])
}
