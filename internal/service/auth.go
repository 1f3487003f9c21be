package service

import (
	"context"
	"strings"
	"time"

	"github.com/penzflow/penzflow-sales-service/internal/errors"
	"github.com/penzflow/penzflow-sales-service/internal/logging"
	"github.com/penzflow/penzflow-sales-service/internal/models"
	"github.com/penzflow/penzflow-sales-service/internal/repository"
)

const (
	RoleAdministrator = "administrator"
	RoleSalesManager  = "sales_manager"
	RoleManager       = "manager"
	RoleSalesman      = "salesman"
	RoleSalesRep      = "sales_rep"
	RoleUser          = "user"
	RoleViewer        = "viewer"
)

var roleLevels = map[string]int{
	RoleAdministrator: 5,
	RoleSalesManager:  4,
	RoleManager:       3,
	RoleSalesman:      2,
	RoleSalesRep:      2,
	RoleUser:          1,
	RoleViewer:        0,
}

// HasPermission reports whether role ranks at or above required. Unknown
// roles rank as viewer.
func HasPermission(role, required string) bool {
	return roleLevels[role] >= roleLevels[required]
}

// AuthService authenticates dashboard users.
type AuthService struct {
	users  repository.UserRepository
	logger *logging.Logger
	now    func() time.Time
}

func NewAuthService(users repository.UserRepository) *AuthService {
	return &AuthService{
		users:  users,
		logger: logging.NewLogger("auth-service"),
		now:    time.Now,
	}
}

// Login returns the user for a matching username and password, or
// errors.ErrUnauthorized.
func (s *AuthService) Login(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, errors.NewValidationError("username", "username and password are required")
	}

	user, err := s.users.FindByCredentials(ctx, username, password)
	if err != nil {
		if errors.Is(err, errors.ErrUnauthorized) {
			s.logger.Warn("Login failed", logging.Fields{"username": username})
		}
		return nil, err
	}

	now := s.now()
	if err := s.users.TouchLastLogin(ctx, user.ID, now); err != nil {
		s.logger.Warn("Failed to record last login", logging.Fields{
			"user_id": user.ID,
			"error":   err.Error(),
		})
	} else {
		user.LastLogin = &now
	}

	s.logger.Info("User logged in", logging.Fields{
		"user_id": user.ID,
		"role":    user.Role,
	})
	return user, nil
}
