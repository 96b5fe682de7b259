package auth

import (
	"context"
	"strings"

	"github.com/angelmondragon/directsales-backend/internal/users"
	"github.com/angelmondragon/directsales-backend/pkg/db"
	"github.com/angelmondragon/directsales-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/directsales-backend/pkg/errors"
	"github.com/angelmondragon/directsales-backend/pkg/security"
)

// Register creates a consultant on a trial subscription and signs them in.
func (s *service) Register(ctx context.Context, req RegisterRequest) (*LoginResponse, error) {
	email := users.NormalizeEmail(req.Email)
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if strings.TrimSpace(req.FirstName) == "" || strings.TrimSpace(req.LastName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "first_name and last_name are required")
	}
	if !req.AcceptTOS {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "accept_tos must be true")
	}
	if err := security.CheckPasswordPolicy(req.Password); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, err.Error())
	}

	passwordHash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	user, err := s.users.Create(ctx, users.CreateUserDTO{
		Email:              email,
		PasswordHash:       passwordHash,
		FirstName:          strings.TrimSpace(req.FirstName),
		LastName:           strings.TrimSpace(req.LastName),
		Phone:              req.Phone,
		Role:               enums.UserRoleConsultant,
		SubscriptionStatus: enums.SubscriptionStatusTrialing,
	})
	if err != nil {
		if db.IsUniqueViolation(err, "users_email_key") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
	}

	return s.issueTokens(ctx, user, s.now())
}
