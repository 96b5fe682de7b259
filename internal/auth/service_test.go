package auth

import (
	"context"
	"testing"

	"github.com/angelmondragon/directsales-backend/internal/users"
	pkgAuth "github.com/angelmondragon/directsales-backend/pkg/auth"
	"github.com/angelmondragon/directsales-backend/pkg/config"
	"github.com/angelmondragon/directsales-backend/pkg/db/dbtest"
	"github.com/angelmondragon/directsales-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/directsales-backend/pkg/errors"
	"github.com/angelmondragon/directsales-backend/pkg/security"
)

type stubSessionManager struct {
	refreshToken string
	accessIDs    []string
}

func (s *stubSessionManager) Generate(_ context.Context, accessID string) (string, error) {
	s.accessIDs = append(s.accessIDs, accessID)
	return s.refreshToken, nil
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "secret",
		Issuer:            "directsales",
		ExpirationMinutes: 30,
	}
}

func buildTestService(t *testing.T) (Service, *users.Repository, *stubSessionManager) {
	t.Helper()
	repo := users.NewRepository(dbtest.Open(t).DB())
	sessionMgr := &stubSessionManager{refreshToken: "refresh-token"}
	svc, err := NewService(ServiceParams{
		UserRepo:       repo,
		SessionManager: sessionMgr,
		JWTConfig:      testJWTConfig(),
	})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc, repo, sessionMgr
}

func seedUser(t *testing.T, repo *users.Repository, email, password string, role enums.UserRole, active bool) {
	t.Helper()
	hash, err := security.HashPassword(password, config.PasswordConfig{})
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if _, err := repo.Create(context.Background(), users.CreateUserDTO{
		Email:        email,
		PasswordHash: hash,
		FirstName:    "Test",
		LastName:     "User",
		Role:         role,
		IsActive:     &active,
	}); err != nil {
		t.Fatalf("seed user: %v", err)
	}
}

func requireCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != code {
		t.Fatalf("expected %s, got %v", code, err)
	}
}

func TestServiceLoginIssuesRoleClaim(t *testing.T) {
	svc, repo, sessions := buildTestService(t)
	seedUser(t, repo, "admin@example.com", "admin-secret1", enums.UserRoleAdmin, true)

	resp, err := svc.Login(context.Background(), LoginRequest{Email: "Admin@Example.com", Password: "admin-secret1"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	claims, err := pkgAuth.ParseAccessToken(testJWTConfig(), resp.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.Role != enums.UserRoleAdmin {
		t.Fatalf("expected admin role claim, got %s", claims.Role)
	}
	if resp.RefreshToken != "refresh-token" {
		t.Fatalf("expected refresh token to be set")
	}
	if len(sessions.accessIDs) != 1 || sessions.accessIDs[0] != claims.ID {
		t.Fatalf("refresh session should be keyed by the token id")
	}
	if resp.User.LastLoginAt == nil {
		t.Fatalf("expected last login to be recorded")
	}
}

func TestServiceLoginRejectsBadCredentials(t *testing.T) {
	svc, repo, _ := buildTestService(t)
	seedUser(t, repo, "ana@example.com", "right-pass1", enums.UserRoleConsultant, true)
	seedUser(t, repo, "off@example.com", "right-pass1", enums.UserRoleConsultant, false)

	cases := []LoginRequest{
		{Email: "ana@example.com", Password: "wrong-pass1"},
		{Email: "nobody@example.com", Password: "right-pass1"},
		{Email: "off@example.com", Password: "right-pass1"},
		{Email: "  ", Password: "right-pass1"},
	}
	for _, req := range cases {
		_, err := svc.Login(context.Background(), req)
		requireCode(t, err, pkgerrors.CodeUnauthorized)
	}
}

func TestRegisterCreatesTrialingConsultant(t *testing.T) {
	svc, repo, _ := buildTestService(t)

	resp, err := svc.Register(context.Background(), RegisterRequest{
		FirstName: "Bea",
		LastName:  "Ruiz",
		Email:     "Bea@Example.com",
		Password:  "sales2024",
		AcceptTOS: true,
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if resp.User.Role != enums.UserRoleConsultant || resp.User.SubscriptionStatus != enums.SubscriptionStatusTrialing {
		t.Fatalf("unexpected user %+v", resp.User)
	}
	if resp.AccessToken == "" {
		t.Fatalf("expected tokens after register")
	}

	stored, err := repo.FindByEmail(context.Background(), "bea@example.com")
	if err != nil {
		t.Fatalf("find user: %v", err)
	}
	if ok, _ := security.VerifyPassword("sales2024", stored.PasswordHash); !ok {
		t.Fatalf("password not hashed with the submitted value")
	}

	if _, err := svc.Login(context.Background(), LoginRequest{Email: "bea@example.com", Password: "sales2024"}); err != nil {
		t.Fatalf("login after register: %v", err)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _, _ := buildTestService(t)
	req := RegisterRequest{FirstName: "A", LastName: "B", Email: "dup@example.com", Password: "sales2024", AcceptTOS: true}

	if _, err := svc.Register(context.Background(), req); err != nil {
		t.Fatalf("first register: %v", err)
	}
	_, err := svc.Register(context.Background(), req)
	requireCode(t, err, pkgerrors.CodeConflict)
}

func TestRegisterValidation(t *testing.T) {
	svc, _, _ := buildTestService(t)
	base := RegisterRequest{FirstName: "A", LastName: "B", Email: "v@example.com", Password: "sales2024", AcceptTOS: true}

	noTOS := base
	noTOS.AcceptTOS = false
	weak := base
	weak.Password = "short"
	noName := base
	noName.FirstName = " "

	for _, req := range []RegisterRequest{noTOS, weak, noName} {
		_, err := svc.Register(context.Background(), req)
		requireCode(t, err, pkgerrors.CodeValidation)
	}
}
