package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schoolpay_backend/internal/config"
	"schoolpay_backend/internal/email"
	"schoolpay_backend/internal/models"
	"schoolpay_backend/internal/repositories"
	"schoolpay_backend/internal/testutil"
	"schoolpay_backend/pkg/apperrors"
)

type recordingEmailProvider struct {
	sent []email.TemplateData
	fail bool
}

func (p *recordingEmailProvider) Send(*email.Email) error { return nil }

func (p *recordingEmailProvider) SendTemplate(to []string, subject, templateName string, data email.TemplateData) error {
	if p.fail {
		return errors.New("smtp unreachable")
	}
	p.sent = append(p.sent, data)
	return nil
}

func newAuthService(t *testing.T) (*AuthService, *recordingEmailProvider) {
	t.Helper()

	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.TTL = 60
	old := config.AppConfig
	config.AppConfig = cfg
	t.Cleanup(func() { config.AppConfig = old })

	db := testutil.OpenDB(t)
	provider := &recordingEmailProvider{}
	return NewAuthService(repositories.NewUserRepository(db, nil), provider), provider
}

func TestCreateAccountAndLogin(t *testing.T) {
	svc, provider := newAuthService(t)
	ctx := context.Background()

	user, err := svc.CreateAccount(ctx, CreateAccountInput{
		Email:    "staff@school.example.com",
		FullName: "Ana Souza",
		Role:     models.UserRoleStaff,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)

	// The generated credentials went out by email; use them to log in.
	require.Len(t, provider.sent, 1)
	tempPassword, ok := provider.sent[0]["TempPassword"].(string)
	require.True(t, ok)
	require.NotEmpty(t, tempPassword)

	resp, err := svc.Login(ctx, LoginInput{Email: "staff@school.example.com", Password: tempPassword})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, user.ID, resp.User.ID)
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	_, err := svc.CreateAccount(ctx, CreateAccountInput{
		Email:    "staff@school.example.com",
		FullName: "Ana Souza",
		Role:     models.UserRoleStaff,
	})
	require.NoError(t, err)

	_, err = svc.Login(ctx, LoginInput{Email: "staff@school.example.com", Password: "wrong"})
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeInvalidCredentials, appErr.Code)
}

func TestLogin_UnknownEmail(t *testing.T) {
	svc, _ := newAuthService(t)

	_, err := svc.Login(context.Background(), LoginInput{Email: "ghost@example.com", Password: "whatever"})
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	// Unknown accounts and bad passwords are indistinguishable to the caller.
	assert.Equal(t, apperrors.CodeInvalidCredentials, appErr.Code)
}

func TestCreateAccount_DuplicateEmail(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	input := CreateAccountInput{Email: "staff@school.example.com", FullName: "Ana Souza", Role: models.UserRoleStaff}
	_, err := svc.CreateAccount(ctx, input)
	require.NoError(t, err)

	_, err = svc.CreateAccount(ctx, input)
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeAlreadyExists, appErr.Code)
}

func TestCreateAccount_InvalidRole(t *testing.T) {
	svc, _ := newAuthService(t)

	_, err := svc.CreateAccount(context.Background(), CreateAccountInput{
		Email: "x@example.com", FullName: "X", Role: "teacher",
	})
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeValidationFailed, appErr.Code)
}

func TestCreateAccount_EmailFailureIsNotFatal(t *testing.T) {
	svc, provider := newAuthService(t)
	provider.fail = true

	user, err := svc.CreateAccount(context.Background(), CreateAccountInput{
		Email: "staff@school.example.com", FullName: "Ana Souza", Role: models.UserRoleStaff,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
}
