package services

import (
	"context"

	"schoolpay_backend/internal/auth"
	"schoolpay_backend/internal/email"
	"schoolpay_backend/internal/logger"
	"schoolpay_backend/internal/models"
	"schoolpay_backend/internal/repositories"
	"schoolpay_backend/pkg/apperrors"
)

type AuthService struct {
	users         *repositories.UserRepository
	emailProvider email.Provider
}

func NewAuthService(users *repositories.UserRepository, emailProvider email.Provider) *AuthService {
	return &AuthService{users: users, emailProvider: emailProvider}
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	AccessToken string       `json:"access_token"`
	User        *models.User `json:"user"`
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResponse, error) {
	user, err := s.users.FindByEmail(ctx, input.Email)
	if err != nil {
		if appErr, ok := apperrors.AsAppError(err); ok && appErr.Code == apperrors.CodeNotFound {
			return nil, apperrors.InvalidCredentials()
		}
		return nil, err
	}
	if !auth.CheckPasswordHash(input.Password, user.PasswordHash) {
		return nil, apperrors.InvalidCredentials()
	}

	token, err := auth.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return &LoginResponse{AccessToken: token, User: user}, nil
}

type CreateAccountInput struct {
	Email    string          `json:"email" binding:"required,email"`
	FullName string          `json:"full_name" binding:"required"`
	Role     models.UserRole `json:"role" binding:"required,userrole"`
	SchoolID *string         `json:"school_id"`
}

// CreateAccount provisions a staff/parent/vendor account with a generated
// temporary password and delivers the credentials by email. Delivery failure
// is logged, not fatal: the account exists and an admin can resend.
func (s *AuthService) CreateAccount(ctx context.Context, input CreateAccountInput) (*models.User, error) {
	if !input.Role.Valid() {
		return nil, apperrors.ValidationError("user", "Unknown role: "+string(input.Role))
	}

	tempPassword, err := auth.GenerateTempPassword(12)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	hash, err := auth.HashPassword(tempPassword)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	user := &models.User{
		Email:        input.Email,
		PasswordHash: hash,
		FullName:     input.FullName,
		Role:         input.Role,
		SchoolID:     input.SchoolID,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if appErr, ok := apperrors.AsAppError(err); ok && appErr.Code == apperrors.CodeConflict {
			return nil, apperrors.AlreadyExists(err, "user", "An account with this email already exists")
		}
		return nil, err
	}

	sendErr := s.emailProvider.SendTemplate(
		[]string{user.Email},
		"Your SchoolPay account",
		email.TemplateCredentials,
		email.TemplateData{
			"FullName":     user.FullName,
			"Email":        user.Email,
			"TempPassword": tempPassword,
		},
	)
	if sendErr != nil {
		logger.FromContext(ctx).Warn("failed to deliver credentials email",
			"user_id", user.ID, "error", sendErr)
	}
	return user, nil
}
