package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"stay-nest/internal/data/entity"
	"stay-nest/internal/data/repository"
	"stay-nest/internal/dto/request"
	"stay-nest/internal/dto/response"
	"stay-nest/internal/notify"
	"stay-nest/pkg/apperror"
	"stay-nest/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AuthService interface {
	Signup(ctx context.Context, req *request.SignupRequest) (*response.AuthResponse, error)
	Signin(ctx context.Context, req *request.SigninRequest) (*response.AuthResponse, error)
	Logout(ctx context.Context, sessionToken string) error
	Me(ctx context.Context, principal entity.Principal) (*response.UserResponse, error)
	ForgotPassword(ctx context.Context, req *request.ForgotPasswordRequest) error
	ResetPassword(ctx context.Context, req *request.ResetPasswordRequest) (*response.AuthResponse, error)
}

type authService struct {
	repo   *repository.Repository // grouping userRepo, sessionRepo, & otpRepo
	config *utils.Config
	mailer notify.Mailer
	log    *zap.Logger
}

func NewAuthService(
	repo *repository.Repository,
	config *utils.Config,
	mailer notify.Mailer,
	log *zap.Logger,
) AuthService {
	return &authService{
		repo:   repo,
		config: config,
		mailer: mailer,
		log:    log.With(zap.String("service", "auth")),
	}
}

func (s *authService) Signup(ctx context.Context, req *request.SignupRequest) (*response.AuthResponse, error) {
	// 1. Validate input
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Signup validation failed", zap.Any("errors", errs))
		return nil, apperror.Validation("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	email := normalizeEmail(req.Email)

	// 2. Email must be unused
	existingUser, err := s.repo.User.FindByEmail(ctx, email)
	if err != nil {
		s.log.Error("Failed to check email", zap.Error(err), zap.String("email", email))
		return nil, apperror.Internal("failed to check email", err)
	}
	if existingUser != nil {
		return nil, apperror.Conflict("Email already registered")
	}

	// 3. Hash password
	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		s.log.Error("Failed to hash password", zap.Error(err))
		return nil, apperror.Internal("failed to process password", err)
	}

	// 4. Save user
	now := time.Now()
	user := &entity.User{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Name:               strings.TrimSpace(req.Name),
		Email:              email,
		PasswordHash:       hashedPassword,
		Phone:              req.Phone,
		Role:               entity.RoleUser,
		EmailNotifications: true,
		PushNotifications:  true,
		IsActive:           true,
	}

	if err := s.repo.User.Create(ctx, user); err != nil {
		s.log.Error("Failed to create user", zap.Error(err), zap.String("email", email))
		return nil, apperror.Internal("failed to create account", err)
	}

	// 5. Log in right away
	resp, err := issueToken(ctx, s.repo, s.config, user)
	if err != nil {
		s.log.Error("Failed to create session after signup", zap.Error(err), zap.String("user_id", user.ID.String()))
		return nil, err
	}

	s.log.Info("User registered",
		zap.String("user_id", user.ID.String()),
		zap.String("email", user.Email))

	return resp, nil
}

func (s *authService) Signin(ctx context.Context, req *request.SigninRequest) (*response.AuthResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Signin validation failed", zap.Any("errors", errs))
		return nil, apperror.Validation("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	email := normalizeEmail(req.Email)

	user, err := s.repo.User.FindByEmail(ctx, email)
	if err != nil {
		s.log.Error("Failed to find user by email", zap.Error(err), zap.String("email", email))
		return nil, apperror.Internal("failed to find user", err)
	}

	if user == nil || !utils.CheckPasswordHash(req.Password, user.PasswordHash) {
		s.log.Warn("Invalid signin attempt", zap.String("email", email))
		return nil, apperror.Unauthorized("Invalid email or password")
	}

	if !user.IsActive {
		s.log.Warn("Inactive user tried to sign in", zap.String("user_id", user.ID.String()))
		return nil, apperror.Unauthorized("Account is deactivated")
	}

	resp, err := issueToken(ctx, s.repo, s.config, user)
	if err != nil {
		s.log.Error("Failed to create session", zap.Error(err), zap.String("user_id", user.ID.String()))
		return nil, err
	}

	s.log.Info("User signed in", zap.String("user_id", user.ID.String()))
	return resp, nil
}

func (s *authService) Logout(ctx context.Context, sessionToken string) error {
	token, err := uuid.Parse(sessionToken)
	if err != nil {
		s.log.Warn("Invalid session token format", zap.Error(err))
		return apperror.Unauthorized("Invalid session")
	}

	if err := s.repo.Session.Revoke(ctx, token); err != nil {
		s.log.Error("Failed to revoke session", zap.Error(err))
		return apperror.Internal("failed to logout", err)
	}

	s.log.Info("User logged out", zap.String("session", token.String()))
	return nil
}

func (s *authService) Me(ctx context.Context, principal entity.Principal) (*response.UserResponse, error) {
	user, err := s.repo.User.FindByID(ctx, principal.UserID)
	if err != nil {
		s.log.Error("Failed to find user", zap.Error(err), zap.String("user_id", principal.UserID.String()))
		return nil, apperror.Internal("failed to get user", err)
	}
	if user == nil {
		return nil, apperror.NotFound("User not found")
	}

	resp := response.UserToResponse(user)
	return &resp, nil
}

func (s *authService) ForgotPassword(ctx context.Context, req *request.ForgotPasswordRequest) error {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return apperror.Validation("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	email := normalizeEmail(req.Email)

	// 1. Find user
	user, err := s.repo.User.FindByEmail(ctx, email)
	if err != nil {
		s.log.Error("Failed to find user for password reset", zap.Error(err), zap.String("email", email))
		return apperror.Internal("failed to find user", err)
	}
	if user == nil {
		return apperror.NotFound("There is no user with that email address")
	}

	// 2. Only the latest code is usable
	if err := s.repo.OTP.InvalidateForUser(ctx, user.ID, entity.OTPTypePasswordReset); err != nil {
		s.log.Warn("Failed to invalidate previous codes", zap.Error(err), zap.String("user_id", user.ID.String()))
	}

	// 3. Generate and save OTP
	now := time.Now()
	code := utils.GenerateOTP(s.config.OTP.Length)
	otp := &entity.OTP{
		BaseSimple: entity.BaseSimple{
			ID:        uuid.New(),
			CreatedAt: now,
		},
		UserID:    user.ID,
		Email:     user.Email,
		OTPCode:   code,
		OTPType:   entity.OTPTypePasswordReset,
		ExpiresAt: now.Add(time.Duration(s.config.OTP.ExpiryMinutes) * time.Minute),
	}

	if err := s.repo.OTP.Create(ctx, otp); err != nil {
		s.log.Error("Failed to save OTP", zap.Error(err), zap.String("email", email))
		return apperror.Internal("failed to generate reset code", err)
	}

	// 4. Email the code
	body := fmt.Sprintf(
		"Your password reset code is %s. It expires in %d minutes.\n\nIf you did not request a password reset, please ignore this email.",
		code, s.config.OTP.ExpiryMinutes,
	)
	if err := s.mailer.Send(user.Email, "Your password reset code", body); err != nil {
		s.log.Error("Failed to send reset email", zap.Error(err), zap.String("email", email))
		return apperror.Internal("There was an error sending the email. Try again later", err)
	}

	s.log.Info("Password reset code sent",
		zap.String("user_id", user.ID.String()),
		zap.Time("expires_at", otp.ExpiresAt),
	)
	return nil
}

func (s *authService) ResetPassword(ctx context.Context, req *request.ResetPasswordRequest) (*response.AuthResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Reset password validation failed", zap.Any("errors", errs))
		return nil, apperror.Validation("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	email := normalizeEmail(req.Email)

	// 1. Find valid OTP
	otp, err := s.repo.OTP.FindValidOTP(ctx, email, req.OTP, entity.OTPTypePasswordReset)
	if err != nil {
		s.log.Error("Failed to find OTP", zap.Error(err), zap.String("email", email))
		return nil, apperror.Internal("failed to verify reset code", err)
	}
	if otp == nil {
		return nil, apperror.Validation("Reset code is invalid or has expired")
	}

	// 2. Find user
	user, err := s.repo.User.FindByID(ctx, otp.UserID)
	if err != nil {
		return nil, apperror.Internal("failed to find user", err)
	}
	if user == nil {
		return nil, apperror.NotFound("User not found")
	}

	// 3. Update password
	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		s.log.Error("Failed to hash password", zap.Error(err))
		return nil, apperror.Internal("failed to process password", err)
	}
	user.PasswordHash = hashedPassword
	user.UpdatedAt = time.Now()

	if err := s.repo.User.Update(ctx, user); err != nil {
		s.log.Error("Failed to update password", zap.Error(err), zap.String("user_id", user.ID.String()))
		return nil, apperror.Internal("failed to reset password", err)
	}

	// 4. Consume code and end every other session
	if err := s.repo.OTP.MarkAsUsed(ctx, otp.ID); err != nil {
		s.log.Warn("Failed to mark OTP as used", zap.Error(err), zap.String("otp_id", otp.ID.String()))
	}
	if err := s.repo.Session.RevokeAllUserSessions(ctx, user.ID); err != nil {
		s.log.Warn("Failed to revoke sessions", zap.Error(err), zap.String("user_id", user.ID.String()))
	}

	resp, err := issueToken(ctx, s.repo, s.config, user)
	if err != nil {
		return nil, err
	}

	s.log.Info("Password reset", zap.String("user_id", user.ID.String()))
	return resp, nil
}

// ==================== HELPER METHODS ====================

// issueToken opens a session for user and signs an access token bound to it.
func issueToken(ctx context.Context, repo *repository.Repository, config *utils.Config, user *entity.User) (*response.AuthResponse, error) {
	now := time.Now()
	expiresAt := now.Add(time.Duration(config.JWT.ExpiryHours) * time.Hour)

	session := &entity.Session{
		BaseSimple: entity.BaseSimple{
			ID:        uuid.New(),
			CreatedAt: now,
		},
		UserID:    user.ID,
		Token:     uuid.New(),
		ExpiresAt: expiresAt,
	}

	if err := repo.Session.Create(ctx, session); err != nil {
		return nil, apperror.Internal("failed to create session", err)
	}

	token, err := utils.GenerateToken(config.JWT.Secret, user.ID, string(user.Role), session.Token, expiresAt)
	if err != nil {
		return nil, apperror.Internal("failed to sign token", err)
	}

	resp := response.AuthToResponse(user, token, expiresAt)
	return &resp, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
