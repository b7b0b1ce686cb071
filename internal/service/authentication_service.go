package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"visa-advisory-portal/config"
	"visa-advisory-portal/internal/apperror"
	"visa-advisory-portal/internal/model"
	"visa-advisory-portal/internal/model/requestresponse"
	"visa-advisory-portal/internal/ports"
	"visa-advisory-portal/internal/security"
	"visa-advisory-portal/internal/util"
)

type AuthenticationService struct {
	jwtRepoInterface    ports.JWTRepositoryInterface
	jwtServiceInterface ports.JWTServiceInterface
	userRepository      ports.UserRepository
	clientRepository    ports.ClientRepository
	activities          ports.ActivityLogger
	now                 func() time.Time
}

func NewAuthenticationService(
	repo ports.JWTRepositoryInterface,
	service ports.JWTServiceInterface,
	userRepository ports.UserRepository,
	clientRepository ports.ClientRepository,
	activities ports.ActivityLogger,
) *AuthenticationService {
	return &AuthenticationService{
		jwtRepoInterface:    repo,
		jwtServiceInterface: service,
		userRepository:      userRepository,
		clientRepository:    clientRepository,
		activities:          activities,
		now:                 time.Now,
	}
}

// Register : self-service sign up, always as a customer with an empty client record
func (s *AuthenticationService) Register(ctx context.Context, request requestresponse.RegisterRequest, userAgent, ipAddress string) (*model.TokensPair, error) {
	db, ok := config.DBFromContext(ctx)
	if !ok {
		return nil, errNoDatabase("AuthenticationService")
	}

	email := normalizeEmail(request.Email)
	exists, err := s.userRepository.ExistsByEmail(ctx, db, email)
	if err != nil {
		return nil, util.LogError("[AuthenticationService] check email", err)
	}
	if exists {
		return nil, apperror.WithMessage(apperror.ErrConflict, "email already registered")
	}

	passwordHash, err := security.HashPassword(request.Password)
	if err != nil {
		return nil, err
	}

	exec, rollback, commit, err := s.userRepository.BeginTX(ctx)
	if err != nil {
		return nil, util.LogError("[AuthenticationService] begin transaction", err)
	}
	defer rollback()

	user, err := s.userRepository.CreateUser(ctx, exec, &model.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: passwordHash,
		Role:         model.RoleCustomer,
		IsActive:     true,
	})
	if err != nil {
		return nil, err
	}

	client := &model.Client{
		ID:              uuid.New().String(),
		UserID:          user.ID,
		FirstName:       strings.TrimSpace(request.FirstName),
		LastName:        strings.TrimSpace(request.LastName),
		Phone:           strings.TrimSpace(request.Phone),
		ApplicationType: model.ApplicationIndividual,
		Status:          model.ClientPending,
	}
	if err := s.clientRepository.Create(ctx, exec, client); err != nil {
		return nil, err
	}

	if err := commit(); err != nil {
		return nil, util.LogError("[AuthenticationService] commit transaction", err)
	}

	s.activities.Log(ctx, newActivity(model.ActivityUserRegistered, "New client registered", user.Email, user.ID, nil, nil))

	return s.issueTokens(ctx, user, userAgent, ipAddress)
}

func (s *AuthenticationService) Login(ctx context.Context, email, password, userAgent, ipAddress string) (*model.TokensPair, error) {
	db, ok := config.DBFromContext(ctx)
	if !ok {
		return nil, errNoDatabase("AuthenticationService")
	}

	user, err := s.userRepository.FindByEmail(ctx, db, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.IsActive || !security.CheckPassword(password, user.PasswordHash) {
		return nil, apperror.ErrInvalidCredentials
	}

	return s.issueTokens(ctx, user, userAgent, ipAddress)
}

// RefreshToken : rotates a token pair
//  1. The refresh token must belong to the pair the access token was issued with.
//  2. A different User-Agent revokes the refresh token and fails.
//  3. A different IP only produces a warning.
func (s *AuthenticationService) RefreshToken(ctx context.Context, userAgent, ipAddress, accessToken, refreshToken string) (*model.TokensPair, error) {
	db, ok := config.DBFromContext(ctx)
	if !ok {
		return nil, errNoDatabase("AuthenticationService")
	}

	claims, err := s.jwtServiceInterface.ParseAccessToken(accessToken)
	if err != nil {
		return nil, apperror.Wrap(apperror.ErrUnauthorized, err, "invalid access token")
	}

	refreshTokenUUID := claims.RefreshTokenUUID
	storedRefreshToken, err := s.jwtRepoInterface.FindByUUID(ctx, refreshTokenUUID)
	if err != nil {
		return nil, apperror.Wrap(apperror.ErrUnauthorized, err, "invalid refresh token")
	}
	if storedRefreshToken.Used {
		zap.L().Warn("[AuthenticationService] refresh token already used", zap.String("refresh_token_uuid", refreshTokenUUID))
		return nil, apperror.WithMessage(apperror.ErrUnauthorized, "invalid refresh token")
	}
	if s.now().After(storedRefreshToken.ExpireAt) {
		zap.L().Info("[AuthenticationService] refresh token expired", zap.String("refresh_token_uuid", refreshTokenUUID))
		return nil, apperror.WithMessage(apperror.ErrUnauthorized, "invalid refresh token")
	}

	if storedRefreshToken.UserAgent != userAgent {
		if err := s.jwtRepoInterface.MarkRefreshTokenUsedByUUID(ctx, refreshTokenUUID); err != nil {
			zap.L().Warn("[AuthenticationService] revoke refresh token", zap.Error(err))
		}
		zap.L().Warn("[AuthenticationService] refresh attempted from another user agent", zap.String("refresh_token_uuid", refreshTokenUUID))
		return nil, apperror.WithMessage(apperror.ErrUnauthorized, "invalid refresh token")
	}

	if storedRefreshToken.IpAddress != ipAddress {
		zap.L().Warn("[AuthenticationService] refresh from a new ip address",
			zap.String("user_uuid", claims.UserUUID),
			zap.String("previous_ip", storedRefreshToken.IpAddress),
			zap.String("ip", ipAddress),
		)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(storedRefreshToken.TokenHash), []byte(refreshToken)); err != nil {
		return nil, apperror.Wrap(apperror.ErrUnauthorized, err, "invalid refresh token")
	}

	if err := s.jwtRepoInterface.MarkRefreshTokenUsedByUUID(ctx, refreshTokenUUID); err != nil {
		return nil, util.LogError("[AuthenticationService] mark refresh token used", err)
	}

	user, err := s.userRepository.FindByID(ctx, db, claims.UserUUID)
	if err != nil {
		return nil, apperror.Wrap(apperror.ErrUnauthorized, err, "user not found")
	}

	return s.issueTokens(ctx, user, userAgent, ipAddress)
}

// Logout : marks the session refresh token as used
func (s *AuthenticationService) Logout(ctx context.Context, refreshTokenUUID string) error {
	if err := s.jwtRepoInterface.MarkRefreshTokenUsedByUUID(ctx, refreshTokenUUID); err != nil {
		return util.LogError("[AuthenticationService] mark refresh token used", err)
	}
	return nil
}

func (s *AuthenticationService) CurrentUser(ctx context.Context, userID string) (*model.User, error) {
	db, ok := config.DBFromContext(ctx)
	if !ok {
		return nil, errNoDatabase("AuthenticationService")
	}
	return s.userRepository.FindByID(ctx, db, userID)
}

// EnsureAdmin : creates the configured admin account when it does not exist yet
func (s *AuthenticationService) EnsureAdmin(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return nil
	}
	db, ok := config.DBFromContext(ctx)
	if !ok {
		return errNoDatabase("AuthenticationService")
	}

	email = normalizeEmail(email)
	exists, err := s.userRepository.ExistsByEmail(ctx, db, email)
	if err != nil {
		return util.LogError("[AuthenticationService] check admin", err)
	}
	if exists {
		return nil
	}

	passwordHash, err := security.HashPassword(password)
	if err != nil {
		return err
	}

	if _, err := s.userRepository.CreateUser(ctx, db, &model.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: passwordHash,
		Role:         model.RoleAdmin,
		IsActive:     true,
	}); err != nil {
		return err
	}

	zap.L().Info("[AuthenticationService] admin account created", zap.String("email", email))
	return nil
}

func (s *AuthenticationService) issueTokens(ctx context.Context, user *model.User, userAgent, ipAddress string) (*model.TokensPair, error) {
	tokens, refreshToken, err := s.jwtServiceInterface.GenerateAccessRefreshTokens(user)
	if err != nil {
		return nil, util.LogError("[AuthenticationService] generate tokens", err)
	}

	refreshToken.UserAgent = userAgent
	refreshToken.IpAddress = ipAddress
	if err := s.jwtRepoInterface.SaveRefreshToken(ctx, refreshToken); err != nil {
		return nil, util.LogError("[AuthenticationService] save refresh token", err)
	}

	return tokens, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
