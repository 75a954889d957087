package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"meetcrm/config"
	"meetcrm/internal/model"
	"meetcrm/internal/repository"
	"meetcrm/internal/util"
)

var ErrInvalidCredentials = errors.New("invalid login or password")

// TokenPair is what a successful login or refresh returns.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

type AuthService struct {
	users     *repository.UserRepository
	tokens    *repository.RefreshTokenRepository
	jwtSecret string
	logger    *zap.Logger
}

func NewAuthService(
	users *repository.UserRepository,
	tokens *repository.RefreshTokenRepository,
	jwtSecret string,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		jwtSecret: jwtSecret,
		logger:    logger,
	}
}

// Login checks credentials and issues an access/refresh token pair.
// The refresh token is persisted so it can be revoked.
func (s *AuthService) Login(ctx context.Context, login, password string) (*model.User, TokenPair, error) {
	u, err := s.users.GetByLogin(ctx, login)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, TokenPair{}, ErrInvalidCredentials
	}
	if err != nil {
		return nil, TokenPair{}, err
	}

	if !util.CheckPassword(password, u.PasswordHash) {
		return nil, TokenPair{}, ErrInvalidCredentials
	}

	pair, err := s.issueTokens(ctx, u)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return u, pair, nil
}

// Refresh exchanges a valid stored refresh token for a fresh pair.
// The old token is revoked (rotation).
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*model.User, TokenPair, error) {
	stored, err := s.tokens.GetByToken(ctx, refreshToken)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, TokenPair{}, ErrInvalidCredentials
	}
	if err != nil {
		return nil, TokenPair{}, err
	}

	if time.Now().After(stored.ExpiresAt) {
		_ = s.tokens.DeleteByToken(ctx, refreshToken)
		return nil, TokenPair{}, ErrInvalidCredentials
	}

	if _, err := util.ParseToken(refreshToken, s.jwtSecret); err != nil {
		return nil, TokenPair{}, ErrInvalidCredentials
	}

	u, err := s.users.GetByID(ctx, stored.UserID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, TokenPair{}, ErrInvalidCredentials
	}
	if err != nil {
		return nil, TokenPair{}, err
	}

	if err := s.tokens.DeleteByToken(ctx, refreshToken); err != nil {
		return nil, TokenPair{}, err
	}

	pair, err := s.issueTokens(ctx, u)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return u, pair, nil
}

// Logout revokes a refresh token. Unknown tokens are a no-op.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	return s.tokens.DeleteByToken(ctx, refreshToken)
}

// BootstrapAdmin creates the configured admin user at startup when no
// user with that login exists yet.
func (s *AuthService) BootstrapAdmin(ctx context.Context, cfg config.AdminConfig) error {
	if cfg.Login == "" || cfg.Password == "" || cfg.Email == "" {
		return nil
	}

	_, err := s.users.GetByLogin(ctx, cfg.Login)
	if err == nil {
		return nil // already exists
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	hash, err := util.HashPassword(cfg.Password)
	if err != nil {
		return err
	}

	name := cfg.Name
	u := &model.User{
		Login:        cfg.Login,
		Name:         &name,
		Email:        cfg.Email,
		PasswordHash: hash,
		Role:         model.RoleAdmin,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return err
	}

	s.logger.Info("Bootstrapped admin user", zap.String("login", cfg.Login))
	return nil
}

func (s *AuthService) issueTokens(ctx context.Context, u *model.User) (TokenPair, error) {
	claims := util.Claims{UserID: u.ID, Login: u.Login, Role: string(u.Role)}

	access, err := util.GenerateToken(claims, s.jwtSecret, util.AccessTokenTTL)
	if err != nil {
		return TokenPair{}, err
	}

	refresh, err := util.GenerateToken(claims, s.jwtSecret, util.RefreshTokenTTL)
	if err != nil {
		return TokenPair{}, err
	}

	err = s.tokens.Insert(ctx, &model.RefreshToken{
		UserID:    u.ID,
		Token:     refresh,
		ExpiresAt: time.Now().Add(util.RefreshTokenTTL),
	})
	if err != nil {
		return TokenPair{}, err
	}

	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
