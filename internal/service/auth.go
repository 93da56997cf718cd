package service

import (
	"context"
	"errors"
	"time"

	"github.com/iliyamo/library-seat-booking/internal/model"
	"github.com/iliyamo/library-seat-booking/internal/repository"
	"github.com/iliyamo/library-seat-booking/internal/utils"
)

// AuthConfig carries token and hashing parameters.
type AuthConfig struct {
	Secret     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	BcryptCost int
}

// AuthService registers users and issues token pairs.
type AuthService struct {
	d   Deps
	cfg AuthConfig
}

func NewAuthService(d Deps, cfg AuthConfig) *AuthService {
	return &AuthService{d: d.withDefaults(), cfg: cfg}
}

// TokenPair is returned by login and refresh.
type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	AccessExp    time.Time `json:"access_expires_at"`
	RefreshToken string    `json:"refresh_token"`
	RefreshExp   time.Time `json:"refresh_expires_at"`
}

type RegisterInput struct {
	Email        string
	Password     string
	FullName     string
	MobileNumber string
}

// Register creates a pending student account.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (model.User, error) {
	hash, err := utils.HashPassword(in.Password, s.cfg.BcryptCost)
	if err != nil {
		return model.User{}, err
	}
	u, err := s.d.Users.Create(ctx, model.User{
		Email:          in.Email,
		PasswordHash:   hash,
		FullName:       in.FullName,
		MobileNumber:   in.MobileNumber,
		Role:           model.RoleStudent,
		ApprovalStatus: model.ApprovalPending,
	})
	if err != nil {
		return model.User{}, err
	}
	s.d.Log.Info("student registered", "user_id", u.ID)
	return u, nil
}

// Login checks the password and issues a token pair.
func (s *AuthService) Login(ctx context.Context, email, password string) (TokenPair, model.User, error) {
	u, err := s.d.Users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return TokenPair{}, model.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return TokenPair{}, model.User{}, err
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return TokenPair{}, model.User{}, ErrInvalidCredentials
	}
	pair, err := s.issue(ctx, u)
	return pair, u, err
}

// Refresh rotates a refresh token: the presented one is revoked and a new
// pair issued.
func (s *AuthService) Refresh(ctx context.Context, raw string) (TokenPair, error) {
	hash := utils.HashRefreshRaw(raw)
	userID, err := s.d.Tokens.ValidateRefresh(ctx, hash, s.d.Clock.Now())
	if errors.Is(err, repository.ErrNotFound) {
		return TokenPair{}, ErrInvalidCredentials
	}
	if err != nil {
		return TokenPair{}, err
	}
	u, err := s.d.Users.GetByID(ctx, userID)
	if err != nil {
		return TokenPair{}, err
	}
	if err := s.d.Tokens.RevokeByHash(ctx, hash); err != nil {
		return TokenPair{}, err
	}
	return s.issue(ctx, u)
}

// Logout revokes the presented refresh token.
func (s *AuthService) Logout(ctx context.Context, raw string) error {
	return s.d.Tokens.RevokeByHash(ctx, utils.HashRefreshRaw(raw))
}

// LogoutAll revokes every refresh token of userID.
func (s *AuthService) LogoutAll(ctx context.Context, userID string) error {
	return s.d.Tokens.RevokeAllForUser(ctx, userID)
}

func (s *AuthService) Me(ctx context.Context, userID string) (model.User, error) {
	return s.d.Users.GetByID(ctx, userID)
}

func (s *AuthService) issue(ctx context.Context, u model.User) (TokenPair, error) {
	now := s.d.Clock.Now()
	at, err := utils.NewAccessToken(s.cfg.Secret, u.ID, u.Role, s.cfg.AccessTTL, now)
	if err != nil {
		return TokenPair{}, err
	}
	rt, err := utils.NewRefreshToken(s.cfg.RefreshTTL, now)
	if err != nil {
		return TokenPair{}, err
	}
	if err := s.d.Tokens.StoreRefresh(ctx, u.ID, utils.HashRefreshRaw(rt.Raw), rt.Exp); err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: at.Token, AccessExp: at.Exp, RefreshToken: rt.Raw, RefreshExp: rt.Exp}, nil
}
