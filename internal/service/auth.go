package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/venue-reservation/internal/apperr"
	"github.com/iliyamo/venue-reservation/internal/model"
	"github.com/iliyamo/venue-reservation/internal/repository"
	"github.com/iliyamo/venue-reservation/internal/utils"
)

// LoginInput is the body of POST /auth/login.
type LoginInput struct {
	Login    string `json:"nombre_usuario" validate:"required"`
	Password string `json:"contrasenia" validate:"required"`
}

// Session is returned after a successful login or registration.
type Session struct {
	AccessToken string      `json:"accessToken"`
	ExpiresAt   time.Time   `json:"expiresAt"`
	User        *model.User `json:"usuario"`
}

// AuthService issues access tokens.
type AuthService struct {
	users     UserStore
	accounts  *UserService
	jwtSecret string
	ttlMin    int
	log       *zap.Logger
}

func NewAuthService(users UserStore, accounts *UserService, jwtSecret string, ttlMin int, log *zap.Logger) *AuthService {
	return &AuthService{users: users, accounts: accounts, jwtSecret: jwtSecret, ttlMin: ttlMin, log: log}
}

const msgBadCredentials = "Credenciales inválidas"

// Register creates a customer account and logs it in.  The requested role
// is ignored.
func (s *AuthService) Register(ctx context.Context, in CreateUserInput) (*Session, error) {
	in.Role = int(model.RoleCustomer)
	u, err := s.accounts.Create(ctx, in)
	if err != nil {
		return nil, err
	}
	return s.issue(ctx, u)
}

// Login checks the password of an active account.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*Session, error) {
	in.Login = strings.TrimSpace(in.Login)
	if err := validateInput(in); err != nil {
		return nil, err
	}
	u, err := s.users.GetByLogin(ctx, in.Login)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.Unauthenticated(msgBadCredentials)
		}
		return nil, internal(logFor(ctx, s.log), "auth.login", err)
	}
	if !utils.VerifyPassword(u.PasswordHash, in.Password) {
		return nil, apperr.Unauthenticated(msgBadCredentials)
	}
	if !u.Active {
		return nil, apperr.Forbidden("La cuenta está desactivada")
	}
	return s.issue(ctx, u)
}

// Me returns the caller's current profile.
func (s *AuthService) Me(ctx context.Context, actor Actor) (*model.User, error) {
	u, err := s.users.GetByID(ctx, actor.UserID)
	if err != nil {
		return nil, notFoundOr(logFor(ctx, s.log), "auth.me", err, msgUserNotFound)
	}
	if !u.Active {
		return nil, apperr.Unauthenticated("La cuenta está desactivada")
	}
	return u, nil
}

func (s *AuthService) issue(ctx context.Context, u *model.User) (*Session, error) {
	at, err := utils.NewAccessToken(s.jwtSecret, u, s.ttlMin)
	if err != nil {
		return nil, internal(logFor(ctx, s.log), "auth.token", err)
	}
	return &Session{AccessToken: at.Token, ExpiresAt: at.Exp, User: u}, nil
}
