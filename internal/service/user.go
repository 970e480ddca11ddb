package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/iliyamo/venue-reservation/internal/apperr"
	"github.com/iliyamo/venue-reservation/internal/model"
	"github.com/iliyamo/venue-reservation/internal/repository"
	"github.com/iliyamo/venue-reservation/internal/utils"
)

// UserStore is the persistence used by UserService and AuthService.
type UserStore interface {
	List(ctx context.Context, includeInactive bool) ([]model.User, error)
	GetByID(ctx context.Context, id uint64) (*model.User, error)
	GetByLogin(ctx context.Context, login string) (*model.User, error)
	Create(ctx context.Context, u *model.User) error
	Update(ctx context.Context, u *model.User) error
	SoftDelete(ctx context.Context, id uint64) error
}

// CreateUserInput is accepted when registering or creating an account.
type CreateUserInput struct {
	FirstName string  `json:"nombre" validate:"required,max=100"`
	LastName  string  `json:"apellido" validate:"required,max=100"`
	Login     string  `json:"nombre_usuario" validate:"required,email,max=255"`
	Password  string  `json:"contrasenia" validate:"required,min=6,max=72"`
	Role      int     `json:"tipo_usuario" validate:"omitempty,oneof=1 2 3"`
	Phone     *string `json:"celular" validate:"omitempty,max=50"`
	Photo     *string `json:"foto" validate:"omitempty,max=255"`
}

// UpdateUserInput is a partial update; nil fields are left unchanged.
type UpdateUserInput struct {
	FirstName *string `json:"nombre" validate:"omitempty,min=1,max=100"`
	LastName  *string `json:"apellido" validate:"omitempty,min=1,max=100"`
	Login     *string `json:"nombre_usuario" validate:"omitempty,email,max=255"`
	Password  *string `json:"contrasenia" validate:"omitempty,min=6,max=72"`
	Role      *int    `json:"tipo_usuario" validate:"omitempty,oneof=1 2 3"`
	Phone     *string `json:"celular" validate:"omitempty,max=50"`
	Photo     *string `json:"foto" validate:"omitempty,max=255"`
	Active    *bool   `json:"activo"`
}

// UserService manages accounts.  Administrators manage everyone; other
// callers may only read and edit their own profile.
type UserService struct {
	users      UserStore
	bcryptCost int
	log        *zap.Logger
}

func NewUserService(users UserStore, bcryptCost int, log *zap.Logger) *UserService {
	return &UserService{users: users, bcryptCost: bcryptCost, log: log}
}

const (
	msgUserNotFound   = "Usuario no encontrado"
	msgLoginTaken     = "El nombre de usuario ya existe"
	msgSelfDeactivate = "No puede desactivar su propia cuenta"
	msgOtherUser      = "No tiene permisos sobre otros usuarios"
	msgOwnRoleChange  = "No puede cambiar su propio tipo de usuario"
)

func (s *UserService) List(ctx context.Context, includeInactive bool) ([]model.User, error) {
	us, err := s.users.List(ctx, includeInactive)
	if err != nil {
		return nil, internal(logFor(ctx, s.log), "user.list", err)
	}
	return us, nil
}

// Get returns an active user.  Non-admin actors may only read themselves.
func (s *UserService) Get(ctx context.Context, actor Actor, id uint64) (*model.User, error) {
	if !actor.IsAdmin() && actor.UserID != id {
		return nil, apperr.Forbidden(msgOtherUser)
	}
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(logFor(ctx, s.log), "user.get", err, msgUserNotFound)
	}
	if !u.Active && !actor.IsAdmin() {
		return nil, apperr.NotFound(msgUserNotFound)
	}
	return u, nil
}

// Create stores a new account.  A zero role defaults to customer.
func (s *UserService) Create(ctx context.Context, in CreateUserInput) (*model.User, error) {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Login = strings.TrimSpace(in.Login)
	if err := validateInput(in); err != nil {
		return nil, err
	}
	role := model.RoleCustomer
	if in.Role != 0 {
		role, _ = model.ParseRole(in.Role)
	}
	hash, err := utils.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, internal(logFor(ctx, s.log), "user.create.hash", err)
	}
	u := &model.User{
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Login:        in.Login,
		PasswordHash: hash,
		Role:         role,
		Phone:        trimmed(in.Phone),
		Photo:        trimmed(in.Photo),
		Active:       true,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperr.Conflict(msgLoginTaken)
		}
		return nil, internal(logFor(ctx, s.log), "user.create", err)
	}
	return u, nil
}

// Update applies a partial update.  Nobody can deactivate themselves and
// non-admins cannot change their own role.
func (s *UserService) Update(ctx context.Context, actor Actor, id uint64, in UpdateUserInput) (*model.User, error) {
	self := actor.UserID == id
	if !actor.IsAdmin() && !self {
		return nil, apperr.Forbidden(msgOtherUser)
	}
	if self && in.Active != nil && !*in.Active {
		return nil, apperr.Forbidden(msgSelfDeactivate)
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}

	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(logFor(ctx, s.log), "user.update", err, msgUserNotFound)
	}
	if !u.Active && in.Active == nil {
		return nil, apperr.NotFound(msgUserNotFound)
	}

	if in.Role != nil {
		role, _ := model.ParseRole(*in.Role)
		if role != u.Role && !actor.IsAdmin() {
			return nil, apperr.Forbidden(msgOwnRoleChange)
		}
		u.Role = role
	}
	if in.FirstName != nil {
		u.FirstName = strings.TrimSpace(*in.FirstName)
	}
	if in.LastName != nil {
		u.LastName = strings.TrimSpace(*in.LastName)
	}
	if in.Login != nil {
		u.Login = strings.TrimSpace(*in.Login)
	}
	if in.Phone != nil {
		u.Phone = trimmed(in.Phone)
	}
	if in.Photo != nil {
		u.Photo = trimmed(in.Photo)
	}
	if in.Active != nil {
		if !actor.IsAdmin() && *in.Active != u.Active {
			return nil, apperr.Forbidden(msgOtherUser)
		}
		u.Active = *in.Active
	}
	if in.Password != nil {
		hash, err := utils.HashPassword(*in.Password, s.bcryptCost)
		if err != nil {
			return nil, internal(logFor(ctx, s.log), "user.update.hash", err)
		}
		u.PasswordHash = hash
	}

	if err := s.users.Update(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperr.Conflict(msgLoginTaken)
		}
		return nil, internal(logFor(ctx, s.log), "user.update", err)
	}
	out, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, internal(logFor(ctx, s.log), "user.update.reload", err)
	}
	return out, nil
}

// Delete soft-deletes an account other than the actor's own.
func (s *UserService) Delete(ctx context.Context, actor Actor, id uint64) error {
	if actor.UserID == id {
		return apperr.Forbidden(msgSelfDeactivate)
	}
	if err := s.users.SoftDelete(ctx, id); err != nil {
		return notFoundOr(logFor(ctx, s.log), "user.delete", err, msgUserNotFound)
	}
	return nil
}
