package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"meetcrm/internal/model"
	"meetcrm/internal/repository"
	"meetcrm/internal/util"
)

var (
	ErrNotFound = errors.New("not found")
	ErrBadInput = errors.New("bad input")
)

type UserService struct {
	users *repository.UserRepository
}

func NewUserService(users *repository.UserRepository) *UserService {
	return &UserService{users: users}
}

// CreateUserInput is everything needed to create a user.
type CreateUserInput struct {
	Login    string
	Name     *string
	Email    string
	Password string
	Role     model.Role
}

// UpdateUserInput patches a user; nil means "keep".
type UpdateUserInput struct {
	Login    *string
	Name     *string
	Email    *string
	Password *string
	Role     *model.Role
}

func (s *UserService) Create(ctx context.Context, in CreateUserInput) (*model.User, error) {
	hash, err := util.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	u := &model.User{
		Login:        in.Login,
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         in.Role,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *UserService) List(ctx context.Context) ([]model.User, error) {
	return s.users.List(ctx)
}

func (s *UserService) Search(ctx context.Context, term string) ([]model.User, error) {
	return s.users.Search(ctx, term)
}

func (s *UserService) Update(ctx context.Context, id uuid.UUID, in UpdateUserInput) (*model.User, error) {
	var hash *string
	if in.Password != nil {
		h, err := util.HashPassword(*in.Password)
		if err != nil {
			return nil, err
		}
		hash = &h
	}

	u, err := s.users.Update(ctx, id, in.Login, in.Name, in.Email, hash, in.Role)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return u, err
}

func (s *UserService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.users.Delete(ctx, id)
}
