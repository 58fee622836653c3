package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"gin-gorm-users/internal/domain"
)

// UserChanges carries the fields present in an update payload; nil means absent.
type UserChanges struct {
	Email     *string `json:"email"`
	Password  *string `json:"password"`
	Firstname *string `json:"firstname"`
	Lastname  *string `json:"lastname"`
}

type UserService struct {
	repo   domain.UserRepository
	hasher PasswordHasher
	log    *zap.Logger
}

func NewUserService(repo domain.UserRepository, hasher PasswordHasher, l *zap.Logger) *UserService {
	if l == nil {
		l = zap.NewNop()
	}
	return &UserService{repo: repo, hasher: hasher, log: l}
}

func (s *UserService) CreateUser(ctx context.Context, email, password, firstname, lastname string) (*domain.User, error) {
	u := domain.NewUser(email, firstname, lastname)

	hashed, err := s.hasher.Hash(u, password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u.Password = hashed

	if err := domain.Validate(u); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, u); err != nil {
		s.log.Error("create user failed", zap.String("email", email), zap.Error(err))
		return nil, fmt.Errorf("create user: %w", err)
	}
	s.log.Info("user created", zap.Uint("id", u.ID), zap.String("uuid", u.UUID.String()))
	return u, nil
}

// UpdateUser overwrites only the fields set in ch. A new password is hashed
// before it is stored.
func (s *UserService) UpdateUser(ctx context.Context, u *domain.User, ch UserChanges) (*domain.User, error) {
	next := *u
	if ch.Email != nil {
		next.Email = *ch.Email
	}
	if ch.Password != nil {
		hashed, err := s.hasher.Hash(&next, *ch.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		next.Password = hashed
	}
	if ch.Firstname != nil {
		next.Firstname = *ch.Firstname
	}
	if ch.Lastname != nil {
		next.Lastname = *ch.Lastname
	}

	if err := domain.Validate(&next); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, &next); err != nil {
		s.log.Error("update user failed", zap.Uint("id", u.ID), zap.Error(err))
		return nil, fmt.Errorf("update user %d: %w", u.ID, err)
	}
	*u = next
	s.log.Info("user updated", zap.Uint("id", u.ID))
	return u, nil
}

func (s *UserService) DeleteUser(ctx context.Context, u *domain.User) error {
	if err := s.repo.Delete(ctx, u); err != nil {
		s.log.Error("delete user failed", zap.Uint("id", u.ID), zap.Error(err))
		return fmt.Errorf("delete user %d: %w", u.ID, err)
	}
	s.log.Info("user deleted", zap.Uint("id", u.ID))
	return nil
}

func (s *UserService) FindUserByID(ctx context.Context, id uint) (*domain.User, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *UserService) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.repo.FindByEmail(ctx, email)
}

func (s *UserService) FindAllUsers(ctx context.Context) ([]domain.User, error) {
	return s.repo.FindAll(ctx)
}
