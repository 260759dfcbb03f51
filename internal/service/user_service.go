package service

import (
	"context"
	"fmt"

	"agricare-server/config"
	"agricare-server/internal/model"
	"agricare-server/internal/ports"
	"agricare-server/internal/security"
)

type UserService struct {
	userRepository        ports.UserRepository
	authenticationService ports.AuthenticationService
}

func NewUserService(
	userRepository ports.UserRepository,
	authenticationService ports.AuthenticationService,
) *UserService {
	return &UserService{
		userRepository:        userRepository,
		authenticationService: authenticationService,
	}
}

// Register создаёт пользователя и сразу выдаёт ему пару токенов.
// Уникальность email проверяется на создании
func (s *UserService) Register(ctx context.Context, email string, password string) (*model.TokensPair, error) {
	if len(password) < 8 {
		return nil, ErrPasswordTooShort
	}

	db, err := config.DBFromContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("[UserService] %w", err)
	}

	exists, err := s.userRepository.ExistsByEmail(ctx, db, email)
	if err != nil {
		return nil, fmt.Errorf("[UserService] ошибка проверки email: %w", err)
	}
	if exists {
		return nil, ErrDuplicateIdentity
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("[UserService] не удалось создать хэш пароля: %w", err)
	}

	user := &model.User{
		Email:        email,
		PasswordHash: hash,
	}

	created, err := s.userRepository.CreateUser(ctx, db, user)
	if err != nil {
		return nil, fmt.Errorf("[UserService] ошибка создания пользователя: %w", err)
	}

	return s.authenticationService.IssueTokens(ctx, created)
}
