package service

import (
	"context"
	"fmt"
	"time"

	"agricare-server/config"
	"agricare-server/internal/model"
	"agricare-server/internal/ports"
	"agricare-server/internal/security"
	"agricare-server/internal/util"

	"github.com/jmoiron/sqlx"
)

type AuthenticationService struct {
	tokenRepository ports.TokenRepository
	userRepository  ports.UserRepository
	jwtService      ports.JWTServiceInterface
	maxTokens       int
}

func NewAuthenticationService(
	tokenRepository ports.TokenRepository,
	userRepository ports.UserRepository,
	jwtService ports.JWTServiceInterface,
	cfg *config.JWTConfig,
) *AuthenticationService {
	return &AuthenticationService{
		tokenRepository: tokenRepository,
		userRepository:  userRepository,
		jwtService:      jwtService,
		maxTokens:       cfg.MaxRefreshTokensPerUser,
	}
}

// Login проверяет пароль и выдаёт пару токенов.
// Неизвестный email и неверный пароль неразличимы для клиента
func (s *AuthenticationService) Login(ctx context.Context, email, password string) (*model.TokensPair, error) {
	db, err := config.DBFromContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("[AuthService] %w", err)
	}

	user, err := s.userRepository.FindByEmail(ctx, db, email)
	if err != nil {
		return nil, fmt.Errorf("[AuthService] ошибка поиска пользователя: %w", err)
	}
	if user == nil || !security.CheckPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, security.ErrUserInactive
	}

	return s.IssueTokens(ctx, user)
}

// IssueTokens выдаёт access-токен и новый refresh-токен.
// Очистка просроченных записей и вытеснение по лимиту выполняются в той же
// транзакции, что и вставка: упавшая вставка откатывает и усечение
func (s *AuthenticationService) IssueTokens(ctx context.Context, user *model.User) (*model.TokensPair, error) {
	accessToken, err := s.jwtService.GenerateAccessToken(user.Email)
	if err != nil {
		return nil, util.LogError("[AuthService] ошибка генерации access токена", err)
	}

	exec, rollback, commit, err := s.tokenRepository.BeginTX(ctx)
	if err != nil {
		return nil, util.LogError("[AuthService] не удалось начать транзакцию", err)
	}
	defer rollback()

	refreshToken, err := s.issueRefreshToken(ctx, exec, user.ID, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	if err := commit(); err != nil {
		return nil, util.LogError("[AuthService] не удалось закоммитить транзакцию", err)
	}

	return &model.TokensPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.jwtService.AccessTTL().Seconds()),
	}, nil
}

// issueRefreshToken создаёт запись refresh-токена, предварительно применив
// политику хранения к токенам пользователя
func (s *AuthenticationService) issueRefreshToken(ctx context.Context, exec sqlx.ExtContext, userID int64, now time.Time) (string, error) {
	if err := s.enforceRetention(ctx, exec, userID, now); err != nil {
		return "", err
	}

	token, err := security.NewRefreshToken()
	if err != nil {
		return "", util.LogError("[AuthService] ошибка генерации refresh токена", err)
	}

	refreshToken := &model.RefreshToken{
		Token:     token,
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.jwtService.RefreshTTL()),
		Revoked:   false,
	}

	if err := s.tokenRepository.SaveRefreshToken(ctx, exec, refreshToken); err != nil {
		return "", fmt.Errorf("[AuthService] не удалось сохранить refresh токен: %w", err)
	}

	return token, nil
}

// enforceRetention ограничивает число живых refresh-токенов пользователя:
//  1. удаляет просроченные записи;
//  2. загружает живые, новые первыми;
//  3. если их не меньше лимита — удаляет самые старые так, чтобы после
//     вставки нового токена их осталось не больше лимита.
//
// Под конкурентной выдачей ограничение действует как best-effort: две
// одновременные выдачи могут на один токен превысить лимит, следующая
// выдача это исправит
func (s *AuthenticationService) enforceRetention(ctx context.Context, exec sqlx.ExtContext, userID int64, now time.Time) error {
	if err := s.tokenRepository.DeleteExpiredByUser(ctx, exec, userID, now); err != nil {
		return fmt.Errorf("[AuthService] не удалось удалить просроченные токены: %w", err)
	}

	active, err := s.tokenRepository.ListActiveByUser(ctx, exec, userID, now)
	if err != nil {
		return fmt.Errorf("[AuthService] не удалось получить живые токены: %w", err)
	}

	if len(active) < s.maxTokens {
		return nil
	}

	evicted := make([]string, 0, len(active)-s.maxTokens+1)
	for _, t := range active[s.maxTokens-1:] {
		evicted = append(evicted, t.Token)
	}

	if err := s.tokenRepository.DeleteTokens(ctx, exec, evicted); err != nil {
		return fmt.Errorf("[AuthService] не удалось вытеснить старые токены: %w", err)
	}

	return nil
}

// Refresh выполняет ротацию: отзыв предъявленного токена и выдача новой пары
// одним атомарным блоком. Из двух конкурентных ротаций одним токеном ровно
// одна завершается успешно, вторая получает ErrInvalidOrExpiredToken
func (s *AuthenticationService) Refresh(ctx context.Context, refreshToken string) (*model.TokensPair, error) {
	exec, rollback, commit, err := s.tokenRepository.BeginTX(ctx)
	if err != nil {
		return nil, util.LogError("[AuthService] не удалось начать транзакцию", err)
	}
	defer rollback()

	now := time.Now().UTC()

	stored, err := s.tokenRepository.FindActive(ctx, exec, refreshToken, now)
	if err != nil {
		return nil, fmt.Errorf("[AuthService] ошибка поиска refresh токена: %w", err)
	}
	if stored == nil {
		return nil, ErrInvalidOrExpiredToken
	}

	// compare-and-swap на поле revoked: проигравшая гонку ротация
	// увидит 0 обновлённых строк
	revokedNow, err := s.tokenRepository.RevokeRefreshToken(ctx, exec, refreshToken)
	if err != nil {
		return nil, fmt.Errorf("[AuthService] не удалось отозвать refresh токен: %w", err)
	}
	if !revokedNow {
		return nil, ErrInvalidOrExpiredToken
	}

	user, err := s.userRepository.FindByID(ctx, exec, stored.UserID)
	if err != nil {
		return nil, fmt.Errorf("[AuthService] ошибка поиска пользователя: %w", err)
	}
	if user == nil {
		return nil, security.ErrUserNotFound
	}
	if !user.IsActive {
		return nil, security.ErrUserInactive
	}

	accessToken, err := s.jwtService.GenerateAccessToken(user.Email)
	if err != nil {
		return nil, util.LogError("[AuthService] ошибка генерации access токена", err)
	}

	newRefreshToken, err := s.issueRefreshToken(ctx, exec, user.ID, now)
	if err != nil {
		return nil, err
	}

	if err := commit(); err != nil {
		return nil, util.LogError("[AuthService] не удалось закоммитить транзакцию", err)
	}

	return &model.TokensPair{
		AccessToken:  accessToken,
		RefreshToken: newRefreshToken,
		ExpiresIn:    int64(s.jwtService.AccessTTL().Seconds()),
	}, nil
}

// Logout отзывает предъявленный refresh-токен.
// Идемпотентен: повторный logout и logout несуществующего токена — не ошибка
func (s *AuthenticationService) Logout(ctx context.Context, refreshToken string) error {
	db, err := config.DBFromContext(ctx)
	if err != nil {
		return fmt.Errorf("[AuthService] %w", err)
	}

	if _, err := s.tokenRepository.RevokeRefreshToken(ctx, db, refreshToken); err != nil {
		return fmt.Errorf("[AuthService] не удалось отозвать refresh токен: %w", err)
	}

	return nil
}

// LogoutAll отзывает все живые refresh-токены пользователя ("выйти везде")
func (s *AuthenticationService) LogoutAll(ctx context.Context, userID int64) error {
	db, err := config.DBFromContext(ctx)
	if err != nil {
		return fmt.Errorf("[AuthService] %w", err)
	}

	if err := s.tokenRepository.RevokeAllByUser(ctx, db, userID, time.Now().UTC()); err != nil {
		return fmt.Errorf("[AuthService] не удалось отозвать токены пользователя: %w", err)
	}

	return nil
}

// RevokeOwned отзывает конкретный токен текущего пользователя.
// Чужой или несуществующий токен — ErrTokenNotOwned
func (s *AuthenticationService) RevokeOwned(ctx context.Context, userID int64, refreshToken string) error {
	db, err := config.DBFromContext(ctx)
	if err != nil {
		return fmt.Errorf("[AuthService] %w", err)
	}

	stored, err := s.tokenRepository.FindByTokenAndUser(ctx, db, refreshToken, userID)
	if err != nil {
		return fmt.Errorf("[AuthService] ошибка поиска refresh токена: %w", err)
	}
	if stored == nil {
		return ErrTokenNotOwned
	}

	if _, err := s.tokenRepository.RevokeRefreshToken(ctx, db, refreshToken); err != nil {
		return fmt.Errorf("[AuthService] не удалось отозвать refresh токен: %w", err)
	}

	return nil
}
