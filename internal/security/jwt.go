package security

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"agricare-server/config"
	"agricare-server/internal/model"
	"agricare-server/internal/repository"
	"agricare-server/internal/util"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const (
	UserContextKey contextKey = "user"

	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

var (
	ErrInvalidToken   = errors.New("невалидный токен")
	ErrWrongTokenType = errors.New("неверный тип токена")
	ErrTokenExpired   = errors.New("токен просрочен")
	ErrUserNotFound   = errors.New("пользователь не найден")
	ErrUserInactive   = errors.New("пользователь деактивирован")
)

// Claims : полезная нагрузка access-токена.
// Токен самодостаточен: подпись + exp + type полностью определяют валидность,
// обращений к БД для проверки не требуется.
type Claims struct {
	TokenType string `json:"type"`
	jwt.RegisteredClaims
}

type JWTService struct {
	*config.JWTConfig
	method     jwt.SigningMethod
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewJWTService(cfg *config.JWTConfig) (*JWTService, error) {
	method := jwt.GetSigningMethod(cfg.Algorithm)
	if method == nil {
		return nil, fmt.Errorf("неизвестный алгоритм подписи: %s", cfg.Algorithm)
	}

	accessTTL, err := time.ParseDuration(cfg.AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("ошибка парсинга access_token_ttl: %w", err)
	}
	refreshTTL, err := time.ParseDuration(cfg.RefreshTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("ошибка парсинга refresh_token_ttl: %w", err)
	}

	return &JWTService{
		JWTConfig:  cfg,
		method:     method,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}, nil
}

func (service *JWTService) AccessTTL() time.Duration  { return service.accessTTL }
func (service *JWTService) RefreshTTL() time.Duration { return service.refreshTTL }

// GenerateAccessToken выпускает подписанный access-токен для пользователя.
// Чистая функция от входа, текущего времени и ключа подписи: побочных эффектов нет
func (service *JWTService) GenerateAccessToken(email string) (string, error) {
	now := time.Now()
	claims := Claims{
		TokenType: TokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			ExpiresAt: jwt.NewNumericDate(now.Add(service.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "agricare-server",
		},
	}

	jwtToken := jwt.NewWithClaims(service.method, claims)
	accessToken, err := jwtToken.SignedString([]byte(service.SecretKey))
	if err != nil {
		return "", util.LogError("ошибка подписи токена", err)
	}

	return accessToken, nil
}

// ValidateAccessToken проверяет подпись, срок действия и тип токена.
// Возвращает ErrInvalidToken / ErrTokenExpired / ErrWrongTokenType
func (service *JWTService) ValidateAccessToken(jwtTokenStr string) (*Claims, error) {
	var claims = &Claims{}

	jwtToken, err := jwt.ParseWithClaims(jwtTokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Header["alg"] != service.method.Alg() {
			return nil, fmt.Errorf("неверный способ подписи токена: %v", token.Header["alg"])
		}
		return []byte(service.SecretKey), nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %v", ErrTokenExpired, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !jwtToken.Valid {
		return nil, ErrInvalidToken
	}

	if claims.TokenType != TokenTypeAccess {
		return nil, fmt.Errorf("%w: %q", ErrWrongTokenType, claims.TokenType)
	}

	return claims, nil
}

// NewRefreshToken генерирует непрозрачный refresh-токен:
// 32 байта криптографической случайности в URL-safe base64.
// Строка отдается клиенту и без изменений сохраняется в БД как ключ записи
func NewRefreshToken() (string, error) {
	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", util.LogError("ошибка генерации refresh токена", err)
	}
	return base64.RawURLEncoding.EncodeToString(tokenBytes), nil
}

// JWTMiddleware закрывает маршруты access-токеном: проверяет подпись без
// обращения к хранилищу токенов и резолвит пользователя по claims.sub
func JWTMiddleware(jwtService *JWTService, userRepository *repository.UserRepository) func(handler http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(handleAuthentication(jwtService, userRepository, next))
	}
}

func handleAuthentication(jwtService *JWTService, userRepository *repository.UserRepository, next http.Handler) func(writer http.ResponseWriter, request *http.Request) {
	return func(writer http.ResponseWriter, request *http.Request) {
		authorizationHeader := request.Header.Get("Authorization")
		if !strings.HasPrefix(authorizationHeader, "Bearer ") {
			util.HandleError(writer, "unauthorized", http.StatusUnauthorized)
			return
		}

		token := strings.TrimPrefix(authorizationHeader, "Bearer ")

		user, err := ResolveUser(request.Context(), jwtService, userRepository, token)
		if err != nil {
			log.Printf("ошибка аутентификации: %v", err)
			util.HandleError(writer, "unauthorized", http.StatusUnauthorized)
			return
		}

		req := request.WithContext(context.WithValue(request.Context(), UserContextKey, user))
		next.ServeHTTP(writer, req)
	}
}

// ResolveUser : точка входа каждой защищённой операции.
// Валидирует access-токен и возвращает владельца по claims.sub
func ResolveUser(ctx context.Context, jwtService *JWTService, userRepository *repository.UserRepository, token string) (*model.User, error) {
	claims, err := jwtService.ValidateAccessToken(token)
	if err != nil {
		return nil, err
	}

	db, err := config.DBFromContext(ctx)
	if err != nil {
		return nil, err
	}

	user, err := userRepository.FindByEmail(ctx, db, claims.Subject)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}

	return user, nil
}

func GetUserFromContext(ctx context.Context) (*model.User, error) {
	user, ok := ctx.Value(UserContextKey).(*model.User)
	if !ok || user == nil {
		return nil, fmt.Errorf("пользователь не авторизован")
	}
	return user, nil
}
