package ports

import (
	"context"
	"time"

	"agricare-server/internal/model"
	"agricare-server/internal/security"

	"github.com/jmoiron/sqlx"
)

// TokenRepository : хранилище refresh-токенов (CredentialStore)
type TokenRepository interface {
	SaveRefreshToken(ctx context.Context, exec sqlx.ExtContext, token *model.RefreshToken) error
	FindActive(ctx context.Context, exec sqlx.ExtContext, token string, now time.Time) (*model.RefreshToken, error)
	FindByTokenAndUser(ctx context.Context, exec sqlx.ExtContext, token string, userID int64) (*model.RefreshToken, error)
	RevokeRefreshToken(ctx context.Context, exec sqlx.ExtContext, token string) (bool, error)
	RevokeAllByUser(ctx context.Context, exec sqlx.ExtContext, userID int64, now time.Time) error
	DeleteExpiredByUser(ctx context.Context, exec sqlx.ExtContext, userID int64, now time.Time) error
	ListActiveByUser(ctx context.Context, exec sqlx.ExtContext, userID int64, now time.Time) ([]model.RefreshToken, error)
	DeleteTokens(ctx context.Context, exec sqlx.ExtContext, tokens []string) error
	BeginTX(ctx context.Context) (sqlx.ExtContext, func() error, func() error, error)
}

type JWTServiceInterface interface {
	GenerateAccessToken(email string) (string, error)
	ValidateAccessToken(tokenString string) (*security.Claims, error)
	AccessTTL() time.Duration
	RefreshTTL() time.Duration
}
