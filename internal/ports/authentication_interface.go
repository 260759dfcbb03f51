package ports

import (
	"context"

	"agricare-server/internal/model"
)

type AuthenticationService interface {
	Login(ctx context.Context, email, password string) (*model.TokensPair, error)
	Refresh(ctx context.Context, refreshToken string) (*model.TokensPair, error)
	Logout(ctx context.Context, refreshToken string) error
	LogoutAll(ctx context.Context, userID int64) error
	RevokeOwned(ctx context.Context, userID int64, refreshToken string) error
	IssueTokens(ctx context.Context, user *model.User) (*model.TokensPair, error)
}
