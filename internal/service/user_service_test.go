package service_test

import (
	"context"
	"testing"

	"agricare-server/internal/model"
	"agricare-server/internal/security"
	"agricare-server/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockAuthenticationService
type MockAuthenticationService struct {
	mock.Mock
}

func (m *MockAuthenticationService) Login(ctx context.Context, email, password string) (*model.TokensPair, error) {
	args := m.Called(ctx, email, password)
	if pair, ok := args.Get(0).(*model.TokensPair); ok {
		return pair, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAuthenticationService) IssueTokens(ctx context.Context, user *model.User) (*model.TokensPair, error) {
	args := m.Called(ctx, user)
	if pair, ok := args.Get(0).(*model.TokensPair); ok {
		return pair, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAuthenticationService) Refresh(ctx context.Context, refreshToken string) (*model.TokensPair, error) {
	args := m.Called(ctx, refreshToken)
	if pair, ok := args.Get(0).(*model.TokensPair); ok {
		return pair, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAuthenticationService) Logout(ctx context.Context, refreshToken string) error {
	args := m.Called(ctx, refreshToken)
	return args.Error(0)
}

func (m *MockAuthenticationService) LogoutAll(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockAuthenticationService) RevokeOwned(ctx context.Context, userID int64, refreshToken string) error {
	args := m.Called(ctx, userID, refreshToken)
	return args.Error(0)
}

func newTestUserService() (*service.UserService, *MockUserRepository, *MockAuthenticationService) {
	mockUserRepo := new(MockUserRepository)
	mockAuthService := new(MockAuthenticationService)
	return service.NewUserService(mockUserRepo, mockAuthService), mockUserRepo, mockAuthService
}

func TestRegister_ShortPassword(t *testing.T) {
	svc, _, _ := newTestUserService()

	_, err := svc.Register(ctxWithDB(), "new@x.com", "short")

	assert.ErrorIs(t, err, service.ErrPasswordTooShort)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, mockUserRepo, _ := newTestUserService()
	ctx := ctxWithDB()

	mockUserRepo.On("ExistsByEmail", ctx, mock.Anything, "taken@x.com").Return(true, nil)

	_, err := svc.Register(ctx, "taken@x.com", "password123")

	assert.ErrorIs(t, err, service.ErrDuplicateIdentity)
	mockUserRepo.AssertExpectations(t)
}

func TestRegister_Success(t *testing.T) {
	svc, mockUserRepo, mockAuthService := newTestUserService()
	ctx := ctxWithDB()

	created := &model.User{ID: 7, Email: "new@x.com", IsActive: true}
	pair := &model.TokensPair{AccessToken: "acc", RefreshToken: "ref", ExpiresIn: 1800}

	mockUserRepo.On("ExistsByEmail", ctx, mock.Anything, "new@x.com").Return(false, nil)
	mockUserRepo.On("CreateUser", ctx, mock.Anything, mock.MatchedBy(func(u *model.User) bool {
		// в хранилище уходит bcrypt-хэш, не пароль
		return u.Email == "new@x.com" && security.CheckPassword("password123", u.PasswordHash)
	})).Return(created, nil)
	mockAuthService.On("IssueTokens", ctx, created).Return(pair, nil)

	tokens, err := svc.Register(ctx, "new@x.com", "password123")

	assert.NoError(t, err)
	assert.Equal(t, pair, tokens)
	mockUserRepo.AssertExpectations(t)
	mockAuthService.AssertExpectations(t)
}
