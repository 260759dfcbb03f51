package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"agricare-server/config"
	"agricare-server/internal/model"
	"agricare-server/internal/security"
	"agricare-server/internal/service"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// ===== MOCKS =====

// MockUserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) CreateUser(ctx context.Context, exec sqlx.ExtContext, user *model.User) (*model.User, error) {
	args := m.Called(ctx, exec, user)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, exec sqlx.ExtContext, email string) (*model.User, error) {
	args := m.Called(ctx, exec, email)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) FindByID(ctx context.Context, exec sqlx.ExtContext, id int64) (*model.User, error) {
	args := m.Called(ctx, exec, id)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, exec sqlx.ExtContext, email string) (bool, error) {
	args := m.Called(ctx, exec, email)
	return args.Bool(0), args.Error(1)
}

// MockTokenRepository
type MockTokenRepository struct {
	mock.Mock
	commits   int
	rollbacks int
}

func (m *MockTokenRepository) SaveRefreshToken(ctx context.Context, exec sqlx.ExtContext, token *model.RefreshToken) error {
	args := m.Called(ctx, exec, token)
	return args.Error(0)
}

func (m *MockTokenRepository) FindActive(ctx context.Context, exec sqlx.ExtContext, token string, now time.Time) (*model.RefreshToken, error) {
	args := m.Called(ctx, exec, token, now)
	if t, ok := args.Get(0).(*model.RefreshToken); ok {
		return t, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTokenRepository) FindByTokenAndUser(ctx context.Context, exec sqlx.ExtContext, token string, userID int64) (*model.RefreshToken, error) {
	args := m.Called(ctx, exec, token, userID)
	if t, ok := args.Get(0).(*model.RefreshToken); ok {
		return t, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTokenRepository) RevokeRefreshToken(ctx context.Context, exec sqlx.ExtContext, token string) (bool, error) {
	args := m.Called(ctx, exec, token)
	return args.Bool(0), args.Error(1)
}

func (m *MockTokenRepository) RevokeAllByUser(ctx context.Context, exec sqlx.ExtContext, userID int64, now time.Time) error {
	args := m.Called(ctx, exec, userID, now)
	return args.Error(0)
}

func (m *MockTokenRepository) DeleteExpiredByUser(ctx context.Context, exec sqlx.ExtContext, userID int64, now time.Time) error {
	args := m.Called(ctx, exec, userID, now)
	return args.Error(0)
}

func (m *MockTokenRepository) ListActiveByUser(ctx context.Context, exec sqlx.ExtContext, userID int64, now time.Time) ([]model.RefreshToken, error) {
	args := m.Called(ctx, exec, userID, now)
	if tokens, ok := args.Get(0).([]model.RefreshToken); ok {
		return tokens, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTokenRepository) DeleteTokens(ctx context.Context, exec sqlx.ExtContext, tokens []string) error {
	args := m.Called(ctx, exec, tokens)
	return args.Error(0)
}

func (m *MockTokenRepository) BeginTX(ctx context.Context) (sqlx.ExtContext, func() error, func() error, error) {
	args := m.Called(ctx)
	if err := args.Error(0); err != nil {
		return nil, nil, nil, err
	}
	rollback := func() error { m.rollbacks++; return nil }
	commit := func() error { m.commits++; return nil }
	return &sqlx.DB{}, rollback, commit, nil
}

// MockJWTService
type MockJWTService struct {
	mock.Mock
}

func (m *MockJWTService) GenerateAccessToken(email string) (string, error) {
	args := m.Called(email)
	return args.String(0), args.Error(1)
}

func (m *MockJWTService) ValidateAccessToken(tokenString string) (*security.Claims, error) {
	args := m.Called(tokenString)
	if claims, ok := args.Get(0).(*security.Claims); ok {
		return claims, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockJWTService) AccessTTL() time.Duration  { return 30 * time.Minute }
func (m *MockJWTService) RefreshTTL() time.Duration { return 168 * time.Hour }

// ===== HELPERS =====

func newTestAuthService() (*service.AuthenticationService, *MockUserRepository, *MockTokenRepository, *MockJWTService) {
	mockUserRepo := new(MockUserRepository)
	mockTokenRepo := new(MockTokenRepository)
	mockJWTService := new(MockJWTService)

	svc := service.NewAuthenticationService(
		mockTokenRepo,
		mockUserRepo,
		mockJWTService,
		&config.JWTConfig{MaxRefreshTokensPerUser: 5},
	)

	return svc, mockUserRepo, mockTokenRepo, mockJWTService
}

func ctxWithDB() context.Context {
	return context.WithValue(context.Background(), "db", &config.Database{})
}

func activeUser(id int64, email, password string) *model.User {
	hash, _ := security.HashPassword(password)
	return &model.User{ID: id, Email: email, PasswordHash: hash, IsActive: true}
}

// ===== LOGIN =====

// Пользователь не найден: клиенту неразличимо с неверным паролем
func TestLogin_UserNotFound(t *testing.T) {
	svc, mockUserRepo, _, _ := newTestAuthService()
	ctx := ctxWithDB()

	mockUserRepo.On("FindByEmail", ctx, mock.Anything, "ghost@x.com").Return(nil, nil)

	_, err := svc.Login(ctx, "ghost@x.com", "pw123456")

	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	mockUserRepo.AssertExpectations(t)
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, mockUserRepo, _, _ := newTestAuthService()
	ctx := ctxWithDB()

	user := activeUser(1, "a@x.com", "goodpass")
	mockUserRepo.On("FindByEmail", ctx, mock.Anything, "a@x.com").Return(user, nil)

	_, err := svc.Login(ctx, "a@x.com", "badpass")

	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	mockUserRepo.AssertExpectations(t)
}

func TestLogin_InactiveUser(t *testing.T) {
	svc, mockUserRepo, _, _ := newTestAuthService()
	ctx := ctxWithDB()

	user := activeUser(1, "a@x.com", "goodpass")
	user.IsActive = false
	mockUserRepo.On("FindByEmail", ctx, mock.Anything, "a@x.com").Return(user, nil)

	_, err := svc.Login(ctx, "a@x.com", "goodpass")

	assert.ErrorIs(t, err, security.ErrUserInactive)
	mockUserRepo.AssertExpectations(t)
}

func TestLogin_Success(t *testing.T) {
	svc, mockUserRepo, mockTokenRepo, mockJWTService := newTestAuthService()
	ctx := ctxWithDB()

	user := activeUser(1, "a@x.com", "goodpass")
	mockUserRepo.On("FindByEmail", ctx, mock.Anything, "a@x.com").Return(user, nil)
	mockJWTService.On("GenerateAccessToken", "a@x.com").Return("acc", nil)
	mockTokenRepo.On("BeginTX", ctx).Return(nil)
	mockTokenRepo.On("DeleteExpiredByUser", ctx, mock.Anything, int64(1), mock.Anything).Return(nil)
	mockTokenRepo.On("ListActiveByUser", ctx, mock.Anything, int64(1), mock.Anything).Return([]model.RefreshToken{}, nil)
	mockTokenRepo.On("SaveRefreshToken", ctx, mock.Anything, mock.Anything).Return(nil)

	tokens, err := svc.Login(ctx, "a@x.com", "goodpass")

	assert.NoError(t, err)
	assert.Equal(t, "acc", tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)
	assert.Equal(t, int64(1800), tokens.ExpiresIn)
	assert.Equal(t, 1, mockTokenRepo.commits)
	mockTokenRepo.AssertExpectations(t)
}

// ===== ВЫДАЧА И ЛИМИТ ТОКЕНОВ =====

// Лимит достигнут: вытесняются самые старые, ровно столько, чтобы после
// вставки нового живых осталось не больше лимита
func TestIssueTokens_CapEviction(t *testing.T) {
	svc, _, mockTokenRepo, mockJWTService := newTestAuthService()
	ctx := ctxWithDB()

	user := activeUser(1, "a@x.com", "goodpass")

	// новые первыми: t1 — самый свежий, t5 — самый старый
	active := []model.RefreshToken{
		{Token: "t1"}, {Token: "t2"}, {Token: "t3"}, {Token: "t4"}, {Token: "t5"},
	}

	mockJWTService.On("GenerateAccessToken", "a@x.com").Return("acc", nil)
	mockTokenRepo.On("BeginTX", ctx).Return(nil)
	mockTokenRepo.On("DeleteExpiredByUser", ctx, mock.Anything, int64(1), mock.Anything).Return(nil)
	mockTokenRepo.On("ListActiveByUser", ctx, mock.Anything, int64(1), mock.Anything).Return(active, nil)
	mockTokenRepo.On("DeleteTokens", ctx, mock.Anything, []string{"t5"}).Return(nil)
	mockTokenRepo.On("SaveRefreshToken", ctx, mock.Anything, mock.Anything).Return(nil)

	_, err := svc.IssueTokens(ctx, user)

	assert.NoError(t, err)
	mockTokenRepo.AssertExpectations(t)
}

// Упавшая вставка откатывает транзакцию целиком, включая усечение
func TestIssueTokens_SaveFailsRollsBack(t *testing.T) {
	svc, _, mockTokenRepo, mockJWTService := newTestAuthService()
	ctx := ctxWithDB()

	user := activeUser(1, "a@x.com", "goodpass")

	mockJWTService.On("GenerateAccessToken", "a@x.com").Return("acc", nil)
	mockTokenRepo.On("BeginTX", ctx).Return(nil)
	mockTokenRepo.On("DeleteExpiredByUser", ctx, mock.Anything, int64(1), mock.Anything).Return(nil)
	mockTokenRepo.On("ListActiveByUser", ctx, mock.Anything, int64(1), mock.Anything).Return([]model.RefreshToken{}, nil)
	mockTokenRepo.On("SaveRefreshToken", ctx, mock.Anything, mock.Anything).Return(errors.New("db error"))

	_, err := svc.IssueTokens(ctx, user)

	assert.Error(t, err)
	assert.Equal(t, 0, mockTokenRepo.commits)
	assert.Equal(t, 1, mockTokenRepo.rollbacks)
	mockTokenRepo.AssertExpectations(t)
}

// ===== РОТАЦИЯ =====

func TestRefresh_TokenNotFound(t *testing.T) {
	svc, _, mockTokenRepo, _ := newTestAuthService()
	ctx := ctxWithDB()

	mockTokenRepo.On("BeginTX", ctx).Return(nil)
	mockTokenRepo.On("FindActive", ctx, mock.Anything, "unknown", mock.Anything).Return(nil, nil)

	_, err := svc.Refresh(ctx, "unknown")

	assert.ErrorIs(t, err, service.ErrInvalidOrExpiredToken)
	assert.Equal(t, 0, mockTokenRepo.commits)
	mockTokenRepo.AssertExpectations(t)
}

// Проигравшая гонку ротация: запись видна, но CAS на revoked не прошёл
func TestRefresh_LostRace(t *testing.T) {
	svc, _, mockTokenRepo, _ := newTestAuthService()
	ctx := ctxWithDB()

	stored := &model.RefreshToken{Token: "r1", UserID: 1, ExpiresAt: time.Now().Add(time.Hour)}
	mockTokenRepo.On("BeginTX", ctx).Return(nil)
	mockTokenRepo.On("FindActive", ctx, mock.Anything, "r1", mock.Anything).Return(stored, nil)
	mockTokenRepo.On("RevokeRefreshToken", ctx, mock.Anything, "r1").Return(false, nil)

	_, err := svc.Refresh(ctx, "r1")

	assert.ErrorIs(t, err, service.ErrInvalidOrExpiredToken)
	assert.Equal(t, 0, mockTokenRepo.commits)
	mockTokenRepo.AssertExpectations(t)
}

func TestRefresh_Success(t *testing.T) {
	svc, mockUserRepo, mockTokenRepo, mockJWTService := newTestAuthService()
	ctx := ctxWithDB()

	user := activeUser(1, "a@x.com", "goodpass")
	stored := &model.RefreshToken{Token: "r1", UserID: 1, ExpiresAt: time.Now().Add(time.Hour)}

	mockTokenRepo.On("BeginTX", ctx).Return(nil)
	mockTokenRepo.On("FindActive", ctx, mock.Anything, "r1", mock.Anything).Return(stored, nil)
	mockTokenRepo.On("RevokeRefreshToken", ctx, mock.Anything, "r1").Return(true, nil)
	mockUserRepo.On("FindByID", ctx, mock.Anything, int64(1)).Return(user, nil)
	mockJWTService.On("GenerateAccessToken", "a@x.com").Return("acc2", nil)
	mockTokenRepo.On("DeleteExpiredByUser", ctx, mock.Anything, int64(1), mock.Anything).Return(nil)
	mockTokenRepo.On("ListActiveByUser", ctx, mock.Anything, int64(1), mock.Anything).Return([]model.RefreshToken{}, nil)
	mockTokenRepo.On("SaveRefreshToken", ctx, mock.Anything, mock.Anything).Return(nil)

	tokens, err := svc.Refresh(ctx, "r1")

	assert.NoError(t, err)
	assert.Equal(t, "acc2", tokens.AccessToken)
	assert.NotEqual(t, "r1", tokens.RefreshToken)
	assert.Equal(t, 1, mockTokenRepo.commits)
	mockTokenRepo.AssertExpectations(t)
	mockUserRepo.AssertExpectations(t)
}

// После успешной ротации предъявление старого токена снова — отказ
func TestRefresh_RotationInvalidatesPredecessor(t *testing.T) {
	svc, mockUserRepo, mockTokenRepo, mockJWTService := newTestAuthService()
	ctx := ctxWithDB()

	user := activeUser(1, "a@x.com", "goodpass")
	stored := &model.RefreshToken{Token: "r1", UserID: 1, ExpiresAt: time.Now().Add(time.Hour)}

	mockTokenRepo.On("BeginTX", ctx).Return(nil)
	mockTokenRepo.On("FindActive", ctx, mock.Anything, "r1", mock.Anything).Return(stored, nil).Once()
	mockTokenRepo.On("RevokeRefreshToken", ctx, mock.Anything, "r1").Return(true, nil).Once()
	mockUserRepo.On("FindByID", ctx, mock.Anything, int64(1)).Return(user, nil)
	mockJWTService.On("GenerateAccessToken", "a@x.com").Return("acc2", nil)
	mockTokenRepo.On("DeleteExpiredByUser", ctx, mock.Anything, int64(1), mock.Anything).Return(nil)
	mockTokenRepo.On("ListActiveByUser", ctx, mock.Anything, int64(1), mock.Anything).Return([]model.RefreshToken{}, nil)
	mockTokenRepo.On("SaveRefreshToken", ctx, mock.Anything, mock.Anything).Return(nil)

	_, err := svc.Refresh(ctx, "r1")
	assert.NoError(t, err)

	// запись уже revoked: активной больше нет
	mockTokenRepo.On("FindActive", ctx, mock.Anything, "r1", mock.Anything).Return(nil, nil).Once()

	_, err = svc.Refresh(ctx, "r1")
	assert.ErrorIs(t, err, service.ErrInvalidOrExpiredToken)
	mockTokenRepo.AssertExpectations(t)
}

// ===== ОТЗЫВ =====

// Logout идемпотентен: повторный вызов и несуществующий токен — не ошибка
func TestLogout_Idempotent(t *testing.T) {
	svc, _, mockTokenRepo, _ := newTestAuthService()
	ctx := ctxWithDB()

	mockTokenRepo.On("RevokeRefreshToken", ctx, mock.Anything, "r1").Return(true, nil).Once()
	mockTokenRepo.On("RevokeRefreshToken", ctx, mock.Anything, "r1").Return(false, nil).Once()

	assert.NoError(t, svc.Logout(ctx, "r1"))
	assert.NoError(t, svc.Logout(ctx, "r1"))
	mockTokenRepo.AssertExpectations(t)
}

func TestLogoutAll(t *testing.T) {
	svc, _, mockTokenRepo, _ := newTestAuthService()
	ctx := ctxWithDB()

	mockTokenRepo.On("RevokeAllByUser", ctx, mock.Anything, int64(1), mock.Anything).Return(nil)

	assert.NoError(t, svc.LogoutAll(ctx, 1))
	mockTokenRepo.AssertExpectations(t)
}

// Чужой или несуществующий токен отозвать нельзя
func TestRevokeOwned_NotOwned(t *testing.T) {
	svc, _, mockTokenRepo, _ := newTestAuthService()
	ctx := ctxWithDB()

	mockTokenRepo.On("FindByTokenAndUser", ctx, mock.Anything, "foreign", int64(1)).Return(nil, nil)

	err := svc.RevokeOwned(ctx, 1, "foreign")

	assert.ErrorIs(t, err, service.ErrTokenNotOwned)
	mockTokenRepo.AssertExpectations(t)
}

func TestRevokeOwned_Success(t *testing.T) {
	svc, _, mockTokenRepo, _ := newTestAuthService()
	ctx := ctxWithDB()

	stored := &model.RefreshToken{Token: "r1", UserID: 1}
	mockTokenRepo.On("FindByTokenAndUser", ctx, mock.Anything, "r1", int64(1)).Return(stored, nil)
	mockTokenRepo.On("RevokeRefreshToken", ctx, mock.Anything, "r1").Return(true, nil)

	assert.NoError(t, svc.RevokeOwned(ctx, 1, "r1"))
	mockTokenRepo.AssertExpectations(t)
}
