package service_test

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"testing"
	"time"

	"agricare-server/internal/model"
	"agricare-server/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockInferenceClient
type MockInferenceClient struct {
	mock.Mock
}

func (m *MockInferenceClient) Predict(ctx context.Context, filename string, image []byte) (string, float64, error) {
	args := m.Called(ctx, filename, image)
	return args.String(0), args.Get(1).(float64), args.Error(2)
}

// MockPredictionCache
type MockPredictionCache struct {
	mock.Mock
}

func (m *MockPredictionCache) SetPrediction(ctx context.Context, imageSHA256 string, prediction *model.Prediction) error {
	args := m.Called(ctx, imageSHA256, prediction)
	return args.Error(0)
}

func (m *MockPredictionCache) GetPrediction(ctx context.Context, imageSHA256 string) (*model.Prediction, error) {
	args := m.Called(ctx, imageSHA256)
	if p, ok := args.Get(0).(*model.Prediction); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockImageStorage
type MockImageStorage struct {
	mock.Mock
}

func (m *MockImageStorage) PutObject(ctx context.Context, key string, contentType string, body []byte) error {
	args := m.Called(ctx, key, contentType, body)
	return args.Error(0)
}

func (m *MockImageStorage) GeneratePresignedGetURL(ctx context.Context, key string, expire time.Duration) (string, error) {
	args := m.Called(ctx, key, expire)
	return args.String(0), args.Error(1)
}

func newTestPredictionService() (*service.PredictionService, *MockInferenceClient, *MockPredictionCache, *MockImageStorage) {
	mockInference := new(MockInferenceClient)
	mockCache := new(MockPredictionCache)
	mockStorage := new(MockImageStorage)
	svc := service.NewPredictionService(mockInference, mockCache, mockStorage, time.Hour)
	return svc, mockInference, mockCache, mockStorage
}

func imageSHA256(image []byte) string {
	sum := sha256.Sum256(image)
	return hex.EncodeToString(sum[:])
}

// Попадание в кэш: инференс и S3 не вызываются
func TestPredict_CacheHit(t *testing.T) {
	svc, mockInference, mockCache, mockStorage := newTestPredictionService()
	ctx := context.Background()
	image := []byte("leaf-bytes")

	stored := &model.Prediction{Class: "Tomato___Early_blight", Confidence: 0.97, ImageKey: "scans/abc"}
	mockCache.On("GetPrediction", ctx, imageSHA256(image)).Return(stored, nil)

	prediction, cached, err := svc.Predict(ctx, "leaf.jpg", "image/jpeg", image)

	require.NoError(t, err)
	assert.True(t, cached)
	assert.Equal(t, stored, prediction)
	mockInference.AssertNotCalled(t, "Predict", mock.Anything, mock.Anything, mock.Anything)
	mockStorage.AssertNotCalled(t, "PutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPredict_CacheMiss(t *testing.T) {
	svc, mockInference, mockCache, mockStorage := newTestPredictionService()
	ctx := context.Background()
	image := []byte("leaf-bytes")
	sha := imageSHA256(image)

	mockCache.On("GetPrediction", ctx, sha).Return(nil, nil)
	mockInference.On("Predict", ctx, "leaf.jpg", image).Return("Tomato___Early_blight", 0.91, nil)
	mockStorage.On("PutObject", ctx, mock.MatchedBy(func(key string) bool {
		return strings.HasPrefix(key, "scans/")
	}), "image/jpeg", image).Return(nil)
	mockCache.On("SetPrediction", ctx, sha, mock.MatchedBy(func(p *model.Prediction) bool {
		return p.Class == "Tomato___Early_blight" && p.Confidence == 0.91
	})).Return(nil)

	prediction, cached, err := svc.Predict(ctx, "leaf.jpg", "image/jpeg", image)

	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, "Tomato___Early_blight", prediction.Class)
	assert.True(t, strings.HasPrefix(prediction.ImageKey, "scans/"))
	mockCache.AssertExpectations(t)
	mockInference.AssertExpectations(t)
	mockStorage.AssertExpectations(t)
}

// Ошибка кэша не валит запрос: предсказание выполняется как при промахе
func TestPredict_CacheErrorTolerated(t *testing.T) {
	svc, mockInference, mockCache, mockStorage := newTestPredictionService()
	ctx := context.Background()
	image := []byte("leaf-bytes")
	sha := imageSHA256(image)

	mockCache.On("GetPrediction", ctx, sha).Return(nil, errors.New("redis down"))
	mockInference.On("Predict", ctx, "leaf.jpg", image).Return("Healthy", 0.99, nil)
	mockStorage.On("PutObject", ctx, mock.Anything, "image/jpeg", image).Return(nil)
	mockCache.On("SetPrediction", ctx, sha, mock.Anything).Return(errors.New("redis down"))

	prediction, cached, err := svc.Predict(ctx, "leaf.jpg", "image/jpeg", image)

	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, "Healthy", prediction.Class)
}

// Ошибка S3 тоже не фатальна: предсказание возвращается без ключа снимка
func TestPredict_StorageErrorTolerated(t *testing.T) {
	svc, mockInference, mockCache, mockStorage := newTestPredictionService()
	ctx := context.Background()
	image := []byte("leaf-bytes")
	sha := imageSHA256(image)

	mockCache.On("GetPrediction", ctx, sha).Return(nil, nil)
	mockInference.On("Predict", ctx, "leaf.jpg", image).Return("Healthy", 0.99, nil)
	mockStorage.On("PutObject", ctx, mock.Anything, "image/jpeg", image).Return(errors.New("s3 down"))
	mockCache.On("SetPrediction", ctx, sha, mock.Anything).Return(nil)

	prediction, cached, err := svc.Predict(ctx, "leaf.jpg", "image/jpeg", image)

	require.NoError(t, err)
	assert.False(t, cached)
	assert.Empty(t, prediction.ImageKey)
}

func TestPredict_InferenceError(t *testing.T) {
	svc, mockInference, mockCache, _ := newTestPredictionService()
	ctx := context.Background()
	image := []byte("leaf-bytes")

	mockCache.On("GetPrediction", ctx, imageSHA256(image)).Return(nil, nil)
	mockInference.On("Predict", ctx, "leaf.jpg", image).Return("", 0.0, errors.New("model unavailable"))

	_, _, err := svc.Predict(ctx, "leaf.jpg", "image/jpeg", image)

	assert.Error(t, err)
}

func TestImageURL_EmptyKey(t *testing.T) {
	svc, _, _, mockStorage := newTestPredictionService()

	url, err := svc.ImageURL(context.Background(), "")

	assert.NoError(t, err)
	assert.Empty(t, url)
	mockStorage.AssertNotCalled(t, "GeneratePresignedGetURL", mock.Anything, mock.Anything, mock.Anything)
}
