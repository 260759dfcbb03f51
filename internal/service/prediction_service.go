package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"time"

	"agricare-server/internal/model"
	"agricare-server/internal/ports"
	"agricare-server/internal/util"

	"github.com/google/uuid"
)

// PredictionService : распознавание болезни по снимку листа.
// Результат кэшируется в Redis по SHA-256 изображения, сам снимок
// складывается в S3
type PredictionService struct {
	inferenceClient ports.InferenceClient
	cacheRepository ports.PredictionCache
	imageStorage    ports.ImageStorage
	presignTTL      time.Duration
}

func NewPredictionService(
	inferenceClient ports.InferenceClient,
	cacheRepository ports.PredictionCache,
	imageStorage ports.ImageStorage,
	presignTTL time.Duration,
) *PredictionService {
	return &PredictionService{
		inferenceClient: inferenceClient,
		cacheRepository: cacheRepository,
		imageStorage:    imageStorage,
		presignTTL:      presignTTL,
	}
}

// Predict : кэш -> инференс -> S3 -> кэш.
// Ошибки кэша и S3 не валят запрос: предсказание важнее
func (s *PredictionService) Predict(ctx context.Context, filename, contentType string, image []byte) (*model.Prediction, bool, error) {
	sum := sha256.Sum256(image)
	imageSHA256 := hex.EncodeToString(sum[:])

	cached, err := s.cacheRepository.GetPrediction(ctx, imageSHA256)
	if err != nil {
		log.Printf("[PredictionService] ошибка чтения кэша: %v", err)
	}
	if cached != nil {
		return cached, true, nil
	}

	class, confidence, err := s.inferenceClient.Predict(ctx, filename, image)
	if err != nil {
		return nil, false, util.LogError("[PredictionService] ошибка инференса", err)
	}

	imageKey := fmt.Sprintf("scans/%s", uuid.New().String())
	if err := s.imageStorage.PutObject(ctx, imageKey, contentType, image); err != nil {
		log.Printf("[PredictionService] не удалось сохранить снимок в S3: %v", err)
		imageKey = ""
	}

	prediction := &model.Prediction{
		Class:      class,
		Confidence: confidence,
		ImageKey:   imageKey,
	}

	if err := s.cacheRepository.SetPrediction(ctx, imageSHA256, prediction); err != nil {
		log.Printf("[PredictionService] ошибка записи в кэш: %v", err)
	}

	return prediction, false, nil
}

// ImageURL возвращает presigned-ссылку на сохранённый снимок
func (s *PredictionService) ImageURL(ctx context.Context, imageKey string) (string, error) {
	if imageKey == "" {
		return "", nil
	}
	return s.imageStorage.GeneratePresignedGetURL(ctx, imageKey, s.presignTTL)
}
