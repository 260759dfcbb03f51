package ports

import (
	"context"
	"time"

	"agricare-server/internal/model"
)

// PredictionCache : Redis слой
type PredictionCache interface {
	SetPrediction(ctx context.Context, imageSHA256 string, prediction *model.Prediction) error
	GetPrediction(ctx context.Context, imageSHA256 string) (*model.Prediction, error)
}

type PredictionService interface {
	Predict(ctx context.Context, filename, contentType string, image []byte) (*model.Prediction, bool, error)
	ImageURL(ctx context.Context, imageKey string) (string, error)
}

// InferenceClient : внешний сервис инференса (байты изображения -> класс + уверенность)
type InferenceClient interface {
	Predict(ctx context.Context, filename string, image []byte) (string, float64, error)
}

// ImageStorage : S3-хранилище снимков
type ImageStorage interface {
	PutObject(ctx context.Context, key string, contentType string, body []byte) error
	GeneratePresignedGetURL(ctx context.Context, key string, expire time.Duration) (string, error)
}
