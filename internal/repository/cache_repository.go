package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"agricare-server/config"
	"agricare-server/internal/model"
	"agricare-server/internal/util"

	"github.com/redis/go-redis/v9"
)

// CacheRepository : Redis-кэш результатов предсказаний.
// Ключ — SHA-256 загруженного изображения: повторная загрузка того же снимка
// не ходит в сервис инференса
type CacheRepository struct {
	client *config.RedisClient
	ttl    time.Duration
}

func NewCacheRepository(rdb *config.RedisClient, ttl time.Duration) *CacheRepository {
	return &CacheRepository{rdb, ttl}
}

func (r *CacheRepository) SetPrediction(ctx context.Context, imageSHA256 string, prediction *model.Prediction) error {
	data, err := json.Marshal(prediction)
	if err != nil {
		return util.LogError("ошибка сериализации предсказания", err)
	}

	cmd := r.client.Client.Set(ctx, r.key(imageSHA256), data, r.ttl)
	if err = cmd.Err(); err != nil {
		return util.LogError("ошибка сохранения в Redis", err)
	}

	return nil
}

func (r *CacheRepository) GetPrediction(ctx context.Context, imageSHA256 string) (*model.Prediction, error) {
	val, err := r.client.Client.Get(ctx, r.key(imageSHA256)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil // нет в кэше
	} else if err != nil {
		return nil, util.LogError("ошибка получения предсказания из Redis", err)
	}

	var prediction model.Prediction
	if err := json.Unmarshal([]byte(val), &prediction); err != nil {
		return nil, util.LogError("ошибка десериализации предсказания из кэша", err)
	}
	return &prediction, nil
}

func (r *CacheRepository) key(imageSHA256 string) string {
	return fmt.Sprintf("prediction:%s", imageSHA256)
}
