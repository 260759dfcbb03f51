// Package inference — HTTP-клиент сервиса инференса модели
// распознавания болезней растений. Модель развёрнута отдельным сервисом,
// сюда уходят байты изображения, обратно приходит класс и уверенность.
package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"agricare-server/config"
	"agricare-server/internal/util"
)

type Client struct {
	endpoint string
	client   *http.Client
}

func NewClient(cfg *config.MLConfig) (*Client, error) {
	timeout := 30 * time.Second
	if cfg.Timeout != "" {
		parsed, err := time.ParseDuration(cfg.Timeout)
		if err != nil {
			return nil, fmt.Errorf("ошибка парсинга ml.timeout: %w", err)
		}
		timeout = parsed
	}

	return &Client{
		endpoint: cfg.Endpoint,
		client:   &http.Client{Timeout: timeout},
	}, nil
}

type predictResponse struct {
	PredictedClass string  `json:"predicted_class"`
	Confidence     float64 `json:"confidence"`
	Success        bool    `json:"success"`
}

// Predict отправляет изображение на инференс как multipart/form-data
func (c *Client) Predict(ctx context.Context, filename string, image []byte) (string, float64, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", 0, util.LogError("[Inference] ошибка сборки запроса", err)
	}
	if _, err := part.Write(image); err != nil {
		return "", 0, util.LogError("[Inference] ошибка сборки запроса", err)
	}
	if err := writer.Close(); err != nil {
		return "", 0, util.LogError("[Inference] ошибка сборки запроса", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, &body)
	if err != nil {
		return "", 0, util.LogError("[Inference] ошибка создания запроса", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return "", 0, util.LogError("[Inference] ошибка запроса к сервису инференса", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", 0, fmt.Errorf("[Inference] сервис инференса ответил %d: %s", resp.StatusCode, payload)
	}

	var result predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", 0, util.LogError("[Inference] ошибка разбора ответа", err)
	}

	return result.PredictedClass, result.Confidence, nil
}
