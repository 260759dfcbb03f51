package handler

import (
	"io"
	"log"
	"net/http"

	"agricare-server/internal/model/requestresponse"
	"agricare-server/internal/ports"
)

// maxUploadSize : предел размера загружаемого снимка
const maxUploadSize = 10 << 20

type PredictionHandler struct {
	ports.PredictionService
}

func NewPredictionHandler(predictionService ports.PredictionService) *PredictionHandler {
	return &PredictionHandler{predictionService}
}

// Predict godoc
// @Summary Распознавание болезни растения по снимку
// @Description Принимает изображение листа (multipart, поле file) и возвращает класс болезни
// @Tags Prediction
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Снимок листа"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.PredictionResponse
// @Failure 400 {object} requestresponse.ErrorResponse "Файл не передан или слишком большой"
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 500 {object} requestresponse.ErrorResponse "Ошибка инференса"
// @Security ApiKeyAuth
// @Router /api/predict [post]
func (h *PredictionHandler) Predict(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		sendErrorResponse(w, http.StatusBadRequest, "не удалось разобрать multipart-запрос")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		sendErrorResponse(w, http.StatusBadRequest, "поле file обязательно")
		return
	}
	defer file.Close()

	image, err := io.ReadAll(file)
	if err != nil {
		sendErrorResponse(w, http.StatusBadRequest, "не удалось прочитать файл")
		return
	}

	contentType := header.Header.Get("Content-Type")
	prediction, cached, err := h.PredictionService.Predict(r.Context(), header.Filename, contentType, image)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	imageURL, err := h.PredictionService.ImageURL(r.Context(), prediction.ImageKey)
	if err != nil {
		log.Printf("не удалось сгенерировать ссылку на снимок: %v", err)
	}

	sendJSON(w, http.StatusOK, requestresponse.PredictionResponse{
		PredictedClass: prediction.Class,
		Confidence:     prediction.Confidence,
		ImageURL:       imageURL,
		Cached:         cached,
		Success:        true,
	})
}
