package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"agricare-server/internal/security"
	"agricare-server/internal/service"
	"agricare-server/internal/util"
)

func sendJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("ошибка кодирования ответа: %v", err)
	}
}

func sendErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	util.HandleError(w, message, statusCode)
}

// handleServiceError сопоставляет ошибки сервисного слоя с HTTP-статусами.
// Ошибки хранилища наружу не раскрываются
func handleServiceError(w http.ResponseWriter, err error) {
	log.Println(err)

	switch {
	case errors.Is(err, service.ErrDuplicateIdentity):
		sendErrorResponse(w, http.StatusBadRequest, service.ErrDuplicateIdentity.Error())
	case errors.Is(err, service.ErrPasswordTooShort):
		sendErrorResponse(w, http.StatusBadRequest, service.ErrPasswordTooShort.Error())
	case errors.Is(err, service.ErrMessageLimit):
		sendErrorResponse(w, http.StatusBadRequest, service.ErrMessageLimit.Error())
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidOrExpiredToken),
		errors.Is(err, security.ErrInvalidToken),
		errors.Is(err, security.ErrWrongTokenType),
		errors.Is(err, security.ErrTokenExpired),
		errors.Is(err, security.ErrUserNotFound),
		errors.Is(err, security.ErrUserInactive):
		sendErrorResponse(w, http.StatusUnauthorized, "не удалось авторизовать пользователя")
	case errors.Is(err, service.ErrTokenNotOwned):
		sendErrorResponse(w, http.StatusNotFound, service.ErrTokenNotOwned.Error())
	case errors.Is(err, service.ErrConversationNotFound):
		sendErrorResponse(w, http.StatusNotFound, service.ErrConversationNotFound.Error())
	default:
		sendErrorResponse(w, http.StatusInternalServerError, "внутренняя ошибка сервера")
	}
}
