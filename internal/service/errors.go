package service

import "errors"

// Ошибки, видимые клиенту. Хэндлеры сопоставляют их через errors.Is;
// всё остальное уходит наружу как непрозрачная 500
var (
	ErrInvalidCredentials = errors.New("неверный email или пароль")
	ErrDuplicateIdentity  = errors.New("email уже зарегистрирован")
	ErrPasswordTooShort   = errors.New("пароль должен содержать минимум 8 символов")

	// ErrInvalidOrExpiredToken намеренно не различает "не найден",
	// "отозван" и "просрочен" — клиенту эта разница не сообщается
	ErrInvalidOrExpiredToken = errors.New("невалидный или просроченный refresh токен")

	ErrTokenNotOwned = errors.New("токен не найден")

	ErrMessageLimit         = errors.New("достигнут лимит сообщений в диалоге")
	ErrConversationNotFound = errors.New("диалог не найден")
)
