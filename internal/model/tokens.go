package model

import "time"

// RefreshToken : серверная запись о refresh-токене.
// Сам токен — непрозрачная строка, она же ключ поиска в БД.
// Токен пригоден к использованию, пока revoked = false и expires_at в будущем.
type RefreshToken struct {
	Token     string    `db:"token"`
	UserID    int64     `db:"user_id"`
	CreatedAt time.Time `db:"created_at"`
	ExpiresAt time.Time `db:"expires_at"`
	Revoked   bool      `db:"revoked"`
}

// TokensPair содержит пару access и refresh токенов
// swagger:model
type TokensPair struct {
	// Access токен (JWT)
	// example: eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9...
	AccessToken string `json:"access_token"`

	// Refresh токен (для получения новой пары)
	// example: vcSi0369y1I62wOpxZFpgZ...
	RefreshToken string `json:"refresh_token"`

	// Время жизни access токена в секундах
	// example: 1800
	ExpiresIn int64 `json:"expires_in"`
}
