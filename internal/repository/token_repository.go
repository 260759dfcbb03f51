package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"agricare-server/config"
	"agricare-server/internal/model"
	"agricare-server/internal/util"

	"github.com/jmoiron/sqlx"
)

// TokenRepository : хранилище refresh-токенов.
// Каждая операция получает exec явно: вне транзакции это соединение запроса,
// внутри ротации — транзакция, открытая через BeginTX
type TokenRepository struct {
	*config.Database
}

func NewTokenRepository(database *config.Database) *TokenRepository {
	return &TokenRepository{database}
}

// SaveRefreshToken сохраняет refresh-токен в базе данных
func (r *TokenRepository) SaveRefreshToken(ctx context.Context, exec sqlx.ExtContext, refreshToken *model.RefreshToken) error {
	query := `INSERT INTO refresh_tokens (token, user_id, created_at, expires_at, revoked)
				VALUES ($1, $2, $3, $4, $5)
	`

	_, err := exec.ExecContext(ctx, query,
		refreshToken.Token,
		refreshToken.UserID,
		refreshToken.CreatedAt,
		refreshToken.ExpiresAt,
		refreshToken.Revoked,
	)

	if err != nil {
		return util.LogError("[TokenRepo] ошибка вставки данных в БД", err)
	}

	return nil
}

// FindActive ищет пригодный к использованию токен: точное совпадение строки,
// revoked = false и срок действия не истёк. Одна атомарная проверка-чтение.
// Возвращает (nil, nil), если такой записи нет — различать "не найден" и
// "просрочен" наружу нельзя
func (r *TokenRepository) FindActive(ctx context.Context, exec sqlx.ExtContext, token string, now time.Time) (*model.RefreshToken, error) {
	query := `SELECT token, user_id, created_at, expires_at, revoked FROM refresh_tokens
				WHERE token = $1 AND revoked = FALSE AND expires_at > $2`

	refreshToken := &model.RefreshToken{}
	err := sqlx.GetContext(ctx, exec, refreshToken, query, token, now)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, util.LogError("[TokenRepo] ошибка при выполнении запроса", err)
	}

	return refreshToken, nil
}

// FindByTokenAndUser ищет запись токена конкретного пользователя.
// Возвращает (nil, nil), если записи нет или токен принадлежит другому
func (r *TokenRepository) FindByTokenAndUser(ctx context.Context, exec sqlx.ExtContext, token string, userID int64) (*model.RefreshToken, error) {
	query := `SELECT token, user_id, created_at, expires_at, revoked FROM refresh_tokens
				WHERE token = $1 AND user_id = $2`

	refreshToken := &model.RefreshToken{}
	err := sqlx.GetContext(ctx, exec, refreshToken, query, token, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, util.LogError("[TokenRepo] ошибка при выполнении запроса", err)
	}

	return refreshToken, nil
}

// RevokeRefreshToken помечает токен отозванным.
// UPDATE с условием revoked = FALSE — это compare-and-swap: из двух
// конкурентных ротаций одним токеном ровно одна увидит rowsAffected = 1.
// Возвращает, была ли запись переведена в revoked этим вызовом
func (r *TokenRepository) RevokeRefreshToken(ctx context.Context, exec sqlx.ExtContext, token string) (bool, error) {
	query := `UPDATE refresh_tokens SET revoked = TRUE WHERE token = $1 AND revoked = FALSE`

	result, err := exec.ExecContext(ctx, query, token)
	if err != nil {
		return false, util.LogError("[TokenRepo] не удалось отозвать refresh токен", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, util.LogError("[TokenRepo] не удалось проверить, отозван ли токен", err)
	}

	return rowsAffected > 0, nil
}

// RevokeAllByUser отзывает все живые токены пользователя одним UPDATE.
// Уже отозванные и просроченные записи не затрагивает
func (r *TokenRepository) RevokeAllByUser(ctx context.Context, exec sqlx.ExtContext, userID int64, now time.Time) error {
	query := `UPDATE refresh_tokens SET revoked = TRUE
				WHERE user_id = $1 AND revoked = FALSE AND expires_at > $2`

	if _, err := exec.ExecContext(ctx, query, userID, now); err != nil {
		return util.LogError("[TokenRepo] не удалось отозвать токены пользователя", err)
	}

	return nil
}

// DeleteExpiredByUser физически удаляет просроченные токены пользователя.
// Просроченные записи аудитной ценности не несут
func (r *TokenRepository) DeleteExpiredByUser(ctx context.Context, exec sqlx.ExtContext, userID int64, now time.Time) error {
	query := `DELETE FROM refresh_tokens WHERE user_id = $1 AND expires_at < $2`

	if _, err := exec.ExecContext(ctx, query, userID, now); err != nil {
		return util.LogError("[TokenRepo] не удалось удалить просроченные токены", err)
	}

	return nil
}

// ListActiveByUser возвращает живые токены пользователя, новые первыми.
// Вторичная сортировка по token даёт детерминированный порядок
// при совпадении created_at
func (r *TokenRepository) ListActiveByUser(ctx context.Context, exec sqlx.ExtContext, userID int64, now time.Time) ([]model.RefreshToken, error) {
	query := `SELECT token, user_id, created_at, expires_at, revoked FROM refresh_tokens
				WHERE user_id = $1 AND revoked = FALSE AND expires_at > $2
				ORDER BY created_at DESC, token DESC`

	var tokens []model.RefreshToken
	if err := sqlx.SelectContext(ctx, exec, &tokens, query, userID, now); err != nil {
		return nil, util.LogError("[TokenRepo] не удалось получить список токенов", err)
	}

	return tokens, nil
}

// DeleteTokens удаляет записи по списку значений токенов
func (r *TokenRepository) DeleteTokens(ctx context.Context, exec sqlx.ExtContext, tokens []string) error {
	if len(tokens) == 0 {
		return nil
	}

	query, args, err := sqlx.In(`DELETE FROM refresh_tokens WHERE token IN (?)`, tokens)
	if err != nil {
		return util.LogError("[TokenRepo] не удалось собрать запрос удаления", err)
	}

	query = exec.Rebind(query)
	if _, err := exec.ExecContext(ctx, query, args...); err != nil {
		return util.LogError("[TokenRepo] не удалось удалить токены", err)
	}

	return nil
}

// BeginTX открывает транзакцию для ротации: проверка, отзыв и вставка
// нового токена должны выполняться одним атомарным блоком
func (r *TokenRepository) BeginTX(ctx context.Context) (sqlx.ExtContext, func() error, func() error, error) {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, nil, nil, err
	}
	return tx, func() error { return tx.Rollback() }, func() error { return tx.Commit() }, nil
}
