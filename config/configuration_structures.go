package config

import "github.com/aws/aws-sdk-go-v2/service/s3"

type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type S3Config struct {
	Bucket   string `yaml:"bucket"`
	Client   *s3.Client
	Region   string `yaml:"region"`
	Endpoint string `yaml:"endpoint"`
	Local    bool   `yaml:"local"`
}

type JWTConfig struct {
	SecretKey               string `yaml:"secret_key"`
	Algorithm               string `yaml:"algorithm"`
	AccessTokenTTL          string `yaml:"access_token_ttl"`
	RefreshTokenTTL         string `yaml:"refresh_token_ttl"`
	MaxRefreshTokensPerUser int    `yaml:"max_refresh_tokens_per_user"`
}

// MLConfig : endpoint сервиса инференса модели распознавания болезней
type MLConfig struct {
	Endpoint string `yaml:"endpoint"`
	Timeout  string `yaml:"timeout"`
}

// GenAIConfig : endpoint генеративной модели для чат-бота
type GenAIConfig struct {
	Endpoint string `yaml:"endpoint"`
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`
	Timeout  string `yaml:"timeout"`
}

type TTL struct {
	// PredictionCache : время жизни результата предсказания в Redis (секунды)
	PredictionCache int `yaml:"prediction_cache"`
	// PresignURL : время жизни presigned-ссылки на снимок в S3 (секунды)
	PresignURL int `yaml:"presign_url"`
}
