package config

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/viper"
)

// Config хранит все настройки приложения
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Grader   GraderConfig
	Auth     AuthConfig
	Email    EmailConfig
	Media    MediaConfig
	CORS     CORSConfig
}

// ServerConfig содержит настройки HTTP сервера
type ServerConfig struct {
	Port         string
	ReadTimeout  int
	WriteTimeout int
}

// DatabaseConfig содержит настройки подключения к PostgreSQL
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig содержит унифицированные настройки подключения к Redis
// Поддерживает режимы: single, sentinel, cluster
type RedisConfig struct {
	// Mode: Режим работы Redis ("single", "sentinel", "cluster"). По умолчанию "single".
	Mode string `mapstructure:"mode"`

	// Addrs: Список адресов Redis (хост:порт). Используется для всех режимов.
	// Для 'single', если не пуст, используется первый адрес из списка.
	Addrs []string `mapstructure:"addrs"`

	// Addr: Альтернативный адрес для режима 'single'.
	// Используется, если Mode="single" и Addrs пустой.
	Addr string `mapstructure:"addr"`

	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`

	// MasterName: Имя мастер-сервера Redis (только для режима "sentinel")
	MasterName string `mapstructure:"master_name"`
}

// GraderConfig содержит настройки LLM-оценщика свободных текстовых ответов.
// Пустой APIKey полностью отключает оценщик: контроллер переходит на
// локальное сравнение строк.
type GraderConfig struct {
	APIKey     string `mapstructure:"api_key"`
	Model      string `mapstructure:"model"`
	BaseURL    string `mapstructure:"base_url"`
	TimeoutSec int    `mapstructure:"timeout_sec"`
	// VerdictTTLHrs: Время жизни закешированного вердикта в Redis (часы)
	VerdictTTLHrs int `mapstructure:"verdict_ttl_hrs"`
}

// AuthConfig содержит настройки аутентификации административного API
type AuthConfig struct {
	// JWTSecret: Секрет для подписи HS256 токенов администратора
	JWTSecret string `mapstructure:"jwt_secret"`
	// AdminPasswordHash: bcrypt-хеш пароля администратора.
	// Если пуст, административное API работает без аутентификации (dev-режим).
	AdminPasswordHash string `mapstructure:"admin_password_hash"`
	TokenTTLHrs       int    `mapstructure:"token_ttl_hrs"`
}

// EmailConfig содержит настройки отправки итоговых отчетов через Resend
type EmailConfig struct {
	ResendAPIKey string `mapstructure:"resend_api_key"`
	FromEmail    string `mapstructure:"from_email"`
	// ReportTo: Адрес, на который отправляется итоговая таблица после завершения сессии
	ReportTo string `mapstructure:"report_to"`
}

// MediaConfig содержит настройки хранения загруженных медиафайлов
type MediaConfig struct {
	// Root: Корневая директория для изображений и аудио вопросов
	Root string `mapstructure:"root"`
	// MaxUploadMB: Лимит размера одного файла в мегабайтах
	MaxUploadMB int `mapstructure:"max_upload_mb"`
}

// CORSConfig содержит настройки CORS и проверки Origin для WebSocket
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// PostgresConnectionString формирует строку подключения к PostgreSQL
func (d *DatabaseConfig) PostgresConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// Load загружает конфигурацию из файла
func Load(configPath string) (*Config, error) {
	vip := viper.New() // Используем новый экземпляр Viper, чтобы избежать глобального состояния

	// 1. Значения по умолчанию
	vip.SetDefault("server.port", "8080")
	vip.SetDefault("grader.model", "gpt-4o-mini")
	vip.SetDefault("grader.base_url", "https://api.openai.com/v1")
	vip.SetDefault("grader.timeout_sec", 5)
	vip.SetDefault("grader.verdict_ttl_hrs", 24)
	vip.SetDefault("auth.token_ttl_hrs", 12)
	vip.SetDefault("media.root", "media")
	vip.SetDefault("media.max_upload_mb", 20)

	// 2. Привязываем переменные окружения ЯВНО
	// Привязка для секции Database
	vip.BindEnv("database.host", "DATABASE_HOST")
	vip.BindEnv("database.port", "DATABASE_PORT")
	vip.BindEnv("database.user", "DATABASE_USER")
	vip.BindEnv("database.password", "DATABASE_PASSWORD")
	vip.BindEnv("database.dbname", "DATABASE_DBNAME")
	vip.BindEnv("database.sslmode", "DATABASE_SSLMODE")

	// Привязка для секции Redis
	vip.BindEnv("redis.mode", "REDIS_MODE")
	vip.BindEnv("redis.addrs", "REDIS_ADDRS") // Для массива строк
	vip.BindEnv("redis.addr", "REDIS_ADDR")   // Для одиночной строки
	vip.BindEnv("redis.password", "REDIS_PASSWORD")
	vip.BindEnv("redis.db", "REDIS_DB")
	vip.BindEnv("redis.master_name", "REDIS_MASTER_NAME")

	// Привязка для секции Grader
	vip.BindEnv("grader.api_key", "OPENAI_API_KEY")
	vip.BindEnv("grader.model", "GRADER_MODEL")
	vip.BindEnv("grader.base_url", "GRADER_BASE_URL")
	vip.BindEnv("grader.timeout_sec", "GRADER_TIMEOUT_SEC")

	// Привязка для секции Auth
	vip.BindEnv("auth.jwt_secret", "AUTH_JWT_SECRET")
	vip.BindEnv("auth.admin_password_hash", "AUTH_ADMIN_PASSWORD_HASH")
	vip.BindEnv("auth.token_ttl_hrs", "AUTH_TOKEN_TTL_HRS")

	// Привязка для секции Email
	vip.BindEnv("email.resend_api_key", "RESEND_API_KEY")
	vip.BindEnv("email.from_email", "EMAIL_FROM")
	vip.BindEnv("email.report_to", "EMAIL_REPORT_TO")

	// Привязка для Server и Media
	vip.BindEnv("server.port", "SERVER_PORT")
	vip.BindEnv("media.root", "MEDIA_ROOT")

	// 3. Устанавливаем путь к файлу конфигурации
	if configPath != "" {
		vip.SetConfigFile(configPath)
		// 4. Пытаемся прочитать файл конфигурации (не страшно, если его нет, т.к. есть BindEnv)
		if err := vip.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); ok {
				log.Printf("Файл конфигурации '%s' не найден, используются переменные окружения/умолчания.", configPath)
			} else {
				log.Printf("Предупреждение: не удалось прочитать файл конфигурации '%s': %v", configPath, err)
			}
		}
	}

	// 5. Анмаршалим конфигурацию (Viper объединит значения из файла и привязанных env vars)
	var cfg Config
	if err := vip.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 6. Логирование конфигурации (только в debug режиме)
	if os.Getenv("GIN_MODE") != "release" {
		log.Printf("--- Загруженные значения конфигурации ---")
		log.Printf("Database Host: %s", cfg.Database.Host)
		log.Printf("Database Port: %s", cfg.Database.Port)
		log.Printf("Database Name: %s", cfg.Database.DBName)
		log.Printf("Redis Addr: %s", cfg.Redis.Addr)
		log.Printf("Redis Mode: %s", cfg.Redis.Mode)
		log.Printf("Grader API Key Set: %t", cfg.Grader.APIKey != "")
		log.Printf("Grader Model: %s", cfg.Grader.Model)
		log.Printf("Admin Auth Enabled: %t", cfg.Auth.AdminPasswordHash != "")
		log.Printf("Resend API Key Set: %t", cfg.Email.ResendAPIKey != "")
		log.Printf("Server Port: %s", cfg.Server.Port)
		log.Printf("-----------------------------------------")
	}

	// 7. Проверка обязательных параметров
	if cfg.Database.Host == "" || cfg.Database.DBName == "" || cfg.Database.User == "" {
		return nil, fmt.Errorf("database configuration (host, dbname, user) is incomplete in config (check DATABASE_HOST, DATABASE_DBNAME, DATABASE_USER env vars)")
	}
	if cfg.Auth.AdminPasswordHash != "" && cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("auth.jwt_secret is required when admin_password_hash is set (check AUTH_JWT_SECRET env var)")
	}
	ginMode := vip.GetString("GIN_MODE")
	if ginMode != "debug" && cfg.Database.Password == "" {
		return nil, fmt.Errorf("database password is required in production mode (check DATABASE_PASSWORD env var)")
	}

	return &cfg, nil
}
