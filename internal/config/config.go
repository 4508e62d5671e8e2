package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type DB struct {
	DbHOST         string
	DbPORT         string
	DbUSER         string
	DbPASSWORD     string
	DbNAME         string
	DbSSLMODE      string
	MaxOpenConns   int
	MaxIdleConns   int
	MigrationsDir  string
	StatementLimit time.Duration
	LockTimeout    time.Duration
}

type MinIO struct {
	Endpoint   string
	AccessKey  string
	SecretKey  string
	BucketName string
	UseSSL     bool
	Region     string
	PublicURL  string
}

type JWT struct {
	AccessSecret         string
	RefreshSecret        string
	AccessTokenDuration  time.Duration
	RefreshTokenDuration time.Duration
}

type Mail struct {
	Driver    string
	From      string
	AWSRegion string
	ClientURL string
}

type Config struct {
	ServerPort    int
	DB            DB
	MinIO         MinIO
	JWT           JWT
	Mail          Mail
	BcryptCost    int
	MaxUploadSize int64
	CORSOrigin    string
	CookieSecure  bool
}

func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return fallback
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// parseDuration accepts everything time.ParseDuration does plus a whole-day
// suffix ("60d"), which the refresh token lifetime is usually written in.
func parseDuration(value string, fallback time.Duration) time.Duration {
	if days, ok := strings.CutSuffix(value, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil || n <= 0 {
			return fallback
		}
		return time.Duration(n) * 24 * time.Hour
	}

	duration, err := time.ParseDuration(value)
	if err != nil || duration <= 0 {
		return fallback
	}
	return duration
}

func parseMaxUploadSize(value string) int64 {
	size, err := strconv.ParseInt(value, 10, 64)
	if err != nil || size <= 0 {
		return 10 * 1024 * 1024
	}
	return size
}

func LoadDB() DB {
	return DB{
		DbHOST:         getEnv("DB_HOST", "localhost"),
		DbPORT:         getEnv("DB_PORT", "5432"),
		DbUSER:         getEnv("DB_USER", "postgres"),
		DbPASSWORD:     getEnv("DB_PASSWORD", "password"),
		DbNAME:         getEnv("DB_NAME", "quizbook"),
		DbSSLMODE:      getEnv("DB_SSLMODE", "disable"),
		MaxOpenConns:   getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
		MaxIdleConns:   getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
		MigrationsDir:  getEnv("MIGRATIONS_DIR", "migrations"),
		StatementLimit: parseDuration(getEnv("DB_STATEMENT_TIMEOUT", "30s"), 30*time.Second),
		LockTimeout:    parseDuration(getEnv("DB_LOCK_TIMEOUT", "4s"), 4*time.Second),
	}
}

func LoadMinIO() MinIO {
	return MinIO{
		Endpoint:   getEnv("MINIO_ENDPOINT", "localhost:9000"),
		AccessKey:  getEnv("MINIO_ACCESS_KEY", "minioadmin"),
		SecretKey:  getEnv("MINIO_SECRET_KEY", "minioadmin"),
		BucketName: getEnv("MINIO_BUCKET_NAME", "images"),
		UseSSL:     getEnvBool("MINIO_USE_SSL", false),
		Region:     getEnv("MINIO_REGION", "us-east-1"),
		PublicURL:  strings.TrimSuffix(getEnv("MINIO_PUBLIC_URL", "http://localhost:9000"), "/"),
	}
}

func LoadJWT() JWT {
	return JWT{
		AccessSecret:         getEnv("JWT_ACCESS_SECRET", ""),
		RefreshSecret:        getEnv("JWT_REFRESH_SECRET", ""),
		AccessTokenDuration:  parseDuration(getEnv("ACCESS_TOKEN_DURATION", "1h"), time.Hour),
		RefreshTokenDuration: parseDuration(getEnv("REFRESH_TOKEN_DURATION", "60d"), 60*24*time.Hour),
	}
}

func LoadMail() Mail {
	return Mail{
		Driver:    getEnv("MAIL_DRIVER", "log"),
		From:      getEnv("MAIL_FROM", "no-reply@quizbook.local"),
		AWSRegion: getEnv("AWS_REGION", "us-east-1"),
		ClientURL: strings.TrimSuffix(getEnv("CLIENT_URL", "http://localhost:3000"), "/"),
	}
}

func LoadConfig() *Config {
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	return &Config{
		ServerPort:    getEnvAsInt("SERVER_PORT", 8080),
		DB:            LoadDB(),
		MinIO:         LoadMinIO(),
		JWT:           LoadJWT(),
		Mail:          LoadMail(),
		BcryptCost:    getEnvAsInt("BCRYPT_COST", 10),
		MaxUploadSize: parseMaxUploadSize(getEnv("MAX_UPLOAD_SIZE", "10485760")),
		CORSOrigin:    getEnv("CORS_ORIGIN", "http://localhost:3000"),
		CookieSecure:  getEnvBool("COOKIE_SECURE", false),
	}
}

// Validate reports the settings the server cannot start without.
func (c *Config) Validate() error {
	if c.JWT.AccessSecret == "" {
		return fmt.Errorf("JWT_ACCESS_SECRET is not set")
	}
	if c.JWT.RefreshSecret == "" {
		return fmt.Errorf("JWT_REFRESH_SECRET is not set")
	}
	return nil
}
