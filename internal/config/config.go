package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// App holds the runtime configuration loaded from environment variables.
type App struct {
	Env      string `yaml:"env" env:"APP_ENV" env-default:"dev"`
	HTTPPort string `yaml:"http_port" env:"HTTP_PORT" env-default:"8081"`

	// DatabaseURL is a sqlite file path or a postgres:// URL.
	DatabaseURL string `yaml:"database_url" env:"DATABASE_URL" env-default:"data/digikul.db"`
	DataDir     string `yaml:"data_dir" env:"DATA_DIR" env-default:"data"`
	RedisAddr   string `yaml:"redis_addr" env:"REDIS_ADDR"`

	JWTIssuer     string        `yaml:"jwt_issuer" env:"JWT_ISSUER" env-default:"digikul"`
	JWTSigningKey string        `yaml:"jwt_signing_key" env:"JWT_SIGNING_KEY" env-default:"dev-signing-secret-change"`
	SessionTTL    time.Duration `yaml:"session_ttl" env:"SESSION_TTL" env-default:"0s"`

	FaceServiceURL string `yaml:"face_service_url" env:"FACE_SERVICE_URL" env-default:"http://localhost:8000"`
	FaceSkip       bool   `yaml:"face_skip" env:"FACE_SKIP" env-default:"true"`
	CameraURL      string `yaml:"camera_url" env:"CAMERA_URL"`
	MaxFrames      int    `yaml:"max_attendance_frames" env:"MAX_ATTENDANCE_FRAMES" env-default:"20"`

	CloudinaryURL string `yaml:"cloudinary_url" env:"CLOUDINARY_URL"`

	RateLimitPerMin      int `yaml:"rate_limit_per_min" env:"RATE_LIMIT_PER_MIN" env-default:"120"`
	LoginRateLimitPerMin int `yaml:"login_rate_limit_per_min" env:"LOGIN_RATE_LIMIT_PER_MIN" env-default:"10"`

	LogLevel string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	LogPath  string `yaml:"log_path" env:"LOG_PATH"`

	SeedAdminUsername   string `yaml:"seed_admin_username" env:"SEED_ADMIN_USERNAME"`
	SeedAdminPassword   string `yaml:"seed_admin_password" env:"SEED_ADMIN_PASSWORD"`
	SeedStudentUsername string `yaml:"seed_student_username" env:"SEED_STUDENT_USERNAME"`
	SeedStudentPassword string `yaml:"seed_student_password" env:"SEED_STUDENT_PASSWORD"`
}

// Load returns application config. A .env file in the working directory is
// loaded first; CONFIG_PATH points at an optional YAML file whose values are
// overridden by the environment.
func Load() (App, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return App{}, fmt.Errorf("load .env: %w", err)
	}

	var cfg App
	var err error
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		err = cleanenv.ReadConfig(path, &cfg)
	} else {
		err = cleanenv.ReadEnv(&cfg)
	}
	if err != nil {
		return App{}, fmt.Errorf("read config: %w", err)
	}
	return cfg, cfg.validate()
}

func (a App) validate() error {
	if a.MaxFrames <= 0 {
		return fmt.Errorf("MAX_ATTENDANCE_FRAMES must be positive, got %d", a.MaxFrames)
	}
	if a.SessionTTL < 0 {
		return fmt.Errorf("SESSION_TTL must not be negative")
	}
	if a.Production() && a.JWTSigningKey == "dev-signing-secret-change" {
		return errors.New("JWT_SIGNING_KEY must be set in production")
	}
	return nil
}

// Production reports whether the app runs with production settings.
func (a App) Production() bool {
	env := strings.ToLower(a.Env)
	return env == "production" || env == "prod"
}

// Postgres reports whether DatabaseURL selects the postgres backend.
func (a App) Postgres() bool {
	return strings.HasPrefix(a.DatabaseURL, "postgres://") || strings.HasPrefix(a.DatabaseURL, "postgresql://")
}

// ReferenceDocPath is where the static reference document lives.
func (a App) ReferenceDocPath() string {
	return filepath.Join(a.DataDir, "resources", "grains_basics.pdf")
}
