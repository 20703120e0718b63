package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName                string
	AppEnv                 string
	AppPort                string
	DatabaseURL            string
	RedisURL               string
	JWTSecret              string
	AdminTokenTTL          time.Duration
	TeacherTokenTTL        time.Duration
	CloudinaryCloudName    string
	CloudinaryAPIKey       string
	CloudinaryAPISecret    string
	CloudinaryUploadFolder string
	OTPTTL                 time.Duration
	SMSAuthKey             string
	SMSSenderID            string
	SMSTemplateID          string
	SMSBaseURL             string
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// IsProduction reports whether the service runs with production semantics.
// Outside production the OTP flow accepts any code, so mobile builds can be
// tested without a live SMS channel.
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("KANASU")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Kanasu API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("cloudinary.folder", "kanasu/assessments")
	v.SetDefault("admin.token_ttl", "24h")
	v.SetDefault("teacher.token_ttl", "720h")
	v.SetDefault("otp.ttl", "10m")

	adminTTL, err := time.ParseDuration(v.GetString("admin.token_ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid admin token ttl: %w", err)
	}
	teacherTTL, err := time.ParseDuration(v.GetString("teacher.token_ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid teacher token ttl: %w", err)
	}
	otpTTL, err := time.ParseDuration(v.GetString("otp.ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid otp ttl: %w", err)
	}

	cfg := Config{
		AppName:                v.GetString("app.name"),
		AppEnv:                 v.GetString("app.env"),
		AppPort:                v.GetString("app.port"),
		DatabaseURL:            v.GetString("database.url"),
		RedisURL:               v.GetString("redis.url"),
		JWTSecret:              v.GetString("jwt.secret"),
		AdminTokenTTL:          adminTTL,
		TeacherTokenTTL:        teacherTTL,
		CloudinaryCloudName:    v.GetString("cloudinary.cloud_name"),
		CloudinaryAPIKey:       v.GetString("cloudinary.api_key"),
		CloudinaryAPISecret:    v.GetString("cloudinary.api_secret"),
		CloudinaryUploadFolder: v.GetString("cloudinary.folder"),
		OTPTTL:                 otpTTL,
		SMSAuthKey:             v.GetString("sms.auth_key"),
		SMSSenderID:            v.GetString("sms.sender_id"),
		SMSTemplateID:          v.GetString("sms.template_id"),
		SMSBaseURL:             v.GetString("sms.base_url"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	return cfg, nil
}
