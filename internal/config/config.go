package config

import (
	"os"
)

type Config struct {
	Port                 string
	GinMode              string
	DBDriver             string
	DBHost               string
	DBPort               string
	DBUser               string
	DBPassword           string
	DBName               string
	JWTSecret            string
	AdminInviteToken     string
	ClientURL            string
	CloudinaryCloudName  string
	CloudinaryAPIKey     string
	CloudinaryAPISecret  string
	EnforceAssigneeCheck bool
}

func Load() *Config {
	return &Config{
		Port:                 getEnv("PORT", "3000"),
		GinMode:              getEnv("GIN_MODE", "debug"),
		DBDriver:             getEnv("DB_DRIVER", "mysql"),
		DBHost:               getEnv("DB_HOST", "localhost"),
		DBPort:               getEnv("DB_PORT", "3306"),
		DBUser:               getEnv("DB_USER", "taskuser"),
		DBPassword:           getEnv("DB_PASSWORD", "taskpassword"),
		DBName:               getEnv("DB_NAME", "taskmanager"),
		JWTSecret:            getEnv("JWT_SECRET", "default-secret-key-change-me"),
		AdminInviteToken:     getEnv("ADMIN_INVITE_TOKEN", ""),
		ClientURL:            getEnv("CLIENT_URL", "http://localhost:5173"),
		CloudinaryCloudName:  getEnv("CLOUDINARY_CLOUD_NAME", ""),
		CloudinaryAPIKey:     getEnv("CLOUDINARY_API_KEY", ""),
		CloudinaryAPISecret:  getEnv("CLOUDINARY_API_SECRET", ""),
		EnforceAssigneeCheck: getEnv("ENFORCE_ASSIGNEE_CHECK", "") == "true",
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
