package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"sync"

	"github.com/joho/godotenv"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// Config holds the application's configuration values.
type Config struct {
	AppName string `json:"appname"`
	AppEnv  string `json:"appenv"`
	AppPort uint16 `json:"appport"`
	GinMode string `json:"ginmode"`

	DBHost string `json:"dbhost"`
	DBPort uint16 `json:"dbport"`
	DBName string `json:"dbname"`
	DBUser string `json:"dbuser"`
	DBPass string `json:"dbpass"`

	// Token lifetimes. Must be overridden via env in real deployments
	// together with JWTSECRET.
	AccessTokenMinutes int `json:"access_token_minutes"`
	RefreshTokenDays   int `json:"refresh_token_days"`

	// Directory where uploaded pill photos are stored and served from.
	ImageDir string `json:"image_dir"`

	// Base URL of the detection inference service.
	DetectURL string `json:"detect_url"`
}

var config *Config
var once sync.Once

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOrDefault(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

// LoadConfig loads the environment variables from a .env file, and returns a singleton Config instance.
func LoadConfig() *Config {
	once.Do(func() {
		// A missing .env file is fine; variables may be set directly.
		if err := godotenv.Load(); err != nil {
			log.Printf("no .env file loaded: %v", err)
		}

		appPort, _ := strconv.ParseUint(envOrDefault("APPPORT", "5555"), 10, 16)
		dbPort, _ := strconv.ParseUint(envOrDefault("DBPORT", "3306"), 10, 16)

		config = &Config{
			AppName:            envOrDefault("APPNAME", "pillcare-backend"),
			AppEnv:             envOrDefault("APPENV", "development"),
			AppPort:            uint16(appPort),
			GinMode:            envOrDefault("GINMODE", "debug"),
			DBHost:             envOrDefault("DBHOST", "localhost"),
			DBPort:             uint16(dbPort),
			DBName:             envOrDefault("DBNAME", "pillcare"),
			DBUser:             os.Getenv("DBUSER"),
			DBPass:             os.Getenv("DBPASS"),
			AccessTokenMinutes: envIntOrDefault("ACCESS_TOKEN_EXPIRE_MINUTES", 30),
			RefreshTokenDays:   envIntOrDefault("REFRESH_TOKEN_EXPIRE_DAYS", 7),
			ImageDir:           envOrDefault("IMAGE_DIR", "original_images"),
			DetectURL:          os.Getenv("DETECT_URL"),
		}
	})
	return config
}

// ConnectMySQL establishes a connection to a MySQL database using the configuration values.
func ConnectMySQL() (*gorm.DB, error) {
	cfg := LoadConfig()
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true", cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	return db, nil
}
