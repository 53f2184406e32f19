package config

import (
	"net"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Host            string
	Port            int
	SecretKey       string
	DatabaseURL     string
	CredentialsFile string
	StatsBaseURL    string
	StatsTimeout    time.Duration
	AppEnv          string
	LogLevel        string
}

// Addr is the listen address built from HOST and HOST_PORT
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func Load() *Config {
	_ = godotenv.Load() // Ignore error if .env not found (e.g. prod)

	v := viper.New()
	v.SetDefault("HOST_PORT", 80)
	v.SetDefault("HOST", "0.0.0.0")
	v.SetDefault("SECRET_KEY", "random string")
	v.SetDefault("DATABASE_URL", "file:links.sqlite3")
	v.SetDefault("GOOGLE_APPLICATION_CREDENTIALS", "service-account-file.json")
	v.SetDefault("STATS_BASE_URL", "https://firebasedynamiclinks.googleapis.com")
	v.SetDefault("STATS_TIMEOUT", 10*time.Second)
	v.SetDefault("APP_ENV", "local")
	v.SetDefault("LOG_LEVEL", "info")
	v.AutomaticEnv()

	// Older deployments configured the store through the SQLAlchemy variable
	_ = v.BindEnv("DATABASE_URL", "DATABASE_URL", "SQLALCHEMY_DATABASE_URI")

	return &Config{
		Host:            v.GetString("HOST"),
		Port:            v.GetInt("HOST_PORT"),
		SecretKey:       v.GetString("SECRET_KEY"),
		DatabaseURL:     v.GetString("DATABASE_URL"),
		CredentialsFile: v.GetString("GOOGLE_APPLICATION_CREDENTIALS"),
		StatsBaseURL:    v.GetString("STATS_BASE_URL"),
		StatsTimeout:    v.GetDuration("STATS_TIMEOUT"),
		AppEnv:          v.GetString("APP_ENV"),
		LogLevel:        v.GetString("LOG_LEVEL"),
	}
}
