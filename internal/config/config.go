package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	ServerPort string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	RedisAddr  string
	JWTSecret  string
	// RoomTTL is how long a room stays open before the inviter has to
	// extend it. A product knob, not a protocol constant.
	RoomTTL time.Duration
}

func Load() *Config {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "pairchat")
	v.SetDefault("DB_PASSWORD", "pairchat_dev_password")
	v.SetDefault("DB_NAME", "pairchat")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("JWT_SECRET", "dev-secret-change-me")
	v.SetDefault("ROOM_TTL_HOURS", 24)

	return &Config{
		ServerPort: v.GetString("SERVER_PORT"),
		DBHost:     v.GetString("DB_HOST"),
		DBPort:     v.GetString("DB_PORT"),
		DBUser:     v.GetString("DB_USER"),
		DBPassword: v.GetString("DB_PASSWORD"),
		DBName:     v.GetString("DB_NAME"),
		RedisAddr:  v.GetString("REDIS_ADDR"),
		JWTSecret:  v.GetString("JWT_SECRET"),
		RoomTTL:    time.Duration(v.GetInt("ROOM_TTL_HOURS")) * time.Hour,
	}
}
