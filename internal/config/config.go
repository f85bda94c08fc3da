package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	MongoURI    string
	MongoDB     string
	RedisAddr   string
	HTTPPort    string
	CacheTTL    time.Duration
	TextSample  int // Max open-text values sampled per question
	TrailingWin int // Trailing window size for trend detection
}

func Load() *Config {
	return &Config{
		MongoURI:    getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:     getEnv("MONGO_DB", "byteneko"),
		RedisAddr:   getEnv("REDIS_ADDR", "localhost:6379"),
		HTTPPort:    getEnv("HTTP_PORT", "8080"),
		CacheTTL:    time.Duration(getEnvInt("ANALYSIS_CACHE_TTL_SECONDS", 3600)) * time.Second,
		TextSample:  getEnvInt("ANALYSIS_TEXT_SAMPLE", 150),
		TrailingWin: getEnvInt("ANALYSIS_TRAILING_WINDOW", 50),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultVal
}
