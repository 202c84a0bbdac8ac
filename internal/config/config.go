package config

import (
	"log"
	"os"
)

type Config struct {
	Port       string
	APIURL     string // base URL of the commerce backend API
	DBDSN      string // sqlite file for persisted sessions
	RedisAddr  string // optional; switches session storage to redis
	SessionKey string // hex key sealing tokens at rest
	LogFile    string
}

func Load() Config {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	apiURL := os.Getenv("API_URL")
	if apiURL == "" {
		// Production MUST set API_URL or every call silently targets localhost.
		apiURL = "http://localhost:4000/api"
	}
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		dsn = "mokolo.db" // sqlite file in project root
	}
	redisAddr := os.Getenv("REDIS_ADDR") // empty means sqlite storage
	sessionKey := os.Getenv("SESSION_KEY")
	logFile := os.Getenv("LOG_FILE")
	if logFile == "" {
		logFile = "./mokolo.log" // default log sink in project root
	}

	cfg := Config{Port: port, APIURL: apiURL, DBDSN: dsn, RedisAddr: redisAddr, SessionKey: sessionKey, LogFile: logFile}
	log.Printf("[config] PORT=%s API_URL=%s DB_DSN=%s REDIS_ADDR=%s LOG_FILE=%s", cfg.Port, cfg.APIURL, cfg.DBDSN, cfg.RedisAddr, cfg.LogFile)
	return cfg
}
