package config

import "os"

type Config struct {
	Port        string
	DBPath      string
	Workers     int
	FilingsPath string
}

func Load() Config {
	return Config{
		Port:        getEnv("PORT", "8080"),
		DBPath:      getEnv("DB_PATH", "fundamentals.db"),
		Workers:     getEnvInt("WORKERS", 2),
		FilingsPath: getEnv("FILINGS_PATH", "configs/filings.yaml"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n := 0
	for _, c := range v {
		if c < '0' || c > '9' {
			return fallback
		}
		n = n*10 + int(c-'0')
	}
	return n
}
