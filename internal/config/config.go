package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App          AppConfig
	Database     DatabaseConfig
	Encyclopedia EncyclopediaConfig
	Speech       SpeechConfig
	Session      SessionConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	VoiceLogFilePath   string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	JwtSecret          string
	CalendarName       string
}

type DatabaseConfig struct {
	Connection string
	Verbose    bool
}

type EncyclopediaConfig struct {
	RestBaseURL string
	APIBaseURL  string
	UserAgent   string
	Timeout     time.Duration
	CacheDriver string // "memory" or "redis"
	CacheTTL    time.Duration
}

type SpeechConfig struct {
	TTSEndpoint string
	TTSToken    string
	TTSTimeout  time.Duration
	Lang        string
	Rate        float64
	Pitch       float64
	VoiceHint   string
}

type SessionConfig struct {
	TTL time.Duration
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			VoiceLogFilePath:   getEnv("VOICE_LOG_FILE_PATH", "voice.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			JwtSecret:          getEnv("JWT_SECRET", ""),
			CalendarName:       getEnv("CALENDAR_NAME", "Voice Assistant"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
			Verbose:    getEnvAsBool("DB_VERBOSE", false),
		},
		Encyclopedia: EncyclopediaConfig{
			RestBaseURL: getEnv("WIKI_REST_BASE_URL", "https://en.wikipedia.org/api/rest_v1"),
			APIBaseURL:  getEnv("WIKI_API_BASE_URL", "https://en.wikipedia.org/w/api.php"),
			UserAgent:   getEnv("WIKI_USER_AGENT", "voice-assistant-be/1.0 (calendar assistant)"),
			Timeout:     getEnvAsDuration("WIKI_TIMEOUT", 10*time.Second),
			CacheDriver: getEnv("KNOWLEDGE_CACHE_DRIVER", "memory"),
			CacheTTL:    getEnvAsDuration("KNOWLEDGE_CACHE_TTL", 24*time.Hour),
		},
		Speech: SpeechConfig{
			TTSEndpoint: getEnv("TTS_ENDPOINT", ""),
			TTSToken:    getEnv("TTS_TOKEN", ""),
			TTSTimeout:  getEnvAsDuration("TTS_TIMEOUT", 30*time.Second),
			Lang:        getEnv("VOICE_LANG", "en-US"),
			Rate:        getEnvAsFloat("VOICE_RATE", 1.0),
			Pitch:       getEnvAsFloat("VOICE_PITCH", 1.0),
			VoiceHint:   getEnv("VOICE_PREFERRED", "Google US English"),
		},
		Session: SessionConfig{
			TTL: getEnvAsDuration("SESSION_TTL", time.Hour),
		},
	}
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

// getEnvAsDuration accepts Go durations ("90s") or plain seconds ("90").
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	if secs := getEnvAsInt(key, -1); secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
