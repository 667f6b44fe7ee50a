package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	SearchURLTemplate string
	ReviewURLTemplate string

	MaxPlaces          int
	ListScrollAttempts int
	ListScrollStep     int
	ReviewScrollRounds int
	ReviewScrollStep   int
	ReviewCap          int
	MinReviewLength    int
	PageDownPresses    int
	MoreClicks         int

	TopKeywords        int
	SummaryKeywords    int
	ReviewFlowKeywords int
	Language           string
	StopwordsFile      string

	PageLoadTimeout time.Duration
	WaitTimeout     time.Duration
	ProbeTimeout    time.Duration
	PollInterval    time.Duration
	SettleDelay     time.Duration
	MoreClickDelay  time.Duration
	RateLimit       time.Duration

	PostgresEnabled  bool
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string
	MaxRetries       int

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisTTL      time.Duration

	OutputDir    string
	ReviewFormat string
	ChromeBin    string
	Headless     bool
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		SearchURLTemplate: getEnv("SEARCH_URL_TEMPLATE", "https://map.naver.com/v5/search/%s"),
		ReviewURLTemplate: getEnv("REVIEW_URL_TEMPLATE",
			"https://m.place.naver.com/restaurant/%s/review/visitor?entry=ple&reviewSort=recent"),

		MaxPlaces:          getEnvInt("MAX_PLACES", 10),
		ListScrollAttempts: getEnvInt("LIST_SCROLL_ATTEMPTS", 5),
		ListScrollStep:     getEnvInt("LIST_SCROLL_STEP", 300),
		ReviewScrollRounds: getEnvInt("REVIEW_SCROLL_ROUNDS", 3),
		ReviewScrollStep:   getEnvInt("REVIEW_SCROLL_STEP", 500),
		ReviewCap:          getEnvInt("REVIEW_CAP", 100),
		MinReviewLength:    getEnvInt("MIN_REVIEW_LENGTH", 5),
		PageDownPresses:    getEnvInt("PAGE_DOWN_PRESSES", 10),
		MoreClicks:         getEnvInt("MORE_CLICKS", 30),

		TopKeywords:        getEnvInt("TOP_KEYWORDS", 15),
		SummaryKeywords:    getEnvInt("SUMMARY_KEYWORDS", 20),
		ReviewFlowKeywords: getEnvInt("REVIEW_FLOW_KEYWORDS", 10),
		Language:           getEnv("ANALYZER_LANGUAGE", "ko"),
		StopwordsFile:      getEnv("STOPWORDS_FILE", ""),

		PageLoadTimeout: getEnvDuration("PAGE_LOAD_TIMEOUT_MS", 30000),
		WaitTimeout:     getEnvDuration("WAIT_TIMEOUT_MS", 15000),
		ProbeTimeout:    getEnvDuration("PROBE_TIMEOUT_MS", 3000),
		PollInterval:    getEnvDuration("POLL_INTERVAL_MS", 250),
		SettleDelay:     getEnvDuration("SETTLE_DELAY_MS", 1000),
		MoreClickDelay:  getEnvDuration("MORE_CLICK_DELAY_MS", 400),
		RateLimit:       getEnvDuration("RATE_LIMIT_MS", 1000),

		PostgresEnabled:  getEnvBool("POSTGRES_ENABLED", false),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "scraper"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "scraper123"),
		PostgresDB:       getEnv("POSTGRES_DB", "places_db"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		MaxRetries:       getEnvInt("MAX_RETRIES", 5),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		RedisTTL:      getEnvDuration("REDIS_TTL_MS", 7*24*60*60*1000),

		OutputDir:    getEnv("OUTPUT_DIR", "./output"),
		ReviewFormat: getEnv("REVIEW_FORMAT", "csv"),
		ChromeBin:    getEnv("CHROME_BIN", ""),
		Headless:     getEnvBool("HEADLESS", true),
	}
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(strings.TrimSpace(val))
		if err == nil {
			return b
		}
	}
	return fallback
}

// getEnvDuration reads a millisecond count.
func getEnvDuration(key string, fallbackMs int) time.Duration {
	return time.Duration(getEnvInt(key, fallbackMs)) * time.Millisecond
}
