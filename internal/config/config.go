package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config carries every runtime setting of the service.
type Config struct {
	Env  string
	Port string

	StoragePath string

	GenerateBaseURL string
	GenerateAPIKey  string
	GenerateTimeout time.Duration
	PoseBaseURL     string
	SegmentBaseURL  string
	VisionTimeout   time.Duration

	MaxImageSizeMB int
	WorkImageSize  int

	QualityThreshold   float64
	MaxRetries         int
	PoseConfidence     float64
	SaveDebugArtifacts bool

	QueueSize   int
	PollTimeout time.Duration

	RateLimitPerMin   int
	ReadHeaderTimeout time.Duration
	ShutdownTimeout   time.Duration
}

// Load reads the environment, with .env files as a development convenience.
func Load() Config {
	// Env files are optional; a missing file is not an error.
	_ = godotenv.Load(".env", ".env.local")

	c := Config{
		Env:  getenv("APP_ENV", "development"),
		Port: getenv("PORT", "8080"),

		StoragePath: getenv("STORAGE_PATH", "./data"),

		GenerateBaseURL: getenv("GENERATE_BASE_URL", "https://api.nanobanana.com/v1"),
		GenerateAPIKey:  getenv("GENERATE_API_KEY", ""),
		GenerateTimeout: getenvDuration("GENERATE_TIMEOUT", 120*time.Second),
		PoseBaseURL:     getenv("POSE_BASE_URL", ""),
		SegmentBaseURL:  getenv("SEGMENT_BASE_URL", ""),
		VisionTimeout:   getenvDuration("VISION_TIMEOUT", 30*time.Second),

		MaxImageSizeMB: getenvInt("MAX_IMAGE_SIZE_MB", 10),
		WorkImageSize:  getenvInt("WORK_IMAGE_SIZE", 1536),

		QualityThreshold:   getenvFloat("QUALITY_THRESHOLD", 0.7),
		MaxRetries:         getenvInt("MAX_RETRIES", 2),
		PoseConfidence:     getenvFloat("POSE_CONFIDENCE", 0.5),
		SaveDebugArtifacts: getenvBool("SAVE_DEBUG_ARTIFACTS", false),

		QueueSize:   getenvInt("QUEUE_SIZE", 256),
		PollTimeout: getenvDuration("POLL_TIMEOUT", 2*time.Second),

		RateLimitPerMin:   getenvInt("RATE_LIMIT_PER_MIN", 60),
		ReadHeaderTimeout: getenvDuration("READ_HEADER_TIMEOUT", 10*time.Second),
		ShutdownTimeout:   getenvDuration("SHUTDOWN_TIMEOUT", 15*time.Second),
	}
	log.Printf("Config loaded (env=%s, port=%s)", c.Env, c.Port)
	return c
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		log.Printf("Invalid %s=%q, using %d", k, v, def)
	}
	return def
}

func getenvFloat(k string, def float64) float64 {
	if v := os.Getenv(k); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
		log.Printf("Invalid %s=%q, using %g", k, v, def)
	}
	return def
}

func getenvBool(k string, def bool) bool {
	if v := os.Getenv(k); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
		log.Printf("Invalid %s=%q, using %t", k, v, def)
	}
	return def
}

func getenvDuration(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		log.Printf("Invalid %s=%q, using %s", k, v, def)
	}
	return def
}
