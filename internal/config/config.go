package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/Harshitk-cp/abstractor/internal/sectionize"
)

// Load reads the .env file named by ABSTRACTOR_ENV (or .env by default),
// then the matching .secret sidecar if it exists.
// All config is flat env vars read via os.Getenv after loading.
func Load() error {
	envFile := os.Getenv("ABSTRACTOR_ENV")
	if envFile == "" {
		envFile = ".env"
	}

	// Missing files are fine; the environment may already be populated.
	_ = godotenv.Load(envFile)
	_ = godotenv.Load(envFile + ".secret")

	return nil
}

func intEnv(key string, def int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v <= 0 {
		return def
	}
	return v
}

func ServerPort() int {
	return intEnv("SERVER_PORT", 8080)
}

func ServerAddr() string {
	return fmt.Sprintf(":%d", ServerPort())
}

func DatabaseURL() string {
	return os.Getenv("DATABASE_URL")
}

func MigrationsPath() string {
	p := os.Getenv("MIGRATIONS_PATH")
	if p == "" {
		return "migrations"
	}
	return p
}

// RateLimitRPS returns requests per second per client.
// Defaults to 100 if not set.
func RateLimitRPS() float64 {
	rps, err := strconv.ParseFloat(os.Getenv("RATE_LIMIT_RPS"), 64)
	if err != nil || rps <= 0 {
		return 100
	}
	return rps
}

// RateLimitBurst defaults to 20 if not set.
func RateLimitBurst() int {
	return intEnv("RATE_LIMIT_BURST", 20)
}

// LogLevel returns the log level (debug, info, warn, error).
// Defaults to "info" if not set.
func LogLevel() string {
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		return "info"
	}
	return level
}

// PrecedenceFile is the optional YAML file overriding the aggregation lists.
func PrecedenceFile() string {
	return os.Getenv("PRECEDENCE_FILE")
}

// LookaheadLines is how many lines the sectionizer inspects after a heading.
func LookaheadLines() int {
	return intEnv("SECTION_LOOKAHEAD_LINES", 12)
}

// DuplicateSections selects how repeated headings merge: "concatenate"
// (default) or "last-wins".
func DuplicateSections() string {
	p := os.Getenv("SECTION_DUPLICATES")
	if p == "" {
		return "concatenate"
	}
	return p
}

// BatchWorkers bounds concurrent patients in batch runs.
func BatchWorkers() int {
	return intEnv("BATCH_WORKERS", 4)
}

// ReaggregateInterval is how often stale patients are re-resolved.
// Defaults to one minute.
func ReaggregateInterval() time.Duration {
	d, err := time.ParseDuration(os.Getenv("REAGGREGATE_INTERVAL"))
	if err != nil || d <= 0 {
		return time.Minute
	}
	return d
}

// SectionOptions builds sectionizer options from the section settings.
func SectionOptions() sectionize.Options {
	return sectionize.Options{
		LookaheadLines: LookaheadLines(),
		Duplicates:     sectionize.ParseDuplicatePolicy(DuplicateSections()),
	}
}
