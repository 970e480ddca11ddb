// Package config loads application configuration from environment variables.
package config

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
	"strings"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  Required values are enforced by must(); the
// rest fall back to defaults suitable for local development.
type Config struct {
	Env          string // application environment (e.g. "dev", "prod")
	Port         string // HTTP port to listen on
	DBUser       string // database username
	DBPass       string // database password (optional)
	DBHost       string // database host address
	DBPort       string // database port number
	DBName       string // database name
	JWTSecret    string // secret used to sign JWTs
	AccessTTLMin int    // access token time-to-live in minutes
	BcryptCost   int    // bcrypt cost for password hashing

	DBAutoMigrate bool     // create tables on startup when missing
	AMQPURL       string   // RabbitMQ URL; empty keeps notifications in-process
	NotifyWorkers int      // goroutines delivering notification tasks
	NotifyBuffer  int      // queued notification tasks before new ones are dropped
	CORSOrigins   []string // allowed browser origins
}

// Load reads configuration values from environment variables and returns a
// Config.  Missing required variables cause the program to exit with a
// fatal log message.
func Load() Config {
	return Config{
		Env:           must("APP_ENV"),
		Port:          must("APP_PORT"),
		DBUser:        must("DB_USER"),
		DBPass:        os.Getenv("DB_PASS"), // empty allowed
		DBHost:        must("DB_HOST"),
		DBPort:        must("DB_PORT"),
		DBName:        must("DB_NAME"),
		DBAutoMigrate: envBool("DB_AUTO_MIGRATE", false),
		JWTSecret:     must("JWT_SECRET"),
		AccessTTLMin:  clampTTL(mustInt("ACCESS_TOKEN_TTL_MIN")),
		BcryptCost:    mustInt("BCRYPT_COST"),
		AMQPURL:       firstNonEmpty(os.Getenv("AMQP_URL"), os.Getenv("RABBITMQ_URL")),
		NotifyWorkers: envInt("NOTIFY_WORKERS", 2),
		NotifyBuffer:  envInt("NOTIFY_BUFFER", 256),
		CORSOrigins:   splitList(envStr("CORS_ORIGINS", "*")),
	}
}

// IsDev reports whether the application runs in a development environment.
func (c Config) IsDev() bool {
	switch strings.ToLower(c.Env) {
	case "dev", "development", "local":
		return true
	}
	return false
}

// clampTTL keeps access tokens between one hour and one day.
func clampTTL(min int) int {
	if min < 60 {
		return 60
	}
	if min > 24*60 {
		return 24 * 60
	}
	return min
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an integer.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
