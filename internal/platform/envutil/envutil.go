package envutil

import (
	"os"
	"strconv"
	"strings"

	"github.com/yungbote/gdelt-dashboard/internal/platform/logger"
)

func String(key, defaultVal string, log *logger.Logger) string {
	if log != nil {
		log = log.With("env_var", key)
	}
	val, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(val) == "" {
		if log != nil {
			log.Debug("Environment variable not found, using default", "default", defaultVal)
		}
		return defaultVal
	}
	return strings.TrimSpace(val)
}

func Int(key string, defaultVal int, log *logger.Logger) int {
	if log != nil {
		log = log.With("env_var", key)
	}
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(raw)
	if err != nil {
		if log != nil {
			log.Warn("Environment variable could not be parsed as int, using default", "provided", raw, "default", defaultVal, "error", err)
		}
		return defaultVal
	}
	return i
}

func Bool(key string, defaultVal bool) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "t", "true", "y", "yes", "on":
		return true
	case "0", "f", "false", "n", "no", "off":
		return false
	default:
		return defaultVal
	}
}

func Float(key string, defaultVal float64, log *logger.Logger) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		if log != nil {
			log.Warn("Environment variable could not be parsed as float, using default", "env_var", key, "provided", raw, "default", defaultVal)
		}
		return defaultVal
	}
	return f
}

// List splits a comma separated value, dropping blanks.
func List(key string, defaultVal []string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultVal
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
