package utils

import (
	"os"
	"strconv"
	"time"

	"github.com/stemtrack/cartline-backend/internal/pkg/logger"
)

func GetEnv(key, defaultVal string, log *logger.Logger) string {
	if log != nil {
		log = log.With("env_var", key)
	}
	val, ok := os.LookupEnv(key)
	if !ok {
		if log != nil {
			log.Debug("Environment variable not found, using default", "default", defaultVal)
		}
		return defaultVal
	}
	return val
}

func GetEnvAsInt(key string, defaultVal int, log *logger.Logger) int {
	valStr, ok := os.LookupEnv(key)
	if !ok {
		return defaultVal
	}
	i, err := strconv.Atoi(valStr)
	if err != nil {
		if log != nil {
			log.Warn("Environment variable is not an int, using default",
				"env_var", key, "value", valStr, "default", defaultVal)
		}
		return defaultVal
	}
	return i
}

func GetEnvAsBool(key string, defaultVal bool, log *logger.Logger) bool {
	valStr, ok := os.LookupEnv(key)
	if !ok {
		return defaultVal
	}
	b, err := strconv.ParseBool(valStr)
	if err != nil {
		if log != nil {
			log.Warn("Environment variable is not a bool, using default",
				"env_var", key, "value", valStr, "default", defaultVal)
		}
		return defaultVal
	}
	return b
}

// GetEnvAsMillis reads an integer number of milliseconds.
func GetEnvAsMillis(key string, defaultVal time.Duration, log *logger.Logger) time.Duration {
	ms := GetEnvAsInt(key, int(defaultVal/time.Millisecond), log)
	return time.Duration(ms) * time.Millisecond
}
