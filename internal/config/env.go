// Package config provides shared configuration utilities.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// GetEnv returns the value of the environment variable named by the key,
// or fallback if the variable is not set.
func GetEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// GetEnvInt parses the variable as an integer. An unset or empty variable
// yields fallback; a malformed one is an error naming the key.
func GetEnvInt(key string, fallback int) (int, error) {
	value, ok := lookup(key)
	if !ok {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback, errors.Wrapf(err, "%s", key)
	}
	return n, nil
}

// GetEnvFloat parses the variable as a float64.
func GetEnvFloat(key string, fallback float64) (float64, error) {
	value, ok := lookup(key)
	if !ok {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback, errors.Wrapf(err, "%s", key)
	}
	return f, nil
}

// GetEnvDuration parses the variable with time.ParseDuration ("5s", "200ms").
func GetEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	value, ok := lookup(key)
	if !ok {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback, errors.Wrapf(err, "%s", key)
	}
	return d, nil
}

// GetEnvBool parses the variable with strconv.ParseBool.
func GetEnvBool(key string, fallback bool) (bool, error) {
	value, ok := lookup(key)
	if !ok {
		return fallback, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fallback, errors.Wrapf(err, "%s", key)
	}
	return b, nil
}

func lookup(key string) (string, bool) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	value = strings.TrimSpace(value)
	return value, value != ""
}
