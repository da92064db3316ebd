package utils

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// GetenvDefault returns the variable k, or def when unset or empty.
func GetenvDefault(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func GetenvIntDefault(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func GetenvDurationDefault(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

// GetenvFlag treats a set variable as a switch. Being present turns it on,
// unless its value is a recognised false ("0", "false", "off", "no").
func GetenvFlag(k string) bool {
	v, ok := os.LookupEnv(k)
	if !ok {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "0", "false", "off", "no":
		return false
	}
	return true
}
