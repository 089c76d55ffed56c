// Package config provides common configuration utilities

package config

import (
	"bufio"
	"os"
	"strings"
)

// ReadEnvFile reads a .env style file (KEY=VALUE, # comments)
func ReadEnvFile(path string) map[string]string {
	env := make(map[string]string)
	f, err := os.Open(path)
	if err != nil {
		return env
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		value := strings.Trim(strings.TrimSpace(parts[1]), `"'`)
		env[key] = value
	}
	return env
}

// LoadEnvFile sets variables from a .env file into the process environment.
// Existing environment variables win.
func LoadEnvFile(path string) {
	for k, v := range ReadEnvFile(path) {
		if os.Getenv(k) == "" {
			os.Setenv(k, v)
		}
	}
}
