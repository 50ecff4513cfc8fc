package env

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"smart-apply/internal/application/port/output"

	"github.com/joho/godotenv"
)

var _ output.ConfigPort = (*EnvService)(nil)

// EnvService reads secrets (API keys, credentials) from the process environment after loading .env files.
type EnvService struct {
	loaded []string
}

// NewEnvService loads dir/.env and then dir/.env.<APP_ENV>, the latter overriding. Missing files are fine.
func NewEnvService(dir string, logger output.LoggerPort) (*EnvService, error) {
	appEnv := os.Getenv("APP_ENV")
	if appEnv == "" {
		appEnv = "dev"
	}

	svc := &EnvService{}
	files := []struct {
		name     string
		override bool
	}{
		{".env", false},
		{".env." + appEnv, true},
	}
	for _, f := range files {
		path := f.name
		if dir != "" {
			path = dir + string(os.PathSeparator) + f.name
		}

		load := godotenv.Load
		if f.override {
			load = godotenv.Overload
		}
		if err := load(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				logger.Debug("No env file", "path", path)
				continue
			}
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
		svc.loaded = append(svc.loaded, path)
	}

	logger.Info("Environment loaded", "app_env", appEnv, "files", svc.loaded)
	return svc, nil
}

func (e *EnvService) Loaded() []string {
	return e.loaded
}

func (e *EnvService) Get(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

// MustGet panics on a missing key; use it only where the value is required to start.
func (e *EnvService) MustGet(key string) string {
	val := e.Get(key)
	if val == "" {
		panic(fmt.Sprintf("ENV %s is missing", key))
	}
	return val
}

func (e *EnvService) GetWithDefault(key string, defaultValue string) string {
	if val := e.Get(key); val != "" {
		return val
	}
	return defaultValue
}

func (e *EnvService) GetBool(key string, defaultValue bool) bool {
	val := e.Get(key)
	if val == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func (e *EnvService) GetInt(key string, defaultValue int) int {
	val := e.Get(key)
	if val == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return parsed
}
