package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"floorplan-engine/internal/planner/models"

	"gopkg.in/yaml.v3"
)

// ============================================================
// Configuration
// ============================================================

type Config struct {
	Port           string
	Environment    string
	ReadTimeout    int
	WriteTimeout   int
	DBPath         string
	TolerancesPath string
	CORSOrigins    []string
}

// Load загружает конфигурацию из переменных окружения
func Load() *Config {
	return &Config{
		Port:           getEnv("PORT", "3000"),
		Environment:    getEnv("ENV", "development"),
		ReadTimeout:    getEnvAsInt("READ_TIMEOUT", 10),
		WriteTimeout:   getEnvAsInt("WRITE_TIMEOUT", 10),
		DBPath:         getEnv("PLANNER_DB_PATH", "data/db/planner.db"),
		TolerancesPath: getEnv("PLANNER_TOLERANCES", ""),
		CORSOrigins:    getEnvAsList("CORS_ORIGINS"),
	}
}

// Tolerances читает допуски движка из YAML. Пустой путь, значения по умолчанию,
// незаданные в файле поля тоже берутся по умолчанию.
func (c *Config) Tolerances() (models.Tolerances, error) {
	if c.TolerancesPath == "" {
		return models.DefaultTolerances(), nil
	}
	data, err := os.ReadFile(c.TolerancesPath)
	if err != nil {
		return models.Tolerances{}, fmt.Errorf("read tolerances: %w", err)
	}
	return ParseTolerances(data)
}

func ParseTolerances(data []byte) (models.Tolerances, error) {
	var tol models.Tolerances
	if err := yaml.Unmarshal(data, &tol); err != nil {
		return models.Tolerances{}, fmt.Errorf("parse tolerances: %w", err)
	}
	return tol.WithDefaults(), nil
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsList(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
