package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config - конфигурация CLI
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Audit    AuditConfig    `yaml:"audit"`
}

// DatabaseConfig - параметры подключения к БД
type DatabaseConfig struct {
	Type     string `yaml:"type"` // sqlite, postgres, mysql, mssql
	Host     string `yaml:"host,omitempty"`
	Port     int    `yaml:"port,omitempty"`
	Database string `yaml:"database"`
	User     string `yaml:"user,omitempty"`
	Password string `yaml:"password,omitempty"`
	Schema   string `yaml:"schema,omitempty"`
	SSLMode  string `yaml:"sslmode,omitempty"`
	MaxConns int    `yaml:"max_conns,omitempty"`
}

// AuditConfig - параметры audit журнала
type AuditConfig struct {
	Enabled bool   `yaml:"enabled"`
	File    string `yaml:"file,omitempty"`
}

// LoadConfig загружает конфигурацию из YAML файла.
// Переменные окружения вида ${VAR} разворачиваются до парсинга
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return &config, nil
}

// SaveConfig сохраняет конфигурацию в YAML файл
func SaveConfig(filename string, config *Config) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// CreateSampleConfig создает образец конфигурации для типа СУБД
func CreateSampleConfig(dbType string) *Config {
	config := &Config{
		Database: DatabaseConfig{Type: dbType},
		Audit: AuditConfig{
			Enabled: true,
			File:    "audit.log",
		},
	}

	switch dbType {
	case "postgres", "postgresql":
		config.Database.Host = "localhost"
		config.Database.Port = 5432
		config.Database.Database = "datafeed"
		config.Database.User = "postgres"
		config.Database.Password = "password"
		config.Database.Schema = "public"
		config.Database.SSLMode = "disable"

	case "mssql", "sqlserver":
		config.Database.Host = "localhost"
		config.Database.Port = 1433
		config.Database.Database = "datafeed"
		config.Database.User = "sa"
		config.Database.Password = "YourPassword123"

	case "sqlite":
		config.Database.Database = "datafeed.db"

	case "mysql":
		config.Database.Host = "localhost"
		config.Database.Port = 3306
		config.Database.Database = "datafeed"
		config.Database.User = "root"
		config.Database.Password = "password"
	}

	return config
}

// BuildDSN собирает строку подключения из конфигурации
func (c *DatabaseConfig) BuildDSN() string {
	switch c.Type {
	case "postgres", "postgresql":
		sslMode := c.SSLMode
		if sslMode == "" {
			sslMode = "disable"
		}
		return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
			c.User, c.Password, c.Host, c.Port, c.Database, sslMode)

	case "mssql", "sqlserver":
		return fmt.Sprintf("sqlserver://%s:%s@%s:%d?database=%s",
			c.User, c.Password, c.Host, c.Port, c.Database)

	case "sqlite":
		return c.Database

	case "mysql":
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
			c.User, c.Password, c.Host, c.Port, c.Database)

	default:
		return ""
	}
}

// NormalizedType приводит синонимы типа СУБД к каноническим именам фабрики
func (c *DatabaseConfig) NormalizedType() string {
	switch c.Type {
	case "postgresql":
		return "postgres"
	case "sqlserver":
		return "mssql"
	default:
		return c.Type
	}
}
