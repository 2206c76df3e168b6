// Package config provides typed process configuration for the task router:
// hardcoded defaults, overridden by a YAML file, overridden by environment
// variables.
package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Config is the full process configuration.
type Config struct {
	Server        ServerConfig        `koanf:"server" json:"server"`
	Session       SessionConfig       `koanf:"session" json:"session"`
	LLM           LLMConfig           `koanf:"llm" json:"llm"`
	FAQ           FAQConfig           `koanf:"faq" json:"faq"`
	Search        SearchConfig        `koanf:"search" json:"search"`
	Email         EmailConfig         `koanf:"email" json:"email"`
	Calendar      CalendarConfig      `koanf:"calendar" json:"calendar"`
	Observability ObservabilityConfig `koanf:"observability" json:"observability"`
	Log           LogConfig           `koanf:"log" json:"log"`
}

// ServerConfig holds the HTTP surface settings.
type ServerConfig struct {
	HTTPAddr               string `koanf:"http_addr" json:"http_addr"`
	ShutdownTimeoutSeconds int    `koanf:"shutdown_timeout_seconds" json:"shutdown_timeout_seconds"`
}

// SessionConfig holds session-store settings. An empty RedisAddr selects
// the in-process store.
type SessionConfig struct {
	MaxHistory    int    `koanf:"max_history" json:"max_history"`
	RedisAddr     string `koanf:"redis_addr" json:"redis_addr"`
	RedisPassword string `koanf:"redis_password" json:"-"`
	RedisDB       int    `koanf:"redis_db" json:"redis_db"`
}

// LLMConfig holds text-model settings.
type LLMConfig struct {
	APIKey         string  `koanf:"api_key" json:"-"`
	Model          string  `koanf:"model" json:"model"`
	EmbedModel     string  `koanf:"embed_model" json:"embed_model"`
	BaseURL        string  `koanf:"base_url" json:"base_url"`
	TimeoutSeconds int     `koanf:"timeout_seconds" json:"timeout_seconds"`
	Temperature    float64 `koanf:"temperature" json:"temperature"`
}

// FAQConfig holds FAQ vector-lookup settings.
type FAQConfig struct {
	Enabled     bool   `koanf:"enabled" json:"enabled"`
	PersistPath string `koanf:"persist_path" json:"persist_path"`
	Collection  string `koanf:"collection" json:"collection"`
	SeedPath    string `koanf:"seed_path" json:"seed_path"`
}

// SearchConfig holds web-search settings.
type SearchConfig struct {
	Enabled        bool `koanf:"enabled" json:"enabled"`
	MaxResults     int  `koanf:"max_results" json:"max_results"`
	TimeoutSeconds int  `koanf:"timeout_seconds" json:"timeout_seconds"`
}

// DepartmentConfig is one support-email destination.
type DepartmentConfig struct {
	Key          string `koanf:"key" json:"key"`
	Name         string `koanf:"name" json:"name"`
	Email        string `koanf:"email" json:"email"`
	ResponseTime string `koanf:"response_time" json:"response_time"`
}

// EmailConfig holds SMTP transport settings and the department
// directory.
type EmailConfig struct {
	Enabled     bool               `koanf:"enabled" json:"enabled"`
	SMTPHost    string             `koanf:"smtp_host" json:"smtp_host"`
	SMTPPort    int                `koanf:"smtp_port" json:"smtp_port"`
	Sender      string             `koanf:"sender" json:"sender"`
	Password    string             `koanf:"password" json:"-"`
	Departments []DepartmentConfig `koanf:"departments" json:"departments"`
}

// CalendarConfig shapes generated study plans.
type CalendarConfig struct {
	PeriodsPerDay int    `koanf:"periods_per_day" json:"periods_per_day"`
	PeriodMinutes int    `koanf:"period_minutes" json:"period_minutes"`
	BreakMinutes  int    `koanf:"break_minutes" json:"break_minutes"`
	StartTime     string `koanf:"start_time" json:"start_time"`
	WorkDays      int    `koanf:"work_days" json:"work_days"`
}

// ObservabilityConfig holds tracing settings. Metrics are always on.
type ObservabilityConfig struct {
	ServiceName    string `koanf:"service_name" json:"service_name"`
	TracingEnabled bool   `koanf:"tracing_enabled" json:"tracing_enabled"`
	OTLPEndpoint   string `koanf:"otlp_endpoint" json:"otlp_endpoint"`
}

// LogConfig holds zap logger settings.
type LogConfig struct {
	Level       string `koanf:"level" json:"level"`
	Development bool   `koanf:"development" json:"development"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPAddr:               ":8080",
			ShutdownTimeoutSeconds: 10,
		},
		Session: SessionConfig{
			MaxHistory: 20,
			RedisAddr:  "",
			RedisDB:    0,
		},
		LLM: LLMConfig{
			Model:          "gemini-2.0-flash",
			EmbedModel:     "text-embedding-004",
			BaseURL:        "https://generativelanguage.googleapis.com/v1beta",
			TimeoutSeconds: 30,
			Temperature:    0.1,
		},
		FAQ: FAQConfig{
			Enabled:    true,
			Collection: "school_faq",
		},
		Search: SearchConfig{
			Enabled:        true,
			MaxResults:     5,
			TimeoutSeconds: 15,
		},
		Email: EmailConfig{
			Enabled:  true,
			SMTPHost: "smtp.gmail.com",
			SMTPPort: 587,
		},
		Calendar: CalendarConfig{
			PeriodsPerDay: 6,
			PeriodMinutes: 45,
			BreakMinutes:  15,
			StartTime:     "07:00",
			WorkDays:      6,
		},
		Observability: ObservabilityConfig{
			ServiceName:    "supportcore",
			TracingEnabled: false,
			OTLPEndpoint:   "localhost:4317",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks cross-field constraints. It is called once at load
// time; components can then trust the values.
func (c *Config) Validate() error {
	if c.Server.HTTPAddr == "" {
		return fmt.Errorf("server.http_addr must not be empty")
	}
	if c.Server.ShutdownTimeoutSeconds <= 0 {
		return fmt.Errorf("server.shutdown_timeout_seconds must be positive, got %d", c.Server.ShutdownTimeoutSeconds)
	}
	if c.Session.MaxHistory <= 0 {
		return fmt.Errorf("session.max_history must be positive, got %d", c.Session.MaxHistory)
	}
	if c.LLM.TimeoutSeconds <= 0 {
		return fmt.Errorf("llm.timeout_seconds must be positive, got %d", c.LLM.TimeoutSeconds)
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return fmt.Errorf("llm.temperature must be in [0, 2], got %g", c.LLM.Temperature)
	}
	if c.Search.MaxResults <= 0 {
		return fmt.Errorf("search.max_results must be positive, got %d", c.Search.MaxResults)
	}
	if c.Email.SMTPPort <= 0 || c.Email.SMTPPort > 65535 {
		return fmt.Errorf("email.smtp_port must be a valid port, got %d", c.Email.SMTPPort)
	}
	if c.Calendar.PeriodsPerDay <= 0 || c.Calendar.PeriodMinutes <= 0 {
		return fmt.Errorf("calendar periods must be positive")
	}
	if c.Calendar.WorkDays < 1 || c.Calendar.WorkDays > 7 {
		return fmt.Errorf("calendar.work_days must be in [1, 7], got %d", c.Calendar.WorkDays)
	}
	if err := validateClock(c.Calendar.StartTime); err != nil {
		return fmt.Errorf("calendar.start_time: %w", err)
	}
	if !validLogLevels[strings.ToLower(c.Log.Level)] {
		return fmt.Errorf("log.level must be one of debug, info, warn, error; got '%s'", c.Log.Level)
	}
	return nil
}

func validateClock(value string) error {
	parts := strings.SplitN(value, ":", 2)
	if len(parts) != 2 {
		return fmt.Errorf("want HH:MM, got '%s'", value)
	}
	h, err1 := strconv.Atoi(parts[0])
	m, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || h < 0 || h > 23 || m < 0 || m > 59 {
		return fmt.Errorf("want HH:MM, got '%s'", value)
	}
	return nil
}
