package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/at-ishikawa/quizler/internal/generator"
	"github.com/at-ishikawa/quizler/internal/quiz"
	"github.com/at-ishikawa/quizler/internal/trivia"
)

type Config struct {
	Storage   StorageConfig   `mapstructure:"storage"`
	Fallback  FallbackConfig  `mapstructure:"fallback"`
	History   HistoryConfig   `mapstructure:"history"`
	Trivia    trivia.Config   `mapstructure:"trivia"`
	OpenAI    OpenAIConfig    `mapstructure:"openai"`
	Generator GeneratorConfig `mapstructure:"generator"`
	Quiz      quiz.Config     `mapstructure:"quiz"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Server    ServerConfig    `mapstructure:"server"`
	Templates TemplatesConfig `mapstructure:"templates"`
}

// StorageConfig locates the category files.
type StorageConfig struct {
	DataDirectory   string `mapstructure:"data_directory" validate:"required"`
	BackupDirectory string `mapstructure:"backup_directory"`
	CategoriesFile  string `mapstructure:"categories_file" validate:"omitempty,json_file"`
	MaxBackups      int    `mapstructure:"max_backups" validate:"gte=0"`
}

type FallbackConfig struct {
	File string `mapstructure:"file" validate:"omitempty,json_file"`
}

type HistoryConfig struct {
	// Backend is either "file" or "database"
	Backend       string `mapstructure:"backend" validate:"oneof=file database"`
	File          string `mapstructure:"file" validate:"required,json_file"`
	SeenDirectory string `mapstructure:"seen_directory"`
}

type OpenAIConfig struct {
	APIKey           string `mapstructure:"api_key"`
	Model            string `mapstructure:"model"`
	BaseURL          string `mapstructure:"base_url" validate:"omitempty,url"`
	MaxRetryAttempts uint   `mapstructure:"max_retry_attempts"`
}

type GeneratorConfig struct {
	UseModel              bool `mapstructure:"use_model"`
	UseTrivia             bool `mapstructure:"use_trivia"`
	generator.ModelConfig `mapstructure:",squash"`
}

type DatabaseConfig struct {
	Host            string            `mapstructure:"host"`
	Port            int               `mapstructure:"port"`
	Database        string            `mapstructure:"database"`
	Username        string            `mapstructure:"username"`
	Password        string            `mapstructure:"password"`
	TLS             bool              `mapstructure:"tls"`
	Params          map[string]string `mapstructure:"params"`
	MaxOpenConns    int               `mapstructure:"max_open_conns"`
	MaxIdleConns    int               `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int               `mapstructure:"conn_max_lifetime_seconds"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port" validate:"gte=0,lte=65535"`
	CORS            CORSConfig    `mapstructure:"cors"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type TemplatesConfig struct {
	QuestionSheetTemplate string `mapstructure:"question_sheet_template" validate:"omitempty,file"`
}

type ConfigLoader struct {
	viper      *viper.Viper
	validator  *validator.Validate
	translator ut.Translator
}

func NewConfigLoader(configFile string) (*ConfigLoader, error) {
	validate, trans, err := newValidator()
	if err != nil {
		return nil, fmt.Errorf("failed to create new validator: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/quizler")
	}

	return &ConfigLoader{
		viper:      v,
		validator:  validate,
		translator: trans,
	}, nil
}

func (loader *ConfigLoader) Load() (*Config, error) {
	v := loader.viper

	v.SetDefault("storage.data_directory", "data")
	v.SetDefault("storage.backup_directory", filepath.Join("data", "backups"))
	v.SetDefault("storage.max_backups", 5)
	v.SetDefault("fallback.file", filepath.Join("data", "fallback_questions.json"))
	v.SetDefault("history.backend", "file")
	v.SetDefault("history.file", filepath.Join("data", "quiz_history.json"))
	v.SetDefault("history.seen_directory", filepath.Join("data", "users"))
	v.SetDefault("trivia.base_url", trivia.DefaultBaseURL)
	v.SetDefault("trivia.timeout", 5*time.Second)
	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("openai.max_retry_attempts", 3)
	v.SetDefault("generator.use_model", true)
	v.SetDefault("generator.use_trivia", true)
	v.SetDefault("generator.temperature", generator.DefaultTemperature)
	v.SetDefault("generator.max_tokens", generator.DefaultMaxTokens)
	v.SetDefault("generator.max_attempts", generator.DefaultMaxAttempts)
	v.SetDefault("generator.wait_for_model", generator.DefaultWaitForModel)
	v.SetDefault("quiz.points_per_correct", quiz.DefaultPointsPerCorrect)
	v.SetDefault("quiz.default_count", quiz.DefaultQuestionCount)
	v.SetDefault("quiz.per_question", quiz.DefaultPerQuestion)
	v.SetDefault("quiz.record_abandoned", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.database", "local")
	v.SetDefault("database.username", "user")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	// Template is optional - if not specified, will use embedded fallback template
	v.SetDefault("templates.question_sheet_template", "")

	// Bind OpenAI config to environment variables
	if err := v.BindEnv("openai.api_key", "OPENAI_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind OPENAI_API_KEY environment variable: %w", err)
	}
	if err := v.BindEnv("openai.model", "OPENAI_MODEL"); err != nil {
		return nil, fmt.Errorf("failed to bind OPENAI_MODEL environment variable: %w", err)
	}

	// Bind database password to environment variable
	if err := v.BindEnv("database.password", "DB_PASSWORD"); err != nil {
		return nil, fmt.Errorf("failed to bind DB_PASSWORD environment variable: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("configuration file found but could not be read: %w. Please check the file format and permissions", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration format: %w", err)
	}

	if err := loader.validator.Struct(cfg); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		var errorMsgs []string
		for _, e := range validationErrors {
			errorMsgs = append(errorMsgs, e.Translate(loader.translator))
		}
		return nil, fmt.Errorf("invalid configuration: %s", strings.Join(errorMsgs, ", "))
	}

	return &cfg, nil
}

// ModelEnabled reports whether questions can be generated by the model.
func (cfg *Config) ModelEnabled() bool {
	return cfg.Generator.UseModel && cfg.OpenAI.APIKey != ""
}
