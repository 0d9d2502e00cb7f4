package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"docqa/internal/domain"
)

// EndpointEnv overrides answer_service.endpoint when set.
const EndpointEnv = "DOCQA_ENDPOINT"

// AnswerServiceConfig points at the hosted question-answering model.
// The bearer token itself is read from the environment variable named by APITokenEnv.
type AnswerServiceConfig struct {
	Endpoint    string `yaml:"endpoint" validate:"required,url"`
	APITokenEnv string `yaml:"api_token_env" validate:"required"`
	TimeoutSecs int    `yaml:"timeout_secs" validate:"gt=0"`
}

// ChunkerConfig configures how documents are split into chunks.
type ChunkerConfig struct {
	ChunkSize int `yaml:"chunk_size" validate:"gt=0"`
	Overlap   int `yaml:"overlap" validate:"gte=0,ltfield=ChunkSize"`
}

// RankerConfig controls how many chunks are sent as context.
type RankerConfig struct {
	MaxChunks int `yaml:"max_chunks" validate:"gt=0"`
}

// SummaryConfig sizes the overview shown after upload. Zero disables it.
type SummaryConfig struct {
	MaxSentences int `yaml:"max_sentences" validate:"gte=0"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	Level string `yaml:"level" validate:"oneof=debug info warn error"`
	File  string `yaml:"file"`
	JSON  bool   `yaml:"json"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	AnswerService AnswerServiceConfig `yaml:"answer_service"`
	Chunker       ChunkerConfig       `yaml:"chunker"`
	Ranker        RankerConfig        `yaml:"ranker"`
	Summary       SummaryConfig       `yaml:"summary"`
	Log           LogConfig           `yaml:"log"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
// Values missing from the file keep their defaults.
func Load(path string) (*AppConfig, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/docqa/config.yaml.
// If neither exists, it writes defaults to ~/.config/docqa/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	if err := Save(userPath, Default()); err != nil {
		return nil, "", err
	}
	cfg, err := Load(userPath)
	return cfg, userPath, err
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate rejects settings that cannot work, such as an overlap that is not
// smaller than the chunk size.
func (c *AppConfig) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", domain.ErrInvalidConfig, err)
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		field := strings.TrimPrefix(fe.Namespace(), "AppConfig.")
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s must satisfy %s=%s", field, fe.Tag(), fe.Param()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s must satisfy %s", field, fe.Tag()))
		}
	}
	return fmt.Errorf("%w: %s", domain.ErrInvalidConfig, strings.Join(msgs, "; "))
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "docqa", "config.yaml"), nil
}

// Default returns the built-in configuration.
func Default() *AppConfig {
	return &AppConfig{
		AnswerService: AnswerServiceConfig{
			Endpoint:    "https://api-inference.huggingface.co/models/distilbert/distilbert-base-cased-distilled-squad",
			APITokenEnv: "HF_API_TOKEN",
			TimeoutSecs: 30,
		},
		Chunker: ChunkerConfig{ChunkSize: 1000, Overlap: 100},
		Ranker:  RankerConfig{MaxChunks: 3},
		Summary: SummaryConfig{MaxSentences: 2},
		Log:     LogConfig{Level: "info"},
	}
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EndpointEnv)); v != "" {
		cfg.AnswerService.Endpoint = v
	}
}
