package config

import (
	"fmt"
	"log/slog"

	"github.com/kelseyhightower/envconfig"
)

type BaseEnv struct {
	Env      string `envconfig:"ENV" default:"local"`
	HTTPHost string `envconfig:"HTTP_HOST" default:""`
	HTTPPort string `envconfig:"HTTP_PORT" default:"3200"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"debug"`
	APIKey   string `envconfig:"API_KEY" required:"true"`
}

type StorageEnv struct {
	Type    string `envconfig:"STORAGE_TYPE" default:"local"`
	BaseDir string `envconfig:"STORAGE_BASE_DIR" default:".prism/ray"`
	// S3 settings (used when Type == "s3", for cloud-synced Ray folders)
	S3Bucket string `envconfig:"S3_BUCKET"`
	S3Prefix string `envconfig:"S3_PREFIX" default:"prism/"`
	S3Region string `envconfig:"S3_REGION" default:"us-east-1"`
}

type SafetyEnv struct {
	RulesPath      string  `envconfig:"SAFETY_RULES_PATH" default:"safety/rules.yaml"`
	LedgerPath     string  `envconfig:"SAFETY_LEDGER_PATH" default:"safety/ledger.yaml"`
	DailyBudgetUSD float64 `envconfig:"DAILY_BUDGET_USD" default:"1.0"`
}

// ProviderEnv carries cloud model service credentials. Keys are moved
// into the in-RAM secrets vault at startup and wiped on shutdown; a
// service without a key simply stays unregistered.
type ProviderEnv struct {
	GeminiAPIKey     string `envconfig:"GEMINI_API_KEY"`
	OpenAIAPIKey     string `envconfig:"OPENAI_API_KEY"`
	AnthropicAPIKey  string `envconfig:"ANTHROPIC_API_KEY"`
	PerplexityAPIKey string `envconfig:"PERPLEXITY_API_KEY"`
}

type VAPIDEnv struct {
	VAPIDPublicKey  string `envconfig:"VAPID_PUBLIC_KEY"`
	VAPIDPrivateKey string `envconfig:"VAPID_PRIVATE_KEY"`
	VAPIDContact    string `envconfig:"VAPID_CONTACT" default:"mailto:admin@localhost"`
}

type Env struct {
	BaseEnv
	StorageEnv
	SafetyEnv
	ProviderEnv
	VAPIDEnv
}

const namespace = "PRISM"

func LoadEnv() (*Env, error) {
	var env Env
	if err := envconfig.Process(namespace, &env); err != nil {
		return nil, fmt.Errorf("failed to load env: %w", err)
	}
	return &env, nil
}

func (e *BaseEnv) SlogLevel() slog.Level {
	if e == nil {
		return slog.LevelDebug
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(e.LogLevel)); err != nil {
		return slog.LevelDebug
	}
	return level
}

func BaseEnvFromEnv(env *Env) *BaseEnv {
	return &env.BaseEnv
}

func StorageEnvFromEnv(env *Env) *StorageEnv {
	return &env.StorageEnv
}

func SafetyEnvFromEnv(env *Env) *SafetyEnv {
	return &env.SafetyEnv
}

func ProviderEnvFromEnv(env *Env) *ProviderEnv {
	return &env.ProviderEnv
}

func VAPIDEnvFromEnv(env *Env) *VAPIDEnv {
	return &env.VAPIDEnv
}
