package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName          string
	AppEnv           string
	AppPort          string
	DatabaseURL      string
	RedisURL         string
	NATSURL          string
	JWTSecret        string
	JWTRefreshSecret string

	DockerHost     string
	JudgeTimeout   time.Duration
	JudgeMemoryMB  int
	JudgeCPUShares int
	JudgeWorkspace string

	LLMProvider     string
	OpenAIAPIKey    string
	AnthropicAPIKey string
	LLMModel        string
	LLMTimeout      time.Duration

	MaxAttemptsPerSlot  int
	TestCaseCount       int
	SoftFallbackEnabled bool
	TraceTestSuites     bool
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("PRAXIS")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Praxis API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("judge_timeout_ms", 90000)
	v.SetDefault("judge_memory_mb", 512)
	v.SetDefault("judge_cpu_shares", 512)
	v.SetDefault("llm.provider", "openai")
	v.SetDefault("llm_timeout_ms", 60000)
	v.SetDefault("generation.max_attempts_per_slot", 3)
	v.SetDefault("generation.test_case_count", 8)
	v.SetDefault("generation.soft_fallback_enabled", true)
	v.SetDefault("generation.trace_test_suites", false)

	judgeTimeoutMs := v.GetInt("judge_timeout_ms")
	if judgeTimeoutMs <= 0 {
		judgeTimeoutMs = 90000
	}
	llmTimeoutMs := v.GetInt("llm_timeout_ms")
	if llmTimeoutMs <= 0 {
		llmTimeoutMs = 60000
	}

	cfg := Config{
		AppName:          v.GetString("app.name"),
		AppEnv:           v.GetString("app.env"),
		AppPort:          v.GetString("app.port"),
		DatabaseURL:      v.GetString("database.url"),
		RedisURL:         v.GetString("redis.url"),
		NATSURL:          v.GetString("nats.url"),
		JWTSecret:        v.GetString("jwt.secret"),
		JWTRefreshSecret: v.GetString("jwt.refresh_secret"),

		DockerHost:     v.GetString("docker_host"),
		JudgeTimeout:   time.Duration(judgeTimeoutMs) * time.Millisecond,
		JudgeMemoryMB:  v.GetInt("judge_memory_mb"),
		JudgeCPUShares: v.GetInt("judge_cpu_shares"),
		JudgeWorkspace: v.GetString("judge_workspace"),

		LLMProvider:     strings.ToLower(v.GetString("llm.provider")),
		OpenAIAPIKey:    v.GetString("openai_api_key"),
		AnthropicAPIKey: v.GetString("anthropic_api_key"),
		LLMModel:        v.GetString("llm.model"),
		LLMTimeout:      time.Duration(llmTimeoutMs) * time.Millisecond,

		MaxAttemptsPerSlot:  v.GetInt("generation.max_attempts_per_slot"),
		TestCaseCount:       v.GetInt("generation.test_case_count"),
		SoftFallbackEnabled: v.GetBool("generation.soft_fallback_enabled"),
		TraceTestSuites:     v.GetBool("generation.trace_test_suites"),
	}

	if cfg.JWTSecret == "" || cfg.JWTRefreshSecret == "" {
		return Config{}, fmt.Errorf("jwt secrets must be provided")
	}

	if cfg.JudgeMemoryMB <= 0 {
		cfg.JudgeMemoryMB = 512
	}

	if cfg.JudgeCPUShares <= 0 {
		cfg.JudgeCPUShares = 512
	}

	if cfg.MaxAttemptsPerSlot <= 0 {
		cfg.MaxAttemptsPerSlot = 3
	}

	if cfg.TestCaseCount <= 0 {
		cfg.TestCaseCount = 8
	}

	return cfg, nil
}
