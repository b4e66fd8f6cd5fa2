package config

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"

	"github.com/zhouzirui/hands-on/backend/internal/model/persona"
)

// Config 聚合整个服务的配置项。
type Config struct {
	Server  ServerConfig
	AI      AIConfig
	Mail    MailConfig
	Store   StoreConfig
	Archive ArchiveConfig
}

// Load 从环境变量加载配置。
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	mail, err := loadMailConfig()
	if err != nil {
		return nil, err
	}

	store, err := loadStoreConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Server:  server,
		AI:      ai,
		Mail:    mail,
		Store:   store,
		Archive: ArchiveConfig{DatabaseURL: strings.TrimSpace(os.Getenv("ARCHIVE_DATABASE_URL"))},
	}, nil
}

// ServerConfig 描述 HTTP 服务配置。
type ServerConfig struct {
	Addr         string
	CookieSecure bool
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	secure, err := parseBoolEnv("COOKIE_SECURE", false)
	if err != nil {
		return ServerConfig{}, err
	}

	if strings.Contains(port, ":") {
		// 允许用户直接传入 ":8080" 或 "127.0.0.1:8080"。
		return ServerConfig{Addr: port, CookieSecure: secure}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port, CookieSecure: secure}, nil
}

// Supported language-model providers.
const (
	ProviderArk    = "ark"
	ProviderOpenAI = "openai"
)

// AIConfig 描述大模型相关配置。API keys are bound per persona by ResolvePersonaKeys.
type AIConfig struct {
	Provider        string
	Model           string
	BaseURL         string
	Region          string
	Temperature     *float64
	TopP            *float64
	MaxTokens       *int
	StreamResponse  bool
	DefaultLanguage string
	PersonaKeys     map[string]string
}

// NewChatModel 使用指定的 API key 创建一个 Ark 模型实例。
func (c AIConfig) NewChatModel(ctx context.Context, apiKey string) (model.ChatModel, error) {
	if c.Model == "" || apiKey == "" {
		return nil, fmt.Errorf("ark model or api key missing")
	}

	var temperature *float32
	if c.Temperature != nil {
		val := float32(*c.Temperature)
		temperature = &val
	}

	var topP *float32
	if c.TopP != nil {
		val := float32(*c.TopP)
		topP = &val
	}

	return ark.NewChatModel(ctx, &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      apiKey,
		Model:       c.Model,
		MaxTokens:   c.MaxTokens,
		Temperature: temperature,
		TopP:        topP,
	})
}

// ResolvePersonaKeys binds every persona to the credential named by its
// CredentialRef, falling back to LLM_API_KEY. Any persona left without a key
// is an error so the server refuses to start instead of failing per request.
func (c *AIConfig) ResolvePersonaKeys(personas []persona.Persona) error {
	fallback := strings.TrimSpace(os.Getenv("LLM_API_KEY"))
	keys := make(map[string]string, len(personas))
	var missing []string

	for _, p := range personas {
		key := ""
		if p.CredentialRef != "" {
			key = strings.TrimSpace(os.Getenv(p.CredentialRef))
		}
		if key == "" {
			key = fallback
		}
		if key == "" {
			missing = append(missing, fmt.Sprintf("%s (%s)", p.ID, p.CredentialRef))
			continue
		}
		keys[p.ID] = key
	}

	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("missing model credential for personas: %s", strings.Join(missing, ", "))
	}
	c.PersonaKeys = keys
	return nil
}

func loadAIConfig() (AIConfig, error) {
	provider := strings.ToLower(getEnvOrDefault("LLM_PROVIDER", ProviderArk))
	if provider != ProviderArk && provider != ProviderOpenAI {
		return AIConfig{}, fmt.Errorf("invalid LLM_PROVIDER value %q", provider)
	}

	temperature, err := parseOptionalFloatEnv("LLM_TEMPERATURE")
	if err != nil {
		return AIConfig{}, err
	}

	topP, err := parseOptionalFloatEnv("LLM_TOP_P")
	if err != nil {
		return AIConfig{}, err
	}

	maxTokens, err := parseOptionalIntEnv("LLM_MAX_TOKENS")
	if err != nil {
		return AIConfig{}, err
	}

	stream, err := parseBoolEnv("LLM_STREAM", true)
	if err != nil {
		return AIConfig{}, err
	}

	cfg := AIConfig{
		Provider:        provider,
		Model:           strings.TrimSpace(os.Getenv("LLM_MODEL")),
		BaseURL:         strings.TrimSpace(os.Getenv("LLM_BASE_URL")),
		Region:          getEnvOrDefault("ARK_REGION", "cn-beijing"),
		Temperature:     temperature,
		TopP:            topP,
		MaxTokens:       maxTokens,
		StreamResponse:  stream,
		DefaultLanguage: getEnvOrDefault("DEFAULT_LANGUAGE", "English"),
	}
	if cfg.Model == "" {
		return AIConfig{}, fmt.Errorf("LLM_MODEL is required")
	}
	if cfg.Provider == ProviderArk && cfg.BaseURL == "" {
		cfg.BaseURL = "https://ark.cn-beijing.volces.com/api/v3"
	}
	return cfg, nil
}

// MailConfig 描述审核邮件的发送配置。
type MailConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	Moderator string
}

// Enabled 表示是否提供了发件人凭证。
func (c MailConfig) Enabled() bool {
	return c.Username != "" && c.Password != ""
}

func loadMailConfig() (MailConfig, error) {
	port, err := parseOptionalIntEnv("MAIL_PORT")
	if err != nil {
		return MailConfig{}, err
	}
	mailPort := 587
	if port != nil {
		mailPort = *port
	}

	return MailConfig{
		Host:      getEnvOrDefault("MAIL_HOST", "smtp.gmail.com"),
		Port:      mailPort,
		Username:  strings.TrimSpace(os.Getenv("MAIL_USERNAME")),
		Password:  strings.TrimSpace(os.Getenv("MAIL_PASSWORD")),
		Moderator: strings.TrimSpace(os.Getenv("MODERATOR_EMAIL")),
	}, nil
}

// Conversation store backends.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// StoreConfig selects the conversation store backend.
type StoreConfig struct {
	Backend  string
	RedisURL string
	Prefix   string
	TTL      time.Duration
}

func loadStoreConfig() (StoreConfig, error) {
	backend := strings.ToLower(getEnvOrDefault("STORE_BACKEND", StoreMemory))
	if backend != StoreMemory && backend != StoreRedis {
		return StoreConfig{}, fmt.Errorf("invalid STORE_BACKEND value %q", backend)
	}

	ttl, err := parseDurationEnv("CONVERSATION_TTL", 0)
	if err != nil {
		return StoreConfig{}, err
	}

	cfg := StoreConfig{
		Backend:  backend,
		RedisURL: strings.TrimSpace(os.Getenv("REDIS_URL")),
		Prefix:   getEnvOrDefault("REDIS_PREFIX", "handson:"),
		TTL:      ttl,
	}
	if cfg.Backend == StoreRedis && cfg.RedisURL == "" {
		return StoreConfig{}, fmt.Errorf("REDIS_URL is required when STORE_BACKEND=redis")
	}
	return cfg, nil
}

// ArchiveConfig 描述可选的会话记录归档数据库。
type ArchiveConfig struct {
	DatabaseURL string
}

// Enabled reports whether transcripts should be archived.
func (c ArchiveConfig) Enabled() bool {
	return c.DatabaseURL != ""
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
