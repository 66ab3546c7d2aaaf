package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// 评估调度模式
const (
	DispatchSequential = "sequential"
	DispatchParallel   = "parallel"
)

// LLM 提供方
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Config 应用配置
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	Contract ContractConfig `mapstructure:"contract"`
	LLM      LLMConfig      `mapstructure:"llm"`
	MySQL    MySQLConfig    `mapstructure:"mysql"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Lmstfy   LmstfyConfig   `mapstructure:"lmstfy"`
	Worker   WorkerConfig   `mapstructure:"worker"`
}

type AppConfig struct {
	Name     string `mapstructure:"name"`
	Env      string `mapstructure:"env"`
	LogLevel string `mapstructure:"log_level"`
}

type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// ContractConfig 合同输入配置
type ContractConfig struct {
	FilePath string `mapstructure:"file_path"` // GET /evaluate 读取的本地文件
	MaxChars int    `mapstructure:"max_chars"` // 超过即快速失败
}

// LLMConfig 远程分类调用配置
type LLMConfig struct {
	Provider     string        `mapstructure:"provider"`
	BaseURL      string        `mapstructure:"base_url"`
	APIKey       string        `mapstructure:"api_key"`
	Model        string        `mapstructure:"model"`
	SystemPrompt string        `mapstructure:"system_prompt"`
	MaxTokens    int           `mapstructure:"max_tokens"`
	Timeout      time.Duration `mapstructure:"timeout"`
	Dispatch     string        `mapstructure:"dispatch"`
	Concurrency  int           `mapstructure:"concurrency"`
	MaxRetries   uint64        `mapstructure:"max_retries"`
	RetryBackoff time.Duration `mapstructure:"retry_backoff"`
}

type MySQLConfig struct {
	DSN         string `mapstructure:"dsn"`
	AutoMigrate bool   `mapstructure:"auto_migrate"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type LmstfyConfig struct {
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
	Namespace string `mapstructure:"namespace"`
	Queue     string `mapstructure:"queue"`
	Token     string `mapstructure:"token"`
}

// WorkerConfig Worker 配置
type WorkerConfig struct {
	Name       string           `mapstructure:"name"`
	Subscriber SubscriberConfig `mapstructure:"subscriber"`
	Processor  ProcessorConfig  `mapstructure:"processor"`
}

// SubscriberConfig Subscriber 配置
type SubscriberConfig struct {
	Threads      int           `mapstructure:"threads"`       // 并发拉取数
	Rate         time.Duration `mapstructure:"rate"`          // 拉取速率
	Timeout      time.Duration `mapstructure:"timeout"`       // 拉取超时
	TTR          time.Duration `mapstructure:"ttr"`           // Time-To-Run
	ErrorBackoff time.Duration `mapstructure:"error_backoff"` // 错误退避时间
}

// ProcessorConfig Processor 配置
type ProcessorConfig struct {
	Threads    int           `mapstructure:"threads"`     // 并发处理数
	BufferSize int           `mapstructure:"buffer_size"` // Channel 缓冲大小
	Timeout    time.Duration `mapstructure:"timeout"`     // 单个任务超时
}

// DefaultConfigPath 默认配置文件路径
const DefaultConfigPath = "config/config.yaml"

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "contractrisk")
	v.SetDefault("app.env", "dev")
	v.SetDefault("app.log_level", "info")

	v.SetDefault("server.port", "4000")
	v.SetDefault("server.allowed_origins", []string{"*"})

	v.SetDefault("contract.file_path", "contract2.txt")
	v.SetDefault("contract.max_chars", 200000)

	v.SetDefault("llm.provider", ProviderOpenAI)
	v.SetDefault("llm.model", "gpt-4o-mini")
	v.SetDefault("llm.system_prompt", "You are a strategic reasoner.")
	v.SetDefault("llm.max_tokens", 100)
	v.SetDefault("llm.timeout", 30*time.Second)
	v.SetDefault("llm.dispatch", DispatchSequential)
	v.SetDefault("llm.concurrency", 4)
	v.SetDefault("llm.max_retries", 0)
	v.SetDefault("llm.retry_backoff", time.Second)

	v.SetDefault("redis.db", 0)

	v.SetDefault("lmstfy.port", 7777)
	v.SetDefault("lmstfy.namespace", "contractrisk")
	v.SetDefault("lmstfy.queue", "contract_evaluate")

	v.SetDefault("worker.name", "contract_evaluate_worker")
	v.SetDefault("worker.subscriber.threads", 1)
	v.SetDefault("worker.subscriber.rate", 10*time.Millisecond)
	v.SetDefault("worker.subscriber.timeout", 3*time.Second)
	v.SetDefault("worker.subscriber.ttr", 5*time.Minute)
	v.SetDefault("worker.subscriber.error_backoff", time.Second)
	v.SetDefault("worker.processor.threads", 2)
	v.SetDefault("worker.processor.buffer_size", 16)
	v.SetDefault("worker.processor.timeout", 4*time.Minute)
}

// bindEnv 兼容原有部署使用的环境变量名
func bindEnv(v *viper.Viper) error {
	v.SetEnvPrefix("CONTRACTRISK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	legacy := map[string][]string{
		"llm.base_url": {"CONTRACTRISK_LLM_BASE_URL", "BASEURL"},
		"llm.api_key":  {"CONTRACTRISK_LLM_API_KEY", "OPENAI_APIKEY"},
		"server.port":  {"CONTRACTRISK_SERVER_PORT", "PORT"},
	}
	for key, envs := range legacy {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return fmt.Errorf("bind env %s failed: %w", key, err)
		}
	}
	return nil
}

// Load 从配置文件加载配置，文件不存在时只使用默认值和环境变量
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	if err := bindEnv(v); err != nil {
		return nil, err
	}

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			v.SetConfigFile(configPath)
			v.SetConfigType("yaml")
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("read config failed: %w", err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("stat config failed: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config failed: %w", err)
	}

	return &cfg, nil
}

// Validate 验证配置完整性
func (c *Config) Validate() error {
	if _, err := strconv.Atoi(c.Server.Port); err != nil {
		return fmt.Errorf("server.port must be numeric: %q", c.Server.Port)
	}
	if c.Contract.MaxChars <= 0 {
		return fmt.Errorf("contract.max_chars must be positive")
	}
	if err := c.LLM.Validate(); err != nil {
		return err
	}

	if c.AsyncEnabled() {
		if c.Redis.Addr == "" {
			return fmt.Errorf("redis addr is required when mysql is configured")
		}
		if c.Lmstfy.Host == "" {
			return fmt.Errorf("lmstfy host is required when mysql is configured")
		}
		if c.Lmstfy.Queue == "" {
			return fmt.Errorf("lmstfy queue is required when mysql is configured")
		}
	}
	return nil
}

// Validate 验证 LLM 配置
func (l *LLMConfig) Validate() error {
	switch l.Provider {
	case ProviderOpenAI, ProviderGemini:
	default:
		return fmt.Errorf("llm.provider must be %q or %q, got %q", ProviderOpenAI, ProviderGemini, l.Provider)
	}
	if l.APIKey == "" {
		return fmt.Errorf("llm api key is required (OPENAI_APIKEY)")
	}
	if l.Model == "" {
		return fmt.Errorf("llm.model is required")
	}
	if l.MaxTokens <= 0 {
		return fmt.Errorf("llm.max_tokens must be positive")
	}
	if l.Timeout <= 0 {
		return fmt.Errorf("llm.timeout must be positive")
	}
	switch l.Dispatch {
	case DispatchSequential:
	case DispatchParallel:
		if l.Concurrency <= 0 {
			return fmt.Errorf("llm.concurrency must be positive for parallel dispatch")
		}
	default:
		return fmt.Errorf("llm.dispatch must be %q or %q", DispatchSequential, DispatchParallel)
	}
	return nil
}

// AsyncEnabled 是否启用异步评估（落库 + 队列 + Worker）
func (c *Config) AsyncEnabled() bool {
	return c.MySQL.DSN != ""
}

// Addr HTTP 监听地址
func (c *Config) Addr() string {
	return ":" + c.Server.Port
}
