package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	kconfig "github.com/go-kratos/kratos/v2/config"
	"github.com/go-kratos/kratos/v2/config/file"
	klog "github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/boston_guide/app/boston_guide/pkg/logger"
)

// Config 项目配置结构体
type Config struct {
	LLM         LLMConfig         `json:"llm"`
	Search      SearchConfig      `json:"search"`
	Concurrency ConcurrencyConfig `json:"concurrency"`
	Log         LogConfig         `json:"log"`
	Output      OutputConfig      `json:"output"`
	Persona     PersonaConfig     `json:"persona"`
}

// LLMConfig LLM 相关配置
type LLMConfig struct {
	Provider string `json:"provider"` // openai or gemini
	BaseURL  string `json:"base_url"`
	APIKey   string `json:"api_key"`
	// APIKeyEnv api_key 为空时读取的环境变量
	APIKeyEnv      string   `json:"api_key_env"`
	Model          string   `json:"model"`
	Temperature    *float32 `json:"temperature"`
	Timeout        int      `json:"timeout"` // 秒
	MaxRetries     int      `json:"max_retries"`
	RetryBaseDelay int      `json:"retry_base_delay"` // 毫秒
}

// SearchConfig 搜索相关配置，provider 为空表示不联网检索
type SearchConfig struct {
	Provider   string        `json:"provider"`
	MaxResults int           `json:"max_results"`
	Tavily     TavilyConfig  `json:"tavily"`
	SearXNG    SearXNGConfig `json:"searxng"`
	Serper     SerperConfig  `json:"serper"`
}

// TavilyConfig Tavily 配置
type TavilyConfig struct {
	APIKey string `json:"api_key"`
}

// SearXNGConfig SearXNG 配置
type SearXNGConfig struct {
	BaseURL string `json:"base_url"`
	Timeout int    `json:"timeout"`
}

// SerperConfig Serper 配置
type SerperConfig struct {
	APIKey string `json:"api_key"`
}

// ConcurrencyConfig 限流配置
type ConcurrencyConfig struct {
	QPS int `json:"qps"`
	RPM int `json:"rpm"`
}

// LogConfig 日志相关配置
type LogConfig struct {
	Level string `json:"level"`
	File  string `json:"file"`
}

// OutputConfig 输出相关配置
type OutputConfig struct {
	Path           string `json:"path"`
	RenderMarkdown bool   `json:"render_markdown"`
}

// PersonaConfig 人设文件配置，path 为空使用内置人设
type PersonaConfig struct {
	Path string `json:"path"`
}

// DefaultOutputPath 默认输出文件
const DefaultOutputPath = "personalized_boston_guide.txt"

// Default 默认配置
func Default() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:       "openai",
			Model:          "gpt-4o",
			Timeout:        120,
			MaxRetries:     3,
			RetryBaseDelay: 2000,
		},
		Search: SearchConfig{
			MaxResults: 5,
		},
		Concurrency: ConcurrencyConfig{
			QPS: 1,
			RPM: 60,
		},
		Log: LogConfig{
			Level: "info",
		},
		Output: OutputConfig{
			Path: DefaultOutputPath,
		},
	}
}

// LoadConfig 从指定路径加载配置
// 文件不存在时只使用默认值，文件中的 ${VAR} / ${VAR:default} 由环境变量展开
func LoadConfig(path string) (*Config, error) {
	klog.SetLogger(logger.Kratos(klog.LevelWarn))

	cfg := Default()
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := scanFile(path, cfg); err != nil {
				return nil, err
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("stat config: %w", err)
		}
	}

	cfg.applyDefaults()
	cfg.resolveCredentials(os.Getenv)
	return cfg, nil
}

func scanFile(path string, cfg *Config) error {
	c := kconfig.New(
		kconfig.WithSource(file.NewSource(path)),
		kconfig.WithResolver(envResolver(os.Getenv)),
	)
	defer c.Close()

	if err := c.Load(); err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := c.Scan(cfg); err != nil {
		return fmt.Errorf("scan config: %w", err)
	}
	return nil
}

var placeholder = regexp.MustCompile(`\$\{([^}:]+)(?::([^}]*))?\}`)

// envResolver 用环境变量展开 ${VAR} / ${VAR:default}，变量为空时取默认值
func envResolver(getenv func(string) string) kconfig.Resolver {
	return func(values map[string]any) error {
		for k, v := range values {
			values[k] = expand(v, getenv)
		}
		return nil
	}
}

func expand(v any, getenv func(string) string) any {
	switch t := v.(type) {
	case string:
		return placeholder.ReplaceAllStringFunc(t, func(m string) string {
			sub := placeholder.FindStringSubmatch(m)
			if val := getenv(strings.TrimSpace(sub[1])); val != "" {
				return val
			}
			return sub[2]
		})
	case map[string]any:
		for k, x := range t {
			t[k] = expand(x, getenv)
		}
	case []any:
		for i, x := range t {
			t[i] = expand(x, getenv)
		}
	}
	return v
}

// applyDefaults 补全被配置文件清空的字段
func (c *Config) applyDefaults() {
	d := Default()
	if c.LLM.Provider == "" {
		c.LLM.Provider = d.LLM.Provider
	}
	if c.LLM.Model == "" {
		c.LLM.Model = defaultModel(c.LLM.Provider)
	}
	if c.LLM.Timeout <= 0 {
		c.LLM.Timeout = d.LLM.Timeout
	}
	if c.LLM.MaxRetries < 0 {
		c.LLM.MaxRetries = 0
	}
	if c.LLM.RetryBaseDelay <= 0 {
		c.LLM.RetryBaseDelay = d.LLM.RetryBaseDelay
	}
	if c.Search.MaxResults <= 0 {
		c.Search.MaxResults = d.Search.MaxResults
	}
	if c.Concurrency.QPS <= 0 {
		c.Concurrency.QPS = d.Concurrency.QPS
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.Output.Path == "" {
		c.Output.Path = d.Output.Path
	}
}

func defaultModel(provider string) string {
	if provider == "gemini" {
		return "gemini-2.0-flash"
	}
	return "gpt-4o"
}

// resolveCredentials 凭证只在配置为空时从环境变量回退，不做校验
func (c *Config) resolveCredentials(getenv func(string) string) {
	if c.LLM.APIKey == "" {
		names := []string{c.LLM.APIKeyEnv}
		if c.LLM.APIKeyEnv == "" {
			names = CredentialEnv(c.LLM.Provider)
		}
		c.LLM.APIKey = firstEnv(getenv, names...)
	}
	if c.Search.Tavily.APIKey == "" {
		c.Search.Tavily.APIKey = getenv("TAVILY_API_KEY")
	}
	if c.Search.Serper.APIKey == "" {
		c.Search.Serper.APIKey = getenv("SERPER_API_KEY")
	}
}

// CredentialEnv LLM 提供方对应的凭证环境变量
func CredentialEnv(provider string) []string {
	if provider == "gemini" {
		return []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"}
	}
	return []string{"OPENAI_API_KEY"}
}

func firstEnv(getenv func(string) string, names ...string) string {
	for _, n := range names {
		if n == "" {
			continue
		}
		if v := getenv(n); v != "" {
			return v
		}
	}
	return ""
}

// RequestTimeout LLM 单次请求超时
func (c LLMConfig) RequestTimeout() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

// BaseDelay 重试退避基准
func (c LLMConfig) BaseDelay() time.Duration {
	return time.Duration(c.RetryBaseDelay) * time.Millisecond
}
