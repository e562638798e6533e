package clients

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/stardustagi/HelpDeskGPT/llm/models"
	"go.uber.org/zap"
)

const DefaultAPIKeyEnv = "OPENAI_API_KEY"

// GPTConfig 对应配置文件中的 [gpt]
type GPTConfig struct {
	APIKey      string   `json:"api_key" yaml:"api_key"`
	APIKeyEnv   string   `json:"api_key_env" yaml:"api_key_env"`
	Model       string   `json:"model" yaml:"model"`
	Endpoint    string   `json:"endpoint" yaml:"endpoint"`
	Context     []string `json:"context" yaml:"context"`
	Timeout     int      `json:"timeout" yaml:"timeout"` // 秒，0 表示使用共享 transport
	Temperature *float64 `json:"temperature" yaml:"temperature"`
	MaxTokens   *int     `json:"max_tokens" yaml:"max_tokens"`
}

// Credential api_key 优先，否则读取 api_key_env 指定的环境变量
func (c GPTConfig) Credential() string {
	if c.APIKey != "" {
		return c.APIKey
	}
	env := c.APIKeyEnv
	if env == "" {
		env = DefaultAPIKeyEnv
	}
	return os.Getenv(env)
}

// NewClientFromConfig timeout 大于 0 时创建独立的 transport，用完需 Close
func NewClientFromConfig(cfg GPTConfig, logger *zap.Logger, opts ...Option) (*Client, error) {
	model := models.GPT35Turbo
	if cfg.Model != "" {
		m, err := models.ParseModelVersion(cfg.Model)
		if err != nil {
			return nil, errors.Wrap(ErrUnknownModel, err.Error())
		}
		model = m
	}

	apiKey := cfg.Credential()
	if apiKey == "" && logger != nil {
		logger.Warn("gpt api key is empty, requests will be rejected by the endpoint")
	}

	base := []Option{WithLogger(logger)}
	if len(cfg.Context) > 0 {
		base = append(base, WithContextMessages(models.MakeContext(cfg.Context...)))
	}
	if cfg.Endpoint != "" {
		base = append(base, WithEndpoint(cfg.Endpoint))
	}
	if cfg.Timeout > 0 {
		base = append(base, withOwnedTransport(NewRestyTransport(time.Duration(cfg.Timeout)*time.Second)))
	}
	if cfg.Temperature != nil {
		base = append(base, WithRequestOptions(Temperature(*cfg.Temperature)))
	}
	if cfg.MaxTokens != nil {
		base = append(base, WithRequestOptions(MaxTokens(*cfg.MaxTokens)))
	}
	return NewClient(apiKey, model, append(base, opts...)...)
}
