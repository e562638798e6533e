package clients

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/stardustagi/HelpDeskGPT/libs/logs"
	"github.com/stardustagi/HelpDeskGPT/llm/models"
	"github.com/stardustagi/HelpDeskGPT/utils"
	"go.uber.org/zap"
)

const DefaultEndpoint = "https://api.openai.com/v1/chat/completions"

// Client 持有模型和 system 上下文，构造后不再修改，可并发使用
type Client struct {
	apiKey         string
	model          models.ModelVersion
	context        []models.ChatMessage
	endpoint       string
	transport      Transport
	requestOptions []RequestOption
	logger         *zap.Logger
	ownsTransport  bool
}

type Option func(*Client)

// RequestOption 在请求发出前设置可选的生成参数
type RequestOption func(*models.ChatRequest)

func WithContextMessages(msgs []models.ChatMessage) Option {
	return func(c *Client) {
		c.context = append([]models.ChatMessage(nil), msgs...)
	}
}

func WithTransport(t Transport) Option {
	return func(c *Client) {
		c.transport = t
		c.ownsTransport = false
	}
}

// withOwnedTransport transport 由 Client 创建，Close 时一并关闭
func withOwnedTransport(t Transport) Option {
	return func(c *Client) {
		c.transport = t
		c.ownsTransport = true
	}
}

// WithEndpoint 仅用于测试或兼容网关
func WithEndpoint(url string) Option {
	return func(c *Client) {
		c.endpoint = url
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

func WithRequestOptions(opts ...RequestOption) Option {
	return func(c *Client) {
		c.requestOptions = append(c.requestOptions, opts...)
	}
}

func Temperature(v float64) RequestOption {
	return func(r *models.ChatRequest) { r.Temperature = models.Some(v) }
}

func TopP(v float64) RequestOption {
	return func(r *models.ChatRequest) { r.TopP = models.Some(v) }
}

func MaxTokens(v int) RequestOption {
	return func(r *models.ChatRequest) { r.MaxTokens = models.Some(v) }
}

func User(v string) RequestOption {
	return func(r *models.ChatRequest) { r.User = models.Some(v) }
}

func NewClient(apiKey string, model models.ModelVersion, opts ...Option) (*Client, error) {
	if !model.Valid() {
		return nil, errors.Wrapf(ErrUnknownModel, "%q", string(model))
	}
	c := &Client{
		apiKey:   apiKey,
		model:    model,
		endpoint: DefaultEndpoint,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.transport == nil {
		c.transport = DefaultTransport()
	}
	if c.logger == nil {
		c.logger = logs.GetLogger("gpt_client")
	}
	return c, nil
}

// Close 只关闭 Client 自己创建的 transport，共享的和外部传入的不动。
// WithConversationContext 得到的副本共用同一个 transport，只需关闭一次。
func (c *Client) Close() error {
	if !c.ownsTransport {
		return nil
	}
	if closer, ok := c.transport.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

func (c *Client) Model() models.ModelVersion {
	return c.model
}

func (c *Client) Context() []models.ChatMessage {
	return append([]models.ChatMessage(nil), c.context...)
}

// WithConversationContext 返回替换了上下文的新 Client，原 Client 不变
func (c *Client) WithConversationContext(msgs []models.ChatMessage) *Client {
	clone := *c
	clone.context = append([]models.ChatMessage(nil), msgs...)
	return &clone
}

// SendChats 把上下文和新的对话拼起来发送一次，不重试
func (c *Client) SendChats(ctx context.Context, chats []models.ChatMessage) (*models.ChatResponse, error) {
	messages := make([]models.ChatMessage, 0, len(c.context)+len(chats))
	messages = append(messages, c.context...)
	messages = append(messages, chats...)

	req := models.NewChatRequest(c.model, messages)
	for _, opt := range c.requestOptions {
		opt(req)
	}
	return c.sendChatRequest(ctx, req)
}

func (c *Client) sendChatRequest(ctx context.Context, chatReq *models.ChatRequest) (*models.ChatResponse, error) {
	body, err := json.Marshal(chatReq)
	if err != nil {
		return nil, &NetworkError{Message: "encode chat request", Err: err}
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+c.apiKey)
	header.Set("Content-Type", "application/json")
	header.Set("Cache-Control", "no-cache")

	c.logger.Debug("sending chat request",
		logs.String("model", chatReq.Model.String()),
		logs.Int("messages", len(chatReq.Messages)))
	start := time.Now()
	resp, err := c.transport.Do(ctx, &HTTPRequest{
		Method: http.MethodPost,
		URL:    c.endpoint,
		Header: header,
		Body:   body,
	})
	if err != nil {
		c.logger.Warn("chat request failed", logs.ErrorInfo(err), logs.Duration("elapsed", time.Since(start)))
		return nil, &NetworkError{Err: err}
	}
	if resp == nil {
		return nil, &NetworkError{Message: "transport returned no response"}
	}

	if resp.StatusCode != http.StatusOK {
		statusErr := &StatusError{StatusCode: resp.StatusCode}
		if errResp, err := utils.Bytes2Struct[models.ErrorResponse](resp.Body); err == nil {
			statusErr.Response = &errResp
		}
		c.logger.Warn("chat request got error response",
			logs.Int("status", resp.StatusCode),
			logs.ErrorInfo(statusErr),
			logs.Duration("elapsed", time.Since(start)))
		return nil, statusErr
	}

	chatResp, err := utils.Bytes2Struct[models.ChatResponse](resp.Body)
	if err != nil {
		c.logger.Error("chat response undecodable", logs.ErrorInfo(err), logs.Int("bytes", len(resp.Body)))
		return nil, &DecodeError{Err: err, Body: resp.Body}
	}
	c.logger.Debug("chat response received",
		logs.String("id", chatResp.ID),
		logs.Int("choices", len(chatResp.Choices)),
		logs.Duration("elapsed", time.Since(start)))
	return &chatResp, nil
}
