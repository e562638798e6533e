package clients

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/stardustagi/HelpDeskGPT/llm/models"
)

var ErrUnknownModel = errors.New("gpt client: unknown model version")

// NetworkError 请求没有拿到任何 HTTP 响应
type NetworkError struct {
	Message string
	Err     error
}

func (e *NetworkError) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("gpt client: network error: %s: %v", e.Message, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("gpt client: network error: %v", e.Err)
	default:
		return "gpt client: network error: " + e.Message
	}
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// StatusError 服务端返回了非 200 状态码。
// Response 是对响应体的尽力解析，解析失败时为 nil。
type StatusError struct {
	StatusCode int
	Response   *models.ErrorResponse
}

func (e *StatusError) Error() string {
	if e.Response == nil {
		return fmt.Sprintf("gpt client: error response: status %d", e.StatusCode)
	}
	return fmt.Sprintf("gpt client: error response: status %d: %s", e.StatusCode, e.Response)
}

func (e *StatusError) Detail() (models.ErrorDetail, bool) {
	if e.Response == nil {
		return models.ErrorDetail{}, false
	}
	return e.Response.Error, true
}

// DecodeError 状态码 200 但响应体不是合法的 ChatResponse
type DecodeError struct {
	Err  error
	Body []byte
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("gpt client: decode chat response: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
