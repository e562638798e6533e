package clients

import (
	"context"
	"net/http"
	"sync"
	"time"

	"resty.dev/v3"
)

type HTTPRequest struct {
	Method string
	URL    string
	Header http.Header
	Body   []byte
}

type HTTPResponse struct {
	StatusCode int
	Body       []byte
}

// Transport 发送一次 HTTP 请求，返回状态码和响应体；拿不到响应时返回 error
type Transport interface {
	Do(ctx context.Context, req *HTTPRequest) (*HTTPResponse, error)
}

// TransportFunc 把普通函数适配成 Transport，测试里用来打桩
type TransportFunc func(ctx context.Context, req *HTTPRequest) (*HTTPResponse, error)

func (f TransportFunc) Do(ctx context.Context, req *HTTPRequest) (*HTTPResponse, error) {
	return f(ctx, req)
}

// RestyTransport 基于 resty 的默认实现，不做重试
type RestyTransport struct {
	client *resty.Client
}

func NewRestyTransport(timeout time.Duration) *RestyTransport {
	client := resty.New()
	if timeout > 0 {
		client.SetTimeout(timeout)
	}
	return &RestyTransport{client: client}
}

var (
	sharedTransport     *RestyTransport
	sharedTransportOnce sync.Once
)

// DefaultTransport 进程内共享，复用连接
func DefaultTransport() *RestyTransport {
	sharedTransportOnce.Do(func() {
		sharedTransport = NewRestyTransport(0)
	})
	return sharedTransport
}

func (t *RestyTransport) Do(ctx context.Context, req *HTTPRequest) (*HTTPResponse, error) {
	r := t.client.R().
		SetContext(ctx).
		SetBody(req.Body)
	for key := range req.Header {
		r.SetHeader(key, req.Header.Get(key))
	}
	resp, err := r.Execute(req.Method, req.URL)
	if err != nil {
		return nil, err
	}
	if resp.Body != nil {
		defer resp.Body.Close()
	}
	return &HTTPResponse{
		StatusCode: resp.StatusCode(),
		Body:       resp.Bytes(),
	}, nil
}

func (t *RestyTransport) Close() error {
	return t.client.Close()
}
