package clients

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stardustagi/HelpDeskGPT/llm/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const okBody = `{
	"id": "chatcmpl-42",
	"object": "chat.completion",
	"created": 1714000000,
	"model": "gpt-3.5-turbo-0125",
	"choices": [{"index": 0, "message": {"role": "assistant", "content": "Be brief: they flap fast."}, "finish_reason": "stop"}]
}`

func stubTransport(status int, body string) (Transport, *[]*HTTPRequest) {
	var mu sync.Mutex
	var seen []*HTTPRequest
	return TransportFunc(func(_ context.Context, req *HTTPRequest) (*HTTPResponse, error) {
		mu.Lock()
		seen = append(seen, req)
		mu.Unlock()
		return &HTTPResponse{StatusCode: status, Body: []byte(body)}, nil
	}), &seen
}

func newTestClient(t *testing.T, opts ...Option) *Client {
	t.Helper()
	opts = append([]Option{WithLogger(zaptest.NewLogger(t))}, opts...)
	c, err := NewClient("sk-test", models.GPT35Turbo, opts...)
	require.NoError(t, err)
	return c
}

func decodeSent(t *testing.T, req *HTTPRequest) map[string]json.RawMessage {
	t.Helper()
	var fields map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(req.Body, &fields))
	return fields
}

func TestNewClient_RejectsUnknownModel(t *testing.T) {
	_, err := NewClient("sk-test", models.ModelVersion("gpt-2"), WithLogger(zaptest.NewLogger(t)))
	assert.ErrorIs(t, err, ErrUnknownModel)
}

func TestSendChats_Success(t *testing.T) {
	transport, seen := stubTransport(http.StatusOK, okBody)
	sysCtx := models.MakeContext("Act as a scientist but be brief")
	c := newTestClient(t, WithTransport(transport), WithContextMessages(sysCtx))

	prompt := models.NewUserMessage("How do humming birds fly?")
	resp, err := c.SendChats(t.Context(), []models.ChatMessage{prompt})
	require.NoError(t, err)
	assert.Equal(t, "chatcmpl-42", resp.ID)
	assert.Equal(t, models.NewAssistantMessage("Be brief: they flap fast."), resp.Choices[0].Message)

	require.Len(t, *seen, 1)
	sent := (*seen)[0]
	assert.Equal(t, http.MethodPost, sent.Method)
	assert.Equal(t, DefaultEndpoint, sent.URL)
	assert.Equal(t, "Bearer sk-test", sent.Header.Get("Authorization"))
	assert.Equal(t, "application/json", sent.Header.Get("Content-Type"))
	assert.Equal(t, "no-cache", sent.Header.Get("Cache-Control"))

	var req models.ChatRequest
	require.NoError(t, json.Unmarshal(sent.Body, &req))
	assert.Equal(t, models.GPT35Turbo, req.Model)
	assert.Equal(t, append(sysCtx, prompt), req.Messages)
}

func TestSendChats_ContextThenTurnsInOrder(t *testing.T) {
	transport, seen := stubTransport(http.StatusOK, okBody)
	sysCtx := models.MakeContext("one", "two")
	c := newTestClient(t, WithTransport(transport), WithContextMessages(sysCtx))

	turns := []models.ChatMessage{
		models.NewAssistantMessage("Hello, how can I help you today?"),
		models.NewUserMessage("same"),
		models.NewUserMessage("same"),
	}
	_, err := c.SendChats(t.Context(), turns)
	require.NoError(t, err)

	var req models.ChatRequest
	require.NoError(t, json.Unmarshal((*seen)[0].Body, &req))
	// 不去重、不重排
	assert.Equal(t, append(append([]models.ChatMessage{}, sysCtx...), turns...), req.Messages)
	assert.Equal(t, sysCtx, c.Context())
}

func TestSendChats_OmitsUnsetGenerationParams(t *testing.T) {
	transport, seen := stubTransport(http.StatusOK, okBody)
	c := newTestClient(t, WithTransport(transport))

	_, err := c.SendChats(t.Context(), nil)
	require.NoError(t, err)
	fields := decodeSent(t, (*seen)[0])
	assert.Len(t, fields, 2)
	assert.Equal(t, "[]", string(fields["messages"]))

	c2 := newTestClient(t, WithTransport(transport), WithRequestOptions(Temperature(0.2), MaxTokens(128)))
	_, err = c2.SendChats(t.Context(), nil)
	require.NoError(t, err)
	fields = decodeSent(t, (*seen)[1])
	assert.Equal(t, "0.2", string(fields["temperature"]))
	assert.Equal(t, "128", string(fields["max_tokens"]))
	assert.NotContains(t, fields, "top_p")
}

func TestSendChats_ErrorStatusWithDetail(t *testing.T) {
	transport, _ := stubTransport(http.StatusTooManyRequests,
		`{"error":{"message":"rate limited","type":"rate_limit","param":null,"code":"429"}}`)
	c := newTestClient(t, WithTransport(transport))

	resp, err := c.SendChats(t.Context(), []models.ChatMessage{models.NewUserMessage("hi")})
	assert.Nil(t, resp)
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusTooManyRequests, statusErr.StatusCode)
	detail, ok := statusErr.Detail()
	require.True(t, ok)
	assert.Equal(t, "rate limited", detail.Message)
	assert.Equal(t, "rate_limit", detail.Type)
}

func TestSendChats_ErrorStatusWithMalformedBody(t *testing.T) {
	transport, _ := stubTransport(http.StatusInternalServerError, `<html>Bad Gateway</html>`)
	c := newTestClient(t, WithTransport(transport))

	_, err := c.SendChats(t.Context(), []models.ChatMessage{models.NewUserMessage("hi")})
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
	assert.Nil(t, statusErr.Response)
	_, ok := statusErr.Detail()
	assert.False(t, ok)
	assert.Equal(t, "gpt client: error response: status 500", statusErr.Error())
}

func TestSendChats_NetworkError(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	c := newTestClient(t, WithTransport(TransportFunc(func(context.Context, *HTTPRequest) (*HTTPResponse, error) {
		return nil, cause
	})))

	_, err := c.SendChats(t.Context(), []models.ChatMessage{models.NewUserMessage("hi")})
	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.ErrorIs(t, err, cause)

	var statusErr *StatusError
	assert.False(t, errors.As(err, &statusErr))
}

func TestSendChats_DecodeErrorIsDistinct(t *testing.T) {
	for name, body := range map[string]string{
		"garbage":       `not json`,
		"missing model": `{"id":"x","created":1,"choices":[]}`,
	} {
		t.Run(name, func(t *testing.T) {
			transport, _ := stubTransport(http.StatusOK, body)
			c := newTestClient(t, WithTransport(transport))

			_, err := c.SendChats(t.Context(), nil)
			var decodeErr *DecodeError
			require.ErrorAs(t, err, &decodeErr)
			assert.Equal(t, body, string(decodeErr.Body))

			var netErr *NetworkError
			var statusErr *StatusError
			assert.False(t, errors.As(err, &netErr))
			assert.False(t, errors.As(err, &statusErr))
		})
	}
}

func TestSendChats_Idempotent(t *testing.T) {
	transport, seen := stubTransport(http.StatusOK, okBody)
	c := newTestClient(t, WithTransport(transport), WithContextMessages(models.MakeContext("ctx")))
	turns := []models.ChatMessage{models.NewUserMessage("hi")}

	first, err := c.SendChats(t.Context(), turns)
	require.NoError(t, err)
	second, err := c.SendChats(t.Context(), turns)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.NotSame(t, first, second)
	require.Len(t, *seen, 2)
	assert.Equal(t, (*seen)[0].Body, (*seen)[1].Body)
}

func TestSendChats_Concurrent(t *testing.T) {
	transport, seen := stubTransport(http.StatusOK, okBody)
	base := models.MakeContext("ctx")
	c := newTestClient(t, WithTransport(transport), WithContextMessages(base))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.SendChats(context.Background(), []models.ChatMessage{models.NewUserMessage("hi")})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	require.Len(t, *seen, 16)
	for _, req := range *seen {
		var decoded models.ChatRequest
		require.NoError(t, json.Unmarshal(req.Body, &decoded))
		assert.Len(t, decoded.Messages, 2)
	}
	assert.Equal(t, base, c.Context())
}

func TestWithConversationContext(t *testing.T) {
	transport, seen := stubTransport(http.StatusOK, okBody)
	c := newTestClient(t, WithTransport(transport), WithContextMessages(models.MakeContext("old")))
	replaced := c.WithConversationContext(models.MakeContext("new"))

	_, err := replaced.SendChats(t.Context(), nil)
	require.NoError(t, err)
	var req models.ChatRequest
	require.NoError(t, json.Unmarshal((*seen)[0].Body, &req))
	assert.Equal(t, models.MakeContext("new"), req.Messages)
	assert.Equal(t, models.MakeContext("old"), c.Context())
}

func TestContext_ReturnsCopy(t *testing.T) {
	c := newTestClient(t, WithContextMessages(models.MakeContext("keep")))
	ctx := c.Context()
	ctx[0].Content = "changed"
	assert.Equal(t, "keep", c.Context()[0].Content)
}

func TestRestyTransport_AgainstHTTPServer(t *testing.T) {
	var gotAuth, gotCache string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotCache = r.Header.Get("Cache-Control")
		gotBody, _ = io.ReadAll(r.Body)
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(okBody))
	}))
	defer srv.Close()

	transport := NewRestyTransport(0)
	defer transport.Close()
	c := newTestClient(t, WithTransport(transport), WithEndpoint(srv.URL+"/v1/chat/completions"))

	resp, err := c.SendChats(t.Context(), []models.ChatMessage{models.NewUserMessage("hi")})
	require.NoError(t, err)
	msg, ok := resp.FirstMessage()
	require.True(t, ok)
	assert.Equal(t, "Be brief: they flap fast.", msg.Content)
	assert.Equal(t, "Bearer sk-test", gotAuth)
	assert.Equal(t, "no-cache", gotCache)
	assert.JSONEq(t, `{"model":"gpt-3.5-turbo","messages":[{"role":"user","content":"hi"}]}`, string(gotBody))
}

func TestRestyTransport_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Incorrect API key provided","type":"invalid_request_error","param":null,"code":"invalid_api_key"}}`))
	}))
	defer srv.Close()

	transport := NewRestyTransport(0)
	defer transport.Close()
	c := newTestClient(t, WithTransport(transport), WithEndpoint(srv.URL))

	_, err := c.SendChats(t.Context(), nil)
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusUnauthorized, statusErr.StatusCode)
	detail, ok := statusErr.Detail()
	require.True(t, ok)
	require.NotNil(t, detail.Code)
	assert.Equal(t, "invalid_api_key", *detail.Code)
}

func TestRestyTransport_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	transport := NewRestyTransport(0)
	defer transport.Close()
	c := newTestClient(t, WithTransport(transport), WithEndpoint(url))

	_, err := c.SendChats(t.Context(), nil)
	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.NotNil(t, netErr.Unwrap())
}
