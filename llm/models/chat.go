package models

import (
	"encoding/json"
	"fmt"
	"time"
)

type ChatRequest struct {
	Model            ModelVersion                 `json:"model"`                      // e.g., "gpt-4o"
	Messages         []ChatMessage                `json:"messages"`                   // message history
	N                Optional[int]                `json:"n,omitzero"`                 // 生成几个候选
	Temperature      Optional[float64]            `json:"temperature,omitzero"`       // creativity level
	TopP             Optional[float64]            `json:"top_p,omitzero"`             // nucleus sampling
	Stream           Optional[bool]               `json:"stream,omitzero"`            // 不消费流式结果，仅透传
	Stop             Optional[[]string]           `json:"stop,omitzero"`              // stop sequences
	MaxTokens        Optional[int]                `json:"max_tokens,omitzero"`        // optional
	PresencePenalty  Optional[float64]            `json:"presence_penalty,omitzero"`  // -2.0 ~ 2.0
	FrequencyPenalty Optional[float64]            `json:"frequency_penalty,omitzero"` // -2.0 ~ 2.0
	LogitBias        Optional[map[string]float64] `json:"logit_bias,omitzero"`        // token id -> bias
	User             Optional[string]             `json:"user,omitzero"`              // end-user identifier
}

func NewChatRequest(model ModelVersion, messages []ChatMessage) *ChatRequest {
	return &ChatRequest{
		Model:    model,
		Messages: messages,
	}
}

type ChatChoice struct {
	Index        int         `json:"index"`
	Message      ChatMessage `json:"message"`
	FinishReason string      `json:"finish_reason,omitempty"`
}

func (c *ChatChoice) UnmarshalJSON(data []byte) error {
	var raw struct {
		Index        int          `json:"index"`
		Message      *ChatMessage `json:"message"`
		FinishReason string       `json:"finish_reason"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Message == nil {
		return missingField("choices[].message")
	}
	if !raw.Message.Role.Valid() {
		return missingField("choices[].message.role")
	}
	*c = ChatChoice{
		Index:        raw.Index,
		Message:      *raw.Message,
		FinishReason: raw.FinishReason,
	}
	return nil
}

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type ChatResponse struct {
	ID      string       `json:"id"`
	Object  string       `json:"object,omitempty"`
	Created int64        `json:"created"` // seconds since epoch
	Model   string       `json:"model"`
	Choices []ChatChoice `json:"choices"`
	Usage   *Usage       `json:"usage,omitempty"`
}

// UnmarshalJSON id/created/model/choices 缺一不可，否则整体失败
func (r *ChatResponse) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID      *string       `json:"id"`
		Object  string        `json:"object"`
		Created *int64        `json:"created"`
		Model   *string       `json:"model"`
		Choices *[]ChatChoice `json:"choices"`
		Usage   *Usage        `json:"usage"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch {
	case raw.ID == nil:
		return missingField("id")
	case raw.Created == nil:
		return missingField("created")
	case raw.Model == nil:
		return missingField("model")
	case raw.Choices == nil:
		return missingField("choices")
	}
	*r = ChatResponse{
		ID:      *raw.ID,
		Object:  raw.Object,
		Created: *raw.Created,
		Model:   *raw.Model,
		Choices: *raw.Choices,
		Usage:   raw.Usage,
	}
	return nil
}

func (r *ChatResponse) CreatedAt() time.Time {
	return time.Unix(r.Created, 0)
}

// FirstMessage 只取第一个候选
func (r *ChatResponse) FirstMessage() (ChatMessage, bool) {
	if r == nil || len(r.Choices) == 0 {
		return ChatMessage{}, false
	}
	return r.Choices[0].Message, true
}

type ErrorDetail struct {
	Message string  `json:"message"`
	Type    string  `json:"type"`
	Param   *string `json:"param"`
	Code    *string `json:"code"`
}

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

func (r *ErrorResponse) UnmarshalJSON(data []byte) error {
	var raw struct {
		Error *struct {
			Message *string `json:"message"`
			Type    *string `json:"type"`
			Param   *string `json:"param"`
			Code    *string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch {
	case raw.Error == nil:
		return missingField("error")
	case raw.Error.Message == nil:
		return missingField("error.message")
	case raw.Error.Type == nil:
		return missingField("error.type")
	}
	*r = ErrorResponse{Error: ErrorDetail{
		Message: *raw.Error.Message,
		Type:    *raw.Error.Type,
		Param:   raw.Error.Param,
		Code:    raw.Error.Code,
	}}
	return nil
}

func (r *ErrorResponse) String() string {
	if r == nil {
		return "<nil>"
	}
	s := fmt.Sprintf("%s (type=%s", r.Error.Message, r.Error.Type)
	if r.Error.Param != nil {
		s += ", param=" + *r.Error.Param
	}
	if r.Error.Code != nil {
		s += ", code=" + *r.Error.Code
	}
	return s + ")"
}

func missingField(name string) error {
	return fmt.Errorf("chat payload: missing or null field %q", name)
}
