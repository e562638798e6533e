package models

import (
	"encoding/json"
	"fmt"
)

// ModelVersion 选择调用的模型
// gpt-3.5-turbo 最便宜，gpt-4-turbo 最贵
type ModelVersion string

const (
	GPT35Turbo ModelVersion = "gpt-3.5-turbo" // 训练数据截止 2021-09
	GPT4o      ModelVersion = "gpt-4o"        // 训练数据截止 2023-10
	GPT4Turbo  ModelVersion = "gpt-4-turbo"   // 训练数据截止 2023-12
)

func (m ModelVersion) Valid() bool {
	switch m {
	case GPT35Turbo, GPT4o, GPT4Turbo:
		return true
	}
	return false
}

func (m ModelVersion) String() string {
	return string(m)
}

// ParseModelVersion 解析配置中的模型名称
func ParseModelVersion(s string) (ModelVersion, error) {
	m := ModelVersion(s)
	if !m.Valid() {
		return "", fmt.Errorf("unknown model version %q", s)
	}
	return m, nil
}

func (m *ModelVersion) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v, err := ParseModelVersion(s)
	if err != nil {
		return err
	}
	*m = v
	return nil
}

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

func (r Role) Valid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	}
	return false
}

func (r *Role) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if !Role(s).Valid() {
		return fmt.Errorf("unknown message role %q", s)
	}
	*r = Role(s)
	return nil
}

// ChatMessage 一轮对话，值类型，可直接比较或作为 map 的 key
type ChatMessage struct {
	Role    Role   `json:"role"`    // "user", "assistant", "system"
	Content string `json:"content"` // e.g., "Hello!"
}

func NewUserMessage(content string) ChatMessage {
	return ChatMessage{Role: RoleUser, Content: content}
}

func NewAssistantMessage(content string) ChatMessage {
	return ChatMessage{Role: RoleAssistant, Content: content}
}

// MakeContext 把若干条指令转成 system 消息
func MakeContext(contents ...string) []ChatMessage {
	msgs := make([]ChatMessage, 0, len(contents))
	for _, c := range contents {
		msgs = append(msgs, ChatMessage{Role: RoleSystem, Content: c})
	}
	return msgs
}
