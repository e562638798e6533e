package models

import (
	"bytes"
	"encoding/json"

	"github.com/pkg/errors"
)

// ErrUnsetOptional 未设置的 Optional 被直接编码，通常是字段漏写了 omitzero
var ErrUnsetOptional = errors.New("models: unset optional encoded without omitzero")

// Optional 显式区分"未设置"和零值。
// 未设置时配合 `omitzero` 从 JSON 中省略，而不是输出 null。
type Optional[T any] struct {
	value T
	set   bool
}

func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, set: true}
}

func None[T any]() Optional[T] {
	return Optional[T]{}
}

func (o Optional[T]) Get() (T, bool) {
	return o.value, o.set
}

// OrElse 未设置时返回 def
func (o Optional[T]) OrElse(def T) T {
	if o.set {
		return o.value
	}
	return def
}

func (o Optional[T]) IsSet() bool {
	return o.set
}

// IsZero 供 encoding/json 的 omitzero 使用
func (o Optional[T]) IsZero() bool {
	return !o.set
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.set {
		return nil, ErrUnsetOptional
	}
	return json.Marshal(o.value)
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*o = Optional[T]{}
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*o = Some(v)
	return nil
}
