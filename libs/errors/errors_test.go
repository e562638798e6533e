package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStackError(t *testing.T) {
	err := New(CodeBadRequest, "text is empty")
	assert.Equal(t, CodeBadRequest, err.Code())
	assert.Equal(t, "text is empty", err.Msg())
	assert.Equal(t, "[1000] text is empty", err.Error())
}

func TestWrap(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := Wrap(CodeNetwork, cause, "assistant unreachable")
	assert.Equal(t, "[1001] assistant unreachable: connection refused", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, fmt.Sprintf("%+v", err), "errors_test.go")

	assert.Nil(t, Wrap(CodeNetwork, nil, "nothing"))
}
