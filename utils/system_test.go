package utils

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestBytes2Struct(t *testing.T) {
	s, err := Bytes2Struct[sample]([]byte(`{"name":"help","count":2}`))
	require.NoError(t, err)
	assert.Equal(t, sample{Name: "help", Count: 2}, s)

	_, err = Bytes2Struct[sample]([]byte(`{"count":"two"}`))
	assert.Error(t, err)
}

func TestStruct2Bytes(t *testing.T) {
	s, err := Struct2Bytes(sample{Name: "desk"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"desk","count":0}`, s)
}

func TestGetRemoteAddr(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "10.0.0.1:5555"
	assert.Equal(t, "10.0.0.1:5555", GetRemoteAddr(r))

	r.Header.Set("X-Real-IP", "192.168.1.2")
	assert.Equal(t, "192.168.1.2", GetRemoteAddr(r))

	r.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	assert.Equal(t, "203.0.113.7", GetRemoteAddr(r))
}
