package utils

import (
	"encoding/json"
	"os"
	"os/signal"
	"syscall"
)

// Bytes2Struct converts a JSON byte slice to a struct.
func Bytes2Struct[T any](data []byte) (T, error) {
	var result T
	err := json.Unmarshal(data, &result)
	if err != nil {
		return result, err
	}
	return result, nil
}

func Struct2Bytes[T any](data T) (string, error) {
	bytes, err := json.Marshal(data)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// MakeShutdownCh 收到 SIGINT/SIGTERM 时关闭返回的通道
func MakeShutdownCh() chan struct{} {
	resultCh := make(chan struct{})
	signalCh := make(chan os.Signal, 4)
	signal.Notify(signalCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-signalCh
		signal.Stop(signalCh)
		close(resultCh)
	}()
	return resultCh
}
