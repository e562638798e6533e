/*
 * Copyright 2022 The Go Authors<36625090@qq.com>. All rights reserved.
 * Use of this source code is governed by a MIT-style
 * license that can be found in the LICENSE file.
 */

package utils

import (
	"net/http"
	"strings"
)

func GetRemoteAddr(r *http.Request) string {
	remoteAddr := r.Header.Get("X-Forwarded-For")
	if remoteAddr != "" {
		// 多级代理时取最前面的客户端地址
		if i := strings.Index(remoteAddr, ","); i >= 0 {
			remoteAddr = strings.TrimSpace(remoteAddr[:i])
		}
	}
	if remoteAddr == "" {
		remoteAddr = r.Header.Get("X-Real-IP")
	}
	if remoteAddr == "" {
		remoteAddr = r.RemoteAddr
	}
	return remoteAddr
}
