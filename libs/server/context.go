package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/stardustagi/HelpDeskGPT/utils"
)

// ClientIDKey 客户端会话 ID 所在的请求头
const ClientIDKey = "X-Session-Id"

type Context struct {
	echo.Context
	RemoteAddr string
	ClientId   string
	Header     http.Header
}

func NewContext(c echo.Context) *Context {
	return &Context{
		Context:    c,
		RemoteAddr: utils.GetRemoteAddr(c.Request()),
		ClientId:   c.Request().Header.Get(ClientIDKey),
		Header:     c.Request().Header,
	}
}
