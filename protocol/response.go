package protocol

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/stardustagi/HelpDeskGPT/libs/errors"
)

// 返回定义
type BaseResponse struct {
	ErrCode int         `json:"errcode"`
	ErrMsg  string      `json:"errmsg,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// Response 业务错误同样返回 200，由 errcode 区分
func Response(c echo.Context, err *errors.StackError, data any) error {
	if err == nil {
		return c.JSON(http.StatusOK, BaseResponse{
			ErrCode: errors.CodeOK,
			ErrMsg:  "ok",
			Data:    data,
		})
	}

	return c.JSON(http.StatusOK, BaseResponse{
		ErrCode: err.Code(),
		ErrMsg:  err.Msg(),
	})
}
