package httptransport

import (
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
)

// APIResponse 定义统一的接口返回结构体
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
	Message string      `json:"message"`
	Code    int         `json:"code"`
}

// RespondSuccess 返回成功响应
func RespondSuccess(c *gin.Context, httpStatus int, data interface{}, message string) {
	if message == "" {
		message = "ok"
	}

	resp := APIResponse{
		Success: true,
		Message: message,
		Code:    httpStatus,
		Data:    data,
	}

	c.JSON(httpStatus, resp)
}

// RespondError 返回失败响应
func RespondError(c *gin.Context, httpStatus int, message string, data interface{}) {
	resp := APIResponse{
		Success: false,
		Message: message,
		Code:    httpStatus,
		Data:    data,
	}

	c.JSON(httpStatus, resp)
}

// RespondRaw 不套 APIResponse 包装、用 sonic 序列化后原样返回。
// 分类结果的线上契约是裸对象，必须保持原样。
func RespondRaw(c *gin.Context, httpStatus int, payload interface{}) {
	body, err := sonic.Marshal(payload)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "序列化响应失败", gin.H{"error": err.Error()})
		return
	}
	c.Data(httpStatus, "application/json; charset=utf-8", body)
}
