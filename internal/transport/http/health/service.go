// Package health 提供存活检查端点。它不依赖模型、类别表或工作池的任何状态。
package health

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"audioclassify-server-go/internal/utils"
)

// Service 健康检查的HTTP传输层实现
type Service struct {
	logger *utils.Logger
}

// NewService 创建健康检查服务实例
func NewService(logger *utils.Logger) *Service {
	return &Service{logger: logger}
}

// Register 注册健康检查路由
func (s *Service) Register(ctx context.Context, engine *gin.Engine) error {
	engine.GET("/health", s.handleGet)
	s.logger.InfoTag("HTTP", "健康检查路由注册完成")
	return nil
}

// handleGet 处理健康检查请求
// @Summary 健康检查
// @Description 无条件返回 ok，不依赖模型初始化状态
// @Tags Health
// @Produce json
// @Success 200 {object} object
// @Router /health [get]
func (s *Service) handleGet(c *gin.Context) {
	c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(`{"status":"ok"}`))
}
