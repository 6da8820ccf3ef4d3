// Package webapi 提供 /api 下的运维辅助接口（系统状态）。
package webapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"

	"audioclassify-server-go/internal/domain/inference"
	platformconfig "audioclassify-server-go/internal/platform/config"
	platformerrors "audioclassify-server-go/internal/platform/errors"
	httptransport "audioclassify-server-go/internal/transport/http"
	"audioclassify-server-go/internal/utils"
)

// Service WebAPI服务的HTTP传输层实现
type Service struct {
	logger    *utils.Logger
	config    *platformconfig.Config
	pool      *inference.Pool
	startedAt time.Time
}

// NewService 创建WebAPI服务实例
func NewService(config *platformconfig.Config, logger *utils.Logger, pool *inference.Pool) (*Service, error) {
	if config == nil {
		return nil, platformerrors.New(platformerrors.KindConfig, "webapi.new", "config is required")
	}
	if pool == nil {
		return nil, platformerrors.New(platformerrors.KindConfig, "webapi.new", "inference pool is required")
	}

	return &Service{
		logger:    logger,
		config:    config,
		pool:      pool,
		startedAt: time.Now(),
	}, nil
}

// Register 注册WebAPI相关的HTTP路由
func (s *Service) Register(ctx context.Context, router *gin.RouterGroup) error {
	router.GET("/system/status", s.handleSystemStatus)

	s.logger.InfoTag("HTTP", "WebAPI服务路由注册完成")
	return nil
}

// systemStatus 系统状态快照
type systemStatus struct {
	UptimeSeconds  float64         `json:"uptime_seconds"`
	CPUPercent     float64         `json:"cpu_percent"`
	MemUsedPercent float64         `json:"mem_used_percent"`
	MemUsedMB      float64         `json:"mem_used_mb"`
	HostUptimeSec  uint64          `json:"host_uptime_seconds"`
	Pool           inference.Stats `json:"pool"`
	Emotion        endpointStatus  `json:"emotion"`
	Scene          endpointStatus  `json:"scene"`
}

type endpointStatus struct {
	Enabled  bool   `json:"enabled"`
	Endpoint string `json:"endpoint"`
	Engine   string `json:"engine"`
}

// handleSystemStatus 返回进程与主机的运行状态
// @Summary 系统状态
// @Description CPU/内存占用、运行时长、推理池统计与各端点装配信息
// @Tags System
// @Produce json
// @Success 200 {object} httptransport.APIResponse
// @Router /system/status [get]
func (s *Service) handleSystemStatus(c *gin.Context) {
	status := systemStatus{
		UptimeSeconds: time.Since(s.startedAt).Seconds(),
		Pool:          s.pool.Stats(),
		Emotion: endpointStatus{
			Enabled:  s.config.Emotion.Enabled,
			Endpoint: s.config.Emotion.Endpoint,
			Engine:   s.config.Emotion.Engine.Type,
		},
		Scene: endpointStatus{
			Enabled:  s.config.Scene.Enabled,
			Endpoint: s.config.Scene.Endpoint,
			Engine:   s.config.Scene.Engine.Type,
		},
	}

	// 状态接口尽力而为，采集失败不算错误
	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		status.CPUPercent = percents[0]
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		status.MemUsedPercent = vm.UsedPercent
		status.MemUsedMB = float64(vm.Used) / 1024 / 1024
	}
	if uptime, err := host.Uptime(); err == nil {
		status.HostUptimeSec = uptime
	}

	httptransport.RespondSuccess(c, http.StatusOK, status, "")
}
