// Package classify 分类端点的HTTP传输层：裸字节体进、契约 JSON 出，
// 推理经由有界工作池执行，避免阻塞请求处理协程。
package classify

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"audioclassify-server-go/internal/domain/audio"
	domainclassify "audioclassify-server-go/internal/domain/classify"
	"audioclassify-server-go/internal/domain/inference"
	platformconfig "audioclassify-server-go/internal/platform/config"
	platformerrors "audioclassify-server-go/internal/platform/errors"
	"audioclassify-server-go/internal/platform/metrics"
	httptransport "audioclassify-server-go/internal/transport/http"
	"audioclassify-server-go/internal/utils"
)

// Classifier 分类器的传输层视角：整段采样进，契约结果出。
type Classifier interface {
	Classify(ctx context.Context, samples []float32) (*domainclassify.Result, error)
}

// Service 分类服务的HTTP传输层实现
type Service struct {
	logger  *utils.Logger
	config  *platformconfig.Config
	pool    *inference.Pool
	emotion Classifier
	scene   Classifier
}

// NewService 创建分类服务实例。emotion/scene 允许按配置缺省其一。
func NewService(
	config *platformconfig.Config,
	logger *utils.Logger,
	pool *inference.Pool,
	emotion Classifier,
	scene Classifier,
) (*Service, error) {
	if config == nil {
		return nil, platformerrors.New(platformerrors.KindConfig, "classify.new", "config is required")
	}
	if pool == nil {
		return nil, platformerrors.New(platformerrors.KindConfig, "classify.new", "inference pool is required")
	}
	if emotion == nil && scene == nil {
		return nil, platformerrors.New(platformerrors.KindConfig, "classify.new", "至少要启用一个分类器")
	}

	return &Service{
		logger:  logger,
		config:  config,
		pool:    pool,
		emotion: emotion,
		scene:   scene,
	}, nil
}

// Register 把启用的分类端点挂到根路由上
func (s *Service) Register(ctx context.Context, engine *gin.Engine) error {
	if s.emotion != nil {
		engine.POST(s.config.Emotion.Endpoint, s.handleClassify("emotion", s.emotion, s.config.Emotion.Engine.SampleRate))
	}
	if s.scene != nil {
		engine.POST(s.config.Scene.Endpoint, s.handleClassify("scene", s.scene, s.config.Scene.Engine.SampleRate))
	}

	s.logger.InfoTag("HTTP", "分类服务路由注册完成")
	return nil
}

// handleClassify 处理一次分类请求
// @Summary 音频分类
// @Description 请求体为裸小端 float32 PCM（或按 Content-Type 识别的 WAV/MP3），返回标签、置信度与完整得分分布
// @Tags Classify
// @Accept octet-stream
// @Produce json
// @Param X-Sample-Rate header int false "裸 PCM 的采样率，与引擎不一致时重采样"
// @Success 200 {object} domainclassify.Result
// @Failure 500 {object} httptransport.APIResponse
// @Router /emotion [post]
func (s *Service) handleClassify(endpoint string, clf Classifier, engineRate int) gin.HandlerFunc {
	return func(c *gin.Context) {
		metrics.ClassifyTotal.WithLabelValues(endpoint).Inc()

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			metrics.ClassifyErrors.WithLabelValues(endpoint).Inc()
			httptransport.RespondError(c, http.StatusInternalServerError, "读取请求体失败", gin.H{"error": err.Error()})
			return
		}

		samples, err := s.decodeBody(c, body, engineRate)
		if err != nil {
			metrics.ClassifyErrors.WithLabelValues(endpoint).Inc()
			httptransport.RespondError(c, http.StatusInternalServerError, "解码音频失败", gin.H{"error": err.Error()})
			return
		}
		metrics.SamplesDecoded.Add(float64(len(samples)))

		var (
			result      *domainclassify.Result
			classifyErr error
		)
		poolErr := s.pool.Do(c.Request.Context(), func() {
			result, classifyErr = clf.Classify(c.Request.Context(), samples)
		})
		if poolErr != nil {
			metrics.ClassifyErrors.WithLabelValues(endpoint).Inc()
			httptransport.RespondError(c, http.StatusInternalServerError, "推理调度失败", gin.H{"error": poolErr.Error()})
			return
		}
		if classifyErr != nil {
			metrics.ClassifyErrors.WithLabelValues(endpoint).Inc()
			s.logger.ErrorTag("HTTP", "%s 分类失败: %v", endpoint, classifyErr)
			httptransport.RespondError(c, http.StatusInternalServerError, "分类失败", gin.H{"error": classifyErr.Error()})
			return
		}

		metrics.ClassifyDuration.WithLabelValues(endpoint).Observe(result.LatencyMs / 1000)
		httptransport.RespondRaw(c, http.StatusOK, result)
	}
}

// decodeBody 按 Content-Type 解出单声道 float32 采样并对齐到引擎采样率。
// 默认按裸小端 float32 处理，尾部不足 4 字节的部分静默丢弃。
func (s *Service) decodeBody(c *gin.Context, body []byte, engineRate int) ([]float32, error) {
	contentType := strings.ToLower(c.ContentType())

	switch {
	case strings.Contains(contentType, "audio/wav"), strings.Contains(contentType, "audio/x-wav"):
		samples, rate, err := audio.ParseWAV(body)
		if err != nil {
			return nil, err
		}
		return audio.Resample(samples, rate, engineRate), nil

	case strings.Contains(contentType, "audio/mpeg"), strings.Contains(contentType, "audio/mp3"):
		samples, rate, err := audio.DecodeMP3(body)
		if err != nil {
			return nil, err
		}
		return audio.Resample(samples, rate, engineRate), nil

	default:
		samples := audio.DecodeFloat32LE(body)
		if header := c.GetHeader("X-Sample-Rate"); header != "" {
			if rate, err := strconv.Atoi(header); err == nil && rate > 0 {
				samples = audio.Resample(samples, rate, engineRate)
			}
		}
		return samples, nil
	}
}
