package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/swaggo/swag"
	"golang.org/x/sync/errgroup"

	"audioclassify-server-go/internal/domain/emotion"
	"audioclassify-server-go/internal/domain/engine"
	"audioclassify-server-go/internal/domain/eventbus"
	"audioclassify-server-go/internal/domain/inference"
	"audioclassify-server-go/internal/domain/scene"
	platformconfig "audioclassify-server-go/internal/platform/config"
	platformerrors "audioclassify-server-go/internal/platform/errors"
	platformlogging "audioclassify-server-go/internal/platform/logging"
	"audioclassify-server-go/internal/platform/metrics"
	platformobservability "audioclassify-server-go/internal/platform/observability"
	httptransport "audioclassify-server-go/internal/transport/http"
	httpclassify "audioclassify-server-go/internal/transport/http/classify"
	httphealth "audioclassify-server-go/internal/transport/http/health"
	httpwebapi "audioclassify-server-go/internal/transport/http/webapi"
	"audioclassify-server-go/internal/utils"
)

const scalarHTML = `<!DOCTYPE html>
<html lang="zh-CN">
	<head>
		<meta charset="utf-8" />
		<title>AudioClassify API Reference</title>
		<meta name="viewport" content="width=device-width, initial-scale=1" />
	</head>
	<body>
		<script
			id="api-reference"
			data-url="/openapi.json"
			data-layout="modern"
			src="https://cdn.jsdelivr.net/npm/@scalar/api-reference"
		></script>
	</body>
</html>`

type stepFn func(context.Context, *appState) error

type initStep struct {
	ID        string
	Title     string
	DependsOn []string
	Kind      platformerrors.Kind
	Execute   stepFn
}

type appState struct {
	config                *platformconfig.Config
	configPath            string
	logProvider           *platformlogging.Logger
	logger                *utils.Logger
	slogger               *slog.Logger
	observabilityShutdown platformobservability.ShutdownFunc

	classNames    []string
	runtimeInited bool
	emotionClf    *emotion.Classifier
	sceneClf      *scene.Classifier
	pool          *inference.Pool
}

// Run 启动整个服务生命周期，负责加载配置、初始化依赖和优雅关停。
// 任何初始化步骤失败（模型加载、类别表拉取等）都会中止启动。
func Run(ctx context.Context) error {
	state := &appState{}

	steps := InitGraph()
	if err := executeInitSteps(ctx, steps, state); err != nil {
		return err
	}

	config := state.config
	logger := state.logger
	if config == nil || logger == nil {
		return platformerrors.New(
			platformerrors.KindBootstrap,
			"bootstrap state validation",
			"config/logger not initialised",
		)
	}
	if state.pool == nil {
		return platformerrors.New(
			platformerrors.KindBootstrap,
			"bootstrap state validation",
			"inference pool not initialised",
		)
	}
	if state.emotionClf == nil && state.sceneClf == nil {
		return platformerrors.New(
			platformerrors.KindBootstrap,
			"bootstrap state validation",
			"no classifier enabled",
		)
	}

	logBootstrapGraph(steps, logger)

	defer logger.Close()

	if shutdown := state.observabilityShutdown; shutdown != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				logger.WarnTag("引导", "可观测性未正常关闭: %v", err)
			}
		}()
	}

	defer state.closeEngines(logger)

	rootCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	signalCtx, stop := signal.NotifyContext(rootCtx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(rootCtx)

	if _, err := startHTTPServer(state, group, groupCtx); err != nil {
		cancel()
		return err
	}

	logger.InfoTag("引导", "服务已成功启动")

	return waitForShutdown(signalCtx, cancel, logger, group)
}

// closeEngines 按依赖顺序释放推理资源：先池、再分类器、最后运行时。
func (state *appState) closeEngines(logger *utils.Logger) {
	if state.pool != nil {
		state.pool.Close()
	}
	if state.emotionClf != nil {
		if err := state.emotionClf.Close(); err != nil {
			logger.WarnTag("情感", "引擎未正常关闭: %v", err)
		}
	}
	if state.sceneClf != nil {
		if err := state.sceneClf.Close(); err != nil {
			logger.WarnTag("场景", "引擎未正常关闭: %v", err)
		}
	}
	eventbus.Shutdown()
	if state.runtimeInited {
		if err := engine.ShutdownRuntime(); err != nil {
			logger.WarnTag("推理", "onnxruntime 未正常释放: %v", err)
		}
	}
}

func logBootstrapGraph(steps []initStep, logger *utils.Logger) {
	if logger == nil {
		return
	}
	logger.InfoTag("引导", "初始化依赖关系概览")

	for _, step := range steps {
		if len(step.DependsOn) > 0 {
			logger.InfoTag("引导", "%s (依赖: %s)", step.ID, strings.Join(step.DependsOn, ", "))
		} else {
			logger.InfoTag("引导", "%s", step.ID)
		}
	}
	logger.InfoTag("引导", "启动服务")
}

func executeInitSteps(ctx context.Context, steps []initStep, state *appState) error {
	if state == nil {
		return platformerrors.New(
			platformerrors.KindBootstrap,
			"execute init steps",
			"nil bootstrap state",
		)
	}

	completed := make(map[string]struct{}, len(steps))
	for _, step := range steps {
		for _, dep := range step.DependsOn {
			if _, ok := completed[dep]; !ok {
				return platformerrors.New(
					platformerrors.KindBootstrap,
					step.ID,
					fmt.Sprintf("dependency %s not satisfied", dep),
				)
			}
		}
		if step.Execute == nil {
			return platformerrors.New(
				platformerrors.KindBootstrap,
				step.ID,
				"missing execute function",
			)
		}
		if err := step.Execute(ctx, state); err != nil {
			var typed *platformerrors.Error
			if errors.As(err, &typed) {
				return err
			}

			kind := step.Kind
			if kind == "" {
				kind = platformerrors.KindBootstrap
			}
			return platformerrors.Wrap(kind, step.ID, "bootstrap step failed", err)
		}
		completed[step.ID] = struct{}{}
	}
	return nil
}

func InitGraph() []initStep {
	return []initStep{
		{
			ID:      "config:load",
			Title:   "Load configuration",
			Kind:    platformerrors.KindConfig,
			Execute: loadConfigStep,
		},
		{
			ID:        "logging:init-provider",
			Title:     "Initialise logging provider",
			DependsOn: []string{"config:load"},
			Kind:      platformerrors.KindBootstrap,
			Execute:   initLoggingStep,
		},
		{
			ID:        "observability:setup-hooks",
			Title:     "Setup observability hooks",
			DependsOn: []string{"logging:init-provider"},
			Kind:      platformerrors.KindBootstrap,
			Execute:   setupObservabilityStep,
		},
		{
			ID:        "metrics:init",
			Title:     "Initialise metrics exposition",
			DependsOn: []string{"logging:init-provider"},
			Kind:      platformerrors.KindBootstrap,
			Execute:   initMetricsStep,
		},
		{
			ID:        "classmap:fetch",
			Title:     "Fetch audio event class map",
			DependsOn: []string{"logging:init-provider"},
			Kind:      platformerrors.KindClassMap,
			Execute:   fetchClassMapStep,
		},
		{
			ID:        "engine:init-runtime",
			Title:     "Initialise inference runtime",
			DependsOn: []string{"logging:init-provider"},
			Kind:      platformerrors.KindEngine,
			Execute:   initRuntimeStep,
		},
		{
			ID:        "engine:init-emotion",
			Title:     "Initialise emotion classifier",
			DependsOn: []string{"engine:init-runtime"},
			Kind:      platformerrors.KindEngine,
			Execute:   initEmotionStep,
		},
		{
			ID:        "engine:init-scene",
			Title:     "Initialise scene classifier",
			DependsOn: []string{"engine:init-runtime", "classmap:fetch"},
			Kind:      platformerrors.KindEngine,
			Execute:   initSceneStep,
		},
		{
			ID:        "inference:init-pool",
			Title:     "Initialise inference worker pool",
			DependsOn: []string{"config:load"},
			Kind:      platformerrors.KindBootstrap,
			Execute:   initPoolStep,
		},
	}
}

func loadConfigStep(_ context.Context, state *appState) error {
	loader := platformconfig.NewLoader()
	cfg, err := loader.Load()
	if err != nil {
		return err
	}
	state.config = cfg
	state.configPath = loader.LoadedPath()
	return nil
}

func initLoggingStep(_ context.Context, state *appState) error {
	if state == nil || state.config == nil {
		return platformerrors.New(
			platformerrors.KindBootstrap,
			"logging:init-provider",
			"config not loaded",
		)
	}

	logProvider, err := platformlogging.New(platformlogging.Config{
		Level:    state.config.Log.Level,
		Dir:      state.config.Log.Dir,
		Filename: state.config.Log.File,
	})
	if err != nil {
		return platformerrors.Wrap(platformerrors.KindBootstrap, "logging:init-provider", "failed to initialize logging provider", err)
	}

	state.logProvider = logProvider
	state.logger = logProvider.Legacy()
	state.slogger = logProvider.Slog()
	utils.DefaultLogger = state.logger

	state.logger.InfoTag(
		"引导",
		"日志模块就绪 [%s] %s",
		state.config.Log.Level,
		state.configPath,
	)

	// 设置事件处理器
	eventbus.SetupEventHandlers()

	return nil
}

func setupObservabilityStep(ctx context.Context, state *appState) error {
	if state == nil || state.logger == nil || state.config == nil {
		return platformerrors.New(
			platformerrors.KindBootstrap,
			"observability:setup-hooks",
			"config/logger not initialised",
		)
	}

	slogger := state.slogger
	if slogger == nil {
		slogger = state.logger.Slog()
	}

	cfg := platformobservability.Config{
		Enabled: strings.EqualFold(state.config.Log.Level, "debug"),
	}

	shutdown, err := platformobservability.Setup(ctx, cfg, slogger)
	if err != nil {
		return platformerrors.Wrap(platformerrors.KindBootstrap, "observability:setup-hooks", "failed to setup observability hooks", err)
	}
	state.observabilityShutdown = shutdown

	return nil
}

// initMetricsStep 指标收集器在包加载时已注册，这里只记录暴露配置
func initMetricsStep(_ context.Context, state *appState) error {
	if !state.config.Metrics.Enabled {
		state.logger.InfoTag("指标", "指标暴露已关闭")
		return nil
	}
	state.logger.InfoTag("指标", "指标收集就绪，暴露端点 %s", state.config.Metrics.Endpoint)
	return nil
}

// fetchClassMapStep 启动时拉取一次类别表，失败即中止启动
func fetchClassMapStep(ctx context.Context, state *appState) error {
	if !state.config.Scene.Enabled {
		return nil
	}

	names, err := scene.LoadClassMap(ctx, scene.ClassMapConfig{
		URL:     state.config.Scene.ClassMap.URL,
		Path:    state.config.Scene.ClassMap.Path,
		Timeout: state.config.Scene.ClassMap.Timeout,
	})
	if err != nil {
		return err
	}

	state.classNames = names
	state.logger.InfoTag("类别表", "细粒度类别表就绪，共 %d 类", len(names))
	return nil
}

// initRuntimeStep 只有配置了 onnx 引擎时才初始化共享运行时
func initRuntimeStep(_ context.Context, state *appState) error {
	cfg := state.config

	var libraryPath string
	needsRuntime := false
	if cfg.Emotion.Enabled && cfg.Emotion.Engine.Type == "onnx" {
		needsRuntime = true
		libraryPath = cfg.Emotion.Engine.LibraryPath
	}
	if cfg.Scene.Enabled && cfg.Scene.Engine.Type == "onnx" {
		needsRuntime = true
		if libraryPath == "" {
			libraryPath = cfg.Scene.Engine.LibraryPath
		}
	}
	if !needsRuntime {
		return nil
	}

	if err := engine.InitRuntime(libraryPath); err != nil {
		return err
	}
	state.runtimeInited = true
	state.logger.InfoTag("推理", "onnxruntime 运行时就绪")
	return nil
}

func initEmotionStep(_ context.Context, state *appState) error {
	if !state.config.Emotion.Enabled {
		return nil
	}

	eng, err := engine.Create(engineConfig(state.config.Emotion.Engine))
	if err != nil {
		return err
	}

	clf, err := emotion.New(eng, state.logger)
	if err != nil {
		return err
	}
	state.emotionClf = clf
	state.logger.InfoTag("情感", "情感分类器就绪 [%s]", state.config.Emotion.Engine.Type)
	return nil
}

func initSceneStep(_ context.Context, state *appState) error {
	if !state.config.Scene.Enabled {
		return nil
	}

	eng, err := engine.Create(engineConfig(state.config.Scene.Engine))
	if err != nil {
		return err
	}

	clf, err := scene.New(eng, state.classNames, scene.NewTable(state.config.Scene.Buckets), state.logger)
	if err != nil {
		return err
	}
	state.sceneClf = clf
	state.logger.InfoTag("场景", "场景分类器就绪 [%s]", state.config.Scene.Engine.Type)
	return nil
}

func initPoolStep(_ context.Context, state *appState) error {
	state.pool = inference.New(inference.Config{
		Workers:   state.config.Pool.Workers,
		QueueSize: state.config.Pool.QueueSize,
	})
	return nil
}

func engineConfig(cfg platformconfig.EngineConfig) engine.Config {
	return engine.Config{
		Type:         cfg.Type,
		ModelPath:    cfg.ModelPath,
		MetadataPath: cfg.MetadataPath,
		SampleRate:   cfg.SampleRate,
		LibraryPath:  cfg.LibraryPath,
	}
}

func startHTTPServer(
	state *appState,
	g *errgroup.Group,
	groupCtx context.Context,
) (*http.Server, error) {
	config := state.config
	logger := state.logger

	httpRouter, err := httptransport.Build(httptransport.Options{
		Config: config,
		Logger: logger,
	})
	if err != nil {
		return nil, err
	}
	router := httpRouter.Engine
	apiGroup := httpRouter.API

	router.NoRoute(func(c *gin.Context) {
		path := c.Request.URL.Path
		if strings.HasPrefix(path, "/api") {
			c.JSON(http.StatusNotFound, httptransport.APIResponse{
				Success: false,
				Data:    gin.H{},
				Message: "api Not found",
				Code:    http.StatusNotFound,
			})
			return
		}

		if config.Web.Enabled {
			c.File(config.Web.StaticDir + "/index.html")
			return
		}
		c.Status(http.StatusNotFound)
	})

	// 注册服务路由
	healthService := httphealth.NewService(logger)
	if err := healthService.Register(groupCtx, router); err != nil {
		return nil, err
	}

	// 具体分类器为 nil 时不能直接塞进接口，否则接口非空但调用必炸
	var emotionClf, sceneClf httpclassify.Classifier
	if state.emotionClf != nil {
		emotionClf = state.emotionClf
	}
	if state.sceneClf != nil {
		sceneClf = state.sceneClf
	}

	classifyService, err := httpclassify.NewService(config, logger, state.pool, emotionClf, sceneClf)
	if err != nil {
		logger.ErrorTag("HTTP", "分类服务初始化失败: %v", err)
		return nil, platformerrors.Wrap(platformerrors.KindTransport, "classify:new-service", "failed to create classify service", err)
	}
	if err := classifyService.Register(groupCtx, router); err != nil {
		return nil, err
	}

	webapiService, err := httpwebapi.NewService(config, logger, state.pool)
	if err != nil {
		logger.ErrorTag("HTTP", "WebAPI 服务初始化失败: %v", err)
		return nil, platformerrors.Wrap(platformerrors.KindTransport, "webapi:new-service", "failed to create webapi service", err)
	}
	if err := webapiService.Register(groupCtx, apiGroup); err != nil {
		return nil, err
	}

	if config.Metrics.Enabled {
		router.GET(config.Metrics.Endpoint, metrics.Handler())
		logger.InfoTag("指标", "Prometheus 指标端点就绪: %s", config.Metrics.Endpoint)
	}

	router.GET("/openapi.json", func(c *gin.Context) {
		doc, err := swag.ReadDoc()
		if err != nil {
			logger.ErrorTag("HTTP", "生成 OpenAPI 文档失败: %v", err)
			c.JSON(http.StatusInternalServerError, httptransport.APIResponse{
				Success: false,
				Data:    gin.H{"error": err.Error()},
				Message: "failed to generate openapi spec",
				Code:    http.StatusInternalServerError,
			})
			return
		}
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(doc))
	})

	router.GET("/docs", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(scalarHTML))
	})

	httpServer := &http.Server{
		Addr:    net.JoinHostPort(config.Server.IP, strconv.Itoa(config.Server.Port)),
		Handler: router,
	}

	g.Go(func() error {
		logger.InfoTag("HTTP", "Gin 服务已启动，访问地址 http://localhost:%d", config.Server.Port)
		logger.InfoTag("HTTP", "情感分类入口: POST http://localhost:%d%s", config.Server.Port, config.Emotion.Endpoint)
		logger.InfoTag("HTTP", "场景分类入口: POST http://localhost:%d%s", config.Server.Port, config.Scene.Endpoint)
		logger.InfoTag("HTTP", "在线文档入口: http://localhost:%d/docs", config.Server.Port)

		go func() {
			<-groupCtx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				logger.ErrorTag("HTTP", "HTTP 服务关闭失败: %v", err)
			} else {
				logger.InfoTag("HTTP", "HTTP 服务已优雅关闭")
			}
		}()

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.ErrorTag("HTTP", "HTTP 服务启动失败: %v", err)
			return err
		}
		return nil
	})

	return httpServer, nil
}

func waitForShutdown(
	ctx context.Context,
	cancel context.CancelFunc,
	logger *utils.Logger,
	g *errgroup.Group,
) error {
	<-ctx.Done()
	logger.InfoTag("引导", "收到系统信号 %v，正在进行资源清理", context.Cause(ctx))

	cancel()

	done := make(chan error, 1)
	go func() {
		done <- g.Wait()
	}()

	select {
	case err := <-done:
		if err != nil {
			logger.ErrorTag("引导", "服务关闭过程中出现错误: %v", err)
			return err
		}
		logger.InfoTag("引导", "所有服务已成功关闭")
	case <-time.After(15 * time.Second):
		timeoutErr := errors.New("服务关闭超时")
		logger.ErrorTag("引导", "服务关闭超时，已强制退出")
		return timeoutErr
	}
	return nil
}

// loadConfigAndLogger 加载配置和日志记录器（用于测试）
func loadConfigAndLogger() (*platformconfig.Config, *utils.Logger, error) {
	state := &appState{}

	steps := []initStep{
		{
			ID:      "config:load",
			Title:   "Load configuration",
			Kind:    platformerrors.KindConfig,
			Execute: loadConfigStep,
		},
		{
			ID:        "logging:init-provider",
			Title:     "Initialise logging provider",
			DependsOn: []string{"config:load"},
			Kind:      platformerrors.KindBootstrap,
			Execute:   initLoggingStep,
		},
	}

	if err := executeInitSteps(context.Background(), steps, state); err != nil {
		return nil, nil, err
	}

	return state.config, state.logger, nil
}
