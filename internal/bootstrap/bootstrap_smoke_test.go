package bootstrap

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"audioclassify-server-go/internal/utils"
)

// writeTestConfig 生成一份写到临时目录的配置，避免测试污染工作目录，
// 类别表走本地文件而不是真实网络。
func writeTestConfig(t *testing.T) {
	t.Helper()
	tmp := t.TempDir()

	classMap := filepath.Join(tmp, "class_map.csv")
	csv := "index,mid,display_name\n0,/m/09x0r,Speech\n1,/m/04rlf,Music\n2,/m/028v0c,Silence\n"
	if err := os.WriteFile(classMap, []byte(csv), 0o644); err != nil {
		t.Fatalf("write class map: %v", err)
	}

	cfg := "log:\n" +
		"  log_dir: " + tmp + "\n" +
		"scene:\n" +
		"  class_map:\n" +
		"    path: " + classMap + "\n"
	cfgPath := filepath.Join(tmp, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("AUDIOCLASSIFY_CONFIG", cfgPath)
}

func TestSmokeLoadConfigAndLogger(t *testing.T) {
	writeTestConfig(t)

	config, logger, err := loadConfigAndLogger()
	if err != nil {
		t.Fatalf("loadConfigAndLogger failed: %v", err)
	}
	if config == nil {
		t.Fatal("config is nil")
	}
	if logger == nil {
		t.Fatal("logger is nil")
	}
	logger.Close()
}

func TestInitGraphOrder(t *testing.T) {
	steps := InitGraph()
	want := []string{
		"config:load",
		"logging:init-provider",
		"observability:setup-hooks",
		"metrics:init",
		"classmap:fetch",
		"engine:init-runtime",
		"engine:init-emotion",
		"engine:init-scene",
		"inference:init-pool",
	}
	if len(steps) != len(want) {
		t.Fatalf("unexpected step count: got %d want %d", len(steps), len(want))
	}
	for i, step := range steps {
		if step.ID != want[i] {
			t.Fatalf("step %d mismatch: got %s want %s", i, step.ID, want[i])
		}
	}
}

func TestExecuteInitGraph(t *testing.T) {
	writeTestConfig(t)

	state := &appState{}
	if err := executeInitSteps(context.Background(), InitGraph(), state); err != nil {
		t.Fatalf("executeInitSteps failed: %v", err)
	}
	if state.config == nil {
		t.Fatal("config is nil after init")
	}
	if state.logger == nil {
		t.Fatal("logger is nil after init")
	}
	if state.observabilityShutdown == nil {
		t.Fatal("observability shutdown hook not set")
	}
	if len(state.classNames) != 3 {
		t.Fatalf("expected 3 class names, got %d", len(state.classNames))
	}
	if state.emotionClf == nil {
		t.Fatal("emotion classifier is nil after init")
	}
	if state.sceneClf == nil {
		t.Fatal("scene classifier is nil after init")
	}
	if state.pool == nil {
		t.Fatal("inference pool is nil after init")
	}

	defer state.logger.Close()
	defer state.observabilityShutdown(context.Background())
	state.pool.Close()
	state.emotionClf.Close()
	state.sceneClf.Close()
}

func TestExecuteInitGraphRejectsUnmetDependency(t *testing.T) {
	steps := []initStep{
		{
			ID:        "b",
			DependsOn: []string{"a"},
			Execute:   func(context.Context, *appState) error { return nil },
		},
	}
	if err := executeInitSteps(context.Background(), steps, &appState{}); err == nil {
		t.Fatal("expected unmet dependency error")
	}
}

func TestLogBootstrapGraphOutput(t *testing.T) {
	tmp := t.TempDir()
	logCfg := &utils.LogCfg{
		LogLevel: "info",
		LogDir:   tmp,
		LogFile:  "graph.log",
	}
	logger, err := utils.NewLogger(logCfg)
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	logBootstrapGraph(InitGraph(), logger)
	logger.Close()

	data, err := os.ReadFile(filepath.Join(tmp, logCfg.LogFile))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, "初始化依赖关系概览") {
		t.Fatalf("graph header missing in log output: %s", content)
	}
	for _, id := range []string{
		"config:load",
		"logging:init-provider",
		"observability:setup-hooks",
		"metrics:init",
		"classmap:fetch",
		"engine:init-runtime",
		"engine:init-emotion",
		"engine:init-scene",
		"inference:init-pool",
	} {
		if !strings.Contains(content, id) {
			t.Fatalf("expected graph output to contain %q, got: %s", id, content)
		}
	}
}
