package engine

import (
	"fmt"
	"sync"

	platformerrors "audioclassify-server-go/internal/platform/errors"
)

// Factory 根据配置构建一个引擎实例
type Factory func(cfg Config) (Engine, error)

var (
	registryMu sync.RWMutex
	factories  = make(map[string]Factory)
)

// Register 注册引擎工厂，重复注册同名工厂会 panic（装配错误应当尽早暴露）。
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if factory == nil {
		panic(fmt.Sprintf("engine: factory %q is nil", name))
	}
	if _, exists := factories[name]; exists {
		panic(fmt.Sprintf("engine: factory %q already registered", name))
	}
	factories[name] = factory
}

// Create 按配置中的类型创建引擎实例
func Create(cfg Config) (Engine, error) {
	registryMu.RLock()
	factory, ok := factories[cfg.Type]
	registryMu.RUnlock()

	if !ok {
		return nil, platformerrors.New(platformerrors.KindEngine, "engine.create",
			fmt.Sprintf("未知的引擎类型: %q", cfg.Type))
	}
	return factory(cfg)
}

// Registered 列出所有已注册的引擎类型
func Registered() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	return names
}
