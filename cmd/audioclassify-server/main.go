// @title 音频分类服务 API 文档
// @version 1.0
// @description 音频分类推理服务，提供情感与场景两类 HTTP 分类端点
// @host localhost:8077
// @BasePath /
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"audioclassify-server-go/internal/bootstrap"
)

func main() {
	fmt.Printf("[%s] [INFO] [引导] 开始启动 audioclassify-server...\n", time.Now().Format("2006-01-02 15:04:05.000"))
	if err := bootstrap.Run(context.Background()); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "audioclassify-server failed: %v\n", err)
		os.Exit(1)
	}
}
