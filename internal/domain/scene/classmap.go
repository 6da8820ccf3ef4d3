package scene

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	platformerrors "audioclassify-server-go/internal/platform/errors"
)

// ClassMapConfig 类别表来源配置
type ClassMapConfig struct {
	URL     string
	Path    string
	Timeout time.Duration
}

// LoadClassMap 在启动时获取一次细粒度类别名表。
// Path 非空时读本地文件，否则按 URL 拉取；任何失败都应让启动中止。
func LoadClassMap(ctx context.Context, cfg ClassMapConfig) ([]string, error) {
	var raw []byte

	switch {
	case cfg.Path != "":
		data, err := os.ReadFile(cfg.Path)
		if err != nil {
			return nil, platformerrors.Wrap(platformerrors.KindClassMap, "classmap.load", "读取本地类别表失败", err)
		}
		raw = data
	case cfg.URL != "":
		data, err := fetchClassMap(ctx, cfg.URL, cfg.Timeout)
		if err != nil {
			return nil, err
		}
		raw = data
	default:
		return nil, platformerrors.New(platformerrors.KindClassMap, "classmap.load", "未配置类别表来源")
	}

	return parseClassMap(raw)
}

func fetchClassMap(ctx context.Context, url string, timeout time.Duration) ([]byte, error) {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, platformerrors.Wrap(platformerrors.KindClassMap, "classmap.fetch", "构造类别表请求失败", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, platformerrors.Wrap(platformerrors.KindClassMap, "classmap.fetch", "拉取类别表失败", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, platformerrors.New(platformerrors.KindClassMap, "classmap.fetch",
			fmt.Sprintf("类别表响应状态异常: %d", resp.StatusCode))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, platformerrors.Wrap(platformerrors.KindClassMap, "classmap.fetch", "读取类别表内容失败", err)
	}
	return data, nil
}

// parseClassMap 解析 AudioSet 风格的 CSV：index,mid,display_name（名字可能带引号与逗号）。
// 返回按 index 位置排列的类别名。
func parseClassMap(raw []byte) ([]string, error) {
	reader := csv.NewReader(strings.NewReader(string(raw)))
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, platformerrors.Wrap(platformerrors.KindClassMap, "classmap.parse", "解析类别表 CSV 失败", err)
	}

	names := make([]string, 0, len(records))
	for i, rec := range records {
		if len(rec) < 3 {
			continue
		}
		// 跳过表头行
		if i == 0 && strings.EqualFold(strings.TrimSpace(rec[0]), "index") {
			continue
		}
		names = append(names, strings.TrimSpace(rec[2]))
	}

	if len(names) == 0 {
		return nil, platformerrors.New(platformerrors.KindClassMap, "classmap.parse", "类别表为空")
	}
	return names, nil
}
