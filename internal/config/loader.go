package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/weisyn/zkhost/pkg/types"
)

// LoadAppConfig 从 JSON 文件加载用户配置
//
// 未出现的字段保持为 nil，由各子配置的 defaults.go 补齐。
// 未知字段视为配置错误，避免拼写错误被静默忽略。
func LoadAppConfig(path string) (*types.AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}
	return ParseAppConfig(data)
}

// ParseAppConfig 解析 JSON 配置内容
func ParseAppConfig(data []byte) (*types.AppConfig, error) {
	var appConfig types.AppConfig
	if len(bytes.TrimSpace(data)) == 0 {
		return &appConfig, nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&appConfig); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}
	return &appConfig, nil
}
