// Package configs 嵌入默认配置文件
package configs

import _ "embed"

// 默认配置（未通过 --config 指定文件时使用）
//
//go:embed zkhost.json
var defaultConfig []byte

// GetDefaultConfig 获取嵌入的默认配置
func GetDefaultConfig() []byte {
	return defaultConfig
}
