package metrics

// 指标配置默认值
const (
	// defaultListenAddr 默认不开启指标端点
	defaultListenAddr = ""

	// defaultPath 指标抓取路径
	defaultPath = "/metrics"

	// defaultShutdownTimeoutSeconds 停止时等待进行中请求的时间
	defaultShutdownTimeoutSeconds = 5
)
