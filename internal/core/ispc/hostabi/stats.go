package hostabi

import (
	"sync"
	"time"
)

// CallStats 宿主函数调用统计
//
// 与 Prometheus 指标互补：指标按后端聚合，这里按宿主函数与状态码记录，
// 便于 CLI 与测试直接读取。
type CallStats struct {
	// 调用计数（按宿主函数名称）
	CallCounts map[string]uint64
	// 非零状态码计数（按宿主函数名称 → 状态码）
	StatusCounts map[string]map[uint32]uint64
	// 最后调用时间（按宿主函数名称，Unix秒）
	LastCallTimes map[string]int64
	mutex         sync.RWMutex
}

// NewCallStats 创建调用统计
func NewCallStats() *CallStats {
	return &CallStats{
		CallCounts:    make(map[string]uint64),
		StatusCounts:  make(map[string]map[uint32]uint64),
		LastCallTimes: make(map[string]int64),
	}
}

// RecordCall 记录一次调用及其状态码
func (s *CallStats) RecordCall(name string, status uint32) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.CallCounts[name]++
	s.LastCallTimes[name] = time.Now().Unix()
	if status == StatusOK {
		return
	}
	byStatus, ok := s.StatusCounts[name]
	if !ok {
		byStatus = make(map[uint32]uint64)
		s.StatusCounts[name] = byStatus
	}
	byStatus[status]++
}

// Calls 返回某个宿主函数的调用次数
func (s *CallStats) Calls(name string) uint64 {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.CallCounts[name]
}

// Failures 返回某个宿主函数以指定状态码失败的次数
func (s *CallStats) Failures(name string, status uint32) uint64 {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.StatusCounts[name][status]
}

// GetStats 获取统计信息快照（线程安全）
func (s *CallStats) GetStats() map[string]interface{} {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	callCountsCopy := make(map[string]uint64, len(s.CallCounts))
	for k, v := range s.CallCounts {
		callCountsCopy[k] = v
	}
	statusCountsCopy := make(map[string]map[uint32]uint64, len(s.StatusCounts))
	for name, byStatus := range s.StatusCounts {
		inner := make(map[uint32]uint64, len(byStatus))
		for code, n := range byStatus {
			inner[code] = n
		}
		statusCountsCopy[name] = inner
	}
	lastCallTimesCopy := make(map[string]int64, len(s.LastCallTimes))
	for k, v := range s.LastCallTimes {
		lastCallTimesCopy[k] = v
	}

	return map[string]interface{}{
		"call_counts":     callCountsCopy,
		"status_counts":   statusCountsCopy,
		"last_call_times": lastCallTimesCopy,
	}
}
