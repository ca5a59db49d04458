// Package metrics 提供 Prometheus 指标抓取端点
//
// 验证请求计数与耗时由 zkverify 包注册到默认注册表，本包只负责对外暴露。
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/weisyn/zkhost/pkg/interfaces/infrastructure/log"
)

// Server 指标 HTTP 端点
type Server struct {
	logger          log.Logger
	listenAddr      string
	path            string
	shutdownTimeout time.Duration
	gatherer        prometheus.Gatherer

	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
	done     chan struct{}
}

// NewServer 创建指标端点，gatherer 为 nil 时使用默认注册表
func NewServer(logger log.Logger, listenAddr, path string, shutdownTimeout time.Duration, gatherer prometheus.Gatherer) *Server {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return &Server{
		logger:          logger,
		listenAddr:      listenAddr,
		path:            path,
		shutdownTimeout: shutdownTimeout,
		gatherer:        gatherer,
	}
}

// Start 绑定监听地址并在后台提供服务
//
// 绑定失败直接返回错误，避免应用以为端点已开启。
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.server != nil {
		return fmt.Errorf("指标端点已启动")
	}

	ln, err := net.Listen("tcp", s.listenAddr)
	if err != nil {
		return fmt.Errorf("监听指标地址 %s 失败: %w", s.listenAddr, err)
	}

	mux := http.NewServeMux()
	mux.Handle(s.path, promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	s.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.listener = ln
	s.done = make(chan struct{})

	go func(srv *http.Server, done chan struct{}) {
		defer close(done)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) && s.logger != nil {
			s.logger.Errorf("指标端点异常退出: %v", err)
		}
	}(s.server, s.done)

	if s.logger != nil {
		s.logger.Infof("指标端点已启动: http://%s%s", ln.Addr(), s.path)
	}
	return nil
}

// Addr 实际监听地址（未启动时为空）
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop 优雅关闭端点
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	srv, done := s.server, s.done
	s.server, s.listener, s.done = nil, nil, nil
	s.mu.Unlock()

	if srv == nil {
		return nil
	}

	if s.shutdownTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.shutdownTimeout)
		defer cancel()
	}
	err := srv.Shutdown(ctx)
	<-done
	if s.logger != nil {
		s.logger.Info("指标端点已停止")
	}
	return err
}
