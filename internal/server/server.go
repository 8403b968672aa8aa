package server

import (
	"context"
	"encoding/json"
	"fmt"
	"github.com/packagewjx/traffic-classifier/internal/artifact"
	"github.com/packagewjx/traffic-classifier/internal/classify"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

const (
	DefaultPort            = 5000
	DefaultMaxBodyBytes    = 1 << 20
	DefaultShutdownTimeout = 5 * time.Second
)

type ServerConfig struct {
	Port            uint16          // 本服务器监听端口，监听所有网卡
	MaxBodyBytes    int64           // 分类请求体的最大字节数
	ShutdownTimeout time.Duration   // 收到退出信号后等待请求处理完毕的时间
	Artifact        artifact.Config // 模型文件的来源
}

func (s ServerConfig) String() string {
	marshal, _ := json.Marshal(s)
	return string(marshal)
}

func (config *ServerConfig) Complete() error {
	if config.Port == 0 {
		config.Port = DefaultPort
	}
	if config.Port < 1024 {
		return fmt.Errorf("端口号应该在1024到65535之间，现在为%d", config.Port)
	}

	if config.MaxBodyBytes == 0 {
		config.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if config.MaxBodyBytes < 0 {
		return fmt.Errorf("请求体大小限制不能为负数，现在为%d", config.MaxBodyBytes)
	}

	if config.ShutdownTimeout <= 0 {
		config.ShutdownTimeout = DefaultShutdownTimeout
	}

	return config.Artifact.Complete()
}

type Server interface {
	// 启动服务器，直到收到SIGTERM或SIGINT
	Start() error
	Handler() http.Handler
}

// 读取模型并创建服务器。模型读取失败时返回错误，服务器不会启动
func NewServer(config *ServerConfig, logger *zap.Logger) (Server, error) {
	if err := config.Complete(); err != nil {
		return nil, err
	}

	bundle, err := artifact.LoadFromConfig(&config.Artifact, logger.Named("artifact"))
	if err != nil {
		return nil, err
	}

	return newServer(config, classify.NewEngine(bundle, logger.Named("engine")), logger), nil
}

func newServer(config *ServerConfig, engine *classify.Engine, logger *zap.Logger) *serverImpl {
	s := &serverImpl{
		config:  config,
		engine:  engine,
		logger:  logger.Named("server"),
		metrics: newMetrics(),
	}
	s.handler = s.buildHandler()
	return s
}

type serverImpl struct {
	config  *ServerConfig
	engine  *classify.Engine
	logger  *zap.Logger
	metrics *metrics
	handler http.Handler
}

func (s *serverImpl) Handler() http.Handler {
	return s.handler
}

func (s *serverImpl) Start() error {
	s.logger.Info("服务器启动", zap.Stringer("config", s.config))

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", s.config.Port),
		Handler: s.handler,
	}
	errCh := make(chan error, 1)
	go s.serve(server, errCh)

	// 注册信号接收器
	termSigChan := make(chan os.Signal, 1)
	signal.Notify(termSigChan, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(termSigChan)

	select {
	case sig := <-termSigChan:
		s.logger.Info("收到退出信号", zap.Stringer("signal", sig))
		ctx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			return errors.Wrap(err, "关闭HTTP服务器失败")
		}
	case err := <-errCh:
		// 监听失败等情况
		return errors.Wrap(err, "HTTP服务器异常退出")
	}

	// 等待HTTP服务器结束
	if err := <-errCh; err != nil {
		return errors.Wrap(err, "HTTP关闭出现错误")
	}
	return nil
}

func (s *serverImpl) serve(server *http.Server, errCh chan<- error) {
	s.logger.Info("API服务器启动", zap.String("addr", server.Addr))

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		errCh <- err
		return
	}

	s.logger.Info("API服务器结束")
	errCh <- nil
}
