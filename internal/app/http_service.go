package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"
)

// apiServer 对外 HTTP 接口，订单图片走 multipart 上传，读超时放宽
type apiServer struct {
	srv *http.Server
}

// NewHTTPService 监听 addr 提供 handler
func NewHTTPService(addr string, handler http.Handler) Service {
	return &apiServer{srv: &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       2 * time.Minute,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       2 * time.Minute,
	}}
}

func (s *apiServer) Name() string { return "api" }

// Start 阻塞到服务关闭；端口占用等监听错误直接返回
func (s *apiServer) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return err
	}
	s.srv.BaseContext = func(net.Listener) context.Context { return ctx }
	if err := s.srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *apiServer) Stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
