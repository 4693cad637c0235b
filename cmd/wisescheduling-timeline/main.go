package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"wisescheduling-timeline/internal/config"
	"wisescheduling-timeline/internal/logger"
	"wisescheduling-timeline/internal/service"
)

func main() {
	// 加载配置
	cfg := config.Load()

	// 初始化日志
	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "wisescheduling-timeline")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("Starting wisescheduling-timeline service")

	// 创建服务
	svc, err := service.New(cfg, log)
	if err != nil {
		log.Fatal("Failed to create timeline service", zap.Error(err))
	}

	// 创建上下文
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 监听系统信号
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// 启动服务（在 goroutine 中）；Run 返回前已完成停机清理
	errChan := make(chan error, 1)
	go func() {
		errChan <- svc.Run(ctx)
	}()

	// 等待信号或错误
	select {
	case sig := <-sigChan:
		log.Info("Received signal, shutting down", zap.String("signal", sig.String()))
		cancel()
		if err := <-errChan; err != nil {
			log.Error("Error stopping service", zap.Error(err))
		}
	case err := <-errChan:
		log.Error("Service error", zap.Error(err))
	}

	log.Info("Service stopped")
}
