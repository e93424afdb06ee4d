package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dining-bench/internal/config"
	"dining-bench/internal/db"
	"dining-bench/internal/router"
	"dining-bench/internal/service"

	"github.com/pingcap/log"
	"go.uber.org/zap"
)

const (
	exitOK     = 0
	exitFailed = 1
	exitConfig = 2
)

func main() {
	// 解析参数
	cfg, err := config.ParseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, "Usage of dining-bench:")
			config.Usage(os.Stderr)
			os.Exit(exitOK)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitConfig)
	}

	if err := initLogger(cfg.Log); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitConfig)
	}

	// 初始化数据库（可选）
	if cfg.Database.Enabled() {
		if err := db.InitDB(cfg); err != nil {
			log.Error("初始化数据库失败", zap.Error(err))
			os.Exit(exitConfig)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svcCtx := service.NewServiceContext(ctx, db.DB)

	if cfg.Server.Addr != "" {
		if err := serve(ctx, cfg, svcCtx); err != nil {
			log.Error("服务异常退出", zap.Error(err))
			stop()
			os.Exit(exitFailed)
		}
		return
	}

	runCfg, err := config.NewRunConfiguration(cfg.Bench)
	if err != nil {
		log.Error("配置无效", zap.Error(err))
		stop()
		os.Exit(exitCode(err))
	}
	if _, err := svcCtx.Runner.Run(ctx, runCfg); err != nil {
		log.Error("基准扫描终止", zap.Error(err))
		stop()
		os.Exit(exitCode(err))
	}
}

func initLogger(c config.LogConfig) error {
	lg, props, err := log.InitLogger(&log.Config{
		Level: c.Level,
		File:  log.FileLogConfig{Filename: c.File},
	})
	if err != nil {
		return fmt.Errorf("初始化日志失败: %w", err)
	}
	log.ReplaceGlobals(lg, props)
	return nil
}

func serve(ctx context.Context, cfg *config.Config, svcCtx *service.ServiceContext) error {
	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router.SetupRouter(svcCtx, cfg.Bench),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("服务启动", zap.String("addr", cfg.Server.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	// 后台扫描随 ctx 取消，等它关闭输出文件
	<-svcCtx.Tracker.Done()
	return nil
}

// exitCode 外部程序失败时沿用其退出码
func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	var cfgErr *config.ConfigurationError
	if errors.As(err, &cfgErr) {
		return exitConfig
	}
	var procErr *service.ExternalProcessError
	if errors.As(err, &procErr) && procErr.ExitCode > 0 {
		return procErr.ExitCode
	}
	return exitFailed
}
