package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"go.uber.org/zap"

	logpkg "github.com/sqall01/alertR/alertr-common/logger"
	"github.com/sqall01/alertR/internal/config"
	"github.com/sqall01/alertR/internal/dashboard"
)

const usage = "views: overview nodes sensors alerts managers sensorAlerts alertLevels events | more <n> | refresh | quit"

func main() {
	cfg, err := config.LoadClient()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 日志写 stderr, stdout 留给页面
	log, err := logpkg.NewStderrLogger(cfg.Log.Level, "alertr-dashboard")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	view, err := dashboard.ParseView(cfg.InitialView)
	if err != nil {
		log.Fatal("Invalid initial view", zap.Error(err))
	}

	settings := dashboard.Settings{
		SensorAlertsNumber:  cfg.SensorAlertsNumber,
		OverviewAlertsCount: cfg.OverviewAlertsCount,
		EventsNumber:        cfg.EventsNumber,
		Legacy:              cfg.Legacy,
	}
	fetcher := dashboard.NewHTTPFetcher(cfg.ServerURL, cfg.RequestTimeout, log)
	renderer := dashboard.NewTextEncoder(os.Stdout, dashboard.ColorMode(cfg.Color))

	ctrl := dashboard.NewController(dashboard.ControllerConfig{
		PollInterval:     cfg.PollInterval,
		LivenessInterval: cfg.LivenessInterval,
		LivenessTimeout:  cfg.LivenessTimeout,
		RequestTimeout:   cfg.RequestTimeout,
		InitialView:      view,
		Settings:         settings,
	}, fetcher, renderer, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := ctrl.Start(ctx); err != nil {
		log.Fatal("Failed to start dashboard", zap.Error(err))
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	quit := make(chan struct{})
	go readCommands(ctrl, quit)

	select {
	case <-sigChan:
	case <-quit:
	}
	ctrl.Stop()
}

// readCommands 每行一个命令; stdin 关闭后继续运行直到收到信号
func readCommands(ctrl *dashboard.Controller, quit chan<- struct{}) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "q", "quit", "exit":
			close(quit)
			return
		case "r", "refresh":
			ctrl.Refresh()
		case "more":
			if len(fields) == 2 {
				if n, err := strconv.Atoi(fields[1]); err == nil {
					ctrl.SetSensorAlertsNumber(n)
					continue
				}
			}
			fmt.Fprintln(os.Stderr, usage)
		default:
			v, err := dashboard.ParseView(fields[0])
			if err != nil {
				fmt.Fprintln(os.Stderr, usage)
				continue
			}
			ctrl.ChangeOutput(v)
		}
	}
}
